// Package remote defines the Remote Directory Client consumed by the tree
// builder and the migrator, and the retry policy wrapped around it.
package remote

import (
	"context"

	"github.com/lherron/gxcopy/internal/domain"
)

// Operation names used in errors, logs and metrics
const (
	OpList         = "files.list"
	OpGet          = "files.get"
	OpCreateFolder = "files.create"
	OpCopy         = "files.copy"
	OpMove         = "files.update"
	OpListDrives   = "drives.list"
	OpCreateDrive  = "drives.create"
)

// Lister lists the children of a folder one page at a time. An empty
// NextPageToken marks the last page.
type Lister interface {
	ListChildren(ctx context.Context, folderID, pageToken string) (domain.Page, error)
}

// Client is the capability the migration core consumes.
//
// CopyFile and MoveFile return an error wrapping domain.ErrDenied when the
// remote system refuses the operation for permission reasons; callers are
// expected to fall back rather than abort.
type Client interface {
	Lister
	GetItem(ctx context.Context, id string) (domain.Item, error)
	CreateFolder(ctx context.Context, parentID, name string) (domain.Item, error)
	CopyFile(ctx context.Context, id, destParentID, newName string) (domain.Item, error)
	MoveFile(ctx context.Context, id, removeParentID, addParentID string) (domain.Item, error)
}

// TeamDrives manages shared drives used as migration destinations.
type TeamDrives interface {
	ListTeamDrives(ctx context.Context, pageToken string) (domain.TeamDrivePage, error)
	CreateTeamDrive(ctx context.Context, requestID, name string) (domain.TeamDrive, error)
}

// AdminClient is a Client that can also manage Team Drives.
type AdminClient interface {
	Client
	TeamDrives
}
