package migrate

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lherron/gxcopy/internal/domain"
	"github.com/lherron/gxcopy/internal/remote"
)

// DestinationName is the Team Drive name used for a run: destName when
// given, otherwise the source folder's name.
func DestinationName(sourceName, destName string) string {
	if destName != "" {
		return destName
	}
	return sourceName
}

// ResolveDestination looks for an existing Team Drive named like the
// destination. An explicitly named drive that exists is reused. A drive
// named after the source folder is a structural error unless existsOK.
// It returns nil when no drive of that name exists yet.
func ResolveDestination(ctx context.Context, drives remote.TeamDrives, sourceName, destName string, existsOK bool) (*domain.TeamDrive, error) {
	name := DestinationName(sourceName, destName)

	token := ""
	for {
		page, err := drives.ListTeamDrives(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("failed to list team drives: %w", err)
		}

		for _, td := range page.Drives {
			if td.Name != name {
				continue
			}
			if destName != "" || existsOK {
				found := td
				return &found, nil
			}
			return nil, domain.NewStructuralError("a Team Drive named %q already exists (ID: %s)", td.Name, td.ID)
		}

		if page.NextPageToken == "" {
			return nil, nil
		}
		token = page.NextPageToken
	}
}

// CreateDestination creates a Team Drive with a fresh request id.
func CreateDestination(ctx context.Context, drives remote.TeamDrives, name string) (domain.TeamDrive, error) {
	td, err := drives.CreateTeamDrive(ctx, uuid.NewString(), name)
	if err != nil {
		return domain.TeamDrive{}, fmt.Errorf("failed to create team drive %q: %w", name, err)
	}
	return td, nil
}
