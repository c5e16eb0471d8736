// Package gdrive implements the remote directory client on the Google Drive v3 API.
package gdrive

import (
	"context"
	"errors"
	"fmt"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/lherron/gxcopy/internal/domain"
	"github.com/lherron/gxcopy/internal/remote"
)

const (
	itemFields      = "id, name, mimeType, parents, owners(displayName, emailAddress), webViewLink"
	listFields      = "nextPageToken, files(" + itemFields + ")"
	driveListFields = "nextPageToken, drives(id, name)"
)

// Client talks to Drive as a single identity.
type Client struct {
	svc *drive.Service
}

// New creates a client authorized by the credentials file (service account
// or stored authorized-user JSON). Extra options are appended, which lets
// tests point the client at a local endpoint.
func New(ctx context.Context, credentialsFile string, opts ...option.ClientOption) (*Client, error) {
	clientOpts := []option.ClientOption{option.WithScopes(drive.DriveScope)}
	if credentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credentialsFile))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := drive.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &Client{svc: svc}, nil
}

func (c *Client) ListChildren(ctx context.Context, folderID, pageToken string) (domain.Page, error) {
	q := fmt.Sprintf("'%s' in parents and trashed=false", folderID)
	call := c.svc.Files.List().
		Q(q).
		Spaces("drive").
		Fields(listFields).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return domain.Page{}, classify(remote.OpList, err)
	}

	page := domain.Page{NextPageToken: resp.NextPageToken}
	for _, f := range resp.Files {
		page.Items = append(page.Items, toItem(f))
	}
	return page, nil
}

func (c *Client) GetItem(ctx context.Context, id string) (domain.Item, error) {
	f, err := c.svc.Files.Get(id).
		Fields(itemFields).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return domain.Item{}, classify(remote.OpGet, err)
	}
	return toItem(f), nil
}

func (c *Client) CreateFolder(ctx context.Context, parentID, name string) (domain.Item, error) {
	meta := &drive.File{
		Name:     name,
		MimeType: domain.FolderMimeType,
		Parents:  []string{parentID},
	}
	f, err := c.svc.Files.Create(meta).
		Fields(itemFields).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return domain.Item{}, classify(remote.OpCreateFolder, err)
	}
	return toItem(f), nil
}

func (c *Client) CopyFile(ctx context.Context, id, destParentID, newName string) (domain.Item, error) {
	meta := &drive.File{
		Name:    newName,
		Parents: []string{destParentID},
	}
	f, err := c.svc.Files.Copy(id, meta).
		Fields(itemFields).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return domain.Item{}, classify(remote.OpCopy, err)
	}
	return toItem(f), nil
}

func (c *Client) MoveFile(ctx context.Context, id, removeParentID, addParentID string) (domain.Item, error) {
	f, err := c.svc.Files.Update(id, &drive.File{}).
		AddParents(addParentID).
		RemoveParents(removeParentID).
		Fields(itemFields).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return domain.Item{}, classify(remote.OpMove, err)
	}
	return toItem(f), nil
}

func (c *Client) ListTeamDrives(ctx context.Context, pageToken string) (domain.TeamDrivePage, error) {
	call := c.svc.Drives.List().Fields(driveListFields).Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return domain.TeamDrivePage{}, classify(remote.OpListDrives, err)
	}

	page := domain.TeamDrivePage{NextPageToken: resp.NextPageToken}
	for _, d := range resp.Drives {
		page.Drives = append(page.Drives, domain.TeamDrive{ID: d.Id, Name: d.Name})
	}
	return page, nil
}

func (c *Client) CreateTeamDrive(ctx context.Context, requestID, name string) (domain.TeamDrive, error) {
	d, err := c.svc.Drives.Create(requestID, &drive.Drive{Name: name}).Context(ctx).Do()
	if err != nil {
		return domain.TeamDrive{}, classify(remote.OpCreateDrive, err)
	}
	return domain.TeamDrive{ID: d.Id, Name: d.Name}, nil
}

func toItem(f *drive.File) domain.Item {
	it := domain.Item{
		ID:        f.Id,
		Name:      f.Name,
		Kind:      domain.KindFromMimeType(f.MimeType),
		ParentIDs: f.Parents,
		ViewLink:  f.WebViewLink,
	}
	for _, o := range f.Owners {
		if o == nil {
			continue
		}
		it.Owners = append(it.Owners, domain.Owner{DisplayName: o.DisplayName, Email: o.EmailAddress})
	}
	return it
}

// classify converts googleapi status errors into domain.APIError so the
// retry policy can act on them.
func classify(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &domain.APIError{Op: op, Status: gerr.Code, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

var _ remote.AdminClient = (*Client)(nil)
