package domain

// Kind represents whether an item is a file or a folder
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// FolderMimeType is the Drive mime type that marks an item as a folder
const FolderMimeType = "application/vnd.google-apps.folder"

// MultifilePrefix is prepended to copies of files that have more than one parent
const MultifilePrefix = "MULTIFILE "

// Owner is one owner of a remote item
type Owner struct {
	DisplayName string `json:"display_name" yaml:"display_name"`
	Email       string `json:"email" yaml:"email"`
}

// Item represents a remote file or folder.
// ID is assigned by the remote system and never changes. ParentIDs reflects
// the source tree only and is never mutated.
type Item struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Kind      Kind     `json:"kind" yaml:"kind"`
	ParentIDs []string `json:"parent_ids,omitempty" yaml:"parent_ids,omitempty"`
	Owners    []Owner  `json:"owners,omitempty" yaml:"owners,omitempty"`
	ViewLink  string   `json:"view_link,omitempty" yaml:"view_link,omitempty"`
}

// IsFolder reports whether the item is a folder
func (i Item) IsFolder() bool {
	return i.Kind == KindFolder
}

// HasMultipleParents reports whether more than one folder references the item
func (i Item) HasMultipleParents() bool {
	return len(i.ParentIDs) > 1
}

// KindFromMimeType maps a Drive mime type to an item kind
func KindFromMimeType(mimeType string) Kind {
	if mimeType == FolderMimeType {
		return KindFolder
	}
	return KindFile
}

// Page is one page of a folder listing
type Page struct {
	Items         []Item
	NextPageToken string
}

// TeamDrive represents a shared (Team) Drive
type TeamDrive struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// AsItem returns the Team Drive as a folder item so it can serve as a
// destination root
func (d TeamDrive) AsItem() Item {
	return Item{
		ID:   d.ID,
		Name: d.Name,
		Kind: KindFolder,
	}
}

// TeamDrivePage is one page of a Team Drive listing
type TeamDrivePage struct {
	Drives        []TeamDrive
	NextPageToken string
}
