// Package report folds a built registry into read-only views. Nothing here
// calls the remote system.
package report

import (
	"github.com/lherron/gxcopy/internal/domain"
	"github.com/lherron/gxcopy/internal/render"
	"github.com/lherron/gxcopy/internal/tree"
)

// Multiparent is a file referenced by more than one folder.
type Multiparent struct {
	Item    domain.Item
	Parents []tree.ParentRef
}

// OwnerGroup is every file owned by one owner email.
type OwnerGroup struct {
	Email string
	Name  string
	Items []domain.Item
}

// FindMultiparentFiles returns every file whose registry entry has more than
// one parent reference, in first-discovery order.
func FindMultiparentFiles(reg *tree.Registry) []Multiparent {
	var out []Multiparent
	for _, e := range reg.Entries() {
		if e.Item.IsFolder() || len(e.Parents) < 2 {
			continue
		}
		out = append(out, Multiparent{
			Item:    e.Item,
			Parents: append([]tree.ParentRef(nil), e.Parents...),
		})
	}
	return out
}

// GroupOwners buckets files under each of their owners. A file with N owners
// appears in N groups. Groups are ordered by the first file that names the
// owner; the group name is the first display name seen for that email.
func GroupOwners(reg *tree.Registry) []OwnerGroup {
	var groups []OwnerGroup
	index := make(map[string]int)

	for _, e := range reg.Entries() {
		if e.Item.IsFolder() {
			continue
		}
		for _, o := range e.Item.Owners {
			i, ok := index[o.Email]
			if !ok {
				i = len(groups)
				index[o.Email] = i
				groups = append(groups, OwnerGroup{Email: o.Email, Name: o.DisplayName})
			}
			groups[i].Items = append(groups[i].Items, e.Item)
		}
	}
	return groups
}

// MultiparentRows projects the multiparent view into one row per file and
// parent folder.
func MultiparentRows(files []Multiparent) render.Table {
	t := render.Table{
		Title:   "Files with multiple parents",
		Headers: []string{"File name", "File link", "Folder name", "Folder path", "Folder link"},
	}
	for _, mp := range files {
		for _, p := range mp.Parents {
			t.Rows = append(t.Rows, []string{mp.Item.Name, mp.Item.ViewLink, p.Name, p.Path, p.ViewLink})
		}
	}
	return t
}

// OwnerRows projects the owner view into one row per owner and file.
func OwnerRows(groups []OwnerGroup) render.Table {
	t := render.Table{
		Title:   "Files by owner",
		Headers: []string{"Owner name", "Owner email", "Filename", "File link"},
	}
	for _, g := range groups {
		for _, it := range g.Items {
			t.Rows = append(t.Rows, []string{g.Name, g.Email, it.Name, it.ViewLink})
		}
	}
	return t
}
