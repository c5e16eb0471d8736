// Package remotetest provides an in-memory remote directory for tests.
package remotetest

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/lherron/gxcopy/internal/cursor"
	"github.com/lherron/gxcopy/internal/domain"
	"github.com/lherron/gxcopy/internal/remote"
)

// Call records one invocation of a client method.
type Call struct {
	Op   string
	Args []string
}

// Directory is a paginated in-memory directory tree with fault injection.
// It implements remote.AdminClient and returns unretried, classified
// errors the way a real backend would.
type Directory struct {
	mu sync.Mutex

	// PageSize bounds each ListChildren page; 0 returns everything at once.
	PageSize int

	items    map[string]*domain.Item
	children map[string][]string
	drives   []domain.TeamDrive
	faults   map[string][]error
	denied   map[string]bool
	calls    []Call
	seq      int
}

// New creates an empty directory.
func New() *Directory {
	return &Directory{
		items:    make(map[string]*domain.Item),
		children: make(map[string][]string),
		faults:   make(map[string][]error),
		denied:   make(map[string]bool),
	}
}

// Status returns a classified API error with the given HTTP status.
func Status(op string, code int) error {
	return &domain.APIError{Op: op, Status: code, Err: fmt.Errorf("%s", http.StatusText(code))}
}

// AddFolder registers a folder under the given parents.
func (d *Directory) AddFolder(id, name string, parents ...string) domain.Item {
	return d.add(domain.Item{ID: id, Name: name, Kind: domain.KindFolder, ParentIDs: parents, ViewLink: link(id)})
}

// AddFile registers a file with owners under the given parents.
func (d *Directory) AddFile(id, name string, owners []domain.Owner, parents ...string) domain.Item {
	return d.add(domain.Item{ID: id, Name: name, Kind: domain.KindFile, ParentIDs: parents, Owners: owners, ViewLink: link(id)})
}

// AddTeamDrive registers an existing Team Drive.
func (d *Directory) AddTeamDrive(id, name string) domain.TeamDrive {
	d.mu.Lock()
	defer d.mu.Unlock()
	td := domain.TeamDrive{ID: id, Name: name}
	d.drives = append(d.drives, td)
	return td
}

// FailNext queues errors returned, in order, by the next calls of op.
func (d *Directory) FailNext(op string, errs ...error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults[op] = append(d.faults[op], errs...)
}

// Deny makes op on item id fail with 403 every time.
func (d *Directory) Deny(op, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.denied[op+"/"+id] = true
}

// Calls returns the recorded calls of op, or all calls when op is empty.
func (d *Directory) Calls(op string) []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Call
	for _, c := range d.calls {
		if op == "" || c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Item returns a copy of the current state of an item.
func (d *Directory) Item(id string) (domain.Item, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	it, ok := d.items[id]
	if !ok {
		return domain.Item{}, false
	}
	return clone(*it), true
}

// Children returns the current children of a folder in listing order.
func (d *Directory) Children(folderID string) []domain.Item {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []domain.Item
	for _, id := range d.children[folderID] {
		out = append(out, clone(*d.items[id]))
	}
	return out
}

// TeamDrives returns the registered Team Drives.
func (d *Directory) TeamDrives() []domain.TeamDrive {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.TeamDrive(nil), d.drives...)
}

func (d *Directory) ListChildren(ctx context.Context, folderID, pageToken string) (domain.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter(remote.OpList, folderID, pageToken); err != nil {
		return domain.Page{}, err
	}

	ids := d.children[folderID]
	start, end, err := cursor.Window(folderID, pageToken, d.PageSize, len(ids))
	if err != nil {
		return domain.Page{}, &domain.APIError{Op: remote.OpList, Status: http.StatusBadRequest, Err: err}
	}

	page := domain.Page{}
	for _, id := range ids[start:end] {
		page.Items = append(page.Items, clone(*d.items[id]))
	}
	page.NextPageToken, err = cursor.Next(folderID, end, len(ids))
	if err != nil {
		return domain.Page{}, err
	}
	return page, nil
}

func (d *Directory) GetItem(ctx context.Context, id string) (domain.Item, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter(remote.OpGet, id); err != nil {
		return domain.Item{}, err
	}
	it, ok := d.items[id]
	if !ok {
		return domain.Item{}, Status(remote.OpGet, http.StatusNotFound)
	}
	return clone(*it), nil
}

func (d *Directory) CreateFolder(ctx context.Context, parentID, name string) (domain.Item, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter(remote.OpCreateFolder, parentID, name); err != nil {
		return domain.Item{}, err
	}
	id := d.nextID("folder")
	return d.insert(domain.Item{ID: id, Name: name, Kind: domain.KindFolder, ParentIDs: []string{parentID}, ViewLink: link(id)}), nil
}

func (d *Directory) CopyFile(ctx context.Context, id, destParentID, newName string) (domain.Item, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter(remote.OpCopy, id, destParentID, newName); err != nil {
		return domain.Item{}, err
	}
	src, ok := d.items[id]
	if !ok {
		return domain.Item{}, Status(remote.OpCopy, http.StatusNotFound)
	}
	newID := d.nextID("copy")
	cp := clone(*src)
	cp.ID = newID
	cp.Name = newName
	cp.ParentIDs = []string{destParentID}
	cp.ViewLink = link(newID)
	return d.insert(cp), nil
}

func (d *Directory) MoveFile(ctx context.Context, id, removeParentID, addParentID string) (domain.Item, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter(remote.OpMove, id, removeParentID, addParentID); err != nil {
		return domain.Item{}, err
	}
	it, ok := d.items[id]
	if !ok {
		return domain.Item{}, Status(remote.OpMove, http.StatusNotFound)
	}

	d.children[removeParentID] = without(d.children[removeParentID], id)
	it.ParentIDs = append(without(it.ParentIDs, removeParentID), addParentID)
	d.children[addParentID] = append(d.children[addParentID], id)
	return clone(*it), nil
}

func (d *Directory) ListTeamDrives(ctx context.Context, pageToken string) (domain.TeamDrivePage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter(remote.OpListDrives, pageToken); err != nil {
		return domain.TeamDrivePage{}, err
	}

	start, end, err := cursor.Window("drives", pageToken, d.PageSize, len(d.drives))
	if err != nil {
		return domain.TeamDrivePage{}, &domain.APIError{Op: remote.OpListDrives, Status: http.StatusBadRequest, Err: err}
	}
	page := domain.TeamDrivePage{Drives: append([]domain.TeamDrive(nil), d.drives[start:end]...)}
	page.NextPageToken, err = cursor.Next("drives", end, len(d.drives))
	if err != nil {
		return domain.TeamDrivePage{}, err
	}
	return page, nil
}

func (d *Directory) CreateTeamDrive(ctx context.Context, requestID, name string) (domain.TeamDrive, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter(remote.OpCreateDrive, requestID, name); err != nil {
		return domain.TeamDrive{}, err
	}
	td := domain.TeamDrive{ID: d.nextID("drive"), Name: name}
	d.drives = append(d.drives, td)
	return td, nil
}

// enter records the call and returns any injected fault. Caller holds mu.
func (d *Directory) enter(op string, args ...string) error {
	d.calls = append(d.calls, Call{Op: op, Args: args})

	if queued := d.faults[op]; len(queued) > 0 {
		d.faults[op] = queued[1:]
		return queued[0]
	}
	if len(args) > 0 && d.denied[op+"/"+args[0]] {
		return Status(op, http.StatusForbidden)
	}
	return nil
}

func (d *Directory) add(it domain.Item) domain.Item {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.insert(it)
}

// insert stores it and links it under each parent. Caller holds mu.
func (d *Directory) insert(it domain.Item) domain.Item {
	stored := clone(it)
	d.items[it.ID] = &stored
	for _, p := range it.ParentIDs {
		d.children[p] = append(d.children[p], it.ID)
	}
	return clone(stored)
}

func (d *Directory) nextID(prefix string) string {
	d.seq++
	return fmt.Sprintf("%s-%d", prefix, d.seq)
}

func link(id string) string {
	return "https://drive.example.test/open?id=" + id
}

func clone(it domain.Item) domain.Item {
	it.ParentIDs = append([]string(nil), it.ParentIDs...)
	it.Owners = append([]domain.Owner(nil), it.Owners...)
	return it
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

var _ remote.AdminClient = (*Directory)(nil)
