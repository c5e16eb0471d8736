package migrate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lherron/gxcopy/internal/domain"
	"github.com/lherron/gxcopy/internal/journal"
	"github.com/lherron/gxcopy/internal/logging"
	"github.com/lherron/gxcopy/internal/metrics"
	"github.com/lherron/gxcopy/internal/remote"
	"github.com/lherron/gxcopy/internal/tree"
)

// Identity is a user email bound to a client acting with that user's access.
type Identity struct {
	Email  string
	Client remote.Client
}

// Options configures a Migrator.
type Options struct {
	OwningDomain string
	Identities   []Identity
	CopyAll      bool
	Journal      journal.Recorder
	Logger       *zap.Logger
	Metrics      *metrics.Metrics
}

// Migrator applies placement decisions against the remote system.
type Migrator struct {
	admin    remote.Client
	users    map[string]remote.Client
	policy   Policy
	recorder journal.Recorder
	log      *zap.Logger
	metrics  *metrics.Metrics
}

// New creates a Migrator. admin creates folders, copies files and moves
// files owned inside the owning domain.
func New(admin remote.Client, opts Options) *Migrator {
	m := &Migrator{
		admin:    admin,
		users:    make(map[string]remote.Client, len(opts.Identities)),
		recorder: opts.Journal,
		log:      logging.OrNop(opts.Logger),
		metrics:  opts.Metrics,
		policy: Policy{
			OwningDomain: opts.OwningDomain,
			CopyAll:      opts.CopyAll,
		},
	}
	if m.recorder == nil {
		m.recorder = journal.Nop{}
	}
	for _, id := range opts.Identities {
		key := strings.ToLower(strings.TrimSpace(id.Email))
		if _, dup := m.users[key]; dup {
			continue
		}
		m.users[key] = id.Client
		m.policy.Identities = append(m.policy.Identities, id.Email)
	}
	return m
}

// Policy returns the placement policy the migrator applies.
func (m *Migrator) Policy() Policy {
	return m.policy
}

// Migrate recreates root's folder structure under dest and places every
// file. Each source folder is created once per run; its counterpart is kept
// on the registry entry. A refused move falls back to a copy. Any other
// failure, including a failed folder creation or copy, stops the run.
func (m *Migrator) Migrate(ctx context.Context, root *tree.Node, reg *tree.Registry, dest domain.Item) error {
	entry, ok := reg.Get(root.Folder.ID)
	if !ok {
		return fmt.Errorf("root folder %s is not registered", root.Folder.ID)
	}
	d := dest
	entry.Destination = &d

	m.log.Debug("migrating folder", zap.String("folder", root.Folder.Name), zap.String("destination", dest.ID))
	return m.migrateFolder(ctx, root, reg, dest)
}

func (m *Migrator) migrateFolder(ctx context.Context, node *tree.Node, reg *tree.Registry, dest domain.Item) error {
	for _, child := range node.Children {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !child.IsFolder {
			if err := m.placeFile(ctx, child.Item, dest); err != nil {
				return err
			}
			continue
		}

		entry, ok := reg.Get(child.Item.ID)
		if !ok {
			return fmt.Errorf("folder %s (%s) is not registered", child.Item.ID, child.Item.Name)
		}
		if entry.Destination == nil {
			created, err := m.admin.CreateFolder(ctx, dest.ID, child.Item.Name)
			if err != nil {
				return fmt.Errorf("failed to create folder %q in %s: %w", child.Item.Name, dest.ID, err)
			}
			entry.Destination = &created
			m.log.Debug("created folder",
				zap.String("name", child.Item.Name),
				zap.String("source", child.Item.ID),
				zap.String("destination", created.ID))
			m.metrics.Placement(string(ActionCreateFolder))
			m.record(ctx, journal.Action{
				Kind:                journal.KindCreateFolder,
				SourceID:            child.Item.ID,
				SourceName:          child.Item.Name,
				DestinationParentID: dest.ID,
				ResultID:            created.ID,
			})
		}

		if child.Recurse {
			if err := m.migrateFolder(ctx, child.Subtree, reg, *entry.Destination); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Migrator) placeFile(ctx context.Context, it domain.Item, dest domain.Item) error {
	d := Decide(it, m.policy)
	logger := m.log.With(zap.String("file", it.Name), zap.String("id", it.ID))

	switch d.Action {
	case ActionMultifile:
		logger.Info("file has multiple parents, copying with prefix", zap.String("name", d.Name))
	case ActionMove:
		logger.Info("file can be moved",
			zap.String("owner", d.Owner.Email),
			zap.String("identity", d.Identity))

		moved, err := m.move(ctx, it, dest, d.Identity)
		if err == nil {
			m.metrics.Placement(string(ActionMove))
			m.record(ctx, journal.Action{
				Kind:                journal.KindMove,
				SourceID:            it.ID,
				SourceName:          it.Name,
				DestinationParentID: dest.ID,
				ResultID:            moved.ID,
				Identity:            identityLabel(d.Identity),
			})
			return nil
		}
		if !errors.Is(err, domain.ErrDenied) {
			return fmt.Errorf("failed to move %q: %w", it.Name, err)
		}

		logger.Info("move refused, copying instead", zap.Error(err))
		m.metrics.Placement("move_failed")
		m.record(ctx, journal.Action{
			Kind:                journal.KindMoveFailed,
			SourceID:            it.ID,
			SourceName:          it.Name,
			DestinationParentID: dest.ID,
			Identity:            identityLabel(d.Identity),
		})
		d = Decision{Rule: d.Rule, Action: ActionCopy, Name: it.Name, Identity: AdminIdentity}
	default:
		logger.Info("copying file")
	}

	copied, err := m.admin.CopyFile(ctx, it.ID, dest.ID, d.Name)
	if err != nil {
		return fmt.Errorf("failed to copy %q: %w", it.Name, err)
	}

	kind := journal.KindCopy
	if d.Action == ActionMultifile {
		kind = journal.KindMultifile
	}
	m.metrics.Placement(string(d.Action))
	m.record(ctx, journal.Action{
		Kind:                kind,
		SourceID:            it.ID,
		SourceName:          it.Name,
		DestinationParentID: dest.ID,
		ResultID:            copied.ID,
	})
	return nil
}

func (m *Migrator) move(ctx context.Context, it, dest domain.Item, identity string) (domain.Item, error) {
	client := m.admin
	if identity != AdminIdentity {
		c, ok := m.users[strings.ToLower(strings.TrimSpace(identity))]
		if !ok {
			return domain.Item{}, fmt.Errorf("no client for identity %s", identity)
		}
		client = c
	}

	var from string
	if len(it.ParentIDs) > 0 {
		from = it.ParentIDs[0]
	}
	return client.MoveFile(ctx, it.ID, from, dest.ID)
}

// record writes to the journal. Failures are logged and otherwise ignored.
func (m *Migrator) record(ctx context.Context, a journal.Action) {
	if err := m.recorder.Record(ctx, a); err != nil {
		m.log.Warn("failed to journal action",
			zap.String("kind", string(a.Kind)),
			zap.String("source", a.SourceID),
			zap.Error(err))
	}
}

func identityLabel(identity string) string {
	if identity == AdminIdentity {
		return ""
	}
	return identity
}
