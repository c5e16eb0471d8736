package tree

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lherron/gxcopy/internal/domain"
	"github.com/lherron/gxcopy/internal/logging"
	"github.com/lherron/gxcopy/internal/metrics"
	"github.com/lherron/gxcopy/internal/remote"
)

// Node is one folder's listing.
type Node struct {
	Folder   domain.Item
	Children []*Child
}

// Child is one entry of a folder listing. Subtree is set iff Recurse is.
type Child struct {
	Item     domain.Item
	IsFolder bool
	Recurse  bool
	Subtree  *Node
}

// Builder walks a source folder through a remote.Lister.
type Builder struct {
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewBuilder creates a Builder. Both arguments may be nil.
func NewBuilder(logger *zap.Logger, m *metrics.Metrics) *Builder {
	return &Builder{log: logging.OrNop(logger), metrics: m}
}

// Build lists root and every folder reachable from it, each distinct folder
// exactly once, depth first. The root itself is registered so that a cycle
// leading back to it is not expanded again. Any listing error aborts the walk.
func (b *Builder) Build(ctx context.Context, lister remote.Lister, root domain.Item) (*Node, *Registry, error) {
	if !root.IsFolder() {
		return nil, nil, domain.NewStructuralError("%s (%s) is not a folder", root.ID, root.Name)
	}

	reg := NewRegistry()
	if _, isNew := reg.register(root); isNew {
		b.metrics.ItemDiscovered(string(root.Kind))
	}

	node, err := b.walk(ctx, lister, reg, root, "")
	if err != nil {
		return nil, nil, err
	}
	return node, reg, nil
}

func (b *Builder) walk(ctx context.Context, lister remote.Lister, reg *Registry, folder domain.Item, prefix string) (*Node, error) {
	path := prefix + "/" + folder.Name
	b.log.Info("listing folder", zap.String("id", folder.ID), zap.String("path", path))

	node := &Node{Folder: folder}
	ref := ParentRef{ID: folder.ID, Name: folder.Name, Path: path, ViewLink: folder.ViewLink}

	token := ""
	for {
		page, err := lister.ListChildren(ctx, folder.ID, token)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", path, err)
		}

		for _, it := range page.Items {
			b.log.Info("found child",
				zap.String("id", it.ID),
				zap.String("name", it.Name),
				zap.String("kind", string(it.Kind)))

			entry, isNew := reg.register(it)
			child := &Child{Item: it, IsFolder: it.IsFolder()}
			if isNew {
				b.metrics.ItemDiscovered(string(it.Kind))
				child.Recurse = child.IsFolder
			} else {
				b.log.Debug("already registered, adding parent reference",
					zap.String("id", it.ID),
					zap.String("parent", folder.ID))
			}
			entry.Parents = append(entry.Parents, ref)
			node.Children = append(node.Children, child)
		}

		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}
	b.metrics.FolderListed()

	for _, child := range node.Children {
		if !child.Recurse {
			continue
		}
		b.log.Debug("traversing", zap.String("id", child.Item.ID), zap.String("name", child.Item.Name))
		sub, err := b.walk(ctx, lister, reg, child.Item, path)
		if err != nil {
			return nil, err
		}
		child.Subtree = sub
	}

	return node, nil
}
