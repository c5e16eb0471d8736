// Package migrate places the contents of a built source tree into a
// destination folder tree.
package migrate

import (
	"github.com/lherron/gxcopy/internal/domain"
)

// Action is what happens to a source item in the destination
type Action string

const (
	ActionCreateFolder Action = "create_folder"
	ActionMove         Action = "move"
	ActionCopy         Action = "copy"
	ActionMultifile    Action = "copy_multifile"
)

// AdminIdentity names the administrative identity in decisions and logs
const AdminIdentity = "admin"

// Policy parameterizes file placement.
type Policy struct {
	// OwningDomain is the normalized domain ("@example.org") whose members'
	// files the admin identity may move.
	OwningDomain string
	// Identities are user emails with their own move access.
	Identities []string
	// CopyAll disables moving entirely.
	CopyAll bool
}

// Decision is the outcome of the placement rules for one file.
type Decision struct {
	Rule     string
	Action   Action
	Name     string
	Identity string
	Owner    *domain.Owner
}

type rule struct {
	name  string
	apply func(it domain.Item, p Policy) (Decision, bool)
}

// placementRules are evaluated in order; the first that applies wins.
var placementRules = []rule{
	{name: "multi-parent", apply: multiParentRule},
	{name: "owner", apply: ownerRule},
	{name: "fallback", apply: fallbackRule},
}

// Decide runs the placement rules for a file.
func Decide(it domain.Item, p Policy) Decision {
	for _, r := range placementRules {
		if d, ok := r.apply(it, p); ok {
			d.Rule = r.name
			return d
		}
	}
	// fallbackRule always applies
	panic("migrate: no placement rule applied")
}

// Files with several parents cannot be reparented without breaking the
// other links, so they are copied under a flagged name.
func multiParentRule(it domain.Item, _ Policy) (Decision, bool) {
	if !it.HasMultipleParents() {
		return Decision{}, false
	}
	return Decision{
		Action:   ActionMultifile,
		Name:     domain.MultifilePrefix + it.Name,
		Identity: AdminIdentity,
	}, true
}

// The first owner that is either in the owning domain or one of the
// configured identities decides who moves the file. For a single owner the
// domain is checked first.
func ownerRule(it domain.Item, p Policy) (Decision, bool) {
	if p.CopyAll {
		return Decision{}, false
	}
	for i := range it.Owners {
		owner := it.Owners[i]
		if domain.EmailInDomain(owner.Email, p.OwningDomain) {
			return Decision{Action: ActionMove, Name: it.Name, Identity: AdminIdentity, Owner: &owner}, true
		}
		for _, id := range p.Identities {
			if domain.SameIdentity(id, owner.Email) {
				return Decision{Action: ActionMove, Name: it.Name, Identity: id, Owner: &owner}, true
			}
		}
	}
	return Decision{}, false
}

func fallbackRule(it domain.Item, _ Policy) (Decision, bool) {
	return Decision{Action: ActionCopy, Name: it.Name, Identity: AdminIdentity}, true
}
