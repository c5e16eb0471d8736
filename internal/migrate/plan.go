package migrate

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/lherron/gxcopy/internal/render"
	"github.com/lherron/gxcopy/internal/tree"
)

// Step is one planned action. Paths are relative to the source and
// destination roots; folder paths end in "/".
type Step struct {
	Action          Action `json:"action" yaml:"action"`
	Rule            string `json:"rule,omitempty" yaml:"rule,omitempty"`
	SourceID        string `json:"source_id" yaml:"source_id"`
	SourcePath      string `json:"source_path" yaml:"source_path"`
	DestinationPath string `json:"destination_path" yaml:"destination_path"`
	Identity        string `json:"identity" yaml:"identity"`
}

// Plan computes what Migrate would do against root, without calling the
// remote system. Move steps assume the move succeeds.
func Plan(root *tree.Node, p Policy) []Step {
	pl := &planner{policy: p, folders: make(map[string]string)}
	pl.folders[root.Folder.ID] = ""
	pl.walk(root, "")
	return pl.steps
}

type planner struct {
	policy  Policy
	folders map[string]string // source folder id -> destination path
	steps   []Step
}

func (pl *planner) walk(node *tree.Node, srcPrefix string) {
	dstPrefix := pl.folders[node.Folder.ID]

	for _, child := range node.Children {
		it := child.Item
		srcPath := srcPrefix + it.Name

		if child.IsFolder {
			if _, done := pl.folders[it.ID]; !done {
				pl.folders[it.ID] = dstPrefix + it.Name + "/"
				pl.steps = append(pl.steps, Step{
					Action:          ActionCreateFolder,
					SourceID:        it.ID,
					SourcePath:      srcPath + "/",
					DestinationPath: dstPrefix + it.Name + "/",
					Identity:        AdminIdentity,
				})
			}
			if child.Recurse {
				pl.walk(child.Subtree, srcPath+"/")
			}
			continue
		}

		d := Decide(it, pl.policy)
		pl.steps = append(pl.steps, Step{
			Action:          d.Action,
			Rule:            d.Rule,
			SourceID:        it.ID,
			SourcePath:      srcPath,
			DestinationPath: dstPrefix + d.Name,
			Identity:        d.Identity,
		})
	}
}

// PlanDiff renders the plan as a unified diff from source paths to
// destination paths.
func PlanDiff(steps []Step, sourceName, destName string) (string, error) {
	var a, b strings.Builder
	for _, s := range steps {
		a.WriteString(s.SourcePath + "\n")
		b.WriteString(s.DestinationPath + "\n")
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a.String()),
		B:        difflib.SplitLines(b.String()),
		FromFile: "source:/" + sourceName,
		ToFile:   "destination:/" + destName,
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(diff)
}

// PlanRows projects a plan for rendering.
func PlanRows(steps []Step) render.Table {
	t := render.Table{
		Title:   "Migration plan",
		Headers: []string{"Action", "Source path", "Destination path", "Identity", "Rule"},
	}
	for _, s := range steps {
		t.Rows = append(t.Rows, []string{string(s.Action), s.SourcePath, s.DestinationPath, s.Identity, s.Rule})
	}
	return t
}
