package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/lherron/gxcopy/internal/cli/appctx"
	"github.com/lherron/gxcopy/internal/render"
)

var journalCmd = &cobra.Command{
	Use:   "journal [RUN_ID]",
	Short: "Show recorded migration runs",
	Long: `Lists recorded migrate runs, newest first. With a RUN_ID, lists the
folder creations, moves and copies that run performed, in order.`,
	Args: cobra.MaximumNArgs(1),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runJournal),
}

var (
	journalLimit  int
	journalFormat string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	journalCmd.Flags().StringVarP(&journalFormat, "format", "o", "", "Output format: table, json, yaml, tsv")
}

func runJournal(app *appctx.App, cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	format, err := outputFormat(app, journalFormat)
	if err != nil {
		return err
	}
	out := render.NewRenderer(cmd.OutOrStdout(), format)

	if len(args) == 1 {
		actions, err := app.Journal.Actions(ctx, args[0])
		if err != nil {
			return err
		}
		if format == render.FormatJSON || format == render.FormatYAML {
			return renderStructured(out, format, actions)
		}

		t := render.Table{
			Title:   "Run " + args[0],
			Headers: []string{"Time", "Kind", "Source ID", "Name", "Destination parent", "Result ID", "Identity"},
		}
		for _, a := range actions {
			t.Rows = append(t.Rows, []string{
				a.CreatedAt.Local().Format(time.DateTime), string(a.Kind), a.SourceID, a.SourceName,
				a.DestinationParentID, a.ResultID, a.Identity,
			})
		}
		return out.Render(t)
	}

	runs, err := app.Journal.Runs(ctx, journalLimit)
	if err != nil {
		return err
	}
	if format == render.FormatJSON || format == render.FormatYAML {
		return renderStructured(out, format, runs)
	}

	t := render.Table{
		Title:   "Runs",
		Headers: []string{"Run ID", "Started", "Status", "Dry run", "Source", "Destination", "Error"},
	}
	for _, r := range runs {
		t.Rows = append(t.Rows, []string{
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Status, strconv.FormatBool(r.DryRun),
			r.SourceFolderID, r.DestinationID, r.Error,
		})
	}
	return out.Render(t)
}

func renderStructured(out *render.Renderer, format render.Format, data interface{}) error {
	switch format {
	case render.FormatJSON:
		return out.RenderJSON(data)
	case render.FormatYAML:
		return out.RenderYAML(data)
	default:
		return fmt.Errorf("format %s is not structured", format)
	}
}
