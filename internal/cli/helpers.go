package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lherron/gxcopy/internal/cli/appctx"
	"github.com/lherron/gxcopy/internal/render"
)

// commandContext returns the command's context, or Background when the
// command was invoked without one (as in tests).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// outputFormat resolves the --format flag against the configured default.
func outputFormat(app *appctx.App, flag string) (render.Format, error) {
	if flag != "" {
		return render.ParseFormat(flag)
	}
	return render.ParseFormat(app.Config.Output)
}
