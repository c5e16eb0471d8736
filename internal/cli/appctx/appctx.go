// Package appctx provides a shared bootstrap helper for CLI commands.
// It centralizes config loading, logger and metrics setup, journal opening,
// and Drive client construction.
package appctx

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lherron/gxcopy/internal/config"
	"github.com/lherron/gxcopy/internal/journal"
	"github.com/lherron/gxcopy/internal/logging"
	"github.com/lherron/gxcopy/internal/metrics"
	"github.com/lherron/gxcopy/internal/remote"
	"github.com/lherron/gxcopy/internal/remote/gdrive"
)

// ClientFactory creates an unretried client acting as the owner of a
// credentials file.
type ClientFactory func(ctx context.Context, credentialsFile string) (remote.Client, error)

// DriveClients builds Google Drive clients.
func DriveClients(ctx context.Context, credentialsFile string) (remote.Client, error) {
	return gdrive.New(ctx, credentialsFile)
}

// App holds the shared application context for commands.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	// Journal is nil if NeedsJournal is false
	Journal *journal.Journal

	// Clients creates remote clients; DriveClients unless a test replaces it
	Clients ClientFactory
}

// Close releases resources held by the App.
// Safe to call multiple times.
func (a *App) Close() {
	if a.Journal != nil {
		a.Journal.Close()
		a.Journal = nil
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}

// Options configures the bootstrap behavior.
type Options struct {
	// NeedsJournal indicates whether to open the run journal.
	NeedsJournal bool
}

// DefaultOptions returns default options (journal required).
func DefaultOptions() Options {
	return Options{NeedsJournal: true}
}

// RunFunc is the signature for command run functions.
type RunFunc func(app *App, cmd *cobra.Command, args []string) error

// WithApp wraps a command's run function with shared bootstrap logic.
// The journal is closed automatically when the wrapped function returns.
func WithApp(opts Options, fn RunFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := Bootstrap(cmd, opts)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := fn(app, cmd, args); err != nil {
			app.Logger.Error("command failed", zap.String("command", cmd.Name()), zap.Error(err))
			return err
		}
		return nil
	}
}

// Bootstrap initializes the App according to the given options.
// Callers are responsible for calling App.Close() when done.
func Bootstrap(cmd *cobra.Command, opts Options) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app := &App{Config: cfg, Metrics: metrics.New(), Clients: DriveClients}

	if v := stringFlag(cmd, "journal"); v != "" {
		cfg.JournalPath = v
	}
	if v := stringFlag(cmd, "admin-credentials"); v != "" {
		cfg.AdminCredentials = v
	}
	if v := stringFlag(cmd, "logfile"); v != "" {
		cfg.LogFile = v
	}

	logCfg := logging.Config{
		Level:  logging.LevelFor(boolFlag(cmd, "verbose"), boolFlag(cmd, "debug"), cfg.LogLevel),
		Format: cfg.LogFormat,
	}
	if cfg.LogFile != "" {
		logCfg.OutputPaths = []string{"stderr", cfg.LogFile}
	}
	app.Logger, err = logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	if opts.NeedsJournal {
		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		app.Journal = j
	}

	return app, nil
}

// RetryOptions returns the retry policy wired to the app's logger and metrics.
func (a *App) RetryOptions() remote.RetryOptions {
	return remote.RetryOptions{
		Retry:   a.Config.Retry(),
		Logger:  a.Logger,
		Metrics: a.Metrics,
	}
}

// AdminClient returns the retried client for the admin credentials.
func (a *App) AdminClient(ctx context.Context) (remote.AdminClient, error) {
	c, err := a.Clients(ctx, a.Config.AdminCredentials)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize admin: %w", err)
	}
	return remote.WithRetry(c, a.RetryOptions()), nil
}

// UserClient returns the retried client for one user's credentials.
func (a *App) UserClient(ctx context.Context, cred config.UserCredential) (remote.Client, error) {
	a.Logger.Info("authenticating as user", zap.String("email", cred.Email), zap.String("file", cred.File))
	c, err := a.Clients(ctx, cred.File)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize %s: %w", cred.Email, err)
	}
	return remote.WithRetry(c, a.RetryOptions()), nil
}

func stringFlag(cmd *cobra.Command, name string) string {
	if f := cmd.Flag(name); f != nil {
		return f.Value.String()
	}
	return ""
}

func boolFlag(cmd *cobra.Command, name string) bool {
	if f := cmd.Flag(name); f != nil {
		return f.Value.String() == "true"
	}
	return false
}
