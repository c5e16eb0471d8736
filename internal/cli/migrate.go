package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lherron/gxcopy/internal/cli/appctx"
	"github.com/lherron/gxcopy/internal/config"
	"github.com/lherron/gxcopy/internal/domain"
	"github.com/lherron/gxcopy/internal/migrate"
	"github.com/lherron/gxcopy/internal/remote"
	"github.com/lherron/gxcopy/internal/render"
	"github.com/lherron/gxcopy/internal/report"
	"github.com/lherron/gxcopy/internal/tree"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy or move a folder tree into a Team Drive",
	Long: `Walks the source folder and recreates it in a Team Drive named after the
folder (or --dest-team-drive).

Placement rules, first match wins:
  1. a file with more than one parent is copied as "MULTIFILE <name>"
  2. a file owned by someone in --owning-domain is moved by the admin, and a
     file owned by a --user-credentials user is moved as that user
  3. anything else is copied

A refused move falls back to a copy. With --dry-run the tree is walked and
the reports and plan are printed, but nothing is changed.`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.DefaultOptions(), runMigrate),
}

var (
	migrateSourceFolderID string
	migrateDestTeamDrive  string
	migrateOwningDomain   string
	migrateUserCreds      []string
	migrateDryRun         bool
	migrateCopyAll        bool
	migrateExistsOK       bool
	migrateDiff           bool
	migrateFormat         string
	migrateMetricsFile    string
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().StringVar(&migrateSourceFolderID, "source-folder-id", "", "ID of the Drive folder to migrate (required)")
	migrateCmd.Flags().StringVar(&migrateDestTeamDrive, "dest-team-drive", "", "Name of the destination Team Drive (reused if it exists)")
	migrateCmd.Flags().StringVar(&migrateOwningDomain, "owning-domain", "", "Domain that will own the Team Drive (overrides GXCOPY_OWNING_DOMAIN)")
	migrateCmd.Flags().StringArrayVar(&migrateUserCreds, "user-credentials", nil, "email=path of a non-domain user whose files may be moved (repeatable)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "Walk the source and print reports and the plan without changing anything")
	migrateCmd.Flags().BoolVar(&migrateCopyAll, "copy-all", false, "Copy every file instead of moving the ones that could be moved")
	migrateCmd.Flags().BoolVar(&migrateExistsOK, "team-drive-exists-ok", false, "Reuse a Team Drive named like the source folder instead of failing")
	migrateCmd.Flags().BoolVar(&migrateDiff, "diff", false, "With --dry-run, print a unified diff of source and destination paths")
	migrateCmd.Flags().StringVarP(&migrateFormat, "format", "o", "", "Report format: table, json, yaml, tsv")
	migrateCmd.Flags().StringVar(&migrateMetricsFile, "metrics-file", "", "Write Prometheus metrics to this file when done")
	migrateCmd.MarkFlagRequired("source-folder-id")
}

func runMigrate(app *appctx.App, cmd *cobra.Command, args []string) (err error) {
	ctx := commandContext(cmd)
	log := app.Logger

	if err := domain.ValidateFolderID(migrateSourceFolderID); err != nil {
		return err
	}

	domainName := app.Config.OwningDomain
	if migrateOwningDomain != "" {
		domainName = migrateOwningDomain
	}
	owningDomain, err := domain.NormalizeDomain(domainName)
	if err != nil {
		return fmt.Errorf("%w (set --owning-domain or GXCOPY_OWNING_DOMAIN)", err)
	}

	creds, err := userCredentials(app.Config)
	if err != nil {
		return err
	}

	format, err := outputFormat(app, migrateFormat)
	if err != nil {
		return err
	}

	runID, err := app.Journal.StartRun(ctx, migrateSourceFolderID, migrateDryRun)
	if err != nil {
		return err
	}
	log = log.With(zap.String("run", runID))
	var destinationID string
	defer func() {
		if ferr := app.Journal.FinishRun(context.WithoutCancel(ctx), runID, destinationID, err); ferr != nil {
			log.Warn("failed to finish run in journal", zap.Error(ferr))
		}
		if werr := writeMetrics(app, migrateMetricsFile); werr != nil && err == nil {
			err = werr
		}
	}()

	log.Info("authenticating as administrator")
	admin, err := app.AdminClient(ctx)
	if err != nil {
		return err
	}

	identities := make([]migrate.Identity, 0, len(creds))
	for _, c := range creds {
		client, err := app.UserClient(ctx, c)
		if err != nil {
			return err
		}
		identities = append(identities, migrate.Identity{Email: c.Email, Client: client})
	}

	source, err := verifyFolder(ctx, admin, migrateSourceFolderID)
	if err != nil {
		return err
	}
	log.Info("valid source folder", zap.String("id", source.ID), zap.String("name", source.Name))

	var existing *domain.TeamDrive
	if !migrateDryRun {
		log.Info("looking for an existing Team Drive",
			zap.String("name", migrate.DestinationName(source.Name, migrateDestTeamDrive)))
		existing, err = migrate.ResolveDestination(ctx, admin, source.Name, migrateDestTeamDrive, migrateExistsOK)
		if err != nil {
			return err
		}
	}

	root, reg, err := tree.NewBuilder(log, app.Metrics).Build(ctx, admin, source)
	if err != nil {
		return err
	}
	log.Info("source tree read", zap.Int("items", reg.Len()))

	m := migrate.New(admin, migrate.Options{
		OwningDomain: owningDomain,
		Identities:   identities,
		CopyAll:      migrateCopyAll,
		Journal:      app.Journal.ForRun(runID),
		Logger:       log,
		Metrics:      app.Metrics,
	})

	out := render.NewRenderer(cmd.OutOrStdout(), format)
	if migrateDryRun {
		log.Info("dry run, nothing will be changed")
		return printDryRun(out, cmd, root, reg, m.Policy(), source.Name)
	}

	var dest domain.TeamDrive
	if existing != nil {
		log.Info("using existing Team Drive", zap.String("id", existing.ID), zap.String("name", existing.Name))
		dest = *existing
	} else {
		dest, err = migrate.CreateDestination(ctx, admin, migrate.DestinationName(source.Name, migrateDestTeamDrive))
		if err != nil {
			return err
		}
		log.Info("created Team Drive", zap.String("id", dest.ID), zap.String("name", dest.Name))
	}
	destinationID = dest.ID

	if err := m.Migrate(ctx, root, reg, dest.AsItem()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Migrated %q into Team Drive %q (ID: %s), run %s\n", source.Name, dest.Name, dest.ID, runID)
	return nil
}

func printDryRun(out *render.Renderer, cmd *cobra.Command, root *tree.Node, reg *tree.Registry, policy migrate.Policy, sourceName string) error {
	if err := out.Render(report.MultiparentRows(report.FindMultiparentFiles(reg))); err != nil {
		return err
	}
	if err := out.Render(report.OwnerRows(report.GroupOwners(reg))); err != nil {
		return err
	}

	steps := migrate.Plan(root, policy)
	if err := out.Render(migrate.PlanRows(steps)); err != nil {
		return err
	}

	if migrateDiff {
		diff, err := migrate.PlanDiff(steps, sourceName, migrate.DestinationName(sourceName, migrateDestTeamDrive))
		if err != nil {
			return fmt.Errorf("failed to diff plan: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), diff)
	}
	return nil
}

// verifyFolder fetches id and fails with a structural error unless it is a folder.
func verifyFolder(ctx context.Context, client remote.Client, id string) (domain.Item, error) {
	it, err := client.GetItem(ctx, id)
	if err != nil {
		return domain.Item{}, fmt.Errorf("could not find source folder %s: %w", id, err)
	}
	if !it.IsFolder() {
		return domain.Item{}, domain.NewStructuralError("%s (%s) is not a folder", id, it.Name)
	}
	return it, nil
}

// userCredentials prefers --user-credentials over configured ones.
func userCredentials(cfg *config.Config) ([]config.UserCredential, error) {
	if len(migrateUserCreds) == 0 {
		return cfg.UserCredentials, nil
	}
	var creds []config.UserCredential
	for _, v := range migrateUserCreds {
		c, err := config.ParseUserCredential(v)
		if err != nil {
			return nil, fmt.Errorf("--user-credentials: %w", err)
		}
		creds = append(creds, c)
	}
	return creds, nil
}

func writeMetrics(app *appctx.App, flagPath string) error {
	path := strings.TrimSpace(flagPath)
	if path == "" {
		path = app.Config.MetricsFile
	}
	if path == "" {
		return nil
	}
	if err := app.Metrics.WriteTextfile(path); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
