package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gxcopy",
	Short: "Migrate a Google Drive folder into a Team Drive",
	Long: `gxcopy walks a Google Drive folder tree and recreates it in a Team Drive.
Files owned inside the owning domain, or by a user whose credentials were
supplied, are moved. Everything else is copied, and files with more than one
parent are copied with a "MULTIFILE " prefix.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log progress (info level)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log everything (debug level)")
	rootCmd.PersistentFlags().String("logfile", "", "Also write logs to this file")
	rootCmd.PersistentFlags().String("journal", "", "Path to run journal (overrides GXCOPY_JOURNAL_PATH)")
	rootCmd.PersistentFlags().String("admin-credentials", "", "Credentials file of a domain admin that can read the whole source folder")
}
