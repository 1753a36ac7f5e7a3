package cmd

import (
	"github.com/spf13/cobra"

	"github.com/edugen/edugen/internal/app"
)

var rootCmd = &cobra.Command{
	Use:          "edugen",
	Short:        "Timed topic assessments in the terminal",
	Long:         "Terminal client for the edugen tutoring service. Browse subjects, take timed assessments and review graded answers.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		return app.Run(e.deps(), app.Start{Kind: app.StartHome})
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides EDUGEN_CONFIG)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides EDUGEN_DB env var)")
	rootCmd.PersistentFlags().Bool("demo", false, "Use a built-in offline catalogue instead of the backend")

	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
