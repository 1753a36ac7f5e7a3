package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/edugen/edugen/internal/app"
	"github.com/edugen/edugen/internal/store"
	"github.com/edugen/edugen/internal/ui/components"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List assessments finished on this machine",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		topicID, _ := cmd.Flags().GetInt("topic")
		interactive, _ := cmd.Flags().GetBool("tui")

		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if interactive {
			return app.Run(e.deps(), app.Start{Kind: app.StartHistory})
		}

		attempts, err := e.store.EventRepo().RecentAttempts(cmd.Context(), store.QueryOpts{Limit: limit, TopicID: topicID})
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}
		return printHistory(cmd.OutOrStdout(), attempts)
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of attempts to list (0 = all)")
	historyCmd.Flags().Int("topic", 0, "Only list attempts on this topic id")
	historyCmd.Flags().Bool("tui", false, "Browse history in the interactive view")
}

func printHistory(w io.Writer, attempts []store.AttemptEvent) error {
	if len(attempts) == 0 {
		_, err := fmt.Fprintln(w, "No assessments recorded yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tASSESSMENT\tTOPIC\tSCORE\tANSWERED\tDURATION\tRATING")
	for _, a := range attempts {
		topic := a.TopicName
		if topic == "" {
			topic = fmt.Sprintf("#%d", a.TopicID)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%.1f%%\t%d/%d\t%d:%02d\t%s\n",
			a.Timestamp.Local().Format("2006-01-02 15:04"), a.AssessmentID, topic, a.Score,
			a.Answered, a.Questions, a.DurationSecs/60, a.DurationSecs%60,
			components.PlainStars(a.Score))
	}
	return tw.Flush()
}
