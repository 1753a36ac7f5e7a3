package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	asmt "github.com/edugen/edugen/internal/assessment"
	"github.com/edugen/edugen/internal/ui/components"
)

const summaryConcurrency = 4

var summaryCmd = &cobra.Command{
	Use:   "summary <topic-id>...",
	Short: "Print your attempt summary for one or more topics",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int, len(args))
		for i, a := range args {
			id, err := parseID("topic", a)
			if err != nil {
				return err
			}
			ids[i] = id
		}

		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.requireSignIn(cmd.Context()); err != nil {
			return err
		}

		rows := fetchSummaries(cmd.Context(), e.svc, ids)
		return printSummaries(cmd.OutOrStdout(), rows)
	},
}

type summaryRow struct {
	topicID int
	summary *asmt.Summary
	err     error
}

// fetchSummaries loads every topic's summary in parallel, keeping the
// argument order.
func fetchSummaries(ctx context.Context, svc asmt.Service, ids []int) []summaryRow {
	rows := make([]summaryRow, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			s, err := svc.GetAssessmentSummary(gctx, id)
			rows[i] = summaryRow{topicID: id, summary: s, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return rows
}

func printSummaries(w io.Writer, rows []summaryRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOPIC\tNAME\tATTEMPTS\tBEST\tLATEST\tRATING")
	for _, r := range rows {
		switch {
		case r.err != nil:
			fmt.Fprintf(tw, "%d\t\t\t\t\terror: %v\n", r.topicID, r.err)
		case !r.summary.Attempted():
			name := ""
			if r.summary != nil {
				name = r.summary.TopicName
			}
			fmt.Fprintf(tw, "%d\t%s\t0\t-\t-\tnot attempted\n", r.topicID, name)
		default:
			s := r.summary
			fmt.Fprintf(tw, "%d\t%s\t%d\t%.1f%%\t%.1f%%\t%s %s\n",
				r.topicID, s.TopicName, s.TotalAttempts, s.BestScore, s.LastScore,
				components.PlainStars(s.BestScore), components.BandFor(s.BestScore).Label)
		}
	}
	return tw.Flush()
}
