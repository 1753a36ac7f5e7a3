package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/edugen/edugen/internal/app"
)

var assessCmd = &cobra.Command{
	Use:   "assess <topic-id>",
	Short: "Start a timed assessment on a topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topicID, err := parseID("topic", args[0])
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("name")

		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.requireSignIn(cmd.Context()); err != nil {
			return err
		}
		return app.Run(e.deps(), app.Start{Kind: app.StartAssessment, TopicID: topicID, TopicName: name})
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review <assessment-id>",
	Short: "Review the graded answers of a finished assessment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		assessmentID, err := parseID("assessment", args[0])
		if err != nil {
			return err
		}

		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.requireSignIn(cmd.Context()); err != nil {
			return err
		}
		return app.Run(e.deps(), app.Start{Kind: app.StartReview, AssessmentID: assessmentID})
	},
}

func init() {
	assessCmd.Flags().String("name", "", "Topic name shown in the header")
}

// parseID parses a positive numeric id argument.
func parseID(kind, arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q: must be a positive number", kind, arg)
	}
	return id, nil
}
