package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"alfredoptarigan/interview-coach/internal/models"
)

func newReportCommand(a *app) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "report <history.json>",
		Short: "Generate the final analysis for a list of answer evaluations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(err, "failed to read history")
			}

			var history []models.AnswerEvaluation
			if err := json.Unmarshal(raw, &history); err != nil {
				return errors.Wrap(err, "history must be a JSON array of answer evaluations")
			}

			report, err := a.pipeline.Aggregator.Aggregate(cmd.Context(), history, role)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.jsonMode {
				return a.printJSON(out, report)
			}

			m := report.Metrics
			heading.Fprintf(out, "Session summary (%d questions)\n", m.QuestionsAnswered)
			muted.Fprintf(out, "Average pace: %d WPM · Pauses: %d · Filler words: %d · Content: %.1f/5 · Confidence: %d%%\n\n",
				m.AverageWPM, m.TotalPauses, m.TotalFillerWords, m.AverageContentScore, m.AverageConfidencePercent)
			fmt.Fprintln(out, report.Narrative)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "job role of the interview")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}
