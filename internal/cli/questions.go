package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newQuestionsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "questions <job role>",
		Short: "Validate a job role and generate interview questions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := strings.Join(args, " ")
			set, err := a.pipeline.Generator.PrepareInterview(cmd.Context(), role)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.jsonMode {
				return a.printJSON(out, set)
			}

			heading.Fprintf(out, "Interview questions for %s\n", role)
			if set.IsFallback() {
				warning.Fprintf(out, "⚠️  Using fallback questions (%s)\n", set.Reason)
			}
			for _, q := range set.Questions {
				success.Fprintf(out, "%d. [%s · %s · %ds] ", q.ID, q.Category, q.Difficulty, q.TimeLimitSeconds)
				fmt.Fprintf(out, "%s\n", q.Text)
			}
			return nil
		},
	}
}
