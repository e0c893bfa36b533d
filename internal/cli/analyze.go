package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newAnalyzeCommand(a *app) *cobra.Command {
	var (
		audioPath  string
		question   string
		role       string
		transcript string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Transcribe and score one recorded answer",
		RunE: func(cmd *cobra.Command, args []string) error {
			audio, err := os.ReadFile(audioPath)
			if err != nil {
				return errors.Wrap(err, "failed to read audio")
			}

			ctx := cmd.Context()
			metrics := a.pipeline.Extractor.Extract(ctx, audio, transcript)
			evaluation := a.pipeline.Evaluator.Evaluate(ctx, question, metrics, role)

			out := cmd.OutOrStdout()
			if a.jsonMode {
				return a.printJSON(out, evaluation)
			}

			heading.Fprintf(out, "Score: %d/5\n", evaluation.Score)
			fmt.Fprintf(out, "%s\n\n", evaluation.Justification)
			if evaluation.IsFallback() {
				warning.Fprintln(out, "⚠️  Speech metrics are estimated (transcription unavailable)")
			}
			muted.Fprintf(out, "Pace: %d WPM · Pauses: %d · Filler words: %d · Confidence: %.0f%%\n",
				evaluation.WordsPerMinute, evaluation.PauseCount, evaluation.FillerWordCount, evaluation.Confidence*100)
			muted.Fprintf(out, "Transcript: %s\n", evaluation.Transcript)
			return nil
		},
	}

	cmd.Flags().StringVar(&audioPath, "audio", "", "path to the recorded answer")
	cmd.Flags().StringVar(&question, "question", "", "interview question that was answered")
	cmd.Flags().StringVar(&role, "role", "", "job role of the interview")
	cmd.Flags().StringVar(&transcript, "transcript", "", "transcript to use when speech-to-text is unavailable")
	_ = cmd.MarkFlagRequired("audio")
	_ = cmd.MarkFlagRequired("question")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}
