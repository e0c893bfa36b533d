package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"alfredoptarigan/interview-coach/internal/bootstrap"
	"alfredoptarigan/interview-coach/internal/config"
	"alfredoptarigan/interview-coach/internal/logging"
)

// PipelineLoader builds the assessment pipeline a command runs against.
type PipelineLoader func(ctx context.Context) (*bootstrap.Pipeline, error)

type app struct {
	load     PipelineLoader
	pipeline *bootstrap.Pipeline
	jsonMode bool
}

// NewRootCommand builds the command tree. Tests pass a loader that returns fakes.
func NewRootCommand(load PipelineLoader) *cobra.Command {
	a := &app{load: load}

	root := &cobra.Command{
		Use:           "interview-cli",
		Short:         "Run the mock interview assessment pipeline from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.jsonMode {
				color.NoColor = true
			}
			p, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			a.pipeline = p
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "print raw JSON instead of formatted output")

	root.AddCommand(
		newQuestionsCommand(a),
		newAnalyzeCommand(a),
		newReportCommand(a),
		newBackendsCommand(a),
	)
	return root
}

// Execute runs the CLI against the configured backends.
func Execute() {
	cfg := config.Load()
	logging.Init(cfg.Server.Env)

	root := NewRootCommand(func(ctx context.Context) (*bootstrap.Pipeline, error) {
		return bootstrap.NewPipeline(ctx, cfg)
	})
	if err := root.ExecuteContext(context.Background()); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func (a *app) printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var (
	heading = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen)
	warning = color.New(color.FgYellow)
	muted   = color.New(color.Faint)
)
