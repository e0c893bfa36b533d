package cli

import (
	"github.com/spf13/cobra"
)

func newBackendsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List model backends in fallback order",
		RunE: func(cmd *cobra.Command, args []string) error {
			backends := a.pipeline.Backends
			out := cmd.OutOrStdout()
			if a.jsonMode {
				names := make([]string, 0, len(backends))
				for _, b := range backends {
					names = append(names, b.Name())
				}
				return a.printJSON(out, names)
			}

			for i, b := range backends {
				success.Fprintf(out, "%d. %s", i+1, b.Name())
				muted.Fprintf(out, "  (max tokens %d, temperature %.1f)\n", b.MaxOutputTokens, b.Temperature)
			}
			return nil
		},
	}
}
