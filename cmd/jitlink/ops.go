package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/born-ml/jitlink/internal/graph/scalar"
	"github.com/born-ml/jitlink/internal/numlib"
)

func newOpsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List registered op handlers and numeric functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "handlers:")
			for _, t := range a.disp.SupportedOps() {
				fmt.Fprintf(w, "  %s\n", t)
			}
			fmt.Fprintf(w, "scalar ops: %s\n", strings.Join(scalar.Names(), ", "))
			fmt.Fprintf(w, "numeric functions: %s\n", strings.Join(numlib.Names(), ", "))
			return nil
		},
	}
}
