package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stratfolio/analytics"
	"github.com/rustyeddy/stratfolio/export"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var curvePath string

	cmd := &cobra.Command{
		Use:   "analyze [strategy-id]...",
		Short: "Portfolio statistics and correlation risk for strategies",
		Long: `Analyze the given strategies as if traded together. With no ids every
strategy in the library is analyzed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.openLibrary(cmd)
			if err != nil {
				return err
			}
			defer lib.Close()

			ss := lib.Strategies()
			if len(args) > 0 {
				if ss, err = lib.Lookup(args); err != nil {
					return err
				}
			}

			report := analytics.Analyze(ss)
			out := cmd.OutOrStdout()
			printStatistics(out, report.Statistics)
			printPairs(out, report.Correlation.Pairs)

			if curvePath != "" {
				err := export.WriteFileAtomic(curvePath, func(w io.Writer) error {
					return export.WriteCurveCSV(w, report.MergedCurve)
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ Merged curve written to %s\n", curvePath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&curvePath, "curve", "", "write the merged equity curve to this CSV file")
	return cmd
}
