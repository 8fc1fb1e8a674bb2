package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/stratfolio/strategy"
)

func newListCmd(a *app) *cobra.Command {
	var f strategy.Filter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List library strategies, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.openLibrary(cmd)
			if err != nil {
				return err
			}
			defer lib.Close()

			printStrategies(cmd.OutOrStdout(), lib.Filtered(f))
			return nil
		},
	}

	cmd.Flags().StringVar(&f.Symbol, "symbol", "", "only this symbol")
	cmd.Flags().StringVar(&f.Period, "period", "", "only this period")
	cmd.Flags().Float64Var(&f.MinProfitFactor, "min-pf", 0, "minimum profit factor")
	cmd.Flags().Float64Var(&f.MaxDrawdown, "max-dd", 0, "maximum absolute drawdown")
	cmd.Flags().Float64Var(&f.MinSQN, "min-sqn", 0, "minimum SQN")
	cmd.Flags().Float64Var(&f.MinWinRate, "min-winrate", 0, "minimum win rate")

	return cmd
}
