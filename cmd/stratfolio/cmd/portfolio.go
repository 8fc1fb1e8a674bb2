package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stratfolio/export"
)

func newPortfolioCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Create, list, delete and export portfolios",
		Long: `Manage portfolio snapshots.

Subcommands:
  create  - Snapshot strategies into a new portfolio
  list    - List saved portfolios
  rename  - Rename a portfolio
  delete  - Delete a portfolio
  export  - Write a portfolio as a zip archive
  csv     - Write a portfolio's statistics as CSV`,
	}

	cmd.AddCommand(
		newPortfolioCreateCmd(a),
		newPortfolioListCmd(a),
		newPortfolioRenameCmd(a),
		newPortfolioDeleteCmd(a),
		newPortfolioExportCmd(a),
		newPortfolioCSVCmd(a),
	)
	return cmd
}

func newPortfolioCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name> <strategy-id>...",
		Short: "Snapshot strategies into a new portfolio",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.openLibrary(cmd)
			if err != nil {
				return err
			}
			defer lib.Close()

			p, err := lib.CreatePortfolioFrom(cmd.Context(), args[0], args[1:])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Created portfolio %s (%s, %d strategies)\n", p.ID, p.Name, len(p.Members))
			return nil
		},
	}
}

func newPortfolioListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved portfolios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.openLibrary(cmd)
			if err != nil {
				return err
			}
			defer lib.Close()

			printPortfolios(cmd.OutOrStdout(), lib.Portfolios())
			return nil
		},
	}
}

func newPortfolioRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <portfolio-id> <name>",
		Short: "Rename a portfolio",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.openLibrary(cmd)
			if err != nil {
				return err
			}
			defer lib.Close()

			p, err := lib.RenamePortfolio(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Renamed %s to %s\n", p.ID, p.Name)
			return nil
		},
	}
}

func newPortfolioDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <portfolio-id>",
		Short: "Delete a portfolio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.openLibrary(cmd)
			if err != nil {
				return err
			}
			defer lib.Close()

			if err := lib.DeletePortfolio(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s\n", args[0])
			return nil
		},
	}
}

func newPortfolioExportCmd(a *app) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export <portfolio-id>",
		Short: "Write a portfolio as SYMBOL/PERIOD/strategy-<uuid>.json entries in a zip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.openLibrary(cmd)
			if err != nil {
				return err
			}
			defer lib.Close()

			p, err := lib.Portfolio(args[0])
			if err != nil {
				return err
			}

			ex := a.exporter()
			job := export.Start(cmd.Context(), func(w io.Writer) error {
				return ex.ArchivePortfolio(w, p)
			})
			data, err := job.Wait()
			if err != nil {
				return err
			}

			path := filepath.Join(a.outputDir(outDir), export.ArchiveFileName(p.Name, time.Now()))
			err = export.WriteFileAtomic(path, func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %s to %s\n", p.Name, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", "", "output directory (default from config)")
	return cmd
}

func newPortfolioCSVCmd(a *app) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "csv <portfolio-id>",
		Short: "Write a portfolio's per-strategy statistics as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.openLibrary(cmd)
			if err != nil {
				return err
			}
			defer lib.Close()

			p, err := lib.Portfolio(args[0])
			if err != nil {
				return err
			}

			path := filepath.Join(a.outputDir(outDir), export.SummaryFileName(p.Name, time.Now()))
			err = export.WriteFileAtomic(path, func(w io.Writer) error {
				return export.WriteSummary(w, p.Members)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", "", "output directory (default from config)")
	return cmd
}

func (a *app) outputDir(flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.Export.OutputDir
}
