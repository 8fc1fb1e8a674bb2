package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/stratfolio/ingest"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>...",
		Short: "Import strategy backtest exports into the library",
		Long: `Import one or more JSON exports. Each file holds a single strategy or an
array of them. Files that fail validation are reported and skipped; the
command fails only if no file could be imported.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			norm := a.normalizer()
			out := cmd.OutOrStdout()

			var uploads []ingest.Upload
			var rejected int
			for _, path := range args {
				name := filepath.Base(path)
				st, err := os.Stat(path)
				if err != nil {
					return fmt.Errorf("stat %s: %w", path, err)
				}
				if err := norm.CheckUploadEligible(ingest.FileInfo{Name: name, Size: st.Size()}); err != nil {
					fmt.Fprintf(out, "✗ %v\n", err)
					rejected++
					continue
				}
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				uploads = append(uploads, ingest.Upload{Name: name, Data: data})
			}
			if len(uploads) == 0 {
				return fmt.Errorf("no eligible files (%d rejected)", rejected)
			}

			res, err := norm.NormalizeBatch(uploads)
			for _, fe := range res.Errors {
				fmt.Fprintf(out, "✗ %v\n", fe)
			}
			if err != nil {
				return fmt.Errorf("import failed: no file could be parsed")
			}

			lib, err := a.openLibrary(cmd)
			if err != nil {
				return err
			}
			defer lib.Close()

			for _, f := range res.Files {
				if err := lib.AddUpload(cmd.Context(), f); err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ %s: %d strategies\n", f.Name, len(f.Strategies))
			}
			return nil
		},
	}
}

func newUploadsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "uploads",
		Short: "List imported files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.openLibrary(cmd)
			if err != nil {
				return err
			}
			defer lib.Close()

			for _, u := range lib.Uploads() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d strategies\t%s\n",
					u.Name, len(u.Strategies), u.UploadedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <upload-name>",
		Short: "Remove an imported file and its strategies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.openLibrary(cmd)
			if err != nil {
				return err
			}
			defer lib.Close()

			if err := lib.RemoveUpload(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s\n", args[0])
			return nil
		},
	}
}
