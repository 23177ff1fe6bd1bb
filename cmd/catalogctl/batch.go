// Seed and import commands run a catalog batch and print its progress.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"sageset/web/internal/service"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Add the built-in exercises",
	Long: `Seed adds every built-in exercise whose name is not already in the
catalog. Existing entries are never modified, so running it twice is safe.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := service.NewCatalogService(stores.Catalog, log)
		return runSeed(cmd.Context(), svc, cmd.OutOrStdout())
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import exercises from a JSON file",
	Long: `Import reconciles a JSON array of exercises against the catalog.
Records whose name matches an existing entry update it; new names create
entries. The whole batch is committed at once or not at all.

Example:
  catalogctl import exercises.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := service.NewCatalogService(stores.Catalog, log)
		return runImport(cmd.Context(), svc, args[0], cmd.OutOrStdout())
	},
}

func runSeed(ctx context.Context, svc service.CatalogService, out io.Writer) error {
	summary, err := svc.Seed(ctx, printProgress(out))
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	fmt.Fprintf(out, "Seed complete: %d created, %d skipped.\n", summary.Created, summary.Skipped)
	return nil
}

func runImport(ctx context.Context, svc service.CatalogService, path string, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	summary, err := svc.Import(ctx, data, printProgress(out))
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	fmt.Fprintln(out, summary.Message())
	return nil
}

func printProgress(out io.Writer) service.ProgressFunc {
	return func(phase service.Phase, percent int, message string) {
		fmt.Fprintf(out, "[%3d%%] %-9s %s\n", percent, phase, message)
	}
}
