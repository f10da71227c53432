package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rpgpanel/internal/apply"
)

var applyFull bool
var applyExclude []string

func applyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <dir>...",
		Short: "Create or update records from markdown manifests",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runApply,
	}
	cmd.Flags().BoolVar(&applyFull, "full", false, "Re-apply every manifest (ignore stored hashes)")
	cmd.Flags().StringArrayVar(&applyExclude, "exclude", nil, "Path prefix to skip (repeatable)")
	return cmd
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	open := func(ctx context.Context, name string) (apply.Target, error) {
		p, err := a.registry.Open(ctx, name)
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	result, err := apply.Run(ctx, args, open, a.db, apply.Options{Full: applyFull, Exclude: applyExclude})
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Apply complete.")
	fmt.Fprintf(os.Stdout, "  Records created:   %d\n", result.Created)
	fmt.Fprintf(os.Stdout, "  Records updated:   %d\n", result.Updated)
	fmt.Fprintf(os.Stdout, "  Files skipped:     %d\n", result.FilesSkipped)
	fmt.Fprintf(os.Stdout, "  Manifests dropped: %d\n", result.Forgotten)

	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stdout, "\nErrors (%d):\n", len(result.Errors))
		for _, item := range result.Errors {
			fmt.Fprintf(os.Stdout, "  - %v\n", item)
		}
		return fmt.Errorf("apply completed with errors")
	}

	return nil
}
