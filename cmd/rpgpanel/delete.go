package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rpgpanel/internal/form"
)

func deleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <panel> <id>",
		Short: "Delete a record after confirmation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm := promptConfirm(os.Stdin, os.Stdout)
			if yes {
				confirm = form.Always
			}
			return runDelete(args[0], args[1], confirm)
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	return cmd
}

func runDelete(name, id string, confirm form.Confirmer) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	p, err := a.registry.Open(ctx, name)
	if err != nil {
		return err
	}

	deleted, err := p.Delete(ctx, id, confirm)
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Fprintln(os.Stdout, "Cancelled.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "Deleted %s (%d records left).\n", id, p.Len())
	return nil
}
