package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rpgpanel/internal/form"
	"rpgpanel/internal/panel"
)

func createCmd() *cobra.Command {
	var edits editFlags
	cmd := &cobra.Command{
		Use:   "create <panel>",
		Short: "Create a record from field flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(args[0], "", edits)
		},
	}
	bindEditFlags(cmd, &edits)
	return cmd
}

func updateCmd() *cobra.Command {
	var edits editFlags
	cmd := &cobra.Command{
		Use:   "update <panel> <id>",
		Short: "Edit fields of an existing record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(args[0], args[1], edits)
		},
	}
	bindEditFlags(cmd, &edits)
	return cmd
}

func bindEditFlags(cmd *cobra.Command, edits *editFlags) {
	cmd.Flags().StringArrayVar(&edits.Set, "set", nil, "Field value field=value (repeatable)")
	cmd.Flags().StringArrayVar(&edits.Items, "item", nil, "Append a group entry group:field=value,... (repeatable)")
	cmd.Flags().StringArrayVar(&edits.Clear, "clear", nil, "Remove every entry of a group field (repeatable)")
}

// runSave edits id when given, otherwise opens a create form.
func runSave(name, id string, edits editFlags) error {
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

	if err := p.WithForm(func(f *form.Controller) error {
		var err error
		if id != "" {
			err = f.OpenForEdit(id)
		} else {
			err = f.OpenForCreate()
		}
		if err != nil {
			return err
		}
		if err := edits.apply(f); err != nil {
			f.Cancel()
			return err
		}
		return nil
	}); err != nil {
		return err
	}

	saved, err := p.Save(ctx)
	if err != nil {
		return err
	}
	printSaved(p, saved.ID(p.Descriptor().IDField), id == "")
	return nil
}

func printSaved(p *panel.Panel, id string, created bool) {
	verb := "Updated"
	if created {
		verb = "Created"
	}
	fmt.Fprintf(os.Stdout, "%s %s %s (%d records).\n", verb, p.Descriptor().Title, id, p.Len())
}
