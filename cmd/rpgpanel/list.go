package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"rpgpanel/internal/resource"
)

func listCmd() *cobra.Command {
	var search string
	var filters []string
	cmd := &cobra.Command{
		Use:   "list <panel>",
		Short: "Show a panel's records as a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(args[0], search, filters)
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive text matched against the panel's search fields")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Equality filter field=value (repeatable)")
	return cmd
}

func runList(name, search string, filters []string) error {
	ctx := context.Background()

	equals, err := parsePairs(filters)
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	p, err := a.registry.Open(ctx, name)
	if err != nil {
		return err
	}

	v := p.View(resource.NewFilter(search, equals))
	return v.Write(os.Stdout, p.Descriptor())
}
