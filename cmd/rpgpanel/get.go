package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <panel> <id>",
		Short: "Display one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			p, err := a.registry.Panel(args[0])
			if err != nil {
				return err
			}
			// Panels without a get endpoint answer from the list.
			if p.Descriptor().Endpoints.Get == "" {
				if err := p.Load(ctx); err != nil {
					return err
				}
			}

			record, err := p.Record(ctx, args[1])
			if err != nil {
				return err
			}
			printRecord(os.Stdout, record)
			return nil
		},
	}
}
