package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <panel>",
		Short: "Show a panel's stats header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args[0])
		},
	}
}

func runStats(name string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	p, err := a.registry.Panel(name)
	if err != nil {
		return err
	}
	stats, err := p.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%s (%d records)\n", p.Descriptor().Title, p.Len())
	for _, stat := range stats.Summary {
		fmt.Fprintf(os.Stdout, "  %s: %s\n", stat.Label, stat)
	}
	if len(stats.Server) > 0 {
		fmt.Fprintln(os.Stdout, "Server:")
		for _, key := range stats.Server.Keys() {
			fmt.Fprintf(os.Stdout, "  %s: %s\n", key, stats.Server.String(key))
		}
	}
	return nil
}
