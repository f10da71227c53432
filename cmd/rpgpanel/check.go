package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rpgpanel/internal/validate"
)

func checkCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "check [panel...]",
		Short: "Check server records against the panel schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !all {
				return fmt.Errorf("name a panel or pass --all")
			}
			return runCheck(args, all)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Check every panel in the schema")
	return cmd
}

func runCheck(names []string, all bool) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if all {
		names = a.schema.Names()
	}

	var errorIssues []validate.Issue
	var warnIssues []validate.Issue
	checked := 0
	for _, name := range names {
		p, err := a.registry.Panel(name)
		if err != nil {
			return err
		}
		records, err := p.Fetch(ctx)
		if err != nil {
			return err
		}
		report, err := validate.Run(p.Descriptor(), records)
		if err != nil {
			return err
		}
		checked += report.Checked
		for _, issue := range report.Issues {
			switch issue.Severity {
			case validate.SeverityError:
				errorIssues = append(errorIssues, issue)
			case validate.SeverityWarn:
				warnIssues = append(warnIssues, issue)
			}
		}
	}

	if len(errorIssues) == 0 && len(warnIssues) == 0 {
		fmt.Fprintf(os.Stdout, "No issues found in %d records.\n", checked)
		return nil
	}

	if len(errorIssues) > 0 {
		fmt.Fprintf(os.Stdout, "Errors (%d):\n", len(errorIssues))
		printIssues(os.Stdout, errorIssues)
	}
	if len(warnIssues) > 0 {
		if len(errorIssues) > 0 {
			fmt.Fprintln(os.Stdout, "")
		}
		fmt.Fprintf(os.Stdout, "Warnings (%d):\n", len(warnIssues))
		printIssues(os.Stdout, warnIssues)
	}

	if len(errorIssues) > 0 {
		return fmt.Errorf("check found errors")
	}
	return nil
}

func printIssues(out io.Writer, issues []validate.Issue) {
	for _, issue := range issues {
		location := issue.Panel
		if issue.Record != "" {
			location = fmt.Sprintf("%s/%s", issue.Panel, issue.Record)
		}
		if issue.Field != "" {
			location = fmt.Sprintf("%s.%s", location, issue.Field)
		}
		fmt.Fprintf(out, "  - %s: %s (%s)\n", location, issue.Message, issue.Code)
	}
}
