package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rpgpanel/internal/config"
)

func initCmd() *cobra.Command {
	var projectName string
	var template string
	var baseURL string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold rpgpanel.yaml and panels.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(projectName, template, baseURL)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().StringVar(&template, "template", "minecraft-rpg", "Panel schema template name")
	cmd.Flags().StringVar(&baseURL, "base-url", "http://localhost:8080", "RPG admin API base URL")
	return cmd
}

func runInit(projectName, template, baseURL string) error {
	schemaPath := config.DefaultSchemaPath
	for _, path := range []string{projectFile, schemaPath} {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}

	contents, err := config.Template(template)
	if err != nil {
		return err
	}

	configContents := fmt.Sprintf("project: %s\nversion: 1\n\napi:\n  base_url: %s\n  timeout: 10s\n\nsession:\n  dsn: %s\n\nschema: %s\n",
		projectName, baseURL, config.DefaultSessionDSN, schemaPath)
	if err := os.WriteFile(projectFile, []byte(configContents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", projectFile, err)
	}
	if err := os.WriteFile(schemaPath, contents, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", schemaPath, err)
	}

	return nil
}
