package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "rpgpanel",
		Short: "Schema-driven admin client for the RPG plugin API",
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.AddCommand(initCmd())
	root.AddCommand(loginCmd())
	root.AddCommand(logoutCmd())
	root.AddCommand(whoamiCmd())
	root.AddCommand(listCmd())
	root.AddCommand(getCmd())
	root.AddCommand(createCmd())
	root.AddCommand(updateCmd())
	root.AddCommand(deleteCmd())
	root.AddCommand(statsCmd())
	root.AddCommand(watchCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(applyCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
