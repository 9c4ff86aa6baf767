package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/inkwell-blog/inkwell/backend/internal/config"
)

var configPath string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "inkwell",
		Short: "Inkwell blog backend",
		Long: `Inkwell serves a JSON API for a blog: published posts, tags, comments,
share-by-email and favorites.

Examples:
  inkwell serve                          # Start the HTTP server
  inkwell migrate --config inkwell.yaml  # Create or update the schema`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (default ./inkwell.yaml if present)")

	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	return root
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		log.Printf("❌ %v", err)
		os.Exit(1)
	}
}
