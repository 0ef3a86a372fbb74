package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"cnmaturity/internal/app"
	"cnmaturity/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the configured question catalog and knowledge library",
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var db *mongo.Database
	if cfg.Catalog.Source == config.SourceMongo {
		client, err := app.ConnectMongo(ctx, cfg.Mongo.URI)
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background())
		db = client.Database(cfg.Mongo.Database)
	}

	cat, lib, err := app.LoadContent(ctx, cfg.Catalog, db)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "catalog OK (source %s): %d questions, %d articles\n", cfg.Catalog.Source, cat.Len(), lib.Len())
	for _, c := range cat.Categories() {
		fmt.Fprintf(out, "  %-28s %d\n", c, len(cat.InCategory(c)))
	}
	return nil
}
