package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cnmaturity/internal/app"
	"cnmaturity/internal/config"
	"cnmaturity/internal/repository"
)

var (
	configPath string
	mongoURI   string
	database   string
	sourceDir  string
	drop       bool
)

var rootCmd = &cobra.Command{
	Use:   "maturity-seed",
	Short: "Load question modules and knowledge articles into MongoDB",
	Long: `Validates the bundled content (or a directory with questions/ and knowledge/)
and upserts it into the collections the server reads when catalog.source is mongo.`,
	SilenceUsage: true,
	RunE:         runSeed,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB URI (overrides config)")
	rootCmd.Flags().StringVar(&database, "database", "", "database name (overrides config)")
	rootCmd.Flags().StringVar(&sourceDir, "dir", "", "seed from this directory instead of the bundled content")
	rootCmd.Flags().BoolVar(&drop, "drop", false, "drop existing modules and articles first")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if mongoURI != "" {
		cfg.Mongo.URI = mongoURI
	}
	if database != "" {
		cfg.Mongo.Database = database
	}

	src := config.CatalogConfig{Source: config.SourceEmbedded}
	if sourceDir != "" {
		src = config.CatalogConfig{Source: config.SourceDir, Dir: sourceDir}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	// refuse to seed content the server would reject
	if _, _, err := app.LoadContent(ctx, src, nil); err != nil {
		return err
	}
	modules, articles, err := app.ReadSource(ctx, src, nil)
	if err != nil {
		return err
	}

	client, err := app.ConnectMongo(ctx, cfg.Mongo.URI)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.Mongo.Database)
	moduleRepo := repository.NewModuleRepo(db)
	articleRepo := repository.NewArticleRepo(db)

	if drop {
		if err := moduleRepo.Drop(ctx); err != nil {
			return fmt.Errorf("failed to drop modules: %w", err)
		}
		if err := articleRepo.Drop(ctx); err != nil {
			return fmt.Errorf("failed to drop articles: %w", err)
		}
	}

	for i := range modules {
		if err := moduleRepo.Upsert(ctx, &modules[i]); err != nil {
			return fmt.Errorf("failed to upsert module %s: %w", modules[i].Name, err)
		}
	}
	for _, a := range articles {
		if err := articleRepo.Upsert(ctx, a); err != nil {
			return fmt.Errorf("failed to upsert article %s: %w", a.ID, err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d modules and %d articles into %s\n", len(modules), len(articles), cfg.Mongo.Database)
	return nil
}
