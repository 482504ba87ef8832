// Command seedcatalog loads a YAML rule catalog into PostgreSQL, replacing
// the stored catalog in one transaction.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"neuroease/internal/platform/config"
	"neuroease/internal/platform/logger"
	"neuroease/internal/platform/postgres"
	"neuroease/internal/screening/catalog"
)

func main() {
	cfg := config.FromEnv()
	path := flag.String("catalog", cfg.Screening.CatalogPath, "path to the YAML rule catalog")
	flag.Parse()

	log := logger.New(cfg.Log.Format, cfg.Log.Level)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := seed(ctx, cfg, *path, log); err != nil {
		log.Error("catalog seeding failed", "error", err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, cfg config.Config, path string, log *slog.Logger) error {
	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	if db == nil {
		return errors.New("DATABASE_URL is required")
	}
	defer db.Close()

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return err
	}

	rules, err := catalog.NewFile(path).LoadRules(ctx)
	if err != nil {
		return err
	}
	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			return err
		}
	}

	if err := catalog.NewPostgres(db).SaveAll(ctx, rules); err != nil {
		return err
	}
	log.Info("rule catalog seeded", "path", path, "rules", len(rules))
	return nil
}
