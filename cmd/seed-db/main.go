// Command seed-db applies migrations and installs the sample catalog plus
// default discount settings. Safe to re-run: it skips seeding when the
// catalog already has entries.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/agentur-schein/propshop/db"
	"github.com/agentur-schein/propshop/internal/domain/catalog"
	"github.com/agentur-schein/propshop/internal/storage/postgres"
)

type propJSON struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Price       decimal.Decimal    `json:"price"`
	PrintCost   decimal.Decimal    `json:"print_cost"`
	Category    string             `json:"category"`
	Images      []catalog.ImageRef `json:"images"`
}

func main() {
	var (
		databaseURL string
		propsFile   string
		force       bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&propsFile, "props-file", "", "path to a props JSON file (embedded sample catalog when empty)")
	flag.BoolVar(&force, "force", false, "seed even when the catalog is not empty")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, propsFile, force); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, propsFile string, force bool) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	slog.Info("migrations applied")

	data := db.SeedProps
	if propsFile != "" {
		data, err = os.ReadFile(propsFile)
		if err != nil {
			return errors.Wrap(err, "read props file")
		}
	}

	var props []propJSON
	if err := json.Unmarshal(data, &props); err != nil {
		return errors.Wrap(err, "parse props")
	}

	catalogRepo := postgres.NewCatalogRepository(pool)
	existing, err := catalogRepo.List(ctx)
	if err != nil {
		return errors.Wrap(err, "inspect catalog")
	}
	if len(existing) > 0 && !force {
		slog.Info("catalog already seeded, skipping props",
			slog.Int("existing", len(existing)))
	} else {
		for _, p := range props {
			_, err := catalogRepo.Create(ctx, catalog.PropInput{
				Name:        p.Name,
				Description: p.Description,
				Price:       p.Price,
				PrintCost:   p.PrintCost,
				Category:    p.Category,
				ImageURLs:   catalog.ImageURLs(p.Images),
			})
			if err != nil {
				return errors.Wrapf(err, "seed prop %q", p.Name)
			}
		}
		slog.Info("props seeded", slog.Int("count", len(props)))
	}

	settingsRepo := postgres.NewSettingsRepository(pool)
	tiers, err := settingsRepo.DiscountTiers(ctx)
	if err != nil {
		return errors.Wrap(err, "inspect discount settings")
	}
	// A stored row always carries updated_at; zero means the defaults came
	// back and nothing is persisted yet.
	if tiers.UpdatedAt.IsZero() {
		if _, err := settingsRepo.UpdateDiscountTiers(ctx, catalog.DefaultDiscountTiers()); err != nil {
			return errors.Wrap(err, "seed discount settings")
		}
		slog.Info("discount settings installed")
	} else {
		slog.Info("discount settings already present, skipping")
	}

	return nil
}
