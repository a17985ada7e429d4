// Command catalog-import moves catalog dumps in and out of the database
// without going through the HTTP API. Dumps use the same schema-versioned
// JSON document as the admin endpoints; gzip-compressed files (.gz) are
// handled transparently in both directions.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/agentur-schein/propshop/internal/domain/catalog"
	"github.com/agentur-schein/propshop/internal/storage/postgres"
)

// schemaVersion gates dumps: a file written by a different version is
// rejected instead of silently misread.
const schemaVersion = 1

type dumpProp struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Price       decimal.Decimal    `json:"price"`
	PrintCost   decimal.Decimal    `json:"print_cost"`
	Category    string             `json:"category"`
	Images      []catalog.ImageRef `json:"images"`
}

type dump struct {
	SchemaVersion int        `json:"schema_version"`
	ExportedAt    time.Time  `json:"exported_at"`
	Props         []dumpProp `json:"props"`
}

func main() {
	var (
		databaseURL string
		exportPath  string
		importPath  string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&exportPath, "export", "", "write the catalog to this file")
	flag.StringVar(&importPath, "import", "", "replace the catalog with this dump file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if (exportPath == "") == (importPath == "") {
		slog.Error("exactly one of --export or --import is required")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, exportPath, importPath); err != nil {
		slog.Error("catalog transfer failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, databaseURL, exportPath, importPath string) error {
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	repo := postgres.NewCatalogRepository(pool)
	if exportPath != "" {
		return exportCatalog(ctx, repo, exportPath)
	}
	return importCatalog(ctx, repo, importPath)
}

func exportCatalog(ctx context.Context, repo *postgres.CatalogRepository, path string) error {
	props, err := repo.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list catalog")
	}

	d := dump{
		SchemaVersion: schemaVersion,
		ExportedAt:    time.Now().UTC(),
		Props:         make([]dumpProp, len(props)),
	}
	for i, p := range props {
		images := make([]catalog.ImageRef, len(p.Images))
		for j, img := range p.Images {
			images[j] = catalog.ImageRef{URL: img.URL}
		}
		d.Props[i] = dumpProp{
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			PrintCost:   p.PrintCost,
			Category:    p.Category,
			Images:      images,
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create dump file")
	}
	defer f.Close()

	var w io.Writer = f
	var gz *pgzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = pgzip.NewWriter(f)
		w = gz
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return errors.Wrap(err, "write dump")
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return errors.Wrap(err, "finish compression")
		}
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close dump file")
	}

	slog.Info("catalog exported", slog.String("file", path), slog.Int("props", len(d.Props)))
	return nil
}

func importCatalog(ctx context.Context, repo *postgres.CatalogRepository, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open dump file")
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if magic, err := r.(*bufio.Reader).Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := pgzip.NewReader(r)
		if err != nil {
			return errors.Wrap(err, "open compressed dump")
		}
		defer gz.Close()
		r = gz
	}

	var d dump
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return errors.Wrap(err, "parse dump")
	}
	if d.SchemaVersion != schemaVersion {
		return errors.Errorf("unsupported schema version %d", d.SchemaVersion)
	}

	inputs := make([]catalog.PropInput, len(d.Props))
	for i, p := range d.Props {
		inputs[i] = catalog.PropInput{
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			PrintCost:   p.PrintCost,
			Category:    p.Category,
			ImageURLs:   catalog.ImageURLs(p.Images),
		}
	}

	if err := repo.ReplaceAll(ctx, inputs); err != nil {
		return errors.Wrap(err, "replace catalog")
	}

	slog.Info("catalog imported", slog.String("file", path), slog.Int("props", len(inputs)))
	return nil
}
