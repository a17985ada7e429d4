// Package catalog holds the product catalog and the configuration the order
// engine consumes: discount tiers and mail-transport settings.
package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates a prop does not exist.
var ErrNotFound = errors.New("prop not found")

// MaxImages caps the number of images stored per prop.
const MaxImages = 5

// Prop is a single catalog entry: a movie prop with an optional physical
// reproduction (print) cost.
type Prop struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	PrintCost   decimal.Decimal
	Category    string
	CreatedAt   time.Time
	Images      []Image
}

// Image is one ordered catalog image for a prop.
type Image struct {
	ID       int64
	URL      string
	Position int
}

// PropInput carries the writable fields for creating or updating a prop.
// Image URLs beyond MaxImages are dropped.
type PropInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	PrintCost   decimal.Decimal
	Category    string
	ImageURLs   []string
}

// Repository defines persistence operations for the catalog.
type Repository interface {
	List(ctx context.Context) ([]Prop, error)
	GetByID(ctx context.Context, id int64) (*Prop, error)
	Create(ctx context.Context, in PropInput) (*Prop, error)
	Update(ctx context.Context, id int64, in PropInput) (*Prop, error)
	Delete(ctx context.Context, id int64) error
	// ReplaceAll atomically swaps the whole catalog for the given props.
	// Used by bulk import.
	ReplaceAll(ctx context.Context, props []PropInput) error
}
