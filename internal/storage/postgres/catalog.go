package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agentur-schein/propshop/internal/domain/catalog"
)

const listPropsSQL = `SELECT id, name, description, price, print_cost, category, created_at
	FROM props ORDER BY id`

const getPropSQL = `SELECT id, name, description, price, print_cost, category, created_at
	FROM props WHERE id = $1`

const insertPropSQL = `INSERT INTO props (name, description, price, print_cost, category)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id`

const updatePropSQL = `UPDATE props
	SET name = $2, description = $3, price = $4, print_cost = $5, category = $6
	WHERE id = $1`

const deletePropSQL = `DELETE FROM props WHERE id = $1`

const listImagesSQL = `SELECT id, prop_id, image_url, position
	FROM prop_images ORDER BY prop_id, position`

const imagesForPropSQL = `SELECT id, image_url, position
	FROM prop_images WHERE prop_id = $1 ORDER BY position`

const insertImageSQL = `INSERT INTO prop_images (prop_id, image_url, position)
	VALUES ($1, $2, $3)`

const deleteImagesSQL = `DELETE FROM prop_images WHERE prop_id = $1`

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
// Images live in a child table ordered by position; writes replace a prop's
// images wholesale inside the same transaction as the prop row.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// List returns the whole catalog ordered by id, images attached in position
// order. Images are fetched in one query and joined in memory.
func (r *CatalogRepository) List(ctx context.Context) ([]catalog.Prop, error) {
	rows, err := r.pool.Query(ctx, listPropsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "listing props")
	}
	defer rows.Close()

	var props []catalog.Prop
	index := make(map[int64]int)
	for rows.Next() {
		var p catalog.Prop
		err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price,
			&p.PrintCost, &p.Category, &p.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "scanning prop")
		}
		index[p.ID] = len(props)
		props = append(props, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "listing props")
	}

	imgRows, err := r.pool.Query(ctx, listImagesSQL)
	if err != nil {
		return nil, errors.Wrap(err, "listing prop images")
	}
	defer imgRows.Close()

	for imgRows.Next() {
		var (
			img    catalog.Image
			propID int64
		)
		if err := imgRows.Scan(&img.ID, &propID, &img.URL, &img.Position); err != nil {
			return nil, errors.Wrap(err, "scanning prop image")
		}
		if i, ok := index[propID]; ok {
			props[i].Images = append(props[i].Images, img)
		}
	}
	if err := imgRows.Err(); err != nil {
		return nil, errors.Wrap(err, "listing prop images")
	}

	return props, nil
}

// GetByID returns one prop with its images, or catalog.ErrNotFound.
func (r *CatalogRepository) GetByID(ctx context.Context, id int64) (*catalog.Prop, error) {
	var p catalog.Prop
	err := r.pool.QueryRow(ctx, getPropSQL, id).Scan(&p.ID, &p.Name,
		&p.Description, &p.Price, &p.PrintCost, &p.Category, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "finding prop %d", id)
	}

	rows, err := r.pool.Query(ctx, imagesForPropSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "loading images for prop %d", id)
	}
	defer rows.Close()

	for rows.Next() {
		var img catalog.Image
		if err := rows.Scan(&img.ID, &img.URL, &img.Position); err != nil {
			return nil, errors.Wrap(err, "scanning prop image")
		}
		p.Images = append(p.Images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "loading images for prop %d", id)
	}

	return &p, nil
}

// Create inserts a prop and its images in one transaction.
func (r *CatalogRepository) Create(ctx context.Context, in catalog.PropInput) (*catalog.Prop, error) {
	var id int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insertPropSQL,
			in.Name, in.Description, in.Price, in.PrintCost, in.Category,
		).Scan(&id)
		if err != nil {
			return errors.Wrap(err, "inserting prop")
		}
		return insertImages(ctx, tx, id, in.ImageURLs)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Update rewrites a prop's fields and replaces its images. Returns
// catalog.ErrNotFound when the prop does not exist.
func (r *CatalogRepository) Update(ctx context.Context, id int64, in catalog.PropInput) (*catalog.Prop, error) {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, updatePropSQL,
			id, in.Name, in.Description, in.Price, in.PrintCost, in.Category)
		if err != nil {
			return errors.Wrapf(err, "updating prop %d", id)
		}
		if tag.RowsAffected() == 0 {
			return catalog.ErrNotFound
		}
		if _, err := tx.Exec(ctx, deleteImagesSQL, id); err != nil {
			return errors.Wrapf(err, "clearing images for prop %d", id)
		}
		return insertImages(ctx, tx, id, in.ImageURLs)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a prop; images go with it via the cascade. Returns
// catalog.ErrNotFound when nothing was deleted.
func (r *CatalogRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deletePropSQL, id)
	if err != nil {
		return errors.Wrapf(err, "deleting prop %d", id)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// ReplaceAll atomically swaps the whole catalog for the given props.
func (r *CatalogRepository) ReplaceAll(ctx context.Context, props []catalog.PropInput) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM props`); err != nil {
			return errors.Wrap(err, "clearing catalog")
		}
		for _, in := range props {
			var id int64
			err := tx.QueryRow(ctx, insertPropSQL,
				in.Name, in.Description, in.Price, in.PrintCost, in.Category,
			).Scan(&id)
			if err != nil {
				return errors.Wrapf(err, "inserting prop %q", in.Name)
			}
			if err := insertImages(ctx, tx, id, in.ImageURLs); err != nil {
				return err
			}
		}
		return nil
	})
}

// insertImages writes the image rows in position order, capped at MaxImages.
func insertImages(ctx context.Context, tx pgx.Tx, propID int64, urls []string) error {
	if len(urls) > catalog.MaxImages {
		urls = urls[:catalog.MaxImages]
	}
	for pos, url := range urls {
		if url == "" {
			continue
		}
		if _, err := tx.Exec(ctx, insertImageSQL, propID, url, pos); err != nil {
			return errors.Wrapf(err, "inserting image %d for prop %d", pos, propID)
		}
	}
	return nil
}
