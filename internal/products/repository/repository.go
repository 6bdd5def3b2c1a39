package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farmlink_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Product is a marketplace listing owned by a household.
type Product struct {
	ID                uuid.UUID
	HouseholdID       uuid.UUID
	Name              string
	Description       *string
	Category          string
	Unit              string
	PriceCents        int64
	QuantityAvailable float64
	PhotoKey          *string
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `id, household_id, name, description, category, unit, price_cents, quantity_available, photo_key, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.HouseholdID, &p.Name, &p.Description, &p.Category, &p.Unit,
		&p.PriceCents, &p.QuantityAvailable, &p.PhotoKey, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Create(ctx context.Context, p *Product) error {
	query := `
		INSERT INTO products (id, household_id, name, description, category, unit, price_cents, quantity_available, photo_key, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.pool.Exec(ctx, query, p.ID, p.HouseholdID, p.Name, p.Description, p.Category, p.Unit,
		p.PriceCents, p.QuantityAvailable, p.PhotoKey, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

func (r *Repository) ListForHousehold(ctx context.Context, householdID uuid.UUID) ([]*Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE household_id = $1
		ORDER BY created_at DESC`, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

// ListMarket returns active listings from all households, optionally filtered
// by category, excluding the viewer's own listings.
func (r *Repository) ListMarket(ctx context.Context, excludeHouseholdID uuid.UUID, category string, limit, offset int) ([]*Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active = TRUE AND household_id <> $1
		  AND ($2 = '' OR category = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, query, excludeHouseholdID, category, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list market products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *Repository) Update(ctx context.Context, p *Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, category = $4, unit = $5, price_cents = $6,
		    quantity_available = $7, is_active = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, p.ID, p.Name, p.Description, p.Category, p.Unit,
		p.PriceCents, p.QuantityAvailable, p.IsActive, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("product not found")
	}
	return nil
}

func (r *Repository) SetPhotoKey(ctx context.Context, id uuid.UUID, photoKey *string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET photo_key = $2, updated_at = now() WHERE id = $1`, id, photoKey)
	if err != nil {
		return fmt.Errorf("failed to set product photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("product not found")
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("product not found")
	}
	return nil
}

func collectProducts(rows pgx.Rows) ([]*Product, error) {
	var items []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return items, nil
}
