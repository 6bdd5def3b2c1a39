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

// Order is a purchase of a product listing by another household.
type Order struct {
	ID                uuid.UUID
	ProductID         uuid.UUID
	BuyerHouseholdID  uuid.UUID
	SellerHouseholdID uuid.UUID
	Quantity          float64
	TotalCents        int64
	Status            string
	Note              *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orderColumns = `id, product_id, buyer_household_id, seller_household_id, quantity, total_cents, status, note, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.ProductID, &o.BuyerHouseholdID, &o.SellerHouseholdID,
		&o.Quantity, &o.TotalCents, &o.Status, &o.Note, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repository) Create(ctx context.Context, o *Order) error {
	query := `
		INSERT INTO orders (id, product_id, buyer_household_id, seller_household_id, quantity, total_cents, status, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.pool.Exec(ctx, query, o.ID, o.ProductID, o.BuyerHouseholdID, o.SellerHouseholdID,
		o.Quantity, o.TotalCents, o.Status, o.Note, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

func (r *Repository) ListPlaced(ctx context.Context, buyerHouseholdID uuid.UUID) ([]*Order, error) {
	return r.list(ctx, `buyer_household_id`, buyerHouseholdID)
}

func (r *Repository) ListReceived(ctx context.Context, sellerHouseholdID uuid.UUID) ([]*Order, error) {
	return r.list(ctx, `seller_household_id`, sellerHouseholdID)
}

func (r *Repository) list(ctx context.Context, column string, householdID uuid.UUID) ([]*Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE `+column+` = $1
		ORDER BY created_at DESC`, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var items []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		items = append(items, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return items, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("order not found")
	}
	return nil
}
