package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"farmlink_backend/internal/exchange/domain"
	"farmlink_backend/platform/apperr"
)

// Exchange represents a pairwise ledger row. Households are stored in
// canonical order; balance is from household A's perspective.
type Exchange struct {
	ID           uuid.UUID `db:"id"`
	HouseholdAID uuid.UUID `db:"household_a_id"`
	HouseholdBID uuid.UUID `db:"household_b_id"`
	Balance      float64   `db:"balance"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Pair rebuilds the canonical pair from the stored row.
func (e *Exchange) Pair() domain.Pair {
	return domain.Pair{HouseholdA: e.HouseholdAID, HouseholdB: e.HouseholdBID}
}

// Transaction represents one append-only ledger entry.
type Transaction struct {
	ID           uuid.UUID  `db:"id"`
	ExchangeID   uuid.UUID  `db:"exchange_id"`
	AssignmentID *uuid.UUID `db:"assignment_id"`
	Kind         string     `db:"kind"`
	Delta        float64    `db:"delta"`
	BalanceAfter float64    `db:"balance_after"`
	Description  string     `db:"description"`
	CreatedBy    *uuid.UUID `db:"created_by"`
	CreatedAt    time.Time  `db:"created_at"`
}

// Repository provides database operations for the labor exchange ledger.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new exchange repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const exchangeColumns = `id, household_a_id, household_b_id, balance, created_at, updated_at`

const transactionColumns = `id, exchange_id, assignment_id, kind, delta, balance_after, description, created_by, created_at`

func scanExchange(row pgx.Row) (*Exchange, error) {
	var e Exchange
	err := row.Scan(&e.ID, &e.HouseholdAID, &e.HouseholdBID, &e.Balance, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.ExchangeID, &t.AssignmentID, &t.Kind, &t.Delta,
		&t.BalanceAfter, &t.Description, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindOrCreate resolves the ledger row for a canonical pair, creating it with
// a zero balance on first contact. The unique index on (household_a_id,
// household_b_id) makes concurrent first contacts converge on one row.
func (r *Repository) FindOrCreate(ctx context.Context, pair domain.Pair) (*Exchange, error) {
	now := time.Now()
	query := `
		INSERT INTO labor_exchanges (id, household_a_id, household_b_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, $4)
		ON CONFLICT (household_a_id, household_b_id) DO UPDATE SET updated_at = labor_exchanges.updated_at
		RETURNING ` + exchangeColumns

	e, err := scanExchange(r.pool.QueryRow(ctx, query, uuid.New(), pair.HouseholdA, pair.HouseholdB, now))
	if err != nil {
		return nil, fmt.Errorf("failed to find or create exchange: %w", err)
	}

	return e, nil
}

// GetByID retrieves an exchange row.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Exchange, error) {
	query := `SELECT ` + exchangeColumns + ` FROM labor_exchanges WHERE id = $1`

	e, err := scanExchange(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("exchange not found")
		}
		return nil, fmt.Errorf("failed to get exchange: %w", err)
	}

	return e, nil
}

// GetByPair retrieves the ledger row for a canonical pair.
func (r *Repository) GetByPair(ctx context.Context, pair domain.Pair) (*Exchange, error) {
	query := `SELECT ` + exchangeColumns + ` FROM labor_exchanges
		WHERE household_a_id = $1 AND household_b_id = $2`

	e, err := scanExchange(r.pool.QueryRow(ctx, query, pair.HouseholdA, pair.HouseholdB))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("no exchange exists between these households")
		}
		return nil, fmt.Errorf("failed to get exchange: %w", err)
	}

	return e, nil
}

// ListForHousehold lists all ledger rows the household participates in.
func (r *Repository) ListForHousehold(ctx context.Context, householdID uuid.UUID) ([]Exchange, error) {
	query := `SELECT ` + exchangeColumns + ` FROM labor_exchanges
		WHERE household_a_id = $1 OR household_b_id = $1
		ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	defer rows.Close()

	var items []Exchange
	for rows.Next() {
		e, err := scanExchange(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		items = append(items, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exchanges: %w", err)
	}

	return items, nil
}

// PostDelta applies a signed delta to an exchange and appends the matching
// transaction, atomically. The row is locked for the duration so concurrent
// postings serialize and every transaction's balance_after is exact.
func (r *Repository) PostDelta(ctx context.Context, exchangeID uuid.UUID, txn *Transaction) (*Transaction, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin ledger posting: %w", err)
	}
	defer tx.Rollback(ctx)

	var balance float64
	lockQuery := `SELECT balance FROM labor_exchanges WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRow(ctx, lockQuery, exchangeID).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("exchange not found")
		}
		return nil, fmt.Errorf("failed to lock exchange: %w", err)
	}

	now := time.Now()
	balanceAfter := balance + txn.Delta

	updateQuery := `UPDATE labor_exchanges SET balance = $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.Exec(ctx, updateQuery, exchangeID, balanceAfter, now); err != nil {
		return nil, fmt.Errorf("failed to update exchange balance: %w", err)
	}

	insertQuery := `
		INSERT INTO labor_exchange_transactions (
			id, exchange_id, assignment_id, kind, delta, balance_after, description, created_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	posted := *txn
	posted.ID = uuid.New()
	posted.ExchangeID = exchangeID
	posted.BalanceAfter = balanceAfter
	posted.CreatedAt = now

	if _, err := tx.Exec(ctx, insertQuery,
		posted.ID, posted.ExchangeID, posted.AssignmentID, posted.Kind, posted.Delta,
		posted.BalanceAfter, posted.Description, posted.CreatedBy, posted.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to insert exchange transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit ledger posting: %w", err)
	}

	return &posted, nil
}

// SetBalance overwrites the stored balance without appending a transaction.
// Only the recalculation write-back uses it.
func (r *Repository) SetBalance(ctx context.Context, exchangeID uuid.UUID, balance float64) error {
	query := `UPDATE labor_exchanges SET balance = $2, updated_at = $3 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, exchangeID, balance, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set exchange balance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("exchange not found")
	}

	return nil
}

// ReplaySum recomputes the balance from the transaction log.
func (r *Repository) ReplaySum(ctx context.Context, exchangeID uuid.UUID) (float64, error) {
	query := `SELECT COALESCE(SUM(delta), 0) FROM labor_exchange_transactions WHERE exchange_id = $1`

	var sum float64
	if err := r.pool.QueryRow(ctx, query, exchangeID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to replay exchange transactions: %w", err)
	}

	return sum, nil
}

// ListTransactions lists an exchange's transactions, newest first.
func (r *Repository) ListTransactions(ctx context.Context, exchangeID uuid.UUID, limit int) ([]Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM labor_exchange_transactions
		WHERE exchange_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, exchangeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange transactions: %w", err)
	}
	defer rows.Close()

	var items []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange transaction: %w", err)
		}
		items = append(items, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exchange transactions: %w", err)
	}

	return items, nil
}

// ListAll lists every exchange row, for the nightly drift audit.
func (r *Repository) ListAll(ctx context.Context) ([]Exchange, error) {
	query := `SELECT ` + exchangeColumns + ` FROM labor_exchanges ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	defer rows.Close()

	var items []Exchange
	for rows.Next() {
		e, err := scanExchange(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		items = append(items, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exchanges: %w", err)
	}

	return items, nil
}
