package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"farmlink_backend/platform/apperr"
)

// Household represents a farm household database model.
type Household struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Region    *string   `db:"region"`
	Phone     *string   `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Member links a user to a household with a role.
type Member struct {
	HouseholdID uuid.UUID `db:"household_id"`
	UserID      uuid.UUID `db:"user_id"`
	Role        string    `db:"role"`
	CreatedAt   time.Time `db:"created_at"`
}

// Worker represents a worker profile belonging to a household.
type Worker struct {
	ID           uuid.UUID  `db:"id"`
	HouseholdID  uuid.UUID  `db:"household_id"`
	UserID       *uuid.UUID `db:"user_id"`
	Name         string     `db:"name"`
	Phone        *string    `db:"phone"`
	Availability string     `db:"availability"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Repository provides database operations for households and workers.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new households repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const householdColumns = `id, name, region, phone, created_at, updated_at`

const workerColumns = `id, household_id, user_id, name, phone, availability, created_at, updated_at`

func scanHousehold(row pgx.Row) (*Household, error) {
	var h Household
	err := row.Scan(&h.ID, &h.Name, &h.Region, &h.Phone, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func scanWorker(row pgx.Row) (*Worker, error) {
	var w Worker
	err := row.Scan(&w.ID, &w.HouseholdID, &w.UserID, &w.Name, &w.Phone, &w.Availability, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateHousehold inserts a household and its founding owner membership in
// one transaction.
func (r *Repository) CreateHousehold(ctx context.Context, h *Household, ownerUserID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin household creation: %w", err)
	}
	defer tx.Rollback(ctx)

	insertHousehold := `
		INSERT INTO households (id, name, region, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.Exec(ctx, insertHousehold, h.ID, h.Name, h.Region, h.Phone, h.CreatedAt, h.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create household: %w", err)
	}

	insertMember := `
		INSERT INTO household_members (household_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)`
	if _, err := tx.Exec(ctx, insertMember, h.ID, ownerUserID, RoleOwner, h.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.Conflict("user already belongs to a household")
		}
		return fmt.Errorf("failed to add household owner: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit household creation: %w", err)
	}

	return nil
}

// GetHouseholdByID retrieves a household.
func (r *Repository) GetHouseholdByID(ctx context.Context, id uuid.UUID) (*Household, error) {
	query := `SELECT ` + householdColumns + ` FROM households WHERE id = $1`

	h, err := scanHousehold(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("household not found")
		}
		return nil, fmt.Errorf("failed to get household: %w", err)
	}

	return h, nil
}

// UpdateHousehold updates a household's profile fields.
func (r *Repository) UpdateHousehold(ctx context.Context, h *Household) error {
	query := `UPDATE households SET name = $2, region = $3, phone = $4, updated_at = $5 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, h.ID, h.Name, h.Region, h.Phone, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update household: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("household not found")
	}

	return nil
}

// GetMemberRole returns the user's role in the household, or NotFound.
func (r *Repository) GetMemberRole(ctx context.Context, householdID, userID uuid.UUID) (string, error) {
	query := `SELECT role FROM household_members WHERE household_id = $1 AND user_id = $2`

	var role string
	if err := r.pool.QueryRow(ctx, query, householdID, userID).Scan(&role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound("user is not a member of this household")
		}
		return "", fmt.Errorf("failed to get household membership: %w", err)
	}

	return role, nil
}

// GetHouseholdForUser resolves the household a user belongs to.
func (r *Repository) GetHouseholdForUser(ctx context.Context, userID uuid.UUID) (*Household, error) {
	query := `SELECT ` + householdColumns + ` FROM households h
		JOIN household_members m ON m.household_id = h.id
		WHERE m.user_id = $1`

	h, err := scanHousehold(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user has no household")
		}
		return nil, fmt.Errorf("failed to get household for user: %w", err)
	}

	return h, nil
}

// AddMember adds a user to a household.
func (r *Repository) AddMember(ctx context.Context, householdID, userID uuid.UUID, role string) error {
	query := `INSERT INTO household_members (household_id, user_id, role, created_at) VALUES ($1, $2, $3, $4)`

	if _, err := r.pool.Exec(ctx, query, householdID, userID, role, time.Now()); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.Conflict("user already belongs to a household")
		}
		return fmt.Errorf("failed to add household member: %w", err)
	}

	return nil
}

// CreateWorker inserts a worker profile.
func (r *Repository) CreateWorker(ctx context.Context, w *Worker) error {
	query := `
		INSERT INTO workers (id, household_id, user_id, name, phone, availability, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := r.pool.Exec(ctx, query, w.ID, w.HouseholdID, w.UserID, w.Name, w.Phone, w.Availability, w.CreatedAt, w.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.Conflict("user already has a worker profile")
		}
		return fmt.Errorf("failed to create worker: %w", err)
	}

	return nil
}

// GetWorkerByID retrieves a worker profile.
func (r *Repository) GetWorkerByID(ctx context.Context, id uuid.UUID) (*Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers WHERE id = $1`

	w, err := scanWorker(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("worker not found")
		}
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}

	return w, nil
}

// GetWorkerForUser resolves the worker profile linked to a user account.
func (r *Repository) GetWorkerForUser(ctx context.Context, userID uuid.UUID) (*Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers WHERE user_id = $1`

	w, err := scanWorker(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user has no worker profile")
		}
		return nil, fmt.Errorf("failed to get worker for user: %w", err)
	}

	return w, nil
}

// ListWorkers lists a household's worker profiles.
func (r *Repository) ListWorkers(ctx context.Context, householdID uuid.UUID) ([]Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers WHERE household_id = $1 ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	defer rows.Close()

	var items []Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan worker: %w", err)
		}
		items = append(items, *w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workers: %w", err)
	}

	return items, nil
}

// UpdateWorkerAvailability updates a worker's availability hint.
func (r *Repository) UpdateWorkerAvailability(ctx context.Context, id uuid.UUID, availability string) error {
	query := `UPDATE workers SET availability = $2, updated_at = $3 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, availability, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update worker availability: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("worker not found")
	}

	return nil
}

// DeleteWorker removes a worker profile.
func (r *Repository) DeleteWorker(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM workers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete worker: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("worker not found")
	}

	return nil
}
