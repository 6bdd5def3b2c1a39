package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"farmlink_backend/platform/apperr"
)

// Activity represents a farm activity database model.
type Activity struct {
	ID             uuid.UUID  `db:"id"`
	HouseholdID    uuid.UUID  `db:"household_id"`
	LaborRequestID *uuid.UUID `db:"labor_request_id"`
	Title          string     `db:"title"`
	Description    *string    `db:"description"`
	Category       string     `db:"category"`
	Status         string     `db:"status"`
	ScheduledDate  time.Time  `db:"scheduled_date"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// Repository provides database operations for farm activities.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new activities repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const activityColumns = `id, household_id, labor_request_id, title, description, category, status, scheduled_date, created_at, updated_at`

const activityNotFoundMsg = "activity not found"

func scanActivity(row pgx.Row) (*Activity, error) {
	var a Activity
	err := row.Scan(&a.ID, &a.HouseholdID, &a.LaborRequestID, &a.Title, &a.Description,
		&a.Category, &a.Status, &a.ScheduledDate, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a farm activity.
func (r *Repository) Create(ctx context.Context, a *Activity) error {
	query := `
		INSERT INTO farm_activities (id, household_id, labor_request_id, title, description, category, status, scheduled_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query, a.ID, a.HouseholdID, a.LaborRequestID, a.Title, a.Description,
		a.Category, a.Status, a.ScheduledDate, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}

	return nil
}

// GetByID retrieves a farm activity.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM farm_activities WHERE id = $1`

	a, err := scanActivity(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(activityNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	return a, nil
}

// ListForHousehold lists a household's activities, optionally filtered by status.
func (r *Repository) ListForHousehold(ctx context.Context, householdID uuid.UUID, status *string) ([]Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM farm_activities WHERE household_id = $1`
	args := []interface{}{householdID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY scheduled_date DESC, created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var items []Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		items = append(items, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}

	return items, nil
}

// Update updates a farm activity's editable fields.
func (r *Repository) Update(ctx context.Context, a *Activity) error {
	query := `UPDATE farm_activities
		SET title = $2, description = $3, category = $4, scheduled_date = $5, updated_at = $6
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, a.ID, a.Title, a.Description, a.Category, a.ScheduledDate, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound(activityNotFoundMsg)
	}

	return nil
}

// UpdateStatus updates only the status, skipping the write when the stored
// status already matches. The zero-row case distinguishes "no change needed"
// from "missing row" for the caller.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (bool, error) {
	query := `UPDATE farm_activities SET status = $2, updated_at = $3 WHERE id = $1 AND status <> $2`

	result, err := r.pool.Exec(ctx, query, id, status, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to update activity status: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

// LinkLaborRequest attaches a labor request to an activity.
func (r *Repository) LinkLaborRequest(ctx context.Context, id, requestID uuid.UUID) error {
	query := `UPDATE farm_activities SET labor_request_id = $2, updated_at = $3 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, requestID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to link labor request: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound(activityNotFoundMsg)
	}

	return nil
}

// Delete removes a farm activity.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM farm_activities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound(activityNotFoundMsg)
	}

	return nil
}
