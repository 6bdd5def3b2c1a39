package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farmlink_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// LaborAssignment represents the labor assignment database model.
type LaborAssignment struct {
	ID                uuid.UUID `db:"id"`
	RequestID         uuid.UUID `db:"request_id"`
	WorkerID          uuid.UUID `db:"worker_id"`
	WorkDate          time.Time `db:"work_date"`
	StartTime         time.Time `db:"start_time"`
	EndTime           time.Time `db:"end_time"`
	Status            string    `db:"status"`
	HoursWorked       *float64  `db:"hours_worked"`
	WorkUnits         *float64  `db:"work_units"`
	Notes             *string   `db:"notes"`
	WorkerRating      *int      `db:"worker_rating"`
	WorkerRatingNote  *string   `db:"worker_rating_note"`
	FarmerRating      *int      `db:"farmer_rating"`
	FarmerRatingNote  *string   `db:"farmer_rating_note"`
	ExchangeProcessed bool      `db:"exchange_processed"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

const assignmentNotFoundMsg = "labor assignment not found"

// PostgreSQL error codes for unique and exclusion constraint violations. The
// worker-overlap exclusion constraint raises 23P01.
const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

const assignmentColumns = `id, request_id, worker_id, work_date, start_time, end_time, status,
	hours_worked, work_units, notes, worker_rating, worker_rating_note, farmer_rating,
	farmer_rating_note, exchange_processed, created_at, updated_at`

const insertAssignmentQuery = `
	INSERT INTO labor_assignments (
		id, request_id, worker_id, work_date, start_time, end_time, status,
		hours_worked, work_units, notes, worker_rating, worker_rating_note, farmer_rating,
		farmer_rating_note, exchange_processed, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
	)`

func scanAssignment(row pgx.Row) (*LaborAssignment, error) {
	var a LaborAssignment
	err := row.Scan(
		&a.ID, &a.RequestID, &a.WorkerID, &a.WorkDate, &a.StartTime, &a.EndTime, &a.Status,
		&a.HoursWorked, &a.WorkUnits, &a.Notes, &a.WorkerRating, &a.WorkerRatingNote,
		&a.FarmerRating, &a.FarmerRatingNote, &a.ExchangeProcessed, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func assignmentInsertArgs(a *LaborAssignment) []interface{} {
	return []interface{}{
		a.ID, a.RequestID, a.WorkerID, a.WorkDate, a.StartTime, a.EndTime, a.Status,
		a.HoursWorked, a.WorkUnits, a.Notes, a.WorkerRating, a.WorkerRatingNote,
		a.FarmerRating, a.FarmerRatingNote, a.ExchangeProcessed, a.CreatedAt, a.UpdatedAt,
	}
}

// CreateAssignment inserts a new assignment. The worker time-range exclusion
// constraint closes the check-then-act race between the conflict check and
// the insert: an overlapping booking surfaces as a scheduling conflict, not
// as silent double-booking. Non-overlapping bookings on the same day pass.
func (r *Repository) CreateAssignment(ctx context.Context, a *LaborAssignment) error {
	_, err := r.pool.Exec(ctx, insertAssignmentQuery, assignmentInsertArgs(a)...)
	if err != nil {
		if isOverlapViolation(err) {
			return apperr.Conflict("worker already has an overlapping assignment on this date")
		}
		return fmt.Errorf("failed to create labor assignment: %w", err)
	}

	return nil
}

// BatchItemResult reports the outcome of one staged assignment in a bulk insert.
type BatchItemResult struct {
	Assignment *LaborAssignment
	Err        error
}

// CreateAssignmentsBatch inserts staged assignments in one round trip using a
// pgx batch, reporting per-item success or failure. Overlap races lost to
// concurrent callers surface here as per-item conflicts.
func (r *Repository) CreateAssignmentsBatch(ctx context.Context, assignments []*LaborAssignment) []BatchItemResult {
	results := make([]BatchItemResult, len(assignments))
	if len(assignments) == 0 {
		return results
	}

	batch := &pgx.Batch{}
	for _, a := range assignments {
		batch.Queue(insertAssignmentQuery, assignmentInsertArgs(a)...)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i, a := range assignments {
		_, err := br.Exec()
		switch {
		case err == nil:
			results[i] = BatchItemResult{Assignment: a}
		case isOverlapViolation(err):
			results[i] = BatchItemResult{
				Assignment: a,
				Err:        apperr.Conflict("worker already has an overlapping assignment on this date"),
			}
		default:
			results[i] = BatchItemResult{
				Assignment: a,
				Err:        fmt.Errorf("failed to create labor assignment: %w", err),
			}
		}
	}

	return results
}

// GetAssignmentByID retrieves an assignment by its ID.
func (r *Repository) GetAssignmentByID(ctx context.Context, id uuid.UUID) (*LaborAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM labor_assignments WHERE id = $1`

	a, err := scanAssignment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(assignmentNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get labor assignment: %w", err)
	}

	return a, nil
}

// ListOpenAssignmentsForWorkerOnDate loads the worker's open bookings on one
// calendar date, for conflict detection.
func (r *Repository) ListOpenAssignmentsForWorkerOnDate(ctx context.Context, workerID uuid.UUID, workDate time.Time) ([]LaborAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM labor_assignments
		WHERE worker_id = $1 AND work_date = $2 AND status IN ('assigned', 'worker_reported')
		ORDER BY start_time ASC`

	return r.queryAssignments(ctx, query, workerID, workDate)
}

// ListAssignmentsForRequest loads all assignments under a request.
func (r *Repository) ListAssignmentsForRequest(ctx context.Context, requestID uuid.UUID) ([]LaborAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM labor_assignments
		WHERE request_id = $1 ORDER BY work_date ASC, start_time ASC`

	return r.queryAssignments(ctx, query, requestID)
}

// ListOpenAssignmentsForWorkerInRange loads the worker's open bookings over a
// date range, for the availability forecast.
func (r *Repository) ListOpenAssignmentsForWorkerInRange(ctx context.Context, workerID uuid.UUID, from, to time.Time) ([]LaborAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM labor_assignments
		WHERE worker_id = $1 AND work_date >= $2 AND work_date <= $3
		AND status IN ('assigned', 'worker_reported')
		ORDER BY work_date ASC, start_time ASC`

	return r.queryAssignments(ctx, query, workerID, from, to)
}

func (r *Repository) queryAssignments(ctx context.Context, query string, args ...interface{}) ([]LaborAssignment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list labor assignments: %w", err)
	}
	defer rows.Close()

	var items []LaborAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan labor assignment: %w", err)
		}
		items = append(items, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate labor assignments: %w", err)
	}

	return items, nil
}

// UpdateAssignmentStatus updates the status and optional notes of an assignment.
func (r *Repository) UpdateAssignmentStatus(ctx context.Context, id uuid.UUID, status string, notes *string) error {
	query := `UPDATE labor_assignments
		SET status = $2, notes = COALESCE($3, notes), updated_at = $4
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, status, notes, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update labor assignment status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound(assignmentNotFoundMsg)
	}

	return nil
}

// CompleteAssignment fixes hours worked and work units and marks the
// assignment completed. Once set these values are never recomputed.
func (r *Repository) CompleteAssignment(ctx context.Context, id uuid.UUID, hoursWorked, workUnits float64, notes *string) error {
	query := `UPDATE labor_assignments
		SET status = 'completed', hours_worked = $2, work_units = $3,
			notes = COALESCE($4, notes), updated_at = $5
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, hoursWorked, workUnits, notes, time.Now())
	if err != nil {
		return fmt.Errorf("failed to complete labor assignment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound(assignmentNotFoundMsg)
	}

	return nil
}

// ClaimExchangeProcessing flips the assignment's idempotency guard. It
// returns true only for the caller that wins the flip; a retried save sees
// false and must skip ledger posting.
func (r *Repository) ClaimExchangeProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `UPDATE labor_assignments
		SET exchange_processed = true, updated_at = $2
		WHERE id = $1 AND exchange_processed = false`

	result, err := r.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to claim exchange processing: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

// ReleaseExchangeProcessing reverts the idempotency guard after a failed
// ledger posting so the next retry can post again.
func (r *Repository) ReleaseExchangeProcessing(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE labor_assignments
		SET exchange_processed = false, updated_at = $2
		WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id, time.Now()); err != nil {
		return fmt.Errorf("failed to release exchange processing: %w", err)
	}

	return nil
}

// RateWorker records the requesting household's rating of the worker.
func (r *Repository) RateWorker(ctx context.Context, id uuid.UUID, rating int, note *string) error {
	query := `UPDATE labor_assignments
		SET worker_rating = $2, worker_rating_note = $3, updated_at = $4
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, rating, note, time.Now())
	if err != nil {
		return fmt.Errorf("failed to rate worker: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound(assignmentNotFoundMsg)
	}

	return nil
}

// RateFarmer records the worker's rating of the requesting household.
func (r *Repository) RateFarmer(ctx context.Context, id uuid.UUID, rating int, note *string) error {
	query := `UPDATE labor_assignments
		SET farmer_rating = $2, farmer_rating_note = $3, updated_at = $4
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, rating, note, time.Now())
	if err != nil {
		return fmt.Errorf("failed to rate farmer: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound(assignmentNotFoundMsg)
	}

	return nil
}

// isOverlapViolation reports whether err is the storage-level double-booking
// guard firing: the exclusion constraint on open worker time ranges, or a
// unique violation from a lost insert race.
func isOverlapViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgExclusionViolation || pgErr.Code == pgUniqueViolation
}
