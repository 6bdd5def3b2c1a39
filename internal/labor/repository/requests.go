package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farmlink_backend/internal/labor/domain"
	"farmlink_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LaborRequest represents the labor request database model.
type LaborRequest struct {
	ID                    uuid.UUID  `db:"id"`
	RequestingHouseholdID uuid.UUID  `db:"requesting_household_id"`
	ProvidingHouseholdID  *uuid.UUID `db:"providing_household_id"`
	ActivityID            *uuid.UUID `db:"activity_id"`
	Title                 string     `db:"title"`
	Description           *string    `db:"description"`
	Kind                  string     `db:"kind"`
	Status                string     `db:"status"`
	StartDate             time.Time  `db:"start_date"`
	EndDate               time.Time  `db:"end_date"`
	DefaultStartTime      string     `db:"default_start_time"`
	DefaultEndTime        string     `db:"default_end_time"`
	WorkersNeeded         int        `db:"workers_needed"`
	IsPublic              bool       `db:"is_public"`
	ParentRequestID       *uuid.UUID `db:"parent_request_id"`
	RequestGroupID        *uuid.UUID `db:"request_group_id"`
	MaxAcceptors          *int       `db:"max_acceptors"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"`
}

// Repository provides database operations for labor requests and assignments.
type Repository struct {
	pool *pgxpool.Pool
}

const requestNotFoundMsg = "labor request not found"

const requestColumns = `id, requesting_household_id, providing_household_id, activity_id, title,
	description, kind, status, start_date, end_date, default_start_time, default_end_time,
	workers_needed, is_public, parent_request_id, request_group_id, max_acceptors, created_at, updated_at`

// New creates a new labor repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanRequest(row pgx.Row) (*LaborRequest, error) {
	var req LaborRequest
	err := row.Scan(
		&req.ID, &req.RequestingHouseholdID, &req.ProvidingHouseholdID, &req.ActivityID, &req.Title,
		&req.Description, &req.Kind, &req.Status, &req.StartDate, &req.EndDate,
		&req.DefaultStartTime, &req.DefaultEndTime, &req.WorkersNeeded, &req.IsPublic,
		&req.ParentRequestID, &req.RequestGroupID, &req.MaxAcceptors, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// CreateRequest inserts a new labor request.
func (r *Repository) CreateRequest(ctx context.Context, req *LaborRequest) error {
	query := `
		INSERT INTO labor_requests (
			id, requesting_household_id, providing_household_id, activity_id, title, description,
			kind, status, start_date, end_date, default_start_time, default_end_time,
			workers_needed, is_public, parent_request_id, request_group_id, max_acceptors,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19
		)`

	_, err := r.pool.Exec(ctx, query,
		req.ID, req.RequestingHouseholdID, req.ProvidingHouseholdID, req.ActivityID, req.Title,
		req.Description, req.Kind, req.Status, req.StartDate, req.EndDate,
		req.DefaultStartTime, req.DefaultEndTime, req.WorkersNeeded, req.IsPublic,
		req.ParentRequestID, req.RequestGroupID, req.MaxAcceptors, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create labor request: %w", err)
	}

	return nil
}

// GetRequestByID retrieves a labor request by its ID.
func (r *Repository) GetRequestByID(ctx context.Context, id uuid.UUID) (*LaborRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM labor_requests WHERE id = $1`

	req, err := scanRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(requestNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get labor request: %w", err)
	}

	return req, nil
}

// UpdateRequestStatus updates the status of a labor request.
func (r *Repository) UpdateRequestStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE labor_requests SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update labor request status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound(requestNotFoundMsg)
	}

	return nil
}

// AcceptRequest transitions a pending request to accepted, recording the
// providing household if it was not set (public fan-out children carry it
// already).
func (r *Repository) AcceptRequest(ctx context.Context, id uuid.UUID, providingHouseholdID uuid.UUID) error {
	query := `UPDATE labor_requests
		SET status = $2, providing_household_id = COALESCE(providing_household_id, $3), updated_at = $4
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, string(domain.RequestStatusAccepted), providingHouseholdID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to accept labor request: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound(requestNotFoundMsg)
	}

	return nil
}

// ListRequestParams contains filters for listing labor requests.
type ListRequestParams struct {
	HouseholdID *uuid.UUID
	Role        string // "requesting" or "providing"; empty matches either
	Status      *string
	Public      *bool
	Page        int
	PageSize    int
}

// ListRequestResult contains the result of listing labor requests.
type ListRequestResult struct {
	Items      []LaborRequest
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// ListRequests retrieves labor requests with optional filtering.
func (r *Repository) ListRequests(ctx context.Context, params ListRequestParams) (*ListRequestResult, error) {
	baseQuery := `FROM labor_requests WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	if params.HouseholdID != nil {
		switch params.Role {
		case "requesting":
			baseQuery += fmt.Sprintf(" AND requesting_household_id = $%d", argIndex)
		case "providing":
			baseQuery += fmt.Sprintf(" AND providing_household_id = $%d", argIndex)
		default:
			baseQuery += fmt.Sprintf(" AND (requesting_household_id = $%d OR providing_household_id = $%d)", argIndex, argIndex)
		}
		args = append(args, *params.HouseholdID)
		argIndex++
	}
	if params.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *params.Status)
		argIndex++
	}
	if params.Public != nil {
		baseQuery += fmt.Sprintf(" AND is_public = $%d", argIndex)
		args = append(args, *params.Public)
		argIndex++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count labor requests: %w", err)
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	offset := (params.Page - 1) * params.PageSize

	selectQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		requestColumns, baseQuery, argIndex, argIndex+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list labor requests: %w", err)
	}
	defer rows.Close()

	var items []LaborRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan labor request: %w", err)
		}
		items = append(items, *req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate labor requests: %w", err)
	}

	return &ListRequestResult{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

// ListPublicOpenRequests lists public parent requests still accepting joiners.
func (r *Repository) ListPublicOpenRequests(ctx context.Context, limit int) ([]LaborRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM labor_requests
		WHERE is_public = true AND parent_request_id IS NULL AND status = 'pending' AND providing_household_id IS NULL
		ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list public labor requests: %w", err)
	}
	defer rows.Close()

	var items []LaborRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan labor request: %w", err)
		}
		items = append(items, *req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate labor requests: %w", err)
	}

	return items, nil
}

// GroupStatusCounts aggregates child request counts by status for a fan-out group.
func (r *Repository) GroupStatusCounts(ctx context.Context, groupID uuid.UUID) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM labor_requests
		WHERE request_group_id = $1 AND parent_request_id IS NOT NULL
		GROUP BY status`

	rows, err := r.pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate group status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan group status: %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group status: %w", err)
	}

	return counts, nil
}

// HouseholdHasChildInGroup reports whether the household already joined the
// fan-out group, regardless of the child's current status. A household that
// joined and was later declined still counts as joined.
func (r *Repository) HouseholdHasChildInGroup(ctx context.Context, groupID, householdID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM labor_requests
		WHERE request_group_id = $1 AND parent_request_id IS NOT NULL AND providing_household_id = $2
	)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, groupID, householdID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check group membership: %w", err)
	}

	return exists, nil
}

// CountActiveAcceptors counts children that occupy parent capacity:
// accepted or completed ones.
func (r *Repository) CountActiveAcceptors(ctx context.Context, groupID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM labor_requests
		WHERE request_group_id = $1 AND parent_request_id IS NOT NULL
		AND status IN ('accepted', 'completed')`

	var count int
	if err := r.pool.QueryRow(ctx, query, groupID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count acceptors: %w", err)
	}

	return count, nil
}

// CountOpenAssignments counts non-terminal assignments under a request.
func (r *Repository) CountOpenAssignments(ctx context.Context, requestID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM labor_assignments
		WHERE request_id = $1 AND status IN ('assigned', 'worker_reported')`

	var count int
	if err := r.pool.QueryRow(ctx, query, requestID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count open assignments: %w", err)
	}

	return count, nil
}

// CancelRequestCascade cancels a request as one transactional unit. If the
// request is a fan-out parent, every non-terminal sibling child in its group
// is cancelled too, and all open assignments under the affected requests are
// rejected. A caller observing mid-cascade state is impossible: the cascade
// commits atomically or not at all.
func (r *Repository) CancelRequestCascade(ctx context.Context, req *LaborRequest) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin cancel cascade: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	isParent := req.ParentRequestID == nil && req.RequestGroupID != nil

	var affected string
	var args []interface{}
	if isParent {
		affected = `(SELECT id FROM labor_requests WHERE id = $1 OR request_group_id = $2)`
		args = []interface{}{req.ID, *req.RequestGroupID}
	} else {
		affected = `(SELECT id FROM labor_requests WHERE id = $1)`
		args = []interface{}{req.ID}
	}

	rejectQuery := fmt.Sprintf(`UPDATE labor_assignments
		SET status = 'rejected', updated_at = $%d
		WHERE request_id IN %s AND status IN ('assigned', 'worker_reported')`, len(args)+1, affected)
	if _, err := tx.Exec(ctx, rejectQuery, append(args, now)...); err != nil {
		return fmt.Errorf("failed to reject assignments in cascade: %w", err)
	}

	cancelQuery := fmt.Sprintf(`UPDATE labor_requests
		SET status = 'cancelled', updated_at = $%d
		WHERE id IN %s AND status IN ('pending', 'accepted')`, len(args)+1, affected)
	if _, err := tx.Exec(ctx, cancelQuery, append(args, now)...); err != nil {
		return fmt.Errorf("failed to cancel requests in cascade: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit cancel cascade: %w", err)
	}

	return nil
}
