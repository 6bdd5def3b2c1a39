package ports

import (
	"context"

	"farmlink_backend/internal/labor/domain"

	"github.com/google/uuid"
)

// WorkerMembership identifies a worker and the household they belong to.
type WorkerMembership struct {
	WorkerID    uuid.UUID
	HouseholdID uuid.UUID
}

// HouseholdDirectory is the labor module's view of household and worker
// profiles. Profiles are read-mostly here; only the worker availability
// display hint is ever written, best-effort.
type HouseholdDirectory interface {
	// IsOwner reports whether the user owns the household.
	IsOwner(ctx context.Context, userID, householdID uuid.UUID) (bool, error)

	// WorkerMembership resolves a worker's household. Returns a NotFound
	// error if the worker does not exist or has no household.
	WorkerMembership(ctx context.Context, workerID uuid.UUID) (WorkerMembership, error)

	// WorkerForUser resolves the worker profile belonging to a user.
	// Returns a NotFound error if the user has no worker profile.
	WorkerForUser(ctx context.Context, userID uuid.UUID) (WorkerMembership, error)

	// SetWorkerAvailability updates the worker's availability display hint.
	// Best-effort: failures must not abort the calling operation.
	SetWorkerAvailability(ctx context.Context, workerID uuid.UUID, availability domain.WorkerAvailability) error
}
