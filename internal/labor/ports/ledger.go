// Package ports declares the interfaces the labor module needs from other
// modules. Concrete implementations live in internal/adapters, keeping the
// labor module free of direct cross-module dependencies.
package ports

import (
	"context"

	"github.com/google/uuid"
)

// PostCompletionInput carries everything the ledger needs to post one
// completed assignment between the worker's household and the requesting
// household.
type PostCompletionInput struct {
	AssignmentID          uuid.UUID
	WorkerHouseholdID     uuid.UUID
	RequestingHouseholdID uuid.UUID
	WorkUnits             float64
	Description           string
}

// LedgerPoster posts completed exchange work to the pairwise labor ledger.
type LedgerPoster interface {
	PostCompletion(ctx context.Context, input PostCompletionInput) error
}
