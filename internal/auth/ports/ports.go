// Package ports declares the interfaces the auth module needs from other
// modules. Concrete implementations live in internal/adapters.
package ports

import (
	"context"

	"github.com/google/uuid"
)

// HouseholdResolver resolves the household a user belongs to, for embedding
// in access tokens. Users without a household resolve to nil.
type HouseholdResolver interface {
	HouseholdForUser(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error)
}

// WelcomeMailer sends the post-registration email. Best-effort; a failed send
// must not fail registration.
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, email, displayName string) error
}
