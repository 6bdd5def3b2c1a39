// Package ports declares the interfaces the activities module needs from
// other modules. Concrete implementations live in internal/adapters.
package ports

import (
	"context"

	"github.com/google/uuid"
)

// RequestStatusWriter propagates an activity's status change onto its linked
// labor request. Implementations must skip writes that would not change the
// request, and must ignore activity statuses without a request counterpart.
type RequestStatusWriter interface {
	SyncFromActivity(ctx context.Context, requestID uuid.UUID, activityStatus string) error
}
