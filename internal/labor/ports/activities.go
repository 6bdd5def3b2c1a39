package ports

import (
	"context"

	"farmlink_backend/internal/labor/domain"

	"github.com/google/uuid"
)

// ActivityStatusWriter propagates a labor request's status change onto its
// linked farm activity. Implementations must write only when the activity's
// current status differs from the target, so the two sides never feed back
// into each other.
type ActivityStatusWriter interface {
	SyncStatus(ctx context.Context, activityID uuid.UUID, status domain.ActivityStatus) error
}
