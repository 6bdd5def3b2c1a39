package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateActivityRequest is the body for logging a planned farm activity.
type CreateActivityRequest struct {
	Title          string     `json:"title" validate:"required,min=1,max=200"`
	Description    string     `json:"description,omitempty" validate:"max=2000"`
	Category       string     `json:"category" validate:"required,oneof=planting harvest irrigation maintenance livestock other"`
	ScheduledDate  string     `json:"scheduledDate" validate:"required"`
	LaborRequestID *uuid.UUID `json:"laborRequestId,omitempty"`
}

// UpdateActivityRequest updates an activity's editable fields.
type UpdateActivityRequest struct {
	Title         *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category      *string `json:"category,omitempty" validate:"omitempty,oneof=planting harvest irrigation maintenance livestock other"`
	ScheduledDate *string `json:"scheduledDate,omitempty"`
}

// UpdateStatusRequest moves an activity to a new status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress completed cancelled"`
}

// ListActivitiesRequest is the query parameters for listing activities.
type ListActivitiesRequest struct {
	Status string `form:"status" validate:"omitempty,oneof=pending in_progress completed cancelled"`
}

// ActivityResponse is the response body for a farm activity.
type ActivityResponse struct {
	ID             uuid.UUID  `json:"id"`
	HouseholdID    uuid.UUID  `json:"householdId"`
	LaborRequestID *uuid.UUID `json:"laborRequestId,omitempty"`
	Title          string     `json:"title"`
	Description    *string    `json:"description,omitempty"`
	Category       string     `json:"category"`
	Status         string     `json:"status"`
	ScheduledDate  string     `json:"scheduledDate"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
