package transport

import (
	"time"

	"farmlink_backend/internal/labor/domain"

	"github.com/google/uuid"
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CreateRequestRequest is the request body for creating a labor request.
type CreateRequestRequest struct {
	Title                string     `json:"title" validate:"required,min=1,max=200"`
	Description          string     `json:"description,omitempty" validate:"max=2000"`
	Kind                 string     `json:"kind" validate:"required,oneof=exchange paid mixed"`
	StartDate            string     `json:"startDate" validate:"required"`
	EndDate              string     `json:"endDate" validate:"required"`
	DefaultStartTime     string     `json:"defaultStartTime" validate:"required"`
	DefaultEndTime       string     `json:"defaultEndTime" validate:"required"`
	WorkersNeeded        int        `json:"workersNeeded" validate:"min=1,max=100"`
	IsPublic             bool       `json:"isPublic"`
	ProvidingHouseholdID *uuid.UUID `json:"providingHouseholdId,omitempty"`
	ActivityID           *uuid.UUID `json:"activityId,omitempty"`
	MaxAcceptors         *int       `json:"maxAcceptors,omitempty" validate:"omitempty,min=1,max=100"`
}

// DeclineRequestRequest carries an optional reason for declining.
type DeclineRequestRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// ListRequestsRequest is the query parameters for listing labor requests.
type ListRequestsRequest struct {
	Role     string `form:"role" validate:"omitempty,oneof=requesting providing"`
	Status   string `form:"status" validate:"omitempty,oneof=pending accepted declined completed cancelled"`
	Public   *bool  `form:"public"`
	Page     int    `form:"page" validate:"min=0"`
	PageSize int    `form:"pageSize" validate:"min=0,max=100"`
}

// RequestResponse is the response body for a labor request.
type RequestResponse struct {
	ID                    uuid.UUID  `json:"id"`
	RequestingHouseholdID uuid.UUID  `json:"requestingHouseholdId"`
	ProvidingHouseholdID  *uuid.UUID `json:"providingHouseholdId,omitempty"`
	ActivityID            *uuid.UUID `json:"activityId,omitempty"`
	Title                 string     `json:"title"`
	Description           *string    `json:"description,omitempty"`
	Kind                  string     `json:"kind"`
	Status                string     `json:"status"`
	StartDate             string     `json:"startDate"`
	EndDate               string     `json:"endDate"`
	DefaultStartTime      string     `json:"defaultStartTime"`
	DefaultEndTime        string     `json:"defaultEndTime"`
	WorkersNeeded         int        `json:"workersNeeded"`
	IsPublic              bool       `json:"isPublic"`
	ParentRequestID       *uuid.UUID `json:"parentRequestId,omitempty"`
	RequestGroupID        *uuid.UUID `json:"requestGroupId,omitempty"`
	MaxAcceptors          *int       `json:"maxAcceptors,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// RequestListResponse is the paginated response for listing labor requests.
type RequestListResponse struct {
	Items      []RequestResponse `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

// GroupStatusResponse aggregates the children of a fan-out request group by
// status so callers can render progress without re-deriving it.
type GroupStatusResponse struct {
	RequestGroupID  uuid.UUID      `json:"requestGroupId"`
	Counts          map[string]int `json:"counts"`
	TotalChildren   int            `json:"totalChildren"`
	MaxAcceptors    *int           `json:"maxAcceptors,omitempty"`
	CapacityReached bool           `json:"capacityReached"`
}

// CreateAssignmentRequest is the request body for booking one worker on one date.
type CreateAssignmentRequest struct {
	WorkerID  uuid.UUID `json:"workerId" validate:"required"`
	WorkDate  string    `json:"workDate" validate:"required"`
	StartTime string    `json:"startTime,omitempty"`
	EndTime   string    `json:"endTime,omitempty"`
	Notes     string    `json:"notes,omitempty" validate:"max=1000"`
}

// BatchAssignRequest books the cross product of workers and dates.
type BatchAssignRequest struct {
	WorkerIDs []uuid.UUID `json:"workerIds" validate:"required,min=1,max=50"`
	StartDate string      `json:"startDate" validate:"required"`
	EndDate   string      `json:"endDate" validate:"required"`
	StartTime string      `json:"startTime,omitempty"`
	EndTime   string      `json:"endTime,omitempty"`
}

// BatchItemError describes one failed unit of a batch assignment.
type BatchItemError struct {
	WorkerID uuid.UUID `json:"workerId"`
	WorkDate string    `json:"workDate"`
	Message  string    `json:"message"`
}

// BatchAssignResponse reports aggregate and per-unit outcomes. A partially
// successful batch is still a success at the batch level.
type BatchAssignResponse struct {
	Success     bool                 `json:"success"`
	Total       int                  `json:"total"`
	Successful  int                  `json:"successful"`
	Failed      int                  `json:"failed"`
	Errors      []BatchItemError     `json:"errors"`
	Assignments []AssignmentResponse `json:"assignments"`
}

// WorkerReportRequest is the body for a worker reporting their work done.
type WorkerReportRequest struct {
	Notes string `json:"notes,omitempty" validate:"max=1000"`
}

// CompleteAssignmentRequest is the body for the requesting household
// confirming completion. Hours and work units may be supplied explicitly;
// otherwise they are derived from the assignment's time window.
type CompleteAssignmentRequest struct {
	HoursWorked *float64 `json:"hoursWorked,omitempty" validate:"omitempty,gt=0,lte=24"`
	WorkUnits   *float64 `json:"workUnits,omitempty" validate:"omitempty,gt=0,lte=10"`
	Notes       string   `json:"notes,omitempty" validate:"max=1000"`
}

// MissedAssignmentRequest marks a worker as a no-show.
type MissedAssignmentRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// RejectAssignmentRequest is the body for a worker turning down an assignment.
type RejectAssignmentRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// RateRequest is the body for the rating side-channels.
type RateRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"max=1000"`
}

// ConflictCheckRequest is the query for a read-only conflict probe.
type ConflictCheckRequest struct {
	WorkerID  uuid.UUID `form:"workerId" validate:"required"`
	WorkDate  string    `form:"workDate" validate:"required"`
	StartTime string    `form:"startTime" validate:"required"`
	EndTime   string    `form:"endTime" validate:"required"`
}

// ConflictCheckResponse reports overlapping open bookings for the probe window.
type ConflictCheckResponse struct {
	HasConflict            bool                 `json:"hasConflict"`
	ConflictingAssignments []AssignmentResponse `json:"conflictingAssignments"`
}

// AvailabilityForecastRequest is the query for a worker's booking forecast.
type AvailabilityForecastRequest struct {
	WorkerID  uuid.UUID `form:"workerId" validate:"required"`
	StartDate string    `form:"startDate" validate:"required"`
	EndDate   string    `form:"endDate" validate:"required"`
}

// AvailabilityForecastDay is one day of the forecast.
type AvailabilityForecastDay struct {
	Date            string  `json:"date"`
	AssignmentCount int     `json:"assignmentCount"`
	BookedHours     float64 `json:"bookedHours"`
	FullyBooked     bool    `json:"fullyBooked"`
}

// AvailabilityForecastResponse is the per-day forecast for a worker.
type AvailabilityForecastResponse struct {
	WorkerID uuid.UUID                 `json:"workerId"`
	Days     []AvailabilityForecastDay `json:"days"`
}

// AssignmentResponse is the response body for a labor assignment.
type AssignmentResponse struct {
	ID                uuid.UUID `json:"id"`
	RequestID         uuid.UUID `json:"requestId"`
	WorkerID          uuid.UUID `json:"workerId"`
	WorkDate          string    `json:"workDate"`
	StartTime         time.Time `json:"startTime"`
	EndTime           time.Time `json:"endTime"`
	Status            string    `json:"status"`
	HoursWorked       *float64  `json:"hoursWorked,omitempty"`
	WorkUnits         *float64  `json:"workUnits,omitempty"`
	Notes             *string   `json:"notes,omitempty"`
	WorkerRating      *int      `json:"workerRating,omitempty"`
	FarmerRating      *int      `json:"farmerRating,omitempty"`
	ExchangeProcessed bool      `json:"exchangeProcessed"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// ParseDate parses a wire-format calendar date.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(domain.DateFormat, value)
}

// FormatDate renders a calendar date in wire format.
func FormatDate(value time.Time) string {
	return value.Format(domain.DateFormat)
}
