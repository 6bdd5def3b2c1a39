package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateHouseholdRequest is the body for registering a household.
type CreateHouseholdRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=200"`
	Region string `json:"region,omitempty" validate:"max=200"`
	Phone  string `json:"phone,omitempty" validate:"max=32"`
}

// UpdateHouseholdRequest updates a household's profile.
type UpdateHouseholdRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Region *string `json:"region,omitempty" validate:"omitempty,max=200"`
	Phone  *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

// HouseholdResponse is the response body for a household.
type HouseholdResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Region    *string   `json:"region,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateWorkerRequest adds a worker profile to a household.
type CreateWorkerRequest struct {
	Name   string     `json:"name" validate:"required,min=1,max=200"`
	Phone  string     `json:"phone,omitempty" validate:"max=32"`
	UserID *uuid.UUID `json:"userId,omitempty"`
}

// UpdateAvailabilityRequest sets a worker's availability hint.
type UpdateAvailabilityRequest struct {
	Availability string `json:"availability" validate:"required,oneof=available busy unavailable"`
}

// WorkerResponse is the response body for a worker profile.
type WorkerResponse struct {
	ID           uuid.UUID  `json:"id"`
	HouseholdID  uuid.UUID  `json:"householdId"`
	UserID       *uuid.UUID `json:"userId,omitempty"`
	Name         string     `json:"name"`
	Phone        *string    `json:"phone,omitempty"`
	Availability string     `json:"availability"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
