// Package events defines the domain events modules publish on the shared bus.
// Handlers subscribe by event name; payloads are plain structs so subscribers
// never import the publishing module.
package events

import (
	"github.com/google/uuid"

	"farmlink_backend/platform/events"
)

const (
	LaborRequestCreatedEvent   = "labor.request.created"
	LaborRequestAcceptedEvent  = "labor.request.accepted"
	LaborRequestDeclinedEvent  = "labor.request.declined"
	LaborRequestCancelledEvent = "labor.request.cancelled"
	LaborRequestCompletedEvent = "labor.request.completed"

	AssignmentCreatedEvent   = "labor.assignment.created"
	AssignmentCompletedEvent = "labor.assignment.completed"
	AssignmentMissedEvent    = "labor.assignment.missed"
	AssignmentRejectedEvent  = "labor.assignment.rejected"

	ExchangePostedEvent = "exchange.transaction.posted"

	OrderPlacedEvent = "orders.order.placed"
)

// LaborRequestCreated is published after a labor request is persisted.
type LaborRequestCreated struct {
	events.BaseEvent
	RequestID             uuid.UUID
	RequestingHouseholdID uuid.UUID
	ProvidingHouseholdID  *uuid.UUID
	Title                 string
	IsPublic              bool
}

func (LaborRequestCreated) EventName() string { return LaborRequestCreatedEvent }

// LaborRequestAccepted is published when a providing household accepts.
type LaborRequestAccepted struct {
	events.BaseEvent
	RequestID             uuid.UUID
	RequestingHouseholdID uuid.UUID
	ProvidingHouseholdID  uuid.UUID
	Title                 string
}

func (LaborRequestAccepted) EventName() string { return LaborRequestAcceptedEvent }

// LaborRequestDeclined is published when a providing household declines.
type LaborRequestDeclined struct {
	events.BaseEvent
	RequestID             uuid.UUID
	RequestingHouseholdID uuid.UUID
	Title                 string
	Reason                string
}

func (LaborRequestDeclined) EventName() string { return LaborRequestDeclinedEvent }

// LaborRequestCancelled is published after a cancel cascade commits.
type LaborRequestCancelled struct {
	events.BaseEvent
	RequestID             uuid.UUID
	RequestingHouseholdID uuid.UUID
	ProvidingHouseholdID  *uuid.UUID
	Title                 string
}

func (LaborRequestCancelled) EventName() string { return LaborRequestCancelledEvent }

// LaborRequestCompleted is published when a request reaches completed.
type LaborRequestCompleted struct {
	events.BaseEvent
	RequestID             uuid.UUID
	RequestingHouseholdID uuid.UUID
	ProvidingHouseholdID  *uuid.UUID
	Title                 string
}

func (LaborRequestCompleted) EventName() string { return LaborRequestCompletedEvent }

// AssignmentCreated is published for each booked assignment, including each
// successful unit of a batch.
type AssignmentCreated struct {
	events.BaseEvent
	AssignmentID uuid.UUID
	RequestID    uuid.UUID
	WorkerID     uuid.UUID
	WorkDate     string
}

func (AssignmentCreated) EventName() string { return AssignmentCreatedEvent }

// AssignmentCompleted is published after completion is saved and any ledger
// posting has settled.
type AssignmentCompleted struct {
	events.BaseEvent
	AssignmentID uuid.UUID
	RequestID    uuid.UUID
	WorkerID     uuid.UUID
	WorkDate     string
	HoursWorked  float64
	WorkUnits    float64
}

func (AssignmentCompleted) EventName() string { return AssignmentCompletedEvent }

// AssignmentMissed is published when a worker is marked a no-show.
type AssignmentMissed struct {
	events.BaseEvent
	AssignmentID uuid.UUID
	RequestID    uuid.UUID
	WorkerID     uuid.UUID
	WorkDate     string
}

func (AssignmentMissed) EventName() string { return AssignmentMissedEvent }

// AssignmentRejected is published when a worker turns an assignment down.
type AssignmentRejected struct {
	events.BaseEvent
	AssignmentID uuid.UUID
	RequestID    uuid.UUID
	WorkerID     uuid.UUID
	WorkDate     string
}

func (AssignmentRejected) EventName() string { return AssignmentRejectedEvent }

// ExchangePosted is published after a ledger transaction commits.
type ExchangePosted struct {
	events.BaseEvent
	ExchangeID       uuid.UUID
	TransactionID    uuid.UUID
	HouseholdAID     uuid.UUID
	HouseholdBID     uuid.UUID
	Delta            float64
	ResultingBalance float64
}

func (ExchangePosted) EventName() string { return ExchangePostedEvent }

// OrderPlaced is published after a marketplace order is persisted.
type OrderPlaced struct {
	events.BaseEvent
	OrderID           uuid.UUID
	BuyerHouseholdID  uuid.UUID
	SellerHouseholdID uuid.UUID
	TotalCents        int64
}

func (OrderPlaced) EventName() string { return OrderPlacedEvent }
