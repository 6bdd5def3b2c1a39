package transport

import (
	"time"

	"github.com/google/uuid"
)

// ExchangeResponse is one pairwise ledger row from the acting household's
// perspective.
type ExchangeResponse struct {
	ID               uuid.UUID `json:"id"`
	HouseholdAID     uuid.UUID `json:"householdAId"`
	HouseholdBID     uuid.UUID `json:"householdBId"`
	OtherHouseholdID uuid.UUID `json:"otherHouseholdId"`
	Balance          float64   `json:"balance"`
	Direction        string    `json:"direction"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// TransactionResponse is one append-only ledger entry.
type TransactionResponse struct {
	ID           uuid.UUID  `json:"id"`
	ExchangeID   uuid.UUID  `json:"exchangeId"`
	AssignmentID *uuid.UUID `json:"assignmentId,omitempty"`
	Kind         string     `json:"kind"`
	Delta        float64    `json:"delta"`
	BalanceAfter float64    `json:"balanceAfter"`
	Description  string     `json:"description"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// ExchangeDetailResponse is a ledger row plus its recent transactions.
type ExchangeDetailResponse struct {
	Exchange     ExchangeResponse      `json:"exchange"`
	Transactions []TransactionResponse `json:"transactions"`
}

// BalanceResponse reports the signed balance between the acting household and
// one other household.
type BalanceResponse struct {
	HouseholdID      uuid.UUID `json:"householdId"`
	OtherHouseholdID uuid.UUID `json:"otherHouseholdId"`
	Balance          float64   `json:"balance"`
}

// AdjustBalanceRequest posts a manual correction to an exchange.
type AdjustBalanceRequest struct {
	Delta       float64 `json:"delta" validate:"required,ne=0,gte=-100,lte=100"`
	Description string  `json:"description" validate:"required,min=1,max=500"`
}

// RecalculateRequest controls whether a recalculation writes its result back.
type RecalculateRequest struct {
	Apply bool `json:"apply"`
}

// RecalculateResponse compares the stored balance against a replay of the
// transaction log.
type RecalculateResponse struct {
	ExchangeID uuid.UUID `json:"exchangeId"`
	Stored     float64   `json:"stored"`
	Replayed   float64   `json:"replayed"`
	Drift      float64   `json:"drift"`
	Applied    bool      `json:"applied"`
}
