// Package domain holds the pure ledger rules for pairwise labor exchange
// balances: canonical pair ordering, delta signs and per-household views.
package domain

import "github.com/google/uuid"

// Pair is a canonically ordered household pair. Exactly one ledger row exists
// per unordered pair; the household with the smaller UUID is always A, so
// (x, y) and (y, x) resolve to the same row.
type Pair struct {
	HouseholdA uuid.UUID
	HouseholdB uuid.UUID
}

// NewPair canonically orders two household IDs.
func NewPair(x, y uuid.UUID) Pair {
	if y.String() < x.String() {
		x, y = y, x
	}
	return Pair{HouseholdA: x, HouseholdB: y}
}

// Contains reports whether the household is a member of the pair.
func (p Pair) Contains(householdID uuid.UUID) bool {
	return p.HouseholdA == householdID || p.HouseholdB == householdID
}

// Other returns the pair member that is not the given household.
func (p Pair) Other(householdID uuid.UUID) uuid.UUID {
	if p.HouseholdA == householdID {
		return p.HouseholdB
	}
	return p.HouseholdA
}

// DeltaFor converts earned work units into a signed ledger delta. The stored
// balance is from household A's perspective: positive means B owes A. A
// worker household earning units is owed by the other side, so A earning
// raises the balance and B earning lowers it.
func (p Pair) DeltaFor(workerHouseholdID uuid.UUID, workUnits float64) float64 {
	if workerHouseholdID == p.HouseholdA {
		return workUnits
	}
	return -workUnits
}

// BalanceFor re-signs the stored balance into the given household's
// perspective: positive means the other household owes them.
func (p Pair) BalanceFor(householdID uuid.UUID, stored float64) float64 {
	if householdID == p.HouseholdA {
		return stored
	}
	return -stored
}

// Direction labels a balance from the viewer's perspective: positive means
// the other household owes the viewer, negative means the viewer owes them.
func Direction(balance float64) string {
	switch {
	case balance > 0:
		return "positive"
	case balance < 0:
		return "negative"
	default:
		return "neutral"
	}
}

// TransactionKind classifies ledger transactions.
type TransactionKind string

const (
	TransactionCompletion TransactionKind = "completion"
	TransactionAdjustment TransactionKind = "adjustment"
	TransactionReset      TransactionKind = "reset"
)
