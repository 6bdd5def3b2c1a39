package domain

import (
	"testing"

	"github.com/google/uuid"
)

var (
	lowID  = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	highID = uuid.MustParse("99999999-9999-9999-9999-999999999999")
)

func TestNewPairCanonicalOrder(t *testing.T) {
	forward := NewPair(lowID, highID)
	reversed := NewPair(highID, lowID)

	if forward != reversed {
		t.Fatalf("pair ordering not canonical: %v vs %v", forward, reversed)
	}
	if forward.HouseholdA != lowID {
		t.Errorf("expected smaller ID as household A, got %s", forward.HouseholdA)
	}
	if forward.HouseholdB != highID {
		t.Errorf("expected larger ID as household B, got %s", forward.HouseholdB)
	}
}

func TestDeltaForSigns(t *testing.T) {
	pair := NewPair(lowID, highID)

	if got := pair.DeltaFor(lowID, 1.0); got != 1.0 {
		t.Errorf("household A earning should raise the balance, got %v", got)
	}
	if got := pair.DeltaFor(highID, 1.0); got != -1.0 {
		t.Errorf("household B earning should lower the balance, got %v", got)
	}
	if got := pair.DeltaFor(lowID, 0.5); got != 0.5 {
		t.Errorf("half day for A should be +0.5, got %v", got)
	}
}

func TestBalanceForPerspective(t *testing.T) {
	pair := NewPair(lowID, highID)
	stored := 2.5

	if got := pair.BalanceFor(lowID, stored); got != 2.5 {
		t.Errorf("A's view of +2.5 should be +2.5, got %v", got)
	}
	if got := pair.BalanceFor(highID, stored); got != -2.5 {
		t.Errorf("B's view of +2.5 should be -2.5, got %v", got)
	}
}

func TestDeltaAndBalanceAgree(t *testing.T) {
	// Work performed by one side must show as owed to that side and owing
	// from the other, regardless of argument order at pair creation.
	pair := NewPair(highID, lowID)
	stored := pair.DeltaFor(highID, 1.0)

	if got := pair.BalanceFor(highID, stored); got != 1.0 {
		t.Errorf("worker household should be owed 1.0, got %v", got)
	}
	if got := pair.BalanceFor(lowID, stored); got != -1.0 {
		t.Errorf("requesting household should owe 1.0, got %v", got)
	}
}

func TestPairOtherAndContains(t *testing.T) {
	pair := NewPair(lowID, highID)

	if !pair.Contains(lowID) || !pair.Contains(highID) {
		t.Fatal("pair should contain both members")
	}
	if pair.Contains(uuid.New()) {
		t.Error("pair should not contain a stranger")
	}
	if got := pair.Other(lowID); got != highID {
		t.Errorf("Other(A) = %s, want %s", got, highID)
	}
	if got := pair.Other(highID); got != lowID {
		t.Errorf("Other(B) = %s, want %s", got, lowID)
	}
}

func TestDirection(t *testing.T) {
	tests := []struct {
		balance float64
		want    string
	}{
		{1.5, "positive"},
		{-0.5, "negative"},
		{0, "neutral"},
	}
	for _, tt := range tests {
		if got := Direction(tt.balance); got != tt.want {
			t.Errorf("Direction(%v) = %q, want %q", tt.balance, got, tt.want)
		}
	}
}
