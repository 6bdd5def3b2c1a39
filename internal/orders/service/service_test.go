package service

import (
	"testing"

	"github.com/google/uuid"

	"farmlink_backend/internal/orders/repository"
	"farmlink_backend/platform/apperr"
)

func TestValidateTransition(t *testing.T) {
	seller := uuid.New()
	buyer := uuid.New()

	order := func(status string) *repository.Order {
		return &repository.Order{
			ID:                uuid.New(),
			BuyerHouseholdID:  buyer,
			SellerHouseholdID: seller,
			Status:            status,
		}
	}

	tests := []struct {
		name     string
		current  string
		actor    uuid.UUID
		next     string
		wantKind apperr.Kind
	}{
		{"seller accepts pending", repository.StatusPending, seller, repository.StatusAccepted, apperr.KindUnknown},
		{"seller rejects pending", repository.StatusPending, seller, repository.StatusRejected, apperr.KindUnknown},
		{"seller completes accepted", repository.StatusAccepted, seller, repository.StatusCompleted, apperr.KindUnknown},
		{"buyer cancels pending", repository.StatusPending, buyer, repository.StatusCancelled, apperr.KindUnknown},
		{"buyer cannot accept", repository.StatusPending, buyer, repository.StatusAccepted, apperr.KindForbidden},
		{"seller cannot cancel", repository.StatusPending, seller, repository.StatusCancelled, apperr.KindForbidden},
		{"cannot complete pending", repository.StatusPending, seller, repository.StatusCompleted, apperr.KindPrecondition},
		{"cannot accept completed", repository.StatusCompleted, seller, repository.StatusAccepted, apperr.KindPrecondition},
		{"cannot cancel accepted", repository.StatusAccepted, buyer, repository.StatusCancelled, apperr.KindPrecondition},
		{"unknown status", repository.StatusPending, seller, "shipped", apperr.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTransition(order(tt.current), tt.actor, tt.next)
			if tt.wantKind == apperr.KindUnknown {
				if err != nil {
					t.Fatalf("expected transition to be allowed, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected %v error, got nil", tt.wantKind)
			}
			if got := apperr.GetKind(err); got != tt.wantKind {
				t.Errorf("kind = %v, want %v", got, tt.wantKind)
			}
		})
	}
}
