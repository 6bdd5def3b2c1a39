// Package service implements order placement and fulfilment logic.
package service

import (
	"context"
	"math"
	"time"

	domainevents "farmlink_backend/internal/events"
	"farmlink_backend/internal/orders/ports"
	"farmlink_backend/internal/orders/repository"
	"farmlink_backend/internal/orders/transport"
	"farmlink_backend/platform/apperr"
	"farmlink_backend/platform/events"
	"farmlink_backend/platform/logger"

	"github.com/google/uuid"
)

type Service struct {
	repo    *repository.Repository
	catalog ports.ProductCatalog
	bus     events.Bus
	log     *logger.Logger
}

func New(repo *repository.Repository, catalog ports.ProductCatalog, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		bus:     bus,
		log:     log,
	}
}

// Place creates a pending order against an active listing.
func (s *Service) Place(ctx context.Context, buyerHouseholdID uuid.UUID, req transport.PlaceOrderRequest) (*transport.OrderResponse, error) {
	listing, err := s.catalog.ListingForOrder(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !listing.IsActive {
		return nil, apperr.Precondition("product listing is not active")
	}
	if listing.HouseholdID == buyerHouseholdID {
		return nil, apperr.Validation("cannot order your own product")
	}
	if listing.QuantityAvailable > 0 && req.Quantity > listing.QuantityAvailable {
		return nil, apperr.Precondition("requested quantity exceeds availability")
	}

	now := time.Now()
	o := &repository.Order{
		ID:                uuid.New(),
		ProductID:         listing.ID,
		BuyerHouseholdID:  buyerHouseholdID,
		SellerHouseholdID: listing.HouseholdID,
		Quantity:          req.Quantity,
		TotalCents:        int64(math.Round(float64(listing.PriceCents) * req.Quantity)),
		Status:            repository.StatusPending,
		Note:              optional(req.Note),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, domainevents.OrderPlaced{
		OrderID:           o.ID,
		BuyerHouseholdID:  o.BuyerHouseholdID,
		SellerHouseholdID: o.SellerHouseholdID,
		TotalCents:        o.TotalCents,
	})

	return toResponse(o), nil
}

func (s *Service) Get(ctx context.Context, householdID, orderID uuid.UUID) (*transport.OrderResponse, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerHouseholdID != householdID && o.SellerHouseholdID != householdID {
		return nil, apperr.NotFound("order not found")
	}
	return toResponse(o), nil
}

func (s *Service) ListPlaced(ctx context.Context, householdID uuid.UUID) ([]*transport.OrderResponse, error) {
	items, err := s.repo.ListPlaced(ctx, householdID)
	if err != nil {
		return nil, err
	}
	return toResponses(items), nil
}

func (s *Service) ListReceived(ctx context.Context, householdID uuid.UUID) ([]*transport.OrderResponse, error) {
	items, err := s.repo.ListReceived(ctx, householdID)
	if err != nil {
		return nil, err
	}
	return toResponses(items), nil
}

// UpdateStatus transitions an order. The seller may accept, reject or
// complete; the buyer may only cancel while pending.
func (s *Service) UpdateStatus(ctx context.Context, householdID, orderID uuid.UUID, req transport.UpdateOrderStatusRequest) (*transport.OrderResponse, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerHouseholdID != householdID && o.SellerHouseholdID != householdID {
		return nil, apperr.NotFound("order not found")
	}

	if err := validateTransition(o, householdID, req.Status); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, orderID, req.Status); err != nil {
		return nil, err
	}
	o.Status = req.Status
	return toResponse(o), nil
}

func validateTransition(o *repository.Order, actorHouseholdID uuid.UUID, next string) error {
	isSeller := actorHouseholdID == o.SellerHouseholdID

	switch next {
	case repository.StatusAccepted, repository.StatusRejected:
		if !isSeller {
			return apperr.Forbidden("only the seller can accept or reject an order")
		}
		if o.Status != repository.StatusPending {
			return apperr.Precondition("only pending orders can be accepted or rejected")
		}
	case repository.StatusCompleted:
		if !isSeller {
			return apperr.Forbidden("only the seller can complete an order")
		}
		if o.Status != repository.StatusAccepted {
			return apperr.Precondition("only accepted orders can be completed")
		}
	case repository.StatusCancelled:
		if isSeller {
			return apperr.Forbidden("only the buyer can cancel an order")
		}
		if o.Status != repository.StatusPending {
			return apperr.Precondition("only pending orders can be cancelled")
		}
	default:
		return apperr.Validation("unknown order status")
	}
	return nil
}

func toResponse(o *repository.Order) *transport.OrderResponse {
	return &transport.OrderResponse{
		ID:                o.ID,
		ProductID:         o.ProductID,
		BuyerHouseholdID:  o.BuyerHouseholdID,
		SellerHouseholdID: o.SellerHouseholdID,
		Quantity:          o.Quantity,
		TotalCents:        o.TotalCents,
		Status:            o.Status,
		Note:              o.Note,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

func toResponses(items []*repository.Order) []*transport.OrderResponse {
	out := make([]*transport.OrderResponse, 0, len(items))
	for _, o := range items {
		out = append(out, toResponse(o))
	}
	return out
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
