// Package adapters implements the cross-module ports. Each adapter translates
// one module's port interface onto another module's service, so bounded
// contexts never import each other directly.
package adapters

import (
	"context"

	"github.com/google/uuid"

	activitiesports "farmlink_backend/internal/activities/ports"
	activitiesservice "farmlink_backend/internal/activities/service"
	authports "farmlink_backend/internal/auth/ports"
	exchangeservice "farmlink_backend/internal/exchange/service"
	householdsservice "farmlink_backend/internal/households/service"
	labordomain "farmlink_backend/internal/labor/domain"
	laborports "farmlink_backend/internal/labor/ports"
	laborservice "farmlink_backend/internal/labor/service"
	ordersports "farmlink_backend/internal/orders/ports"
	productsservice "farmlink_backend/internal/products/service"
)

// LedgerAdapter lets the labor module post completions to the exchange ledger.
type LedgerAdapter struct {
	svc *exchangeservice.Service
}

// NewLedgerAdapter creates a ledger adapter over the exchange service.
func NewLedgerAdapter(svc *exchangeservice.Service) *LedgerAdapter {
	return &LedgerAdapter{svc: svc}
}

// PostCompletion implements labor's LedgerPoster port.
func (a *LedgerAdapter) PostCompletion(ctx context.Context, input laborports.PostCompletionInput) error {
	return a.svc.PostCompletion(ctx, exchangeservice.CompletionPosting{
		AssignmentID:          input.AssignmentID,
		WorkerHouseholdID:     input.WorkerHouseholdID,
		RequestingHouseholdID: input.RequestingHouseholdID,
		WorkUnits:             input.WorkUnits,
		Description:           input.Description,
	})
}

var _ laborports.LedgerPoster = (*LedgerAdapter)(nil)

// HouseholdDirectoryAdapter lets the labor module resolve household ownership
// and worker membership.
type HouseholdDirectoryAdapter struct {
	svc *householdsservice.Service
}

// NewHouseholdDirectoryAdapter creates a directory adapter over the
// households service.
func NewHouseholdDirectoryAdapter(svc *householdsservice.Service) *HouseholdDirectoryAdapter {
	return &HouseholdDirectoryAdapter{svc: svc}
}

// IsOwner implements labor's HouseholdDirectory port.
func (a *HouseholdDirectoryAdapter) IsOwner(ctx context.Context, userID, householdID uuid.UUID) (bool, error) {
	return a.svc.IsOwner(ctx, userID, householdID)
}

// WorkerMembership implements labor's HouseholdDirectory port.
func (a *HouseholdDirectoryAdapter) WorkerMembership(ctx context.Context, workerID uuid.UUID) (laborports.WorkerMembership, error) {
	householdID, err := a.svc.WorkerHousehold(ctx, workerID)
	if err != nil {
		return laborports.WorkerMembership{}, err
	}
	return laborports.WorkerMembership{WorkerID: workerID, HouseholdID: householdID}, nil
}

// WorkerForUser implements labor's HouseholdDirectory port.
func (a *HouseholdDirectoryAdapter) WorkerForUser(ctx context.Context, userID uuid.UUID) (laborports.WorkerMembership, error) {
	worker, err := a.svc.WorkerForUser(ctx, userID)
	if err != nil {
		return laborports.WorkerMembership{}, err
	}
	return laborports.WorkerMembership{WorkerID: worker.ID, HouseholdID: worker.HouseholdID}, nil
}

// SetWorkerAvailability implements labor's HouseholdDirectory port.
func (a *HouseholdDirectoryAdapter) SetWorkerAvailability(ctx context.Context, workerID uuid.UUID, availability labordomain.WorkerAvailability) error {
	return a.svc.SetWorkerAvailabilityHint(ctx, workerID, string(availability))
}

var _ laborports.HouseholdDirectory = (*HouseholdDirectoryAdapter)(nil)

// ActivityStatusAdapter lets the labor module push request status changes
// onto linked farm activities. The activities service is bound after both
// modules are constructed because each side holds a port onto the other.
type ActivityStatusAdapter struct {
	svc *activitiesservice.Service
}

// NewActivityStatusAdapter creates an unbound activity status adapter.
func NewActivityStatusAdapter() *ActivityStatusAdapter {
	return &ActivityStatusAdapter{}
}

// Bind attaches the activities service. Must be called before any traffic.
func (a *ActivityStatusAdapter) Bind(svc *activitiesservice.Service) {
	a.svc = svc
}

// SyncStatus implements labor's ActivityStatusWriter port.
func (a *ActivityStatusAdapter) SyncStatus(ctx context.Context, activityID uuid.UUID, status labordomain.ActivityStatus) error {
	if a.svc == nil {
		return nil
	}
	return a.svc.SyncStatusFromLabor(ctx, activityID, string(status))
}

var _ laborports.ActivityStatusWriter = (*ActivityStatusAdapter)(nil)

// LaborSyncAdapter lets the activities module push activity status changes
// back onto linked labor requests.
type LaborSyncAdapter struct {
	svc *laborservice.Service
}

// NewLaborSyncAdapter creates a sync adapter over the labor service.
func NewLaborSyncAdapter(svc *laborservice.Service) *LaborSyncAdapter {
	return &LaborSyncAdapter{svc: svc}
}

// SyncFromActivity implements the activities module's RequestStatusWriter port.
func (a *LaborSyncAdapter) SyncFromActivity(ctx context.Context, requestID uuid.UUID, activityStatus string) error {
	return a.svc.SyncFromActivity(ctx, requestID, labordomain.ActivityStatus(activityStatus))
}

var _ activitiesports.RequestStatusWriter = (*LaborSyncAdapter)(nil)

// ProductCatalogAdapter lets the orders module resolve product listings.
type ProductCatalogAdapter struct {
	svc *productsservice.Service
}

// NewProductCatalogAdapter creates a catalog adapter over the products service.
func NewProductCatalogAdapter(svc *productsservice.Service) *ProductCatalogAdapter {
	return &ProductCatalogAdapter{svc: svc}
}

// ListingForOrder implements the orders module's ProductCatalog port.
func (a *ProductCatalogAdapter) ListingForOrder(ctx context.Context, productID uuid.UUID) (*ordersports.Listing, error) {
	p, err := a.svc.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &ordersports.Listing{
		ID:                p.ID,
		HouseholdID:       p.HouseholdID,
		PriceCents:        p.PriceCents,
		QuantityAvailable: p.QuantityAvailable,
		IsActive:          p.IsActive,
	}, nil
}

var _ ordersports.ProductCatalog = (*ProductCatalogAdapter)(nil)

// HouseholdResolverAdapter lets the auth module embed the acting household in
// access tokens without depending on the households module.
type HouseholdResolverAdapter struct {
	svc *householdsservice.Service
}

// NewHouseholdResolverAdapter creates a resolver adapter over the households
// service.
func NewHouseholdResolverAdapter(svc *householdsservice.Service) *HouseholdResolverAdapter {
	return &HouseholdResolverAdapter{svc: svc}
}

// HouseholdForUser implements auth's HouseholdResolver port.
func (a *HouseholdResolverAdapter) HouseholdForUser(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error) {
	return a.svc.HouseholdIDForUser(ctx, userID)
}

var _ authports.HouseholdResolver = (*HouseholdResolverAdapter)(nil)
