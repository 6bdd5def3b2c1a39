// Package ports defines the interfaces the orders module needs from other
// modules, implemented by adapters at composition time.
package ports

import (
	"context"

	"github.com/google/uuid"
)

// Listing is the slice of a product listing the orders module needs.
type Listing struct {
	ID                uuid.UUID
	HouseholdID       uuid.UUID
	PriceCents        int64
	QuantityAvailable float64
	IsActive          bool
}

// ProductCatalog resolves product listings for order placement.
type ProductCatalog interface {
	ListingForOrder(ctx context.Context, productID uuid.UUID) (*Listing, error)
}
