// Package transport defines request and response DTOs for the orders API.
package transport

import (
	"time"

	"github.com/google/uuid"
)

type PlaceOrderRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  float64   `json:"quantity" validate:"required,gt=0"`
	Note      string    `json:"note" validate:"omitempty,max=500"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected completed cancelled"`
}

type OrderResponse struct {
	ID                uuid.UUID `json:"id"`
	ProductID         uuid.UUID `json:"productId"`
	BuyerHouseholdID  uuid.UUID `json:"buyerHouseholdId"`
	SellerHouseholdID uuid.UUID `json:"sellerHouseholdId"`
	Quantity          float64   `json:"quantity"`
	TotalCents        int64     `json:"totalCents"`
	Status            string    `json:"status"`
	Note              *string   `json:"note,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
