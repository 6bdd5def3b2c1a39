// Package transport defines request and response DTOs for the products API.
package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateProductRequest struct {
	Name              string  `json:"name" validate:"required,min=2,max=120"`
	Description       string  `json:"description" validate:"omitempty,max=2000"`
	Category          string  `json:"category" validate:"required,oneof=produce seeds tools livestock other"`
	Unit              string  `json:"unit" validate:"required,max=30"`
	PriceCents        int64   `json:"priceCents" validate:"required,gt=0"`
	QuantityAvailable float64 `json:"quantityAvailable" validate:"gte=0"`
}

type UpdateProductRequest struct {
	Name              string  `json:"name" validate:"required,min=2,max=120"`
	Description       string  `json:"description" validate:"omitempty,max=2000"`
	Category          string  `json:"category" validate:"required,oneof=produce seeds tools livestock other"`
	Unit              string  `json:"unit" validate:"required,max=30"`
	PriceCents        int64   `json:"priceCents" validate:"required,gt=0"`
	QuantityAvailable float64 `json:"quantityAvailable" validate:"gte=0"`
	IsActive          bool    `json:"isActive"`
}

type PresignPhotoRequest struct {
	FileName    string `json:"fileName" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required,max=100"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,gt=0"`
}

type AttachPhotoRequest struct {
	FileKey string `json:"fileKey" validate:"required,max=512"`
}

type ProductResponse struct {
	ID                uuid.UUID `json:"id"`
	HouseholdID       uuid.UUID `json:"householdId"`
	Name              string    `json:"name"`
	Description       *string   `json:"description,omitempty"`
	Category          string    `json:"category"`
	Unit              string    `json:"unit"`
	PriceCents        int64     `json:"priceCents"`
	QuantityAvailable float64   `json:"quantityAvailable"`
	PhotoURL          *string   `json:"photoUrl,omitempty"`
	IsActive          bool      `json:"isActive"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
