// Package service implements product listing business logic.
package service

import (
	"context"
	"fmt"
	"time"

	"farmlink_backend/internal/adapters/storage"
	"farmlink_backend/internal/products/repository"
	"farmlink_backend/internal/products/transport"
	"farmlink_backend/platform/apperr"
	"farmlink_backend/platform/logger"

	"github.com/google/uuid"
)

type Service struct {
	repo    *repository.Repository
	storage storage.Service
	bucket  string
	log     *logger.Logger
}

func New(repo *repository.Repository, storageSvc storage.Service, bucket string, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		storage: storageSvc,
		bucket:  bucket,
		log:     log,
	}
}

func (s *Service) Create(ctx context.Context, householdID uuid.UUID, req transport.CreateProductRequest) (*transport.ProductResponse, error) {
	now := time.Now()
	p := &repository.Product{
		ID:                uuid.New(),
		HouseholdID:       householdID,
		Name:              req.Name,
		Description:       optional(req.Description),
		Category:          req.Category,
		Unit:              req.Unit,
		PriceCents:        req.PriceCents,
		QuantityAvailable: req.QuantityAvailable,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, p), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*transport.ProductResponse, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, p), nil
}

func (s *Service) ListOwn(ctx context.Context, householdID uuid.UUID) ([]*transport.ProductResponse, error) {
	items, err := s.repo.ListForHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, items), nil
}

func (s *Service) ListMarket(ctx context.Context, viewerHouseholdID uuid.UUID, category string, page, pageSize int) ([]*transport.ProductResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	items, err := s.repo.ListMarket(ctx, viewerHouseholdID, category, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, items), nil
}

func (s *Service) Update(ctx context.Context, householdID, id uuid.UUID, req transport.UpdateProductRequest) (*transport.ProductResponse, error) {
	p, err := s.requireOwned(ctx, householdID, id)
	if err != nil {
		return nil, err
	}

	p.Name = req.Name
	p.Description = optional(req.Description)
	p.Category = req.Category
	p.Unit = req.Unit
	p.PriceCents = req.PriceCents
	p.QuantityAvailable = req.QuantityAvailable
	p.IsActive = req.IsActive

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, p), nil
}

func (s *Service) Delete(ctx context.Context, householdID, id uuid.UUID) error {
	p, err := s.requireOwned(ctx, householdID, id)
	if err != nil {
		return err
	}

	if p.PhotoKey != nil && s.storage != nil {
		if err := s.storage.DeleteObject(ctx, s.bucket, *p.PhotoKey); err != nil {
			s.log.Warn("failed to delete product photo", "error", err, "productId", id)
		}
	}
	return s.repo.Delete(ctx, id)
}

// PresignPhotoUpload returns a presigned PUT URL for a listing photo.
func (s *Service) PresignPhotoUpload(ctx context.Context, householdID, id uuid.UUID, req transport.PresignPhotoRequest) (*storage.PresignedURL, error) {
	if s.storage == nil {
		return nil, apperr.Precondition("photo storage is not configured")
	}
	if _, err := s.requireOwned(ctx, householdID, id); err != nil {
		return nil, err
	}

	folder := fmt.Sprintf("%s/%s", householdID, id)
	presigned, err := s.storage.GenerateUploadURL(ctx, s.bucket, folder, req.FileName, req.ContentType, req.SizeBytes)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	return presigned, nil
}

// AttachPhoto records the uploaded photo key on the listing.
func (s *Service) AttachPhoto(ctx context.Context, householdID, id uuid.UUID, req transport.AttachPhotoRequest) error {
	p, err := s.requireOwned(ctx, householdID, id)
	if err != nil {
		return err
	}

	if p.PhotoKey != nil && s.storage != nil && *p.PhotoKey != req.FileKey {
		if err := s.storage.DeleteObject(ctx, s.bucket, *p.PhotoKey); err != nil {
			s.log.Warn("failed to delete replaced product photo", "error", err, "productId", id)
		}
	}
	return s.repo.SetPhotoKey(ctx, id, &req.FileKey)
}

func (s *Service) requireOwned(ctx context.Context, householdID, id uuid.UUID) (*repository.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.HouseholdID != householdID {
		return nil, apperr.Forbidden("product belongs to another household")
	}
	return p, nil
}

func (s *Service) toResponse(ctx context.Context, p *repository.Product) *transport.ProductResponse {
	resp := &transport.ProductResponse{
		ID:                p.ID,
		HouseholdID:       p.HouseholdID,
		Name:              p.Name,
		Description:       p.Description,
		Category:          p.Category,
		Unit:              p.Unit,
		PriceCents:        p.PriceCents,
		QuantityAvailable: p.QuantityAvailable,
		IsActive:          p.IsActive,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}

	if p.PhotoKey != nil && s.storage != nil {
		presigned, err := s.storage.GenerateDownloadURL(ctx, s.bucket, *p.PhotoKey)
		if err != nil {
			s.log.Warn("failed to presign product photo", "error", err, "productId", p.ID)
		} else {
			resp.PhotoURL = &presigned.URL
		}
	}
	return resp
}

func (s *Service) toResponses(ctx context.Context, items []*repository.Product) []*transport.ProductResponse {
	out := make([]*transport.ProductResponse, 0, len(items))
	for _, p := range items {
		out = append(out, s.toResponse(ctx, p))
	}
	return out
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
