package inapp

import (
	"context"

	"farmlink_backend/platform/logger"
	"farmlink_backend/platform/sanitize"

	"github.com/google/uuid"
)

// maxContentRunes bounds one notification line; longer content is truncated,
// not rejected.
const maxContentRunes = 500

type Service struct {
	repo *Repository
	log  *logger.Logger
}

func NewService(repo *Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

type SendParams struct {
	HouseholdID  *uuid.UUID
	UserID       uuid.UUID
	Title        string
	Content      string
	ResourceID   *uuid.UUID
	ResourceType string
	Category     string // "info", "success", "warning", "error"
}

// Send persists an in-app notification for a single user.
func (s *Service) Send(ctx context.Context, p SendParams) error {
	if p.Category == "" {
		p.Category = "info"
	}

	var resourceType *string
	if p.ResourceType != "" {
		resourceType = &p.ResourceType
	}

	_, err := s.repo.Create(ctx, CreateParams{
		HouseholdID:  p.HouseholdID,
		UserID:       p.UserID,
		Title:        sanitize.Text(p.Title),
		Content:      sanitize.Snippet(p.Content, maxContentRunes),
		ResourceID:   p.ResourceID,
		ResourceType: resourceType,
		Category:     p.Category,
	})
	if err != nil {
		s.log.Error("failed to persist notification", "error", err, "userId", p.UserID)
		return err
	}

	return nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	offset := (page - 1) * pageSize
	return s.repo.List(ctx, userID, pageSize, offset)
}

func (s *Service) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.Delete(ctx, userID, id)
}
