package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"farmlink_backend/internal/households/repository"
	"farmlink_backend/internal/households/transport"
	"farmlink_backend/internal/labor/domain"
	"farmlink_backend/platform/apperr"
	"farmlink_backend/platform/logger"
	"farmlink_backend/platform/phone"
	"farmlink_backend/platform/sanitize"
)

// Service provides business logic for households and worker profiles.
type Service struct {
	repo *repository.Repository
	log  *logger.Logger
}

// New creates a new households service.
func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// CreateHousehold registers a household with the acting user as owner.
func (s *Service) CreateHousehold(ctx context.Context, userID uuid.UUID, req transport.CreateHouseholdRequest) (transport.HouseholdResponse, error) {
	phoneNumber, err := normalizePhone(req.Phone)
	if err != nil {
		return transport.HouseholdResponse{}, err
	}

	now := time.Now()
	h := &repository.Household{
		ID:        uuid.New(),
		Name:      sanitize.Text(req.Name),
		Region:    optional(sanitize.Text(req.Region)),
		Phone:     phoneNumber,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateHousehold(ctx, h, userID); err != nil {
		return transport.HouseholdResponse{}, err
	}

	s.log.Info("household created", "id", h.ID, "owner", userID)
	return toHouseholdResponse(h), nil
}

// GetHousehold retrieves a household profile.
func (s *Service) GetHousehold(ctx context.Context, id uuid.UUID) (transport.HouseholdResponse, error) {
	h, err := s.repo.GetHouseholdByID(ctx, id)
	if err != nil {
		return transport.HouseholdResponse{}, err
	}
	return toHouseholdResponse(h), nil
}

// GetOwnHousehold retrieves the acting user's household.
func (s *Service) GetOwnHousehold(ctx context.Context, userID uuid.UUID) (transport.HouseholdResponse, error) {
	h, err := s.repo.GetHouseholdForUser(ctx, userID)
	if err != nil {
		return transport.HouseholdResponse{}, err
	}
	return toHouseholdResponse(h), nil
}

// UpdateHousehold updates a household's profile. Owner only.
func (s *Service) UpdateHousehold(ctx context.Context, userID, householdID uuid.UUID, req transport.UpdateHouseholdRequest) (transport.HouseholdResponse, error) {
	if err := s.requireOwner(ctx, userID, householdID); err != nil {
		return transport.HouseholdResponse{}, err
	}

	h, err := s.repo.GetHouseholdByID(ctx, householdID)
	if err != nil {
		return transport.HouseholdResponse{}, err
	}

	if req.Name != nil {
		h.Name = sanitize.Text(*req.Name)
	}
	if req.Region != nil {
		h.Region = optional(sanitize.Text(*req.Region))
	}
	if req.Phone != nil {
		phoneNumber, err := normalizePhone(*req.Phone)
		if err != nil {
			return transport.HouseholdResponse{}, err
		}
		h.Phone = phoneNumber
	}

	if err := s.repo.UpdateHousehold(ctx, h); err != nil {
		return transport.HouseholdResponse{}, err
	}

	return toHouseholdResponse(h), nil
}

// AddWorker adds a worker profile to the acting user's household. Owner only.
func (s *Service) AddWorker(ctx context.Context, userID, householdID uuid.UUID, req transport.CreateWorkerRequest) (transport.WorkerResponse, error) {
	if err := s.requireOwner(ctx, userID, householdID); err != nil {
		return transport.WorkerResponse{}, err
	}

	phoneNumber, err := normalizePhone(req.Phone)
	if err != nil {
		return transport.WorkerResponse{}, err
	}

	now := time.Now()
	w := &repository.Worker{
		ID:           uuid.New(),
		HouseholdID:  householdID,
		UserID:       req.UserID,
		Name:         sanitize.Text(req.Name),
		Phone:        phoneNumber,
		Availability: string(domain.WorkerAvailable),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateWorker(ctx, w); err != nil {
		return transport.WorkerResponse{}, err
	}

	s.log.Info("worker added", "id", w.ID, "household_id", householdID)
	return toWorkerResponse(w), nil
}

// ListWorkers lists a household's worker profiles. Any member may look.
func (s *Service) ListWorkers(ctx context.Context, userID, householdID uuid.UUID) ([]transport.WorkerResponse, error) {
	if _, err := s.repo.GetMemberRole(ctx, householdID, userID); err != nil {
		return nil, err
	}

	workers, err := s.repo.ListWorkers(ctx, householdID)
	if err != nil {
		return nil, err
	}

	items := make([]transport.WorkerResponse, 0, len(workers))
	for i := range workers {
		items = append(items, toWorkerResponse(&workers[i]))
	}

	return items, nil
}

// SetAvailability updates a worker's availability hint. Owner only.
func (s *Service) SetAvailability(ctx context.Context, userID, householdID, workerID uuid.UUID, req transport.UpdateAvailabilityRequest) (transport.WorkerResponse, error) {
	worker, err := s.repo.GetWorkerByID(ctx, workerID)
	if err != nil {
		return transport.WorkerResponse{}, err
	}
	if worker.HouseholdID != householdID {
		return transport.WorkerResponse{}, apperr.Forbidden("worker belongs to another household")
	}
	if err := s.requireOwner(ctx, userID, householdID); err != nil {
		return transport.WorkerResponse{}, err
	}

	if err := s.repo.UpdateWorkerAvailability(ctx, workerID, req.Availability); err != nil {
		return transport.WorkerResponse{}, err
	}
	worker.Availability = req.Availability

	return toWorkerResponse(worker), nil
}

// RemoveWorker deletes a worker profile. Owner only.
func (s *Service) RemoveWorker(ctx context.Context, userID, householdID, workerID uuid.UUID) error {
	worker, err := s.repo.GetWorkerByID(ctx, workerID)
	if err != nil {
		return err
	}
	if worker.HouseholdID != householdID {
		return apperr.Forbidden("worker belongs to another household")
	}
	if err := s.requireOwner(ctx, userID, householdID); err != nil {
		return err
	}

	return s.repo.DeleteWorker(ctx, workerID)
}

// IsOwner reports whether the user owns the household. Used by the labor
// module through the household directory port.
func (s *Service) IsOwner(ctx context.Context, userID, householdID uuid.UUID) (bool, error) {
	role, err := s.repo.GetMemberRole(ctx, householdID, userID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return false, nil
		}
		return false, err
	}
	return role == repository.RoleOwner, nil
}

// WorkerHousehold resolves a worker's household ID.
func (s *Service) WorkerHousehold(ctx context.Context, workerID uuid.UUID) (uuid.UUID, error) {
	worker, err := s.repo.GetWorkerByID(ctx, workerID)
	if err != nil {
		return uuid.Nil, err
	}
	return worker.HouseholdID, nil
}

// WorkerForUser resolves the worker profile linked to a user.
func (s *Service) WorkerForUser(ctx context.Context, userID uuid.UUID) (*repository.Worker, error) {
	return s.repo.GetWorkerForUser(ctx, userID)
}

// HouseholdIDForUser resolves the household a user belongs to. Users without
// a household resolve to nil rather than an error.
func (s *Service) HouseholdIDForUser(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error) {
	h, err := s.repo.GetHouseholdForUser(ctx, userID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &h.ID, nil
}

// SetWorkerAvailabilityHint writes the availability hint without ownership
// checks. Reserved for internal callers reacting to scheduling changes.
func (s *Service) SetWorkerAvailabilityHint(ctx context.Context, workerID uuid.UUID, availability string) error {
	return s.repo.UpdateWorkerAvailability(ctx, workerID, availability)
}

func (s *Service) requireOwner(ctx context.Context, userID, householdID uuid.UUID) error {
	role, err := s.repo.GetMemberRole(ctx, householdID, userID)
	if err != nil {
		return err
	}
	if role != repository.RoleOwner {
		return apperr.Forbidden("only a household owner can do this")
	}
	return nil
}

func normalizePhone(raw string) (*string, error) {
	if raw == "" {
		return nil, nil
	}
	normalized := phone.NormalizeE164(raw)
	if normalized == "" {
		return nil, apperr.Validation("invalid phone number")
	}
	return &normalized, nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func toHouseholdResponse(h *repository.Household) transport.HouseholdResponse {
	return transport.HouseholdResponse{
		ID:        h.ID,
		Name:      h.Name,
		Region:    h.Region,
		Phone:     h.Phone,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

func toWorkerResponse(w *repository.Worker) transport.WorkerResponse {
	return transport.WorkerResponse{
		ID:           w.ID,
		HouseholdID:  w.HouseholdID,
		UserID:       w.UserID,
		Name:         w.Name,
		Phone:        w.Phone,
		Availability: w.Availability,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}
