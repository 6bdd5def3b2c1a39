package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"farmlink_backend/internal/activities/ports"
	"farmlink_backend/internal/activities/repository"
	"farmlink_backend/internal/activities/transport"
	"farmlink_backend/internal/labor/domain"
	"farmlink_backend/platform/apperr"
	"farmlink_backend/platform/logger"
	"farmlink_backend/platform/sanitize"
)

// Service provides business logic for farm activities.
type Service struct {
	repo  *repository.Repository
	labor ports.RequestStatusWriter
	log   *logger.Logger
}

// New creates a new activities service.
func New(repo *repository.Repository, labor ports.RequestStatusWriter, log *logger.Logger) *Service {
	return &Service{repo: repo, labor: labor, log: log}
}

// Create logs a planned farm activity for the acting household.
func (s *Service) Create(ctx context.Context, householdID uuid.UUID, req transport.CreateActivityRequest) (transport.ActivityResponse, error) {
	scheduled, err := time.Parse(domain.DateFormat, req.ScheduledDate)
	if err != nil {
		return transport.ActivityResponse{}, apperr.Validation("scheduledDate must be a valid date in YYYY-MM-DD format")
	}

	now := time.Now()
	a := &repository.Activity{
		ID:             uuid.New(),
		HouseholdID:    householdID,
		LaborRequestID: req.LaborRequestID,
		Title:          sanitize.Text(req.Title),
		Description:    optional(sanitize.Text(req.Description)),
		Category:       req.Category,
		Status:         string(domain.ActivityStatusPending),
		ScheduledDate:  scheduled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return transport.ActivityResponse{}, err
	}

	return toResponse(a), nil
}

// Get retrieves one of the acting household's activities.
func (s *Service) Get(ctx context.Context, householdID, activityID uuid.UUID) (transport.ActivityResponse, error) {
	a, err := s.requireOwned(ctx, householdID, activityID)
	if err != nil {
		return transport.ActivityResponse{}, err
	}
	return toResponse(a), nil
}

// List lists the acting household's activities.
func (s *Service) List(ctx context.Context, householdID uuid.UUID, req transport.ListActivitiesRequest) ([]transport.ActivityResponse, error) {
	var status *string
	if req.Status != "" {
		status = &req.Status
	}

	activities, err := s.repo.ListForHousehold(ctx, householdID, status)
	if err != nil {
		return nil, err
	}

	items := make([]transport.ActivityResponse, 0, len(activities))
	for i := range activities {
		items = append(items, toResponse(&activities[i]))
	}

	return items, nil
}

// Update edits an activity's fields.
func (s *Service) Update(ctx context.Context, householdID, activityID uuid.UUID, req transport.UpdateActivityRequest) (transport.ActivityResponse, error) {
	a, err := s.requireOwned(ctx, householdID, activityID)
	if err != nil {
		return transport.ActivityResponse{}, err
	}

	if req.Title != nil {
		a.Title = sanitize.Text(*req.Title)
	}
	if req.Description != nil {
		a.Description = optional(sanitize.Text(*req.Description))
	}
	if req.Category != nil {
		a.Category = *req.Category
	}
	if req.ScheduledDate != nil {
		scheduled, err := time.Parse(domain.DateFormat, *req.ScheduledDate)
		if err != nil {
			return transport.ActivityResponse{}, apperr.Validation("scheduledDate must be a valid date in YYYY-MM-DD format")
		}
		a.ScheduledDate = scheduled
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return transport.ActivityResponse{}, err
	}

	return toResponse(a), nil
}

// UpdateStatus moves an activity to a new status and propagates the change to
// its linked labor request. The propagation only runs when the activity
// actually changed, so the two sides cannot ping-pong updates.
func (s *Service) UpdateStatus(ctx context.Context, householdID, activityID uuid.UUID, req transport.UpdateStatusRequest) (transport.ActivityResponse, error) {
	a, err := s.requireOwned(ctx, householdID, activityID)
	if err != nil {
		return transport.ActivityResponse{}, err
	}

	changed, err := s.repo.UpdateStatus(ctx, activityID, req.Status)
	if err != nil {
		return transport.ActivityResponse{}, err
	}
	a.Status = req.Status

	if changed && a.LaborRequestID != nil && s.labor != nil {
		if err := s.labor.SyncFromActivity(ctx, *a.LaborRequestID, req.Status); err != nil {
			s.log.Error("failed to sync labor request status",
				"activity_id", activityID, "request_id", *a.LaborRequestID, "error", err)
		}
	}

	return toResponse(a), nil
}

// SyncStatusFromLabor applies a labor-side status onto an activity, writing
// only when the stored status differs. Called through the activities port by
// the labor module; never triggers a sync back.
func (s *Service) SyncStatusFromLabor(ctx context.Context, activityID uuid.UUID, status string) error {
	changed, err := s.repo.UpdateStatus(ctx, activityID, status)
	if err != nil {
		return err
	}
	if changed {
		s.log.Info("activity status synced from labor", "activity_id", activityID, "status", status)
	}
	return nil
}

// LinkLaborRequest attaches a labor request to an activity.
func (s *Service) LinkLaborRequest(ctx context.Context, householdID, activityID, requestID uuid.UUID) error {
	if _, err := s.requireOwned(ctx, householdID, activityID); err != nil {
		return err
	}
	return s.repo.LinkLaborRequest(ctx, activityID, requestID)
}

// Delete removes an activity.
func (s *Service) Delete(ctx context.Context, householdID, activityID uuid.UUID) error {
	a, err := s.requireOwned(ctx, householdID, activityID)
	if err != nil {
		return err
	}
	if a.LaborRequestID != nil {
		return apperr.Precondition("cannot delete an activity linked to a labor request")
	}
	return s.repo.Delete(ctx, activityID)
}

func (s *Service) requireOwned(ctx context.Context, householdID, activityID uuid.UUID) (*repository.Activity, error) {
	a, err := s.repo.GetByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if a.HouseholdID != householdID {
		return nil, apperr.NotFound("activity not found")
	}
	return a, nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func toResponse(a *repository.Activity) transport.ActivityResponse {
	return transport.ActivityResponse{
		ID:             a.ID,
		HouseholdID:    a.HouseholdID,
		LaborRequestID: a.LaborRequestID,
		Title:          a.Title,
		Description:    a.Description,
		Category:       a.Category,
		Status:         a.Status,
		ScheduledDate:  a.ScheduledDate.Format(domain.DateFormat),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}
