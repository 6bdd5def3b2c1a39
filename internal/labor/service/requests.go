package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domainevents "farmlink_backend/internal/events"
	"farmlink_backend/internal/labor/domain"
	"farmlink_backend/internal/labor/ports"
	"farmlink_backend/internal/labor/repository"
	"farmlink_backend/internal/labor/transport"
	"farmlink_backend/platform/apperr"
	"farmlink_backend/platform/events"
	"farmlink_backend/platform/logger"
	"farmlink_backend/platform/sanitize"
)

// Store is the persistence surface the labor service depends on. Implemented
// by *repository.Repository; tests substitute fakes.
type Store interface {
	CreateRequest(ctx context.Context, req *repository.LaborRequest) error
	GetRequestByID(ctx context.Context, id uuid.UUID) (*repository.LaborRequest, error)
	UpdateRequestStatus(ctx context.Context, id uuid.UUID, status string) error
	AcceptRequest(ctx context.Context, id uuid.UUID, providingHouseholdID uuid.UUID) error
	ListRequests(ctx context.Context, params repository.ListRequestParams) (*repository.ListRequestResult, error)
	ListPublicOpenRequests(ctx context.Context, limit int) ([]repository.LaborRequest, error)
	GroupStatusCounts(ctx context.Context, groupID uuid.UUID) (map[string]int, error)
	HouseholdHasChildInGroup(ctx context.Context, groupID, householdID uuid.UUID) (bool, error)
	CountActiveAcceptors(ctx context.Context, groupID uuid.UUID) (int, error)
	CountOpenAssignments(ctx context.Context, requestID uuid.UUID) (int, error)
	CancelRequestCascade(ctx context.Context, req *repository.LaborRequest) error

	CreateAssignment(ctx context.Context, a *repository.LaborAssignment) error
	CreateAssignmentsBatch(ctx context.Context, assignments []*repository.LaborAssignment) []repository.BatchItemResult
	GetAssignmentByID(ctx context.Context, id uuid.UUID) (*repository.LaborAssignment, error)
	ListAssignmentsForRequest(ctx context.Context, requestID uuid.UUID) ([]repository.LaborAssignment, error)
	ListOpenAssignmentsForWorkerOnDate(ctx context.Context, workerID uuid.UUID, workDate time.Time) ([]repository.LaborAssignment, error)
	ListOpenAssignmentsForWorkerInRange(ctx context.Context, workerID uuid.UUID, from, to time.Time) ([]repository.LaborAssignment, error)
	UpdateAssignmentStatus(ctx context.Context, id uuid.UUID, status string, notes *string) error
	CompleteAssignment(ctx context.Context, id uuid.UUID, hoursWorked, workUnits float64, notes *string) error
	ClaimExchangeProcessing(ctx context.Context, id uuid.UUID) (bool, error)
	ReleaseExchangeProcessing(ctx context.Context, id uuid.UUID) error
	RateWorker(ctx context.Context, id uuid.UUID, rating int, note *string) error
	RateFarmer(ctx context.Context, id uuid.UUID, rating int, note *string) error
}

var _ Store = (*repository.Repository)(nil)

// Service provides business logic for labor requests and assignments.
type Service struct {
	repo       Store
	households ports.HouseholdDirectory
	ledger     ports.LedgerPoster
	activities ports.ActivityStatusWriter
	bus        events.Bus
	log        *logger.Logger
}

// New creates a new labor service.
func New(
	repo Store,
	households ports.HouseholdDirectory,
	ledger ports.LedgerPoster,
	activities ports.ActivityStatusWriter,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:       repo,
		households: households,
		ledger:     ledger,
		activities: activities,
		bus:        bus,
		log:        log,
	}
}

// CreateRequest creates a labor request owned by the acting household.
// Validation failures are collected per field rather than reported one at a
// time.
func (s *Service) CreateRequest(ctx context.Context, userID, householdID uuid.UUID, req transport.CreateRequestRequest) (transport.RequestResponse, error) {
	if err := s.requireOwner(ctx, userID, householdID); err != nil {
		return transport.RequestResponse{}, err
	}

	var fieldErrors []transport.FieldError

	startDate, err := transport.ParseDate(req.StartDate)
	if err != nil {
		fieldErrors = append(fieldErrors, transport.FieldError{Field: "startDate", Message: "must be a valid date in YYYY-MM-DD format"})
	}
	endDate, err := transport.ParseDate(req.EndDate)
	if err != nil {
		fieldErrors = append(fieldErrors, transport.FieldError{Field: "endDate", Message: "must be a valid date in YYYY-MM-DD format"})
	}
	if len(fieldErrors) == 0 && endDate.Before(startDate) {
		fieldErrors = append(fieldErrors, transport.FieldError{Field: "endDate", Message: "must not be before startDate"})
	}

	if _, err := domain.CombineDateTime(startDate, req.DefaultStartTime); err != nil {
		fieldErrors = append(fieldErrors, transport.FieldError{Field: "defaultStartTime", Message: "must be a valid time in HH:MM format"})
	}
	if _, err := domain.CombineDateTime(startDate, req.DefaultEndTime); err != nil {
		fieldErrors = append(fieldErrors, transport.FieldError{Field: "defaultEndTime", Message: "must be a valid time in HH:MM format"})
	} else if _, werr := domain.ResolveWindow(startDate, req.DefaultStartTime, req.DefaultEndTime, req.DefaultStartTime, req.DefaultEndTime); werr != nil {
		fieldErrors = append(fieldErrors, transport.FieldError{Field: "defaultEndTime", Message: "must be after defaultStartTime"})
	}

	if req.ProvidingHouseholdID != nil && *req.ProvidingHouseholdID == householdID {
		fieldErrors = append(fieldErrors, transport.FieldError{Field: "providingHouseholdId", Message: "must differ from the requesting household"})
	}
	if req.IsPublic && req.ProvidingHouseholdID != nil {
		fieldErrors = append(fieldErrors, transport.FieldError{Field: "providingHouseholdId", Message: "must be empty for public requests"})
	}
	if !req.IsPublic && req.MaxAcceptors != nil {
		fieldErrors = append(fieldErrors, transport.FieldError{Field: "maxAcceptors", Message: "only applies to public requests"})
	}

	if len(fieldErrors) > 0 {
		return transport.RequestResponse{}, apperr.Validation("invalid labor request").WithDetails(fieldErrors)
	}

	now := time.Now()
	request := &repository.LaborRequest{
		ID:                    uuid.New(),
		RequestingHouseholdID: householdID,
		ProvidingHouseholdID:  req.ProvidingHouseholdID,
		ActivityID:            req.ActivityID,
		Title:                 sanitize.Text(req.Title),
		Description:           sanitize.TextPtr(optional(req.Description)),
		Kind:                  req.Kind,
		Status:                string(domain.RequestStatusPending),
		StartDate:             startDate,
		EndDate:               endDate,
		DefaultStartTime:      req.DefaultStartTime,
		DefaultEndTime:        req.DefaultEndTime,
		WorkersNeeded:         req.WorkersNeeded,
		IsPublic:              req.IsPublic,
		MaxAcceptors:          req.MaxAcceptors,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if req.IsPublic {
		groupID := uuid.New()
		request.RequestGroupID = &groupID
	}

	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return transport.RequestResponse{}, err
	}

	s.log.Info("labor request created", "id", request.ID, "household_id", householdID, "public", req.IsPublic)
	s.bus.Publish(ctx, domainevents.LaborRequestCreated{
		BaseEvent:             events.NewBaseEvent(),
		RequestID:             request.ID,
		RequestingHouseholdID: request.RequestingHouseholdID,
		ProvidingHouseholdID:  request.ProvidingHouseholdID,
		Title:                 request.Title,
		IsPublic:              request.IsPublic,
	})

	return toRequestResponse(request), nil
}

// GetRequest retrieves a labor request visible to the acting household.
func (s *Service) GetRequest(ctx context.Context, householdID, requestID uuid.UUID) (transport.RequestResponse, error) {
	request, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return transport.RequestResponse{}, err
	}

	if !s.canView(request, householdID) {
		return transport.RequestResponse{}, apperr.NotFound("labor request not found")
	}

	return toRequestResponse(request), nil
}

// ListRequests lists the acting household's labor requests.
func (s *Service) ListRequests(ctx context.Context, householdID uuid.UUID, req transport.ListRequestsRequest) (transport.RequestListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	params := repository.ListRequestParams{
		HouseholdID: &householdID,
		Role:        req.Role,
		Public:      req.Public,
		Page:        page,
		PageSize:    pageSize,
	}
	if req.Status != "" {
		params.Status = &req.Status
	}

	result, err := s.repo.ListRequests(ctx, params)
	if err != nil {
		return transport.RequestListResponse{}, err
	}

	items := make([]transport.RequestResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, toRequestResponse(&result.Items[i]))
	}

	return transport.RequestListResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// ListPublicRequests lists public requests still open for joining.
func (s *Service) ListPublicRequests(ctx context.Context) ([]transport.RequestResponse, error) {
	requests, err := s.repo.ListPublicOpenRequests(ctx, 100)
	if err != nil {
		return nil, err
	}

	items := make([]transport.RequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, toRequestResponse(&requests[i]))
	}

	return items, nil
}

// AcceptRequest transitions a pending request to accepted. Only an owner of
// the providing household may accept.
func (s *Service) AcceptRequest(ctx context.Context, userID, householdID, requestID uuid.UUID) (transport.RequestResponse, error) {
	request, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return transport.RequestResponse{}, err
	}

	if request.ProvidingHouseholdID == nil {
		return transport.RequestResponse{}, apperr.Precondition("public requests are joined, not accepted directly")
	}
	if *request.ProvidingHouseholdID != householdID {
		return transport.RequestResponse{}, apperr.Forbidden("only the providing household can accept this request")
	}
	if err := s.requireOwner(ctx, userID, householdID); err != nil {
		return transport.RequestResponse{}, err
	}
	if request.Status != string(domain.RequestStatusPending) {
		return transport.RequestResponse{}, apperr.Conflict(fmt.Sprintf("cannot accept a request in status %q", request.Status))
	}

	if err := s.repo.AcceptRequest(ctx, requestID, householdID); err != nil {
		return transport.RequestResponse{}, err
	}
	request.Status = string(domain.RequestStatusAccepted)

	s.syncActivity(ctx, request)
	s.bus.Publish(ctx, domainevents.LaborRequestAccepted{
		BaseEvent:             events.NewBaseEvent(),
		RequestID:             request.ID,
		RequestingHouseholdID: request.RequestingHouseholdID,
		ProvidingHouseholdID:  householdID,
		Title:                 request.Title,
	})

	return toRequestResponse(request), nil
}

// DeclineRequest transitions a pending request to declined.
func (s *Service) DeclineRequest(ctx context.Context, userID, householdID, requestID uuid.UUID, req transport.DeclineRequestRequest) (transport.RequestResponse, error) {
	request, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return transport.RequestResponse{}, err
	}

	if request.ProvidingHouseholdID == nil || *request.ProvidingHouseholdID != householdID {
		return transport.RequestResponse{}, apperr.Forbidden("only the providing household can decline this request")
	}
	if err := s.requireOwner(ctx, userID, householdID); err != nil {
		return transport.RequestResponse{}, err
	}
	if request.Status != string(domain.RequestStatusPending) {
		return transport.RequestResponse{}, apperr.Conflict(fmt.Sprintf("cannot decline a request in status %q", request.Status))
	}

	if err := s.repo.UpdateRequestStatus(ctx, requestID, string(domain.RequestStatusDeclined)); err != nil {
		return transport.RequestResponse{}, err
	}
	request.Status = string(domain.RequestStatusDeclined)

	s.syncActivity(ctx, request)
	s.bus.Publish(ctx, domainevents.LaborRequestDeclined{
		BaseEvent:             events.NewBaseEvent(),
		RequestID:             request.ID,
		RequestingHouseholdID: request.RequestingHouseholdID,
		Title:                 request.Title,
		Reason:                req.Reason,
	})

	return toRequestResponse(request), nil
}

// CancelRequest cancels a request as one atomic unit. Cancelling a public
// fan-out parent cancels its non-terminal children and rejects every open
// assignment under them.
func (s *Service) CancelRequest(ctx context.Context, userID, householdID, requestID uuid.UUID) (transport.RequestResponse, error) {
	request, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return transport.RequestResponse{}, err
	}

	if request.RequestingHouseholdID != householdID {
		return transport.RequestResponse{}, apperr.Forbidden("only the requesting household can cancel this request")
	}
	if err := s.requireOwner(ctx, userID, householdID); err != nil {
		return transport.RequestResponse{}, err
	}
	if domain.RequestStatus(request.Status).IsTerminal() {
		return transport.RequestResponse{}, apperr.Conflict(fmt.Sprintf("cannot cancel a request in status %q", request.Status))
	}

	if err := s.repo.CancelRequestCascade(ctx, request); err != nil {
		return transport.RequestResponse{}, err
	}
	request.Status = string(domain.RequestStatusCancelled)

	s.syncActivity(ctx, request)
	s.log.Info("labor request cancelled", "id", request.ID, "household_id", householdID)
	s.bus.Publish(ctx, domainevents.LaborRequestCancelled{
		BaseEvent:             events.NewBaseEvent(),
		RequestID:             request.ID,
		RequestingHouseholdID: request.RequestingHouseholdID,
		ProvidingHouseholdID:  request.ProvidingHouseholdID,
		Title:                 request.Title,
	})

	return toRequestResponse(request), nil
}

// CompleteRequest transitions an accepted request to completed. Open
// assignments block completion: every booking must first be completed,
// missed, or rejected.
func (s *Service) CompleteRequest(ctx context.Context, userID, householdID, requestID uuid.UUID) (transport.RequestResponse, error) {
	request, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return transport.RequestResponse{}, err
	}

	if request.RequestingHouseholdID != householdID {
		return transport.RequestResponse{}, apperr.Forbidden("only the requesting household can complete this request")
	}
	if err := s.requireOwner(ctx, userID, householdID); err != nil {
		return transport.RequestResponse{}, err
	}
	if request.Status != string(domain.RequestStatusAccepted) {
		return transport.RequestResponse{}, apperr.Conflict(fmt.Sprintf("cannot complete a request in status %q", request.Status))
	}

	open, err := s.repo.CountOpenAssignments(ctx, requestID)
	if err != nil {
		return transport.RequestResponse{}, err
	}
	if open > 0 {
		return transport.RequestResponse{}, apperr.Precondition(fmt.Sprintf("%d assignments are still open; settle them before completing", open))
	}

	if err := s.repo.UpdateRequestStatus(ctx, requestID, string(domain.RequestStatusCompleted)); err != nil {
		return transport.RequestResponse{}, err
	}
	request.Status = string(domain.RequestStatusCompleted)

	s.syncActivity(ctx, request)
	s.bus.Publish(ctx, domainevents.LaborRequestCompleted{
		BaseEvent:             events.NewBaseEvent(),
		RequestID:             request.ID,
		RequestingHouseholdID: request.RequestingHouseholdID,
		ProvidingHouseholdID:  request.ProvidingHouseholdID,
		Title:                 request.Title,
	})

	return toRequestResponse(request), nil
}

// JoinRequest creates a child request under a public fan-out parent, with the
// joining household as provider. A household joins a group at most once, and
// a full group rejects further joins.
func (s *Service) JoinRequest(ctx context.Context, userID, householdID, requestID uuid.UUID) (transport.RequestResponse, error) {
	parent, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return transport.RequestResponse{}, err
	}

	if !parent.IsPublic || parent.ParentRequestID != nil || parent.RequestGroupID == nil {
		return transport.RequestResponse{}, apperr.Precondition("request is not open for joining")
	}
	if parent.Status != string(domain.RequestStatusPending) {
		return transport.RequestResponse{}, apperr.Conflict(fmt.Sprintf("cannot join a request in status %q", parent.Status))
	}
	if parent.RequestingHouseholdID == householdID {
		return transport.RequestResponse{}, apperr.Validation("cannot join your own request")
	}
	if err := s.requireOwner(ctx, userID, householdID); err != nil {
		return transport.RequestResponse{}, err
	}

	joined, err := s.repo.HouseholdHasChildInGroup(ctx, *parent.RequestGroupID, householdID)
	if err != nil {
		return transport.RequestResponse{}, err
	}
	if joined {
		return transport.RequestResponse{}, apperr.Conflict("household already joined this request")
	}

	if parent.MaxAcceptors != nil {
		acceptors, err := s.repo.CountActiveAcceptors(ctx, *parent.RequestGroupID)
		if err != nil {
			return transport.RequestResponse{}, err
		}
		if acceptors >= *parent.MaxAcceptors {
			return transport.RequestResponse{}, apperr.Conflict("request has reached its acceptor capacity")
		}
	}

	now := time.Now()
	child := &repository.LaborRequest{
		ID:                    uuid.New(),
		RequestingHouseholdID: parent.RequestingHouseholdID,
		ProvidingHouseholdID:  &householdID,
		ActivityID:            parent.ActivityID,
		Title:                 parent.Title,
		Description:           parent.Description,
		Kind:                  parent.Kind,
		Status:                string(domain.RequestStatusPending),
		StartDate:             parent.StartDate,
		EndDate:               parent.EndDate,
		DefaultStartTime:      parent.DefaultStartTime,
		DefaultEndTime:        parent.DefaultEndTime,
		WorkersNeeded:         parent.WorkersNeeded,
		IsPublic:              false,
		ParentRequestID:       &parent.ID,
		RequestGroupID:        parent.RequestGroupID,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.repo.CreateRequest(ctx, child); err != nil {
		return transport.RequestResponse{}, err
	}

	s.log.Info("labor request joined", "parent_id", parent.ID, "child_id", child.ID, "household_id", householdID)
	return toRequestResponse(child), nil
}

// GroupStatus aggregates the children of a fan-out parent by status.
func (s *Service) GroupStatus(ctx context.Context, householdID, requestID uuid.UUID) (transport.GroupStatusResponse, error) {
	parent, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return transport.GroupStatusResponse{}, err
	}
	if parent.RequestGroupID == nil {
		return transport.GroupStatusResponse{}, apperr.Precondition("request has no fan-out group")
	}
	if parent.RequestingHouseholdID != householdID && !parent.IsPublic {
		return transport.GroupStatusResponse{}, apperr.Forbidden("not a participant of this request group")
	}

	counts, err := s.repo.GroupStatusCounts(ctx, *parent.RequestGroupID)
	if err != nil {
		return transport.GroupStatusResponse{}, err
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	capacityReached := false
	if parent.MaxAcceptors != nil {
		active := counts[string(domain.RequestStatusAccepted)] + counts[string(domain.RequestStatusCompleted)]
		capacityReached = active >= *parent.MaxAcceptors
	}

	return transport.GroupStatusResponse{
		RequestGroupID:  *parent.RequestGroupID,
		Counts:          counts,
		TotalChildren:   total,
		MaxAcceptors:    parent.MaxAcceptors,
		CapacityReached: capacityReached,
	}, nil
}

// SyncFromActivity applies a farm activity's status change to its linked
// labor request. Activity statuses without a request counterpart are ignored,
// as are writes that would not change the request.
func (s *Service) SyncFromActivity(ctx context.Context, requestID uuid.UUID, status domain.ActivityStatus) error {
	target, ok := domain.RequestStatusForActivity(status)
	if !ok {
		return nil
	}

	request, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.Status == string(target) {
		return nil
	}
	if domain.RequestStatus(request.Status).IsTerminal() {
		return nil
	}

	return s.repo.UpdateRequestStatus(ctx, requestID, string(target))
}

func (s *Service) requireOwner(ctx context.Context, userID, householdID uuid.UUID) error {
	owner, err := s.households.IsOwner(ctx, userID, householdID)
	if err != nil {
		return err
	}
	if !owner {
		return apperr.Forbidden("user is not an owner of this household")
	}
	return nil
}

func (s *Service) canView(request *repository.LaborRequest, householdID uuid.UUID) bool {
	if request.IsPublic {
		return true
	}
	if request.RequestingHouseholdID == householdID {
		return true
	}
	return request.ProvidingHouseholdID != nil && *request.ProvidingHouseholdID == householdID
}

// syncActivity propagates the request's status onto its linked activity.
// Best-effort: a failed sync is logged and never fails the labor operation.
func (s *Service) syncActivity(ctx context.Context, request *repository.LaborRequest) {
	if request.ActivityID == nil || s.activities == nil {
		return
	}

	status := domain.ActivityStatusForRequest(domain.RequestStatus(request.Status))
	if err := s.activities.SyncStatus(ctx, *request.ActivityID, status); err != nil {
		s.log.Error("failed to sync activity status", "activity_id", *request.ActivityID, "request_id", request.ID, "error", err)
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func toRequestResponse(req *repository.LaborRequest) transport.RequestResponse {
	return transport.RequestResponse{
		ID:                    req.ID,
		RequestingHouseholdID: req.RequestingHouseholdID,
		ProvidingHouseholdID:  req.ProvidingHouseholdID,
		ActivityID:            req.ActivityID,
		Title:                 req.Title,
		Description:           req.Description,
		Kind:                  req.Kind,
		Status:                req.Status,
		StartDate:             transport.FormatDate(req.StartDate),
		EndDate:               transport.FormatDate(req.EndDate),
		DefaultStartTime:      req.DefaultStartTime,
		DefaultEndTime:        req.DefaultEndTime,
		WorkersNeeded:         req.WorkersNeeded,
		IsPublic:              req.IsPublic,
		ParentRequestID:       req.ParentRequestID,
		RequestGroupID:        req.RequestGroupID,
		MaxAcceptors:          req.MaxAcceptors,
		CreatedAt:             req.CreatedAt,
		UpdatedAt:             req.UpdatedAt,
	}
}
