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
	"farmlink_backend/platform/sanitize"
)

// CheckConflict probes a worker's calendar for open bookings overlapping the
// given window. Read-only; booking itself re-checks under the storage
// uniqueness guarantee.
func (s *Service) CheckConflict(ctx context.Context, req transport.ConflictCheckRequest) (transport.ConflictCheckResponse, error) {
	workDate, err := transport.ParseDate(req.WorkDate)
	if err != nil {
		return transport.ConflictCheckResponse{}, apperr.Validation("workDate must be a valid date in YYYY-MM-DD format")
	}

	window, err := domain.ResolveWindow(workDate, req.StartTime, req.EndTime, req.StartTime, req.EndTime)
	if err != nil {
		return transport.ConflictCheckResponse{}, apperr.Validation(err.Error())
	}

	conflicts, err := s.findConflicts(ctx, req.WorkerID, workDate, window)
	if err != nil {
		return transport.ConflictCheckResponse{}, err
	}

	resp := transport.ConflictCheckResponse{HasConflict: len(conflicts) > 0}
	for i := range conflicts {
		resp.ConflictingAssignments = append(resp.ConflictingAssignments, toAssignmentResponse(&conflicts[i]))
	}

	return resp, nil
}

// CreateAssignment books one worker on one date under an accepted request.
func (s *Service) CreateAssignment(ctx context.Context, userID, householdID, requestID uuid.UUID, req transport.CreateAssignmentRequest) (transport.AssignmentResponse, error) {
	request, err := s.authorizeScheduling(ctx, userID, householdID, requestID)
	if err != nil {
		return transport.AssignmentResponse{}, err
	}

	workDate, err := transport.ParseDate(req.WorkDate)
	if err != nil {
		return transport.AssignmentResponse{}, apperr.Validation("workDate must be a valid date in YYYY-MM-DD format")
	}
	if !domain.WithinDateRange(workDate, request.StartDate, request.EndDate) {
		return transport.AssignmentResponse{}, apperr.Validation("workDate is outside the request's date range")
	}

	window, err := domain.ResolveWindow(workDate, req.StartTime, req.EndTime, request.DefaultStartTime, request.DefaultEndTime)
	if err != nil {
		return transport.AssignmentResponse{}, apperr.Validation(err.Error())
	}

	if err := s.checkWorkerEligibility(ctx, request, householdID, req.WorkerID); err != nil {
		return transport.AssignmentResponse{}, err
	}

	conflicts, err := s.findConflicts(ctx, req.WorkerID, workDate, window)
	if err != nil {
		return transport.AssignmentResponse{}, err
	}
	if len(conflicts) > 0 {
		return transport.AssignmentResponse{}, apperr.Conflict("worker already has an overlapping assignment on this date")
	}

	assignment := newAssignment(request.ID, req.WorkerID, workDate, window, optional(sanitize.Text(req.Notes)))
	if err := s.repo.CreateAssignment(ctx, assignment); err != nil {
		return transport.AssignmentResponse{}, err
	}

	s.markBusyIfToday(ctx, req.WorkerID, workDate)
	s.bus.Publish(ctx, domainevents.AssignmentCreated{
		BaseEvent:    events.NewBaseEvent(),
		AssignmentID: assignment.ID,
		RequestID:    request.ID,
		WorkerID:     req.WorkerID,
		WorkDate:     transport.FormatDate(workDate),
	})

	return toAssignmentResponse(assignment), nil
}

// BatchAssign books the cross product of workers and dates under one request.
// An invalid date range aborts the whole batch before any write; after that,
// each worker-date unit succeeds or fails on its own. The batch succeeds if
// at least one unit does.
func (s *Service) BatchAssign(ctx context.Context, userID, householdID, requestID uuid.UUID, req transport.BatchAssignRequest) (transport.BatchAssignResponse, error) {
	request, err := s.authorizeScheduling(ctx, userID, householdID, requestID)
	if err != nil {
		return transport.BatchAssignResponse{}, err
	}

	startDate, err := transport.ParseDate(req.StartDate)
	if err != nil {
		return transport.BatchAssignResponse{}, apperr.Validation("startDate must be a valid date in YYYY-MM-DD format")
	}
	endDate, err := transport.ParseDate(req.EndDate)
	if err != nil {
		return transport.BatchAssignResponse{}, apperr.Validation("endDate must be a valid date in YYYY-MM-DD format")
	}
	if endDate.Before(startDate) {
		return transport.BatchAssignResponse{}, apperr.Validation("endDate must not be before startDate")
	}
	if !domain.WithinDateRange(startDate, request.StartDate, request.EndDate) ||
		!domain.WithinDateRange(endDate, request.StartDate, request.EndDate) {
		return transport.BatchAssignResponse{}, apperr.Validation("batch date range is outside the request's date range")
	}

	workers := dedupeWorkers(req.WorkerIDs)
	days := domain.DaysBetween(startDate, endDate)
	resp := transport.BatchAssignResponse{
		Total:  len(workers) * len(days),
		Errors: []transport.BatchItemError{},
	}

	var staged []*repository.LaborAssignment
	for _, workerID := range workers {
		if err := s.checkWorkerEligibility(ctx, request, householdID, workerID); err != nil {
			for _, day := range days {
				resp.Errors = append(resp.Errors, transport.BatchItemError{
					WorkerID: workerID,
					WorkDate: transport.FormatDate(day),
					Message:  err.Error(),
				})
			}
			continue
		}

		for _, day := range days {
			window, err := domain.ResolveWindow(day, req.StartTime, req.EndTime, request.DefaultStartTime, request.DefaultEndTime)
			if err != nil {
				resp.Errors = append(resp.Errors, transport.BatchItemError{
					WorkerID: workerID,
					WorkDate: transport.FormatDate(day),
					Message:  err.Error(),
				})
				continue
			}

			conflicts, err := s.findConflicts(ctx, workerID, day, window)
			if err != nil {
				return transport.BatchAssignResponse{}, err
			}
			if len(conflicts) > 0 {
				resp.Errors = append(resp.Errors, transport.BatchItemError{
					WorkerID: workerID,
					WorkDate: transport.FormatDate(day),
					Message:  "worker already has an overlapping assignment on this date",
				})
				continue
			}

			staged = append(staged, newAssignment(request.ID, workerID, day, window, nil))
		}
	}

	for _, result := range s.repo.CreateAssignmentsBatch(ctx, staged) {
		if result.Err != nil {
			resp.Errors = append(resp.Errors, transport.BatchItemError{
				WorkerID: result.Assignment.WorkerID,
				WorkDate: transport.FormatDate(result.Assignment.WorkDate),
				Message:  result.Err.Error(),
			})
			continue
		}

		resp.Assignments = append(resp.Assignments, toAssignmentResponse(result.Assignment))
		s.markBusyIfToday(ctx, result.Assignment.WorkerID, result.Assignment.WorkDate)
		s.bus.Publish(ctx, domainevents.AssignmentCreated{
			BaseEvent:    events.NewBaseEvent(),
			AssignmentID: result.Assignment.ID,
			RequestID:    request.ID,
			WorkerID:     result.Assignment.WorkerID,
			WorkDate:     transport.FormatDate(result.Assignment.WorkDate),
		})
	}

	resp.Successful = len(resp.Assignments)
	resp.Failed = resp.Total - resp.Successful
	resp.Success = resp.Successful > 0

	s.log.Info("batch assignment finished",
		"request_id", request.ID, "total", resp.Total, "successful", resp.Successful, "failed", resp.Failed)

	return resp, nil
}

// ListAssignments lists all assignments under a request.
func (s *Service) ListAssignments(ctx context.Context, householdID, requestID uuid.UUID) ([]transport.AssignmentResponse, error) {
	request, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !s.isParticipant(request, householdID) {
		return nil, apperr.Forbidden("not a participant of this request")
	}

	assignments, err := s.repo.ListAssignmentsForRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	items := make([]transport.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		items = append(items, toAssignmentResponse(&assignments[i]))
	}

	return items, nil
}

// WorkerReport lets the assigned worker report their work as done, moving the
// assignment to worker_reported pending the farmer's confirmation.
func (s *Service) WorkerReport(ctx context.Context, userID, assignmentID uuid.UUID, req transport.WorkerReportRequest) (transport.AssignmentResponse, error) {
	assignment, err := s.repo.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return transport.AssignmentResponse{}, err
	}

	if err := s.requireAssignedWorker(ctx, userID, assignment); err != nil {
		return transport.AssignmentResponse{}, err
	}
	if assignment.Status != string(domain.AssignmentStatusAssigned) {
		return transport.AssignmentResponse{}, apperr.Conflict(fmt.Sprintf("cannot report work on an assignment in status %q", assignment.Status))
	}

	notes := optional(sanitize.Text(req.Notes))
	if err := s.repo.UpdateAssignmentStatus(ctx, assignmentID, string(domain.AssignmentStatusWorkerReported), notes); err != nil {
		return transport.AssignmentResponse{}, err
	}
	assignment.Status = string(domain.AssignmentStatusWorkerReported)
	if notes != nil {
		assignment.Notes = notes
	}

	return toAssignmentResponse(assignment), nil
}

// CompleteAssignment confirms a worker's assignment as done and, for
// exchange-kind requests, posts the earned work units to the pairwise ledger
// exactly once. Hours default to the scheduled window; work units default to
// the half-or-full day derivation, either overridable.
func (s *Service) CompleteAssignment(ctx context.Context, userID, householdID, assignmentID uuid.UUID, req transport.CompleteAssignmentRequest) (transport.AssignmentResponse, error) {
	assignment, err := s.repo.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return transport.AssignmentResponse{}, err
	}
	request, err := s.repo.GetRequestByID(ctx, assignment.RequestID)
	if err != nil {
		return transport.AssignmentResponse{}, err
	}

	if request.RequestingHouseholdID != householdID {
		return transport.AssignmentResponse{}, apperr.Forbidden("only the requesting household can complete an assignment")
	}
	if err := s.requireOwner(ctx, userID, householdID); err != nil {
		return transport.AssignmentResponse{}, err
	}
	if !domain.AssignmentStatus(assignment.Status).Open() {
		// A completed assignment whose ledger posting failed keeps
		// exchange_processed unset; completing it again re-attempts only the
		// posting instead of dead-ending on the terminal status.
		if needsLedgerRetry(request, assignment) {
			return s.retryLedgerPosting(ctx, request, assignment)
		}
		return transport.AssignmentResponse{}, apperr.Conflict(fmt.Sprintf("cannot complete an assignment in status %q", assignment.Status))
	}

	window := domain.TimeWindow{Start: assignment.StartTime, End: assignment.EndTime}
	hoursWorked := window.Hours()
	if req.HoursWorked != nil {
		hoursWorked = *req.HoursWorked
	}
	workUnits := domain.DeriveWorkUnits(hoursWorked)
	if req.WorkUnits != nil {
		workUnits = *req.WorkUnits
	}

	notes := optional(sanitize.Text(req.Notes))
	if err := s.repo.CompleteAssignment(ctx, assignmentID, hoursWorked, workUnits, notes); err != nil {
		return transport.AssignmentResponse{}, err
	}
	assignment.Status = string(domain.AssignmentStatusCompleted)
	assignment.HoursWorked = &hoursWorked
	assignment.WorkUnits = &workUnits

	if err := s.postToLedger(ctx, request, assignment, workUnits); err != nil {
		return transport.AssignmentResponse{}, err
	}

	s.bus.Publish(ctx, domainevents.AssignmentCompleted{
		BaseEvent:    events.NewBaseEvent(),
		AssignmentID: assignment.ID,
		RequestID:    request.ID,
		WorkerID:     assignment.WorkerID,
		WorkDate:     transport.FormatDate(assignment.WorkDate),
		HoursWorked:  hoursWorked,
		WorkUnits:    workUnits,
	})

	return toAssignmentResponse(assignment), nil
}

// MarkMissed records a worker no-show. No ledger posting happens; missed work
// earns nothing.
func (s *Service) MarkMissed(ctx context.Context, userID, householdID, assignmentID uuid.UUID, req transport.MissedAssignmentRequest) (transport.AssignmentResponse, error) {
	assignment, err := s.repo.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return transport.AssignmentResponse{}, err
	}
	request, err := s.repo.GetRequestByID(ctx, assignment.RequestID)
	if err != nil {
		return transport.AssignmentResponse{}, err
	}

	if request.RequestingHouseholdID != householdID {
		return transport.AssignmentResponse{}, apperr.Forbidden("only the requesting household can mark an assignment missed")
	}
	if err := s.requireOwner(ctx, userID, householdID); err != nil {
		return transport.AssignmentResponse{}, err
	}
	if !domain.AssignmentStatus(assignment.Status).Open() {
		return transport.AssignmentResponse{}, apperr.Conflict(fmt.Sprintf("cannot mark missed an assignment in status %q", assignment.Status))
	}

	notes := optional(sanitize.Text(req.Reason))
	if err := s.repo.UpdateAssignmentStatus(ctx, assignmentID, string(domain.AssignmentStatusMissed), notes); err != nil {
		return transport.AssignmentResponse{}, err
	}
	assignment.Status = string(domain.AssignmentStatusMissed)

	s.bus.Publish(ctx, domainevents.AssignmentMissed{
		BaseEvent:    events.NewBaseEvent(),
		AssignmentID: assignment.ID,
		RequestID:    request.ID,
		WorkerID:     assignment.WorkerID,
		WorkDate:     transport.FormatDate(assignment.WorkDate),
	})

	return toAssignmentResponse(assignment), nil
}

// RejectAssignment lets the assigned worker turn a booking down before it is
// settled.
func (s *Service) RejectAssignment(ctx context.Context, userID, assignmentID uuid.UUID, req transport.RejectAssignmentRequest) (transport.AssignmentResponse, error) {
	assignment, err := s.repo.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return transport.AssignmentResponse{}, err
	}

	if err := s.requireAssignedWorker(ctx, userID, assignment); err != nil {
		return transport.AssignmentResponse{}, err
	}
	if !domain.AssignmentStatus(assignment.Status).Open() {
		return transport.AssignmentResponse{}, apperr.Conflict(fmt.Sprintf("cannot reject an assignment in status %q", assignment.Status))
	}

	notes := optional(sanitize.Text(req.Reason))
	if err := s.repo.UpdateAssignmentStatus(ctx, assignmentID, string(domain.AssignmentStatusRejected), notes); err != nil {
		return transport.AssignmentResponse{}, err
	}
	assignment.Status = string(domain.AssignmentStatusRejected)

	s.bus.Publish(ctx, domainevents.AssignmentRejected{
		BaseEvent:    events.NewBaseEvent(),
		AssignmentID: assignment.ID,
		RequestID:    assignment.RequestID,
		WorkerID:     assignment.WorkerID,
		WorkDate:     transport.FormatDate(assignment.WorkDate),
	})

	return toAssignmentResponse(assignment), nil
}

// RateWorker records the requesting household's rating of the worker on a
// completed assignment.
func (s *Service) RateWorker(ctx context.Context, userID, householdID, assignmentID uuid.UUID, req transport.RateRequest) error {
	assignment, err := s.repo.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return err
	}
	request, err := s.repo.GetRequestByID(ctx, assignment.RequestID)
	if err != nil {
		return err
	}

	if request.RequestingHouseholdID != householdID {
		return apperr.Forbidden("only the requesting household can rate the worker")
	}
	if err := s.requireOwner(ctx, userID, householdID); err != nil {
		return err
	}
	if assignment.Status != string(domain.AssignmentStatusCompleted) {
		return apperr.Precondition("only completed assignments can be rated")
	}

	return s.repo.RateWorker(ctx, assignmentID, req.Rating, optional(sanitize.Text(req.Comment)))
}

// RateFarmer records the worker's rating of the requesting household on a
// completed assignment.
func (s *Service) RateFarmer(ctx context.Context, userID, assignmentID uuid.UUID, req transport.RateRequest) error {
	assignment, err := s.repo.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return err
	}

	if err := s.requireAssignedWorker(ctx, userID, assignment); err != nil {
		return err
	}
	if assignment.Status != string(domain.AssignmentStatusCompleted) {
		return apperr.Precondition("only completed assignments can be rated")
	}

	return s.repo.RateFarmer(ctx, assignmentID, req.Rating, optional(sanitize.Text(req.Comment)))
}

// AvailabilityForecast summarizes a worker's open bookings per day over a
// date range. A day crossing the booked-hours threshold counts as fully
// booked.
func (s *Service) AvailabilityForecast(ctx context.Context, req transport.AvailabilityForecastRequest) (transport.AvailabilityForecastResponse, error) {
	startDate, err := transport.ParseDate(req.StartDate)
	if err != nil {
		return transport.AvailabilityForecastResponse{}, apperr.Validation("startDate must be a valid date in YYYY-MM-DD format")
	}
	endDate, err := transport.ParseDate(req.EndDate)
	if err != nil {
		return transport.AvailabilityForecastResponse{}, apperr.Validation("endDate must be a valid date in YYYY-MM-DD format")
	}
	if endDate.Before(startDate) {
		return transport.AvailabilityForecastResponse{}, apperr.Validation("endDate must not be before startDate")
	}

	assignments, err := s.repo.ListOpenAssignmentsForWorkerInRange(ctx, req.WorkerID, startDate, endDate)
	if err != nil {
		return transport.AvailabilityForecastResponse{}, err
	}

	type dayTotals struct {
		count int
		hours float64
	}
	perDay := make(map[string]dayTotals)
	for i := range assignments {
		a := &assignments[i]
		key := transport.FormatDate(a.WorkDate)
		window := domain.TimeWindow{Start: a.StartTime, End: a.EndTime}
		totals := perDay[key]
		totals.count++
		totals.hours += window.Hours()
		perDay[key] = totals
	}

	resp := transport.AvailabilityForecastResponse{WorkerID: req.WorkerID}
	for _, day := range domain.DaysBetween(startDate, endDate) {
		key := transport.FormatDate(day)
		totals := perDay[key]
		resp.Days = append(resp.Days, transport.AvailabilityForecastDay{
			Date:            key,
			AssignmentCount: totals.count,
			BookedHours:     totals.hours,
			FullyBooked:     totals.hours >= domain.FullyBookedHours,
		})
	}

	return resp, nil
}

// authorizeScheduling loads the request and checks the acting household may
// book workers under it: it must be the requesting or providing side, the
// user must own it, and the request must be accepted.
func (s *Service) authorizeScheduling(ctx context.Context, userID, householdID, requestID uuid.UUID) (*repository.LaborRequest, error) {
	request, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if !s.isParticipant(request, householdID) {
		return nil, apperr.Forbidden("only the requesting or providing household can schedule workers")
	}
	if err := s.requireOwner(ctx, userID, householdID); err != nil {
		return nil, err
	}
	if request.Status != string(domain.RequestStatusAccepted) {
		return nil, apperr.Conflict(fmt.Sprintf("cannot schedule workers on a request in status %q", request.Status))
	}

	return request, nil
}

func (s *Service) isParticipant(request *repository.LaborRequest, householdID uuid.UUID) bool {
	if request.RequestingHouseholdID == householdID {
		return true
	}
	return request.ProvidingHouseholdID != nil && *request.ProvidingHouseholdID == householdID
}

// checkWorkerEligibility verifies the worker exists and belongs to the
// providing household. A providing household may only offer its own workers.
func (s *Service) checkWorkerEligibility(ctx context.Context, request *repository.LaborRequest, actingHouseholdID, workerID uuid.UUID) error {
	membership, err := s.households.WorkerMembership(ctx, workerID)
	if err != nil {
		return err
	}

	if request.ProvidingHouseholdID != nil && membership.HouseholdID != *request.ProvidingHouseholdID {
		return apperr.Validation("worker does not belong to the providing household")
	}
	if actingHouseholdID != request.RequestingHouseholdID && membership.HouseholdID != actingHouseholdID {
		return apperr.Forbidden("cannot schedule workers from another household")
	}

	return nil
}

func (s *Service) findConflicts(ctx context.Context, workerID uuid.UUID, workDate time.Time, window domain.TimeWindow) ([]repository.LaborAssignment, error) {
	existing, err := s.repo.ListOpenAssignmentsForWorkerOnDate(ctx, workerID, workDate)
	if err != nil {
		return nil, err
	}

	var conflicts []repository.LaborAssignment
	for _, a := range existing {
		other := domain.TimeWindow{Start: a.StartTime, End: a.EndTime}
		if window.Overlaps(other) {
			conflicts = append(conflicts, a)
		}
	}

	return conflicts, nil
}

func (s *Service) requireAssignedWorker(ctx context.Context, userID uuid.UUID, assignment *repository.LaborAssignment) error {
	worker, err := s.households.WorkerForUser(ctx, userID)
	if err != nil {
		return err
	}
	if worker.WorkerID != assignment.WorkerID {
		return apperr.Forbidden("assignment belongs to another worker")
	}
	return nil
}

// postToLedger posts a completed exchange assignment's work units to the
// pairwise ledger. The exchange_processed flag makes the posting exactly
// once: only the caller that wins the flag flip posts, and a failed posting
// releases it so a retry can post again. Paid-kind requests never post.
func (s *Service) postToLedger(ctx context.Context, request *repository.LaborRequest, assignment *repository.LaborAssignment, workUnits float64) error {
	if !domain.RequestKind(request.Kind).PostsToLedger() {
		return nil
	}

	membership, err := s.households.WorkerMembership(ctx, assignment.WorkerID)
	if err != nil {
		return fmt.Errorf("failed to resolve worker household for ledger posting: %w", err)
	}

	claimed, err := s.repo.ClaimExchangeProcessing(ctx, assignment.ID)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}
	assignment.ExchangeProcessed = true

	input := ports.PostCompletionInput{
		AssignmentID:          assignment.ID,
		WorkerHouseholdID:     membership.HouseholdID,
		RequestingHouseholdID: request.RequestingHouseholdID,
		WorkUnits:             workUnits,
		Description:           fmt.Sprintf("%s on %s", request.Title, transport.FormatDate(assignment.WorkDate)),
	}
	if err := s.ledger.PostCompletion(ctx, input); err != nil {
		s.log.LedgerInvariant("post completion", err, assignment.ID.String())
		if releaseErr := s.repo.ReleaseExchangeProcessing(ctx, assignment.ID); releaseErr != nil {
			s.log.Error("failed to release exchange processing flag", "assignment_id", assignment.ID, "error", releaseErr)
		} else {
			assignment.ExchangeProcessed = false
		}
		return fmt.Errorf("failed to post completion to ledger: %w", err)
	}

	return nil
}

// needsLedgerRetry reports whether a terminal assignment still owes the
// ledger its work units.
func needsLedgerRetry(request *repository.LaborRequest, assignment *repository.LaborAssignment) bool {
	return domain.AssignmentStatus(assignment.Status) == domain.AssignmentStatusCompleted &&
		!assignment.ExchangeProcessed &&
		domain.RequestKind(request.Kind).PostsToLedger()
}

// retryLedgerPosting re-attempts the ledger posting for an already completed
// assignment. The stored completion is left untouched; only the posting and
// the completion event are replayed.
func (s *Service) retryLedgerPosting(ctx context.Context, request *repository.LaborRequest, assignment *repository.LaborAssignment) (transport.AssignmentResponse, error) {
	window := domain.TimeWindow{Start: assignment.StartTime, End: assignment.EndTime}
	hoursWorked := window.Hours()
	if assignment.HoursWorked != nil {
		hoursWorked = *assignment.HoursWorked
	}
	workUnits := domain.DeriveWorkUnits(hoursWorked)
	if assignment.WorkUnits != nil {
		workUnits = *assignment.WorkUnits
	}

	if err := s.postToLedger(ctx, request, assignment, workUnits); err != nil {
		return transport.AssignmentResponse{}, err
	}

	s.bus.Publish(ctx, domainevents.AssignmentCompleted{
		BaseEvent:    events.NewBaseEvent(),
		AssignmentID: assignment.ID,
		RequestID:    request.ID,
		WorkerID:     assignment.WorkerID,
		WorkDate:     transport.FormatDate(assignment.WorkDate),
		HoursWorked:  hoursWorked,
		WorkUnits:    workUnits,
	})

	return toAssignmentResponse(assignment), nil
}

// markBusyIfToday flips the worker's availability hint when they were just
// booked for today. Best-effort; a failure is logged only.
func (s *Service) markBusyIfToday(ctx context.Context, workerID uuid.UUID, workDate time.Time) {
	if !domain.SameDay(workDate, time.Now()) {
		return
	}
	if err := s.households.SetWorkerAvailability(ctx, workerID, domain.WorkerBusy); err != nil {
		s.log.Error("failed to update worker availability", "worker_id", workerID, "error", err)
	}
}

func newAssignment(requestID, workerID uuid.UUID, workDate time.Time, window domain.TimeWindow, notes *string) *repository.LaborAssignment {
	now := time.Now()
	return &repository.LaborAssignment{
		ID:        uuid.New(),
		RequestID: requestID,
		WorkerID:  workerID,
		WorkDate:  workDate,
		StartTime: window.Start,
		EndTime:   window.End,
		Status:    string(domain.AssignmentStatusAssigned),
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func dedupeWorkers(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toAssignmentResponse(a *repository.LaborAssignment) transport.AssignmentResponse {
	return transport.AssignmentResponse{
		ID:                a.ID,
		RequestID:         a.RequestID,
		WorkerID:          a.WorkerID,
		WorkDate:          transport.FormatDate(a.WorkDate),
		StartTime:         a.StartTime,
		EndTime:           a.EndTime,
		Status:            a.Status,
		HoursWorked:       a.HoursWorked,
		WorkUnits:         a.WorkUnits,
		Notes:             a.Notes,
		WorkerRating:      a.WorkerRating,
		FarmerRating:      a.FarmerRating,
		ExchangeProcessed: a.ExchangeProcessed,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}
