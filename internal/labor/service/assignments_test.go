package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"farmlink_backend/internal/labor/domain"
	"farmlink_backend/internal/labor/ports"
	"farmlink_backend/internal/labor/repository"
	"farmlink_backend/internal/labor/transport"
	"farmlink_backend/platform/apperr"
	"farmlink_backend/platform/events"
	"farmlink_backend/platform/logger"
)

// fakeStore is an in-memory Store for service tests. Only the behavior the
// scheduling and completion paths touch is modeled; everything else returns
// not-found.
type fakeStore struct {
	requests    map[uuid.UUID]*repository.LaborRequest
	assignments map[uuid.UUID]*repository.LaborAssignment

	createErrFor   map[uuid.UUID]error // worker IDs whose inserts fail
	cascadeCalls   int
	completedCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests:     make(map[uuid.UUID]*repository.LaborRequest),
		assignments:  make(map[uuid.UUID]*repository.LaborAssignment),
		createErrFor: make(map[uuid.UUID]error),
	}
}

func (f *fakeStore) CreateRequest(_ context.Context, req *repository.LaborRequest) error {
	f.requests[req.ID] = req
	return nil
}

func (f *fakeStore) GetRequestByID(_ context.Context, id uuid.UUID) (*repository.LaborRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, apperr.NotFound("labor request not found")
	}
	return req, nil
}

func (f *fakeStore) UpdateRequestStatus(_ context.Context, id uuid.UUID, status string) error {
	req, ok := f.requests[id]
	if !ok {
		return apperr.NotFound("labor request not found")
	}
	req.Status = status
	return nil
}

func (f *fakeStore) AcceptRequest(_ context.Context, id, providingHouseholdID uuid.UUID) error {
	req, ok := f.requests[id]
	if !ok {
		return apperr.NotFound("labor request not found")
	}
	req.Status = string(domain.RequestStatusAccepted)
	req.ProvidingHouseholdID = &providingHouseholdID
	return nil
}

func (f *fakeStore) ListRequests(context.Context, repository.ListRequestParams) (*repository.ListRequestResult, error) {
	return &repository.ListRequestResult{}, nil
}

func (f *fakeStore) ListPublicOpenRequests(context.Context, int) ([]repository.LaborRequest, error) {
	return nil, nil
}

func (f *fakeStore) GroupStatusCounts(context.Context, uuid.UUID) (map[string]int, error) {
	return map[string]int{}, nil
}

func (f *fakeStore) HouseholdHasChildInGroup(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakeStore) CountActiveAcceptors(context.Context, uuid.UUID) (int, error) {
	return 0, nil
}

func (f *fakeStore) CountOpenAssignments(_ context.Context, requestID uuid.UUID) (int, error) {
	n := 0
	for _, a := range f.assignments {
		if a.RequestID == requestID && domain.AssignmentStatus(a.Status).Open() {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CancelRequestCascade(_ context.Context, req *repository.LaborRequest) error {
	f.cascadeCalls++
	stored, ok := f.requests[req.ID]
	if !ok {
		return apperr.NotFound("labor request not found")
	}
	stored.Status = string(domain.RequestStatusCancelled)
	for _, a := range f.assignments {
		if a.RequestID == req.ID && domain.AssignmentStatus(a.Status).Open() {
			a.Status = string(domain.AssignmentStatusRejected)
		}
	}
	return nil
}

func (f *fakeStore) CreateAssignment(_ context.Context, a *repository.LaborAssignment) error {
	if err := f.createErrFor[a.WorkerID]; err != nil {
		return err
	}
	f.assignments[a.ID] = a
	return nil
}

func (f *fakeStore) CreateAssignmentsBatch(ctx context.Context, assignments []*repository.LaborAssignment) []repository.BatchItemResult {
	results := make([]repository.BatchItemResult, 0, len(assignments))
	for _, a := range assignments {
		results = append(results, repository.BatchItemResult{Assignment: a, Err: f.CreateAssignment(ctx, a)})
	}
	return results
}

func (f *fakeStore) GetAssignmentByID(_ context.Context, id uuid.UUID) (*repository.LaborAssignment, error) {
	a, ok := f.assignments[id]
	if !ok {
		return nil, apperr.NotFound("labor assignment not found")
	}
	return a, nil
}

func (f *fakeStore) ListAssignmentsForRequest(_ context.Context, requestID uuid.UUID) ([]repository.LaborAssignment, error) {
	var out []repository.LaborAssignment
	for _, a := range f.assignments {
		if a.RequestID == requestID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) ListOpenAssignmentsForWorkerOnDate(_ context.Context, workerID uuid.UUID, workDate time.Time) ([]repository.LaborAssignment, error) {
	var out []repository.LaborAssignment
	for _, a := range f.assignments {
		if a.WorkerID == workerID && domain.SameDay(a.WorkDate, workDate) && domain.AssignmentStatus(a.Status).Open() {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) ListOpenAssignmentsForWorkerInRange(_ context.Context, workerID uuid.UUID, from, to time.Time) ([]repository.LaborAssignment, error) {
	var out []repository.LaborAssignment
	for _, a := range f.assignments {
		if a.WorkerID == workerID && domain.WithinDateRange(a.WorkDate, from, to) && domain.AssignmentStatus(a.Status).Open() {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateAssignmentStatus(_ context.Context, id uuid.UUID, status string, notes *string) error {
	a, ok := f.assignments[id]
	if !ok {
		return apperr.NotFound("labor assignment not found")
	}
	a.Status = status
	if notes != nil {
		a.Notes = notes
	}
	return nil
}

func (f *fakeStore) CompleteAssignment(_ context.Context, id uuid.UUID, hoursWorked, workUnits float64, notes *string) error {
	a, ok := f.assignments[id]
	if !ok {
		return apperr.NotFound("labor assignment not found")
	}
	f.completedCalls++
	a.Status = string(domain.AssignmentStatusCompleted)
	a.HoursWorked = &hoursWorked
	a.WorkUnits = &workUnits
	if notes != nil {
		a.Notes = notes
	}
	return nil
}

func (f *fakeStore) ClaimExchangeProcessing(_ context.Context, id uuid.UUID) (bool, error) {
	a, ok := f.assignments[id]
	if !ok {
		return false, apperr.NotFound("labor assignment not found")
	}
	if a.ExchangeProcessed {
		return false, nil
	}
	a.ExchangeProcessed = true
	return true, nil
}

func (f *fakeStore) ReleaseExchangeProcessing(_ context.Context, id uuid.UUID) error {
	a, ok := f.assignments[id]
	if !ok {
		return apperr.NotFound("labor assignment not found")
	}
	a.ExchangeProcessed = false
	return nil
}

func (f *fakeStore) RateWorker(_ context.Context, id uuid.UUID, rating int, note *string) error {
	a, ok := f.assignments[id]
	if !ok {
		return apperr.NotFound("labor assignment not found")
	}
	a.WorkerRating = &rating
	a.WorkerRatingNote = note
	return nil
}

func (f *fakeStore) RateFarmer(_ context.Context, id uuid.UUID, rating int, note *string) error {
	a, ok := f.assignments[id]
	if !ok {
		return apperr.NotFound("labor assignment not found")
	}
	a.FarmerRating = &rating
	a.FarmerRatingNote = note
	return nil
}

var _ Store = (*fakeStore)(nil)

// fakeDirectory resolves every user as an owner and maps workers onto their
// households.
type fakeDirectory struct {
	workerHouseholds map[uuid.UUID]uuid.UUID
}

func (f *fakeDirectory) IsOwner(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return true, nil
}

func (f *fakeDirectory) WorkerMembership(_ context.Context, workerID uuid.UUID) (ports.WorkerMembership, error) {
	householdID, ok := f.workerHouseholds[workerID]
	if !ok {
		return ports.WorkerMembership{}, apperr.NotFound("worker not found")
	}
	return ports.WorkerMembership{WorkerID: workerID, HouseholdID: householdID}, nil
}

func (f *fakeDirectory) WorkerForUser(_ context.Context, userID uuid.UUID) (ports.WorkerMembership, error) {
	return ports.WorkerMembership{}, apperr.NotFound("no worker profile")
}

func (f *fakeDirectory) SetWorkerAvailability(context.Context, uuid.UUID, domain.WorkerAvailability) error {
	return nil
}

type fakeLedger struct {
	calls []ports.PostCompletionInput
	err   error
}

func (f *fakeLedger) PostCompletion(_ context.Context, input ports.PostCompletionInput) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, input)
	return nil
}

type fakeActivities struct{}

func (fakeActivities) SyncStatus(context.Context, uuid.UUID, domain.ActivityStatus) error {
	return nil
}

func testLogger() *logger.Logger {
	return &logger.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// fixture wires a Service onto fakes around one accepted exchange-kind
// request running May 4-10 with a 08:00-16:00 default window.
type fixture struct {
	svc       *Service
	store     *fakeStore
	ledger    *fakeLedger
	dir       *fakeDirectory
	request   *repository.LaborRequest
	userID    uuid.UUID
	requester uuid.UUID
	provider  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newFakeStore()
	ledger := &fakeLedger{}
	dir := &fakeDirectory{workerHouseholds: make(map[uuid.UUID]uuid.UUID)}
	log := testLogger()

	requester := uuid.New()
	provider := uuid.New()
	request := &repository.LaborRequest{
		ID:                    uuid.New(),
		RequestingHouseholdID: requester,
		ProvidingHouseholdID:  &provider,
		Title:                 "hay baling",
		Kind:                  string(domain.RequestKindExchange),
		Status:                string(domain.RequestStatusAccepted),
		StartDate:             time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC),
		EndDate:               time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
		DefaultStartTime:      "08:00",
		DefaultEndTime:        "16:00",
		WorkersNeeded:         3,
	}
	store.requests[request.ID] = request

	svc := New(store, dir, ledger, fakeActivities{}, events.NewInMemoryBus(log), log)
	return &fixture{
		svc:       svc,
		store:     store,
		ledger:    ledger,
		dir:       dir,
		request:   request,
		userID:    uuid.New(),
		requester: requester,
		provider:  provider,
	}
}

func (fx *fixture) newWorker(householdID uuid.UUID) uuid.UUID {
	workerID := uuid.New()
	fx.dir.workerHouseholds[workerID] = householdID
	return workerID
}

func (fx *fixture) seedAssignment(workerID uuid.UUID, workDate time.Time, startTOD, endTOD, status string) *repository.LaborAssignment {
	start, _ := domain.CombineDateTime(workDate, startTOD)
	end, _ := domain.CombineDateTime(workDate, endTOD)
	a := &repository.LaborAssignment{
		ID:        uuid.New(),
		RequestID: fx.request.ID,
		WorkerID:  workerID,
		WorkDate:  workDate,
		StartTime: start,
		EndTime:   end,
		Status:    status,
	}
	fx.store.assignments[a.ID] = a
	return a
}

func TestCreateAssignmentSameDayWindows(t *testing.T) {
	workDate := time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		start    string
		end      string
		wantKind apperr.Kind
	}{
		{"afternoon after a morning booking", "12:00", "15:00", apperr.KindUnknown},
		{"back-to-back with the morning booking", "12:00", "14:00", apperr.KindUnknown},
		{"overlapping the morning booking", "10:00", "13:00", apperr.KindConflict},
		{"contained in the morning booking", "09:00", "11:00", apperr.KindConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			worker := fx.newWorker(fx.provider)
			fx.seedAssignment(worker, workDate, "08:00", "12:00", string(domain.AssignmentStatusAssigned))

			_, err := fx.svc.CreateAssignment(context.Background(), fx.userID, fx.requester, fx.request.ID, transport.CreateAssignmentRequest{
				WorkerID:  worker,
				WorkDate:  "2026-05-05",
				StartTime: tt.start,
				EndTime:   tt.end,
			})

			if tt.wantKind == apperr.KindUnknown {
				if err != nil {
					t.Fatalf("expected second booking to succeed, got %v", err)
				}
				open, _ := fx.store.ListOpenAssignmentsForWorkerOnDate(context.Background(), worker, workDate)
				if len(open) != 2 {
					t.Errorf("open assignments on the day = %d, want 2", len(open))
				}
				return
			}
			if err == nil {
				t.Fatalf("expected %v error, got nil", tt.wantKind)
			}
			if got := apperr.GetKind(err); got != tt.wantKind {
				t.Errorf("kind = %v, want %v", got, tt.wantKind)
			}
		})
	}
}

func TestCreateAssignmentIgnoresSettledBookings(t *testing.T) {
	fx := newFixture(t)
	worker := fx.newWorker(fx.provider)
	workDate := time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC)
	fx.seedAssignment(worker, workDate, "08:00", "16:00", string(domain.AssignmentStatusRejected))

	_, err := fx.svc.CreateAssignment(context.Background(), fx.userID, fx.requester, fx.request.ID, transport.CreateAssignmentRequest{
		WorkerID: worker,
		WorkDate: "2026-05-06",
	})
	if err != nil {
		t.Fatalf("rejected booking should not block a new one: %v", err)
	}
}

func TestBatchAssignAggregatesPerUnitOutcomes(t *testing.T) {
	fx := newFixture(t)
	eligible := fx.newWorker(fx.provider)
	booked := fx.newWorker(fx.provider)
	outsider := fx.newWorker(uuid.New()) // belongs to an unrelated household

	// booked already works the morning of day one; the default window
	// overlaps it.
	day1 := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	fx.seedAssignment(booked, day1, "08:00", "12:00", string(domain.AssignmentStatusAssigned))

	resp, err := fx.svc.BatchAssign(context.Background(), fx.userID, fx.requester, fx.request.ID, transport.BatchAssignRequest{
		WorkerIDs: []uuid.UUID{eligible, booked, outsider},
		StartDate: "2026-05-04",
		EndDate:   "2026-05-05",
	})
	if err != nil {
		t.Fatalf("BatchAssign() error = %v", err)
	}

	if resp.Total != 6 {
		t.Errorf("Total = %d, want 6", resp.Total)
	}
	// outsider fails both days, booked fails day one.
	if resp.Failed != 3 {
		t.Errorf("Failed = %d, want 3 (errors: %+v)", resp.Failed, resp.Errors)
	}
	if resp.Successful != 3 {
		t.Errorf("Successful = %d, want 3", resp.Successful)
	}
	if !resp.Success {
		t.Error("a partially successful batch must report Success = true")
	}
	if len(resp.Errors) != resp.Failed {
		t.Errorf("len(Errors) = %d, want %d", len(resp.Errors), resp.Failed)
	}
	if len(resp.Assignments) != resp.Successful {
		t.Errorf("len(Assignments) = %d, want %d", len(resp.Assignments), resp.Successful)
	}
}

func TestBatchAssignReportsInsertFailures(t *testing.T) {
	fx := newFixture(t)
	good := fx.newWorker(fx.provider)
	bad := fx.newWorker(fx.provider)
	fx.store.createErrFor[bad] = apperr.Conflict("worker already has an overlapping assignment on this date")

	resp, err := fx.svc.BatchAssign(context.Background(), fx.userID, fx.requester, fx.request.ID, transport.BatchAssignRequest{
		WorkerIDs: []uuid.UUID{good, bad},
		StartDate: "2026-05-04",
		EndDate:   "2026-05-04",
	})
	if err != nil {
		t.Fatalf("BatchAssign() error = %v", err)
	}

	if resp.Total != 2 || resp.Successful != 1 || resp.Failed != 1 {
		t.Errorf("got total=%d successful=%d failed=%d, want 2/1/1", resp.Total, resp.Successful, resp.Failed)
	}
	if !resp.Success {
		t.Error("one surviving unit must keep Success = true")
	}
}

func TestCompleteAssignmentPostsToLedgerOnce(t *testing.T) {
	fx := newFixture(t)
	worker := fx.newWorker(fx.provider)
	workDate := time.Date(2026, 5, 7, 0, 0, 0, 0, time.UTC)
	assignment := fx.seedAssignment(worker, workDate, "08:00", "16:00", string(domain.AssignmentStatusAssigned))

	resp, err := fx.svc.CompleteAssignment(context.Background(), fx.userID, fx.requester, assignment.ID, transport.CompleteAssignmentRequest{})
	if err != nil {
		t.Fatalf("CompleteAssignment() error = %v", err)
	}
	if resp.Status != string(domain.AssignmentStatusCompleted) {
		t.Errorf("status = %q, want completed", resp.Status)
	}
	if !resp.ExchangeProcessed {
		t.Error("completed exchange assignment must be marked processed")
	}
	if len(fx.ledger.calls) != 1 {
		t.Fatalf("ledger postings = %d, want 1", len(fx.ledger.calls))
	}
	posting := fx.ledger.calls[0]
	if posting.WorkerHouseholdID != fx.provider || posting.RequestingHouseholdID != fx.requester {
		t.Errorf("posting households = %v -> %v, want %v -> %v",
			posting.WorkerHouseholdID, posting.RequestingHouseholdID, fx.provider, fx.requester)
	}
	if posting.WorkUnits != 1.0 {
		t.Errorf("work units = %v, want 1.0 for an eight-hour day", posting.WorkUnits)
	}

	// A second completion attempt must neither double-post nor succeed.
	_, err = fx.svc.CompleteAssignment(context.Background(), fx.userID, fx.requester, assignment.ID, transport.CompleteAssignmentRequest{})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("second completion: got %v, want conflict", err)
	}
	if len(fx.ledger.calls) != 1 {
		t.Errorf("ledger postings after retry = %d, want still 1", len(fx.ledger.calls))
	}
}

func TestCompleteAssignmentRetriesFailedLedgerPosting(t *testing.T) {
	fx := newFixture(t)
	worker := fx.newWorker(fx.provider)
	workDate := time.Date(2026, 5, 8, 0, 0, 0, 0, time.UTC)
	assignment := fx.seedAssignment(worker, workDate, "08:00", "16:00", string(domain.AssignmentStatusAssigned))

	fx.ledger.err = errors.New("ledger unavailable")
	if _, err := fx.svc.CompleteAssignment(context.Background(), fx.userID, fx.requester, assignment.ID, transport.CompleteAssignmentRequest{}); err == nil {
		t.Fatal("expected completion to surface the ledger failure")
	}

	stored := fx.store.assignments[assignment.ID]
	if stored.Status != string(domain.AssignmentStatusCompleted) {
		t.Fatalf("status after failed posting = %q, want completed", stored.Status)
	}
	if stored.ExchangeProcessed {
		t.Fatal("failed posting must release the processing claim")
	}

	// The ledger recovers; completing again replays only the posting.
	fx.ledger.err = nil
	resp, err := fx.svc.CompleteAssignment(context.Background(), fx.userID, fx.requester, assignment.ID, transport.CompleteAssignmentRequest{})
	if err != nil {
		t.Fatalf("retry error = %v", err)
	}
	if !resp.ExchangeProcessed {
		t.Error("retried assignment must end up processed")
	}
	if len(fx.ledger.calls) != 1 {
		t.Errorf("ledger postings = %d, want 1", len(fx.ledger.calls))
	}
	if fx.store.completedCalls != 1 {
		t.Errorf("stored completions = %d, want 1 (retry must not re-complete)", fx.store.completedCalls)
	}

	// Fully settled now: one more attempt is a plain conflict.
	if _, err := fx.svc.CompleteAssignment(context.Background(), fx.userID, fx.requester, assignment.ID, transport.CompleteAssignmentRequest{}); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("third completion: got %v, want conflict", err)
	}
}

func TestCompleteAssignmentPaidKindSkipsLedger(t *testing.T) {
	fx := newFixture(t)
	fx.request.Kind = string(domain.RequestKindPaid)
	worker := fx.newWorker(fx.provider)
	workDate := time.Date(2026, 5, 9, 0, 0, 0, 0, time.UTC)
	assignment := fx.seedAssignment(worker, workDate, "08:00", "16:00", string(domain.AssignmentStatusAssigned))

	if _, err := fx.svc.CompleteAssignment(context.Background(), fx.userID, fx.requester, assignment.ID, transport.CompleteAssignmentRequest{}); err != nil {
		t.Fatalf("CompleteAssignment() error = %v", err)
	}
	if len(fx.ledger.calls) != 0 {
		t.Errorf("paid work posted %d ledger entries, want 0", len(fx.ledger.calls))
	}
}

func TestCancelRequestCascadesToOpenAssignments(t *testing.T) {
	fx := newFixture(t)
	worker := fx.newWorker(fx.provider)
	day := time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC)
	open := fx.seedAssignment(worker, day, "08:00", "12:00", string(domain.AssignmentStatusAssigned))
	done := fx.seedAssignment(worker, day.AddDate(0, 0, 1), "08:00", "12:00", string(domain.AssignmentStatusCompleted))

	resp, err := fx.svc.CancelRequest(context.Background(), fx.userID, fx.requester, fx.request.ID)
	if err != nil {
		t.Fatalf("CancelRequest() error = %v", err)
	}
	if resp.Status != string(domain.RequestStatusCancelled) {
		t.Errorf("request status = %q, want cancelled", resp.Status)
	}
	if fx.store.cascadeCalls != 1 {
		t.Errorf("cascade calls = %d, want 1", fx.store.cascadeCalls)
	}
	if fx.store.assignments[open.ID].Status != string(domain.AssignmentStatusRejected) {
		t.Errorf("open assignment status = %q, want rejected", fx.store.assignments[open.ID].Status)
	}
	if fx.store.assignments[done.ID].Status != string(domain.AssignmentStatusCompleted) {
		t.Errorf("settled assignment status = %q, must stay completed", fx.store.assignments[done.ID].Status)
	}

	// Cancelling a cancelled request is a conflict, not a second cascade.
	if _, err := fx.svc.CancelRequest(context.Background(), fx.userID, fx.requester, fx.request.ID); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("second cancel: got %v, want conflict", err)
	}
	if fx.store.cascadeCalls != 1 {
		t.Errorf("cascade calls after second cancel = %d, want still 1", fx.store.cascadeCalls)
	}
}
