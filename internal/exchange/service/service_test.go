package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"farmlink_backend/internal/exchange/domain"
	"farmlink_backend/internal/exchange/repository"
	"farmlink_backend/internal/exchange/transport"
	"farmlink_backend/platform/apperr"
	"farmlink_backend/platform/events"
	"farmlink_backend/platform/logger"
)

// fakeLedgerStore is an in-memory Store keeping exchanges and their
// append-only transaction logs. PostDelta maintains the running balance the
// way the real repository does, so replay laws hold in tests too.
type fakeLedgerStore struct {
	exchanges    map[uuid.UUID]*repository.Exchange
	transactions map[uuid.UUID][]repository.Transaction
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{
		exchanges:    make(map[uuid.UUID]*repository.Exchange),
		transactions: make(map[uuid.UUID][]repository.Transaction),
	}
}

func (f *fakeLedgerStore) addExchange(a, b uuid.UUID, balance float64) *repository.Exchange {
	pair := domain.NewPair(a, b)
	e := &repository.Exchange{
		ID:           uuid.New(),
		HouseholdAID: pair.HouseholdA,
		HouseholdBID: pair.HouseholdB,
		Balance:      balance,
	}
	f.exchanges[e.ID] = e
	return e
}

func (f *fakeLedgerStore) FindOrCreate(_ context.Context, pair domain.Pair) (*repository.Exchange, error) {
	for _, e := range f.exchanges {
		if e.HouseholdAID == pair.HouseholdA && e.HouseholdBID == pair.HouseholdB {
			return e, nil
		}
	}
	return f.addExchange(pair.HouseholdA, pair.HouseholdB, 0), nil
}

func (f *fakeLedgerStore) GetByID(_ context.Context, id uuid.UUID) (*repository.Exchange, error) {
	e, ok := f.exchanges[id]
	if !ok {
		return nil, apperr.NotFound("exchange not found")
	}
	return e, nil
}

func (f *fakeLedgerStore) GetByPair(_ context.Context, pair domain.Pair) (*repository.Exchange, error) {
	for _, e := range f.exchanges {
		if e.HouseholdAID == pair.HouseholdA && e.HouseholdBID == pair.HouseholdB {
			return e, nil
		}
	}
	return nil, apperr.NotFound("exchange not found")
}

func (f *fakeLedgerStore) ListForHousehold(_ context.Context, householdID uuid.UUID) ([]repository.Exchange, error) {
	var out []repository.Exchange
	for _, e := range f.exchanges {
		if e.Pair().Contains(householdID) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeLedgerStore) ListAll(_ context.Context) ([]repository.Exchange, error) {
	var out []repository.Exchange
	for _, e := range f.exchanges {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeLedgerStore) PostDelta(_ context.Context, exchangeID uuid.UUID, txn *repository.Transaction) (*repository.Transaction, error) {
	e, ok := f.exchanges[exchangeID]
	if !ok {
		return nil, apperr.NotFound("exchange not found")
	}
	e.Balance += txn.Delta

	posted := *txn
	posted.ID = uuid.New()
	posted.ExchangeID = exchangeID
	posted.BalanceAfter = e.Balance
	f.transactions[exchangeID] = append(f.transactions[exchangeID], posted)
	return &posted, nil
}

func (f *fakeLedgerStore) SetBalance(_ context.Context, exchangeID uuid.UUID, balance float64) error {
	e, ok := f.exchanges[exchangeID]
	if !ok {
		return apperr.NotFound("exchange not found")
	}
	e.Balance = balance
	return nil
}

func (f *fakeLedgerStore) ReplaySum(_ context.Context, exchangeID uuid.UUID) (float64, error) {
	sum := 0.0
	for _, txn := range f.transactions[exchangeID] {
		sum += txn.Delta
	}
	return sum, nil
}

func (f *fakeLedgerStore) ListTransactions(_ context.Context, exchangeID uuid.UUID, limit int) ([]repository.Transaction, error) {
	txns := f.transactions[exchangeID]
	if len(txns) > limit {
		txns = txns[len(txns)-limit:]
	}
	return txns, nil
}

var _ Store = (*fakeLedgerStore)(nil)

func newTestService(store *fakeLedgerStore) *Service {
	log := &logger.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	return New(store, events.NewInMemoryBus(log), log)
}

func TestPostCompletionSignsDeltaForWorkerSide(t *testing.T) {
	store := newFakeLedgerStore()
	svc := newTestService(store)

	worker := uuid.New()
	requester := uuid.New()
	assignmentID := uuid.New()

	err := svc.PostCompletion(context.Background(), CompletionPosting{
		AssignmentID:          assignmentID,
		WorkerHouseholdID:     worker,
		RequestingHouseholdID: requester,
		WorkUnits:             1.0,
		Description:           "hay baling on 2026-05-04",
	})
	if err != nil {
		t.Fatalf("PostCompletion() error = %v", err)
	}

	// The worker household is owed one unit regardless of pair ordering.
	balance, err := svc.BalanceFor(context.Background(), worker, requester)
	if err != nil {
		t.Fatalf("BalanceFor() error = %v", err)
	}
	if balance.Balance != 1.0 {
		t.Errorf("worker-side balance = %v, want 1.0", balance.Balance)
	}
	other, err := svc.BalanceFor(context.Background(), requester, worker)
	if err != nil {
		t.Fatalf("BalanceFor() error = %v", err)
	}
	if other.Balance != -1.0 {
		t.Errorf("requester-side balance = %v, want -1.0", other.Balance)
	}
}

func TestPostCompletionRejectsInvalidPostings(t *testing.T) {
	store := newFakeLedgerStore()
	svc := newTestService(store)
	household := uuid.New()

	if err := svc.PostCompletion(context.Background(), CompletionPosting{
		WorkerHouseholdID:     household,
		RequestingHouseholdID: household,
		WorkUnits:             1.0,
	}); !apperr.Is(err, apperr.KindInvariant) {
		t.Errorf("self-posting: got %v, want invariant error", err)
	}

	if err := svc.PostCompletion(context.Background(), CompletionPosting{
		WorkerHouseholdID:     household,
		RequestingHouseholdID: uuid.New(),
		WorkUnits:             0,
	}); !apperr.Is(err, apperr.KindInvariant) {
		t.Errorf("zero units: got %v, want invariant error", err)
	}
}

func TestListForHouseholdViewerDirection(t *testing.T) {
	store := newFakeLedgerStore()
	svc := newTestService(store)

	viewer := uuid.New()
	creditor := uuid.New() // viewer owes them
	debtor := uuid.New()   // they owe the viewer

	ex1 := store.addExchange(viewer, creditor, 0)
	pair1 := ex1.Pair()
	ex1.Balance = pair1.DeltaFor(creditor, 2.0) // creditor earned 2 units

	ex2 := store.addExchange(viewer, debtor, 0)
	pair2 := ex2.Pair()
	ex2.Balance = pair2.DeltaFor(viewer, 0.5) // viewer earned half a unit

	items, err := svc.ListForHousehold(context.Background(), viewer)
	if err != nil {
		t.Fatalf("ListForHousehold() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d exchanges, want 2", len(items))
	}

	byOther := make(map[uuid.UUID]transport.ExchangeResponse, len(items))
	for _, item := range items {
		byOther[item.OtherHouseholdID] = item
	}

	if got := byOther[creditor]; got.Balance != -2.0 || got.Direction != "negative" {
		t.Errorf("creditor view = (%v, %q), want (-2.0, negative)", got.Balance, got.Direction)
	}
	if got := byOther[debtor]; got.Balance != 0.5 || got.Direction != "positive" {
		t.Errorf("debtor view = (%v, %q), want (0.5, positive)", got.Balance, got.Direction)
	}
}

func TestResetBalancePreservesReplayLaw(t *testing.T) {
	store := newFakeLedgerStore()
	svc := newTestService(store)

	worker := uuid.New()
	requester := uuid.New()
	userID := uuid.New()

	if err := svc.PostCompletion(context.Background(), CompletionPosting{
		AssignmentID:          uuid.New(),
		WorkerHouseholdID:     worker,
		RequestingHouseholdID: requester,
		WorkUnits:             1.5,
	}); err != nil {
		t.Fatalf("PostCompletion() error = %v", err)
	}

	exchange, err := store.GetByPair(context.Background(), domain.NewPair(worker, requester))
	if err != nil {
		t.Fatalf("GetByPair() error = %v", err)
	}

	resp, err := svc.ResetBalance(context.Background(), userID, worker, exchange.ID)
	if err != nil {
		t.Fatalf("ResetBalance() error = %v", err)
	}
	if resp.Balance != 0 {
		t.Errorf("balance after reset = %v, want 0", resp.Balance)
	}

	// The reset is itself a transaction, so a replay still matches the
	// stored balance and a recalculation finds no drift.
	result, err := svc.Recalculate(context.Background(), worker, exchange.ID, false)
	if err != nil {
		t.Fatalf("Recalculate() error = %v", err)
	}
	if result.Drift != 0 {
		t.Errorf("drift after reset = %v, want 0", result.Drift)
	}
	if len(store.transactions[exchange.ID]) != 2 {
		t.Errorf("transaction count = %d, want 2 (completion + reset)", len(store.transactions[exchange.ID]))
	}

	// Resetting an already settled exchange posts nothing.
	if _, err := svc.ResetBalance(context.Background(), userID, worker, exchange.ID); err != nil {
		t.Fatalf("second ResetBalance() error = %v", err)
	}
	if len(store.transactions[exchange.ID]) != 2 {
		t.Errorf("transaction count after no-op reset = %d, want still 2", len(store.transactions[exchange.ID]))
	}
}

func TestRecalculateAllForHousehold(t *testing.T) {
	store := newFakeLedgerStore()
	svc := newTestService(store)

	viewer := uuid.New()
	other1 := uuid.New()
	other2 := uuid.New()

	// A consistent exchange: stored balance equals the replayed sum.
	consistent := store.addExchange(viewer, other1, 0)
	if _, err := store.PostDelta(context.Background(), consistent.ID, &repository.Transaction{
		Kind:  string(domain.TransactionCompletion),
		Delta: 1.0,
	}); err != nil {
		t.Fatalf("PostDelta() error = %v", err)
	}

	// A drifted one: the log sums to 2.0 but the stored balance says 3.5.
	drifted := store.addExchange(viewer, other2, 0)
	if _, err := store.PostDelta(context.Background(), drifted.ID, &repository.Transaction{
		Kind:  string(domain.TransactionCompletion),
		Delta: 2.0,
	}); err != nil {
		t.Fatalf("PostDelta() error = %v", err)
	}
	drifted.Balance = 3.5

	// An exchange the viewer is no party to must not be touched.
	unrelated := store.addExchange(uuid.New(), uuid.New(), 9)

	results, err := svc.RecalculateAllForHousehold(context.Background(), viewer, false)
	if err != nil {
		t.Fatalf("RecalculateAllForHousehold() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	byID := make(map[uuid.UUID]transport.RecalculateResponse, len(results))
	for _, r := range results {
		byID[r.ExchangeID] = r
	}
	if r := byID[consistent.ID]; r.Drift != 0 || r.Applied {
		t.Errorf("consistent exchange: drift=%v applied=%v, want 0/false", r.Drift, r.Applied)
	}
	if r := byID[drifted.ID]; r.Drift != -1.5 || r.Applied {
		t.Errorf("drifted exchange dry run: drift=%v applied=%v, want -1.5/false", r.Drift, r.Applied)
	}
	if drifted.Balance != 3.5 {
		t.Errorf("dry run changed the stored balance to %v", drifted.Balance)
	}

	// With apply set, only the drifted balance is rewritten.
	results, err = svc.RecalculateAllForHousehold(context.Background(), viewer, true)
	if err != nil {
		t.Fatalf("RecalculateAllForHousehold(apply) error = %v", err)
	}
	byID = make(map[uuid.UUID]transport.RecalculateResponse, len(results))
	for _, r := range results {
		byID[r.ExchangeID] = r
	}
	if r := byID[drifted.ID]; !r.Applied {
		t.Error("drifted exchange: apply must write the replayed balance back")
	}
	if r := byID[consistent.ID]; r.Applied {
		t.Error("consistent exchange: apply must leave it untouched")
	}
	if drifted.Balance != 2.0 {
		t.Errorf("drifted balance after apply = %v, want 2.0", drifted.Balance)
	}
	if unrelated.Balance != 9 {
		t.Errorf("unrelated exchange balance = %v, want untouched 9", unrelated.Balance)
	}
}
