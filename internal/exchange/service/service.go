package service

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	domainevents "farmlink_backend/internal/events"
	"farmlink_backend/internal/exchange/domain"
	"farmlink_backend/internal/exchange/repository"
	"farmlink_backend/internal/exchange/transport"
	"farmlink_backend/platform/apperr"
	"farmlink_backend/platform/events"
	"farmlink_backend/platform/logger"
)

// driftTolerance absorbs float accumulation noise when comparing a stored
// balance against a replay of the transaction log.
const driftTolerance = 1e-9

// Store is the persistence surface the exchange service depends on.
// Implemented by *repository.Repository; tests substitute fakes.
type Store interface {
	FindOrCreate(ctx context.Context, pair domain.Pair) (*repository.Exchange, error)
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Exchange, error)
	GetByPair(ctx context.Context, pair domain.Pair) (*repository.Exchange, error)
	ListForHousehold(ctx context.Context, householdID uuid.UUID) ([]repository.Exchange, error)
	ListAll(ctx context.Context) ([]repository.Exchange, error)
	PostDelta(ctx context.Context, exchangeID uuid.UUID, txn *repository.Transaction) (*repository.Transaction, error)
	SetBalance(ctx context.Context, exchangeID uuid.UUID, balance float64) error
	ReplaySum(ctx context.Context, exchangeID uuid.UUID) (float64, error)
	ListTransactions(ctx context.Context, exchangeID uuid.UUID, limit int) ([]repository.Transaction, error)
}

var _ Store = (*repository.Repository)(nil)

// Service provides business logic for the pairwise labor exchange ledger.
type Service struct {
	repo Store
	bus  events.Bus
	log  *logger.Logger
}

// New creates a new exchange service.
func New(repo Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// CompletionPosting carries one completed assignment's contribution to the
// pairwise ledger.
type CompletionPosting struct {
	AssignmentID          uuid.UUID
	WorkerHouseholdID     uuid.UUID
	RequestingHouseholdID uuid.UUID
	WorkUnits             float64
	Description           string
}

// PostCompletion posts a completed assignment's work units to the pairwise
// ledger. Work a household performs for itself never posts; positive work
// units are required. The caller guarantees at-most-once delivery per
// assignment.
func (s *Service) PostCompletion(ctx context.Context, input CompletionPosting) error {
	if input.WorkerHouseholdID == input.RequestingHouseholdID {
		return apperr.Invariant("cannot post exchange work between a household and itself")
	}
	if input.WorkUnits <= 0 {
		return apperr.Invariant(fmt.Sprintf("work units must be positive, got %v", input.WorkUnits))
	}

	pair := domain.NewPair(input.WorkerHouseholdID, input.RequestingHouseholdID)
	exchange, err := s.repo.FindOrCreate(ctx, pair)
	if err != nil {
		return err
	}

	assignmentID := input.AssignmentID
	txn := &repository.Transaction{
		AssignmentID: &assignmentID,
		Kind:         string(domain.TransactionCompletion),
		Delta:        pair.DeltaFor(input.WorkerHouseholdID, input.WorkUnits),
		Description:  input.Description,
	}

	posted, err := s.repo.PostDelta(ctx, exchange.ID, txn)
	if err != nil {
		return err
	}

	s.log.Info("exchange posted",
		"exchange_id", exchange.ID, "assignment_id", input.AssignmentID,
		"delta", posted.Delta, "balance", posted.BalanceAfter)
	s.bus.Publish(ctx, domainevents.ExchangePosted{
		BaseEvent:        events.NewBaseEvent(),
		ExchangeID:       exchange.ID,
		TransactionID:    posted.ID,
		HouseholdAID:     pair.HouseholdA,
		HouseholdBID:     pair.HouseholdB,
		Delta:            posted.Delta,
		ResultingBalance: posted.BalanceAfter,
	})

	return nil
}

// BalanceFor reports the signed balance between the acting household and one
// other household, from the acting household's perspective. Two households
// that never exchanged work are settled at zero.
func (s *Service) BalanceFor(ctx context.Context, householdID, otherHouseholdID uuid.UUID) (transport.BalanceResponse, error) {
	if householdID == otherHouseholdID {
		return transport.BalanceResponse{}, apperr.Validation("a household has no balance with itself")
	}

	resp := transport.BalanceResponse{
		HouseholdID:      householdID,
		OtherHouseholdID: otherHouseholdID,
	}

	pair := domain.NewPair(householdID, otherHouseholdID)
	exchange, err := s.repo.GetByPair(ctx, pair)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return resp, nil
		}
		return transport.BalanceResponse{}, err
	}

	resp.Balance = pair.BalanceFor(householdID, exchange.Balance)
	return resp, nil
}

// ListForHousehold lists every pairwise ledger the household participates in,
// balances re-signed to its perspective.
func (s *Service) ListForHousehold(ctx context.Context, householdID uuid.UUID) ([]transport.ExchangeResponse, error) {
	exchanges, err := s.repo.ListForHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}

	items := make([]transport.ExchangeResponse, 0, len(exchanges))
	for i := range exchanges {
		items = append(items, toExchangeResponse(&exchanges[i], householdID))
	}

	return items, nil
}

// GetDetail returns one ledger row plus its recent transactions. Only a pair
// member may look.
func (s *Service) GetDetail(ctx context.Context, householdID, exchangeID uuid.UUID) (transport.ExchangeDetailResponse, error) {
	exchange, err := s.requireMember(ctx, householdID, exchangeID)
	if err != nil {
		return transport.ExchangeDetailResponse{}, err
	}

	transactions, err := s.repo.ListTransactions(ctx, exchangeID, 100)
	if err != nil {
		return transport.ExchangeDetailResponse{}, err
	}

	detail := transport.ExchangeDetailResponse{
		Exchange:     toExchangeResponse(exchange, householdID),
		Transactions: make([]transport.TransactionResponse, 0, len(transactions)),
	}
	for i := range transactions {
		detail.Transactions = append(detail.Transactions, toTransactionResponse(&transactions[i]))
	}

	return detail, nil
}

// ResetBalance settles an exchange to zero by posting a compensating
// transaction. The history stays intact; only the running balance moves.
func (s *Service) ResetBalance(ctx context.Context, userID, householdID, exchangeID uuid.UUID) (transport.ExchangeResponse, error) {
	exchange, err := s.requireMember(ctx, householdID, exchangeID)
	if err != nil {
		return transport.ExchangeResponse{}, err
	}

	if exchange.Balance == 0 {
		return toExchangeResponse(exchange, householdID), nil
	}

	txn := &repository.Transaction{
		Kind:        string(domain.TransactionReset),
		Delta:       -exchange.Balance,
		Description: "balance settled to zero",
		CreatedBy:   &userID,
	}
	posted, err := s.repo.PostDelta(ctx, exchange.ID, txn)
	if err != nil {
		return transport.ExchangeResponse{}, err
	}

	exchange.Balance = posted.BalanceAfter
	s.log.Info("exchange balance reset", "exchange_id", exchange.ID, "by", userID)

	return toExchangeResponse(exchange, householdID), nil
}

// AdjustBalance posts a manual correction to an exchange.
func (s *Service) AdjustBalance(ctx context.Context, userID, householdID, exchangeID uuid.UUID, req transport.AdjustBalanceRequest) (transport.ExchangeResponse, error) {
	exchange, err := s.requireMember(ctx, householdID, exchangeID)
	if err != nil {
		return transport.ExchangeResponse{}, err
	}

	txn := &repository.Transaction{
		Kind:        string(domain.TransactionAdjustment),
		Delta:       req.Delta,
		Description: req.Description,
		CreatedBy:   &userID,
	}
	posted, err := s.repo.PostDelta(ctx, exchange.ID, txn)
	if err != nil {
		return transport.ExchangeResponse{}, err
	}

	exchange.Balance = posted.BalanceAfter
	s.log.Info("exchange balance adjusted",
		"exchange_id", exchange.ID, "delta", req.Delta, "by", userID)

	return toExchangeResponse(exchange, householdID), nil
}

// Recalculate replays an exchange's transaction log against its stored
// balance. Dry-run by default; with apply set, a drifted stored balance is
// overwritten by the replayed one. Drift is always logged loudly.
func (s *Service) Recalculate(ctx context.Context, householdID, exchangeID uuid.UUID, apply bool) (transport.RecalculateResponse, error) {
	exchange, err := s.requireMember(ctx, householdID, exchangeID)
	if err != nil {
		return transport.RecalculateResponse{}, err
	}

	return s.recalculate(ctx, exchange, apply)
}

// RecalculateAllForHousehold replays the transaction log of every exchange
// the household participates in. Dry-run by default, like Recalculate.
func (s *Service) RecalculateAllForHousehold(ctx context.Context, householdID uuid.UUID, apply bool) ([]transport.RecalculateResponse, error) {
	exchanges, err := s.repo.ListForHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}

	results := make([]transport.RecalculateResponse, 0, len(exchanges))
	for i := range exchanges {
		result, err := s.recalculate(ctx, &exchanges[i], apply)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}

// AuditAll replays every exchange's transaction log, logging any drift. The
// nightly scheduler job runs this; nothing is written back.
func (s *Service) AuditAll(ctx context.Context) (int, error) {
	exchanges, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	drifted := 0
	for i := range exchanges {
		result, err := s.recalculate(ctx, &exchanges[i], false)
		if err != nil {
			return drifted, err
		}
		if result.Drift != 0 {
			drifted++
		}
	}

	return drifted, nil
}

func (s *Service) recalculate(ctx context.Context, exchange *repository.Exchange, apply bool) (transport.RecalculateResponse, error) {
	replayed, err := s.repo.ReplaySum(ctx, exchange.ID)
	if err != nil {
		return transport.RecalculateResponse{}, err
	}

	resp := transport.RecalculateResponse{
		ExchangeID: exchange.ID,
		Stored:     exchange.Balance,
		Replayed:   replayed,
	}
	if math.Abs(replayed-exchange.Balance) > driftTolerance {
		resp.Drift = replayed - exchange.Balance
		s.log.LedgerDrift(exchange.ID.String(), exchange.Balance, replayed)
	}

	if apply && resp.Drift != 0 {
		if err := s.repo.SetBalance(ctx, exchange.ID, replayed); err != nil {
			return transport.RecalculateResponse{}, err
		}
		resp.Applied = true
	}

	return resp, nil
}

func (s *Service) requireMember(ctx context.Context, householdID, exchangeID uuid.UUID) (*repository.Exchange, error) {
	exchange, err := s.repo.GetByID(ctx, exchangeID)
	if err != nil {
		return nil, err
	}
	if !exchange.Pair().Contains(householdID) {
		return nil, apperr.Forbidden("household is not a member of this exchange")
	}
	return exchange, nil
}

func toExchangeResponse(e *repository.Exchange, viewerID uuid.UUID) transport.ExchangeResponse {
	pair := e.Pair()
	balance := pair.BalanceFor(viewerID, e.Balance)
	return transport.ExchangeResponse{
		ID:               e.ID,
		HouseholdAID:     e.HouseholdAID,
		HouseholdBID:     e.HouseholdBID,
		OtherHouseholdID: pair.Other(viewerID),
		Balance:          balance,
		Direction:        domain.Direction(balance),
		UpdatedAt:        e.UpdatedAt,
	}
}

func toTransactionResponse(t *repository.Transaction) transport.TransactionResponse {
	return transport.TransactionResponse{
		ID:           t.ID,
		ExchangeID:   t.ExchangeID,
		AssignmentID: t.AssignmentID,
		Kind:         t.Kind,
		Delta:        t.Delta,
		BalanceAfter: t.BalanceAfter,
		Description:  t.Description,
		CreatedAt:    t.CreatedAt,
	}
}
