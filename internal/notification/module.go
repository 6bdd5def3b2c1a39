// Package notification subscribes to domain events and fans them out as
// in-app notifications and emails. Domain modules publish events and never
// talk to mail providers or the notifications table directly.
package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"farmlink_backend/internal/email"
	domainevents "farmlink_backend/internal/events"
	apphttp "farmlink_backend/internal/http"
	notifhandler "farmlink_backend/internal/notification/handler"
	"farmlink_backend/internal/notification/inapp"
	"farmlink_backend/platform/events"
	"farmlink_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type cachedHouseholdName struct {
	name      string
	expiresAt time.Time
}

// Module handles all notification-related event subscriptions.
type Module struct {
	pool         *pgxpool.Pool
	sender       email.Sender
	log          *logger.Logger
	inAppService *inapp.Service
	inAppHandler *notifhandler.HTTPHandler
	nameCache    sync.Map // map[uuid.UUID]cachedHouseholdName
}

// New creates a new notification module.
func New(pool *pgxpool.Pool, sender email.Sender, log *logger.Logger) *Module {
	repo := inapp.NewRepository(pool)
	svc := inapp.NewService(repo, log)

	return &Module{
		pool:         pool,
		sender:       sender,
		log:          log,
		inAppService: svc,
		inAppHandler: notifhandler.NewHTTPHandler(svc),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

// RegisterRoutes registers the in-app notification API routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	notifications := ctx.Protected.Group("/notifications")
	m.inAppHandler.RegisterRoutes(notifications)
}

// InAppService exposes the in-app notification service for integration points.
func (m *Module) InAppService() *inapp.Service { return m.inAppService }

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(domainevents.LaborRequestCreated{}.EventName(), m)
	bus.Subscribe(domainevents.LaborRequestAccepted{}.EventName(), m)
	bus.Subscribe(domainevents.LaborRequestDeclined{}.EventName(), m)
	bus.Subscribe(domainevents.LaborRequestCancelled{}.EventName(), m)
	bus.Subscribe(domainevents.LaborRequestCompleted{}.EventName(), m)

	bus.Subscribe(domainevents.AssignmentCreated{}.EventName(), m)
	bus.Subscribe(domainevents.AssignmentCompleted{}.EventName(), m)
	bus.Subscribe(domainevents.AssignmentMissed{}.EventName(), m)
	bus.Subscribe(domainevents.AssignmentRejected{}.EventName(), m)

	bus.Subscribe(domainevents.ExchangePosted{}.EventName(), m)
	bus.Subscribe(domainevents.OrderPlaced{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case domainevents.LaborRequestCreated:
		return m.handleRequestCreated(ctx, e)
	case domainevents.LaborRequestAccepted:
		return m.handleRequestAccepted(ctx, e)
	case domainevents.LaborRequestDeclined:
		return m.handleRequestDeclined(ctx, e)
	case domainevents.LaborRequestCancelled:
		return m.handleRequestCancelled(ctx, e)
	case domainevents.LaborRequestCompleted:
		return m.handleRequestCompleted(ctx, e)
	case domainevents.AssignmentCreated:
		return m.handleAssignmentCreated(ctx, e)
	case domainevents.AssignmentCompleted:
		return m.handleAssignmentCompleted(ctx, e)
	case domainevents.AssignmentMissed:
		return m.handleAssignmentMissed(ctx, e)
	case domainevents.AssignmentRejected:
		return m.handleAssignmentRejected(ctx, e)
	case domainevents.ExchangePosted:
		return m.handleExchangePosted(ctx, e)
	case domainevents.OrderPlaced:
		return m.handleOrderPlaced(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

var _ events.Handler = (*Module)(nil)
var _ apphttp.Module = (*Module)(nil)

func (m *Module) handleRequestCreated(ctx context.Context, e domainevents.LaborRequestCreated) error {
	// Direct requests notify the addressed household; public requests are
	// discovered through the board, not pushed.
	if e.IsPublic || e.ProvidingHouseholdID == nil {
		return nil
	}
	requester := m.resolveHouseholdName(ctx, e.RequestingHouseholdID)
	return m.notifyHousehold(ctx, *e.ProvidingHouseholdID, inapp.SendParams{
		Title:        "New labor request",
		Content:      fmt.Sprintf("%s asked your household for help: %s", requester, e.Title),
		ResourceID:   &e.RequestID,
		ResourceType: "labor_request",
	})
}

func (m *Module) handleRequestAccepted(ctx context.Context, e domainevents.LaborRequestAccepted) error {
	provider := m.resolveHouseholdName(ctx, e.ProvidingHouseholdID)

	if err := m.notifyHousehold(ctx, e.RequestingHouseholdID, inapp.SendParams{
		Title:        "Labor request accepted",
		Content:      fmt.Sprintf("%s accepted your request %q", provider, e.Title),
		ResourceID:   &e.RequestID,
		ResourceType: "labor_request",
		Category:     "success",
	}); err != nil {
		return err
	}

	ownerEmail := m.resolveOwnerEmail(ctx, e.RequestingHouseholdID)
	if ownerEmail == "" {
		return nil
	}
	if err := m.sender.SendRequestAccepted(ctx, ownerEmail, e.Title, provider); err != nil {
		m.log.Error("failed to send request accepted email", "error", err, "requestId", e.RequestID)
	}
	return nil
}

func (m *Module) handleRequestDeclined(ctx context.Context, e domainevents.LaborRequestDeclined) error {
	content := fmt.Sprintf("Your request %q was declined", e.Title)
	if e.Reason != "" {
		content = fmt.Sprintf("%s: %s", content, e.Reason)
	}
	return m.notifyHousehold(ctx, e.RequestingHouseholdID, inapp.SendParams{
		Title:        "Labor request declined",
		Content:      content,
		ResourceID:   &e.RequestID,
		ResourceType: "labor_request",
		Category:     "warning",
	})
}

func (m *Module) handleRequestCancelled(ctx context.Context, e domainevents.LaborRequestCancelled) error {
	if e.ProvidingHouseholdID == nil {
		return nil
	}
	requester := m.resolveHouseholdName(ctx, e.RequestingHouseholdID)
	return m.notifyHousehold(ctx, *e.ProvidingHouseholdID, inapp.SendParams{
		Title:        "Labor request cancelled",
		Content:      fmt.Sprintf("%s cancelled the request %q; related assignments were released", requester, e.Title),
		ResourceID:   &e.RequestID,
		ResourceType: "labor_request",
		Category:     "warning",
	})
}

func (m *Module) handleRequestCompleted(ctx context.Context, e domainevents.LaborRequestCompleted) error {
	if e.ProvidingHouseholdID == nil {
		return nil
	}
	return m.notifyHousehold(ctx, *e.ProvidingHouseholdID, inapp.SendParams{
		Title:        "Labor request completed",
		Content:      fmt.Sprintf("The request %q has been closed out", e.Title),
		ResourceID:   &e.RequestID,
		ResourceType: "labor_request",
		Category:     "success",
	})
}

func (m *Module) handleAssignmentCreated(ctx context.Context, e domainevents.AssignmentCreated) error {
	userID := m.resolveWorkerUser(ctx, e.WorkerID)
	if userID == uuid.Nil {
		return nil
	}
	return m.inAppService.Send(ctx, inapp.SendParams{
		UserID:       userID,
		Title:        "You have been scheduled",
		Content:      fmt.Sprintf("You are assigned to work on %s", e.WorkDate),
		ResourceID:   &e.AssignmentID,
		ResourceType: "labor_assignment",
	})
}

func (m *Module) handleAssignmentCompleted(ctx context.Context, e domainevents.AssignmentCompleted) error {
	userID := m.resolveWorkerUser(ctx, e.WorkerID)
	if userID == uuid.Nil {
		return nil
	}
	return m.inAppService.Send(ctx, inapp.SendParams{
		UserID:       userID,
		Title:        "Work day confirmed",
		Content:      fmt.Sprintf("Your work on %s was confirmed: %.1f hours, %.1f work units credited", e.WorkDate, e.HoursWorked, e.WorkUnits),
		ResourceID:   &e.AssignmentID,
		ResourceType: "labor_assignment",
		Category:     "success",
	})
}

func (m *Module) handleAssignmentMissed(ctx context.Context, e domainevents.AssignmentMissed) error {
	userID := m.resolveWorkerUser(ctx, e.WorkerID)
	if userID == uuid.Nil {
		return nil
	}
	return m.inAppService.Send(ctx, inapp.SendParams{
		UserID:       userID,
		Title:        "Marked as missed",
		Content:      fmt.Sprintf("Your assignment on %s was marked as missed", e.WorkDate),
		ResourceID:   &e.AssignmentID,
		ResourceType: "labor_assignment",
		Category:     "warning",
	})
}

func (m *Module) handleAssignmentRejected(ctx context.Context, e domainevents.AssignmentRejected) error {
	householdID := m.resolveRequestingHousehold(ctx, e.RequestID)
	if householdID == uuid.Nil {
		return nil
	}
	return m.notifyHousehold(ctx, householdID, inapp.SendParams{
		Title:        "Assignment rejected",
		Content:      fmt.Sprintf("A worker turned down the shift on %s; you may need to reschedule", e.WorkDate),
		ResourceID:   &e.AssignmentID,
		ResourceType: "labor_assignment",
		Category:     "warning",
	})
}

func (m *Module) handleExchangePosted(ctx context.Context, e domainevents.ExchangePosted) error {
	nameA := m.resolveHouseholdName(ctx, e.HouseholdAID)
	nameB := m.resolveHouseholdName(ctx, e.HouseholdBID)

	content := fmt.Sprintf("The work ledger between %s and %s was updated", nameA, nameB)
	for _, householdID := range []uuid.UUID{e.HouseholdAID, e.HouseholdBID} {
		if err := m.notifyHousehold(ctx, householdID, inapp.SendParams{
			Title:        "Work ledger updated",
			Content:      content,
			ResourceID:   &e.ExchangeID,
			ResourceType: "labor_exchange",
		}); err != nil {
			return err
		}
	}
	return nil
}

func (m *Module) handleOrderPlaced(ctx context.Context, e domainevents.OrderPlaced) error {
	buyer := m.resolveHouseholdName(ctx, e.BuyerHouseholdID)
	return m.notifyHousehold(ctx, e.SellerHouseholdID, inapp.SendParams{
		Title:        "New order",
		Content:      fmt.Sprintf("%s placed an order for %.2f", buyer, float64(e.TotalCents)/100),
		ResourceID:   &e.OrderID,
		ResourceType: "order",
		Category:     "success",
	})
}

// notifyHousehold sends the same in-app notification to every member of a household.
func (m *Module) notifyHousehold(ctx context.Context, householdID uuid.UUID, p inapp.SendParams) error {
	rows, err := m.pool.Query(ctx, `SELECT user_id FROM household_members WHERE household_id = $1`, householdID)
	if err != nil {
		return fmt.Errorf("failed to list household members: %w", err)
	}
	defer rows.Close()

	var userIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan household member: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate household members: %w", err)
	}

	for _, userID := range userIDs {
		p.HouseholdID = &householdID
		p.UserID = userID
		if err := m.inAppService.Send(ctx, p); err != nil {
			m.log.Error("failed to notify household member", "error", err, "householdId", householdID, "userId", userID)
		}
	}
	return nil
}

// resolveHouseholdName looks up a household's display name, cached for ten minutes.
func (m *Module) resolveHouseholdName(ctx context.Context, householdID uuid.UUID) string {
	if householdID == uuid.Nil {
		return "a household"
	}
	if cached, ok := m.nameCache.Load(householdID); ok {
		entry := cached.(cachedHouseholdName)
		if time.Now().Before(entry.expiresAt) {
			return entry.name
		}
		m.nameCache.Delete(householdID)
	}

	var name string
	if err := m.pool.QueryRow(ctx, `SELECT name FROM households WHERE id = $1`, householdID).Scan(&name); err != nil {
		return "a household"
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "a household"
	}
	m.nameCache.Store(householdID, cachedHouseholdName{name: name, expiresAt: time.Now().Add(10 * time.Minute)})
	return name
}

// resolveOwnerEmail returns the email address of the household owner, or "".
func (m *Module) resolveOwnerEmail(ctx context.Context, householdID uuid.UUID) string {
	var addr string
	err := m.pool.QueryRow(ctx, `
		SELECT u.email
		FROM household_members hm
		JOIN users u ON u.id = hm.user_id
		WHERE hm.household_id = $1 AND hm.role = 'owner'
		LIMIT 1
	`, householdID).Scan(&addr)
	if err != nil {
		return ""
	}
	return addr
}

// resolveWorkerUser returns the user account linked to a worker, or uuid.Nil
// for roster-only workers without an account.
func (m *Module) resolveWorkerUser(ctx context.Context, workerID uuid.UUID) uuid.UUID {
	var userID *uuid.UUID
	if err := m.pool.QueryRow(ctx, `SELECT user_id FROM workers WHERE id = $1`, workerID).Scan(&userID); err != nil {
		return uuid.Nil
	}
	if userID == nil {
		return uuid.Nil
	}
	return *userID
}

func (m *Module) resolveRequestingHousehold(ctx context.Context, requestID uuid.UUID) uuid.UUID {
	var householdID uuid.UUID
	if err := m.pool.QueryRow(ctx, `SELECT requesting_household_id FROM labor_requests WHERE id = $1`, requestID).Scan(&householdID); err != nil {
		return uuid.Nil
	}
	return householdID
}
