package scheduler

import (
	"context"
	"time"

	domainevents "farmlink_backend/internal/events"
	"farmlink_backend/platform/events"
	"farmlink_backend/platform/logger"
)

// reminderLeadHour is the local hour on the day before the work date at
// which the reminder fires.
const reminderLeadHour = 18

// ReminderDispatcher listens for new assignments and schedules a reminder
// task for the evening before each work date.
type ReminderDispatcher struct {
	client *Client
	log    *logger.Logger
}

func NewReminderDispatcher(client *Client, log *logger.Logger) *ReminderDispatcher {
	return &ReminderDispatcher{client: client, log: log}
}

// RegisterHandlers subscribes the dispatcher on the event bus.
func (d *ReminderDispatcher) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(domainevents.AssignmentCreated{}.EventName(), d)
}

// Handle implements events.Handler.
func (d *ReminderDispatcher) Handle(ctx context.Context, event events.Event) error {
	created, ok := event.(domainevents.AssignmentCreated)
	if !ok {
		return nil
	}

	workDate, err := time.ParseInLocation("2006-01-02", created.WorkDate, time.Local)
	if err != nil {
		d.log.Warn("assignment created with unparseable work date", "workDate", created.WorkDate, "assignmentId", created.AssignmentID)
		return nil
	}

	runAt := workDate.AddDate(0, 0, -1).Add(reminderLeadHour * time.Hour)
	if runAt.Before(time.Now()) {
		// Same-day or next-morning bookings get no advance reminder.
		return nil
	}

	payload := AssignmentReminderPayload{AssignmentID: created.AssignmentID.String()}
	if err := d.client.ScheduleAssignmentReminder(ctx, payload, runAt); err != nil {
		d.log.Error("failed to schedule assignment reminder", "error", err, "assignmentId", created.AssignmentID)
		return err
	}
	return nil
}

var _ events.Handler = (*ReminderDispatcher)(nil)
