package scheduler

import (
	"context"
	"fmt"

	"farmlink_backend/internal/email"
	labordomain "farmlink_backend/internal/labor/domain"
	laborrepo "farmlink_backend/internal/labor/repository"
	"farmlink_backend/platform/config"
	"farmlink_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Worker consumes scheduled tasks from the asynq queue.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	pool   *pgxpool.Pool
	labor  *laborrepo.Repository
	sender email.Sender
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, sender email.Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		pool:   pool,
		labor:  laborrepo.New(pool),
		sender: sender,
		log:    log,
	}

	mux.HandleFunc(TaskAssignmentReminder, w.handleAssignmentReminder)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleAssignmentReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseAssignmentReminderPayload(task)
	if err != nil {
		return err
	}

	assignmentID, err := uuid.Parse(payload.AssignmentID)
	if err != nil {
		return err
	}

	assignment, err := w.labor.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return err
	}

	// The assignment may have been rejected or the request cancelled since
	// the reminder was scheduled.
	if !labordomain.AssignmentStatus(assignment.Status).Open() {
		return nil
	}

	request, err := w.labor.GetRequestByID(ctx, assignment.RequestID)
	if err != nil {
		return err
	}

	toEmail := w.resolveWorkerEmail(ctx, assignment.WorkerID)
	if toEmail == "" {
		return nil
	}

	workDate := assignment.WorkDate.Format("Monday, 2 January 2006")
	window := fmt.Sprintf("%s to %s",
		assignment.StartTime.Format("15:04"),
		assignment.EndTime.Format("15:04"))

	if err := w.sender.SendAssignmentReminder(ctx, toEmail, request.Title, workDate, window); err != nil {
		w.log.Error("failed to send assignment reminder", "error", err, "assignmentId", assignmentID)
		return err
	}
	return nil
}

// resolveWorkerEmail returns the email of the user account linked to a
// worker; roster-only workers have no account and get no email.
func (w *Worker) resolveWorkerEmail(ctx context.Context, workerID uuid.UUID) string {
	var addr *string
	err := w.pool.QueryRow(ctx, `
		SELECT u.email
		FROM workers wk
		JOIN users u ON u.id = wk.user_id
		WHERE wk.id = $1
	`, workerID).Scan(&addr)
	if err != nil || addr == nil {
		return ""
	}
	return *addr
}
