package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskAssignmentReminder = "labor.assignment_reminder"

type AssignmentReminderPayload struct {
	AssignmentID string `json:"assignmentId"`
}

func NewAssignmentReminderTask(payload AssignmentReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAssignmentReminder, data), nil
}

func ParseAssignmentReminderPayload(task *asynq.Task) (AssignmentReminderPayload, error) {
	var payload AssignmentReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AssignmentReminderPayload{}, err
	}
	return payload, nil
}
