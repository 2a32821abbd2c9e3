package jobs

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TypeNotifyFormPublished = "forms:notify-published"
	TypeCloseForm           = "forms:close"
)

type FormPayload struct {
	FormID string `json:"formId"`
}

func newFormTask(taskType, formID string) (*asynq.Task, error) {
	payload, err := json.Marshal(FormPayload{FormID: strings.TrimSpace(formID)})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, payload), nil
}

func NewNotifyFormPublishedTask(formID string) (*asynq.Task, error) {
	return newFormTask(TypeNotifyFormPublished, formID)
}

func NewCloseFormTask(formID string) (*asynq.Task, error) {
	return newFormTask(TypeCloseForm, formID)
}

func NotifyPublishedTaskID(formID string) string {
	return "notify-form-" + strings.TrimSpace(formID)
}

// CloseFormTaskID includes the deadline so a moved deadline schedules a new task.
func CloseFormTaskID(formID string, deadline time.Time) string {
	return fmt.Sprintf("close-form-%s-%d", strings.TrimSpace(formID), deadline.Unix())
}

func parseFormPayload(t *asynq.Task) (primitive.ObjectID, error) {
	var payload FormPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return primitive.NilObjectID, err
	}
	return primitive.ObjectIDFromHex(payload.FormID)
}
