package jobs

import (
	"context"
	"errors"
	"log"
	"time"

	"Backend-Feedback-Portal/src/models"

	"github.com/hibiken/asynq"
)

// Enqueuer is the part of *asynq.Client the dispatcher uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher queues form work on asynq, or runs it inline when Redis is absent.
type Dispatcher struct {
	queue    Enqueuer
	notifier PublishNotifier
}

// NewDispatcher accepts a nil client (no Redis).
func NewDispatcher(client *asynq.Client, notifier PublishNotifier) *Dispatcher {
	d := &Dispatcher{notifier: notifier}
	if client != nil {
		d.queue = client
	}
	return d
}

// FormPublished มี Redis → เข้าคิว, ไม่มี → ส่งแจ้งเตือนทันที
func (d *Dispatcher) FormPublished(ctx context.Context, form *models.Form) error {
	if d.queue != nil {
		task, err := NewNotifyFormPublishedTask(form.ID.Hex())
		if err != nil {
			return err
		}
		_, err = d.queue.EnqueueContext(ctx, task, asynq.TaskID(NotifyPublishedTaskID(form.ID.Hex())), asynq.MaxRetry(3))
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			log.Println("⚠️ notify-form task already queued:", form.ID.Hex())
			return nil
		}
		if err != nil {
			return err
		}
		log.Println("✅ Enqueued notify-form task:", form.ID.Hex())
		return nil
	}

	log.Println("⚠️ Redis not available → sending form notifications synchronously")
	_, err := d.notifier.NotifyFormPublished(ctx, form)
	return err
}

// ScheduleClose queues the deadline auto-close; without Redis the deadline is
// still enforced at submit time, only isActive is not flipped.
func (d *Dispatcher) ScheduleClose(ctx context.Context, form *models.Form) error {
	if form.Deadline == nil {
		return nil
	}
	if d.queue == nil {
		log.Println("⚠️ Redis/Asynq not available → skip scheduling form close:", form.ID.Hex())
		return nil
	}

	task, err := NewCloseFormTask(form.ID.Hex())
	if err != nil {
		return err
	}
	taskID := CloseFormTaskID(form.ID.Hex(), *form.Deadline)
	_, err = d.queue.EnqueueContext(ctx, task,
		asynq.ProcessAt(*form.Deadline),
		asynq.TaskID(taskID),
		asynq.MaxRetry(3),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return err
	}
	log.Printf("✅ scheduled form close: %s at %s", taskID, form.Deadline.Format(time.RFC3339))
	return nil
}
