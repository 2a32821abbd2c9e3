package jobs

import (
	"context"
	"fmt"
	"log"

	"Backend-Feedback-Portal/src/models"
	"Backend-Feedback-Portal/src/utils"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FormFinder interface {
	Find(ctx context.Context, id primitive.ObjectID) (*models.Form, error)
}

type FormCloser interface {
	CloseExpired(ctx context.Context, id primitive.ObjectID) error
}

// PublishNotifier fans a formPublished notice out to the form's cohort.
type PublishNotifier interface {
	NotifyFormPublished(ctx context.Context, form *models.Form) (models.BatchInsertResult, error)
}

// HandleNotifyFormPublished is safe to retry: the partial unique index drops repeats.
func HandleNotifyFormPublished(forms FormFinder, notifier PublishNotifier) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		log.Println("🎯 Start notify-form task")

		formID, err := parseFormPayload(t)
		if err != nil {
			log.Println("❌ Payload decode error:", err)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		form, err := forms.Find(ctx, formID)
		if err != nil {
			if utils.StatusOf(err) == 404 {
				log.Println("⚠️ Form not found. Possibly deleted. Skipping task:", formID.Hex())
				return nil
			}
			return err
		}
		if !form.IsActive {
			log.Println("⚠️ Form is inactive. Skipping notify:", formID.Hex())
			return nil
		}

		res, err := notifier.NotifyFormPublished(ctx, form)
		if err != nil {
			return err
		}
		log.Printf("✅ notify-form %s inserted=%d duplicates=%d failed=%d", formID.Hex(), res.Inserted, res.Duplicates, res.Failed)
		return nil
	}
}

func HandleCloseForm(closer FormCloser) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		formID, err := parseFormPayload(t)
		if err != nil {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return closer.CloseExpired(ctx, formID)
	}
}
