package jobs

import (
	"log"

	DB "Backend-Feedback-Portal/src/database"

	"github.com/hibiken/asynq"
)

// NewServeMux ผูก handler กับ task type ทั้งหมด
func NewServeMux(forms FormFinder, closer FormCloser, notifier PublishNotifier) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeNotifyFormPublished, HandleNotifyFormPublished(forms, notifier))
	mux.HandleFunc(TypeCloseForm, HandleCloseForm(closer))
	return mux
}

// StartWorker runs an in-process asynq server; it returns nil without Redis.
func StartWorker(redisURI string, mux *asynq.ServeMux) *asynq.Server {
	if redisURI == "" {
		log.Println("⚠️ Redis not available. Asynq worker will not start.")
		return nil
	}

	opt, err := DB.RedisConnOpt(redisURI)
	if err != nil {
		log.Println("❌ Asynq worker disabled:", err)
		return nil
	}

	srv := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 5,
			Queues:      map[string]int{"default": 1},
		},
	)
	if err := srv.Start(mux); err != nil {
		log.Println("❌ Failed to start asynq worker:", err)
		return nil
	}
	log.Println("✅ Asynq worker started")
	return srv
}
