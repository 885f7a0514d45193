package cron

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"tourspot/config"
	reservationRepo "tourspot/database/repository/reservation"
	"tourspot/models"
)

const TypeReservationExpire = "reservation:expire"

// ExpirePayload identifies the reservation a delayed expiry task targets.
type ExpirePayload struct {
	ReservationID string `json:"reservationId"`
}

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// AsynqExpiryScheduler enqueues delayed expiry tasks on the redis-backed
// queue. It satisfies the reservation engine's ExpiryScheduler.
type AsynqExpiryScheduler struct {
	client *asynq.Client
}

func NewAsynqExpiryScheduler() *AsynqExpiryScheduler {
	return &AsynqExpiryScheduler{client: asynq.NewClient(redisOpts())}
}

func (s *AsynqExpiryScheduler) ScheduleExpiry(reservationID string, delay time.Duration) error {
	payload, err := json.Marshal(ExpirePayload{ReservationID: reservationID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeReservationExpire, payload)
	_, err = s.client.Enqueue(task, asynq.ProcessIn(delay))
	return err
}

// InitExpiryWorker runs the async worker in background. It sweeps pending
// reservations whose TTL has elapsed back to cancelled so abandoned
// requests stop holding capacity.
func InitExpiryWorker(repo reservationRepo.Repository) {
	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeReservationExpire, HandleReservationExpire(repo))

	// Safety net for tasks lost before enqueue: periodically scan for
	// stale pending rows directly.
	go sweepStalePending(repo)

	go func() {
		log.Println("[ExpiryWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ExpiryWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ExpiryWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

// HandleReservationExpire cancels the reservation if it is still pending.
// Reservations resolved in the meantime are left untouched.
func HandleReservationExpire(repo reservationRepo.Repository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p ExpirePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ExpiryHandler] Invalid payload: %v", err)
			return err
		}

		_, err := repo.UpdateStatus(ctx, p.ReservationID, models.StatusPending, models.StatusCancelled, time.Now())
		if errors.Is(err, reservationRepo.ErrStatusConflict) || errors.Is(err, reservationRepo.ErrNotFound) {
			// Already confirmed, rejected or cancelled; nothing to expire.
			return nil
		}
		if err != nil {
			log.Printf("[ExpiryHandler] Failed to expire reservation %s: %v", p.ReservationID, err)
			return err
		}

		log.Printf("[ExpiryHandler] Expired pending reservation %s", p.ReservationID)
		return nil
	}
}

// sweepStalePending scans for pending reservations older than the TTL and
// cancels them, catching anything the delayed tasks missed.
func sweepStalePending(repo reservationRepo.Repository) {
	interval := config.PendingTTL()
	for {
		time.Sleep(interval)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		cutoff := time.Now().Add(-config.PendingTTL())
		stale, err := repo.ListExpiredPending(ctx, cutoff)
		if err != nil {
			log.Printf("[ExpirySweep] Failed to list stale pending reservations: %v", err)
			cancel()
			continue
		}
		for _, r := range stale {
			if _, err := repo.UpdateStatus(ctx, r.ID, models.StatusPending, models.StatusCancelled, time.Now()); err != nil &&
				!errors.Is(err, reservationRepo.ErrStatusConflict) {
				log.Printf("[ExpirySweep] Failed to expire reservation %s: %v", r.ID, err)
			}
		}
		cancel()
	}
}
