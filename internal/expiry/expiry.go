// Package expiry schedules and executes the automatic cancellation of
// unpaid appointment holds. The delayed task is the server-side
// authority; the booking session's countdown is only its mirror.
package expiry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

const TypeHoldExpire = "hold:expire"

type holdPayload struct {
	AppointmentID uint `json:"appointment_id"`
}

// HoldReleaser deletes an unpaid hold. Returns false when the hold is
// already gone or already paid.
type HoldReleaser interface {
	Execute(ctx context.Context, appointmentID uint) (bool, error)
}

// --------------------------------------------------
// Scheduler (producer)
// --------------------------------------------------

type Scheduler struct {
	client *asynq.Client
}

func NewScheduler(opt asynq.RedisClientOpt) *Scheduler {
	return &Scheduler{client: asynq.NewClient(opt)}
}

func (s *Scheduler) ScheduleHoldExpiry(appointmentID uint, delay time.Duration) error {
	payload, err := json.Marshal(holdPayload{AppointmentID: appointmentID})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TypeHoldExpire, payload)
	_, err = s.client.Enqueue(task, asynq.ProcessIn(delay))
	return err
}

func (s *Scheduler) Close() error {
	return s.client.Close()
}

// --------------------------------------------------
// Worker (consumer)
// --------------------------------------------------

func NewHoldExpiryHandler(release HoldReleaser) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p holdPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Error().Err(err).Msg("hold expiry: invalid payload")
			return err
		}

		deleted, err := release.Execute(ctx, p.AppointmentID)
		if err != nil {
			return err
		}

		if deleted {
			log.Info().Uint("appointment_id", p.AppointmentID).Msg("unpaid hold expired")
		}
		return nil
	}
}

// RunWorker starts the asynq server in the background and keeps
// retrying startup, mirroring the API process lifecycle.
func RunWorker(opt asynq.RedisClientOpt, release HoldReleaser) {
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"default": 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeHoldExpire, NewHoldExpiryHandler(release))

	go func() {
		const maxAttempts = 5

		for attempt := 1; attempt <= maxAttempts; attempt++ {
			if err := srv.Run(mux); err != nil {
				log.Error().Err(err).Int("attempt", attempt).Msg("expiry worker failed to start")
				if attempt == maxAttempts {
					log.Fatal().Msg("expiry worker gave up after max retries")
				}
				time.Sleep(time.Duration(attempt*2) * time.Second)
			} else {
				break
			}
		}
	}()
}
