package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"swasthya/src/log"
	"swasthya/src/storage/postgres/ingestionctrl"
)

// RunsTopic is the message topic carrying scheduled ingestion runs.
const RunsTopic = "ingestion-runs"

// RunMessage is the payload published for each scheduled run.
type RunMessage struct {
	RunID string `json:"run_id"`
}

// Service schedules ingestion runs. Trigger returns as soon as the run is
// recorded and published; the pipeline itself executes on a consumer.
type Service struct {
	runs      ingestionctrl.Repository
	publisher message.Publisher
}

func NewService(runs ingestionctrl.Repository, publisher message.Publisher) *Service {
	return &Service{
		runs:      runs,
		publisher: publisher,
	}
}

// Trigger records a pending run for the uploaded file and publishes it.
func (s *Service) Trigger(ctx context.Context, filename string) (*ingestionctrl.Run, error) {
	run := &ingestionctrl.Run{
		ID:       uuid.New().String(),
		Filename: filename,
		Status:   ingestionctrl.RunStatusPending,
	}

	if err := s.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create ingestion run: %w", err)
	}

	payload, err := json.Marshal(RunMessage{RunID: run.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run message: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.publisher.Publish(RunsTopic, msg); err != nil {
		return nil, fmt.Errorf("failed to publish run message: %w", err)
	}

	log.Info("ingestion run scheduled", "run_id", run.ID, "filename", filename)

	return run, nil
}

// Get returns the recorded state of a run for status polling.
func (s *Service) Get(ctx context.Context, id string) (*ingestionctrl.Run, error) {
	return s.runs.Get(ctx, id)
}

// Consume processes scheduled runs from the subscriber one at a time until
// ctx is canceled. Together with the coordinator mutex this gives
// at-most-one-in-flight rebuild semantics.
func Consume(ctx context.Context, subscriber message.Subscriber, coordinator *Coordinator) error {
	messages, err := subscriber.Subscribe(ctx, RunsTopic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", RunsTopic, err)
	}

	for msg := range messages {
		var runMsg RunMessage
		if err := json.Unmarshal(msg.Payload, &runMsg); err != nil {
			log.Error(err, "discarding malformed run message", "message_id", msg.UUID)
			msg.Ack()
			continue
		}

		if err := coordinator.Run(ctx, runMsg.RunID); err != nil {
			// The failure is recorded on the run itself; the message is
			// acked so a broken run is not retried forever.
			log.Error(err, "ingestion run failed", "run_id", runMsg.RunID)
		}
		msg.Ack()
	}

	return nil
}
