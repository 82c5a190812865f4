package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kdacanay/wrc-leads/pkg/logging"
	amqp "github.com/rabbitmq/amqp091-go"
)

// AssignmentNotifier delivers the "you have a new lead" message to an agent.
type AssignmentNotifier interface {
	NotifyAssignment(ctx context.Context, payload AssignmentPayload) error
}

// Consumer is satisfied by *amqp.Channel.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel  Consumer
	Notifier AssignmentNotifier
	Logger   *logging.Logger
}

func NewWorker(ch Consumer, notifier AssignmentNotifier, logger *logging.Logger) *Worker {
	if logger == nil {
		logger = logging.Default()
	}
	return &Worker{Channel: ch, Notifier: notifier, Logger: logger}
}

// Start consumes queueName until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register RabbitMQ consumer: %w", err)
	}

	w.Logger.Info("assignment worker waiting for messages", "queue", queueName)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				w.Logger.Warn("assignment delivery channel closed", "queue", queueName)
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

// handle acks on success. Malformed bodies and notifier failures are nacked
// without requeue so they land in the dead-letter queue.
func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var payload AssignmentPayload
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		w.Logger.Error("invalid assignment payload", "error", err)
		_ = d.Nack(false, false)
		return
	}

	if err := w.Notifier.NotifyAssignment(ctx, payload); err != nil {
		w.Logger.Error("assignment notification failed",
			"lead_id", payload.LeadID, "agent_id", payload.AgentID, "error", err)
		_ = d.Nack(false, false)
		return
	}

	w.Logger.Info("assignment notification sent", "lead_id", payload.LeadID, "agent_id", payload.AgentID)
	_ = d.Ack(false)
}
