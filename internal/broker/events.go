package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"supply-service/internal/models"
	"supply-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing supply domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

func orderKey(orderID int64) string {
	return fmt.Sprintf("supply-order-%d", orderID)
}

// PublishOrderCreated publishes an OrderCreated event
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishReturnProcessed publishes a ReturnProcessed event
func (ep *EventPublisher) PublishReturnProcessed(ctx context.Context, event *models.ReturnProcessedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishReturnAccepted publishes a ReturnAccepted event
func (ep *EventPublisher) PublishReturnAccepted(ctx context.Context, event *models.ReturnAcceptedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishPaymentRecorded publishes a PaymentRecorded event
func (ep *EventPublisher) PublishPaymentRecorded(ctx context.Context, event *models.PaymentRecordedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishOrderCancelled publishes an OrderCancelled event
func (ep *EventPublisher) PublishOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishOrderDeleted publishes an OrderDeleted event
func (ep *EventPublisher) PublishOrderDeleted(ctx context.Context, event *models.OrderDeletedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishActivityRecorded publishes a fire-and-forget audit trail entry
func (ep *EventPublisher) PublishActivityRecorded(ctx context.Context, event *models.ActivityRecordedEvent) error {
	return ep.producer.PublishEvent(ctx, "activity", event)
}

// EventHandler routes incoming events to registered handlers
type EventHandler struct {
	onActivityRecorded func(context.Context, *models.ActivityRecordedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnActivityRecorded registers a handler for ActivityRecorded events
func (eh *EventHandler) OnActivityRecorded(handler func(context.Context, *models.ActivityRecordedEvent) error) {
	eh.onActivityRecorded = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	logger := util.GetLogger()
	logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("event_id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeActivityRecorded:
		if eh.onActivityRecorded != nil {
			var event models.ActivityRecordedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ActivityRecorded event: %w", err)
			}
			return eh.onActivityRecorded(ctx, &event)
		}

	default:
		// Domain events on the same topic are consumed by other services.
	}

	return nil
}
