package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rfandrade/creditledger/internal/model"
	"github.com/rfandrade/creditledger/internal/order"
	"github.com/rfandrade/creditledger/internal/order/dto"
	"github.com/rfandrade/creditledger/pkg/broker"
	"github.com/rfandrade/creditledger/pkg/logger"
	"go.uber.org/zap"
)

// DeliveryListener consumes courier delivery confirmations and records them
// as fulfillment events on the order.
type DeliveryListener struct {
	consumer *broker.KafkaConsumer
	uc       order.UseCase
	logger   logger.ZapLogger
}

func NewDeliveryListener(consumer *broker.KafkaConsumer, uc order.UseCase, logger logger.ZapLogger) *DeliveryListener {
	return &DeliveryListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *DeliveryListener) Start(ctx context.Context) {
	l.logger.Info("Starting Delivery Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Delivery Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				// Don't log context canceled error as error
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type DeliveryEvent struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Payload   DeliveryPayload `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

type DeliveryPayload struct {
	OrderID string  `json:"order_id"`
	Grams   float64 `json:"grams"`
	Units   int64   `json:"units"`
	Note    *string `json:"note"`
}

func (l *DeliveryListener) processMessage(ctx context.Context, value []byte) {
	var event DeliveryEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	var fulfillEvent model.FulfillmentEvent
	switch event.EventType {
	case "DeliveryOut":
		fulfillEvent = model.EventOutForDelivery
	case "DeliveryConfirmed":
		fulfillEvent = model.EventDelivered
	default:
		return
	}

	l.logger.Info("Processing delivery event",
		zap.String("event_type", event.EventType),
		zap.String("order_id", event.Payload.OrderID),
	)

	_, err := l.uc.AddFulfillment(ctx, &dto.AddFulfillmentInput{
		OrderID: event.Payload.OrderID,
		Event:   fulfillEvent,
		Grams:   event.Payload.Grams,
		Units:   event.Payload.Units,
		Note:    event.Payload.Note,
	})
	if err != nil {
		l.logger.Error("Failed to record delivery fulfillment",
			zap.String("order_id", event.Payload.OrderID),
			zap.Error(err),
		)
	}
}
