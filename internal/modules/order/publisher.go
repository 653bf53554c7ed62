// README: Kafka publisher for order lifecycle events.
package order

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisher struct {
	writer  MessageWriter
	timeout time.Duration
}

func NewKafkaPublisher(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w, timeout: 2 * time.Second}
}

type eventMessage struct {
	EventID       int64     `json:"event_id"`
	OrderID       string    `json:"order_id"`
	Action        string    `json:"action"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	ActorRole     string    `json:"actor_role"`
	ActorID       string    `json:"actor_id"`
	At            time.Time `json:"at"`
	StatusVersion int       `json:"status_version"`
	CustomerID    string    `json:"customer_id"`
	DriverID      string    `json:"driver_id,omitempty"`
	ZoneID        string    `json:"zone_id"`
	VehicleType   string    `json:"vehicle_type"`
	Currency      string    `json:"currency"`
	Price         int64     `json:"price"`
	Commission    int64     `json:"commission"`
	OperatorCut   int64     `json:"operator_cut"`
	DriverCut     int64     `json:"driver_cut"`
}

// Publish writes the event keyed by order id so one order's events stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event, o Order) error {
	msg := eventMessage{
		EventID:       e.ID,
		OrderID:       string(e.OrderID),
		Action:        string(e.Action),
		From:          string(e.From),
		To:            string(e.To),
		ActorRole:     string(e.ActorRole),
		ActorID:       string(e.ActorID),
		At:            e.At,
		StatusVersion: o.StatusVersion,
		CustomerID:    string(o.CustomerID),
		ZoneID:        o.ZoneID,
		VehicleType:   string(o.VehicleType),
		Currency:      o.Price.Currency,
		Price:         o.Price.Amount,
		Commission:    o.Commission.Amount,
		OperatorCut:   o.OperatorCut.Amount,
		DriverCut:     o.DriverCut.Amount,
	}
	if o.DriverID != nil {
		msg.DriverID = string(*o.DriverID)
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(e.OrderID), Value: b})
}
