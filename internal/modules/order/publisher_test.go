package order

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"waslhaa/internal/types"
)

type captureWriter struct {
	msgs []kafka.Message
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestKafkaPublisherKeysByOrder(t *testing.T) {
	w := &captureWriter{}
	p := NewKafkaPublisher(w)
	driverID := types.ID("d1")
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	o := Order{
		ID:            "o1",
		CustomerID:    "c1",
		DriverID:      &driverID,
		ZoneID:        "main",
		Status:        StatusAccepted,
		StatusVersion: 1,
		Price:         types.Money{Amount: 2700, Currency: "EGP"},
		DriverCut:     types.Money{Amount: 1890, Currency: "EGP"},
	}
	e := Event{ID: 9, OrderID: "o1", From: StatusPending, To: StatusAccepted, Action: ActionAccept, ActorRole: types.RoleDriver, ActorID: "d1", At: at}

	if err := p.Publish(context.Background(), e, o); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(w.msgs) != 1 || string(w.msgs[0].Key) != "o1" {
		t.Fatalf("unexpected messages: %+v", w.msgs)
	}
	var got map[string]any
	if err := json.Unmarshal(w.msgs[0].Value, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["to"] != "ACCEPTED" || got["driver_id"] != "d1" || got["price"] != float64(2700) || got["event_id"] != float64(9) {
		t.Fatalf("unexpected payload: %v", got)
	}
}
