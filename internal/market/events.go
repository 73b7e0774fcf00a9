package market

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventReservationCreated = "ReservationCreated"
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventPlantUpdated       = "PlantUpdated"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

func NewEnvelope(eventType, producer, correlationID string, payload any) Envelope {
	b, _ := json.Marshal(payload)
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       b,
	}
}

// UnwrapPayload decodes the event-specific payload.
func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	err := json.Unmarshal(payload, &t)
	return t, err
}

// Publisher fans domain events out to the bus. The core never requires a
// running broker; wire NopPublisher when events are disabled.
type Publisher interface {
	Publish(topic string, key []byte, env Envelope)
}

type NopPublisher struct{}

func (NopPublisher) Publish(string, []byte, Envelope) {}

// ---- payload per event ----

type ReservationCreatedPayload struct {
	ReservationID string `json:"reservation_id"`
	CustomerID    string `json:"customer_id"`
	PlantID       string `json:"plant_id"`
	PlantName     string `json:"plant_name"`
	Qty           int    `json:"qty"`
	StockLeft     int    `json:"stock_left"`
}

type OrderCreatedPayload struct {
	OrderID    string      `json:"order_id"`
	CustomerID string      `json:"customer_id"`
	Items      []OrderItem `json:"items"`
	Total      float64     `json:"total"`
}

type OrderStatusChangedPayload struct {
	OrderID    string `json:"order_id"`
	CustomerID string `json:"customer_id"`
	Status     Status `json:"status"`
}

type PlantUpdatedPayload struct {
	PlantID string  `json:"plant_id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Stock   int     `json:"stock"`
}
