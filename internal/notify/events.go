package notify

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const EventOrderPlaced = "OrderPlaced"

// Envelope wraps every notification event published to the topic.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	AccountID  string          `json:"account_id"`
	Payload    json.RawMessage `json:"payload"`
}

// OrderPlacedPayload tells the notification service to inform the customer
// their order was placed and awaits confirmation from the shop.
type OrderPlacedPayload struct {
	BillID string `json:"bill_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

func newEnvelope(eventType, accountID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:    uuid.New().String(),
		EventType:  eventType,
		OccurredAt: time.Now(),
		AccountID:  accountID,
		Payload:    raw,
	}, nil
}
