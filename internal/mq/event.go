package mq

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Event is the envelope every message on the exchange uses. Type matches
// the routing key the event was published under; ID makes redeliveries
// recognizable to consumers.
type Event struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func NewEvent(eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:   uuid.NewString(),
		Type: eventType,
		Data: data,
	}, nil
}
