// Package events announces menu changes to storefront pages and other
// listeners once a sync has been persisted.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

const TypeMenuUpdated = "menu.updated"

// MenuUpdated describes a persisted sync.
type MenuUpdated struct {
	SyncID  string    `json:"syncId"`
	Action  string    `json:"action"`
	Applied int       `json:"applied"`
	Total   int       `json:"total"`
	At      time.Time `json:"at"`
}

// Envelope is the frame sent to subscribers.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, ev MenuUpdated) error
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev MenuUpdated) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func encode(eventType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: eventType, Payload: raw})
}
