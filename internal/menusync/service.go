// Package menusync applies sync requests from the admin tool to the stored
// menu document: resolve the merge mode, read, merge, write, announce.
package menusync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"sweetyshop/internal/events"
	"sweetyshop/internal/menu"
	"sweetyshop/internal/store"
)

const defaultMaxAttempts = 3

// ErrBadRequest marks input the sync client has to fix before retrying.
var ErrBadRequest = errors.New("bad request")

// Request is one decoded sync call.
type Request struct {
	// Action is "init", "append" or empty to infer from the batch.
	Action string
	// Body carries the incoming batch in Items plus any document fields the
	// client wants to set.
	Body menu.Document
}

type Result struct {
	SyncID   string
	Mode     menu.Mode
	Applied  int
	Total    int
	Attempts int
	Document menu.Document
}

type Service struct {
	store       store.Store
	publisher   events.Publisher
	maxAttempts int
	now         func() time.Time
}

func NewService(st store.Store, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Multi{}
	}
	return &Service{
		store:       st,
		publisher:   publisher,
		maxAttempts: defaultMaxAttempts,
		now:         time.Now,
	}
}

// Current returns the stored document, or the empty document when nothing
// was synced yet.
func (s *Service) Current(ctx context.Context) (menu.Document, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return menu.Document{}, err
	}
	return snap.Document, nil
}

// Apply merges the request into the stored document and persists it. A write
// that loses a race against another sync is retried from a fresh read.
func (s *Service) Apply(ctx context.Context, req Request) (Result, error) {
	mode, err := menu.ResolveMode(req.Action, len(req.Body.Items))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	res := Result{
		SyncID:  uuid.NewString(),
		Mode:    mode,
		Applied: len(req.Body.Items),
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		res.Attempts = attempt

		snap, err := s.store.Load(ctx)
		if err != nil {
			return res, fmt.Errorf("load menu: %w", err)
		}

		next := snap.Document.Overlay(req.Body)
		next.Items = menu.Merge(snap.Document.Items, req.Body.Items, mode)

		err = s.store.Save(ctx, next, snap.Revision)
		if errors.Is(err, store.ErrConflict) {
			log.Printf("[sync %s] concurrent write detected on attempt %d, retrying", res.SyncID, attempt)
			continue
		}
		if err != nil {
			return res, fmt.Errorf("save menu: %w", err)
		}

		res.Total = len(next.Items)
		res.Document = next
		s.announce(ctx, res)
		return res, nil
	}
	return res, fmt.Errorf("save menu after %d attempts: %w", s.maxAttempts, store.ErrConflict)
}

func (s *Service) announce(ctx context.Context, res Result) {
	ev := events.MenuUpdated{
		SyncID:  res.SyncID,
		Action:  res.Mode.String(),
		Applied: res.Applied,
		Total:   res.Total,
		At:      s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		log.Printf("[sync %s] publish menu update: %v", res.SyncID, err)
	}
}

// ParseBody decodes a sync payload. It must be a JSON object whose "menu"
// field is an array of items with non-empty ids.
func ParseBody(data []byte) (menu.Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return menu.Document{}, fmt.Errorf("%w: body is not a JSON object", ErrBadRequest)
	}
	if raw == nil {
		return menu.Document{}, fmt.Errorf("%w: body is not a JSON object", ErrBadRequest)
	}
	items, ok := raw[menu.ItemsKey]
	if !ok {
		return menu.Document{}, fmt.Errorf("%w: missing %q", ErrBadRequest, menu.ItemsKey)
	}
	if trimmed := strings.TrimSpace(string(items)); !strings.HasPrefix(trimmed, "[") {
		return menu.Document{}, fmt.Errorf("%w: %q must be an array", ErrBadRequest, menu.ItemsKey)
	}

	var doc menu.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return menu.Document{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	for i, it := range doc.Items {
		if strings.TrimSpace(it.ID) == "" {
			return menu.Document{}, fmt.Errorf("%w: item %d has no id", ErrBadRequest, i)
		}
	}
	return doc, nil
}
