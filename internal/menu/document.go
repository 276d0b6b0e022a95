package menu

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

// ItemsKey is the wire name of the item list inside a menu document.
const ItemsKey = "menu"

var documentKnownKeys = []string{ItemsKey, "isOpen", "timestamp"}

// Document is the single persisted menu record. Top-level fields outside the
// known schema are carried in Extra so a round trip never loses data.
type Document struct {
	Items     []Item
	IsOpen    *bool
	Timestamp *Timestamp
	Extra     map[string]json.RawMessage
}

// Empty returns the document served before anything has been synced.
func Empty() Document {
	return Document{Items: []Item{}}
}

// Open reports the shop-open flag; an unset flag means open.
func (d Document) Open() bool {
	if d.IsOpen == nil {
		return true
	}
	return *d.IsOpen
}

// Overlay returns a copy of d where every non-item field present in patch
// replaces the corresponding field of d. Items are left as they are in d.
func (d Document) Overlay(patch Document) Document {
	out := Document{
		Items:     d.Items,
		IsOpen:    d.IsOpen,
		Timestamp: d.Timestamp,
	}
	if patch.IsOpen != nil {
		v := *patch.IsOpen
		out.IsOpen = &v
	}
	if patch.Timestamp != nil {
		ts := *patch.Timestamp
		out.Timestamp = &ts
	}

	if len(d.Extra)+len(patch.Extra) > 0 {
		out.Extra = make(map[string]json.RawMessage, len(d.Extra)+len(patch.Extra))
		for key, value := range d.Extra {
			out.Extra[key] = value
		}
		for key, value := range patch.Extra {
			out.Extra[key] = value
		}
	}
	return out
}

// ItemIDs lists item ids in display order.
func (d Document) ItemIDs() []string {
	ids := make([]string, 0, len(d.Items))
	for _, it := range d.Items {
		ids = append(ids, it.ID)
	}
	return ids
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return errors.New("menu document must be an object")
	}

	out := Document{Items: []Item{}}
	if itemsRaw, ok := raw[ItemsKey]; ok && !isNull(itemsRaw) {
		if err := json.Unmarshal(itemsRaw, &out.Items); err != nil {
			return err
		}
		if out.Items == nil {
			out.Items = []Item{}
		}
	}
	if openRaw, ok := raw["isOpen"]; ok && !isNull(openRaw) {
		var open bool
		if err := json.Unmarshal(openRaw, &open); err != nil {
			return err
		}
		out.IsOpen = &open
	}
	if tsRaw, ok := raw["timestamp"]; ok && !isNull(tsRaw) {
		var ts Timestamp
		if err := json.Unmarshal(tsRaw, &ts); err != nil {
			return err
		}
		out.Timestamp = &ts
	}

	for _, key := range documentKnownKeys {
		delete(raw, key)
	}
	if len(raw) > 0 {
		out.Extra = raw
	}

	*d = out
	return nil
}

func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Extra)+len(documentKnownKeys))
	for key, value := range d.Extra {
		out[key] = value
	}
	items := d.Items
	if items == nil {
		items = []Item{}
	}
	out[ItemsKey] = items
	if d.IsOpen != nil {
		out["isOpen"] = *d.IsOpen
	}
	if d.Timestamp != nil {
		out["timestamp"] = d.Timestamp
	}
	return json.Marshal(out)
}

// Timestamp is the writer-supplied point in time of a document. Sync clients
// send either an RFC3339 string or epoch milliseconds; the original form is
// written back as received.
type Timestamp struct {
	raw json.RawMessage
}

// NewTimestamp builds an RFC3339 timestamp.
func NewTimestamp(t time.Time) Timestamp {
	b, _ := json.Marshal(t.UTC().Format(time.RFC3339Nano))
	return Timestamp{raw: b}
}

// Time interprets the timestamp. ok is false when the value is not a
// recognizable date.
func (ts Timestamp) Time() (time.Time, bool) {
	if len(ts.raw) == 0 {
		return time.Time{}, false
	}
	if ts.raw[0] == '"' {
		var s string
		if err := json.Unmarshal(ts.raw, &s); err != nil {
			return time.Time{}, false
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000Z07:00"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}
	ms, err := strconv.ParseFloat(string(ts.raw), 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)).UTC(), true
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("empty timestamp")
	}
	switch {
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	default:
		if _, err := strconv.ParseFloat(string(data), 64); err != nil {
			return errors.New("timestamp must be a string or a number")
		}
	}
	ts.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if len(ts.raw) == 0 {
		return []byte("null"), nil
	}
	return ts.raw, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
