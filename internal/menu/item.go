package menu

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Item is one product on the menu. The sync client owns its content: every
// field other than the id is kept in Fields exactly as received and written
// back unchanged. The accessors read the fields the storefront understands.
type Item struct {
	ID     string
	Fields map[string]json.RawMessage

	// rawID is the id as the sync client sent it, string or number.
	rawID json.RawMessage
}

// NewItem returns an item with only an id.
func NewItem(id string) Item {
	return Item{ID: id}
}

// With returns a copy of it with key set to the JSON encoding of value.
// value must be JSON-encodable.
func (it Item) With(key string, value any) Item {
	raw, err := json.Marshal(value)
	if err != nil {
		panic(fmt.Sprintf("menu: item field %q: %v", key, err))
	}
	fields := make(map[string]json.RawMessage, len(it.Fields)+1)
	for k, v := range it.Fields {
		fields[k] = v
	}
	fields[key] = raw
	it.Fields = fields
	return it
}

func (it Item) Name() string     { return it.stringField("name") }
func (it Item) Category() string { return it.stringField("category") }
func (it Item) ImageURL() string { return it.stringField("imageUrl") }

// Price reads the price as a number. Numeric strings such as "3.50" count.
func (it Item) Price() (float64, bool) {
	return numberField(it.Fields["price"])
}

// Stock reads the stock level. ok is false when the item carries no usable
// stock value; null counts as zero.
func (it Item) Stock() (int, bool) {
	raw := bytes.TrimSpace(it.Fields["stock"])
	if bytes.Equal(raw, []byte("null")) {
		return 0, true
	}
	n, ok := numberField(raw)
	if !ok {
		return 0, false
	}
	return int(math.Floor(n)), true
}

// Available reports whether the item can currently be ordered. Items without
// a stock value are orderable.
func (it Item) Available() bool {
	stock, ok := it.Stock()
	return !ok || stock > 0
}

func (it Item) stringField(key string) string {
	var s string
	if err := json.Unmarshal(it.Fields[key], &s); err != nil {
		return ""
	}
	return s
}

func numberField(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

func (it *Item) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return errors.New("menu item must be an object")
	}

	rawID := raw["id"]
	id, err := decodeItemID(rawID)
	if err != nil {
		return err
	}
	delete(raw, "id")
	if len(raw) == 0 {
		raw = nil
	}

	*it = Item{ID: id, Fields: raw}
	if id != "" {
		it.rawID = rawID
	}
	return nil
}

func (it Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(it.Fields)+1)
	for key, value := range it.Fields {
		out[key] = value
	}

	// The received id form is kept unless the id was changed since.
	if sent, err := decodeItemID(it.rawID); err == nil && sent != "" && sent == it.ID {
		out["id"] = it.rawID
	} else {
		id, err := json.Marshal(it.ID)
		if err != nil {
			return nil, err
		}
		out["id"] = id
	}
	return json.Marshal(out)
}

// decodeItemID accepts ids sent as strings or as plain JSON numbers.
func decodeItemID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return "", fmt.Errorf("menu item id must be a string or number: %w", err)
	}
	return strings.TrimSpace(n.String()), nil
}
