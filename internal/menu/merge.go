package menu

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects how an incoming batch is combined with the stored items.
type Mode int

const (
	// Replace discards the stored items; the batch becomes the whole menu.
	Replace Mode = iota
	// Append upserts the batch by id, keeping untouched items in place.
	Append
)

const (
	ActionInit   = "init"
	ActionAppend = "append"
)

var ErrUnknownAction = errors.New("unknown sync action")

func (m Mode) String() string {
	switch m {
	case Replace:
		return ActionInit
	case Append:
		return ActionAppend
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ResolveMode maps the optional action selector to a merge mode. Without an
// explicit action an empty batch clears the menu and a non-empty one appends.
func ResolveMode(action string, incoming int) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case ActionInit:
		return Replace, nil
	case ActionAppend:
		return Append, nil
	case "":
		if incoming == 0 {
			return Replace, nil
		}
		return Append, nil
	default:
		return Replace, fmt.Errorf("%w %q", ErrUnknownAction, action)
	}
}

// Merge combines existing and incoming items. Under Append every incoming item
// evicts any accumulated item with the same id and is appended at the end, so
// the last occurrence of an id decides both its content and its position.
func Merge(existing, incoming []Item, mode Mode) []Item {
	if mode == Replace {
		out := make([]Item, len(incoming))
		copy(out, incoming)
		return out
	}

	out := make([]Item, 0, len(existing)+len(incoming))
	out = append(out, existing...)
	for _, it := range incoming {
		out = removeItem(out, it.ID)
		out = append(out, it)
	}
	return out
}

func removeItem(items []Item, id string) []Item {
	kept := items[:0]
	for _, it := range items {
		if it.ID == id {
			continue
		}
		kept = append(kept, it)
	}
	return kept
}
