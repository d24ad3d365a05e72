package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abunai/impact/internal/ir"
)

// timeLayout is the storage format of timestamps. Fixed width and always UTC,
// so string order is time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// marshalIDs converts an element id list to JSON TEXT for storage.
// HTML escaping is disabled so ids are stored verbatim.
func marshalIDs(ids []ir.ElementID) (string, error) {
	if ids == nil {
		ids = []ir.ElementID{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ids); err != nil {
		return "", fmt.Errorf("marshal ids: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalIDs parses JSON TEXT into an element id list. Never returns nil.
func unmarshalIDs(data string) ([]ir.ElementID, error) {
	ids := []ir.ElementID{}
	if data == "" || data == "[]" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return nil, fmt.Errorf("unmarshal ids: %w", err)
	}
	return ids, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
