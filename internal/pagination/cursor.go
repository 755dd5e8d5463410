// Package pagination implements opaque keyset cursors for time-ordered
// listings. Readings page on their recording time and alerts on their
// creation time, so the cursor carries a generic ordering timestamp plus
// the row ID as a tiebreaker.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cursor is a decoded position in a time-ordered result set.
type Cursor struct {
	Timestamp time.Time
	ID        string
}

// Encode returns the opaque cursor string for a (timestamp, id) position.
func Encode(ts time.Time, id string) string {
	raw := strconv.FormatInt(ts.UnixNano(), 10) + "|" + id
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// Decode parses an opaque cursor. Empty input decodes to a nil cursor,
// meaning "start from the newest row".
func Decode(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}
	raw, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor")
	}
	nanosStr, id, ok := strings.Cut(string(raw), "|")
	if !ok {
		return nil, fmt.Errorf("invalid cursor")
	}
	nanos, err := strconv.ParseInt(nanosStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor")
	}
	return &Cursor{
		Timestamp: time.Unix(0, nanos).UTC(),
		ID:        id,
	}, nil
}

// ComputePage trims a limit+1 fetch down to one page. extractKey reports
// the (timestamp, id) ordering key of an item; the next cursor points at
// the last item kept.
func ComputePage[T any](items []T, limit int, extractKey func(T) (time.Time, string)) ([]T, string, bool) {
	if len(items) <= limit {
		return items, "", false
	}
	items = items[:limit]
	ts, id := extractKey(items[len(items)-1])
	return items, Encode(ts, id), true
}
