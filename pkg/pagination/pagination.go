package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

// ErrCursorScope is returned when a cursor minted for one listing (say,
// settler bookings filtered by status) is replayed against another.
var ErrCursorScope = errors.New("cursor does not belong to this listing")

// Page is one keyset page, newest first.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// Cursor is the (created_at, id) keyset position of the last row served,
// tagged with the listing scope it was issued for.
type Cursor struct {
	CreatedAt time.Time `json:"t"`
	ID        uuid.UUID `json:"id"`
	Scope     string    `json:"s,omitempty"`
}

func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// LimitWithBuffer asks the query for one extra row so BuildPage can tell
// whether another page exists.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// EncodeCursor renders an opaque URL-safe token.
func EncodeCursor(cursor Cursor) string {
	cursor.CreatedAt = cursor.CreatedAt.UTC()
	raw, _ := json.Marshal(cursor)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// ParseCursor decodes value and checks it was issued for scope. A blank
// value means the first page and yields (nil, nil).
func ParseCursor(value, scope string) (*Cursor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	var cursor Cursor
	if err := json.Unmarshal(raw, &cursor); err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	if cursor.CreatedAt.IsZero() || cursor.ID == uuid.Nil {
		return nil, errors.New("cursor is incomplete")
	}
	if cursor.Scope != scope {
		return nil, ErrCursorScope
	}
	return &cursor, nil
}

// BuildPage drops the buffer row fetched via LimitWithBuffer and issues the
// next cursor from the last row kept.
func BuildPage[T any](rows []T, limit int, scope string, position func(T) (time.Time, uuid.UUID)) Page[T] {
	limit = NormalizeLimit(limit)
	if len(rows) <= limit {
		if rows == nil {
			rows = []T{}
		}
		return Page[T]{Items: rows}
	}
	items := rows[:limit]
	at, id := position(items[limit-1])
	return Page[T]{
		Items:      items,
		NextCursor: EncodeCursor(Cursor{CreatedAt: at, ID: id, Scope: scope}),
	}
}
