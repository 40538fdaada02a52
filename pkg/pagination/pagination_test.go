package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2025, 3, 1, 9, 30, 0, 123, time.UTC), ID: uuid.New(), Scope: "bookings:settler:5"}
	out, err := ParseCursor(EncodeCursor(in), in.Scope)
	require.NoError(t, err)
	assert.True(t, out.CreatedAt.Equal(in.CreatedAt))
	assert.Equal(t, in.ID, out.ID)

	blank, err := ParseCursor("  ", "any")
	assert.NoError(t, err)
	assert.Nil(t, blank)
}

func TestParseCursorRejectsForeignScope(t *testing.T) {
	token := EncodeCursor(Cursor{CreatedAt: time.Now(), ID: uuid.New(), Scope: "bookings:customer:all"})
	_, err := ParseCursor(token, "bookings:customer:3")
	assert.ErrorIs(t, err, ErrCursorScope)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	for _, bad := range []string{
		"%%%",
		base64.RawURLEncoding.EncodeToString([]byte("not json")),
		base64.RawURLEncoding.EncodeToString([]byte(`{"s":"x"}`)),
	} {
		_, err := ParseCursor(bad, "x")
		assert.Error(t, err, bad)
	}
}

func TestNormalizeLimit(t *testing.T) {
	cases := map[int]int{0: DefaultLimit, -3: DefaultLimit, 10: 10, 500: MaxLimit}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeLimit(in), "limit %d", in)
	}
	assert.Equal(t, 11, LimitWithBuffer(10))
}

func TestBuildPage(t *testing.T) {
	type row struct {
		id uuid.UUID
		at time.Time
	}
	base := time.Now().UTC()
	rows := []row{{uuid.New(), base}, {uuid.New(), base.Add(-time.Minute)}, {uuid.New(), base.Add(-2 * time.Minute)}}
	position := func(r row) (time.Time, uuid.UUID) { return r.at, r.id }

	page := BuildPage(rows, 2, "scope", position)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)
	next, err := ParseCursor(page.NextCursor, "scope")
	require.NoError(t, err)
	assert.Equal(t, rows[1].id, next.ID)

	last := BuildPage(rows[:1], 2, "scope", position)
	assert.Empty(t, last.NextCursor)
	assert.Len(t, last.Items, 1)

	empty := BuildPage[row](nil, 2, "scope", position)
	assert.NotNil(t, empty.Items)
}
