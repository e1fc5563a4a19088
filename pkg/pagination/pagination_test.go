package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-3))
	assert.Equal(t, 10, NormalizeLimit(10))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
}

func TestPageWalksAllItems(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	var (
		seen   []int
		cursor string
	)
	for i := 0; i < 10; i++ {
		page, next, err := Page(items, Params{Limit: 2, Cursor: cursor})
		require.NoError(t, err)
		seen = append(seen, page...)
		if next == "" {
			break
		}
		cursor = next
	}
	assert.Equal(t, items, seen)
}

func TestPageEdges(t *testing.T) {
	page, next, err := Page([]string{"a"}, Params{Cursor: EncodeCursor(5)})
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.Empty(t, next)

	_, _, err = Page([]string{"a"}, Params{Cursor: "!!"})
	assert.Error(t, err)

	_, err = ParseCursor(EncodeCursor(-1))
	assert.Error(t, err)

	offset, err := ParseCursor(EncodeCursor(3))
	require.NoError(t, err)
	assert.Equal(t, 3, offset)
}
