package id_test

import (
	"regexp"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cartkeep/pkg/id"
)

func TestNewCartKey(t *testing.T) {
	t.Parallel()

	t.Run("has fixed hex shape", func(t *testing.T) {
		t.Parallel()

		key := id.NewCartKey()
		assert.Len(t, key, id.CartKeyLength)
		assert.Regexp(t, `^[0-9a-f]+$`, key)
		assert.True(t, id.IsCartKey(key))
	})

	t.Run("generates unique keys", func(t *testing.T) {
		t.Parallel()

		const iterations = 1000
		seen := make(map[string]struct{}, iterations)
		for range iterations {
			key := id.NewCartKey()
			_, dup := seen[key]
			require.False(t, dup, "duplicate cart key: %s", key)
			seen[key] = struct{}{}
		}
	})
}

func TestIsCartKey(t *testing.T) {
	t.Parallel()

	assert.False(t, id.IsCartKey(""))
	assert.False(t, id.IsCartKey("short"))
	assert.False(t, id.IsCartKey("zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz"))
	assert.True(t, id.IsCartKey("0123456789abcdef0123456789abcdef"))
}

func TestNewULID(t *testing.T) {
	t.Parallel()

	t.Run("uses Crockford Base32 with fixed length", func(t *testing.T) {
		t.Parallel()

		ulid := id.NewULID()
		require.Len(t, ulid, 26)
		require.Regexp(t, regexp.MustCompile(`^[0-9A-HJ-NP-TV-Z]+$`), ulid)
	})

	t.Run("sorts by creation time", func(t *testing.T) {
		t.Parallel()

		ids := make([]string, 0, 5)
		for range 5 {
			ids = append(ids, id.NewULID())
			time.Sleep(2 * time.Millisecond)
		}
		require.True(t, sort.StringsAreSorted(ids))
	})
}
