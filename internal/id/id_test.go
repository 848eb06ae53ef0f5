package id

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		v, err := Generate(PrefixBook)
		require.NoError(t, err)
		assert.False(t, seen[v], "duplicate id: %s", v)
		seen[v] = true
	}
	assert.Len(t, seen, 1000)
}

func TestGenerate_Format(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"book", PrefixBook},
		{"user", PrefixUser},
		{"session", PrefixSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Generate(tt.prefix)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(v, tt.prefix+"-"))

			rest := strings.TrimPrefix(v, tt.prefix+"-")
			assert.Len(t, rest, 21)
			for _, r := range rest {
				ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
					(r >= '0' && r <= '9') || r == '_' || r == '-'
				assert.True(t, ok, "unexpected rune %q in %s", r, v)
			}
		})
	}
}

func TestBook(t *testing.T) {
	v, err := Book()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(v, "book-"))
}

func TestBatch(t *testing.T) {
	a, b := Batch(), Batch()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.True(t, strings.HasPrefix(MustGenerate(PrefixUser), "user-"))
	})
}
