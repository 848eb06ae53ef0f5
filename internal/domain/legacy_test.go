package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegacyBook_Upgrade_Defaults(t *testing.T) {
	raw := `{"bookId":"b1","userId":"u1","title":"Emma","author":"Austen","status":"completed",
		"totalPages":300,"dateAdded":"2023-05-01T10:00:00Z","dateCompleted":"2023-06-01T10:00:00Z"}`

	var l LegacyBook
	require.NoError(t, json.Unmarshal([]byte(raw), &l))
	b := l.Upgrade()

	assert.Equal(t, CurrentSchemaVersion, b.SchemaVersion)
	assert.Equal(t, StatusCompleted, b.Status)
	assert.Equal(t, 0, b.CurrentPage)
	assert.Equal(t, 100, b.Progress)
	assert.Nil(t, b.ISBN)
	assert.Nil(t, b.Notes)
	assert.Nil(t, b.Rating)
	assert.Equal(t, time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC), b.CreatedAt.UTC())
	require.NotNil(t, b.CompletedAt)
	assert.Equal(t, time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC), b.CompletedAt.UTC())
}

func TestLegacyBook_Upgrade_KeepsPopulatedFields(t *testing.T) {
	raw := `{"bookId":"b1","userId":"u1","title":"Emma","author":"Austen","status":"Reading",
		"totalPages":300,"currentPage":30,"progress":10,"isbn":"0306406152","notes":"good",
		"rating":3.5,"createdAt":"2023-05-01T10:00:00Z","completedAt":null}`

	var l LegacyBook
	require.NoError(t, json.Unmarshal([]byte(raw), &l))
	b := l.Upgrade()

	assert.Equal(t, 30, b.CurrentPage)
	assert.Equal(t, 10, b.Progress)
	require.NotNil(t, b.ISBN)
	assert.Equal(t, "0306406152", *b.ISBN)
	require.NotNil(t, b.Notes)
	assert.Equal(t, "good", *b.Notes)
	require.NotNil(t, b.Rating)
	assert.InDelta(t, 3.5, *b.Rating, 0)
	assert.Nil(t, b.CompletedAt)
}

func TestLegacyBook_Upgrade_NonCompletedProgressDefault(t *testing.T) {
	var l LegacyBook
	require.NoError(t, json.Unmarshal([]byte(`{"title":"X","author":"Y","status":"wishlist"}`), &l))
	b := l.Upgrade()
	assert.Equal(t, StatusWishlist, b.Status)
	assert.Equal(t, 0, b.Progress)

	var missing LegacyBook
	require.NoError(t, json.Unmarshal([]byte(`{"title":"X","author":"Y"}`), &missing))
	assert.Equal(t, StatusWishlist, missing.Upgrade().Status)
}

func TestLegacyBook_Upgrade_Idempotent(t *testing.T) {
	raw := `[{"bookId":"b1","title":"Emma","author":"Austen","status":"completed","totalPages":300,
		"dateAdded":"2023-05-01T10:00:00Z"},{"bookId":"b2","title":"Ulysses","author":"Joyce",
		"status":"Reading","totalPages":700,"currentPage":70,"createdAt":"2023-01-01T00:00:00Z"}]`

	once := upgradeAll(t, []byte(raw))
	twice := upgradeAll(t, once)
	assert.Equal(t, string(once), string(twice))
}

func upgradeAll(t *testing.T, data []byte) []byte {
	t.Helper()
	var legacy []LegacyBook
	require.NoError(t, json.Unmarshal(data, &legacy))
	books := make([]Book, 0, len(legacy))
	for _, l := range legacy {
		books = append(books, l.Upgrade())
	}
	out, err := json.Marshal(books)
	require.NoError(t, err)
	return out
}
