package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/readinglist-server/internal/domain"
	domainerrors "github.com/listenupapp/readinglist-server/internal/errors"
	"github.com/listenupapp/readinglist-server/internal/importer"
)

const sampleCSV = `title,author,status,totalPages,currentPage,isbn,notes,rating,dateCompleted
Dune,Frank Herbert,Completed,412,412,9780306406157,,5,2024-03-02
Emma,Jane Austen,reading,300,150,,,,
,Nobody,Wishlist,,,,,,
Dune,Frank Herbert,Reading,412,10,,,,
`

func TestImportService_Import(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	sess := testSession("u1")

	// Duplicates are judged against the collection as it was before the
	// batch, so the repeated Dune row is imported too.
	summary, err := env.Imports.Import(ctx, sess, importer.FormatCSV, []byte(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 3, summary.Imported)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.Skipped)

	books, err := env.Books.ListBooks(ctx, sess)
	require.NoError(t, err)
	assert.Len(t, books, 3)

	// A second pass finds every valid record already present.
	summary, err = env.Imports.Import(ctx, sess, importer.FormatCSV, []byte(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Imported)
	assert.Equal(t, 3, summary.Skipped)
}

func TestImportService_ParseFailure(t *testing.T) {
	env := setupServices(t)

	_, err := env.Imports.Import(context.Background(), testSession("u1"), importer.FormatJSON, []byte(`{"title":"x"}`))
	assert.ErrorIs(t, err, domainerrors.ErrParse)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 400, domainErr.HTTPStatus())
}

func TestExportService_Export(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	sess := testSession("u1")

	_, err := env.Books.CreateBook(ctx, sess, CreateBookRequest{Title: "Dune", Author: "Frank Herbert", TotalPages: 412})
	require.NoError(t, err)

	out, err := env.Exports.Export(ctx, sess, importer.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "reading-list-u1-2024-06-15T120000Z.json", out.Filename)
	assert.Equal(t, ContentTypeJSON, out.ContentType)
	assert.Contains(t, string(out.Data), `"title": "Dune"`)

	xlsx, err := env.Exports.Export(ctx, sess, importer.FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, ContentTypeXLSX, xlsx.ContentType)

	// Re-importing the export into a fresh collection brings every book back.
	summary, err := env.Imports.Import(ctx, testSession("u2"), importer.FormatXLSX, xlsx.Data)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)

	_, err = env.Exports.Export(ctx, sess, importer.FormatCSV)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestStatsService_Stats(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	sess := testSession("u1")

	snap, err := env.Stats.Stats(ctx, sess)
	require.NoError(t, err)
	assert.Nil(t, snap)

	_, err = env.Books.CreateBook(ctx, sess, CreateBookRequest{Title: "Dune", Author: "Frank Herbert", Status: "Completed", TotalPages: 400})
	require.NoError(t, err)
	_, err = env.Books.CreateBook(ctx, sess, CreateBookRequest{Title: "Emma", Author: "Jane Austen", TotalPages: 474})
	require.NoError(t, err)

	snap, err = env.Stats.Stats(ctx, sess)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 2, snap.TotalBooks)
	assert.Equal(t, 1, snap.BooksByStatus[domain.StatusCompleted])
	assert.Equal(t, 1, snap.BooksByStatus[domain.StatusWishlist])
	assert.True(t, snap.LastCalculated.Equal(testNow))

	// Created and completed at the same instant: excluded from pace.
	assert.Nil(t, snap.ReadingPace.PagesPerDay)
	assert.Contains(t, snap.ReadingPace.Warnings, `"Dune" excluded: same-day completion`)
}

func TestSearchService_Search(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	sess := testSession("u1")

	dune, err := env.Books.CreateBook(ctx, sess, CreateBookRequest{Title: "Dune", Author: "Frank Herbert", TotalPages: 412})
	require.NoError(t, err)
	_, err = env.Books.CreateBook(ctx, sess, CreateBookRequest{Title: "Emma", Author: "Jane Austen", TotalPages: 474})
	require.NoError(t, err)
	_, err = env.Books.CreateBook(ctx, testSession("u2"), CreateBookRequest{Title: "Dune", Author: "Frank Herbert", TotalPages: 412})
	require.NoError(t, err)

	res, err := env.Search.Search(ctx, sess, "herb", 0, 0)
	require.NoError(t, err)
	require.Len(t, res.Books, 1)
	assert.Equal(t, dune.BookID, res.Books[0].BookID)

	// Edits and deletes flow through to the index.
	_, err = env.Books.UpdateBook(ctx, sess, dune.BookID, UpdateBookRequest{Title: ptr("Dune Messiah")})
	require.NoError(t, err)
	res, err = env.Search.Search(ctx, sess, "messiah", 0, 0)
	require.NoError(t, err)
	assert.Len(t, res.Books, 1)

	require.NoError(t, env.Books.DeleteBook(ctx, sess, dune.BookID))
	res, err = env.Search.Search(ctx, sess, "dune", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Books)

	n, err := env.Search.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSearchService_ImportedBooksAreSearchable(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	sess := testSession("u1")

	_, err := env.Imports.Import(ctx, sess, importer.FormatCSV, []byte(sampleCSV))
	require.NoError(t, err)

	res, err := env.Search.Search(ctx, sess, "austen", 10, 0)
	require.NoError(t, err)
	require.Len(t, res.Books, 1)
	assert.Equal(t, "Emma", res.Books[0].Title)
	assert.True(t, res.Books[0].CreatedAt.Equal(testNow))
}
