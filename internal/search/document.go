// Package search keeps a bleve index of book titles and authors so a user
// can find books in their own collection by substring.
package search

import (
	"strings"

	"github.com/listenupapp/readinglist-server/internal/domain"
)

// Document is what gets indexed for one book.
type Document struct {
	UserID string `json:"user_id"`
	BookID string `json:"book_id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// FromBook builds the index document for b.
func FromBook(b *domain.Book) *Document {
	return &Document{
		UserID: b.UserID,
		BookID: b.BookID,
		Title:  b.Title,
		Author: b.Author,
	}
}

// docID scopes a book id by its owner. Two users never share an index entry.
func docID(userID, bookID string) string {
	return userID + "/" + bookID
}

// ID returns the index key of the document.
func (d *Document) ID() string {
	return docID(d.UserID, d.BookID)
}

// toMap matches the lowercase field names of the mapping; bleve would
// otherwise index Go field names.
func (d *Document) toMap() map[string]any {
	return map[string]any{
		"user_id": d.UserID,
		"book_id": d.BookID,
		"title":   strings.TrimSpace(d.Title),
		"author":  strings.TrimSpace(d.Author),
	}
}
