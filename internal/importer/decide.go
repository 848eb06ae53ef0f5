package importer

import (
	"fmt"
	"strings"

	"github.com/listenupapp/readinglist-server/internal/domain"
	"github.com/listenupapp/readinglist-server/internal/normalize"
)

// Decision is the outcome for one candidate.
type Decision struct {
	Kind   domain.OutcomeKind
	Reason string
}

// Accepted admits a candidate for ingestion.
func Accepted() Decision { return Decision{Kind: domain.OutcomeAccepted} }

// Skipped marks a candidate as a duplicate or otherwise not imported.
func Skipped(reason string) Decision {
	return Decision{Kind: domain.OutcomeSkipped, Reason: reason}
}

// Rejected marks a candidate as invalid.
func Rejected(reason string) Decision {
	return Decision{Kind: domain.OutcomeRejected, Reason: reason}
}

// Snapshot is the set of dedup keys present before an import starts.
// It does not grow during the batch, so duplicates within one file are
// all accepted.
type Snapshot map[string]struct{}

// NewSnapshot builds the dedup set for books.
func NewSnapshot(books []domain.Book) Snapshot {
	s := make(Snapshot, len(books))
	for _, b := range books {
		s[normalize.DedupKey(b.Title, b.Author)] = struct{}{}
	}
	return s
}

// Contains reports whether the (title, author) pair is already present.
func (s Snapshot) Contains(title, author string) bool {
	_, ok := s[normalize.DedupKey(title, author)]
	return ok
}

// Decide validates then deduplicates one candidate. An unrecognised status
// does not reject the record; it is accepted as Wishlist with a note.
func Decide(c Candidate, existing Snapshot) Decision {
	if c.Problem != "" {
		return Rejected(c.Problem)
	}
	if strings.TrimSpace(c.Title) == "" || strings.TrimSpace(c.Author) == "" {
		return Rejected("title and author are required")
	}
	if existing.Contains(c.Title, c.Author) {
		return Skipped("duplicate of an existing book")
	}
	if c.Status != "" {
		if _, ok := domain.ParseStatus(c.Status); !ok {
			return Decision{
				Kind:   domain.OutcomeAccepted,
				Reason: fmt.Sprintf("unknown status %q stored as %s", c.Status, domain.StatusWishlist),
			}
		}
	}
	return Accepted()
}
