// Package analytics derives reading statistics from a book collection.
// Everything here is a pure function of its arguments.
package analytics

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/listenupapp/readinglist-server/internal/domain"
)

// WindowMonths is the length of the rolling histogram window.
const WindowMonths = 12

// Compute builds a snapshot for books as of now. It returns nil for an
// empty collection. Month boundaries use now's location.
func Compute(books []domain.Book, now time.Time) *domain.StatSnapshot {
	if len(books) == 0 {
		return nil
	}

	byStatus := StatusCounts(books)
	return &domain.StatSnapshot{
		TotalBooks:              len(books),
		BooksByStatus:           byStatus,
		BooksByStatusPercentage: StatusPercentages(byStatus, len(books)),
		BooksAddedPerMonth:      AddedPerMonth(books, now),
		BooksCompletedPerMonth:  CompletedPerMonth(books, now),
		ReadingPace:             Pace(books, now),
		LastCalculated:          now,
	}
}

// StatusCounts counts books per known status. Every status is present.
func StatusCounts(books []domain.Book) map[domain.Status]int {
	counts := make(map[domain.Status]int, len(domain.Statuses))
	for _, st := range domain.Statuses {
		counts[st] = 0
	}
	for _, b := range books {
		if _, ok := counts[b.Status]; ok {
			counts[b.Status]++
		}
	}
	return counts
}

// StatusPercentages rounds each share independently, so the values need
// not sum to 100.
func StatusPercentages(counts map[domain.Status]int, total int) map[domain.Status]int {
	out := make(map[domain.Status]int, len(counts))
	for st, n := range counts {
		if total == 0 {
			out[st] = 0
			continue
		}
		pct, _ := stats.Round(float64(n)/float64(total)*100, 0)
		out[st] = int(pct)
	}
	return out
}

// AddedPerMonth histograms books by creation month.
func AddedPerMonth(books []domain.Book, now time.Time) []domain.MonthCount {
	dates := make([]time.Time, 0, len(books))
	for _, b := range books {
		if !b.CreatedAt.IsZero() {
			dates = append(dates, b.CreatedAt)
		}
	}
	return monthly(dates, now)
}

// CompletedPerMonth histograms Completed books by completion month.
func CompletedPerMonth(books []domain.Book, now time.Time) []domain.MonthCount {
	var dates []time.Time
	for _, b := range books {
		if b.Status == domain.StatusCompleted && b.CompletedAt != nil && !b.CompletedAt.IsZero() {
			dates = append(dates, *b.CompletedAt)
		}
	}
	return monthly(dates, now)
}

type monthKey struct {
	year  int
	month time.Month
}

// monthly pre-seeds the trailing window with zeroes, counts dates into
// their month, keeps older months only when non-empty, and sorts newest
// first.
func monthly(dates []time.Time, now time.Time) []domain.MonthCount {
	loc := now.Location()
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	counts := make(map[monthKey]int, WindowMonths)
	for i := range WindowMonths {
		m := anchor.AddDate(0, -i, 0)
		counts[monthKey{m.Year(), m.Month()}] = 0
	}
	for _, d := range dates {
		d = d.In(loc)
		counts[monthKey{d.Year(), d.Month()}]++
	}

	out := make([]domain.MonthCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, domain.MonthCount{
			Month:       time.Date(k.year, k.month, 1, 0, 0, 0, 0, loc).Format("Jan 2006"),
			Year:        k.year,
			MonthNumber: int(k.month),
			Count:       n,
		})
	}
	slices.SortFunc(out, func(a, b domain.MonthCount) int {
		if c := cmp.Compare(b.Year, a.Year); c != 0 {
			return c
		}
		return cmp.Compare(b.MonthNumber, a.MonthNumber)
	})
	return out
}

// Pace averages pages per whole day over qualifying books:
//   - Completed with a completion date: totalPages / days(created, completed)
//   - Reading with pagesRead > 0: pagesRead / days(created, now)
//
// Books lacking page count or creation date, same-day completions, and
// completions dated before creation are excluded with a warning.
func Pace(books []domain.Book, now time.Time) domain.ReadingPace {
	var (
		paces    []float64
		warnings = []string{}
	)

	for _, b := range books {
		if b.TotalPages <= 0 || b.CreatedAt.IsZero() {
			warnings = append(warnings, excluded(b.Title, "missing required fields"))
			continue
		}

		switch {
		case b.Status == domain.StatusCompleted && b.CompletedAt != nil:
			days := wholeDays(b.CreatedAt, *b.CompletedAt)
			switch {
			case days == 0:
				warnings = append(warnings, excluded(b.Title, "same-day completion"))
			case days < 0:
				warnings = append(warnings, excluded(b.Title, "completed before it was added"))
			default:
				paces = append(paces, float64(b.TotalPages)/float64(days))
			}
		case b.Status == domain.StatusReading && b.PagesRead > 0:
			if days := wholeDays(b.CreatedAt, now); days > 0 {
				paces = append(paces, float64(b.PagesRead)/float64(days))
			}
		}
	}

	if len(paces) == 0 {
		return domain.ReadingPace{Warnings: warnings}
	}

	mean, err := stats.Mean(paces)
	if err != nil {
		return domain.ReadingPace{Warnings: warnings}
	}
	rounded, _ := stats.Round(mean, 1)
	return domain.ReadingPace{PagesPerDay: &rounded, BookCount: len(paces), Warnings: warnings}
}

func wholeDays(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}

func excluded(title, why string) string {
	if title == "" {
		title = "Unknown"
	}
	return fmt.Sprintf("\"%s\" excluded: %s", title, why)
}
