package domain

import "time"

// MonthCount is one histogram bucket.
type MonthCount struct {
	Month       string `json:"month"` // "Jan 2024"
	Year        int    `json:"year"`
	MonthNumber int    `json:"monthNumber"` // 1-12
	Count       int    `json:"count"`
}

// ReadingPace is the mean pages per day over qualifying books.
// PagesPerDay is nil when no book qualified.
type ReadingPace struct {
	PagesPerDay *float64 `json:"pagesPerDay"`
	BookCount   int      `json:"bookCount"`
	Warnings    []string `json:"warnings"`
}

// StatSnapshot is derived from a user's collection on demand.
type StatSnapshot struct {
	TotalBooks              int            `json:"totalBooks"`
	BooksByStatus           map[Status]int `json:"booksByStatus"`
	BooksByStatusPercentage map[Status]int `json:"booksByStatusPercentage"`
	BooksAddedPerMonth      []MonthCount   `json:"booksAddedPerMonth"`
	BooksCompletedPerMonth  []MonthCount   `json:"booksCompletedPerMonth"`
	ReadingPace             ReadingPace    `json:"readingPace"`
	LastCalculated          time.Time      `json:"lastCalculated"`
}
