package watcher

import "time"

// Event reports a file that appeared or changed and has since settled.
type Event struct {
	Path    string
	Size    int64
	ModTime time.Time
}
