package watcher

import (
	"path/filepath"
	"strings"
	"time"
)

// Options configures the file watcher behavior.
type Options struct {
	// SettleDelay is how long a file's size and mtime must stay unchanged
	// before it is reported.
	SettleDelay    time.Duration
	IgnorePatterns []string
	IgnoreHidden   bool
}

// setDefaults applies default values to unset options.
func (o *Options) setDefaults() {
	if o.SettleDelay <= 0 {
		o.SettleDelay = 2 * time.Second
	}

	// A nil pattern list means "not configured": use the editor and OS
	// droppings and skip hidden files. An explicit empty list is respected.
	if o.IgnorePatterns == nil {
		o.IgnorePatterns = []string{
			".DS_Store",
			"Thumbs.db",
			"*.tmp",
			"*.temp",
			"*.part",
			"*.crdownload",
			"~$*",
		}
		o.IgnoreHidden = true
	}
}

// shouldIgnore reports whether the last element of path matches the ignore
// rules. Directories are checked when they are added, so a hidden
// directory's contents are never seen.
func (o *Options) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if o.IgnoreHidden && strings.HasPrefix(base, ".") && base != "." && base != ".." {
		return true
	}

	for _, pattern := range o.IgnorePatterns {
		if matched, err := filepath.Match(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}
