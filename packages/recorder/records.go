package recorder

import (
	"slices"
	"time"
)

type RequestRecord struct {
	URL    string
	Method string
	// RedirectedFrom is the URL of the request redirected to this one, or "".
	RedirectedFrom string
	Time           time.Time
}

type ResponseRecord struct {
	URL    string
	Status int
	Time   time.Time
}

type DownloadRecord struct {
	SuggestedFilename string
	Time              time.Time
}

// eventLog is an append-only log. With a positive max the oldest entries are
// evicted first. Not safe for concurrent use on its own.
type eventLog[T any] struct {
	items []T
	max   int
}

func (l *eventLog[T]) add(v T) {
	if l.max > 0 && len(l.items) >= l.max {
		n := copy(l.items, l.items[len(l.items)-l.max+1:])
		l.items = l.items[:n]
	}
	l.items = append(l.items, v)
}

func (l *eventLog[T]) snapshot() []T {
	return slices.Clone(l.items)
}
