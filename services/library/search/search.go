package search

import (
	"strings"
	"sync"
	"time"

	"github.com/rhythmerc/steamshelf/services/library/models"
)

// DefaultQuietPeriod is how long input must stay quiet before a query runs.
const DefaultQuietPeriod = 200 * time.Millisecond

// Filter returns the app ids whose names contain query, case-insensitively.
// A blank (empty or whitespace-only) query returns nil, the "no filter, show
// everything" sentinel; a query that matches nothing returns an empty,
// non-nil set. The snapshot is never mutated.
func Filter(snapshot []models.Game, query string) map[int]struct{} {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	query = strings.ToLower(query)
	matches := make(map[int]struct{})
	for _, g := range snapshot {
		if strings.Contains(strings.ToLower(g.Name), query) {
			matches[g.AppID] = struct{}{}
		}
	}

	return matches
}

// Debouncer defers query execution until input has been quiet for the
// configured period and guarantees that results are applied in invocation
// order: a slow filter for an older query can never overwrite the result of a
// newer one.
type Debouncer struct {
	mu       sync.Mutex
	quiet    time.Duration
	timer    *time.Timer
	seq      uint64
	applied  uint64
	snapshot func() []models.Game
	apply    func(query string, matches map[int]struct{})
}

// NewDebouncer creates a debouncer. snapshot supplies the immutable
// collection copy to filter; apply receives the result of the winning query.
func NewDebouncer(quiet time.Duration, snapshot func() []models.Game, apply func(query string, matches map[int]struct{})) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Debouncer{
		quiet:    quiet,
		snapshot: snapshot,
		apply:    apply,
	}
}

// Query schedules a filter run for q, superseding any pending run.
func (d *Debouncer) Query(q string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	gen := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, func() {
		d.run(gen, q)
	})
}

func (d *Debouncer) run(gen uint64, q string) {
	matches := Filter(d.snapshot(), q)

	d.mu.Lock()
	if gen <= d.applied {
		d.mu.Unlock()
		return
	}
	d.applied = gen
	d.mu.Unlock()

	d.apply(q, matches)
}
