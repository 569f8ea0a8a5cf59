package search

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhythmerc/steamshelf/services/library/models"
)

func testSnapshot() []models.Game {
	return []models.Game{
		{AppID: 400, Name: "Portal"},
		{AppID: 620, Name: "Portal 2"},
		{AppID: 70, Name: "Half-Life"},
	}
}

func TestFilter(t *testing.T) {
	matches := Filter(testSnapshot(), "portal")
	require.NotNil(t, matches)
	assert.Len(t, matches, 2)
	assert.Contains(t, matches, 400)
	assert.Contains(t, matches, 620)
}

func TestFilter_CaseInsensitive(t *testing.T) {
	for _, q := range []string{"PORTAL", "Portal", "pOrTaL"} {
		matches := Filter(testSnapshot(), q)
		assert.Len(t, matches, 2, "query %q", q)
	}
}

func TestFilter_BlankQueryIsShowAllSentinel(t *testing.T) {
	assert.Nil(t, Filter(testSnapshot(), ""))
	assert.Nil(t, Filter(testSnapshot(), "   \t"))
}

func TestFilter_NoMatches(t *testing.T) {
	matches := Filter(testSnapshot(), "zzz")
	require.NotNil(t, matches, "a miss is an empty set, not the show-all sentinel")
	assert.Empty(t, matches)
}

func TestFilter_Substring(t *testing.T) {
	matches := Filter(testSnapshot(), "life")
	assert.Len(t, matches, 1)
	assert.Contains(t, matches, 70)
}

func TestDebouncer_OnlyLatestQueryRuns(t *testing.T) {
	type result struct {
		query   string
		matches map[int]struct{}
	}
	results := make(chan result, 8)

	d := NewDebouncer(20*time.Millisecond, testSnapshot, func(q string, m map[int]struct{}) {
		results <- result{query: q, matches: m}
	})

	// Rapid typing: only the final query survives the quiet period.
	d.Query("p")
	d.Query("po")
	d.Query("portal")

	select {
	case got := <-results:
		assert.Equal(t, "portal", got.query)
		assert.Len(t, got.matches, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("debounced query never ran")
	}

	select {
	case got := <-results:
		t.Fatalf("superseded query %q ran anyway", got.query)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncer_StaleResultCannotOverwriteNewer(t *testing.T) {
	var mu sync.Mutex
	var applied []string

	d := NewDebouncer(time.Millisecond, testSnapshot, func(q string, m map[int]struct{}) {
		mu.Lock()
		applied = append(applied, q)
		mu.Unlock()
	})

	// Simulate a newer query finishing before an older, slower one.
	d.seq = 2
	d.run(2, "portal 2")
	d.run(1, "portal")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"portal 2"}, applied)
}
