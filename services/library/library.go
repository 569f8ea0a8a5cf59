package library

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/rhythmerc/steamshelf/services/library/artcache"
	"github.com/rhythmerc/steamshelf/services/library/events"
	"github.com/rhythmerc/steamshelf/services/library/models"
	"github.com/rhythmerc/steamshelf/services/library/steam"
	"github.com/rhythmerc/steamshelf/services/library/store"
)

// ErrMissingCredentials is returned by Sync when the API key or account id is
// absent. It is the only error a remote problem cannot produce: everything
// past credential validation degrades to an empty contribution instead.
var ErrMissingCredentials = errors.New("steam api key and steam id are required")

// Source fetches the authoritative remote library listing and per-game
// descriptions. Implementations carry no caching logic.
type Source interface {
	FetchOwnedGames(ctx context.Context, creds models.Credentials) []models.Game
	FetchDescription(ctx context.Context, appID int) string
}

// Service owns the in-memory game collection and coordinates sync, image
// materialization, fallback advancement and persistence. It is the only
// mutator of the collection; all mutation happens under its lock, and disk
// saves are serialized so two saves never overlap on the same file.
type Service struct {
	mu    sync.Mutex
	games []models.Game // arrival order; display sorting is layered on top

	saveMu sync.Mutex

	source Source
	store  *store.Store
	images *artcache.Cache
	bus    *events.Bus
	logger *slog.Logger

	background sync.WaitGroup
}

// NewService creates the library service and hydrates the collection from the
// metadata store.
func NewService(source Source, st *store.Store, images *artcache.Cache, bus *events.Bus, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if bus == nil {
		bus = events.NewBus(logger)
	}

	s := &Service{
		source: source,
		store:  st,
		images: images,
		bus:    bus,
		logger: logger,
	}
	s.games = st.Load()
	return s
}

// Events returns the bus carrying library change notifications.
func (s *Service) Events() *events.Bus {
	return s.bus
}

// Sync fetches the remote owned-games listing and merges it into the
// collection. Entries whose app id is already present are left untouched, so
// repeated syncs with the same remote data are no-ops. New entries are
// persisted immediately and their cover images materialized in the
// background. Returns the number of games added.
func (s *Service) Sync(ctx context.Context, creds models.Credentials) (int, error) {
	if !creds.Valid() {
		return 0, ErrMissingCredentials
	}

	fetched := s.source.FetchOwnedGames(ctx, creds)
	if len(fetched) == 0 {
		// Fetch contributed nothing; the library keeps its current state.
		s.logger.Info("sync fetched no games")
		return 0, nil
	}

	s.mu.Lock()
	known := make(map[int]struct{}, len(s.games))
	for _, g := range s.games {
		known[g.AppID] = struct{}{}
	}

	var added []int
	for _, g := range fetched {
		if _, ok := known[g.AppID]; ok {
			continue
		}
		known[g.AppID] = struct{}{}
		s.games = append(s.games, g)
		added = append(added, g.AppID)
	}
	s.mu.Unlock()

	if len(added) == 0 {
		s.logger.Info("sync complete, no new games", "fetched", len(fetched))
		return 0, nil
	}

	s.persist()
	s.logger.Info("sync added games", "added", len(added), "fetched", len(fetched))

	s.background.Add(1)
	go func() {
		defer s.background.Done()
		for _, appID := range added {
			s.MaterializeImage(ctx, appID)
		}
		s.persist()
		s.bus.Publish(events.Event{Type: events.TypeSyncCompleted})
	}()

	return len(added), nil
}

// Wait blocks until background image materialization has finished.
func (s *Service) Wait() {
	s.background.Wait()
}

// MaterializeImage resolves a game's display reference: a pre-existing or
// freshly downloaded local cover wins; otherwise the display reference falls
// back to the remote primary artwork so the renderer tries it directly and
// failure handling takes over from there.
func (s *Service) MaterializeImage(ctx context.Context, appID int) {
	s.mu.Lock()
	game, ok := s.find(appID)
	if !ok {
		s.mu.Unlock()
		return
	}
	primary := game.PrimaryImageRef
	s.mu.Unlock()

	displayRef := primary
	if s.images.Exists(appID) || s.images.Download(ctx, appID, primary) {
		displayRef = s.images.LocalPath(appID)
	}

	// The collection may have been reset while the download was in
	// flight; a stale result must not resurrect the entry.
	s.mu.Lock()
	game, ok = s.find(appID)
	if !ok {
		s.mu.Unlock()
		return
	}
	game.DisplayRef = displayRef
	s.mu.Unlock()

	s.bus.Publish(events.Event{Type: events.TypeImageResolved, AppID: appID})
}

// HandleDisplayFailure advances a game's display reference one step along the
// fallback chain after the renderer reports a load failure, then persists the
// collection immediately so the failed reference is not retried on the next
// run. Returns the new reference.
func (s *Service) HandleDisplayFailure(appID int) string {
	s.mu.Lock()
	game, ok := s.find(appID)
	if !ok {
		s.mu.Unlock()
		return ""
	}

	current := game.DisplayRef
	if current == "" || current == s.images.LocalPath(appID) {
		// A failed local copy of the primary artwork denotes the
		// primary artwork itself.
		current = game.PrimaryImageRef
	}

	next := steam.NextImageRef(current, game.IconRef, appID)
	game.DisplayRef = next
	s.mu.Unlock()

	if next == steam.PlaceholderRef {
		if _, err := s.images.PlaceholderPath(); err != nil {
			s.logger.Warn("failed to prepare placeholder tile", "error", err)
		}
	}

	s.persist()
	s.bus.Publish(events.Event{Type: events.TypeImageResolved, AppID: appID})
	return next
}

// EnsureDescription fetches a game's description if it has never been
// fetched. A failed fetch stores the fixed unavailable text, so the fetch is
// attempted at most once per entry. Returns the description.
func (s *Service) EnsureDescription(ctx context.Context, appID int) string {
	s.mu.Lock()
	game, ok := s.find(appID)
	if !ok {
		s.mu.Unlock()
		return ""
	}
	if game.Description != "" {
		desc := game.Description
		s.mu.Unlock()
		return desc
	}
	s.mu.Unlock()

	desc := s.source.FetchDescription(ctx, appID)

	s.mu.Lock()
	game, ok = s.find(appID)
	if !ok {
		s.mu.Unlock()
		return desc
	}
	if game.Description == "" {
		game.Description = desc
	} else {
		desc = game.Description
	}
	s.mu.Unlock()

	s.persist()
	s.bus.Publish(events.Event{Type: events.TypeDescriptionReady, AppID: appID})
	return desc
}

// MarkInstalled flags collection entries that are installed locally and
// records their install paths. Entries absent from installed are flagged as
// not installed. Persists only when something changed.
func (s *Service) MarkInstalled(installed map[int]steam.InstalledGame) {
	s.mu.Lock()
	changed := false
	for i := range s.games {
		g := &s.games[i]
		info, ok := installed[g.AppID]
		if ok != g.Installed || (ok && g.InstallPath != info.InstallPath) {
			changed = true
		}
		g.Installed = ok
		if ok {
			g.InstallPath = info.InstallPath
		} else {
			g.InstallPath = ""
		}
	}
	s.mu.Unlock()

	if changed {
		s.persist()
	}
}

// ResetAll clears the image cache, deletes the metadata file and empties the
// in-memory collection. Files that fail to delete are skipped; the operation
// still completes and reports the number of image files removed.
func (s *Service) ResetAll() int {
	s.mu.Lock()
	s.games = nil
	s.mu.Unlock()

	removed := s.images.ClearAll()

	if err := s.store.Delete(); err != nil {
		s.logger.Warn("failed to delete metadata file", "error", err)
	}

	s.bus.Publish(events.Event{Type: events.TypeLibraryReset})
	s.logger.Info("library reset", "imagesRemoved", removed)
	return removed
}

// Games returns a copy of the collection sorted by name ascending.
func (s *Service) Games() []models.Game {
	games := s.Snapshot()
	sort.Slice(games, func(i, j int) bool {
		return strings.ToLower(games[i].Name) < strings.ToLower(games[j].Name)
	})
	return games
}

// Snapshot returns an arrival-order copy of the collection. Searches filter
// this immutable copy, never the live collection, so a concurrent sync cannot
// tear a result set.
func (s *Service) Snapshot() []models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()

	games := make([]models.Game, len(s.games))
	copy(games, s.games)
	return games
}

// Get returns a copy of one entry by app id.
func (s *Service) Get(appID int) (models.Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if game, ok := s.find(appID); ok {
		return *game, true
	}
	return models.Game{}, false
}

// find returns a pointer into the live collection; callers hold s.mu.
func (s *Service) find(appID int) (*models.Game, bool) {
	for i := range s.games {
		if s.games[i].AppID == appID {
			return &s.games[i], true
		}
	}
	return nil, false
}

// persist saves a snapshot of the collection. Saves are serialized so
// concurrent mutation batches cannot interleave writes to the same file;
// last write wins.
func (s *Service) persist() {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if err := s.store.Save(s.Snapshot()); err != nil {
		s.logger.Warn("failed to persist library", "error", err)
	}
}
