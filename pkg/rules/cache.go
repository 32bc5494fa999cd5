package rules

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultRefreshInterval is how long an index is trusted before the source is
// asked for a newer version.
const DefaultRefreshInterval = 24 * time.Hour

// refreshFlightKey is the singleflight key shared by every refresh.
const refreshFlightKey = "refresh"

// Source supplies raw rules documents. Implementations handle transport,
// decoding, timeouts and retries.
type Source interface {
	// LatestVersion returns an opaque token identifying the current document.
	LatestVersion(ctx context.Context) (string, error)

	// Fetch returns the document text for the given version.
	Fetch(ctx context.Context, version string) (string, error)
}

// CacheOptions configures a Cache.
type CacheOptions struct {
	// RefreshInterval defaults to DefaultRefreshInterval.
	RefreshInterval time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Cache owns the current Index and replaces it wholesale when the source
// publishes a new version. At most one rebuild runs at a time; readers keep
// seeing the previous complete index until the new one is swapped in.
type Cache struct {
	source          Source
	refreshInterval time.Duration
	logger          *slog.Logger

	current atomic.Pointer[Index]
	flight  singleflight.Group

	mu            sync.Mutex
	lastCheckedAt time.Time
	forceCheck    bool
}

// NewCache creates an empty cache backed by source.
func NewCache(source Source, options CacheOptions) *Cache {
	refreshInterval := options.RefreshInterval
	if refreshInterval <= 0 {
		refreshInterval = DefaultRefreshInterval
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Cache{
		source:          source,
		refreshInterval: refreshInterval,
		logger:          logger,
	}
}

// Current returns the last successfully built index, or nil before the first
// successful Refresh.
func (cache *Cache) Current() *Index {
	return cache.current.Load()
}

// Invalidate makes the next Refresh consult the source regardless of the
// refresh interval.
func (cache *Cache) Invalidate() {
	cache.mu.Lock()
	cache.forceCheck = true
	cache.mu.Unlock()
}

// Refresh returns an up-to-date index. Within the refresh interval the
// current index is returned untouched. Otherwise the source's version is
// checked and, if it changed, the document is fetched and rebuilt. A failed
// check or rebuild keeps the previous index, which is returned together with
// the error (nil if there was none yet).
func (cache *Cache) Refresh(ctx context.Context, now time.Time) (*Index, error) {
	if index := cache.current.Load(); index != nil && !cache.due(now) {
		return index, nil
	}

	value, err, _ := cache.flight.Do(refreshFlightKey, func() (interface{}, error) {
		return cache.refresh(ctx, now)
	})
	index, _ := value.(*Index)
	return index, err
}

// due reports whether the source should be consulted at now.
func (cache *Cache) due(now time.Time) bool {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return cache.forceCheck || now.Sub(cache.lastCheckedAt) >= cache.refreshInterval
}

func (cache *Cache) markChecked(now time.Time) {
	cache.mu.Lock()
	cache.lastCheckedAt = now
	cache.forceCheck = false
	cache.mu.Unlock()
}

func (cache *Cache) refresh(ctx context.Context, now time.Time) (*Index, error) {
	previous := cache.current.Load()
	// A refresh that finished just before this flight started may already
	// have covered now.
	if previous != nil && !cache.due(now) {
		return previous, nil
	}

	version, err := cache.source.LatestVersion(ctx)
	if err != nil {
		cache.logger.Warn("rules version check failed", "error", err)
		return previous, fmt.Errorf("checking rules version: %w", err)
	}

	if previous != nil && previous.SourceVersion == version {
		cache.markChecked(now)
		cache.logger.Debug("rules unchanged", "version", version)
		return previous, nil
	}

	document, err := cache.source.Fetch(ctx, version)
	if err != nil {
		cache.logger.Warn("rules download failed", "version", version, "error", err)
		return previous, fmt.Errorf("fetching rules version %s: %w", version, err)
	}

	index, err := Build(document, version, now)
	if err != nil {
		// The same document would fail again; wait for the next interval.
		cache.markChecked(now)
		cache.logger.Error("rules document rejected", "version", version, "error", err)
		return previous, fmt.Errorf("building rules version %s: %w", version, err)
	}

	cache.current.Store(index)
	cache.markChecked(now)
	cache.logger.Info("rules index rebuilt",
		"version", version,
		"rules", index.RuleCount(),
		"glossary", index.GlossaryCount())
	return index, nil
}
