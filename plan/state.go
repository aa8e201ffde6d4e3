package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// ResultTracker holds the latest reconstruction result for the HTTP
// endpoints, with optional persistence to a cache file so a restarted
// server can serve the last result immediately.
type ResultTracker struct {
	mu        sync.RWMutex
	result    *Result
	updatedAt time.Time
	cachePath string // empty disables persistence
}

// NewResultTracker creates an empty tracker.
func NewResultTracker() *ResultTracker {
	return &ResultTracker{}
}

// NewResultTrackerWithCache creates a tracker that persists results to the
// given cache file. If the file exists, the cached result is loaded on
// creation.
func NewResultTrackerWithCache(cachePath string) *ResultTracker {
	rt := &ResultTracker{cachePath: cachePath}
	if cachePath != "" {
		if res, err := loadCachedResult(cachePath); err == nil {
			rt.result = res
		}
	}
	return rt
}

// SetResult stores a new result and persists it when caching is enabled.
func (rt *ResultTracker) SetResult(res *Result) error {
	rt.mu.Lock()
	rt.result = res
	rt.updatedAt = time.Now()
	cachePath := rt.cachePath
	rt.mu.Unlock()

	if cachePath == "" || res == nil {
		return nil
	}
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshaling result cache: %w", err)
	}
	if err := os.WriteFile(cachePath, data, 0644); err != nil {
		return fmt.Errorf("writing result cache: %w", err)
	}
	return nil
}

// GetResult returns the current result, or nil when none has been set.
func (rt *ResultTracker) GetResult() *Result {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.result
}

// HasResult reports whether a result is available.
func (rt *ResultTracker) HasResult() bool {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.result != nil
}

// UpdatedAt returns when the current result was stored.
func (rt *ResultTracker) UpdatedAt() time.Time {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.updatedAt
}

func loadCachedResult(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("parsing result cache: %w", err)
	}
	return &res, nil
}
