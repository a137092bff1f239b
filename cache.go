// Copyright 2024-2025 Srvpick Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package srvpick

import (
	"sync"
	"time"

	"github.com/srvpick/srvpick/internal"
	"github.com/srvpick/srvpick/resolver"
)

// cacheEntry holds one service's resolved endpoint set. Entries are replaced
// wholesale on every successful lookup and never mutated in place, so a
// value read under the lock stays valid after the lock is released.
type cacheEntry struct {
	endpoints  []resolver.Endpoint
	resolvedAt time.Time
}

// resolutionCache maps service keys to their latest resolved endpoint set
// and arbitrates background refreshes: tryBeginRefresh/endRefresh form a
// per-key single-flight gate, so at most one lookup per key is ever in
// flight. All methods are safe for concurrent use.
type resolutionCache struct {
	clock internal.Clock

	mu         sync.Mutex
	entries    map[string]cacheEntry
	refreshing map[string]bool
}

func newResolutionCache(clock internal.Clock) *resolutionCache {
	return &resolutionCache{
		clock:      clock,
		entries:    make(map[string]cacheEntry),
		refreshing: make(map[string]bool),
	}
}

// get returns the entry for key. An entry with no endpoints is reported as
// absent; it is never a usable hit.
func (c *resolutionCache) get(key string) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || len(entry.endpoints) == 0 {
		return cacheEntry{}, false
	}
	return entry, true
}

// put creates or replaces the entry for key, stamps it with the current
// time, and clears any refresh-in-flight marker.
func (c *resolutionCache) put(key string, endpoints []resolver.Endpoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{endpoints: endpoints, resolvedAt: c.clock.Now()}
	delete(c.refreshing, key)
}

// isFresh reports whether key has an entry younger than ttl. A ttl of zero
// disables aging entirely: whatever is present counts as fresh forever.
func (c *resolutionCache) isFresh(key string, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || len(entry.endpoints) == 0 {
		return false
	}
	if ttl == 0 {
		return true
	}
	return c.clock.Since(entry.resolvedAt) < ttl
}

// tryBeginRefresh atomically claims the refresh slot for key. Exactly one
// concurrent caller gets true; everyone else gets false until endRefresh
// releases the slot. A true return obliges the caller to eventually call
// endRefresh.
func (c *resolutionCache) tryBeginRefresh(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.refreshing[key] {
		return false
	}
	c.refreshing[key] = true
	return true
}

// endRefresh releases the refresh slot for key regardless of the refresh
// outcome.
func (c *resolutionCache) endRefresh(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.refreshing, key)
}
