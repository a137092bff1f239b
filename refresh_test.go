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
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/srvpick/srvpick/internal"
	"github.com/srvpick/srvpick/resolver"
)

func newTestCoordinator(cache *resolutionCache, lookup resolver.Lookup) *refreshCoordinator {
	return &refreshCoordinator{
		lookup:  lookup,
		cache:   cache,
		logger:  zap.NewNop(),
		timeout: time.Second,
	}
}

func TestRefreshReplacesEntry(t *testing.T) {
	t.Parallel()

	cache := newResolutionCache(internal.NewRealClock())
	cache.put("svc", []resolver.Endpoint{{Host: "old"}})

	updated := []resolver.Endpoint{{Host: "new-1"}, {Host: "new-2"}}
	coordinator := newTestCoordinator(cache, resolver.LookupFunc(
		func(_ context.Context, _ string) ([]resolver.Endpoint, error) {
			return updated, nil
		}))

	require.True(t, cache.tryBeginRefresh("svc"))
	coordinator.refresh(context.Background(), "svc")

	entry, ok := cache.get("svc")
	require.True(t, ok)
	assert.Equal(t, updated, entry.endpoints)
	assert.True(t, cache.tryBeginRefresh("svc"), "refresh slot must be released")
}

func TestRefreshFailureKeepsPreviousEntry(t *testing.T) {
	t.Parallel()

	previous := []resolver.Endpoint{{Host: "stale-but-usable"}}
	cache := newResolutionCache(internal.NewRealClock())
	cache.put("svc", previous)

	coordinator := newTestCoordinator(cache, resolver.LookupFunc(
		func(_ context.Context, _ string) ([]resolver.Endpoint, error) {
			return nil, errors.New("directory unavailable")
		}))

	require.True(t, cache.tryBeginRefresh("svc"))
	coordinator.refresh(context.Background(), "svc")

	entry, ok := cache.get("svc")
	require.True(t, ok)
	assert.Equal(t, previous, entry.endpoints)
	assert.True(t, cache.tryBeginRefresh("svc"), "refresh slot must be released on failure")
}

func TestRefreshEmptyAnswerKeepsPreviousEntry(t *testing.T) {
	t.Parallel()

	previous := []resolver.Endpoint{{Host: "stale-but-usable"}}
	cache := newResolutionCache(internal.NewRealClock())
	cache.put("svc", previous)

	coordinator := newTestCoordinator(cache, resolver.LookupFunc(
		func(_ context.Context, _ string) ([]resolver.Endpoint, error) {
			return []resolver.Endpoint{}, nil
		}))

	require.True(t, cache.tryBeginRefresh("svc"))
	coordinator.refresh(context.Background(), "svc")

	entry, ok := cache.get("svc")
	require.True(t, ok)
	assert.Equal(t, previous, entry.endpoints)
}

func TestRefreshFailureWithNoPreviousEntryLeavesCacheEmpty(t *testing.T) {
	t.Parallel()

	cache := newResolutionCache(internal.NewRealClock())
	coordinator := newTestCoordinator(cache, resolver.LookupFunc(
		func(_ context.Context, _ string) ([]resolver.Endpoint, error) {
			return nil, errors.New("directory unavailable")
		}))

	require.True(t, cache.tryBeginRefresh("svc"))
	coordinator.refresh(context.Background(), "svc")

	_, ok := cache.get("svc")
	assert.False(t, ok)
}

func TestRefreshHonorsTimeout(t *testing.T) {
	t.Parallel()

	cache := newResolutionCache(internal.NewRealClock())
	cache.put("svc", []resolver.Endpoint{{Host: "previous"}})

	coordinator := newTestCoordinator(cache, resolver.LookupFunc(
		func(ctx context.Context, _ string) ([]resolver.Endpoint, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}))
	coordinator.timeout = 10 * time.Millisecond

	require.True(t, cache.tryBeginRefresh("svc"))
	done := make(chan struct{})
	go func() {
		defer close(done)
		coordinator.refresh(context.Background(), "svc")
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("refresh did not give up on a hung lookup")
	}
	entry, ok := cache.get("svc")
	require.True(t, ok)
	assert.Equal(t, "previous", entry.endpoints[0].Host)
}
