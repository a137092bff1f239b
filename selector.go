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
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/srvpick/srvpick/internal"
	"github.com/srvpick/srvpick/picker"
	"github.com/srvpick/srvpick/resolver"
)

// Selector resolves logical service names into endpoint sets, caches them,
// and picks one endpoint per call using SRV priority/weight semantics.
//
// Once constructed, selection never fails: when a service cannot be resolved
// the caller's fallback endpoint is returned, and when a cached set has
// expired it is still served while a single background refresh replaces it.
// Availability of a usable endpoint always wins over freshness.
type Selector struct {
	prefix        string
	interval      time.Duration
	lookupTimeout time.Duration
	lookup        resolver.Lookup
	logger        *zap.Logger
	metrics       *selectorMetrics
	cache         *resolutionCache
	pick          *picker.Weighted
	coordinator   *refreshCoordinator

	rootCtx context.Context //nolint:containedctx
	cancel  context.CancelFunc
}

// New returns a Selector configured with the given options. It fails only on
// invalid configuration; no I/O happens until the first selection.
func New(options ...Option) (*Selector, error) {
	var opts selectorOptions
	for _, opt := range options {
		opt.apply(&opts)
	}
	opts.applyDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	rootCtx, cancel := context.WithCancel(opts.rootCtx)
	cache := newResolutionCache(internal.NewRealClock())
	var metrics *selectorMetrics
	if opts.registerer != nil {
		metrics = newSelectorMetrics(opts.registerer)
	}
	sel := &Selector{
		prefix:        opts.prefix,
		interval:      opts.interval,
		lookupTimeout: opts.lookupTimeout,
		lookup:        opts.lookup,
		logger:        opts.logger,
		metrics:       metrics,
		cache:         cache,
		pick:          picker.NewWeighted(),
		rootCtx:       rootCtx,
		cancel:        cancel,
	}
	sel.coordinator = &refreshCoordinator{
		lookup:  opts.lookup,
		cache:   cache,
		logger:  opts.logger,
		metrics: metrics,
		timeout: opts.lookupTimeout,
	}
	return sel, nil
}

// Select returns the endpoint to use for one request against the logical
// host. It never fails: if the service cannot be resolved, the caller's
// fallback endpoint is returned unchanged, and the cache stays empty for
// that service. If the chosen endpoint carries port 0, the fallback's port
// is substituted.
//
// The first selection for a service blocks on a lookup (bounded by the
// lookup timeout) so that no request is ever routed on a guess. Later
// selections are served from the cache; an entry older than the refresh
// interval still serves immediately and kicks off at most one background
// refresh for its key.
func (s *Selector) Select(ctx context.Context, host string, fallback resolver.Endpoint) resolver.Endpoint {
	key := s.serviceKey(host)

	entry, ok := s.cache.get(key)
	if !ok {
		s.metrics.cacheMissed()
		endpoints, err := s.resolve(ctx, key)
		if err != nil {
			s.metrics.fallback()
			s.logger.Warn("lookup failed, routing to fallback endpoint",
				zap.String("service", key),
				zap.String("fallback", fallback.Host),
				zap.Error(err))
			return fallback
		}
		s.cache.put(key, endpoints)
		entry = cacheEntry{endpoints: endpoints}
	} else {
		s.metrics.cacheHit()
		s.maybeRefresh(key)
	}

	chosen := s.pick.Order(entry.endpoints)[0]
	if chosen.Port == 0 {
		chosen.Port = fallback.Port
	}
	return chosen
}

// Prewarm resolves the given logical hosts concurrently and caches the
// results, so that the first request to each is not held up by a
// synchronous lookup. Unlike Select it does report failure, since it runs
// at setup time where the caller can still act on it.
func (s *Selector) Prewarm(ctx context.Context, hosts ...string) error {
	group, ctx := errgroup.WithContext(ctx)
	for _, host := range hosts {
		key := s.serviceKey(host)
		group.Go(func() error {
			endpoints, err := s.resolve(ctx, key)
			if err != nil {
				return fmt.Errorf("prewarm %s: %w", key, err)
			}
			s.cache.put(key, endpoints)
			return nil
		})
	}
	return group.Wait()
}

// Close stops the Selector's background refreshes. The Selector must not be
// used after Close.
func (s *Selector) Close() {
	s.cancel()
}

// resolve performs one bounded lookup and folds the empty-answer case into
// the error path.
func (s *Selector) resolve(ctx context.Context, key string) ([]resolver.Endpoint, error) {
	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()
	endpoints, err := s.lookup.Lookup(ctx, key)
	switch {
	case err != nil:
		s.metrics.lookup(outcomeError)
		return nil, err
	case len(endpoints) == 0:
		s.metrics.lookup(outcomeEmpty)
		return nil, resolver.ErrNoEndpoints
	default:
		s.metrics.lookup(outcomeOK)
		return endpoints, nil
	}
}

// maybeRefresh starts a background refresh for key when its entry has
// expired and no other refresh for it is in flight. It never blocks the
// selection that called it.
func (s *Selector) maybeRefresh(key string) {
	if s.interval == 0 || s.cache.isFresh(key, s.interval) {
		return
	}
	s.metrics.staleServed()
	if !s.cache.tryBeginRefresh(key) {
		return
	}
	go s.coordinator.refresh(s.rootCtx, key)
}

func (s *Selector) serviceKey(host string) string {
	return s.prefix + host
}
