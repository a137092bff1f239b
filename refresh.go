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
	"time"

	"go.uber.org/zap"

	"github.com/srvpick/srvpick/resolver"
)

// refreshCoordinator re-resolves a service key in the background. It never
// reports failure to whoever kicked it off: a failed or empty lookup leaves
// the previous cache entry in place and only the logger and metrics hear
// about it.
type refreshCoordinator struct {
	lookup  resolver.Lookup
	cache   *resolutionCache
	logger  *zap.Logger
	metrics *selectorMetrics
	timeout time.Duration
}

// refresh resolves key and replaces its cache entry on success. The caller
// must hold the single-flight slot for key (a true tryBeginRefresh) and
// normally runs refresh on its own goroutine; the slot is released here in
// every outcome.
func (rc *refreshCoordinator) refresh(ctx context.Context, key string) {
	defer rc.cache.endRefresh(key)

	ctx, cancel := context.WithTimeout(ctx, rc.timeout)
	defer cancel()

	endpoints, err := rc.lookup.Lookup(ctx, key)
	switch {
	case err != nil:
		rc.metrics.refresh(outcomeError)
		rc.logger.Warn("background refresh failed, keeping cached endpoints",
			zap.String("service", key),
			zap.Error(err))
	case len(endpoints) == 0:
		rc.metrics.refresh(outcomeEmpty)
		rc.logger.Warn("background refresh returned no endpoints, keeping cached endpoints",
			zap.String("service", key))
	default:
		rc.cache.put(key, endpoints)
		rc.metrics.refresh(outcomeOK)
		rc.logger.Debug("background refresh replaced endpoints",
			zap.String("service", key),
			zap.Int("endpoints", len(endpoints)))
	}
}
