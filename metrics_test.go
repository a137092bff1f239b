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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srvpick/srvpick/resolver"
)

func TestMetricsCountSelections(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	sel, err := New(
		WithMetrics(registry),
		WithLookup(failingLookup(errors.New("nxdomain"))),
	)
	require.NoError(t, err)
	t.Cleanup(sel.Close)

	fallback := resolver.Endpoint{Host: "svc", Port: 80}
	sel.Select(context.Background(), "svc", fallback)

	assert.Equal(t, 1.0, testutil.ToFloat64(sel.metrics.cacheMiss))
	assert.Equal(t, 1.0, testutil.ToFloat64(sel.metrics.fallbacks))
	assert.Equal(t, 1.0, testutil.ToFloat64(sel.metrics.lookups.WithLabelValues(outcomeError)))
	assert.Equal(t, 0.0, testutil.ToFloat64(sel.metrics.cacheHits))
}

func TestMetricsAreOptional(t *testing.T) {
	t.Parallel()

	sel, err := New(WithLookup(staticLookup(resolver.Endpoint{Host: "node-1", Port: 1})))
	require.NoError(t, err)
	t.Cleanup(sel.Close)
	require.Nil(t, sel.metrics)

	// Selection with a nil metrics receiver must simply record nothing.
	fallback := resolver.Endpoint{Host: "svc", Port: 80}
	chosen := sel.Select(context.Background(), "svc", fallback)
	assert.Equal(t, "node-1", chosen.Host)
	chosen = sel.Select(context.Background(), "svc", fallback)
	assert.Equal(t, "node-1", chosen.Host)
}
