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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "srvpick"

const (
	outcomeOK    = "ok"
	outcomeError = "error"
	outcomeEmpty = "empty"
)

// selectorMetrics holds the Prometheus instrumentation for one Selector.
// The collectors are registered per instance rather than as package globals,
// so several independently configured selectors can coexist in a process.
// A nil *selectorMetrics is valid and records nothing.
type selectorMetrics struct {
	lookups    *prometheus.CounterVec
	refreshes  *prometheus.CounterVec
	cacheHits  prometheus.Counter
	cacheMiss  prometheus.Counter
	fallbacks  prometheus.Counter
	staleServe prometheus.Counter
}

func newSelectorMetrics(reg prometheus.Registerer) *selectorMetrics {
	factory := promauto.With(reg)
	return &selectorMetrics{
		lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "lookups_total",
			Help:      "Synchronous service lookups by outcome",
		}, []string{"outcome"}),
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "refreshes_total",
			Help:      "Background cache refreshes by outcome",
		}, []string{"outcome"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cache_hits_total",
			Help:      "Selections served from the resolution cache",
		}),
		cacheMiss: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cache_misses_total",
			Help:      "Selections that had to resolve synchronously",
		}),
		fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fallbacks_total",
			Help:      "Selections that returned the caller's fallback endpoint",
		}),
		staleServe: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "stale_serves_total",
			Help:      "Selections served from an expired cache entry while a refresh ran",
		}),
	}
}

func (m *selectorMetrics) lookup(outcome string) {
	if m != nil {
		m.lookups.WithLabelValues(outcome).Inc()
	}
}

func (m *selectorMetrics) refresh(outcome string) {
	if m != nil {
		m.refreshes.WithLabelValues(outcome).Inc()
	}
}

func (m *selectorMetrics) cacheHit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

func (m *selectorMetrics) cacheMissed() {
	if m != nil {
		m.cacheMiss.Inc()
	}
}

func (m *selectorMetrics) fallback() {
	if m != nil {
		m.fallbacks.Inc()
	}
}

func (m *selectorMetrics) staleServed() {
	if m != nil {
		m.staleServe.Inc()
	}
}
