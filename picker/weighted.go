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

// Package picker implements the SRV record selection order: endpoints are
// ranked strictly by priority class, and within one class they are drawn
// without replacement with probability proportional to weight.
package picker

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/srvpick/srvpick/internal"
	"github.com/srvpick/srvpick/resolver"
)

// Weighted produces priority-respecting, weight-biased orderings of endpoint
// sets. It is safe for concurrent use.
type Weighted struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewWeighted returns a Weighted selector seeded from the runtime's
// per-thread RNG.
func NewWeighted() *Weighted {
	return New(internal.NewRand())
}

// New returns a Weighted selector that draws from rnd. Tests pass a
// fixed-seed source so that distributions are reproducible.
func New(rnd *rand.Rand) *Weighted {
	return &Weighted{rnd: rnd}
}

// Order returns the endpoints as a new slice, reordered into pick order: all
// members of a lower priority class before any member of a higher one, and
// within each class a weighted shuffle. The input is never modified.
func (w *Weighted) Order(endpoints []resolver.Endpoint) []resolver.Endpoint {
	out := make([]resolver.Endpoint, 0, len(endpoints))
	if len(endpoints) <= 1 {
		return append(out, endpoints...)
	}

	groups := make(map[uint16][]resolver.Endpoint)
	priorities := make([]uint16, 0, 2)
	for _, endpoint := range endpoints {
		if _, seen := groups[endpoint.Priority]; !seen {
			priorities = append(priorities, endpoint.Priority)
		}
		groups[endpoint.Priority] = append(groups[endpoint.Priority], endpoint)
	}
	sort.Slice(priorities, func(i, j int) bool { return priorities[i] < priorities[j] })

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, priority := range priorities {
		group := groups[priority]
		// The last member goes straight to the output; that skips a
		// pointless draw and makes the all-zero-weight class terminate.
		for len(group) > 1 {
			i := w.draw(group)
			out = append(out, group[i])
			group = append(group[:i], group[i+1:]...)
		}
		out = append(out, group[0])
	}
	return out
}

// draw picks an index into group with probability proportional to weight.
// When every remaining weight is zero the first member wins.
func (w *Weighted) draw(group []resolver.Endpoint) int {
	total := 0
	for _, endpoint := range group {
		total += int(endpoint.Weight)
	}
	if total == 0 {
		return 0
	}
	n := w.rnd.Intn(total)
	for i, endpoint := range group {
		n -= int(endpoint.Weight)
		if n < 0 {
			return i
		}
	}
	return len(group) - 1
}
