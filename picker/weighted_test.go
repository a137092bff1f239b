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

package picker

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srvpick/srvpick/resolver"
)

func TestOrderIsPriorityRespectingPermutation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		endpoints []resolver.Endpoint
	}{
		{
			name: "mixed priorities",
			endpoints: []resolver.Endpoint{
				{Host: "a", Port: 1, Priority: 20, Weight: 1},
				{Host: "b", Port: 2, Priority: 10, Weight: 3},
				{Host: "c", Port: 3, Priority: 10, Weight: 6},
				{Host: "d", Port: 4, Priority: 30, Weight: 0},
				{Host: "e", Port: 5, Priority: 20, Weight: 2},
			},
		},
		{
			name: "single class",
			endpoints: []resolver.Endpoint{
				{Host: "a", Weight: 1},
				{Host: "b", Weight: 2},
				{Host: "c", Weight: 3},
			},
		},
		{
			name: "duplicate endpoints",
			endpoints: []resolver.Endpoint{
				{Host: "a", Priority: 1, Weight: 1},
				{Host: "a", Priority: 1, Weight: 1},
				{Host: "b", Priority: 2, Weight: 1},
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			pick := New(rand.New(rand.NewSource(1))) //nolint:gosec // deterministic test source

			for trial := 0; trial < 100; trial++ {
				ordered := pick.Order(testCase.endpoints)
				assert.ElementsMatch(t, testCase.endpoints, ordered)
				for i := 1; i < len(ordered); i++ {
					assert.LessOrEqual(t, ordered[i-1].Priority, ordered[i].Priority)
				}
			}
		})
	}
}

func TestOrderWeightedDistribution(t *testing.T) {
	t.Parallel()

	const trials = 10000
	endpoints := []resolver.Endpoint{
		{Host: "light", Weight: 1},
		{Host: "medium", Weight: 3},
		{Host: "heavy", Weight: 6},
	}
	pick := New(rand.New(rand.NewSource(42))) //nolint:gosec // deterministic test source

	headCounts := make(map[string]int)
	for trial := 0; trial < trials; trial++ {
		headCounts[pick.Order(endpoints)[0].Host]++
	}

	assert.InDelta(t, 0.1, float64(headCounts["light"])/trials, 0.02)
	assert.InDelta(t, 0.3, float64(headCounts["medium"])/trials, 0.02)
	assert.InDelta(t, 0.6, float64(headCounts["heavy"])/trials, 0.02)
}

func TestOrderAllZeroWeightsTerminates(t *testing.T) {
	t.Parallel()

	endpoints := []resolver.Endpoint{
		{Host: "a"},
		{Host: "b"},
		{Host: "c"},
	}
	ordered := NewWeighted().Order(endpoints)
	assert.ElementsMatch(t, endpoints, ordered)
}

func TestOrderZeroWeightNeverBeatsPositivePeers(t *testing.T) {
	t.Parallel()

	endpoints := []resolver.Endpoint{
		{Host: "idle-1", Weight: 0},
		{Host: "busy", Weight: 1},
		{Host: "idle-2", Weight: 0},
	}
	pick := New(rand.New(rand.NewSource(7))) //nolint:gosec // deterministic test source
	for trial := 0; trial < 1000; trial++ {
		require.Equal(t, "busy", pick.Order(endpoints)[0].Host)
	}
}

func TestOrderSmallInputs(t *testing.T) {
	t.Parallel()

	pick := NewWeighted()
	assert.Empty(t, pick.Order(nil))

	only := []resolver.Endpoint{{Host: "a", Port: 443}}
	assert.Equal(t, only, pick.Order(only))
}

func TestOrderDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	endpoints := []resolver.Endpoint{
		{Host: "a", Priority: 2, Weight: 1},
		{Host: "b", Priority: 1, Weight: 5},
		{Host: "c", Priority: 1, Weight: 2},
	}
	original := make([]resolver.Endpoint, len(endpoints))
	copy(original, endpoints)

	pick := NewWeighted()
	for trial := 0; trial < 100; trial++ {
		pick.Order(endpoints)
	}
	assert.Equal(t, original, endpoints)
}
