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

package internal

import (
	"hash/maphash"
	"math/rand"
)

// NewRand returns a properly seeded *rand.Rand. The seed comes from the
// "hash/maphash" package, which is lock-free and safe for concurrent use,
// so creating many generators avoids the global rand's synchronization
// overhead.
//
// The returned value is not thread-safe; callers that share one across
// goroutines must synchronize access themselves.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(randomSeed())) //nolint:gosec // don't need cryptographic RNG
}

// randomSeed generates a high-quality seed by letting the runtime's
// per-thread RNG initialize a maphash.
func randomSeed() int64 {
	var hash maphash.Hash
	return int64(hash.Sum64())
}
