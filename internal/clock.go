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

import "time"

// Clock covers the two time operations the resolution cache depends on. It
// is a structural subset of the jonboulle/clockwork interfaces, so that the
// clockwork package is only a dependency for tests, not for non-test code.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// NewRealClock returns a Clock whose methods delegate to the corresponding
// functions in the [time] package.
func NewRealClock() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}
