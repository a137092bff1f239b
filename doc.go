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

// Package srvpick selects network endpoints for logical service names using
// SRV-style service records. Each selection resolves the service's endpoint
// set through a directory (DNS SRV by default), caches it with a TTL, and
// picks one endpoint ordered strictly by priority class and, within a
// class, by weighted random draw without replacement.
//
// To create a selector use the [New] function and its options:
//
//	sel, err := srvpick.New(
//	    srvpick.WithServicePrefix("_billing._tcp."),
//	    srvpick.WithRefreshInterval(30*time.Second),
//	)
//
// Selection itself never fails. The first call for a service resolves it
// synchronously; on lookup failure the caller's fallback endpoint is
// returned instead. Subsequent calls are served from the cache, and an
// expired entry is served as-is while a single background refresh per
// service key replaces it (stale-while-revalidate).
//
// The [RoundTripper] type integrates a Selector with net/http, rewriting
// each request's URL host to the chosen endpoint before the request is
// composed. Custom directories plug in through the [resolver.Lookup]
// interface.
package srvpick
