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

// Package resolver provides single-shot resolution of logical service names
// into sets of SRV-style endpoints. Two implementations are included: one
// backed by a *net.Resolver and one that queries an explicit DNS server
// directly. Callers with another directory mechanism (Consul, etcd, a static
// table) can supply their own Lookup or use LookupFunc.
package resolver

import (
	"context"
	"errors"
)

// ErrNoEndpoints indicates that resolution succeeded but the answer
// contained no usable endpoints.
var ErrNoEndpoints = errors.New("no endpoints in answer")

// Endpoint is one resolved target for a service: where to connect and how
// selection should rank it. An Endpoint is a plain value; selection copies
// and reorders endpoints but never modifies one.
type Endpoint struct {
	// Host is the target name or address.
	Host string

	// Port is the target port. Zero means the caller's default port
	// applies.
	Port uint16

	// Priority is the endpoint's precedence class. Lower values are
	// preferred; higher classes are only reached when every endpoint in
	// the lower classes has been tried.
	Priority uint16

	// Weight is the endpoint's relative share within its priority class.
	// A weight of zero is legal and means the endpoint is only chosen
	// once all positive-weight peers in the class are exhausted.
	Weight uint16
}

// Lookup resolves a fully qualified service name into its current endpoint
// set. Implementations should honor ctx cancellation and may be called
// concurrently.
//
// A nil error with an empty result is treated by callers the same as a
// resolution failure, so implementations are encouraged to return
// ErrNoEndpoints in that case.
type Lookup interface {
	Lookup(ctx context.Context, service string) ([]Endpoint, error)
}

// LookupFunc adapts an ordinary function to the Lookup interface.
type LookupFunc func(ctx context.Context, service string) ([]Endpoint, error)

// Lookup implements Lookup.
func (fn LookupFunc) Lookup(ctx context.Context, service string) ([]Endpoint, error) {
	return fn(ctx, service)
}
