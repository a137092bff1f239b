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
	"net"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/srvpick/srvpick/resolver"
)

const defaultLookupTimeout = 5 * time.Second

// Option is an option used to customize the behavior of a Selector.
type Option interface {
	apply(*selectorOptions)
}

// WithServicePrefix sets the record-name prefix that is prepended to every
// logical host to form the service key, e.g. "_billing._tcp.". A missing
// trailing dot is added; normalizing an already-normalized prefix is a
// no-op.
func WithServicePrefix(prefix string) Option {
	return optionFunc(func(opts *selectorOptions) {
		opts.prefix = prefix
	})
}

// WithRefreshInterval sets how long a cached endpoint set is considered
// fresh. Once an entry is older than the interval, selections still use it
// but trigger a background refresh (stale-while-revalidate). A zero interval
// disables background refresh entirely: the first successful lookup per
// service is cached for the life of the Selector. Negative intervals are
// rejected by New.
func WithRefreshInterval(interval time.Duration) Option {
	return optionFunc(func(opts *selectorOptions) {
		opts.interval = interval
	})
}

// WithLookupTimeout bounds every call to the lookup collaborator, including
// the synchronous lookup a first selection for a service performs. A lookup
// that exceeds the timeout is treated like any other lookup failure. If not
// specified, a 5-second timeout is used.
func WithLookupTimeout(timeout time.Duration) Option {
	return optionFunc(func(opts *selectorOptions) {
		opts.lookupTimeout = timeout
	})
}

// WithLookup sets the service-record resolution mechanism. If not specified,
// SRV records are resolved through net.DefaultResolver.
func WithLookup(lookup resolver.Lookup) Option {
	return optionFunc(func(opts *selectorOptions) {
		opts.lookup = lookup
	})
}

// WithDNSServer is shorthand for WithLookup(resolver.NewDNSClientLookup(server)):
// SRV queries go straight to the DNS server at the given "host:port" address
// instead of the system resolver.
func WithDNSServer(server string) Option {
	return WithLookup(resolver.NewDNSClientLookup(server))
}

// WithLogger sets the logger for resolution and refresh events. If not
// specified (or nil), nothing is logged.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(opts *selectorOptions) {
		opts.logger = logger
	})
}

// WithMetrics registers the Selector's counters (lookups, cache hits and
// misses, refreshes, fallbacks) with the given registerer. If not specified,
// no metrics are collected.
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(opts *selectorOptions) {
		opts.registerer = reg
	})
}

// WithRootContext configures the root context used for the background
// refresh goroutines a Selector may start. If not specified,
// [context.Background] is used. It should only be cancelled after the
// Selector is no longer in use.
func WithRootContext(ctx context.Context) Option {
	return optionFunc(func(opts *selectorOptions) {
		opts.rootCtx = ctx
	})
}

type optionFunc func(*selectorOptions)

func (f optionFunc) apply(opts *selectorOptions) {
	f(opts)
}

type selectorOptions struct {
	rootCtx       context.Context //nolint:containedctx
	prefix        string
	interval      time.Duration
	lookupTimeout time.Duration
	lookup        resolver.Lookup
	logger        *zap.Logger
	registerer    prometheus.Registerer
}

func (opts *selectorOptions) applyDefaults() {
	if opts.rootCtx == nil {
		opts.rootCtx = context.Background()
	}
	if opts.lookupTimeout == 0 {
		opts.lookupTimeout = defaultLookupTimeout
	}
	if opts.lookup == nil {
		opts.lookup = resolver.NewDNSLookup(net.DefaultResolver)
	}
	if opts.logger == nil {
		opts.logger = zap.NewNop()
	}
	opts.prefix = normalizePrefix(opts.prefix)
}

func (opts *selectorOptions) validate() error {
	if opts.interval < 0 {
		return fmt.Errorf("refresh interval must not be negative, got %v", opts.interval)
	}
	if opts.lookupTimeout < 0 {
		return fmt.Errorf("lookup timeout must not be negative, got %v", opts.lookupTimeout)
	}
	return nil
}

// normalizePrefix makes sure a non-empty prefix ends with exactly one label
// separator. It is idempotent.
func normalizePrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	return strings.TrimSuffix(prefix, ".") + "."
}
