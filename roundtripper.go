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
	"net"
	"net/http"
	"strconv"

	"github.com/srvpick/srvpick/resolver"
)

// RoundTripper routes each outbound request through a Selector before the
// request reaches the wire: the URL host is rewritten to the chosen
// endpoint, while the original Host header is preserved so the backend
// still sees the logical name. The host from the request URL doubles as the
// fallback endpoint, so an unresolvable service degrades to a direct
// connection.
type RoundTripper struct {
	selector *Selector
	base     http.RoundTripper
}

// NewRoundTripper returns a RoundTripper that selects endpoints with sel and
// delegates the actual exchange to base. If base is nil,
// http.DefaultTransport is used.
func NewRoundTripper(sel *Selector, base http.RoundTripper) *RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &RoundTripper{selector: sel, base: base}
}

// RoundTrip implements http.RoundTripper.
func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	host, port := requestTarget(req)
	chosen := rt.selector.Select(req.Context(), host, resolver.Endpoint{Host: host, Port: port})

	clone := req.Clone(req.Context())
	if clone.Host == "" {
		clone.Host = req.URL.Host
	}
	clone.URL.Host = net.JoinHostPort(chosen.Host, strconv.Itoa(int(chosen.Port)))
	return rt.base.RoundTrip(clone)
}

// requestTarget returns the hostname and effective port of req, inferring
// the port from the scheme when the URL does not carry one.
func requestTarget(req *http.Request) (string, uint16) {
	host, portStr, err := net.SplitHostPort(req.URL.Host)
	if err != nil {
		// Assume this is not a host:port pair.
		host = req.URL.Host
		if req.URL.Scheme == "https" {
			return host, 443
		}
		return host, 80
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		if req.URL.Scheme == "https" {
			return host, 443
		}
		return host, 80
	}
	return host, uint16(port)
}
