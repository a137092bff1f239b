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

package resolver

import (
	"context"
	"net"
	"strings"
)

// NewDNSLookup returns a Lookup that queries SRV records through the given
// net.Resolver, typically the system resolver. If res is nil,
// net.DefaultResolver is used.
//
// The service name passed to Lookup must already be the full record name,
// e.g. "_billing._tcp.example.com."; no service/proto prefixing is applied.
func NewDNSLookup(res *net.Resolver) Lookup {
	if res == nil {
		res = net.DefaultResolver
	}
	return &dnsLookup{resolver: res}
}

type dnsLookup struct {
	resolver *net.Resolver
}

func (l *dnsLookup) Lookup(ctx context.Context, service string) ([]Endpoint, error) {
	_, records, err := l.resolver.LookupSRV(ctx, "", "", service)
	if err != nil {
		return nil, err
	}
	endpoints := make([]Endpoint, 0, len(records))
	for _, record := range records {
		// RFC 2782: a lone record with target "." means the service is
		// decidedly not available at this domain.
		if record.Target == "." {
			continue
		}
		endpoints = append(endpoints, Endpoint{
			Host:     strings.TrimSuffix(record.Target, "."),
			Port:     record.Port,
			Priority: record.Priority,
			Weight:   record.Weight,
		})
	}
	if len(endpoints) == 0 {
		return nil, ErrNoEndpoints
	}
	return endpoints, nil
}
