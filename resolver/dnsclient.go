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
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// NewDNSClientLookup returns a Lookup that sends SRV queries straight to the
// DNS server at the given "host:port" address, bypassing the system resolver
// configuration. This is the right choice when service records live on a
// dedicated directory server (service mesh DNS, Consul's DNS interface, a
// split-horizon zone) that is not in /etc/resolv.conf.
func NewDNSClientLookup(server string) Lookup {
	return &dnsClientLookup{
		client: new(dns.Client),
		server: server,
	}
}

type dnsClientLookup struct {
	client *dns.Client
	server string
}

func (l *dnsClientLookup) Lookup(ctx context.Context, service string) ([]Endpoint, error) {
	query := new(dns.Msg)
	query.SetQuestion(dns.Fqdn(service), dns.TypeSRV)

	response, _, err := l.client.ExchangeContext(ctx, query, l.server)
	if err != nil {
		return nil, fmt.Errorf("SRV query for %q against %s: %w", service, l.server, err)
	}
	if response.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("SRV query for %q against %s: %s", service, l.server, dns.RcodeToString[response.Rcode])
	}

	endpoints := make([]Endpoint, 0, len(response.Answer))
	for _, answer := range response.Answer {
		record, ok := answer.(*dns.SRV)
		if !ok || record.Target == "." {
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
