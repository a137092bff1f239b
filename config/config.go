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

// Package config loads selector configuration from YAML files and turns it
// into srvpick options. All validation happens at load time; a Config that
// loads successfully always produces a working option set.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/srvpick/srvpick"
)

// Config is the YAML configuration surface for one selector.
//
//	service_prefix: _billing._tcp.
//	refresh_interval: 30s
//	lookup_timeout: 2s
//	dns_server: 10.0.0.53:53
type Config struct {
	// ServicePrefix is prepended to every logical host to form the
	// service record name. A missing trailing dot is added.
	ServicePrefix string `yaml:"service_prefix"`

	// RefreshInterval is how long a cached endpoint set stays fresh.
	// Zero (or omitted) disables background refresh.
	RefreshInterval Duration `yaml:"refresh_interval"`

	// LookupTimeout bounds each directory lookup. Zero means the
	// srvpick default.
	LookupTimeout Duration `yaml:"lookup_timeout"`

	// DNSServer is an optional "host:port" of an explicit DNS server to
	// query for SRV records. Empty means the system resolver.
	DNSServer string `yaml:"dns_server"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.RefreshInterval < 0 {
		return fmt.Errorf("refresh_interval must not be negative, got %v", time.Duration(c.RefreshInterval))
	}
	if c.LookupTimeout < 0 {
		return fmt.Errorf("lookup_timeout must not be negative, got %v", time.Duration(c.LookupTimeout))
	}
	return nil
}

// Options converts the configuration into srvpick options, ready to pass to
// srvpick.New. Extra options (logger, metrics) can be appended by the
// caller.
func (c *Config) Options() []srvpick.Option {
	opts := []srvpick.Option{
		srvpick.WithServicePrefix(c.ServicePrefix),
		srvpick.WithRefreshInterval(time.Duration(c.RefreshInterval)),
	}
	if c.LookupTimeout > 0 {
		opts = append(opts, srvpick.WithLookupTimeout(time.Duration(c.LookupTimeout)))
	}
	if c.DNSServer != "" {
		opts = append(opts, srvpick.WithDNSServer(c.DNSServer))
	}
	return opts
}

// Duration is a time.Duration that unmarshals from YAML strings in
// time.ParseDuration syntax ("30s", "1m30s") as well as from bare integers,
// which are taken as nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(v)
	default:
		return fmt.Errorf("invalid duration value %v", raw)
	}
	return nil
}
