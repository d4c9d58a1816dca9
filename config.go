// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package skysure

import (
	"errors"
	"io"
	"log/slog"

	"github.com/blinklabs-io/skysure/ledger"
	"github.com/blinklabs-io/skysure/oracle"
	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	promRegistry     prometheus.Registerer
	logger           *slog.Logger
	indexSource      oracle.IndexSource
	dataDir          string
	apiListenAddress string
	admin            ledger.AccountID
	firstAirline     ledger.AccountID
}

// ConfigOptionFunc is a type that represents functions that modify the engine config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new engine config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c *Config) validate() error {
	if c.admin == "" {
		return errors.New("no administrator identity configured")
	}
	if c.firstAirline == "" {
		return errors.New("no bootstrap airline configured")
	}
	return nil
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add
// metrics to. In most cases, prometheus.DefaultRegistry would be a good
// choice to get metrics working
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithDataDir specifies the persistent data directory for the record store
// and fact journal. The default is to store everything in memory
func WithDataDir(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithAdmin specifies the administrator identity that controls the
// operational switch
func WithAdmin(admin ledger.AccountID) ConfigOptionFunc {
	return func(c *Config) {
		c.admin = admin
	}
}

// WithFirstAirline specifies the airline registered unconditionally at
// initialization
func WithFirstAirline(airline ledger.AccountID) ConfigOptionFunc {
	return func(c *Config) {
		c.firstAirline = airline
	}
}

// WithIndexSource specifies the oracle index source. This defaults to the
// entropy-backed source; tests inject a deterministic one
func WithIndexSource(source oracle.IndexSource) ConfigOptionFunc {
	return func(c *Config) {
		c.indexSource = source
	}
}

// WithApiListenAddress specifies the listen address for the REST API
// server. An empty string disables the server. The default is empty
// (disabled)
func WithApiListenAddress(addr string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = addr
	}
}
