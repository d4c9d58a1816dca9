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

package oracle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type consensusMetrics struct {
	oraclesRegistered prometheus.Gauge
	requestsOpen      prometheus.Gauge
	responsesRecorded prometheus.Counter
	flightsFinalized  prometheus.Counter
}

func newConsensusMetrics(
	promRegistry prometheus.Registerer,
) *consensusMetrics {
	promautoFactory := promauto.With(promRegistry)
	return &consensusMetrics{
		oraclesRegistered: promautoFactory.NewGauge(prometheus.GaugeOpts{
			Name: "skysure_oracles_registered",
			Help: "current count of registered oracles",
		}),
		requestsOpen: promautoFactory.NewGauge(prometheus.GaugeOpts{
			Name: "skysure_requests_open",
			Help: "current count of open status requests",
		}),
		responsesRecorded: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "skysure_responses_recorded_total",
			Help: "total oracle responses recorded",
		}),
		flightsFinalized: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "skysure_flights_finalized_total",
			Help: "total flight statuses finalized",
		}),
	}
}
