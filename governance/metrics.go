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

package governance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type governanceMetrics struct {
	airlinesRegistered prometheus.Gauge
	airlinesFunded     prometheus.Gauge
	openBallots        prometheus.Gauge
	votesCast          prometheus.Counter
	flightsRegistered  prometheus.Counter
}

func newGovernanceMetrics(
	promRegistry prometheus.Registerer,
) *governanceMetrics {
	promautoFactory := promauto.With(promRegistry)
	return &governanceMetrics{
		airlinesRegistered: promautoFactory.NewGauge(prometheus.GaugeOpts{
			Name: "skysure_airlines_registered",
			Help: "current count of registered airlines",
		}),
		airlinesFunded: promautoFactory.NewGauge(prometheus.GaugeOpts{
			Name: "skysure_airlines_funded",
			Help: "current count of funded airlines",
		}),
		openBallots: promautoFactory.NewGauge(prometheus.GaugeOpts{
			Name: "skysure_ballots_open",
			Help: "current count of open registration ballots",
		}),
		votesCast: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "skysure_ballot_votes_total",
			Help: "total registration votes cast",
		}),
		flightsRegistered: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "skysure_flights_registered_total",
			Help: "total flights registered",
		}),
	}
}
