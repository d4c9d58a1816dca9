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

package insurance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type insuranceMetrics struct {
	policiesSold       prometheus.Counter
	policiesSettled    prometheus.Counter
	creditsOutstanding prometheus.Gauge
	poolBalance        prometheus.Gauge
}

func newInsuranceMetrics(
	promRegistry prometheus.Registerer,
) *insuranceMetrics {
	promautoFactory := promauto.With(promRegistry)
	return &insuranceMetrics{
		policiesSold: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "skysure_policies_sold_total",
			Help: "total insurance policies sold",
		}),
		policiesSettled: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "skysure_policies_settled_total",
			Help: "total insurance policies settled",
		}),
		creditsOutstanding: promautoFactory.NewGauge(prometheus.GaugeOpts{
			Name: "skysure_credits_outstanding",
			Help: "sum of withdrawable passenger credits",
		}),
		poolBalance: promautoFactory.NewGauge(prometheus.GaugeOpts{
			Name: "skysure_pool_balance",
			Help: "total funds held in the pool",
		}),
	}
}
