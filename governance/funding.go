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
	"github.com/blinklabs-io/skysure/event"
	"github.com/blinklabs-io/skysure/ledger"
)

// Fund deposits ante funds for the calling airline. Only a registered
// airline may fund, and only on its own behalf. The ante is monotonic and
// overpayment past the threshold is retained; once the cumulative ante
// reaches the threshold the airline becomes Funded.
//
// Returns the new cumulative ante.
func (g *Governance) Fund(
	caller ledger.AccountID,
	amount ledger.Amount,
) (ledger.Amount, error) {
	if !g.ledger.IsOperational() {
		return 0, ledger.ErrNotOperational
	}
	rec, ok := g.ledger.Airline(caller)
	if !ok || rec.Status == ledger.AirlineApplied {
		return 0, ErrNotRegistered
	}
	ante, crossed, err := g.ledger.DepositAnte(caller, amount)
	if err != nil {
		return 0, err
	}
	g.logger.Debug(
		"airline ante deposit",
		"component", "governance",
		"airline", caller,
		"amount", amount,
		"ante", ante,
	)
	rec, _ = g.ledger.Airline(caller)
	g.eventBus.Publish(
		AnteDepositedEventType,
		event.NewEvent(
			AnteDepositedEventType,
			AnteDepositedEvent{
				Airline: caller,
				Amount:  amount,
				Ante:    ante,
				Funded:  rec.Status == ledger.AirlineFunded,
			},
		),
	)
	if crossed {
		g.metrics.airlinesFunded.Inc()
		g.logger.Info(
			"airline funded",
			"component", "governance",
			"airline", caller,
			"ante", ante,
		)
		g.eventBus.Publish(
			AirlineFundedEventType,
			event.NewEvent(
				AirlineFundedEventType,
				AirlineFundedEvent{
					Airline: caller,
					Ante:    ante,
				},
			),
		)
	}
	return ante, nil
}

// RegisterFlight creates a flight record operated by the given airline.
// The airline must be Funded.
func (g *Governance) RegisterFlight(key ledger.FlightKey) error {
	if !g.ledger.IsOperational() {
		return ledger.ErrNotOperational
	}
	rec, ok := g.ledger.Airline(key.Airline)
	if !ok || rec.Status != ledger.AirlineFunded {
		return ErrNotFunded
	}
	if _, err := g.ledger.AddFlight(key); err != nil {
		return err
	}
	g.metrics.flightsRegistered.Inc()
	g.logger.Info(
		"registered flight",
		"component", "governance",
		"flight", key.String(),
	)
	g.eventBus.Publish(
		FlightRegisteredEventType,
		event.NewEvent(
			FlightRegisteredEventType,
			FlightRegisteredEvent{
				Airline:   key.Airline,
				Flight:    key.Number,
				Departure: key.Departure,
			},
		),
	)
	return nil
}
