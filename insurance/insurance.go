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
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/skysure/event"
	"github.com/blinklabs-io/skysure/ledger"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ErrAirlineNotFunded = errors.New("operating airline has not met the ante threshold")
	ErrFlightFinalized  = errors.New("flight status is already finalized")
)

// PurchaseAmountError is returned when a policy purchase amount is zero or
// exceeds the per-passenger cap.
type PurchaseAmountError struct {
	Amount ledger.Amount
	Cap    ledger.Amount
}

func (e *PurchaseAmountError) Error() string {
	return fmt.Sprintf(
		"invalid purchase amount %d: must be > 0 and <= %d",
		e.Amount,
		e.Cap,
	)
}

type InsuranceConfig struct {
	PromRegistry prometheus.Registerer
	Logger       *slog.Logger
	EventBus     *event.EventBus
	Ledger       *ledger.Ledger
}

// Insurance owns policy purchase, settlement, and credit withdrawal. Funds
// never move to a passenger except through Withdraw: settlement only
// credits the passenger's ledger entry.
type Insurance struct {
	config   InsuranceConfig
	ledger   *ledger.Ledger
	logger   *slog.Logger
	eventBus *event.EventBus
	metrics  *insuranceMetrics
}

func NewInsurance(config InsuranceConfig) *Insurance {
	i := &Insurance{
		config:   config,
		ledger:   config.Ledger,
		eventBus: config.EventBus,
	}
	if config.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		i.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		i.logger = config.Logger
	}
	i.metrics = newInsuranceMetrics(config.PromRegistry)
	return i
}

// Buy purchases a policy for a flight. The flight must exist with a still
// undetermined status, its airline must be Funded, the amount must be
// positive and within the cap, and at most one policy may exist per
// (passenger, flight). Funds move from the passenger into the pool; no
// credit is created yet.
func (i *Insurance) Buy(
	passenger ledger.AccountID,
	flight ledger.FlightKey,
	amount ledger.Amount,
) error {
	if !i.ledger.IsOperational() {
		return ledger.ErrNotOperational
	}
	flightRec, ok := i.ledger.Flight(flight)
	if !ok || !flightRec.Registered {
		return ledger.ErrUnknownFlight
	}
	if flightRec.Status != ledger.FlightStatusUnknown {
		return ErrFlightFinalized
	}
	airlineRec, ok := i.ledger.Airline(flight.Airline)
	if !ok || airlineRec.Status != ledger.AirlineFunded {
		return ErrAirlineNotFunded
	}
	if amount == 0 || amount > ledger.InsuranceCap {
		return &PurchaseAmountError{
			Amount: amount,
			Cap:    ledger.InsuranceCap,
		}
	}
	if _, err := i.ledger.AddPolicy(passenger, flight, amount); err != nil {
		return err
	}
	i.metrics.policiesSold.Inc()
	i.metrics.poolBalance.Set(float64(i.ledger.Pool()))
	i.logger.Info(
		"sold policy",
		"component", "insurance",
		"passenger", passenger,
		"flight", flight.String(),
		"amount", amount,
	)
	i.eventBus.Publish(
		PolicyPurchasedEventType,
		event.NewEvent(
			PolicyPurchasedEventType,
			PolicyPurchasedEvent{
				Passenger: passenger,
				Airline:   flight.Airline,
				Flight:    flight.Number,
				Departure: flight.Departure,
				Amount:    amount,
			},
		),
	)
	return nil
}

// SettleFlight converts a finalized flight's unsettled policies into
// withdrawable credit. It is invoked by oracle consensus upon finalization.
// Each policy is marked settled exactly once regardless of outcome, so a
// repeated invocation for the same flight changes nothing.
func (i *Insurance) SettleFlight(
	flight ledger.FlightKey,
	status ledger.FlightStatus,
) error {
	policies := i.ledger.PoliciesForFlight(flight)
	if status == ledger.FlightStatusLateAirline {
		// Check the combined payout against the pool before touching
		// anything, so a short pool fails the whole settlement instead
		// of crediting a subset of passengers
		var owed ledger.Amount
		for _, policy := range policies {
			if !policy.Settled {
				owed += ledger.PayoutAmount(policy.Amount)
			}
		}
		if err := i.ledger.CanCredit(owed); err != nil {
			return err
		}
	}
	for _, policy := range policies {
		if policy.Settled {
			continue
		}
		var payout ledger.Amount
		if status == ledger.FlightStatusLateAirline {
			payout = ledger.PayoutAmount(policy.Amount)
			if err := i.ledger.AddCredit(policy.Passenger, payout); err != nil {
				return err
			}
			i.metrics.creditsOutstanding.Set(
				float64(i.ledger.CreditTotal()),
			)
			i.logger.Info(
				"credited policy payout",
				"component", "insurance",
				"passenger", policy.Passenger,
				"flight", flight.String(),
				"payout", payout,
			)
		}
		policy.Settled = true
		i.metrics.policiesSettled.Inc()
		i.eventBus.Publish(
			PolicySettledEventType,
			event.NewEvent(
				PolicySettledEventType,
				PolicySettledEvent{
					Passenger:     policy.Passenger,
					Airline:       flight.Airline,
					Flight:        flight.Number,
					Departure:     flight.Departure,
					Amount:        policy.Amount,
					Credited:      payout,
					CreditBalance: i.ledger.Credit(policy.Passenger),
				},
			),
		)
	}
	return nil
}

// Withdraw transfers the passenger's entire credit balance out, zeroing
// the ledger entry atomically with the transfer. A zero balance fails.
//
// Returns the amount withdrawn.
func (i *Insurance) Withdraw(
	passenger ledger.AccountID,
) (ledger.Amount, error) {
	if !i.ledger.IsOperational() {
		return 0, ledger.ErrNotOperational
	}
	amount, err := i.ledger.WithdrawCredit(passenger)
	if err != nil {
		return 0, err
	}
	i.metrics.creditsOutstanding.Set(float64(i.ledger.CreditTotal()))
	i.metrics.poolBalance.Set(float64(i.ledger.Pool()))
	i.logger.Info(
		"credit withdrawal",
		"component", "insurance",
		"passenger", passenger,
		"amount", amount,
	)
	i.eventBus.Publish(
		CreditWithdrawnEventType,
		event.NewEvent(
			CreditWithdrawnEventType,
			CreditWithdrawnEvent{
				Passenger: passenger,
				Amount:    amount,
			},
		),
	)
	return amount, nil
}
