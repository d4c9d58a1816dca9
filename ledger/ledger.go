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

package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrNotOperational  = errors.New("engine is not operational")
	ErrNotAdmin        = errors.New("caller is not the administrator")
	ErrUnknownAirline  = errors.New("unknown airline")
	ErrUnknownFlight   = errors.New("unknown flight")
	ErrFlightExists    = errors.New("flight already registered")
	ErrDuplicatePolicy = errors.New("policy already exists for passenger and flight")
	ErrNoFunds         = errors.New("no withdrawable credit")
)

// CreditInvariantError is returned when a credit increment would push the
// total of all withdrawable credits past the funds actually held in the pool.
type CreditInvariantError struct {
	CreditTotal Amount
	Increment   Amount
	Pool        Amount
}

func (e *CreditInvariantError) Error() string {
	return fmt.Sprintf(
		"credit invariant violated: credits=%d increment=%d pool=%d",
		e.CreditTotal,
		e.Increment,
		e.Pool,
	)
}

// Ledger is the shared aggregate holding all durable facts: the airline
// roster, flight records, insurance policies, the credit ledger, and the
// funds pool. It performs bookkeeping and invariant checks only; the rules
// that decide when a mutation is allowed live in the governance, insurance,
// and oracle packages, which all operate on a Ledger passed by reference.
//
// The Ledger performs no locking of its own. Callers are expected to apply
// every mutating operation under a single serial ordering (the Node wraps
// all entry points in one mutex).
type Ledger struct {
	airlines        map[AccountID]*Airline
	flights         map[FlightKey]*Flight
	policies        map[PolicyKey]*Policy
	flightPolicies  map[FlightKey][]PolicyKey
	credits         map[AccountID]Amount
	admin           AccountID
	pool            Amount
	creditTotal     Amount
	registeredCount int
	operational     bool
}

// NewLedger creates an empty Ledger with the given administrator identity.
// The operational gate starts open.
func NewLedger(admin AccountID) *Ledger {
	return &Ledger{
		airlines:       make(map[AccountID]*Airline),
		flights:        make(map[FlightKey]*Flight),
		policies:       make(map[PolicyKey]*Policy),
		flightPolicies: make(map[FlightKey][]PolicyKey),
		credits:        make(map[AccountID]Amount),
		admin:          admin,
		operational:    true,
	}
}

// IsOperational reports whether the administrative circuit breaker is open.
// Every mutating entry point checks this before anything else.
func (l *Ledger) IsOperational() bool {
	return l.operational
}

// SetOperational flips the administrative circuit breaker. Only the
// administrator may call it. Setting false pauses every mutating entry
// point without touching stored balances.
func (l *Ledger) SetOperational(caller AccountID, operational bool) error {
	if caller != l.admin {
		return ErrNotAdmin
	}
	l.operational = operational
	return nil
}

// Admin returns the administrator identity.
func (l *Ledger) Admin() AccountID {
	return l.admin
}

// EnsureAirline returns the airline record for the given identity, creating
// an Applied record if none exists. Airline records are never deleted.
func (l *Ledger) EnsureAirline(id AccountID) *Airline {
	if a, ok := l.airlines[id]; ok {
		return a
	}
	a := &Airline{
		ID:     id,
		Status: AirlineApplied,
	}
	l.airlines[id] = a
	return a
}

// Airline looks up an airline record.
func (l *Ledger) Airline(id AccountID) (*Airline, bool) {
	a, ok := l.airlines[id]
	return a, ok
}

// RegisteredCount returns the number of airlines with status Registered or
// Funded. This is the denominator for ballot thresholds.
func (l *Ledger) RegisteredCount() int {
	return l.registeredCount
}

// MarkAirlineRegistered promotes an airline to Registered and updates the
// roster count. The caller is responsible for having rejected duplicates.
func (l *Ledger) MarkAirlineRegistered(id AccountID) error {
	a, ok := l.airlines[id]
	if !ok {
		return ErrUnknownAirline
	}
	if a.Status != AirlineApplied {
		// Already counted in the roster
		return nil
	}
	a.Status = AirlineRegistered
	l.registeredCount++
	return nil
}

// DepositAnte adds the given amount to an airline's cumulative ante and the
// funds pool. The ante is monotonic; overpayment past the threshold is
// retained. Returns the new cumulative ante and whether this deposit crossed
// the funding threshold.
func (l *Ledger) DepositAnte(
	id AccountID,
	amount Amount,
) (Amount, bool, error) {
	a, ok := l.airlines[id]
	if !ok {
		return 0, false, ErrUnknownAirline
	}
	a.Ante += amount
	l.pool += amount
	crossed := false
	if a.Status == AirlineRegistered && a.Ante >= AnteThreshold {
		a.Status = AirlineFunded
		crossed = true
	}
	return a.Ante, crossed, nil
}

// AddFlight creates a flight record with status Unknown. The flight key
// must be unique.
func (l *Ledger) AddFlight(key FlightKey) (*Flight, error) {
	if _, ok := l.flights[key]; ok {
		return nil, ErrFlightExists
	}
	f := &Flight{
		Key:        key,
		Registered: true,
		Status:     FlightStatusUnknown,
	}
	l.flights[key] = f
	return f, nil
}

// Flight looks up a flight record.
func (l *Ledger) Flight(key FlightKey) (*Flight, bool) {
	f, ok := l.flights[key]
	return f, ok
}

// SetFlightStatus records the finalized status code for a flight.
func (l *Ledger) SetFlightStatus(
	key FlightKey,
	status FlightStatus,
	updatedAt int64,
) error {
	f, ok := l.flights[key]
	if !ok {
		return ErrUnknownFlight
	}
	f.Status = status
	f.UpdatedAt = updatedAt
	return nil
}

// AddPolicy creates an insurance policy and moves the purchase amount into
// the funds pool. At most one policy may exist per (passenger, flight).
func (l *Ledger) AddPolicy(
	passenger AccountID,
	flight FlightKey,
	amount Amount,
) (*Policy, error) {
	key := PolicyKey{Passenger: passenger, Flight: flight}
	if _, ok := l.policies[key]; ok {
		return nil, ErrDuplicatePolicy
	}
	p := &Policy{
		Passenger: passenger,
		Flight:    flight,
		Amount:    amount,
	}
	l.policies[key] = p
	l.flightPolicies[flight] = append(l.flightPolicies[flight], key)
	l.pool += amount
	return p, nil
}

// Policy looks up a policy record.
func (l *Ledger) Policy(
	passenger AccountID,
	flight FlightKey,
) (*Policy, bool) {
	p, ok := l.policies[PolicyKey{Passenger: passenger, Flight: flight}]
	return p, ok
}

// PoliciesForFlight returns all policy records for a flight in purchase
// order.
func (l *Ledger) PoliciesForFlight(flight FlightKey) []*Policy {
	keys := l.flightPolicies[flight]
	ret := make([]*Policy, 0, len(keys))
	for _, key := range keys {
		ret = append(ret, l.policies[key])
	}
	return ret
}

// CollectFee adds a fee payment (such as the oracle registration fee) to
// the funds pool.
func (l *Ledger) CollectFee(amount Amount) {
	l.pool += amount
}

// CanCredit reports whether an additional credit amount fits within the
// funds held in the pool. It mutates nothing; callers crediting multiple
// passengers in one operation check the combined amount up front so a
// failure cannot leave a subset credited.
func (l *Ledger) CanCredit(amount Amount) error {
	if l.creditTotal+amount > l.pool {
		return &CreditInvariantError{
			CreditTotal: l.creditTotal,
			Increment:   amount,
			Pool:        l.pool,
		}
	}
	return nil
}

// AddCredit increments a passenger's withdrawable credit. The sum of all
// credits must never exceed the funds held in the pool.
func (l *Ledger) AddCredit(passenger AccountID, amount Amount) error {
	if err := l.CanCredit(amount); err != nil {
		return err
	}
	l.credits[passenger] += amount
	l.creditTotal += amount
	return nil
}

// Credit returns a passenger's current withdrawable credit.
func (l *Ledger) Credit(passenger AccountID) Amount {
	return l.credits[passenger]
}

// WithdrawCredit zeroes a passenger's credit entry and releases the full
// amount from the pool in one step. A zero balance fails with ErrNoFunds.
func (l *Ledger) WithdrawCredit(passenger AccountID) (Amount, error) {
	amount := l.credits[passenger]
	if amount == 0 {
		return 0, ErrNoFunds
	}
	delete(l.credits, passenger)
	l.creditTotal -= amount
	l.pool -= amount
	return amount, nil
}

// Pool returns the total funds held by the engine.
func (l *Ledger) Pool() Amount {
	return l.pool
}

// CreditTotal returns the sum of all outstanding withdrawable credits.
func (l *Ledger) CreditTotal() Amount {
	return l.creditTotal
}

// Airlines returns a snapshot of all airline records.
func (l *Ledger) Airlines() []Airline {
	ret := make([]Airline, 0, len(l.airlines))
	for _, a := range l.airlines {
		ret = append(ret, *a)
	}
	return ret
}

// Flights returns a snapshot of all flight records.
func (l *Ledger) Flights() []Flight {
	ret := make([]Flight, 0, len(l.flights))
	for _, f := range l.flights {
		ret = append(ret, *f)
	}
	return ret
}
