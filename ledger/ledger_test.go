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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationalGate(t *testing.T) {
	l := NewLedger("admin")
	assert.True(t, l.IsOperational())

	err := l.SetOperational("stranger", false)
	require.ErrorIs(t, err, ErrNotAdmin)
	assert.True(t, l.IsOperational())

	require.NoError(t, l.SetOperational("admin", false))
	assert.False(t, l.IsOperational())

	require.NoError(t, l.SetOperational("admin", true))
	assert.True(t, l.IsOperational())
}

func TestEnsureAirlineIdempotent(t *testing.T) {
	l := NewLedger("admin")
	a := l.EnsureAirline("AA")
	assert.Equal(t, AirlineApplied, a.Status)
	assert.Same(t, a, l.EnsureAirline("AA"))
	assert.Equal(t, 0, l.RegisteredCount())
}

func TestMarkAirlineRegistered(t *testing.T) {
	l := NewLedger("admin")
	err := l.MarkAirlineRegistered("AA")
	require.ErrorIs(t, err, ErrUnknownAirline)

	l.EnsureAirline("AA")
	require.NoError(t, l.MarkAirlineRegistered("AA"))
	assert.Equal(t, 1, l.RegisteredCount())

	// A second promotion leaves the count unchanged
	require.NoError(t, l.MarkAirlineRegistered("AA"))
	assert.Equal(t, 1, l.RegisteredCount())
}

func TestDepositAnteThreshold(t *testing.T) {
	l := NewLedger("admin")
	l.EnsureAirline("AA")
	require.NoError(t, l.MarkAirlineRegistered("AA"))

	ante, crossed, err := l.DepositAnte("AA", AnteThreshold/2)
	require.NoError(t, err)
	assert.Equal(t, AnteThreshold/2, ante)
	assert.False(t, crossed)
	a, _ := l.Airline("AA")
	assert.Equal(t, AirlineRegistered, a.Status)

	ante, crossed, err = l.DepositAnte("AA", AnteThreshold/2)
	require.NoError(t, err)
	assert.Equal(t, AnteThreshold, ante)
	assert.True(t, crossed)
	assert.Equal(t, AirlineFunded, a.Status)

	// Further deposits are retained but never cross again
	ante, crossed, err = l.DepositAnte("AA", 1000)
	require.NoError(t, err)
	assert.Equal(t, AnteThreshold+1000, ante)
	assert.False(t, crossed)
	assert.Equal(t, AnteThreshold+1000, l.Pool())
}

func TestDepositAnteUnknownAirline(t *testing.T) {
	l := NewLedger("admin")
	_, _, err := l.DepositAnte("AA", 100)
	require.ErrorIs(t, err, ErrUnknownAirline)
}

func TestAddFlightDuplicate(t *testing.T) {
	l := NewLedger("admin")
	key := FlightKey{Airline: "AA", Number: "AA100", Departure: 1700000000}
	f, err := l.AddFlight(key)
	require.NoError(t, err)
	assert.Equal(t, FlightStatusUnknown, f.Status)

	_, err = l.AddFlight(key)
	require.ErrorIs(t, err, ErrFlightExists)
}

func TestSetFlightStatus(t *testing.T) {
	l := NewLedger("admin")
	key := FlightKey{Airline: "AA", Number: "AA100", Departure: 1700000000}
	err := l.SetFlightStatus(key, FlightStatusOnTime, 1700001000)
	require.ErrorIs(t, err, ErrUnknownFlight)

	_, err = l.AddFlight(key)
	require.NoError(t, err)
	require.NoError(t, l.SetFlightStatus(key, FlightStatusLateAirline, 1700001000))
	f, ok := l.Flight(key)
	require.True(t, ok)
	assert.Equal(t, FlightStatusLateAirline, f.Status)
	assert.Equal(t, int64(1700001000), f.UpdatedAt)
}

func TestAddPolicy(t *testing.T) {
	l := NewLedger("admin")
	key := FlightKey{Airline: "AA", Number: "AA100", Departure: 1700000000}
	_, err := l.AddFlight(key)
	require.NoError(t, err)

	p, err := l.AddPolicy("alice", key, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, Amount(1_000_000), p.Amount)
	assert.False(t, p.Settled)
	assert.Equal(t, Amount(1_000_000), l.Pool())

	_, err = l.AddPolicy("alice", key, 500_000)
	require.ErrorIs(t, err, ErrDuplicatePolicy)
	assert.Equal(t, Amount(1_000_000), l.Pool())

	_, err = l.AddPolicy("bob", key, 500_000)
	require.NoError(t, err)
	assert.Len(t, l.PoliciesForFlight(key), 2)
}

func TestCreditInvariant(t *testing.T) {
	l := NewLedger("admin")
	l.CollectFee(1000)

	require.NoError(t, l.AddCredit("alice", 600))
	err := l.AddCredit("bob", 500)
	var invariantErr *CreditInvariantError
	require.ErrorAs(t, err, &invariantErr)
	assert.Equal(t, Amount(600), invariantErr.CreditTotal)
	assert.Equal(t, Amount(500), invariantErr.Increment)
	assert.Equal(t, Amount(1000), invariantErr.Pool)

	// The failed increment left balances untouched
	assert.Equal(t, Amount(0), l.Credit("bob"))
	assert.Equal(t, Amount(600), l.CreditTotal())
}

func TestWithdrawCredit(t *testing.T) {
	l := NewLedger("admin")
	l.CollectFee(1000)
	require.NoError(t, l.AddCredit("alice", 600))

	amount, err := l.WithdrawCredit("alice")
	require.NoError(t, err)
	assert.Equal(t, Amount(600), amount)
	assert.Equal(t, Amount(400), l.Pool())
	assert.Equal(t, Amount(0), l.CreditTotal())

	// Second withdrawal finds an empty balance
	_, err = l.WithdrawCredit("alice")
	require.ErrorIs(t, err, ErrNoFunds)
}

func TestPayoutAmount(t *testing.T) {
	assert.Equal(t, Amount(1_500_000), PayoutAmount(1_000_000))
	assert.Equal(t, Amount(3), PayoutAmount(2))
	assert.Equal(t, Amount(0), PayoutAmount(0))
}

func TestFlightStatusValid(t *testing.T) {
	for _, status := range []FlightStatus{
		FlightStatusUnknown,
		FlightStatusOnTime,
		FlightStatusLateAirline,
		FlightStatusLateWeather,
		FlightStatusLateTechnical,
		FlightStatusLateOther,
	} {
		assert.True(t, status.Valid(), status.String())
	}
	assert.False(t, FlightStatus(5).Valid())
	assert.False(t, FlightStatus(60).Valid())
}
