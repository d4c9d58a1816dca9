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

package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreInMemory(t *testing.T) {
	s, err := New("", nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SetAirline(&Airline{
		Account: "mem-airline",
		Status:  "registered",
	}))
	airlines, err := s.Airlines()
	require.NoError(t, err)
	require.NotEmpty(t, airlines)
}

func TestAirlineUpsert(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetAirline(&Airline{
		Account: "AL1",
		Status:  "registered",
		Ante:    0,
	}))
	require.NoError(t, s.SetAirline(&Airline{
		Account: "AL1",
		Status:  "funded",
		Ante:    10_000_000,
	}))
	require.NoError(t, s.SetAirline(&Airline{
		Account: "AL2",
		Status:  "applied",
	}))

	airlines, err := s.Airlines()
	require.NoError(t, err)
	require.Len(t, airlines, 2)
	assert.Equal(t, "AL1", airlines[0].Account)
	assert.Equal(t, "funded", airlines[0].Status)
	assert.Equal(t, uint64(10_000_000), airlines[0].Ante)
	assert.Equal(t, "AL2", airlines[1].Account)
}

func TestFlightUpsert(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetFlight(&Flight{
		Airline:   "AL1",
		Number:    "SK100",
		Departure: 1760000000,
		Status:    0,
	}))
	require.NoError(t, s.SetFlight(&Flight{
		Airline:         "AL1",
		Number:          "SK100",
		Departure:       1760000000,
		Status:          20,
		StatusUpdatedAt: 1760001000,
	}))
	// Same designator at a different departure is a separate flight
	require.NoError(t, s.SetFlight(&Flight{
		Airline:   "AL1",
		Number:    "SK100",
		Departure: 1760086400,
	}))

	flights, err := s.Flights()
	require.NoError(t, err)
	require.Len(t, flights, 2)
	assert.Equal(t, uint8(20), flights[0].Status)
	assert.Equal(t, int64(1760001000), flights[0].StatusUpdatedAt)
}

func TestPolicyUpsert(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetPolicy(&Policy{
		Passenger: "alice",
		Airline:   "AL1",
		Number:    "SK100",
		Departure: 1760000000,
		Amount:    1_000_000,
	}))
	require.NoError(t, s.SetPolicy(&Policy{
		Passenger: "alice",
		Airline:   "AL1",
		Number:    "SK100",
		Departure: 1760000000,
		Amount:    1_000_000,
		Credited:  1_500_000,
		Settled:   true,
	}))

	policies, err := s.Policies()
	require.NoError(t, err)
	require.Len(t, policies, 1)
	assert.True(t, policies[0].Settled)
	assert.Equal(t, uint64(1_500_000), policies[0].Credited)
}

func TestCreditUpsert(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetCredit(&Credit{
		Passenger: "alice",
		Amount:    1_500_000,
	}))
	require.NoError(t, s.SetCredit(&Credit{
		Passenger: "alice",
		Amount:    0,
	}))

	credit, err := s.CreditFor("alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), credit.Amount)

	// Unknown passengers report a zero balance
	credit, err = s.CreditFor("nobody")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), credit.Amount)
}

func TestOracleInsertOnly(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetOracle(&Oracle{
		Account: "oracle1",
		Index0:  3,
		Index1:  7,
		Index2:  9,
	}))
	// Oracles are immutable; a conflicting insert is ignored
	require.NoError(t, s.SetOracle(&Oracle{
		Account: "oracle1",
		Index0:  1,
		Index1:  2,
		Index2:  3,
	}))

	var rec Oracle
	result := s.db.Where("account = ?", "oracle1").First(&rec)
	require.NoError(t, result.Error)
	assert.Equal(t, uint8(3), rec.Index0)
	assert.Equal(t, uint8(7), rec.Index1)
	assert.Equal(t, uint8(9), rec.Index2)
}

func TestStoreReopen(t *testing.T) {
	dataDir := t.TempDir()
	s, err := New(dataDir, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetAirline(&Airline{
		Account: "AL1",
		Status:  "funded",
		Ante:    10_000_000,
	}))
	require.NoError(t, s.Close())

	s, err = New(dataDir, nil)
	require.NoError(t, err)
	defer s.Close()
	airlines, err := s.Airlines()
	require.NoError(t, err)
	require.Len(t, airlines, 1)
	assert.Equal(t, "AL1", airlines[0].Account)
}
