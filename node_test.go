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
	"context"
	"testing"
	"time"

	"github.com/blinklabs-io/skysure/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource returns a fixed sequence of indexes, then repeats the
// last one.
type scriptedSource struct {
	indexes []uint8
	pos     int
}

func (s *scriptedSource) NextIndex(_ ledger.AccountID) uint8 {
	if s.pos >= len(s.indexes) {
		return s.indexes[len(s.indexes)-1]
	}
	ret := s.indexes[s.pos]
	s.pos++
	return ret
}

func newTestNode(t *testing.T, source *scriptedSource) *Node {
	t.Helper()
	n, err := New(
		NewConfig(
			WithAdmin("admin"),
			WithFirstAirline("AL1"),
			WithDataDir(t.TempDir()),
			WithIndexSource(source),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		stopCtx, stopCancel := context.WithTimeout(
			context.Background(),
			5*time.Second,
		)
		defer stopCancel()
		_ = n.Stop(stopCtx)
	})
	return n
}

func TestNewConfigValidation(t *testing.T) {
	_, err := New(NewConfig(WithFirstAirline("AL1")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "administrator")

	_, err = New(NewConfig(WithAdmin("admin")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bootstrap airline")
}

func TestNodeBootstrap(t *testing.T) {
	n := newTestNode(t, &scriptedSource{indexes: []uint8{0}})

	assert.True(t, n.IsOperational())

	airline, ok := n.Airline("AL1")
	require.True(t, ok)
	assert.Equal(t, ledger.AirlineRegistered, airline.Status)

	// The bootstrap airline is mirrored into the record store
	records, err := n.store.Airlines()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "AL1", records[0].Account)
	assert.Equal(t, "registered", records[0].Status)
}

func TestNodeOperationalGate(t *testing.T) {
	n := newTestNode(t, &scriptedSource{indexes: []uint8{0}})

	require.NoError(t, n.SetOperational("admin", false))
	assert.False(t, n.IsOperational())

	_, _, err := n.RegisterAirline("AL1", "AL2")
	require.ErrorIs(t, err, ledger.ErrNotOperational)

	require.NoError(t, n.SetOperational("admin", true))
	_, _, err = n.RegisterAirline("AL1", "AL2")
	require.NoError(t, err)
}

func TestNodeEndToEnd(t *testing.T) {
	// Index draws: three per oracle registration, then one for the
	// status request. All oracles share index 4 so each can respond.
	source := &scriptedSource{
		indexes: []uint8{
			4, 8, 2, // oracle1
			4, 8, 2, // oracle2
			4, 8, 2, // oracle3
			4, // status request
		},
	}
	n := newTestNode(t, source)

	// Grow the roster to the bootstrap quorum by direct registration
	for _, candidate := range []ledger.AccountID{"AL2", "AL3", "AL4"} {
		registered, _, err := n.RegisterAirline("AL1", candidate)
		require.NoError(t, err)
		assert.True(t, registered)
	}

	// The fifth airline needs votes from half the roster
	registered, votes, err := n.RegisterAirline("AL1", "AL5")
	require.NoError(t, err)
	assert.False(t, registered)
	assert.Equal(t, 1, votes)
	registered, votes, err = n.RegisterAirline("AL2", "AL5")
	require.NoError(t, err)
	assert.True(t, registered)
	assert.Equal(t, 2, votes)

	// Fund the operating airline to its ante threshold
	ante, err := n.FundAirline("AL1", ledger.AnteThreshold)
	require.NoError(t, err)
	assert.Equal(t, ledger.AnteThreshold, ante)
	assert.Equal(t, ledger.AnteThreshold, n.Pool())

	// Register the oracles
	for _, id := range []ledger.AccountID{"oracle1", "oracle2", "oracle3"} {
		indexes, err := n.RegisterOracle(id, ledger.OracleFee)
		require.NoError(t, err)
		assert.Equal(t, [ledger.IndexCount]uint8{4, 8, 2}, indexes)
	}

	flight := ledger.FlightKey{
		Airline:   "AL1",
		Number:    "SK100",
		Departure: 1760000000,
	}
	require.NoError(t, n.RegisterFlight(flight))

	require.NoError(t, n.BuyInsurance("alice", flight, ledger.InsuranceCap))
	poolAfterPurchase := ledger.AnteThreshold +
		3*ledger.OracleFee +
		ledger.InsuranceCap
	assert.Equal(t, poolAfterPurchase, n.Pool())

	index, err := n.RequestFlightStatus("alice", flight)
	require.NoError(t, err)
	assert.Equal(t, uint8(4), index)

	// Consensus closes on the third matching report
	for i, id := range []ledger.AccountID{"oracle1", "oracle2"} {
		require.NoError(
			t,
			n.SubmitOracleResponse(
				id,
				index,
				flight,
				ledger.FlightStatusLateAirline,
			),
		)
		assert.Equal(t, ledger.Amount(0), n.Credit("alice"), "report %d", i)
	}
	require.NoError(
		t,
		n.SubmitOracleResponse(
			"oracle3",
			index,
			flight,
			ledger.FlightStatusLateAirline,
		),
	)

	// The flight is finalized and the policy settled at 1.5x
	rec, ok := n.Flight(flight)
	require.True(t, ok)
	assert.Equal(t, ledger.FlightStatusLateAirline, rec.Status)
	policy, ok := n.Policy("alice", flight)
	require.True(t, ok)
	assert.True(t, policy.Settled)
	expectedCredit := ledger.PayoutAmount(ledger.InsuranceCap)
	assert.Equal(t, expectedCredit, n.Credit("alice"))

	// Settlement credits, it does not pay out; the pool moves on withdraw
	assert.Equal(t, poolAfterPurchase, n.Pool())
	amount, err := n.WithdrawCredit("alice")
	require.NoError(t, err)
	assert.Equal(t, expectedCredit, amount)
	assert.Equal(t, poolAfterPurchase-expectedCredit, n.Pool())
	assert.Equal(t, ledger.Amount(0), n.Credit("alice"))
	_, err = n.WithdrawCredit("alice")
	require.ErrorIs(t, err, ledger.ErrNoFunds)

	// The record store mirror converges on the final state
	flights, err := n.store.Flights()
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(
		t,
		uint8(ledger.FlightStatusLateAirline),
		flights[0].Status,
	)
	policies, err := n.store.Policies()
	require.NoError(t, err)
	require.Len(t, policies, 1)
	assert.True(t, policies[0].Settled)
	assert.Equal(t, uint64(expectedCredit), policies[0].Credited)
	credit, err := n.store.CreditFor("alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), credit.Amount)

	// Journal appends run off the event bus; wait for the full fact
	// stream to land. 4 registrations (3 direct, 1 voted), 1 deposit,
	// 1 funded, 3 oracles, 1 flight, 1 policy, 1 request, 3 reports,
	// 1 finalization, 1 settlement, 1 withdrawal
	require.Eventually(t, func() bool {
		entries, err := n.Facts(0, 100)
		return err == nil && len(entries) == 18
	}, 5*time.Second, 10*time.Millisecond)
}

func TestNodeRunApiServer(t *testing.T) {
	n, err := New(
		NewConfig(
			WithAdmin("admin"),
			WithFirstAirline("AL1"),
			WithDataDir(t.TempDir()),
			WithApiListenAddress("localhost:0"),
		),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	errChan := make(chan error, 1)
	go func() {
		errChan <- n.Run(ctx)
	}()

	// Give the listener a moment to start, then shut down
	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-errChan:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("node did not stop after context cancellation")
	}
}
