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

package api

import (
	"github.com/blinklabs-io/skysure/journal"
	"github.com/blinklabs-io/skysure/ledger"
)

// ApiNode is the interface that the REST API server uses to drive the
// engine. This decouples the HTTP server from the concrete Node struct and
// enables testing with mock implementations.
type ApiNode interface {
	// IsOperational returns the state of the operational gate.
	IsOperational() bool

	// SetOperational flips the operational gate. Only the administrator
	// may call this.
	SetOperational(caller ledger.AccountID, operational bool) error

	// RegisterAirline proposes (or votes for) a candidate airline on
	// behalf of the calling airline.
	RegisterAirline(
		caller ledger.AccountID,
		candidate ledger.AccountID,
	) (bool, int, error)

	// FundAirline deposits toward the calling airline's ante.
	FundAirline(
		caller ledger.AccountID,
		amount ledger.Amount,
	) (ledger.Amount, error)

	// RegisterFlight registers a flight for a funded airline.
	RegisterFlight(key ledger.FlightKey) error

	// BuyInsurance purchases a policy on a registered flight.
	BuyInsurance(
		passenger ledger.AccountID,
		key ledger.FlightKey,
		amount ledger.Amount,
	) error

	// WithdrawCredit pays out a passenger's entire accumulated credit.
	WithdrawCredit(passenger ledger.AccountID) (ledger.Amount, error)

	// RegisterOracle registers an oracle identity against the fixed fee.
	RegisterOracle(
		id ledger.AccountID,
		fee ledger.Amount,
	) ([ledger.IndexCount]uint8, error)

	// OracleIndexes returns the indexes assigned to a registered oracle.
	OracleIndexes(id ledger.AccountID) ([ledger.IndexCount]uint8, error)

	// RequestFlightStatus opens an oracle status request for a flight.
	RequestFlightStatus(
		requester ledger.AccountID,
		key ledger.FlightKey,
	) (uint8, error)

	// SubmitOracleResponse records an oracle's status report.
	SubmitOracleResponse(
		oracleId ledger.AccountID,
		index uint8,
		key ledger.FlightKey,
		status ledger.FlightStatus,
	) error

	// Airlines returns a snapshot of the airline roster.
	Airlines() []ledger.Airline

	// Flights returns a snapshot of all registered flights.
	Flights() []ledger.Flight

	// Credit returns a passenger's withdrawable balance.
	Credit(passenger ledger.AccountID) ledger.Amount

	// Pool returns the engine's pooled balance.
	Pool() ledger.Amount

	// Facts returns journal entries starting at the given sequence
	// number.
	Facts(seq uint64, limit int) ([]journal.Entry, error)
}
