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

import "fmt"

// AccountID is an opaque party identity: an airline, passenger, oracle, or
// the administrator. The engine attaches no meaning to its contents.
type AccountID string

// Amount is an abstract quantity of funds in base units. Purchases are
// expected in even base units so the 3/2 payout multiplier stays exact.
type Amount uint64

// AirlineStatus is the registration state of an airline.
type AirlineStatus uint8

const (
	AirlineApplied AirlineStatus = iota
	AirlineRegistered
	AirlineFunded
)

func (s AirlineStatus) String() string {
	switch s {
	case AirlineApplied:
		return "applied"
	case AirlineRegistered:
		return "registered"
	case AirlineFunded:
		return "funded"
	default:
		return fmt.Sprintf("unknown (%d)", uint8(s))
	}
}

// Airline is a roster entry. Records are created on first proposal and
// never deleted; the ante is monotonically non-decreasing.
type Airline struct {
	ID     AccountID
	Ante   Amount
	Status AirlineStatus
}

// FlightStatus is a finalized flight status code.
type FlightStatus uint8

const (
	FlightStatusUnknown       FlightStatus = 0
	FlightStatusOnTime        FlightStatus = 10
	FlightStatusLateAirline   FlightStatus = 20
	FlightStatusLateWeather   FlightStatus = 30
	FlightStatusLateTechnical FlightStatus = 40
	FlightStatusLateOther     FlightStatus = 50
)

// Valid reports whether the code is one of the defined status codes.
func (s FlightStatus) Valid() bool {
	switch s {
	case FlightStatusUnknown,
		FlightStatusOnTime,
		FlightStatusLateAirline,
		FlightStatusLateWeather,
		FlightStatusLateTechnical,
		FlightStatusLateOther:
		return true
	default:
		return false
	}
}

func (s FlightStatus) String() string {
	switch s {
	case FlightStatusUnknown:
		return "unknown"
	case FlightStatusOnTime:
		return "on-time"
	case FlightStatusLateAirline:
		return "late-airline"
	case FlightStatusLateWeather:
		return "late-weather"
	case FlightStatusLateTechnical:
		return "late-technical"
	case FlightStatusLateOther:
		return "late-other"
	default:
		return fmt.Sprintf("invalid (%d)", uint8(s))
	}
}

// FlightKey uniquely identifies a flight by operating airline, flight
// designator, and scheduled departure (unix seconds).
type FlightKey struct {
	Airline   AccountID
	Number    string
	Departure int64
}

func (k FlightKey) String() string {
	return fmt.Sprintf("%s/%s@%d", k.Airline, k.Number, k.Departure)
}

// Flight is a flight record. The status code is mutated only by the
// finalized outcome of oracle consensus.
type Flight struct {
	Key        FlightKey
	UpdatedAt  int64
	Status     FlightStatus
	Registered bool
}

// PolicyKey uniquely identifies an insurance policy.
type PolicyKey struct {
	Passenger AccountID
	Flight    FlightKey
}

// Policy is an insurance policy record. It is never amended after creation
// and is settled exactly once when its flight is finalized.
type Policy struct {
	Passenger AccountID
	Flight    FlightKey
	Amount    Amount
	Settled   bool
}
