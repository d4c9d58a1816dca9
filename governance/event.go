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

const (
	AirlineRegisteredEventType event.EventType = "governance.airline_registered"
	AnteDepositedEventType     event.EventType = "governance.ante_deposited"
	AirlineFundedEventType     event.EventType = "governance.airline_funded"
	FlightRegisteredEventType  event.EventType = "governance.flight_registered"
)

type AirlineRegisteredEvent struct {
	Airline ledger.AccountID
	Votes   int
}

// AnteDepositedEvent is emitted for every deposit; Funded reflects the
// airline's status after the deposit.
type AnteDepositedEvent struct {
	Airline ledger.AccountID
	Amount  ledger.Amount
	Ante    ledger.Amount
	Funded  bool
}

type AirlineFundedEvent struct {
	Airline ledger.AccountID
	Ante    ledger.Amount
}

type FlightRegisteredEvent struct {
	Airline   ledger.AccountID
	Flight    string
	Departure int64
}
