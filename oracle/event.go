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

package oracle

import (
	"github.com/blinklabs-io/skysure/event"
	"github.com/blinklabs-io/skysure/ledger"
)

const (
	OracleRegisteredEventType event.EventType = "oracle.registered"
	StatusRequestedEventType  event.EventType = "oracle.status_requested"
	ReportRecordedEventType   event.EventType = "oracle.report_recorded"
	FlightFinalizedEventType  event.EventType = "oracle.flight_finalized"
)

type OracleRegisteredEvent struct {
	Oracle  ledger.AccountID
	Indexes [ledger.IndexCount]uint8
}

// StatusRequestedEvent is the request broadcast external oracle actors
// watch for. Only oracles assigned the drawn index should respond.
type StatusRequestedEvent struct {
	Airline   ledger.AccountID
	Flight    string
	Departure int64
	Index     uint8
}

type ReportRecordedEvent struct {
	Airline   ledger.AccountID
	Flight    string
	Departure int64
	Status    ledger.FlightStatus
}

type FlightFinalizedEvent struct {
	Airline   ledger.AccountID
	Flight    string
	Departure int64
	Status    ledger.FlightStatus
}
