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
	"github.com/blinklabs-io/skysure/event"
	"github.com/blinklabs-io/skysure/ledger"
)

const (
	PolicyPurchasedEventType event.EventType = "insurance.policy_purchased"
	PolicySettledEventType   event.EventType = "insurance.policy_settled"
	CreditWithdrawnEventType event.EventType = "insurance.credit_withdrawn"
)

type PolicyPurchasedEvent struct {
	Passenger ledger.AccountID
	Airline   ledger.AccountID
	Flight    string
	Departure int64
	Amount    ledger.Amount
}

// PolicySettledEvent is emitted once per policy when its flight finalizes.
// Credited is zero unless the outcome qualified for a payout; CreditBalance
// is the passenger's withdrawable balance after the settlement.
type PolicySettledEvent struct {
	Passenger     ledger.AccountID
	Airline       ledger.AccountID
	Flight        string
	Departure     int64
	Amount        ledger.Amount
	Credited      ledger.Amount
	CreditBalance ledger.Amount
}

type CreditWithdrawnEvent struct {
	Passenger ledger.AccountID
	Amount    ledger.Amount
}
