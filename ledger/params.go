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

// Fixed economic parameters. These are part of the engine's contract
// surface and are intentionally not configurable at runtime.
const (
	// AnteThreshold is the cumulative deposit an airline must reach before
	// it may operate flights or be insured against.
	AnteThreshold Amount = 10_000_000

	// InsuranceCap is the maximum purchase amount for a single policy.
	InsuranceCap Amount = 1_000_000

	// OracleFee is the one-time oracle registration fee.
	OracleFee Amount = 1_000_000

	// BootstrapQuorum is the roster size at which airline registration
	// switches from direct registration to multi-party voting.
	BootstrapQuorum = 4

	// MinResponses is the number of distinct matching oracle responses
	// required to finalize a flight status.
	MinResponses = 3

	// PayoutNumerator and PayoutDenominator define the credit multiplier
	// applied to a policy amount when a flight finalizes as late due to
	// the airline.
	PayoutNumerator   = 3
	PayoutDenominator = 2

	// IndexRange is the size of the oracle index space.
	IndexRange = 10

	// IndexCount is the number of distinct indexes assigned to each oracle.
	IndexCount = 3
)

// PayoutAmount returns the credit owed for a policy amount under the fixed
// multiplier. Integer division truncates; purchase amounts are expected in
// even base units.
func PayoutAmount(amount Amount) Amount {
	return amount * PayoutNumerator / PayoutDenominator
}
