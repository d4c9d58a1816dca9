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

// ErrorResponse is the JSON error envelope returned by all endpoints.
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

// RootResponse is returned by GET / with API metadata.
type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Healthy bool `json:"healthy"`
}

// OperationalResponse reports the state of the operational gate.
type OperationalResponse struct {
	Operational bool `json:"operational"`
}

// SetOperationalRequest flips the operational gate.
type SetOperationalRequest struct {
	Caller      string `json:"caller"`
	Operational bool   `json:"operational"`
}

// RegisterAirlineRequest proposes (or votes for) a candidate airline.
type RegisterAirlineRequest struct {
	Caller    string `json:"caller"`
	Candidate string `json:"candidate"`
}

// RegisterAirlineResponse reports the outcome of a registration call.
type RegisterAirlineResponse struct {
	Registered bool `json:"registered"`
	Votes      int  `json:"votes"`
}

// FundAirlineRequest deposits toward the calling airline's ante.
type FundAirlineRequest struct {
	Caller string `json:"caller"`
	Amount uint64 `json:"amount"`
}

// FundAirlineResponse reports the cumulative ante after a deposit.
type FundAirlineResponse struct {
	Ante uint64 `json:"ante"`
}

// AirlineInfo is a roster entry snapshot.
type AirlineInfo struct {
	Account string `json:"account"`
	Status  string `json:"status"`
	Ante    uint64 `json:"ante"`
}

// FlightRequest identifies a flight for registration or status requests.
type FlightRequest struct {
	Airline   string `json:"airline"`
	Number    string `json:"number"`
	Departure int64  `json:"departure"`
}

// FlightInfo is a flight record snapshot.
type FlightInfo struct {
	Airline    string `json:"airline"`
	Number     string `json:"number"`
	Departure  int64  `json:"departure"`
	Status     uint8  `json:"status"`
	StatusText string `json:"status_text"`
	UpdatedAt  int64  `json:"updated_at,omitempty"`
}

// BuyInsuranceRequest purchases a policy on a registered flight.
type BuyInsuranceRequest struct {
	Passenger string `json:"passenger"`
	Airline   string `json:"airline"`
	Number    string `json:"number"`
	Departure int64  `json:"departure"`
	Amount    uint64 `json:"amount"`
}

// CreditResponse reports a passenger's withdrawable balance.
type CreditResponse struct {
	Passenger string `json:"passenger"`
	Amount    uint64 `json:"amount"`
}

// WithdrawRequest pays out a passenger's entire credit.
type WithdrawRequest struct {
	Passenger string `json:"passenger"`
}

// WithdrawResponse reports the amount withdrawn.
type WithdrawResponse struct {
	Amount uint64 `json:"amount"`
}

// RegisterOracleRequest registers an oracle identity.
type RegisterOracleRequest struct {
	Oracle string `json:"oracle"`
	Fee    uint64 `json:"fee"`
}

// OracleInfo reports an oracle's assigned indexes.
type OracleInfo struct {
	Oracle  string  `json:"oracle"`
	Indexes []uint8 `json:"indexes"`
}

// RequestStatusRequest opens an oracle status request for a flight.
type RequestStatusRequest struct {
	Requester string `json:"requester"`
	Airline   string `json:"airline"`
	Number    string `json:"number"`
	Departure int64  `json:"departure"`
}

// RequestStatusResponse reports the drawn index for a status request.
type RequestStatusResponse struct {
	Index uint8 `json:"index"`
}

// SubmitResponseRequest records an oracle's status report.
type SubmitResponseRequest struct {
	Oracle    string `json:"oracle"`
	Index     uint8  `json:"index"`
	Airline   string `json:"airline"`
	Number    string `json:"number"`
	Departure int64  `json:"departure"`
	Status    uint8  `json:"status"`
}

// PoolResponse reports the engine's pooled balance.
type PoolResponse struct {
	Pool uint64 `json:"pool"`
}
