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
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/blinklabs-io/skysure/governance"
	"github.com/blinklabs-io/skysure/insurance"
	"github.com/blinklabs-io/skysure/ledger"
	"github.com/blinklabs-io/skysure/oracle"
)

const apiVersion = "0.1.0"

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

// writeEngineError maps an engine error to an HTTP status code.
func writeEngineError(w http.ResponseWriter, err error) {
	writeError(w, statusForError(err), err.Error())
}

func statusForError(err error) int {
	var feeErr *oracle.RegistrationFeeError
	var amountErr *insurance.PurchaseAmountError
	switch {
	case errors.Is(err, ledger.ErrNotOperational):
		return http.StatusServiceUnavailable
	case errors.Is(err, ledger.ErrNotAdmin),
		errors.Is(err, governance.ErrNotRegistered),
		errors.Is(err, governance.ErrNotFunded),
		errors.Is(err, insurance.ErrAirlineNotFunded),
		errors.Is(err, oracle.ErrIndexMismatch):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrUnknownAirline),
		errors.Is(err, ledger.ErrUnknownFlight),
		errors.Is(err, oracle.ErrNotRegistered),
		errors.Is(err, oracle.ErrNoSuchRequest):
		return http.StatusNotFound
	case errors.Is(err, governance.ErrAlreadyRegistered),
		errors.Is(err, governance.ErrDuplicateVote),
		errors.Is(err, ledger.ErrFlightExists),
		errors.Is(err, ledger.ErrDuplicatePolicy),
		errors.Is(err, insurance.ErrFlightFinalized),
		errors.Is(err, oracle.ErrAlreadyRegistered),
		errors.Is(err, oracle.ErrRequestClosed):
		return http.StatusConflict
	case errors.As(err, &feeErr),
		errors.Is(err, ledger.ErrNoFunds):
		return http.StatusPaymentRequired
	case errors.As(err, &amountErr),
		errors.Is(err, oracle.ErrInvalidStatus):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes a JSON request body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"invalid request body: "+err.Error(),
		)
		return false
	}
	return true
}

// handleRoot handles GET / and returns API metadata.
func (a *Api) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Name:    "skysure",
		Version: apiVersion,
	})
}

// handleHealth handles GET /health.
func (a *Api) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Healthy: true})
}

// handleOperational handles GET /api/v1/operational.
func (a *Api) handleOperational(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, OperationalResponse{
		Operational: a.node.IsOperational(),
	})
}

// handleSetOperational handles POST /api/v1/operational.
func (a *Api) handleSetOperational(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req SetOperationalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := a.node.SetOperational(
		ledger.AccountID(req.Caller),
		req.Operational,
	)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OperationalResponse{
		Operational: req.Operational,
	})
}

// handleAirlines handles GET /api/v1/airlines.
func (a *Api) handleAirlines(w http.ResponseWriter, _ *http.Request) {
	airlines := a.node.Airlines()
	ret := make([]AirlineInfo, 0, len(airlines))
	for _, airline := range airlines {
		ret = append(ret, AirlineInfo{
			Account: string(airline.ID),
			Status:  airline.Status.String(),
			Ante:    uint64(airline.Ante),
		})
	}
	writeJSON(w, http.StatusOK, ret)
}

// handleRegisterAirline handles POST /api/v1/airlines.
func (a *Api) handleRegisterAirline(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req RegisterAirlineRequest
	if !decodeBody(w, r, &req) {
		return
	}
	registered, votes, err := a.node.RegisterAirline(
		ledger.AccountID(req.Caller),
		ledger.AccountID(req.Candidate),
	)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RegisterAirlineResponse{
		Registered: registered,
		Votes:      votes,
	})
}

// handleFundAirline handles POST /api/v1/airlines/fund.
func (a *Api) handleFundAirline(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req FundAirlineRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ante, err := a.node.FundAirline(
		ledger.AccountID(req.Caller),
		ledger.Amount(req.Amount),
	)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FundAirlineResponse{
		Ante: uint64(ante),
	})
}

// handleFlights handles GET /api/v1/flights.
func (a *Api) handleFlights(w http.ResponseWriter, _ *http.Request) {
	flights := a.node.Flights()
	ret := make([]FlightInfo, 0, len(flights))
	for _, flight := range flights {
		ret = append(ret, FlightInfo{
			Airline:    string(flight.Key.Airline),
			Number:     flight.Key.Number,
			Departure:  flight.Key.Departure,
			Status:     uint8(flight.Status),
			StatusText: flight.Status.String(),
			UpdatedAt:  flight.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, ret)
}

// handleRegisterFlight handles POST /api/v1/flights.
func (a *Api) handleRegisterFlight(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req FlightRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := a.node.RegisterFlight(
		ledger.FlightKey{
			Airline:   ledger.AccountID(req.Airline),
			Number:    req.Number,
			Departure: req.Departure,
		},
	)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, FlightInfo{
		Airline:    req.Airline,
		Number:     req.Number,
		Departure:  req.Departure,
		Status:     uint8(ledger.FlightStatusUnknown),
		StatusText: ledger.FlightStatusUnknown.String(),
	})
}

// handleBuyInsurance handles POST /api/v1/policies.
func (a *Api) handleBuyInsurance(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req BuyInsuranceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := a.node.BuyInsurance(
		ledger.AccountID(req.Passenger),
		ledger.FlightKey{
			Airline:   ledger.AccountID(req.Airline),
			Number:    req.Number,
			Departure: req.Departure,
		},
		ledger.Amount(req.Amount),
	)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// handleCredit handles GET /api/v1/credits/{passenger}.
func (a *Api) handleCredit(w http.ResponseWriter, r *http.Request) {
	passenger := r.PathValue("passenger")
	writeJSON(w, http.StatusOK, CreditResponse{
		Passenger: passenger,
		Amount:    uint64(a.node.Credit(ledger.AccountID(passenger))),
	})
}

// handleWithdraw handles POST /api/v1/credits/withdraw.
func (a *Api) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req WithdrawRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount, err := a.node.WithdrawCredit(ledger.AccountID(req.Passenger))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WithdrawResponse{
		Amount: uint64(amount),
	})
}

// handleRegisterOracle handles POST /api/v1/oracles.
func (a *Api) handleRegisterOracle(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req RegisterOracleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	indexes, err := a.node.RegisterOracle(
		ledger.AccountID(req.Oracle),
		ledger.Amount(req.Fee),
	)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, OracleInfo{
		Oracle:  req.Oracle,
		Indexes: indexes[:],
	})
}

// handleOracleIndexes handles GET /api/v1/oracles/{id}.
func (a *Api) handleOracleIndexes(
	w http.ResponseWriter,
	r *http.Request,
) {
	id := r.PathValue("id")
	indexes, err := a.node.OracleIndexes(ledger.AccountID(id))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OracleInfo{
		Oracle:  id,
		Indexes: indexes[:],
	})
}

// handleRequestStatus handles POST /api/v1/requests.
func (a *Api) handleRequestStatus(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req RequestStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	index, err := a.node.RequestFlightStatus(
		ledger.AccountID(req.Requester),
		ledger.FlightKey{
			Airline:   ledger.AccountID(req.Airline),
			Number:    req.Number,
			Departure: req.Departure,
		},
	)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RequestStatusResponse{
		Index: index,
	})
}

// handleSubmitResponse handles POST /api/v1/responses.
func (a *Api) handleSubmitResponse(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req SubmitResponseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := a.node.SubmitOracleResponse(
		ledger.AccountID(req.Oracle),
		req.Index,
		ledger.FlightKey{
			Airline:   ledger.AccountID(req.Airline),
			Number:    req.Number,
			Departure: req.Departure,
		},
		ledger.FlightStatus(req.Status),
	)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

const (
	defaultFactsLimit = 100
	maxFactsLimit     = 1000
)

// handleFacts handles GET /api/v1/facts. The seq and limit query
// parameters control the replay window. The limit is capped so a single
// request cannot force an arbitrarily large journal read.
func (a *Api) handleFacts(w http.ResponseWriter, r *http.Request) {
	var seq uint64
	limit := defaultFactsLimit
	if s := r.URL.Query().Get("seq"); s != "" {
		parsed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid seq parameter")
			return
		}
		seq = parsed
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = min(parsed, maxFactsLimit)
	}
	entries, err := a.node.Facts(seq, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handlePool handles GET /api/v1/pool.
func (a *Api) handlePool(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, PoolResponse{
		Pool: uint64(a.node.Pool()),
	})
}
