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
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/skysure/event"
	"github.com/blinklabs-io/skysure/ledger"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ErrAlreadyRegistered = errors.New("oracle identity is already registered")
	ErrNotRegistered     = errors.New("oracle identity is not registered")
	ErrNoSuchRequest     = errors.New("no matching status request")
	ErrRequestClosed     = errors.New("status request is closed")
	ErrIndexMismatch     = errors.New("index is not assigned to this oracle")
	ErrInvalidStatus     = errors.New("invalid flight status code")
)

// RegistrationFeeError is returned when an oracle registration payment is
// short of the fixed fee.
type RegistrationFeeError struct {
	Paid     ledger.Amount
	Required ledger.Amount
}

func (e *RegistrationFeeError) Error() string {
	return fmt.Sprintf(
		"registration fee short: paid=%d required=%d",
		e.Paid,
		e.Required,
	)
}

// Oracle is a registered reporting agent. The three assigned indexes are
// distinct within the triple and immutable after registration.
type Oracle struct {
	ID      ledger.AccountID
	Indexes [ledger.IndexCount]uint8
}

// HasIndex reports whether the given index is one of the oracle's three.
func (o *Oracle) HasIndex(index uint8) bool {
	for _, idx := range o.Indexes {
		if idx == index {
			return true
		}
	}
	return false
}

// RequestKey derives the identity of a status request from the drawn index
// and the flight key, so only oracles holding that index can ever answer.
type RequestKey [32]byte

func NewRequestKey(index uint8, flight ledger.FlightKey) RequestKey {
	var scratch [8]byte
	h := sha256.New()
	h.Write([]byte{index})
	// Length-prefix the variable-length identity fields so adjacent
	// fields cannot bleed into each other and collide distinct flights
	binary.BigEndian.PutUint32(
		scratch[:4],
		uint32(len(flight.Airline)), //nolint:gosec
	)
	h.Write(scratch[:4])
	h.Write([]byte(flight.Airline))
	binary.BigEndian.PutUint32(
		scratch[:4],
		uint32(len(flight.Number)), //nolint:gosec
	)
	h.Write(scratch[:4])
	h.Write([]byte(flight.Number))
	binary.BigEndian.PutUint64(
		scratch[:],
		uint64(flight.Departure), //nolint:gosec
	)
	h.Write(scratch[:])
	return RequestKey(h.Sum(nil))
}

// Request is the per-(index, flight) aggregation record. It transitions
// Open to Closed exactly once, when some status code first accumulates
// MinResponses distinct responders.
type Request struct {
	responses map[ledger.FlightStatus]map[ledger.AccountID]struct{}
	Requester ledger.AccountID
	Flight    ledger.FlightKey
	Index     uint8
	Open      bool
}

// Responses returns the distinct-responder count per status code.
func (r *Request) Responses() map[ledger.FlightStatus]int {
	ret := make(map[ledger.FlightStatus]int, len(r.responses))
	for status, responders := range r.responses {
		ret[status] = len(responders)
	}
	return ret
}

// Settler converts a finalized flight outcome into insurance credits.
type Settler interface {
	SettleFlight(ledger.FlightKey, ledger.FlightStatus) error
}

type ConsensusConfig struct {
	PromRegistry prometheus.Registerer
	Logger       *slog.Logger
	EventBus     *event.EventBus
	Ledger       *ledger.Ledger
	Settler      Settler
	IndexSource  IndexSource
}

// Consensus owns oracle registration, request windowing, response
// aggregation, and idempotent finalization.
type Consensus struct {
	config      ConsensusConfig
	ledger      *ledger.Ledger
	logger      *slog.Logger
	eventBus    *event.EventBus
	settler     Settler
	indexSource IndexSource
	oracles     map[ledger.AccountID]*Oracle
	requests    map[RequestKey]*Request
	metrics     *consensusMetrics
}

func NewConsensus(config ConsensusConfig) *Consensus {
	c := &Consensus{
		config:      config,
		ledger:      config.Ledger,
		eventBus:    config.EventBus,
		settler:     config.Settler,
		indexSource: config.IndexSource,
		oracles:     make(map[ledger.AccountID]*Oracle),
		requests:    make(map[RequestKey]*Request),
	}
	if config.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		c.logger = config.Logger
	}
	if c.indexSource == nil {
		c.indexSource = NewEntropySource()
	}
	c.metrics = newConsensusMetrics(config.PromRegistry)
	return c
}

// Register registers an oracle identity against the fixed fee and assigns
// three distinct indexes by rejecting repeated draws. Registration is
// permanent; a second registration for the same identity fails.
func (c *Consensus) Register(
	id ledger.AccountID,
	fee ledger.Amount,
) ([ledger.IndexCount]uint8, error) {
	var indexes [ledger.IndexCount]uint8
	if !c.ledger.IsOperational() {
		return indexes, ledger.ErrNotOperational
	}
	if fee < ledger.OracleFee {
		return indexes, &RegistrationFeeError{
			Paid:     fee,
			Required: ledger.OracleFee,
		}
	}
	if _, ok := c.oracles[id]; ok {
		return indexes, ErrAlreadyRegistered
	}
	// Reject-and-redraw until the triple is distinct
	drawn := 0
	for drawn < ledger.IndexCount {
		idx := c.indexSource.NextIndex(id)
		dup := false
		for i := range drawn {
			if indexes[i] == idx {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		indexes[drawn] = idx
		drawn++
	}
	c.oracles[id] = &Oracle{
		ID:      id,
		Indexes: indexes,
	}
	c.ledger.CollectFee(fee)
	c.metrics.oraclesRegistered.Inc()
	c.logger.Info(
		"registered oracle",
		"component", "oracle",
		"oracle", id,
		"indexes", fmt.Sprintf("%v", indexes),
	)
	c.eventBus.Publish(
		OracleRegisteredEventType,
		event.NewEvent(
			OracleRegisteredEventType,
			OracleRegisteredEvent{
				Oracle:  id,
				Indexes: indexes,
			},
		),
	)
	return indexes, nil
}

// Indexes returns the three indexes assigned to a registered oracle.
func (c *Consensus) Indexes(
	id ledger.AccountID,
) ([ledger.IndexCount]uint8, error) {
	o, ok := c.oracles[id]
	if !ok {
		return [ledger.IndexCount]uint8{}, ErrNotRegistered
	}
	return o.Indexes, nil
}

// RequestStatus opens a status request for a flight. The index is drawn
// from the requester identity, so only oracles holding that index can
// respond. A stale closed record under the same key is overwritten; the
// broadcast fact tells external oracle actors which index is in play.
//
// Returns the drawn index.
func (c *Consensus) RequestStatus(
	requester ledger.AccountID,
	flight ledger.FlightKey,
) (uint8, error) {
	if !c.ledger.IsOperational() {
		return 0, ledger.ErrNotOperational
	}
	if _, ok := c.ledger.Flight(flight); !ok {
		return 0, ledger.ErrUnknownFlight
	}
	index := c.indexSource.NextIndex(requester)
	key := NewRequestKey(index, flight)
	if existing, ok := c.requests[key]; ok && existing.Open {
		// Key already has a live request; the broadcast below refreshes
		// observers without resetting the tallies.
		c.publishRequested(index, flight)
		return index, nil
	}
	c.requests[key] = &Request{
		responses: make(map[ledger.FlightStatus]map[ledger.AccountID]struct{}),
		Requester: requester,
		Flight:    flight,
		Index:     index,
		Open:      true,
	}
	c.metrics.requestsOpen.Inc()
	c.logger.Info(
		"opened status request",
		"component", "oracle",
		"flight", flight.String(),
		"index", index,
	)
	c.publishRequested(index, flight)
	return index, nil
}

func (c *Consensus) publishRequested(index uint8, flight ledger.FlightKey) {
	c.eventBus.Publish(
		StatusRequestedEventType,
		event.NewEvent(
			StatusRequestedEventType,
			StatusRequestedEvent{
				Index:     index,
				Airline:   flight.Airline,
				Flight:    flight.Number,
				Departure: flight.Departure,
			},
		),
	)
}

// SubmitResponse records an oracle's report for an open request. The
// oracle must hold the given index and the request must exist and be Open.
// An oracle is counted at most once per status code per request. The
// response that first brings some code's distinct-responder count to
// MinResponses closes the request, finalizes the flight status, and
// triggers insurance settlement exactly once.
func (c *Consensus) SubmitResponse(
	oracleId ledger.AccountID,
	index uint8,
	flight ledger.FlightKey,
	status ledger.FlightStatus,
) error {
	if !c.ledger.IsOperational() {
		return ledger.ErrNotOperational
	}
	o, ok := c.oracles[oracleId]
	if !ok {
		return ErrNotRegistered
	}
	if !o.HasIndex(index) {
		return ErrIndexMismatch
	}
	if !status.Valid() || status == ledger.FlightStatusUnknown {
		return ErrInvalidStatus
	}
	key := NewRequestKey(index, flight)
	req, ok := c.requests[key]
	if !ok {
		return ErrNoSuchRequest
	}
	if !req.Open {
		return ErrRequestClosed
	}
	responders, ok := req.responses[status]
	if !ok {
		responders = make(map[ledger.AccountID]struct{})
		req.responses[status] = responders
	}
	if _, dup := responders[oracleId]; dup {
		// Already counted for this code. If consensus was reached but a
		// prior settlement attempt failed, the request is still open and
		// this is the retry path; otherwise nothing changes.
		if len(responders) >= ledger.MinResponses {
			return c.finalize(req, status)
		}
		return nil
	}
	responders[oracleId] = struct{}{}
	c.metrics.responsesRecorded.Inc()
	c.logger.Debug(
		"recorded oracle response",
		"component", "oracle",
		"oracle", oracleId,
		"flight", flight.String(),
		"status", status.String(),
		"count", len(responders),
	)
	c.eventBus.Publish(
		ReportRecordedEventType,
		event.NewEvent(
			ReportRecordedEventType,
			ReportRecordedEvent{
				Airline:   flight.Airline,
				Flight:    flight.Number,
				Departure: flight.Departure,
				Status:    status,
			},
		),
	)
	if len(responders) < ledger.MinResponses {
		return nil
	}
	return c.finalize(req, status)
}

// finalize closes the request and applies the agreed outcome. The Open
// flag guarantees it succeeds at most once per request; policy settlement
// is additionally idempotent on its own.
//
// Settlement runs first and must either apply fully or change nothing: if
// it fails, the request stays open and the flight status stays unknown, so
// the same consensus can finalize on a later response once the failure
// cause (a pool too short for the combined payout) is resolved.
func (c *Consensus) finalize(
	req *Request,
	status ledger.FlightStatus,
) error {
	if err := c.settler.SettleFlight(req.Flight, status); err != nil {
		return err
	}
	updatedAt := time.Now().Unix()
	if err := c.ledger.SetFlightStatus(req.Flight, status, updatedAt); err != nil {
		return err
	}
	req.Open = false
	c.metrics.requestsOpen.Dec()
	c.metrics.flightsFinalized.Inc()
	c.logger.Info(
		"finalized flight status",
		"component", "oracle",
		"flight", req.Flight.String(),
		"status", status.String(),
	)
	c.eventBus.Publish(
		FlightFinalizedEventType,
		event.NewEvent(
			FlightFinalizedEventType,
			FlightFinalizedEvent{
				Airline:   req.Flight.Airline,
				Flight:    req.Flight.Number,
				Departure: req.Flight.Departure,
				Status:    status,
			},
		),
	)
	return nil
}

// Request returns the aggregation record for an (index, flight) pair.
func (c *Consensus) Request(
	index uint8,
	flight ledger.FlightKey,
) (*Request, bool) {
	req, ok := c.requests[NewRequestKey(index, flight)]
	return req, ok
}
