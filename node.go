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
	"fmt"
	"sync"

	"github.com/blinklabs-io/skysure/api"
	"github.com/blinklabs-io/skysure/database"
	"github.com/blinklabs-io/skysure/event"
	"github.com/blinklabs-io/skysure/governance"
	"github.com/blinklabs-io/skysure/insurance"
	"github.com/blinklabs-io/skysure/journal"
	"github.com/blinklabs-io/skysure/ledger"
	"github.com/blinklabs-io/skysure/oracle"
)

// Node is the coordination engine. All entry points funnel through a single
// mutex, so operations apply one at a time in arrival order and each one
// observes the combined effect of every operation before it.
type Node struct {
	config     Config
	eventBus   *event.EventBus
	ledger     *ledger.Ledger
	governance *governance.Governance
	insurance  *insurance.Insurance
	consensus  *oracle.Consensus
	store      *database.Store
	journal    *journal.Journal
	apiServer  *api.Api
	mu         sync.Mutex
	stopOnce   sync.Once
}

// New creates the engine from the given config. The bootstrap airline is
// registered and the operational gate is open when this returns.
func New(cfg Config) (*Node, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	n := &Node{
		config:   cfg,
		eventBus: event.NewEventBus(cfg.promRegistry, cfg.logger),
		ledger:   ledger.NewLedger(cfg.admin),
	}
	n.governance = governance.NewGovernance(
		governance.GovernanceConfig{
			PromRegistry: cfg.promRegistry,
			Logger:       cfg.logger,
			EventBus:     n.eventBus,
			Ledger:       n.ledger,
			FirstAirline: cfg.firstAirline,
		},
	)
	n.insurance = insurance.NewInsurance(
		insurance.InsuranceConfig{
			PromRegistry: cfg.promRegistry,
			Logger:       cfg.logger,
			EventBus:     n.eventBus,
			Ledger:       n.ledger,
		},
	)
	n.consensus = oracle.NewConsensus(
		oracle.ConsensusConfig{
			PromRegistry: cfg.promRegistry,
			Logger:       cfg.logger,
			EventBus:     n.eventBus,
			Ledger:       n.ledger,
			Settler:      n.insurance,
			IndexSource:  cfg.indexSource,
		},
	)
	store, err := database.New(cfg.dataDir, cfg.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}
	n.store = store
	jrnl, err := journal.New(cfg.dataDir, cfg.logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to open fact journal: %w", err)
	}
	n.journal = jrnl
	n.subscribeJournal()
	// Mirror the bootstrap airline
	n.persistAirline(cfg.firstAirline)
	return n, nil
}

// subscribeJournal appends every emitted fact to the journal. Facts within
// a type are appended in emit order; each entry is self-contained, so
// replay does not depend on ordering across types.
func (n *Node) subscribeJournal() {
	for _, eventType := range []event.EventType{
		governance.AirlineRegisteredEventType,
		governance.AnteDepositedEventType,
		governance.AirlineFundedEventType,
		governance.FlightRegisteredEventType,
		insurance.PolicyPurchasedEventType,
		insurance.PolicySettledEventType,
		insurance.CreditWithdrawnEventType,
		oracle.OracleRegisteredEventType,
		oracle.StatusRequestedEventType,
		oracle.ReportRecordedEventType,
		oracle.FlightFinalizedEventType,
	} {
		n.eventBus.SubscribeFunc(
			eventType,
			func(evt event.Event) {
				if err := n.journal.Append(evt); err != nil {
					n.config.logger.Error(
						"failed to append fact to journal",
						"component", "node",
						"type", evt.Type,
						"error", err,
					)
				}
			},
		)
	}
}

// Run starts the engine's external surfaces and blocks until the context
// is cancelled.
func (n *Node) Run(ctx context.Context) error {
	if n.config.apiListenAddress != "" {
		n.apiServer = api.New(
			api.ApiConfig{
				ListenAddress: n.config.apiListenAddress,
			},
			n,
			n.config.logger,
		)
		if err := n.apiServer.Start(ctx); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return n.Stop(context.Background())
}

// Stop shuts down the engine and releases its resources.
func (n *Node) Stop(ctx context.Context) error {
	var retErr error
	n.stopOnce.Do(func() {
		if n.apiServer != nil {
			if err := n.apiServer.Stop(ctx); err != nil {
				retErr = err
			}
		}
		n.eventBus.Stop()
		if err := n.journal.Close(); err != nil && retErr == nil {
			retErr = err
		}
		if err := n.store.Close(); err != nil && retErr == nil {
			retErr = err
		}
	})
	return retErr
}

// EventBus returns the engine's event bus for external subscribers.
func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

// IsOperational returns the state of the operational gate.
func (n *Node) IsOperational() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.IsOperational()
}

// SetOperational flips the operational gate. Only the administrator may
// call this.
func (n *Node) SetOperational(
	caller ledger.AccountID,
	operational bool,
) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.SetOperational(caller, operational)
}

// RegisterAirline proposes (or votes for) a candidate airline on behalf of
// the calling airline. It reports whether the candidate reached Registered
// and the vote count so far.
func (n *Node) RegisterAirline(
	caller ledger.AccountID,
	candidate ledger.AccountID,
) (bool, int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	registered, votes, err := n.governance.RegisterAirline(caller, candidate)
	if err != nil {
		return registered, votes, err
	}
	n.persistAirline(candidate)
	return registered, votes, nil
}

// FundAirline deposits toward the calling airline's ante. It returns the
// cumulative ante after the deposit.
func (n *Node) FundAirline(
	caller ledger.AccountID,
	amount ledger.Amount,
) (ledger.Amount, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	ante, err := n.governance.Fund(caller, amount)
	if err != nil {
		return ante, err
	}
	n.persistAirline(caller)
	return ante, nil
}

// RegisterFlight registers a flight for a funded airline.
func (n *Node) RegisterFlight(key ledger.FlightKey) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.governance.RegisterFlight(key); err != nil {
		return err
	}
	n.persistFlight(key)
	return nil
}

// BuyInsurance purchases a policy on a registered flight for a passenger.
func (n *Node) BuyInsurance(
	passenger ledger.AccountID,
	key ledger.FlightKey,
	amount ledger.Amount,
) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.insurance.Buy(passenger, key, amount); err != nil {
		return err
	}
	n.persistPolicy(passenger, key)
	return nil
}

// WithdrawCredit pays out the passenger's entire accumulated credit. It
// returns the amount withdrawn.
func (n *Node) WithdrawCredit(
	passenger ledger.AccountID,
) (ledger.Amount, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	amount, err := n.insurance.Withdraw(passenger)
	if err != nil {
		return amount, err
	}
	n.persistCredit(passenger)
	return amount, nil
}

// RegisterOracle registers an oracle identity against the fixed fee and
// returns its three assigned indexes.
func (n *Node) RegisterOracle(
	id ledger.AccountID,
	fee ledger.Amount,
) ([ledger.IndexCount]uint8, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	indexes, err := n.consensus.Register(id, fee)
	if err != nil {
		return indexes, err
	}
	n.persistOracle(id, indexes)
	return indexes, nil
}

// OracleIndexes returns the indexes assigned to a registered oracle.
func (n *Node) OracleIndexes(
	id ledger.AccountID,
) ([ledger.IndexCount]uint8, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.consensus.Indexes(id)
}

// RequestFlightStatus opens an oracle status request for a flight and
// returns the drawn index.
func (n *Node) RequestFlightStatus(
	requester ledger.AccountID,
	key ledger.FlightKey,
) (uint8, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.consensus.RequestStatus(requester, key)
}

// SubmitOracleResponse records an oracle's status report. The response
// that completes consensus also finalizes the flight and settles its
// policies before this returns.
func (n *Node) SubmitOracleResponse(
	oracleId ledger.AccountID,
	index uint8,
	key ledger.FlightKey,
	status ledger.FlightStatus,
) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	flight, hadFlight := n.ledger.Flight(key)
	wasFinal := hadFlight && flight.Status != ledger.FlightStatusUnknown
	if err := n.consensus.SubmitResponse(oracleId, index, key, status); err != nil {
		return err
	}
	if flight, ok := n.ledger.Flight(key); ok && !wasFinal &&
		flight.Status != ledger.FlightStatusUnknown {
		// This response finalized the flight; mirror the flight, its
		// settled policies, and any credited balances
		n.persistFlight(key)
		for _, policy := range n.ledger.PoliciesForFlight(key) {
			n.persistPolicy(policy.Passenger, key)
			n.persistCredit(policy.Passenger)
		}
	}
	return nil
}

// Airlines returns a snapshot of the airline roster.
func (n *Node) Airlines() []ledger.Airline {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.Airlines()
}

// Airline returns a snapshot of a single airline record.
func (n *Node) Airline(id ledger.AccountID) (ledger.Airline, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	rec, ok := n.ledger.Airline(id)
	if !ok {
		return ledger.Airline{}, false
	}
	return *rec, true
}

// Flights returns a snapshot of all registered flights.
func (n *Node) Flights() []ledger.Flight {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.Flights()
}

// Flight returns a snapshot of a single flight record.
func (n *Node) Flight(key ledger.FlightKey) (ledger.Flight, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	rec, ok := n.ledger.Flight(key)
	if !ok {
		return ledger.Flight{}, false
	}
	return *rec, true
}

// Policy returns a snapshot of a single policy record.
func (n *Node) Policy(
	passenger ledger.AccountID,
	key ledger.FlightKey,
) (ledger.Policy, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	rec, ok := n.ledger.Policy(passenger, key)
	if !ok {
		return ledger.Policy{}, false
	}
	return *rec, true
}

// Credit returns a passenger's withdrawable balance.
func (n *Node) Credit(passenger ledger.AccountID) ledger.Amount {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.Credit(passenger)
}

// Pool returns the engine's pooled balance.
func (n *Node) Pool() ledger.Amount {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.Pool()
}

// Facts returns journal entries starting at the given sequence number.
func (n *Node) Facts(seq uint64, limit int) ([]journal.Entry, error) {
	return n.journal.ReadFrom(seq, limit)
}

// The persist helpers mirror ledger records into the record store. They
// run under the node mutex, after the operation that changed the record,
// so the mirror always converges on the serialized operation order. Store
// errors are logged and do not fail the operation.

func (n *Node) persistAirline(id ledger.AccountID) {
	rec, ok := n.ledger.Airline(id)
	if !ok {
		return
	}
	err := n.store.SetAirline(
		&database.Airline{
			Account: string(rec.ID),
			Status:  rec.Status.String(),
			Ante:    uint64(rec.Ante),
		},
	)
	if err != nil {
		n.config.logger.Error(
			"failed to mirror airline record",
			"component", "node",
			"airline", id,
			"error", err,
		)
	}
}

func (n *Node) persistFlight(key ledger.FlightKey) {
	rec, ok := n.ledger.Flight(key)
	if !ok {
		return
	}
	err := n.store.SetFlight(
		&database.Flight{
			Airline:         string(key.Airline),
			Number:          key.Number,
			Departure:       key.Departure,
			Status:          uint8(rec.Status),
			StatusUpdatedAt: rec.UpdatedAt,
		},
	)
	if err != nil {
		n.config.logger.Error(
			"failed to mirror flight record",
			"component", "node",
			"flight", key.String(),
			"error", err,
		)
	}
}

func (n *Node) persistPolicy(
	passenger ledger.AccountID,
	key ledger.FlightKey,
) {
	rec, ok := n.ledger.Policy(passenger, key)
	if !ok {
		return
	}
	var credited ledger.Amount
	if rec.Settled {
		if flight, ok := n.ledger.Flight(key); ok &&
			flight.Status == ledger.FlightStatusLateAirline {
			credited = ledger.PayoutAmount(rec.Amount)
		}
	}
	err := n.store.SetPolicy(
		&database.Policy{
			Passenger: string(passenger),
			Airline:   string(key.Airline),
			Number:    key.Number,
			Departure: key.Departure,
			Amount:    uint64(rec.Amount),
			Credited:  uint64(credited),
			Settled:   rec.Settled,
		},
	)
	if err != nil {
		n.config.logger.Error(
			"failed to mirror policy record",
			"component", "node",
			"passenger", passenger,
			"flight", key.String(),
			"error", err,
		)
	}
}

func (n *Node) persistCredit(passenger ledger.AccountID) {
	err := n.store.SetCredit(
		&database.Credit{
			Passenger: string(passenger),
			Amount:    uint64(n.ledger.Credit(passenger)),
		},
	)
	if err != nil {
		n.config.logger.Error(
			"failed to mirror credit record",
			"component", "node",
			"passenger", passenger,
			"error", err,
		)
	}
}

func (n *Node) persistOracle(
	id ledger.AccountID,
	indexes [ledger.IndexCount]uint8,
) {
	err := n.store.SetOracle(
		&database.Oracle{
			Account: string(id),
			Index0:  indexes[0],
			Index1:  indexes[1],
			Index2:  indexes[2],
		},
	)
	if err != nil {
		n.config.logger.Error(
			"failed to mirror oracle record",
			"component", "node",
			"oracle", id,
			"error", err,
		)
	}
}
