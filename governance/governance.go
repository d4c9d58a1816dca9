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
	"errors"
	"io"
	"log/slog"

	"github.com/blinklabs-io/skysure/event"
	"github.com/blinklabs-io/skysure/ledger"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ErrNotRegistered     = errors.New("caller is not a registered airline")
	ErrAlreadyRegistered = errors.New("airline is already registered")
	ErrDuplicateVote     = errors.New("caller already voted for this candidate")
	ErrNotFunded         = errors.New("airline has not met the ante threshold")
)

// Ballot is an in-progress vote to promote a candidate airline. Voters are
// a set so no voter is ever counted twice. Ballots are discarded once the
// candidate is promoted.
type Ballot struct {
	Candidate ledger.AccountID
	Voters    map[ledger.AccountID]struct{}
}

type GovernanceConfig struct {
	PromRegistry prometheus.Registerer
	Logger       *slog.Logger
	EventBus     *event.EventBus
	Ledger       *ledger.Ledger
	// FirstAirline is registered unconditionally at initialization,
	// bypassing voting. It is the sole member, so no quorum is meaningful.
	FirstAirline ledger.AccountID
}

// Governance owns the airline registration state machine: direct
// registration while the roster is small, weighted multi-party voting once
// it has grown, plus the funding gate and flight registration.
type Governance struct {
	config   GovernanceConfig
	ledger   *ledger.Ledger
	logger   *slog.Logger
	eventBus *event.EventBus
	ballots  map[ledger.AccountID]*Ballot
	metrics  *governanceMetrics
}

func NewGovernance(config GovernanceConfig) *Governance {
	g := &Governance{
		config:   config,
		ledger:   config.Ledger,
		eventBus: config.EventBus,
		ballots:  make(map[ledger.AccountID]*Ballot),
	}
	if config.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		g.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		g.logger = config.Logger
	}
	g.metrics = newGovernanceMetrics(config.PromRegistry)
	// Bootstrap the roster
	if config.FirstAirline != "" {
		g.ledger.EnsureAirline(config.FirstAirline)
		if err := g.ledger.MarkAirlineRegistered(config.FirstAirline); err != nil {
			// EnsureAirline guarantees the record exists
			panic(err)
		}
		g.metrics.airlinesRegistered.Inc()
		g.logger.Info(
			"registered bootstrap airline",
			"component", "governance",
			"airline", config.FirstAirline,
		)
	}
	return g
}

// threshold returns the approvals needed to promote a candidate: half of
// the registered roster, rounded up. An odd roster still requires strict
// majority.
func (g *Governance) threshold() int {
	return (g.ledger.RegisteredCount() + 1) / 2
}

// RegisterAirline registers or votes for a candidate airline. While fewer
// than four airlines are registered the candidate is registered directly;
// afterwards the call casts one vote on the candidate's ballot, promoting
// the candidate once approvals reach half the roster (rounded up).
//
// Returns whether the candidate became registered by this call and the
// current approval count (zero for direct registration).
func (g *Governance) RegisterAirline(
	caller ledger.AccountID,
	candidate ledger.AccountID,
) (bool, int, error) {
	if !g.ledger.IsOperational() {
		return false, 0, ledger.ErrNotOperational
	}
	callerRec, ok := g.ledger.Airline(caller)
	if !ok || callerRec.Status == ledger.AirlineApplied {
		return false, 0, ErrNotRegistered
	}
	if cand, ok := g.ledger.Airline(candidate); ok &&
		cand.Status != ledger.AirlineApplied {
		return false, 0, ErrAlreadyRegistered
	}
	// Bootstrap window: direct registration
	if g.ledger.RegisteredCount() < ledger.BootstrapQuorum {
		g.ledger.EnsureAirline(candidate)
		if err := g.ledger.MarkAirlineRegistered(candidate); err != nil {
			return false, 0, err
		}
		g.finishRegistration(candidate, 0)
		return true, 0, nil
	}
	// Voting: duplicate check before any mutation
	ballot := g.ballots[candidate]
	if ballot != nil {
		if _, voted := ballot.Voters[caller]; voted {
			return false, len(ballot.Voters), ErrDuplicateVote
		}
	} else {
		ballot = &Ballot{
			Candidate: candidate,
			Voters:    make(map[ledger.AccountID]struct{}),
		}
		g.ballots[candidate] = ballot
		g.metrics.openBallots.Inc()
	}
	g.ledger.EnsureAirline(candidate)
	ballot.Voters[caller] = struct{}{}
	g.metrics.votesCast.Inc()
	votes := len(ballot.Voters)
	g.logger.Debug(
		"recorded registration vote",
		"component", "governance",
		"candidate", candidate,
		"voter", caller,
		"votes", votes,
		"threshold", g.threshold(),
	)
	if votes < g.threshold() {
		return false, votes, nil
	}
	// Threshold reached: promote and discard the ballot
	if err := g.ledger.MarkAirlineRegistered(candidate); err != nil {
		return false, votes, err
	}
	delete(g.ballots, candidate)
	g.metrics.openBallots.Dec()
	g.finishRegistration(candidate, votes)
	return true, votes, nil
}

func (g *Governance) finishRegistration(
	candidate ledger.AccountID,
	votes int,
) {
	g.metrics.airlinesRegistered.Inc()
	g.logger.Info(
		"registered airline",
		"component", "governance",
		"airline", candidate,
		"votes", votes,
	)
	g.eventBus.Publish(
		AirlineRegisteredEventType,
		event.NewEvent(
			AirlineRegisteredEventType,
			AirlineRegisteredEvent{
				Airline: candidate,
				Votes:   votes,
			},
		),
	)
}

// Ballot returns the open ballot for a candidate, if any.
func (g *Governance) Ballot(candidate ledger.AccountID) (*Ballot, bool) {
	b, ok := g.ballots[candidate]
	return b, ok
}

// OpenBallots returns the number of ballots currently open.
func (g *Governance) OpenBallots() int {
	return len(g.ballots)
}
