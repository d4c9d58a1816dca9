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

package database

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Store is the durable record mirror. It is written behind the engine from
// emitted facts so operators can inspect state with plain sqlite tooling;
// the in-memory Ledger stays the source of truth and never reads it back.
type Store struct {
	db      *gorm.DB
	logger  *slog.Logger
	dataDir string
}

// New creates a record store. Uses an in-memory database when dataDir is
// empty, useful for testing.
func New(dataDir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	var db *gorm.DB
	var err error
	if dataDir == "" {
		// cache=shared allows multiple connections to share the same in-memory database
		db, err = gorm.Open(
			sqlite.Open("file::memory:?cache=shared"),
			&gorm.Config{
				Logger:                 gormlogger.Discard,
				SkipDefaultTransaction: true,
			},
		)
		if err != nil {
			return nil, err
		}
	} else {
		if _, err := os.Stat(dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(dataDir, fs.ModePerm); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		dbPath := filepath.Join(dataDir, "records.sqlite")
		// WAL journal mode, disable sync on write
		connOpts := "_pragma=journal_mode(WAL)&_pragma=sync(OFF)"
		db, err = gorm.Open(
			sqlite.Open(fmt.Sprintf("file:%s?%s", dbPath, connOpts)),
			&gorm.Config{
				Logger:                 gormlogger.Discard,
				SkipDefaultTransaction: true,
			},
		)
		if err != nil {
			return nil, err
		}
	}
	s := &Store{
		db:      db,
		logger:  logger,
		dataDir: dataDir,
	}
	for _, model := range MigrateModels {
		s.logger.Debug(fmt.Sprintf("creating table: %#v", model))
		if err := s.db.AutoMigrate(model); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SetAirline upserts an airline record keyed by account.
func (s *Store) SetAirline(record *Airline) error {
	result := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account"}},
		DoUpdates: clause.AssignmentColumns(
			[]string{"status", "ante"},
		),
	}).Create(record)
	return result.Error
}

// SetFlight upserts a flight record keyed by (airline, number, departure).
func (s *Store) SetFlight(record *Flight) error {
	result := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "airline"},
			{Name: "number"},
			{Name: "departure"},
		},
		DoUpdates: clause.AssignmentColumns(
			[]string{"status", "status_updated_at"},
		),
	}).Create(record)
	return result.Error
}

// SetPolicy upserts a policy record keyed by (passenger, flight key).
func (s *Store) SetPolicy(record *Policy) error {
	result := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "passenger"},
			{Name: "airline"},
			{Name: "number"},
			{Name: "departure"},
		},
		DoUpdates: clause.AssignmentColumns(
			[]string{"amount", "credited", "settled"},
		),
	}).Create(record)
	return result.Error
}

// SetCredit upserts a passenger's credit balance.
func (s *Store) SetCredit(record *Credit) error {
	result := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "passenger"}},
		DoUpdates: clause.AssignmentColumns(
			[]string{"amount"},
		),
	}).Create(record)
	return result.Error
}

// SetOracle inserts an oracle record. Oracles are immutable after
// registration, so conflicts are ignored.
func (s *Store) SetOracle(record *Oracle) error {
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account"}},
		DoNothing: true,
	}).Create(record)
	return result.Error
}

// Airlines returns all persisted airline records.
func (s *Store) Airlines() ([]Airline, error) {
	var ret []Airline
	result := s.db.Order("account").Find(&ret)
	return ret, result.Error
}

// Flights returns all persisted flight records.
func (s *Store) Flights() ([]Flight, error) {
	var ret []Flight
	result := s.db.Order("airline, number, departure").Find(&ret)
	return ret, result.Error
}

// Policies returns all persisted policy records.
func (s *Store) Policies() ([]Policy, error) {
	var ret []Policy
	result := s.db.Order("passenger").Find(&ret)
	return ret, result.Error
}

// CreditFor returns the persisted credit balance for a passenger.
func (s *Store) CreditFor(passenger string) (Credit, error) {
	var ret Credit
	result := s.db.Where("passenger = ?", passenger).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Credit{Passenger: passenger}, nil
		}
		return ret, result.Error
	}
	return ret, nil
}
