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

// MigrateModels is the list of model schemas created at startup.
var MigrateModels = []any{
	&Airline{},
	&Flight{},
	&Policy{},
	&Credit{},
	&Oracle{},
}

// Airline mirrors a roster entry for offline inspection.
type Airline struct {
	ID      uint   `gorm:"primarykey"`
	Account string `gorm:"uniqueIndex"`
	Status  string
	Ante    uint64
}

func (Airline) TableName() string {
	return "airlines"
}

// Flight mirrors a flight record.
type Flight struct {
	ID              uint   `gorm:"primarykey"`
	Airline         string `gorm:"uniqueIndex:idx_flight_key"`
	Number          string `gorm:"uniqueIndex:idx_flight_key"`
	Departure       int64  `gorm:"uniqueIndex:idx_flight_key"`
	Status          uint8
	StatusUpdatedAt int64
}

func (Flight) TableName() string {
	return "flights"
}

// Policy mirrors an insurance policy.
type Policy struct {
	ID        uint   `gorm:"primarykey"`
	Passenger string `gorm:"uniqueIndex:idx_policy_key"`
	Airline   string `gorm:"uniqueIndex:idx_policy_key"`
	Number    string `gorm:"uniqueIndex:idx_policy_key"`
	Departure int64  `gorm:"uniqueIndex:idx_policy_key"`
	Amount    uint64
	Credited  uint64
	Settled   bool
}

func (Policy) TableName() string {
	return "policies"
}

// Credit mirrors a passenger's withdrawable balance.
type Credit struct {
	ID        uint   `gorm:"primarykey"`
	Passenger string `gorm:"uniqueIndex"`
	Amount    uint64
}

func (Credit) TableName() string {
	return "credits"
}

// Oracle mirrors a registered oracle and its assigned indexes.
type Oracle struct {
	ID      uint   `gorm:"primarykey"`
	Account string `gorm:"uniqueIndex"`
	Index0  uint8
	Index1  uint8
	Index2  uint8
}

func (Oracle) TableName() string {
	return "oracles"
}
