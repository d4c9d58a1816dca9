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

package journal

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/blinklabs-io/skysure/event"
	badger "github.com/dgraph-io/badger/v4"
)

// Entry is a journaled fact. Data retains the original event payload as
// raw JSON so consumers can decode the shape they subscribed for.
type Entry struct {
	Timestamp time.Time       `json:"timestamp"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Seq       uint64          `json:"seq"`
}

// Journal is an append-only fact log. Every emitted fact is stored under a
// monotonic sequence key so external collaborators that missed live
// delivery can replay from any point.
type Journal struct {
	db      *badger.DB
	logger  *slog.Logger
	nextSeq uint64
	mu      sync.Mutex
}

// New opens a fact journal. Uses in-memory storage when dataDir is empty,
// useful for testing.
func New(dataDir string, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	var opts badger.Options
	if dataDir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(filepath.Join(dataDir, "journal"))
	}
	opts = opts.WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	j := &Journal{
		db:     db,
		logger: logger,
	}
	if err := j.loadNextSeq(); err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}
	return j, nil
}

// loadNextSeq finds the highest existing sequence so appends continue
// where a previous run left off.
func (j *Journal) loadNextSeq() error {
	return j.db.View(func(txn *badger.Txn) error {
		itOpts := badger.DefaultIteratorOptions
		itOpts.Reverse = true
		itOpts.PrefetchValues = false
		it := txn.NewIterator(itOpts)
		defer it.Close()
		// Seek past the largest possible key and step back to the last entry
		it.Seek([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
		if it.Valid() {
			j.nextSeq = binary.BigEndian.Uint64(it.Item().Key()) + 1
		}
		return nil
	})
}

// Append journals an event under the next sequence number.
func (j *Journal) Append(evt event.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	data, err := json.Marshal(evt.Data)
	if err != nil {
		return err
	}
	entry := Entry{
		Seq:       j.nextSeq,
		Type:      string(evt.Type),
		Timestamp: evt.Timestamp,
		Data:      data,
	}
	val, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], entry.Seq)
	err = j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key[:], val)
	})
	if err != nil {
		return err
	}
	j.nextSeq++
	return nil
}

// ReadFrom returns up to limit entries starting at the given sequence
// number. A limit of zero means no limit.
func (j *Journal) ReadFrom(seq uint64, limit int) ([]Entry, error) {
	var ret []Entry
	err := j.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		var startKey [8]byte
		binary.BigEndian.PutUint64(startKey[:], seq)
		for it.Seek(startKey[:]); it.Valid(); it.Next() {
			if limit > 0 && len(ret) >= limit {
				break
			}
			var entry Entry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				return err
			}
			ret = append(ret, entry)
		}
		return nil
	})
	return ret, err
}

// NextSeq returns the sequence number the next appended fact will receive.
func (j *Journal) NextSeq() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.nextSeq
}

// Close flushes and closes the underlying store.
func (j *Journal) Close() error {
	return j.db.Close()
}
