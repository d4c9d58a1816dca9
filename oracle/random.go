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
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"

	"github.com/blinklabs-io/skysure/ledger"
)

// nonceBound is the number of draws before the entropy seed is refreshed.
// It keeps the draw sequence within the seed's lookback window.
const nonceBound = 250

// IndexSource produces pseudo-random oracle indexes in [0, IndexRange).
// Implementations need not be cryptographically strong; the engine only
// needs load distribution and per-caller diversity. Tests inject a
// deterministic source.
type IndexSource interface {
	NextIndex(caller ledger.AccountID) uint8
}

// EntropySource is the default IndexSource. Each draw hashes a fresh
// random seed, a monotonically increasing nonce, and the caller identity,
// so repeated draws by the same caller still diversify. The nonce wraps at
// a fixed bound, at which point the seed is refreshed.
type EntropySource struct {
	seed  [32]byte
	nonce uint64
}

func NewEntropySource() *EntropySource {
	s := &EntropySource{}
	s.refreshSeed()
	return s
}

func (s *EntropySource) refreshSeed() {
	// rand.Read never returns an error on supported platforms
	_, _ = rand.Read(s.seed[:])
}

func (s *EntropySource) NextIndex(caller ledger.AccountID) uint8 {
	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], s.nonce)
	h := sha256.New()
	h.Write(s.seed[:])
	h.Write(nonceBytes[:])
	h.Write([]byte(caller))
	sum := h.Sum(nil)
	s.nonce++
	if s.nonce > nonceBound {
		s.nonce = 0
		s.refreshSeed()
	}
	return uint8(binary.BigEndian.Uint64(sum[:8]) % ledger.IndexRange)
}
