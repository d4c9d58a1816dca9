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
	"encoding/json"
	"testing"

	"github.com/blinklabs-io/skysure/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFact struct {
	Airline string `json:"airline"`
	Votes   int    `json:"votes"`
}

func TestAppendAndReadFrom(t *testing.T) {
	j, err := New("", nil)
	require.NoError(t, err)
	defer j.Close()

	for i := range 5 {
		evt := event.NewEvent(
			"test.fact",
			testFact{Airline: "AL1", Votes: i},
		)
		require.NoError(t, j.Append(evt))
	}
	assert.Equal(t, uint64(5), j.NextSeq())

	entries, err := j.ReadFrom(0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	for i, entry := range entries {
		assert.Equal(t, uint64(i), entry.Seq)
		assert.Equal(t, "test.fact", entry.Type)
		var fact testFact
		require.NoError(t, json.Unmarshal(entry.Data, &fact))
		assert.Equal(t, i, fact.Votes)
	}
}

func TestReadFromWindow(t *testing.T) {
	j, err := New("", nil)
	require.NoError(t, err)
	defer j.Close()

	for i := range 10 {
		evt := event.NewEvent("test.fact", testFact{Votes: i})
		require.NoError(t, j.Append(evt))
	}

	entries, err := j.ReadFrom(4, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, uint64(4), entries[0].Seq)
	assert.Equal(t, uint64(6), entries[2].Seq)

	// Reading past the end returns nothing
	entries, err = j.ReadFrom(100, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSequenceSurvivesReopen(t *testing.T) {
	dataDir := t.TempDir()
	j, err := New(dataDir, nil)
	require.NoError(t, err)
	for i := range 3 {
		evt := event.NewEvent("test.fact", testFact{Votes: i})
		require.NoError(t, j.Append(evt))
	}
	require.NoError(t, j.Close())

	j, err = New(dataDir, nil)
	require.NoError(t, err)
	defer j.Close()
	assert.Equal(t, uint64(3), j.NextSeq())

	require.NoError(t, j.Append(event.NewEvent("test.fact", testFact{Votes: 3})))
	entries, err := j.ReadFrom(0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, uint64(3), entries[3].Seq)
}
