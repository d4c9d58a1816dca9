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

package event_test

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blinklabs-io/skysure/event"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusSingleSubscriber(t *testing.T) {
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 999))
	select {
	case evt, ok := <-subCh:
		require.True(t, ok, "event channel closed unexpectedly")
		require.Equal(t, testEvtType, evt.Type)
		val, ok := evt.Data.(int)
		require.True(t, ok, "event data was not of expected type")
		assert.Equal(t, 999, val)
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, sub1Ch := eb.Subscribe(testEvtType)
	_, sub2Ch := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, "payload"))
	for _, subCh := range []<-chan event.Event{sub1Ch, sub2Ch} {
		select {
		case evt, ok := <-subCh:
			require.True(t, ok, "event channel closed unexpectedly")
			assert.Equal(t, "payload", evt.Data)
		case <-time.After(1 * time.Second):
			t.Fatal("timeout waiting for event")
		}
	}
}

func TestEventBusTypeIsolation(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe("test.wanted")
	eb.Publish("test.other", event.NewEvent("test.other", 1))
	eb.Publish("test.wanted", event.NewEvent("test.wanted", 2))
	select {
	case evt := <-subCh:
		assert.Equal(t, event.EventType("test.wanted"), evt.Type)
		assert.Equal(t, 2, evt.Data)
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	subId, subCh := eb.Subscribe(testEvtType)
	eb.Unsubscribe(testEvtType, subId)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 999))
	select {
	case _, ok := <-subCh:
		// Unsubscribe closes the subscriber channel
		require.False(t, ok, "received unexpected event")
	case <-time.After(1 * time.Second):
		t.Fatal("subscriber channel was not closed after Unsubscribe")
	}
}

func TestEventBusSubscribeFunc(t *testing.T) {
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	receivedCh := make(chan event.Event, 1)
	eb.SubscribeFunc(testEvtType, func(evt event.Event) {
		receivedCh <- evt
	})
	eb.Publish(testEvtType, event.NewEvent(testEvtType, "hello"))
	select {
	case evt := <-receivedCh:
		assert.Equal(t, "hello", evt.Data)
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for event via SubscribeFunc")
	}
}

func TestEventBusStop(t *testing.T) {
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	_, subCh := eb.Subscribe(testEvtType)
	var handled atomic.Int64
	eb.SubscribeFunc(testEvtType, func(evt event.Event) {
		handled.Add(1)
	})

	eb.Publish(testEvtType, event.NewEvent(testEvtType, "before"))
	require.Eventually(
		t,
		func() bool { return handled.Load() == 1 },
		time.Second,
		10*time.Millisecond,
	)

	eb.Stop()

	// Drain any buffered events and verify the channel closes
	closed := false
	timeout := time.After(1 * time.Second)
	for !closed {
		select {
		case _, ok := <-subCh:
			if !ok {
				closed = true
			}
		case <-timeout:
			t.Fatal("subscriber channel was not closed after Stop")
		}
	}

	// Publishing after Stop reaches no one
	eb.Publish(testEvtType, event.NewEvent(testEvtType, "after"))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(1), handled.Load())
}

func TestEventBusMetrics(t *testing.T) {
	var testEvtType event.EventType = "test.event"
	registry := prometheus.NewRegistry()
	eb := event.NewEventBus(registry, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 1))
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 2))
	<-subCh
	<-subCh
	expected := `
		# HELP skysure_events_total total events published by type
		# TYPE skysure_events_total counter
		skysure_events_total{type="test.event"} 2
	`
	err := testutil.GatherAndCompare(
		registry,
		strings.NewReader(expected),
		"skysure_events_total",
	)
	require.NoError(t, err)
}
