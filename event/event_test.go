// Copyright 2025 Blink Labs Software
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
	"sync/atomic"
	"testing"
	"time"

	"github.com/blinklabs-io/gatekeeper/event"
	"github.com/blinklabs-io/gatekeeper/internal/test/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testEvtType event.EventType = "test.event"

func TestEventBusSingleSubscriber(t *testing.T) {
	defer goleak.VerifyNone(t)
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(testEvtType)
	eb.Publish(event.NewEvent(testEvtType, 999))
	evt := testutil.RequireReceive(t, subCh, time.Second, "event")
	assert.Equal(t, testEvtType, evt.Type)
	assert.Equal(t, 999, evt.Data)
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, sub1Ch := eb.Subscribe(testEvtType)
	_, sub2Ch := eb.Subscribe(testEvtType)
	eb.Publish(event.NewEvent(testEvtType, "data"))
	assert.Equal(t, "data", testutil.RequireReceive(t, sub1Ch, time.Second, "sub1").Data)
	assert.Equal(t, "data", testutil.RequireReceive(t, sub2Ch, time.Second, "sub2").Data)
}

func TestEventBusWildcard(t *testing.T) {
	defer goleak.VerifyNone(t)
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, allCh := eb.Subscribe(event.AllEventTypes)
	_, otherCh := eb.Subscribe("other.event")
	eb.Publish(event.NewEvent(testEvtType, 1))
	evt := testutil.RequireReceive(t, allCh, time.Second, "wildcard")
	assert.Equal(t, testEvtType, evt.Type)
	testutil.RequireNoReceive(t, otherCh, 50*time.Millisecond, "other type")
}

func TestEventBusUnsubscribe(t *testing.T) {
	defer goleak.VerifyNone(t)
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	subId, subCh := eb.Subscribe(testEvtType)
	eb.Unsubscribe(testEvtType, subId)
	eb.Publish(event.NewEvent(testEvtType, 1))
	select {
	case _, ok := <-subCh:
		require.False(t, ok, "received unexpected event")
	case <-time.After(time.Second):
		t.Fatal("subscriber channel was not closed after Unsubscribe")
	}
}

func TestEventBusStalledSubscriber(t *testing.T) {
	defer goleak.VerifyNone(t)
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	subId, _ := eb.Subscribe(testEvtType)
	for i := range event.EventQueueSize {
		eb.Publish(event.NewEvent(testEvtType, i))
	}
	published := make(chan struct{})
	go func() {
		eb.Publish(event.NewEvent(testEvtType, "blocked"))
		close(published)
	}()
	testutil.RequireNoReceive(t, published, 50*time.Millisecond, "publish to full queue")
	unsubscribed := make(chan struct{})
	go func() {
		eb.Unsubscribe(testEvtType, subId)
		close(unsubscribed)
	}()
	testutil.RequireReceive(t, unsubscribed, time.Second, "unsubscribe")
	testutil.RequireReceive(t, published, time.Second, "publish after unsubscribe")
}

func TestEventBusStopWithStalledSubscriber(t *testing.T) {
	defer goleak.VerifyNone(t)
	eb := event.NewEventBus(nil, nil)
	eb.Subscribe(testEvtType)
	for i := range event.EventQueueSize + 1 {
		require.True(t, eb.PublishAsync(event.NewEvent(testEvtType, i)))
	}
	stopped := make(chan struct{})
	go func() {
		eb.Stop()
		close(stopped)
	}()
	testutil.RequireReceive(t, stopped, time.Second, "stop")
}

func TestEventBusSubscribeFuncAndStop(t *testing.T) {
	defer goleak.VerifyNone(t)
	eb := event.NewEventBus(nil, nil)
	var count atomic.Int32
	eb.SubscribeFunc(testEvtType, func(evt event.Event) {
		count.Add(1)
	})
	// A panicking handler must not take down the bus
	eb.SubscribeFunc(testEvtType, func(evt event.Event) {
		panic("boom")
	})
	eb.Publish(event.NewEvent(testEvtType, 1))
	require.True(t, eb.PublishAsync(event.NewEvent(testEvtType, 2)))
	testutil.WaitForCondition(t, func() bool { return count.Load() == 2 }, time.Second, "handler calls")
	eb.Stop()
	assert.False(t, eb.PublishAsync(event.NewEvent(testEvtType, 3)))
}

func TestEventBusMetrics(t *testing.T) {
	defer goleak.VerifyNone(t)
	registry := prometheus.NewRegistry()
	eb := event.NewEventBus(registry, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(testEvtType)
	eb.Publish(event.NewEvent(testEvtType, 1))
	testutil.RequireReceive(t, subCh, time.Second, "event")
	count, err := promtestutil.GatherAndCount(registry, "event_bus_events_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
