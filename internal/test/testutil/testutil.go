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

// Package testutil provides common test helpers. It favors deterministic
// synchronization over time.Sleep in tests.
package testutil

import (
	"testing"
	"time"

	"github.com/blinklabs-io/gatekeeper/database"
	"github.com/blinklabs-io/gatekeeper/event"
	"github.com/blinklabs-io/gatekeeper/ledger"
	"github.com/stretchr/testify/require"
)

// NewTestDatabase returns an in-memory database which is closed when the
// test finishes
func NewTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewTestRuntime returns a runtime over an in-memory database with the given
// programs registered
func NewTestRuntime(
	t *testing.T,
	programs ...ledger.Program,
) (*ledger.Runtime, *event.EventBus) {
	t.Helper()
	bus := event.NewEventBus(nil, nil)
	t.Cleanup(bus.Stop)
	rt, err := ledger.NewRuntime(
		ledger.RuntimeConfig{
			Database: NewTestDatabase(t),
			EventBus: bus,
		},
	)
	require.NoError(t, err)
	for _, prog := range programs {
		require.NoError(t, rt.Register(prog))
	}
	return rt, bus
}

// NewAddresses returns count random addresses
func NewAddresses(t *testing.T, count int) []ledger.Address {
	t.Helper()
	ret := make([]ledger.Address, count)
	for i := range ret {
		addr, err := ledger.NewRandomAddress()
		require.NoError(t, err)
		ret[i] = addr
	}
	return ret
}

// WaitForCondition polls the given condition function until it returns true
// or the timeout expires
func WaitForCondition(
	t *testing.T,
	condition func() bool,
	timeout time.Duration,
	msg string,
) {
	t.Helper()
	require.Eventually(t, condition, timeout, 10*time.Millisecond, msg)
}

// RequireReceive waits for a value on the given channel or fails the test
// if the timeout expires
func RequireReceive[T any](
	t *testing.T,
	ch <-chan T,
	timeout time.Duration,
	msg string,
) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(timeout):
		t.Fatalf("timeout waiting for channel receive: %s", msg)
	}
	var zero T
	return zero
}

// RequireNoReceive verifies that no value is received on the given channel
// within the specified duration
func RequireNoReceive[T any](
	t *testing.T,
	ch <-chan T,
	duration time.Duration,
	msg string,
) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected value received on channel: %v: %s", v, msg)
	case <-time.After(duration):
	}
}
