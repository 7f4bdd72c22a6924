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

package gatekeeper_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blinklabs-io/gatekeeper"
	"github.com/blinklabs-io/gatekeeper/counter"
	"github.com/blinklabs-io/gatekeeper/internal/test/testutil"
	"github.com/blinklabs-io/gatekeeper/ledger"
	"github.com/blinklabs-io/gatekeeper/whitelist"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeCounterScenario(t *testing.T) {
	reg := prometheus.NewRegistry()
	n, err := gatekeeper.New(
		gatekeeper.NewConfig(
			gatekeeper.WithPrometheusRegistry(reg),
		),
	)
	require.NoError(t, err)
	_, err = n.Execute(context.Background(), nil)
	require.ErrorIs(t, err, gatekeeper.ErrNodeNotStarted)
	require.NoError(t, n.Start())
	t.Cleanup(func() { _ = n.Stop() })
	require.Error(t, n.Start())

	_, evtCh := n.EventBus().Subscribe(counter.UpdatedEventType)
	addrs := testutil.NewAddresses(t, 3)
	authority, list, user := addrs[0], addrs[1], addrs[2]
	ctx := context.Background()

	createIx, err := counter.CreateCounter(authority)
	require.NoError(t, err)
	bindIx, err := counter.CreateCounterWhitelist(authority, list)
	require.NoError(t, err)
	grantIx, err := counter.GrantAccess(authority, list, user)
	require.NoError(t, err)
	// Several instructions in one transaction
	_, err = n.Execute(
		ctx,
		[]ledger.Address{authority, list},
		createIx,
		bindIx,
		grantIx,
	)
	require.NoError(t, err)

	updateIx, err := counter.UpdateCounter(user, authority, list)
	require.NoError(t, err)
	receipt, err := n.Execute(ctx, []ledger.Address{user}, updateIx)
	require.NoError(t, err)
	evt := testutil.RequireReceive(t, evtCh, 5*time.Second, "counter update")
	assert.Equal(t, uint64(1), evt.Data.(counter.UpdatedEvent).Count)

	entry, err := n.Database().JournalEntry(receipt.ID.String(), nil)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "counter", entry.Programs)

	cfg, err := whitelist.GetConfig(n.Runtime(), list)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cfg.MemberCount)

	count, err := promtestutil.GatherAndCount(reg, "ledger_transactions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, n.Runtime().Programs(), 2)
}

func TestNodeDisableJournal(t *testing.T) {
	n, err := gatekeeper.New(
		gatekeeper.NewConfig(gatekeeper.WithDisableJournal(true)),
	)
	require.NoError(t, err)
	require.NoError(t, n.Start())
	t.Cleanup(func() { _ = n.Stop() })
	authority := testutil.NewAddresses(t, 1)[0]
	ix, err := counter.CreateCounter(authority)
	require.NoError(t, err)
	_, err = n.Execute(context.Background(), []ledger.Address{authority}, ix)
	require.NoError(t, err)
	entries, err := n.Database().JournalEntries(0, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNodePersistence(t *testing.T) {
	dataDir := t.TempDir()
	authority := testutil.NewAddresses(t, 1)[0]
	counterAddr, _, err := counter.CounterAddress(authority)
	require.NoError(t, err)

	n, err := gatekeeper.New(
		gatekeeper.NewConfig(gatekeeper.WithDatabasePath(dataDir)),
	)
	require.NoError(t, err)
	require.NoError(t, n.Start())
	ix, err := counter.CreateCounter(authority)
	require.NoError(t, err)
	_, err = n.Execute(context.Background(), []ledger.Address{authority}, ix)
	require.NoError(t, err)
	require.NoError(t, n.Stop())

	n, err = gatekeeper.New(
		gatekeeper.NewConfig(gatekeeper.WithDatabasePath(dataDir)),
	)
	require.NoError(t, err)
	require.NoError(t, n.Start())
	t.Cleanup(func() { _ = n.Stop() })
	c, err := counter.GetCounter(n.Runtime(), counterAddr)
	require.NoError(t, err)
	assert.Equal(t, authority, c.Authority)
	assert.False(t, c.Bound())
}

func TestNodeExecuteDuringStart(t *testing.T) {
	n, err := gatekeeper.New(
		gatekeeper.NewConfig(gatekeeper.WithAsyncEvents(true)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = n.Stop() })
	_, evtCh := n.EventBus().Subscribe(counter.CreatedEventType)
	authority := testutil.NewAddresses(t, 1)[0]
	ix, err := counter.CreateCounter(authority)
	require.NoError(t, err)

	startErr := make(chan error, 1)
	go func() {
		startErr <- n.Start()
	}()
	var execErr error
	testutil.WaitForCondition(
		t,
		func() bool {
			_, execErr = n.Execute(
				context.Background(),
				[]ledger.Address{authority},
				ix,
			)
			return !errors.Is(execErr, gatekeeper.ErrNodeNotStarted)
		},
		5*time.Second,
		"execute once started",
	)
	require.NoError(t, execErr)
	require.NoError(t, testutil.RequireReceive(t, startErr, 5*time.Second, "start"))
	evt := testutil.RequireReceive(t, evtCh, 5*time.Second, "created event")
	assert.Equal(t, counter.CreatedEventType, evt.Type)
}
