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

package badger_test

import (
	"testing"

	"github.com/blinklabs-io/gatekeeper/database/plugin/blob/badger"
	"github.com/blinklabs-io/gatekeeper/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...badger.BlobStoreBadgerOptionFunc) *badger.BlobStoreBadger {
	t.Helper()
	store, err := badger.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestGetSetDelete(t *testing.T) {
	store := newTestStore(t)
	key := types.AccountBlobKey([]byte{1, 2, 3})

	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, key, []byte("value")))
	// Reads see pending writes in the same transaction
	val, err := store.Get(txn, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), val)
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(true)
	require.NoError(t, store.Delete(txn, key))
	_, err = store.Get(txn, key)
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
	// Discard the delete
	require.NoError(t, txn.Rollback())

	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	val, err = store.Get(txn, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), val)
}

func TestFinishedTxn(t *testing.T) {
	store := newTestStore(t)
	txn := store.NewTransaction(true)
	require.NoError(t, txn.Rollback())
	err := store.Set(txn, []byte("k"), []byte("v"))
	require.ErrorIs(t, err, types.ErrTxnFinished)
	require.ErrorIs(t, store.Set(nil, []byte("k"), []byte("v")), types.ErrNilTxn)
}

func TestIteratorPrefix(t *testing.T) {
	store := newTestStore(t)
	txn := store.NewTransaction(true)
	for _, addr := range [][]byte{{1}, {2}, {3}} {
		require.NoError(t, store.Set(txn, types.AccountBlobKey(addr), addr))
	}
	require.NoError(t, store.Set(txn, []byte("other"), []byte{9}))
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	prefix := []byte(types.AccountBlobKeyPrefix)
	iter := store.NewIterator(txn, types.BlobIteratorOptions{Prefix: prefix})
	defer iter.Close()
	count := 0
	for iter.Rewind(); iter.ValidForPrefix(prefix); iter.Next() {
		count++
	}
	require.NoError(t, iter.Err())
	assert.Equal(t, 3, count)
}

func TestCommitTimestamp(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetCommitTimestamp()
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)

	txn := store.NewTransaction(true)
	require.NoError(t, store.SetCommitTimestamp(1700000000123, txn))
	require.NoError(t, txn.Commit())
	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000123), ts)
}

func TestMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	store := newTestStore(t, badger.WithPromRegistry(registry))
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("k"), []byte("value")))
	require.NoError(t, txn.Commit())
	count, err := testutil.GatherAndCount(registry, "database_blob_ops_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
