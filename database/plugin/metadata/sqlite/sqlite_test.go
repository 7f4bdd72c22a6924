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

package sqlite_test

import (
	"testing"
	"time"

	"github.com/blinklabs-io/gatekeeper/database/models"
	"github.com/blinklabs-io/gatekeeper/database/plugin/metadata/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.MetadataStoreSqlite {
	t.Helper()
	store, err := sqlite.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestInMemoryStoresAreIsolated(t *testing.T) {
	store1 := newTestStore(t)
	store2 := newTestStore(t)
	require.NoError(t, store1.SetCommitTimestamp(123, nil))
	ts, err := store2.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)
	ts, err = store1.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(123), ts)
}

func TestCommitTimestampUpsert(t *testing.T) {
	store := newTestStore(t)
	txn := store.Transaction()
	require.NoError(t, store.SetCommitTimestamp(1, txn))
	require.NoError(t, store.SetCommitTimestamp(2, txn))
	require.NoError(t, txn.Commit())
	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(2), ts)
}

func TestJournalEntries(t *testing.T) {
	store := newTestStore(t)
	txn := store.Transaction()
	for _, txId := range []string{"tx-1", "tx-2", "tx-3"} {
		require.NoError(t, store.AddJournalEntry(
			&models.JournalEntry{
				TxID:         txId,
				Programs:     "whitelist",
				Instructions: 1,
				CreatedAt:    time.Now(),
				Events: []models.JournalEvent{
					{Type: "whitelist.member_added", Data: []byte{0x80}},
				},
			},
			txn,
		))
	}
	require.NoError(t, txn.Commit())

	entries, err := store.GetJournalEntries(2, nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "tx-3", entries[0].TxID)
	assert.Equal(t, "tx-2", entries[1].TxID)
	require.Len(t, entries[0].Events, 1)
	assert.Equal(t, "whitelist.member_added", entries[0].Events[0].Type)

	entry, err := store.GetJournalEntry("tx-1", nil)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, uint(1), entry.Instructions)

	entry, err = store.GetJournalEntry("missing", nil)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestJournalRollback(t *testing.T) {
	store := newTestStore(t)
	txn := store.Transaction()
	require.NoError(t, store.AddJournalEntry(&models.JournalEntry{TxID: "tx-rollback"}, txn))
	require.NoError(t, txn.Rollback())
	entries, err := store.GetJournalEntries(0, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
