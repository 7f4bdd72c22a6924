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

package database_test

import (
	"errors"
	"testing"
	"time"

	"github.com/blinklabs-io/gatekeeper/database"
	"github.com/blinklabs-io/gatekeeper/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestAccountLifecycle(t *testing.T) {
	db := newTestDatabase(t)
	addr := []byte("0123456789abcdef0123456789abcdef")
	owner := []byte("ownerownerownerownerownerownerow")

	_, err := db.GetAccount(addr, nil)
	require.ErrorIs(t, err, database.ErrAccountNotFound)

	require.NoError(t, db.SetAccount(addr, &models.Account{Owner: owner, Data: []byte{1, 2}}, nil))
	account, err := db.GetAccount(addr, nil)
	require.NoError(t, err)
	assert.Equal(t, owner, account.Owner)
	assert.Equal(t, []byte{1, 2}, account.Data)

	exists, err := db.AccountExists(addr, nil)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, db.DeleteAccount(addr, nil))
	exists, err = db.AccountExists(addr, nil)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTxnDoRollsBackBothStores(t *testing.T) {
	db := newTestDatabase(t)
	addr := []byte("rollback-rollback-rollback-addr!")
	testErr := errors.New("fail")
	txn := db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		if err := db.SetAccount(addr, &models.Account{Owner: addr}, txn); err != nil {
			return err
		}
		if err := db.AddJournalEntry(&models.JournalEntry{TxID: "rolled-back"}, txn); err != nil {
			return err
		}
		return testErr
	})
	require.ErrorIs(t, err, testErr)

	exists, err := db.AccountExists(addr, nil)
	require.NoError(t, err)
	assert.False(t, exists)
	entry, err := db.JournalEntry("rolled-back", nil)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestTxnDoCommitsBothStores(t *testing.T) {
	db := newTestDatabase(t)
	addr := []byte("commit-commit-commit-commit-addr")
	txn := db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		if err := db.SetAccount(addr, &models.Account{Owner: addr, Data: []byte{7}}, txn); err != nil {
			return err
		}
		return db.AddJournalEntry(
			&models.JournalEntry{TxID: "committed", Instructions: 1, CreatedAt: time.Now()},
			txn,
		)
	})
	require.NoError(t, err)

	account, err := db.GetAccount(addr, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, account.Data)
	entries, err := db.JournalEntries(0, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "committed", entries[0].TxID)

	// Both stores carry the same commit timestamp
	metadataTs, err := db.Metadata().GetCommitTimestamp()
	require.NoError(t, err)
	blobTs, err := db.Blob().GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, metadataTs, blobTs)
	assert.Positive(t, blobTs)
}

func TestForEachAccount(t *testing.T) {
	db := newTestDatabase(t)
	for _, b := range []byte{3, 1, 2} {
		addr := make([]byte, 32)
		addr[0] = b
		require.NoError(t, db.SetAccount(addr, &models.Account{Data: []byte{b}}, nil))
	}
	var seen []byte
	err := db.ForEachAccount(nil, func(address []byte, account *models.Account) error {
		assert.Len(t, address, 32)
		seen = append(seen, account.Data[0])
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, seen)
}

func TestCommitTimestampError(t *testing.T) {
	err := database.CommitTimestampError{MetadataTimestamp: 2, BlobTimestamp: 1}
	assert.Equal(t, "commit timestamp mismatch: 2 (metadata) != 1 (blob)", err.Error())
}

func TestUnknownPlugin(t *testing.T) {
	_, err := database.New(&database.Config{BlobPlugin: "missing"})
	require.Error(t, err)
}
