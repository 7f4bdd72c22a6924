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

package database

import (
	"github.com/blinklabs-io/gatekeeper/database/models"
)

// AddJournalEntry records a committed ledger transaction. The entry should be
// added in the same transaction as the writes it describes
func (d *Database) AddJournalEntry(entry *models.JournalEntry, txn *Txn) error {
	if txn == nil {
		txn = NewTxn(d, true)
		return txn.Do(func(txn *Txn) error {
			return d.AddJournalEntry(entry, txn)
		})
	}
	return d.Metadata().AddJournalEntry(entry, txn.Metadata())
}

// JournalEntries returns up to limit journal entries, newest first. A limit of
// zero returns all entries
func (d *Database) JournalEntries(limit int, txn *Txn) ([]models.JournalEntry, error) {
	if txn == nil {
		return d.Metadata().GetJournalEntries(limit, nil)
	}
	return d.Metadata().GetJournalEntries(limit, txn.Metadata())
}

// JournalEntry returns the journal entry for a transaction ID, or nil if
// there is none
func (d *Database) JournalEntry(txId string, txn *Txn) (*models.JournalEntry, error) {
	if txn == nil {
		return d.Metadata().GetJournalEntry(txId, nil)
	}
	return d.Metadata().GetJournalEntry(txId, txn.Metadata())
}
