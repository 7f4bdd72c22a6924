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

package models

import "time"

// JournalEntry records a committed ledger transaction
type JournalEntry struct {
	CreatedAt    time.Time      `gorm:"index"`
	TxID         string         `gorm:"uniqueIndex;size:36"`
	Signers      string
	Programs     string
	Events       []JournalEvent `gorm:"foreignKey:JournalEntryID;references:ID;constraint:OnDelete:CASCADE"`
	ID           uint           `gorm:"primaryKey"`
	Instructions uint
}

func (JournalEntry) TableName() string {
	return "journal_entry"
}

// JournalEvent is an event emitted by a program during a journaled transaction
type JournalEvent struct {
	Type           string `gorm:"index"`
	Data           []byte
	ID             uint `gorm:"primaryKey"`
	JournalEntryID uint `gorm:"index"`
}

func (JournalEvent) TableName() string {
	return "journal_event"
}
