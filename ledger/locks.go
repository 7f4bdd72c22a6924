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

package ledger

import (
	"bytes"
	"slices"
	"sync"
)

type lockRequest struct {
	addr  Address
	write bool
}

type accountLock struct {
	sync.RWMutex
	refs int
}

// accountLocks serializes transactions whose account sets overlap. Locks are
// always taken in address order, so two transactions can never wait on each
// other in a cycle
type accountLocks struct {
	entries map[Address]*accountLock
	mu      sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{
		entries: make(map[Address]*accountLock),
	}
}

// lockSet returns the sorted, de-duplicated locks needed by a transaction.
// An account written by any instruction is locked for writing
func lockSet(tx Transaction) []lockRequest {
	merged := make(map[Address]bool)
	for _, ix := range tx.Instructions {
		if _, ok := merged[ix.ProgramID]; !ok {
			merged[ix.ProgramID] = false
		}
		for _, meta := range ix.Accounts {
			merged[meta.Address] = merged[meta.Address] || meta.Writable
		}
	}
	ret := make([]lockRequest, 0, len(merged))
	for addr, write := range merged {
		ret = append(ret, lockRequest{addr: addr, write: write})
	}
	slices.SortFunc(ret, func(a, b lockRequest) int {
		return bytes.Compare(a.addr[:], b.addr[:])
	})
	return ret
}

func (l *accountLocks) acquire(reqs []lockRequest) func() {
	held := make([]*accountLock, len(reqs))
	for i, req := range reqs {
		l.mu.Lock()
		entry, ok := l.entries[req.addr]
		if !ok {
			entry = &accountLock{}
			l.entries[req.addr] = entry
		}
		entry.refs++
		l.mu.Unlock()
		if req.write {
			entry.Lock()
		} else {
			entry.RLock()
		}
		held[i] = entry
	}
	return func() {
		for i := len(reqs) - 1; i >= 0; i-- {
			if reqs[i].write {
				held[i].Unlock()
			} else {
				held[i].RUnlock()
			}
			l.mu.Lock()
			held[i].refs--
			if held[i].refs == 0 {
				delete(l.entries, reqs[i].addr)
			}
			l.mu.Unlock()
		}
	}
}

// size returns the number of tracked account locks
func (l *accountLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
