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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockSet(t *testing.T) {
	a := ProgramAddress("a")
	b := ProgramAddress("b")
	prog := ProgramAddress("prog")
	tx := NewTransaction(
		nil,
		Instruction{
			ProgramID: prog,
			Accounts:  []AccountMeta{ReadOnly(a), ReadOnly(b)},
		},
		Instruction{
			ProgramID: prog,
			Accounts:  []AccountMeta{Writable(a)},
		},
	)
	reqs := lockSet(tx)
	require.Len(t, reqs, 3)
	for i := 1; i < len(reqs); i++ {
		assert.Negative(t, bytes.Compare(reqs[i-1].addr[:], reqs[i].addr[:]))
	}
	for _, req := range reqs {
		assert.Equal(t, req.addr == a, req.write, "address %s", req.addr)
	}
}

func TestAccountLocks(t *testing.T) {
	locks := newAccountLocks()
	a := ProgramAddress("a")
	release := locks.acquire([]lockRequest{{addr: a, write: true}})
	assert.Equal(t, 1, locks.size())
	acquired := make(chan struct{})
	go func() {
		releaseRead := locks.acquire([]lockRequest{{addr: a}})
		close(acquired)
		releaseRead()
	}()
	select {
	case <-acquired:
		t.Fatal("read lock acquired while write lock held")
	case <-time.After(50 * time.Millisecond):
	}
	release()
	select {
	case <-acquired:
	case <-time.After(5 * time.Second):
		t.Fatal("read lock not acquired after release")
	}
	require.Eventually(
		t,
		func() bool { return locks.size() == 0 },
		5*time.Second,
		10*time.Millisecond,
	)
}

func TestAccountLocksShared(t *testing.T) {
	locks := newAccountLocks()
	a := ProgramAddress("a")
	release1 := locks.acquire([]lockRequest{{addr: a}})
	release2 := locks.acquire([]lockRequest{{addr: a}})
	assert.Equal(t, 1, locks.size())
	release1()
	release2()
	assert.Equal(t, 0, locks.size())
}
