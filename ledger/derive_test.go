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

package ledger_test

import (
	"bytes"
	"testing"

	"github.com/blinklabs-io/gatekeeper/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindProgramAddress(t *testing.T) {
	programId := ledger.ProgramAddress("test")
	seeds := [][]byte{[]byte("seed"), []byte("other")}
	addr, bump, err := ledger.FindProgramAddress(seeds, programId)
	require.NoError(t, err)
	assert.False(t, ledger.IsOnCurve(addr))
	again, againBump, err := ledger.FindProgramAddress(seeds, programId)
	require.NoError(t, err)
	assert.Equal(t, addr, again)
	assert.Equal(t, bump, againBump)
	created, err := ledger.CreateProgramAddress(
		append(seeds, []byte{bump}),
		programId,
	)
	require.NoError(t, err)
	assert.Equal(t, addr, created)
}

func TestFindProgramAddressDistinct(t *testing.T) {
	member := ledger.ProgramAddress("member")
	listA := ledger.ProgramAddress("list-a")
	listB := ledger.ProgramAddress("list-b")
	programId := ledger.ProgramAddress("test")
	addrA, _, err := ledger.FindProgramAddress(
		[][]byte{listA.Bytes(), member.Bytes()},
		programId,
	)
	require.NoError(t, err)
	addrB, _, err := ledger.FindProgramAddress(
		[][]byte{listB.Bytes(), member.Bytes()},
		programId,
	)
	require.NoError(t, err)
	assert.NotEqual(t, addrA, addrB)
	addrOther, _, err := ledger.FindProgramAddress(
		[][]byte{listA.Bytes(), member.Bytes()},
		ledger.ProgramAddress("other"),
	)
	require.NoError(t, err)
	assert.NotEqual(t, addrA, addrOther)
}

func TestCreateProgramAddressLimits(t *testing.T) {
	programId := ledger.ProgramAddress("test")
	_, err := ledger.CreateProgramAddress(
		[][]byte{bytes.Repeat([]byte{1}, ledger.MaxSeedLength+1)},
		programId,
	)
	assert.ErrorIs(t, err, ledger.ErrMaxSeedLengthExceeded)
	seeds := make([][]byte, ledger.MaxSeeds+1)
	for i := range seeds {
		seeds[i] = []byte{byte(i)}
	}
	_, err = ledger.CreateProgramAddress(seeds, programId)
	assert.ErrorIs(t, err, ledger.ErrMaxSeedLengthExceeded)
	_, _, err = ledger.FindProgramAddress(seeds[:ledger.MaxSeeds], programId)
	assert.ErrorIs(t, err, ledger.ErrMaxSeedLengthExceeded)
}
