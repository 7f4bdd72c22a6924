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
	"strings"
	"testing"

	"github.com/blinklabs-io/gatekeeper/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressString(t *testing.T) {
	addr, err := ledger.NewRandomAddress()
	require.NoError(t, err)
	str := addr.String()
	assert.True(t, strings.HasPrefix(str, ledger.AddressHRP+"1"), str)
	parsed, err := ledger.AddressFromString(str)
	require.NoError(t, err)
	assert.Equal(t, addr, parsed)
	parsed, err = ledger.AddressFromString(addr.Hex())
	require.NoError(t, err)
	assert.Equal(t, addr, parsed)
}

func TestAddressFromStringInvalid(t *testing.T) {
	testDefs := []string{
		"",
		"abcd",
		"zz" + strings.Repeat("00", 31),
		ledger.AddressHRP + "1qqqq",
	}
	for _, testDef := range testDefs {
		_, err := ledger.AddressFromString(testDef)
		assert.ErrorIs(t, err, ledger.ErrInvalidAddress, "input %q", testDef)
	}
}

func TestAddressText(t *testing.T) {
	addr := ledger.ProgramAddress("test")
	data, err := addr.MarshalText()
	require.NoError(t, err)
	var tmp ledger.Address
	require.NoError(t, tmp.UnmarshalText(data))
	assert.Equal(t, addr, tmp)
}

func TestDefaultAddress(t *testing.T) {
	assert.True(t, ledger.DefaultAddress.IsDefault())
	assert.False(t, ledger.ProgramAddress("test").IsDefault())
	_, err := ledger.NewAddress(make([]byte, 31))
	assert.ErrorIs(t, err, ledger.ErrInvalidAddress)
}
