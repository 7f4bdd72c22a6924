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
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

const (
	AddressLength = 32
	// AddressHRP is the bech32 human readable part used for addresses
	AddressHRP = "acct"
)

var ErrInvalidAddress = errors.New("invalid address")

// Address identifies an account on the ledger. Programs, wallets and data
// accounts all share the same address space
type Address [AddressLength]byte

// DefaultAddress is the all-zero address. It never belongs to a live
// account and is used as the "unset" value for address fields
var DefaultAddress Address

// NewAddress returns an address from its raw bytes
func NewAddress(data []byte) (Address, error) {
	var ret Address
	if len(data) != AddressLength {
		return ret, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidAddress,
			AddressLength,
			len(data),
		)
	}
	copy(ret[:], data)
	return ret, nil
}

// AddressFromString parses a bech32 or hex encoded address
func AddressFromString(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, AddressHRP+"1") {
		hrp, data, err := bech32.Decode(s)
		if err != nil {
			return Address{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
		}
		if hrp != AddressHRP {
			return Address{}, fmt.Errorf("%w: unexpected prefix %q", ErrInvalidAddress, hrp)
		}
		decoded, err := bech32.ConvertBits(data, 5, 8, false)
		if err != nil {
			return Address{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
		}
		return NewAddress(decoded)
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return NewAddress(decoded)
}

// ProgramAddress returns the well-known address of a named program
func ProgramAddress(name string) Address {
	return Address(lcommon.Blake2b256Hash([]byte("program:" + name)))
}

// NewRandomAddress returns the public key of a freshly generated ed25519 key,
// for new wallets and data accounts. Unlike derived addresses, it is always a
// valid curve point
func NewRandomAddress() (Address, error) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Address{}, err
	}
	return NewAddress(pub)
}

func (a Address) Bytes() []byte {
	return a[:]
}

// IsDefault returns whether this is the all-zero address
func (a Address) IsDefault() bool {
	return a == DefaultAddress
}

// Hex returns the hex encoding of the address
func (a Address) Hex() string {
	return hex.EncodeToString(a[:])
}

// String returns the bech32 encoding of the address
func (a Address) String() string {
	convData, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		return a.Hex()
	}
	encoded, err := bech32.Encode(AddressHRP, convData)
	if err != nil {
		return a.Hex()
	}
	return encoded
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(data []byte) error {
	tmp, err := AddressFromString(string(data))
	if err != nil {
		return err
	}
	*a = tmp
	return nil
}
