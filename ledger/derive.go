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
	"errors"
	"fmt"
	"slices"

	"filippo.io/edwards25519"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
)

const (
	MaxSeeds      = 16
	MaxSeedLength = 32

	derivedAddressMarker = "ProgramDerivedAddress"
)

var (
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")
	ErrInvalidSeeds          = errors.New("provided seeds do not result in a valid address")
	ErrNoViableBump          = errors.New("unable to find a viable derivation bump")
)

// CreateProgramAddress derives an address from the given seeds and program
// ID. The result is never a valid ed25519 public key, so no private key can
// sign for it. Only the program itself can, by presenting the seeds
func CreateProgramAddress(seeds [][]byte, programId Address) (Address, error) {
	if len(seeds) > MaxSeeds {
		return Address{}, fmt.Errorf(
			"%w: %d seeds",
			ErrMaxSeedLengthExceeded,
			len(seeds),
		)
	}
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return Address{}, fmt.Errorf(
				"%w: seed of %d bytes",
				ErrMaxSeedLengthExceeded,
				len(seed),
			)
		}
	}
	buf := slices.Concat(
		slices.Concat(seeds...),
		programId[:],
		[]byte(derivedAddressMarker),
	)
	ret := Address(lcommon.Blake2b256Hash(buf))
	if IsOnCurve(ret) {
		return Address{}, ErrInvalidSeeds
	}
	return ret, nil
}

// FindProgramAddress searches for the highest bump seed which, appended to
// the given seeds, produces a valid derived address
func FindProgramAddress(seeds [][]byte, programId Address) (Address, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return Address{}, 0, fmt.Errorf(
			"%w: %d seeds",
			ErrMaxSeedLengthExceeded,
			len(seeds),
		)
	}
	for bump := 255; bump >= 0; bump-- {
		bumpSeed := []byte{byte(bump)}
		addr, err := CreateProgramAddress(
			append(slices.Clone(seeds), bumpSeed),
			programId,
		)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrInvalidSeeds) {
			return Address{}, 0, err
		}
	}
	return Address{}, 0, ErrNoViableBump
}

// IsOnCurve returns whether the address decodes as an ed25519 curve point
func IsOnCurve(addr Address) bool {
	_, err := new(edwards25519.Point).SetBytes(addr[:])
	return err == nil
}
