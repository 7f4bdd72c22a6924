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

package counter

import (
	"fmt"

	"github.com/blinklabs-io/gatekeeper/ledger"
	"github.com/blinklabs-io/gouroboros/cbor"
)

const KindCounter uint8 = 1

const counterSeedPrefix = "counter"

// Counter is a counter gated by membership in a whitelist. A default
// Whitelist means the counter is unbound
type Counter struct {
	cbor.StructAsArray
	Kind      uint8
	Authority ledger.Address
	Whitelist ledger.Address
	Count     uint64
	Bump      uint8
}

// Bound reports whether a whitelist is attached to the counter
func (c *Counter) Bound() bool {
	return !c.Whitelist.IsDefault()
}

func (c *Counter) seeds() [][]byte {
	return [][]byte{
		[]byte(counterSeedPrefix),
		c.Authority.Bytes(),
		{c.Bump},
	}
}

func DecodeCounter(data []byte) (*Counter, error) {
	ret := &Counter{}
	if err := ledger.DecodeAccountData(data, ret); err != nil {
		return nil, err
	}
	if ret.Kind != KindCounter {
		return nil, fmt.Errorf(
			"%w: expected counter, found kind %d",
			ledger.ErrInvalidAccountData,
			ret.Kind,
		)
	}
	return ret, nil
}

// CounterAddress returns the address of the counter owned by authority,
// along with its bump
func CounterAddress(authority ledger.Address) (ledger.Address, uint8, error) {
	return ledger.FindProgramAddress(
		[][]byte{
			[]byte(counterSeedPrefix),
			authority.Bytes(),
		},
		ProgramID,
	)
}
