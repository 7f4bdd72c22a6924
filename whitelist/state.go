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

package whitelist

import (
	"fmt"

	"github.com/blinklabs-io/gatekeeper/ledger"
	"github.com/blinklabs-io/gouroboros/cbor"
)

// Record kinds stored as the first field of every account owned by the
// whitelist program
const (
	KindConfig uint8 = 1
	KindMember uint8 = 2
)

// Config is the state of a single whitelist. The whitelist is identified by
// the address of its config account
type Config struct {
	cbor.StructAsArray
	Kind        uint8
	Authority   ledger.Address
	MemberCount uint64
}

// Member marks a wallet as a member of a whitelist. Its existence is the
// membership predicate
type Member struct {
	cbor.StructAsArray
	Kind uint8
	Bump uint8
}

// DecodeConfig decodes a whitelist config account
func DecodeConfig(data []byte) (*Config, error) {
	ret := &Config{}
	if err := ledger.DecodeAccountData(data, ret); err != nil {
		return nil, err
	}
	if ret.Kind != KindConfig {
		return nil, fmt.Errorf(
			"%w: expected whitelist config, found kind %d",
			ledger.ErrInvalidAccountData,
			ret.Kind,
		)
	}
	return ret, nil
}

// DecodeMember decodes a membership entry account
func DecodeMember(data []byte) (*Member, error) {
	ret := &Member{}
	if err := ledger.DecodeAccountData(data, ret); err != nil {
		return nil, err
	}
	if ret.Kind != KindMember {
		return nil, fmt.Errorf(
			"%w: expected membership entry, found kind %d",
			ledger.ErrInvalidAccountData,
			ret.Kind,
		)
	}
	return ret, nil
}

func memberSeeds(whitelist ledger.Address, member ledger.Address) [][]byte {
	return [][]byte{whitelist.Bytes(), member.Bytes()}
}

// MemberAddress returns the address of the membership entry for member in
// the given whitelist, along with its bump
func MemberAddress(
	whitelist ledger.Address,
	member ledger.Address,
) (ledger.Address, uint8, error) {
	return ledger.FindProgramAddress(memberSeeds(whitelist, member), ProgramID)
}
