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
	"errors"
	"fmt"

	"github.com/blinklabs-io/gatekeeper/ledger"
)

// GetConfig returns the committed config of the whitelist at addr
func GetConfig(rt *ledger.Runtime, addr ledger.Address) (*Config, error) {
	account, err := rt.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if account.Owner != ProgramID {
		return nil, fmt.Errorf("%w: %s", ledger.ErrIllegalOwner, addr)
	}
	return DecodeConfig(account.Data)
}

// IsMember reports whether member currently belongs to the whitelist
func IsMember(
	rt *ledger.Runtime,
	whitelist ledger.Address,
	member ledger.Address,
) (bool, error) {
	entry, _, err := MemberAddress(whitelist, member)
	if err != nil {
		return false, err
	}
	account, err := rt.GetAccount(entry)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return false, nil
		}
		return false, err
	}
	return account.Owner == ProgramID, nil
}
