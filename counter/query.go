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
)

// GetCounter returns the committed state of the counter at addr
func GetCounter(rt *ledger.Runtime, addr ledger.Address) (*Counter, error) {
	account, err := rt.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if account.Owner != ProgramID {
		return nil, fmt.Errorf("%w: %s", ledger.ErrIllegalOwner, addr)
	}
	return DecodeCounter(account.Data)
}
