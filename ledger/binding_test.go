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
	"testing"

	"github.com/blinklabs-io/gatekeeper/ledger"
	"github.com/stretchr/testify/assert"
)

func TestCheckHasOne(t *testing.T) {
	bound := ledger.ProgramAddress("bound")
	other := ledger.ProgramAddress("other")
	assert.NoError(t, ledger.CheckHasOne("whitelist", bound, bound))
	err := ledger.CheckHasOne("whitelist", other, bound)
	assert.ErrorIs(t, err, ledger.ErrBindingMismatch)
	assert.Contains(t, err.Error(), "whitelist")
	// An unset reference only accepts the default address
	assert.ErrorIs(
		t,
		ledger.CheckHasOne("whitelist", bound, ledger.DefaultAddress),
		ledger.ErrBindingMismatch,
	)
	assert.NoError(
		t,
		ledger.CheckHasOne("whitelist", ledger.DefaultAddress, ledger.DefaultAddress),
	)
}
