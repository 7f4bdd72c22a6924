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

package types_test

import (
	"bytes"
	"testing"

	"github.com/blinklabs-io/gatekeeper/database/types"
	"github.com/stretchr/testify/assert"
)

func TestAccountBlobKey(t *testing.T) {
	addr := bytes.Repeat([]byte{0xab}, 32)
	key := types.AccountBlobKey(addr)
	assert.Equal(t, []byte("acct"), key[:4])
	assert.Len(t, key, 36)
	assert.Equal(t, addr, types.AccountAddressFromBlobKey(key))
}

func TestAccountAddressFromBlobKeyShort(t *testing.T) {
	assert.Nil(t, types.AccountAddressFromBlobKey([]byte("ac")))
}
