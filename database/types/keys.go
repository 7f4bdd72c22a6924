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

package types

import (
	"slices"
)

const (
	AccountBlobKeyPrefix   = "acct"
	CommitTimestampBlobKey = "metadata_commit_timestamp"
)

// AccountBlobKey returns the blob key for the account at the given address
func AccountBlobKey(address []byte) []byte {
	return slices.Concat([]byte(AccountBlobKeyPrefix), address)
}

// AccountAddressFromBlobKey strips the account prefix from a blob key
func AccountAddressFromBlobKey(key []byte) []byte {
	if len(key) < len(AccountBlobKeyPrefix) {
		return nil
	}
	return slices.Clone(key[len(AccountBlobKeyPrefix):])
}
