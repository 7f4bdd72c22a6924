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

import "fmt"

// CheckHasOne verifies that a caller-supplied account reference matches the
// reference stored on a record. A stored default address only matches the
// default address, which never belongs to a live account
func CheckHasOne(field string, supplied Address, stored Address) error {
	if supplied != stored {
		return fmt.Errorf(
			"%w: %s: supplied %s, expected %s",
			ErrBindingMismatch,
			field,
			supplied,
			stored,
		)
	}
	return nil
}
