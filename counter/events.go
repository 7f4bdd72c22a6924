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
	"github.com/blinklabs-io/gatekeeper/event"
	"github.com/blinklabs-io/gatekeeper/ledger"
)

const (
	CreatedEventType        event.EventType = "counter.created"
	WhitelistBoundEventType event.EventType = "counter.whitelist_bound"
	UpdatedEventType        event.EventType = "counter.updated"
	WhitelistResetEventType event.EventType = "counter.whitelist_reset"
)

type CreatedEvent struct {
	Counter   ledger.Address
	Authority ledger.Address
}

// WhitelistEvent is emitted when a whitelist is bound to or reset from a
// counter
type WhitelistEvent struct {
	Counter   ledger.Address
	Whitelist ledger.Address
}

type UpdatedEvent struct {
	Counter ledger.Address
	Member  ledger.Address
	Count   uint64
}
