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
	"github.com/blinklabs-io/gatekeeper/event"
	"github.com/blinklabs-io/gatekeeper/ledger"
)

const (
	CreatedEventType          event.EventType = "whitelist.created"
	MemberAddedEventType      event.EventType = "whitelist.member_added"
	MemberRemovedEventType    event.EventType = "whitelist.member_removed"
	AuthorityChangedEventType event.EventType = "whitelist.authority_changed"
)

type CreatedEvent struct {
	Whitelist ledger.Address
	Authority ledger.Address
}

// MemberEvent is emitted for both additions and removals
type MemberEvent struct {
	Whitelist   ledger.Address
	Member      ledger.Address
	MemberCount uint64
}

type AuthorityChangedEvent struct {
	Whitelist    ledger.Address
	OldAuthority ledger.Address
	NewAuthority ledger.Address
}
