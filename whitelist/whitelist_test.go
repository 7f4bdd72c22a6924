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

package whitelist_test

import (
	"context"
	"testing"
	"time"

	"github.com/blinklabs-io/gatekeeper/internal/test/testutil"
	"github.com/blinklabs-io/gatekeeper/ledger"
	"github.com/blinklabs-io/gatekeeper/whitelist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	t         *testing.T
	rt        *ledger.Runtime
	authority ledger.Address
	config    ledger.Address
}

func newTestEnv(t *testing.T) *testEnv {
	rt, _ := testutil.NewTestRuntime(t, whitelist.New())
	addrs := testutil.NewAddresses(t, 2)
	env := &testEnv{
		t:         t,
		rt:        rt,
		authority: addrs[0],
		config:    addrs[1],
	}
	ix, err := whitelist.CreateWhitelist(env.authority, env.config)
	require.NoError(t, err)
	require.NoError(t, env.exec(ix, env.authority, env.config))
	return env
}

func (e *testEnv) exec(ix ledger.Instruction, signers ...ledger.Address) error {
	_, err := e.rt.Execute(
		context.Background(),
		ledger.NewTransaction(signers, ix),
	)
	return err
}

func (e *testEnv) add(member ledger.Address) error {
	ix, err := whitelist.AddWallet(e.config, e.authority, member)
	require.NoError(e.t, err)
	return e.exec(ix, e.authority)
}

func (e *testEnv) remove(member ledger.Address) error {
	ix, err := whitelist.RemoveWallet(e.config, e.authority, member)
	require.NoError(e.t, err)
	return e.exec(ix, e.authority)
}

func (e *testEnv) check(member ledger.Address) error {
	ix, err := whitelist.CheckWallet(e.config, member)
	require.NoError(e.t, err)
	return e.exec(ix)
}

func (e *testEnv) memberCount() uint64 {
	cfg, err := whitelist.GetConfig(e.rt, e.config)
	require.NoError(e.t, err)
	return cfg.MemberCount
}

func requireRaised(t *testing.T, err error, kind error) {
	t.Helper()
	require.ErrorIs(t, err, kind)
	name, ok := ledger.RaisedBy(err)
	require.True(t, ok)
	assert.Equal(t, whitelist.ProgramName, name)
}

func TestCreateWhitelist(t *testing.T) {
	env := newTestEnv(t)
	cfg, err := whitelist.GetConfig(env.rt, env.config)
	require.NoError(t, err)
	assert.Equal(t, env.authority, cfg.Authority)
	assert.Equal(t, uint64(0), cfg.MemberCount)
	ix, err := whitelist.CreateWhitelist(env.authority, env.config)
	require.NoError(t, err)
	requireRaised(t, env.exec(ix, env.authority, env.config), ledger.ErrAlreadyInitialized)
}

func TestMembership(t *testing.T) {
	env := newTestEnv(t)
	members := testutil.NewAddresses(t, 3)
	for _, member := range members {
		requireRaised(t, env.check(member), ledger.ErrNotAMember)
		require.NoError(t, env.add(member))
		require.NoError(t, env.check(member))
		ok, err := whitelist.IsMember(env.rt, env.config, member)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, uint64(3), env.memberCount())
	require.NoError(t, env.remove(members[1]))
	requireRaised(t, env.check(members[1]), ledger.ErrNotAMember)
	require.NoError(t, env.check(members[0]))
	assert.Equal(t, uint64(2), env.memberCount())
	// Members can be added again after removal
	require.NoError(t, env.add(members[1]))
	assert.Equal(t, uint64(3), env.memberCount())
	owned, err := env.rt.Accounts(whitelist.ProgramID)
	require.NoError(t, err)
	// One config and three entries
	assert.Len(t, owned, 4)
}

func TestStrictAddRemove(t *testing.T) {
	env := newTestEnv(t)
	member := testutil.NewAddresses(t, 1)[0]
	require.NoError(t, env.add(member))
	requireRaised(t, env.add(member), ledger.ErrDuplicateMember)
	assert.Equal(t, uint64(1), env.memberCount())
	require.NoError(t, env.remove(member))
	requireRaised(t, env.remove(member), ledger.ErrNotAMember)
	assert.Equal(t, uint64(0), env.memberCount())
}

func TestMemberCountMatchesEntries(t *testing.T) {
	env := newTestEnv(t)
	members := testutil.NewAddresses(t, 6)
	for _, member := range members {
		require.NoError(t, env.add(member))
	}
	for _, member := range members[:4] {
		require.NoError(t, env.remove(member))
	}
	assert.Equal(t, uint64(2), env.memberCount())
	owned, err := env.rt.Accounts(whitelist.ProgramID)
	require.NoError(t, err)
	assert.Len(t, owned, 1+2)
}

func TestListsDoNotAlias(t *testing.T) {
	env := newTestEnv(t)
	other := newTestEnv(t)
	member := testutil.NewAddresses(t, 1)[0]
	entryA, _, err := whitelist.MemberAddress(env.config, member)
	require.NoError(t, err)
	entryB, _, err := whitelist.MemberAddress(other.config, member)
	require.NoError(t, err)
	assert.NotEqual(t, entryA, entryB)
	require.NoError(t, env.add(member))
	// Use the first runtime for both lists
	other.rt = env.rt
	ix, err := whitelist.CreateWhitelist(other.authority, other.config)
	require.NoError(t, err)
	require.NoError(t, other.exec(ix, other.authority, other.config))
	requireRaised(t, other.check(member), ledger.ErrNotAMember)
}

func TestAuthorityRequired(t *testing.T) {
	env := newTestEnv(t)
	addrs := testutil.NewAddresses(t, 2)
	intruder, member := addrs[0], addrs[1]
	ix, err := whitelist.AddWallet(env.config, intruder, member)
	require.NoError(t, err)
	requireRaised(t, env.exec(ix, intruder), ledger.ErrUnauthorized)
	// The authority account without its signature
	ix, err = whitelist.AddWallet(env.config, env.authority, member)
	require.NoError(t, err)
	ix.Accounts[2].Signer = false
	requireRaised(t, env.exec(ix), ledger.ErrUnauthorized)
	assert.Equal(t, uint64(0), env.memberCount())
}

func TestSetAuthority(t *testing.T) {
	env := newTestEnv(t)
	addrs := testutil.NewAddresses(t, 2)
	newAuthority, member := addrs[0], addrs[1]
	ix, err := whitelist.SetAuthority(env.config, newAuthority, newAuthority)
	require.NoError(t, err)
	requireRaised(t, env.exec(ix, newAuthority), ledger.ErrUnauthorized)
	ix, err = whitelist.SetAuthority(env.config, env.authority, newAuthority)
	require.NoError(t, err)
	require.NoError(t, env.exec(ix, env.authority))
	// The previous authority has no further access
	requireRaised(t, env.add(member), ledger.ErrUnauthorized)
	ix, err = whitelist.AddWallet(env.config, newAuthority, member)
	require.NoError(t, err)
	require.NoError(t, env.exec(ix, newAuthority))
	assert.Equal(t, uint64(1), env.memberCount())
}

func TestCheckWalletMismatchedEntry(t *testing.T) {
	env := newTestEnv(t)
	addrs := testutil.NewAddresses(t, 2)
	member, other := addrs[0], addrs[1]
	require.NoError(t, env.add(member))
	entry, _, err := whitelist.MemberAddress(env.config, member)
	require.NoError(t, err)
	ix, err := whitelist.CheckWalletEntry(env.config, entry, other)
	require.NoError(t, err)
	requireRaised(t, env.exec(ix), ledger.ErrSeedsMismatch)
}

func TestMemberEvents(t *testing.T) {
	rt, bus := testutil.NewTestRuntime(t, whitelist.New())
	_, addedCh := bus.Subscribe(whitelist.MemberAddedEventType)
	_, removedCh := bus.Subscribe(whitelist.MemberRemovedEventType)
	addrs := testutil.NewAddresses(t, 3)
	env := &testEnv{t: t, rt: rt, authority: addrs[0], config: addrs[1]}
	ix, err := whitelist.CreateWhitelist(env.authority, env.config)
	require.NoError(t, err)
	require.NoError(t, env.exec(ix, env.authority, env.config))
	require.NoError(t, env.add(addrs[2]))
	evt := testutil.RequireReceive(t, addedCh, 5*time.Second, "member added")
	assert.Equal(
		t,
		whitelist.MemberEvent{
			Whitelist:   env.config,
			Member:      addrs[2],
			MemberCount: 1,
		},
		evt.Data,
	)
	require.NoError(t, env.remove(addrs[2]))
	evt = testutil.RequireReceive(t, removedCh, 5*time.Second, "member removed")
	assert.Equal(t, uint64(0), evt.Data.(whitelist.MemberEvent).MemberCount)
}

func TestInvalidInstruction(t *testing.T) {
	env := newTestEnv(t)
	err := env.exec(
		ledger.Instruction{
			ProgramID: whitelist.ProgramID,
			Data:      []byte{0xff, 0x00},
		},
	)
	requireRaised(t, err, ledger.ErrInvalidInstruction)
}
