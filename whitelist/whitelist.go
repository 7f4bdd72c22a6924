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

// Package whitelist implements a program maintaining membership sets. Each
// member is represented by an account derived from the whitelist and member
// addresses, so a membership test is a single account lookup
package whitelist

import (
	"math"

	"github.com/blinklabs-io/gatekeeper/ledger"
)

const ProgramName = "whitelist"

var ProgramID = ledger.ProgramAddress(ProgramName)

type Program struct{}

func New() *Program {
	return &Program{}
}

func (p *Program) ID() ledger.Address {
	return ProgramID
}

func (p *Program) Name() string {
	return ProgramName
}

func (p *Program) Process(ctx *ledger.InvocationContext, data []byte) error {
	var args instructionData
	if err := ledger.DecodeInstruction(data, &args); err != nil {
		return ctx.Wrap(err)
	}
	switch args.Op {
	case OpCreateWhitelist:
		return p.createWhitelist(ctx)
	case OpAddWallet:
		return p.addWallet(ctx, args.Address)
	case OpRemoveWallet:
		return p.removeWallet(ctx, args.Address)
	case OpCheckWallet:
		return p.checkWallet(ctx, args.Address)
	case OpSetAuthority:
		return p.setAuthority(ctx, args.Address)
	default:
		return ctx.Fail(ledger.ErrInvalidInstruction, "unknown op %d", args.Op)
	}
}

func (p *Program) loadConfig(
	ctx *ledger.InvocationContext,
	addr ledger.Address,
) (*Config, error) {
	account, err := ctx.LoadOwned(addr)
	if err != nil {
		return nil, err
	}
	cfg, err := DecodeConfig(account.Data)
	if err != nil {
		return nil, ctx.Wrap(err)
	}
	return cfg, nil
}

func (p *Program) storeConfig(
	ctx *ledger.InvocationContext,
	addr ledger.Address,
	cfg *Config,
) error {
	data, err := ledger.EncodeData(cfg)
	if err != nil {
		return err
	}
	return ctx.Store(addr, data)
}

// memberEntry verifies that entry is derived from the whitelist and member
func (p *Program) memberEntry(
	ctx *ledger.InvocationContext,
	whitelist ledger.Address,
	entry ledger.Address,
	member ledger.Address,
) ([][]byte, error) {
	expected, bump, err := MemberAddress(whitelist, member)
	if err != nil {
		return nil, ctx.Wrap(err)
	}
	if expected != entry {
		return nil, ctx.Fail(
			ledger.ErrSeedsMismatch,
			"entry %s is not derived from member %s",
			entry,
			member,
		)
	}
	return append(memberSeeds(whitelist, member), []byte{bump}), nil
}

func (p *Program) createWhitelist(ctx *ledger.InvocationContext) error {
	authority, err := ctx.Account(0)
	if err != nil {
		return err
	}
	config, err := ctx.Account(1)
	if err != nil {
		return err
	}
	if err := ctx.RequireSigner(authority, "authority"); err != nil {
		return err
	}
	data, err := ledger.EncodeData(
		&Config{
			Kind:      KindConfig,
			Authority: authority.Address,
		},
	)
	if err != nil {
		return err
	}
	if err := ctx.Create(config.Address, data); err != nil {
		return err
	}
	ctx.Emit(
		CreatedEventType,
		CreatedEvent{
			Whitelist: config.Address,
			Authority: authority.Address,
		},
	)
	return nil
}

// memberAccounts returns the config, entry, and authority accounts shared by
// addWallet and removeWallet, along with the loaded config
func (p *Program) memberAccounts(
	ctx *ledger.InvocationContext,
) (ledger.AccountMeta, ledger.AccountMeta, *Config, error) {
	var empty ledger.AccountMeta
	config, err := ctx.Account(0)
	if err != nil {
		return empty, empty, nil, err
	}
	entry, err := ctx.Account(1)
	if err != nil {
		return empty, empty, nil, err
	}
	authority, err := ctx.Account(2)
	if err != nil {
		return empty, empty, nil, err
	}
	cfg, err := p.loadConfig(ctx, config.Address)
	if err != nil {
		return empty, empty, nil, err
	}
	if err := ctx.RequireAuthority(authority, cfg.Authority); err != nil {
		return empty, empty, nil, err
	}
	return config, entry, cfg, nil
}

func (p *Program) addWallet(
	ctx *ledger.InvocationContext,
	member ledger.Address,
) error {
	config, entry, cfg, err := p.memberAccounts(ctx)
	if err != nil {
		return err
	}
	seeds, err := p.memberEntry(ctx, config.Address, entry.Address, member)
	if err != nil {
		return err
	}
	exists, err := ctx.Exists(entry.Address)
	if err != nil {
		return err
	}
	if exists {
		return ctx.Fail(ledger.ErrDuplicateMember, "%s", member)
	}
	if cfg.MemberCount == math.MaxUint64 {
		return ctx.Fail(ledger.ErrArithmeticOverflow, "member count")
	}
	data, err := ledger.EncodeData(
		&Member{
			Kind: KindMember,
			Bump: seeds[len(seeds)-1][0],
		},
	)
	if err != nil {
		return err
	}
	if err := ctx.Create(entry.Address, data, seeds...); err != nil {
		return err
	}
	cfg.MemberCount++
	if err := p.storeConfig(ctx, config.Address, cfg); err != nil {
		return err
	}
	ctx.Emit(
		MemberAddedEventType,
		MemberEvent{
			Whitelist:   config.Address,
			Member:      member,
			MemberCount: cfg.MemberCount,
		},
	)
	return nil
}

func (p *Program) removeWallet(
	ctx *ledger.InvocationContext,
	member ledger.Address,
) error {
	config, entry, cfg, err := p.memberAccounts(ctx)
	if err != nil {
		return err
	}
	if _, err := p.memberEntry(ctx, config.Address, entry.Address, member); err != nil {
		return err
	}
	exists, err := ctx.Exists(entry.Address)
	if err != nil {
		return err
	}
	if !exists {
		return ctx.Fail(ledger.ErrNotAMember, "%s", member)
	}
	if cfg.MemberCount == 0 {
		return ctx.Fail(ledger.ErrArithmeticOverflow, "member count")
	}
	if err := ctx.Close(entry.Address); err != nil {
		return err
	}
	cfg.MemberCount--
	if err := p.storeConfig(ctx, config.Address, cfg); err != nil {
		return err
	}
	ctx.Emit(
		MemberRemovedEventType,
		MemberEvent{
			Whitelist:   config.Address,
			Member:      member,
			MemberCount: cfg.MemberCount,
		},
	)
	return nil
}

func (p *Program) checkWallet(
	ctx *ledger.InvocationContext,
	member ledger.Address,
) error {
	config, err := ctx.Account(0)
	if err != nil {
		return err
	}
	entry, err := ctx.Account(1)
	if err != nil {
		return err
	}
	if _, err := p.loadConfig(ctx, config.Address); err != nil {
		return err
	}
	if _, err := p.memberEntry(ctx, config.Address, entry.Address, member); err != nil {
		return err
	}
	exists, err := ctx.Exists(entry.Address)
	if err != nil {
		return err
	}
	if !exists {
		return ctx.Fail(ledger.ErrNotAMember, "%s", member)
	}
	account, err := ctx.LoadOwned(entry.Address)
	if err != nil {
		return err
	}
	if _, err := DecodeMember(account.Data); err != nil {
		return ctx.Wrap(err)
	}
	return nil
}

func (p *Program) setAuthority(
	ctx *ledger.InvocationContext,
	newAuthority ledger.Address,
) error {
	config, err := ctx.Account(0)
	if err != nil {
		return err
	}
	authority, err := ctx.Account(1)
	if err != nil {
		return err
	}
	cfg, err := p.loadConfig(ctx, config.Address)
	if err != nil {
		return err
	}
	if err := ctx.RequireAuthority(authority, cfg.Authority); err != nil {
		return err
	}
	cfg.Authority = newAuthority
	if err := p.storeConfig(ctx, config.Address, cfg); err != nil {
		return err
	}
	ctx.Emit(
		AuthorityChangedEventType,
		AuthorityChangedEvent{
			Whitelist:    config.Address,
			OldAuthority: authority.Address,
			NewAuthority: newAuthority,
		},
	)
	return nil
}
