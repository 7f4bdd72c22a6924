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

// Package counter implements a counter program which only members of a bound
// whitelist may increment. The counter owns its whitelist and manages
// membership through cross-program calls into the whitelist program
package counter

import (
	"math"

	"github.com/blinklabs-io/gatekeeper/ledger"
	"github.com/blinklabs-io/gatekeeper/whitelist"
)

const ProgramName = "counter"

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
	case OpCreateCounter:
		return p.createCounter(ctx)
	case OpCreateCounterWhitelist:
		return p.createCounterWhitelist(ctx)
	case OpGrantAccess:
		return p.changeAccess(ctx, args.Member, true)
	case OpRetractAccess:
		return p.changeAccess(ctx, args.Member, false)
	case OpUpdateCounter:
		return p.updateCounter(ctx)
	case OpResetWhitelist:
		return p.resetWhitelist(ctx)
	default:
		return ctx.Fail(ledger.ErrInvalidInstruction, "unknown op %d", args.Op)
	}
}

func (p *Program) loadCounter(
	ctx *ledger.InvocationContext,
	addr ledger.Address,
) (*Counter, error) {
	account, err := ctx.LoadOwned(addr)
	if err != nil {
		return nil, err
	}
	c, err := DecodeCounter(account.Data)
	if err != nil {
		return nil, ctx.Wrap(err)
	}
	return c, nil
}

func (p *Program) storeCounter(
	ctx *ledger.InvocationContext,
	addr ledger.Address,
	c *Counter,
) error {
	data, err := ledger.EncodeData(c)
	if err != nil {
		return err
	}
	return ctx.Store(addr, data)
}

// authorize loads the counter and checks it against the supplied authority
func (p *Program) authorize(
	ctx *ledger.InvocationContext,
	authority ledger.AccountMeta,
	counter ledger.AccountMeta,
) (*Counter, error) {
	c, err := p.loadCounter(ctx, counter.Address)
	if err != nil {
		return nil, err
	}
	if err := ctx.RequireAuthority(authority, c.Authority); err != nil {
		return nil, err
	}
	return c, nil
}

// bound runs the whitelist has-one check followed by the bound check
func (p *Program) bound(
	ctx *ledger.InvocationContext,
	c *Counter,
	list ledger.AccountMeta,
) error {
	if err := ctx.RequireHasOne("whitelist", list.Address, c.Whitelist); err != nil {
		return err
	}
	if !c.Bound() {
		return ctx.Fail(ledger.ErrNotBound, "")
	}
	return nil
}

func (p *Program) createCounter(ctx *ledger.InvocationContext) error {
	authority, err := ctx.Account(0)
	if err != nil {
		return err
	}
	counter, err := ctx.Account(1)
	if err != nil {
		return err
	}
	if err := ctx.RequireSigner(authority, "authority"); err != nil {
		return err
	}
	expected, bump, err := CounterAddress(authority.Address)
	if err != nil {
		return ctx.Wrap(err)
	}
	if expected != counter.Address {
		return ctx.Fail(
			ledger.ErrSeedsMismatch,
			"counter %s is not derived from authority %s",
			counter.Address,
			authority.Address,
		)
	}
	c := &Counter{
		Kind:      KindCounter,
		Authority: authority.Address,
		Bump:      bump,
	}
	data, err := ledger.EncodeData(c)
	if err != nil {
		return err
	}
	if err := ctx.Create(counter.Address, data, c.seeds()...); err != nil {
		return err
	}
	ctx.Emit(
		CreatedEventType,
		CreatedEvent{
			Counter:   counter.Address,
			Authority: authority.Address,
		},
	)
	return nil
}

func (p *Program) createCounterWhitelist(ctx *ledger.InvocationContext) error {
	authority, err := ctx.Account(0)
	if err != nil {
		return err
	}
	counter, err := ctx.Account(1)
	if err != nil {
		return err
	}
	config, err := ctx.Account(2)
	if err != nil {
		return err
	}
	c, err := p.authorize(ctx, authority, counter)
	if err != nil {
		return err
	}
	if c.Bound() {
		return ctx.Fail(ledger.ErrAlreadyBound, "%s", c.Whitelist)
	}
	// The counter, not the caller, becomes the whitelist authority
	ix, err := whitelist.CreateWhitelist(counter.Address, config.Address)
	if err != nil {
		return err
	}
	if err := ctx.Invoke(ix, c.seeds()); err != nil {
		return err
	}
	c.Whitelist = config.Address
	if err := p.storeCounter(ctx, counter.Address, c); err != nil {
		return err
	}
	ctx.Emit(
		WhitelistBoundEventType,
		WhitelistEvent{
			Counter:   counter.Address,
			Whitelist: config.Address,
		},
	)
	return nil
}

func (p *Program) changeAccess(
	ctx *ledger.InvocationContext,
	member ledger.Address,
	grant bool,
) error {
	authority, err := ctx.Account(0)
	if err != nil {
		return err
	}
	counter, err := ctx.Account(1)
	if err != nil {
		return err
	}
	entry, err := ctx.Account(2)
	if err != nil {
		return err
	}
	list, err := ctx.Account(3)
	if err != nil {
		return err
	}
	c, err := p.authorize(ctx, authority, counter)
	if err != nil {
		return err
	}
	if err := p.bound(ctx, c, list); err != nil {
		return err
	}
	var ix ledger.Instruction
	if grant {
		ix, err = whitelist.AddWalletEntry(
			list.Address,
			entry.Address,
			counter.Address,
			member,
		)
	} else {
		ix, err = whitelist.RemoveWalletEntry(
			list.Address,
			entry.Address,
			counter.Address,
			member,
		)
	}
	if err != nil {
		return err
	}
	return ctx.Invoke(ix, c.seeds())
}

func (p *Program) updateCounter(ctx *ledger.InvocationContext) error {
	user, err := ctx.Account(0)
	if err != nil {
		return err
	}
	authority, err := ctx.Account(1)
	if err != nil {
		return err
	}
	counter, err := ctx.Account(2)
	if err != nil {
		return err
	}
	entry, err := ctx.Account(3)
	if err != nil {
		return err
	}
	list, err := ctx.Account(4)
	if err != nil {
		return err
	}
	if err := ctx.RequireSigner(user, "member"); err != nil {
		return err
	}
	c, err := p.loadCounter(ctx, counter.Address)
	if err != nil {
		return err
	}
	if authority.Address != c.Authority {
		return ctx.Fail(
			ledger.ErrUnauthorized,
			"%s is not the authority",
			authority.Address,
		)
	}
	expected, err := ledger.CreateProgramAddress(c.seeds(), ProgramID)
	if err != nil || expected != counter.Address {
		return ctx.Fail(
			ledger.ErrSeedsMismatch,
			"counter %s is not derived from authority %s",
			counter.Address,
			authority.Address,
		)
	}
	if err := p.bound(ctx, c, list); err != nil {
		return err
	}
	ix, err := whitelist.CheckWalletEntry(list.Address, entry.Address, user.Address)
	if err != nil {
		return err
	}
	if err := ctx.Invoke(ix); err != nil {
		return ctx.Fail(ledger.ErrNotAMember, "%s: %s", user.Address, err)
	}
	if c.Count == math.MaxUint64 {
		return ctx.Fail(ledger.ErrArithmeticOverflow, "count")
	}
	c.Count++
	if err := p.storeCounter(ctx, counter.Address, c); err != nil {
		return err
	}
	ctx.Emit(
		UpdatedEventType,
		UpdatedEvent{
			Counter: counter.Address,
			Member:  user.Address,
			Count:   c.Count,
		},
	)
	return nil
}

func (p *Program) resetWhitelist(ctx *ledger.InvocationContext) error {
	authority, err := ctx.Account(0)
	if err != nil {
		return err
	}
	counter, err := ctx.Account(1)
	if err != nil {
		return err
	}
	c, err := p.authorize(ctx, authority, counter)
	if err != nil {
		return err
	}
	if !c.Bound() {
		return ctx.Fail(ledger.ErrNotBound, "")
	}
	previous := c.Whitelist
	c.Whitelist = ledger.DefaultAddress
	if err := p.storeCounter(ctx, counter.Address, c); err != nil {
		return err
	}
	ctx.Emit(
		WhitelistResetEventType,
		WhitelistEvent{
			Counter:   counter.Address,
			Whitelist: previous,
		},
	)
	return nil
}
