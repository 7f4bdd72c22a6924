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

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/blinklabs-io/gatekeeper/database"
	"github.com/blinklabs-io/gatekeeper/database/models"
	"github.com/blinklabs-io/gatekeeper/event"
)

// MaxInvokeDepth is the deepest allowed invocation stack, counting the
// top-level instruction
const MaxInvokeDepth = 5

// InvocationContext is handed to a program for each invocation. It exposes
// the accounts declared by the instruction and enforces ownership and
// privilege rules on every access
type InvocationContext struct {
	exec     *execution
	ctx      context.Context
	program  Program
	accounts []AccountMeta
	depth    int
}

func (c *InvocationContext) Context() context.Context {
	return c.ctx
}

func (c *InvocationContext) ProgramID() Address {
	return c.program.ID()
}

func (c *InvocationContext) ProgramName() string {
	return c.program.Name()
}

// Depth returns the invocation depth, which is 1 for a top-level instruction
func (c *InvocationContext) Depth() int {
	return c.depth
}

func (c *InvocationContext) Accounts() []AccountMeta {
	return c.accounts
}

func (c *InvocationContext) Logger() *slog.Logger {
	return c.exec.runtime.logger.With(
		"component", "ledger",
		"program", c.program.Name(),
	)
}

// Account returns the account declared at the given position
func (c *InvocationContext) Account(idx int) (AccountMeta, error) {
	if idx < 0 || idx >= len(c.accounts) {
		return AccountMeta{}, c.Fail(
			ErrNotEnoughAccounts,
			"need index %d, have %d accounts",
			idx,
			len(c.accounts),
		)
	}
	return c.accounts[idx], nil
}

// meta returns the merged privileges for an address declared more than once
func (c *InvocationContext) meta(addr Address) (AccountMeta, bool) {
	ret := AccountMeta{Address: addr}
	found := false
	for _, meta := range c.accounts {
		if meta.Address != addr {
			continue
		}
		found = true
		ret.Signer = ret.Signer || meta.Signer
		ret.Writable = ret.Writable || meta.Writable
	}
	return ret, found
}

// IsSigner returns whether addr signed this invocation
func (c *InvocationContext) IsSigner(addr Address) bool {
	meta, ok := c.meta(addr)
	return ok && meta.Signer
}

// Fail returns a ProgramError of the given kind raised by the current program
func (c *InvocationContext) Fail(kind error, format string, args ...any) error {
	ret := &ProgramError{
		Err:       kind,
		Program:   c.program.Name(),
		ProgramID: c.program.ID(),
	}
	if format != "" {
		ret.Detail = fmt.Sprintf(format, args...)
	}
	return ret
}

// Wrap attributes an error which already wraps an error kind to the current
// program
func (c *InvocationContext) Wrap(err error) error {
	if err == nil {
		return nil
	}
	var progErr *ProgramError
	if errors.As(err, &progErr) {
		return err
	}
	return &ProgramError{
		Err:       err,
		Program:   c.program.Name(),
		ProgramID: c.program.ID(),
	}
}

func (c *InvocationContext) declared(addr Address) (AccountMeta, error) {
	meta, ok := c.meta(addr)
	if !ok {
		return meta, c.Fail(ErrUndeclaredAccount, "%s", addr)
	}
	return meta, nil
}

func (c *InvocationContext) writable(addr Address) error {
	meta, err := c.declared(addr)
	if err != nil {
		return err
	}
	if !meta.Writable {
		return c.Fail(ErrAccountNotWritable, "%s", addr)
	}
	return nil
}

// Exists returns whether a declared account holds data
func (c *InvocationContext) Exists(addr Address) (bool, error) {
	if _, err := c.declared(addr); err != nil {
		return false, err
	}
	return c.exec.runtime.db.AccountExists(addr.Bytes(), c.exec.txn)
}

// Load returns the current state of a declared account, including writes
// made earlier in the same transaction
func (c *InvocationContext) Load(addr Address) (*Account, error) {
	if _, err := c.declared(addr); err != nil {
		return nil, err
	}
	tmpAccount, err := c.exec.runtime.db.GetAccount(addr.Bytes(), c.exec.txn)
	if err != nil {
		if errors.Is(err, database.ErrAccountNotFound) {
			return nil, c.Fail(ErrAccountNotFound, "%s", addr)
		}
		return nil, err
	}
	return accountFromModel(addr, tmpAccount)
}

// LoadOwned is Load for accounts which must belong to the current program
func (c *InvocationContext) LoadOwned(addr Address) (*Account, error) {
	account, err := c.Load(addr)
	if err != nil {
		return nil, err
	}
	if account.Owner != c.program.ID() {
		return nil, c.Fail(
			ErrIllegalOwner,
			"%s is owned by %s",
			addr,
			c.exec.runtime.programName(account.Owner),
		)
	}
	return account, nil
}

// Create initializes a new account owned by the current program. The address
// must either have signed or be derived from seeds under the current program
func (c *InvocationContext) Create(addr Address, data []byte, seeds ...[]byte) error {
	if err := c.writable(addr); err != nil {
		return err
	}
	if addr.IsDefault() {
		return c.Fail(ErrReservedAddress, "%s", addr)
	}
	if len(seeds) > 0 {
		derived, err := CreateProgramAddress(seeds, c.program.ID())
		if err != nil {
			return c.Fail(ErrSeedsMismatch, "%s: %s", addr, err)
		}
		if derived != addr {
			return c.Fail(ErrSeedsMismatch, "%s", addr)
		}
	} else if !c.IsSigner(addr) {
		return c.Fail(ErrMissingSignature, "new account %s", addr)
	}
	exists, err := c.exec.runtime.db.AccountExists(addr.Bytes(), c.exec.txn)
	if err != nil {
		return err
	}
	if exists {
		return c.Fail(ErrAlreadyInitialized, "%s", addr)
	}
	return c.put(addr, data)
}

// Store replaces the data of an existing account owned by the current program
func (c *InvocationContext) Store(addr Address, data []byte) error {
	if err := c.writable(addr); err != nil {
		return err
	}
	if _, err := c.LoadOwned(addr); err != nil {
		return err
	}
	return c.put(addr, data)
}

// Close removes an account owned by the current program
func (c *InvocationContext) Close(addr Address) error {
	if err := c.writable(addr); err != nil {
		return err
	}
	if _, err := c.LoadOwned(addr); err != nil {
		return err
	}
	return c.exec.runtime.db.DeleteAccount(addr.Bytes(), c.exec.txn)
}

func (c *InvocationContext) put(addr Address, data []byte) error {
	return c.exec.runtime.db.SetAccount(
		addr.Bytes(),
		&models.Account{
			Owner: c.program.ID().Bytes(),
			Data:  data,
		},
		c.exec.txn,
	)
}

// Emit queues an event. Events are published only if the transaction commits
func (c *InvocationContext) Emit(eventType event.EventType, data any) {
	c.exec.events = append(c.exec.events, event.NewEvent(eventType, data))
}

// Invoke calls another program with a subset of the current accounts. The
// callee may not gain writable or signer privileges, except that an address
// derived from one of signerSeeds under the current program is treated as a
// signer. Errors raised by the callee are returned unchanged
func (c *InvocationContext) Invoke(ix Instruction, signerSeeds ...[][]byte) error {
	if c.depth+1 > MaxInvokeDepth {
		return c.Fail(ErrCallDepthExceeded, "depth %d", c.depth+1)
	}
	callee, ok := c.exec.runtime.program(ix.ProgramID)
	if !ok {
		return c.Fail(ErrUnknownProgram, "%s", ix.ProgramID)
	}
	if _, ok := c.meta(ix.ProgramID); !ok {
		return c.Fail(ErrProgramNotDeclared, "%s", callee.Name())
	}
	if c.exec.onStack(ix.ProgramID) {
		return c.Fail(ErrReentrancy, "%s", callee.Name())
	}
	pdaSigners := make(map[Address]struct{}, len(signerSeeds))
	for _, seeds := range signerSeeds {
		addr, err := CreateProgramAddress(seeds, c.program.ID())
		if err != nil {
			return c.Fail(ErrSeedsMismatch, "%s", err)
		}
		pdaSigners[addr] = struct{}{}
	}
	for _, meta := range ix.Accounts {
		callerMeta, ok := c.meta(meta.Address)
		if !ok {
			return c.Fail(ErrUndeclaredAccount, "%s", meta.Address)
		}
		if meta.Writable && !callerMeta.Writable {
			return c.Fail(
				ErrPrivilegeEscalation,
				"%s is not writable",
				meta.Address,
			)
		}
		if meta.Signer && !callerMeta.Signer {
			if _, ok := pdaSigners[meta.Address]; !ok {
				return c.Fail(
					ErrPrivilegeEscalation,
					"%s did not sign",
					meta.Address,
				)
			}
		}
	}
	return c.exec.invoke(callee, ix.Accounts, ix.Data, c.depth+1)
}

// RequireSigner fails with ErrUnauthorized unless meta signed
func (c *InvocationContext) RequireSigner(meta AccountMeta, role string) error {
	if !c.IsSigner(meta.Address) {
		return c.Fail(ErrUnauthorized, "%s %s did not sign", role, meta.Address)
	}
	return nil
}

// RequireHasOne checks a supplied account against the reference stored on a
// record
func (c *InvocationContext) RequireHasOne(field string, supplied Address, stored Address) error {
	if err := CheckHasOne(field, supplied, stored); err != nil {
		return c.Fail(ErrBindingMismatch, "%s", field)
	}
	return nil
}

// RequireAuthority checks that meta is the stored authority and signed
func (c *InvocationContext) RequireAuthority(meta AccountMeta, stored Address) error {
	if meta.Address != stored {
		return c.Fail(ErrUnauthorized, "%s is not the authority", meta.Address)
	}
	return c.RequireSigner(meta, "authority")
}
