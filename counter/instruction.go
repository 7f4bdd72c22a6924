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
	"fmt"

	"github.com/blinklabs-io/gatekeeper/ledger"
	"github.com/blinklabs-io/gatekeeper/whitelist"
	"github.com/blinklabs-io/gouroboros/cbor"
)

type Op uint8

const (
	OpCreateCounter          Op = 1
	OpCreateCounterWhitelist Op = 2
	OpGrantAccess            Op = 3
	OpRetractAccess          Op = 4
	OpUpdateCounter          Op = 5
	OpResetWhitelist         Op = 6
)

func (o Op) String() string {
	switch o {
	case OpCreateCounter:
		return "createCounter"
	case OpCreateCounterWhitelist:
		return "createCounterWhitelist"
	case OpGrantAccess:
		return "grantAccess"
	case OpRetractAccess:
		return "retractAccess"
	case OpUpdateCounter:
		return "updateCounter"
	case OpResetWhitelist:
		return "resetWhitelist"
	default:
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
}

type instructionData struct {
	cbor.StructAsArray
	Op     Op
	Member ledger.Address
}

func newInstruction(
	op Op,
	member ledger.Address,
	accounts ...ledger.AccountMeta,
) (ledger.Instruction, error) {
	data, err := ledger.EncodeData(instructionData{Op: op, Member: member})
	if err != nil {
		return ledger.Instruction{}, err
	}
	return ledger.Instruction{
		ProgramID: ProgramID,
		Accounts:  accounts,
		Data:      data,
	}, nil
}

// CreateCounter builds an instruction creating the counter owned by authority
func CreateCounter(authority ledger.Address) (ledger.Instruction, error) {
	counter, _, err := CounterAddress(authority)
	if err != nil {
		return ledger.Instruction{}, err
	}
	return newInstruction(
		OpCreateCounter,
		ledger.DefaultAddress,
		ledger.Signer(authority),
		ledger.Writable(counter),
	)
}

// CreateCounterWhitelist builds an instruction creating a whitelist at config
// and binding it to the counter owned by authority. The config address must
// sign
func CreateCounterWhitelist(
	authority ledger.Address,
	config ledger.Address,
) (ledger.Instruction, error) {
	counter, _, err := CounterAddress(authority)
	if err != nil {
		return ledger.Instruction{}, err
	}
	return newInstruction(
		OpCreateCounterWhitelist,
		ledger.DefaultAddress,
		ledger.Signer(authority),
		ledger.Writable(counter),
		ledger.WritableSigner(config),
		ledger.ReadOnly(whitelist.ProgramID),
	)
}

func accessInstruction(
	op Op,
	authority ledger.Address,
	list ledger.Address,
	member ledger.Address,
) (ledger.Instruction, error) {
	counter, _, err := CounterAddress(authority)
	if err != nil {
		return ledger.Instruction{}, err
	}
	entry, _, err := whitelist.MemberAddress(list, member)
	if err != nil {
		return ledger.Instruction{}, err
	}
	return newInstruction(
		op,
		member,
		ledger.Signer(authority),
		ledger.ReadOnly(counter),
		ledger.Writable(entry),
		ledger.Writable(list),
		ledger.ReadOnly(whitelist.ProgramID),
	)
}

// GrantAccess builds an instruction adding member to the whitelist bound to
// the counter owned by authority. The list argument is the whitelist the
// caller believes is bound
func GrantAccess(
	authority ledger.Address,
	list ledger.Address,
	member ledger.Address,
) (ledger.Instruction, error) {
	return accessInstruction(OpGrantAccess, authority, list, member)
}

// RetractAccess builds an instruction removing member from the whitelist
// bound to the counter owned by authority
func RetractAccess(
	authority ledger.Address,
	list ledger.Address,
	member ledger.Address,
) (ledger.Instruction, error) {
	return accessInstruction(OpRetractAccess, authority, list, member)
}

// UpdateCounter builds an instruction incrementing the counter owned by
// authority on behalf of the signing member
func UpdateCounter(
	member ledger.Address,
	authority ledger.Address,
	list ledger.Address,
) (ledger.Instruction, error) {
	counter, _, err := CounterAddress(authority)
	if err != nil {
		return ledger.Instruction{}, err
	}
	entry, _, err := whitelist.MemberAddress(list, member)
	if err != nil {
		return ledger.Instruction{}, err
	}
	return newInstruction(
		OpUpdateCounter,
		ledger.DefaultAddress,
		ledger.Signer(member),
		ledger.ReadOnly(authority),
		ledger.Writable(counter),
		ledger.ReadOnly(entry),
		ledger.ReadOnly(list),
		ledger.ReadOnly(whitelist.ProgramID),
	)
}

// ResetWhitelist builds an instruction unbinding the whitelist from the
// counter owned by authority
func ResetWhitelist(authority ledger.Address) (ledger.Instruction, error) {
	counter, _, err := CounterAddress(authority)
	if err != nil {
		return ledger.Instruction{}, err
	}
	return newInstruction(
		OpResetWhitelist,
		ledger.DefaultAddress,
		ledger.Signer(authority),
		ledger.Writable(counter),
	)
}
