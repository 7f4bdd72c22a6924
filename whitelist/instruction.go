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
	"fmt"

	"github.com/blinklabs-io/gatekeeper/ledger"
	"github.com/blinklabs-io/gouroboros/cbor"
)

type Op uint8

const (
	OpCreateWhitelist Op = 1
	OpAddWallet       Op = 2
	OpRemoveWallet    Op = 3
	OpCheckWallet     Op = 4
	OpSetAuthority    Op = 5
)

func (o Op) String() string {
	switch o {
	case OpCreateWhitelist:
		return "createWhitelist"
	case OpAddWallet:
		return "addWallet"
	case OpRemoveWallet:
		return "removeWallet"
	case OpCheckWallet:
		return "checkWallet"
	case OpSetAuthority:
		return "setAuthority"
	default:
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
}

// instructionData is the encoded argument of every whitelist instruction.
// Address holds the member or the new authority, depending on the op
type instructionData struct {
	cbor.StructAsArray
	Op      Op
	Address ledger.Address
}

func newInstruction(
	op Op,
	arg ledger.Address,
	accounts ...ledger.AccountMeta,
) (ledger.Instruction, error) {
	data, err := ledger.EncodeData(instructionData{Op: op, Address: arg})
	if err != nil {
		return ledger.Instruction{}, err
	}
	return ledger.Instruction{
		ProgramID: ProgramID,
		Accounts:  accounts,
		Data:      data,
	}, nil
}

// CreateWhitelist builds an instruction creating a whitelist at config. Both
// the authority and config must sign
func CreateWhitelist(
	authority ledger.Address,
	config ledger.Address,
) (ledger.Instruction, error) {
	return newInstruction(
		OpCreateWhitelist,
		ledger.DefaultAddress,
		ledger.Signer(authority),
		ledger.WritableSigner(config),
	)
}

func memberInstruction(
	op Op,
	config ledger.Address,
	entry ledger.Address,
	authority ledger.Address,
	member ledger.Address,
) (ledger.Instruction, error) {
	return newInstruction(
		op,
		member,
		ledger.Writable(config),
		ledger.Writable(entry),
		ledger.Signer(authority),
	)
}

// AddWallet builds an instruction adding member to the whitelist at config
func AddWallet(
	config ledger.Address,
	authority ledger.Address,
	member ledger.Address,
) (ledger.Instruction, error) {
	entry, _, err := MemberAddress(config, member)
	if err != nil {
		return ledger.Instruction{}, err
	}
	return AddWalletEntry(config, entry, authority, member)
}

// AddWalletEntry is AddWallet with an explicit entry address
func AddWalletEntry(
	config ledger.Address,
	entry ledger.Address,
	authority ledger.Address,
	member ledger.Address,
) (ledger.Instruction, error) {
	return memberInstruction(OpAddWallet, config, entry, authority, member)
}

// RemoveWallet builds an instruction removing member from the whitelist at
// config
func RemoveWallet(
	config ledger.Address,
	authority ledger.Address,
	member ledger.Address,
) (ledger.Instruction, error) {
	entry, _, err := MemberAddress(config, member)
	if err != nil {
		return ledger.Instruction{}, err
	}
	return RemoveWalletEntry(config, entry, authority, member)
}

// RemoveWalletEntry is RemoveWallet with an explicit entry address
func RemoveWalletEntry(
	config ledger.Address,
	entry ledger.Address,
	authority ledger.Address,
	member ledger.Address,
) (ledger.Instruction, error) {
	return memberInstruction(OpRemoveWallet, config, entry, authority, member)
}

// CheckWallet builds an instruction which fails unless member belongs to the
// whitelist at config
func CheckWallet(
	config ledger.Address,
	member ledger.Address,
) (ledger.Instruction, error) {
	entry, _, err := MemberAddress(config, member)
	if err != nil {
		return ledger.Instruction{}, err
	}
	return CheckWalletEntry(config, entry, member)
}

// CheckWalletEntry is CheckWallet with an explicit entry address
func CheckWalletEntry(
	config ledger.Address,
	entry ledger.Address,
	member ledger.Address,
) (ledger.Instruction, error) {
	return newInstruction(
		OpCheckWallet,
		member,
		ledger.ReadOnly(config),
		ledger.ReadOnly(entry),
	)
}

// SetAuthority builds an instruction handing the whitelist at config to
// newAuthority
func SetAuthority(
	config ledger.Address,
	authority ledger.Address,
	newAuthority ledger.Address,
) (ledger.Instruction, error) {
	return newInstruction(
		OpSetAuthority,
		newAuthority,
		ledger.Writable(config),
		ledger.Signer(authority),
	)
}
