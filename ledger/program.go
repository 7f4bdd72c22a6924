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
	"fmt"

	"github.com/blinklabs-io/gatekeeper/event"
	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/google/uuid"
)

// Program is a service hosted by the runtime. Process is called with the
// instruction data for each instruction addressed to the program
type Program interface {
	ID() Address
	Name() string
	Process(ctx *InvocationContext, data []byte) error
}

// AccountMeta declares an account used by an instruction
type AccountMeta struct {
	Address  Address
	Signer   bool
	Writable bool
}

// ReadOnly declares a read-only, non-signing account
func ReadOnly(addr Address) AccountMeta {
	return AccountMeta{Address: addr}
}

// Writable declares a writable, non-signing account
func Writable(addr Address) AccountMeta {
	return AccountMeta{Address: addr, Writable: true}
}

// Signer declares a read-only signing account
func Signer(addr Address) AccountMeta {
	return AccountMeta{Address: addr, Signer: true}
}

// WritableSigner declares a writable signing account
func WritableSigner(addr Address) AccountMeta {
	return AccountMeta{Address: addr, Signer: true, Writable: true}
}

// Instruction is a single call into a program
type Instruction struct {
	Data      []byte
	Accounts  []AccountMeta
	ProgramID Address
}

// Transaction is an ordered list of instructions executed as one atomic
// unit. Signers lists the addresses whose signatures have been verified by
// the submitter
type Transaction struct {
	Instructions []Instruction
	Signers      []Address
}

// NewTransaction returns a transaction for the given signers and instructions
func NewTransaction(signers []Address, instructions ...Instruction) Transaction {
	return Transaction{
		Instructions: instructions,
		Signers:      signers,
	}
}

// Account is a ledger account as seen by clients
type Account struct {
	Data    []byte
	Address Address
	Owner   Address
}

// Receipt describes a successfully executed transaction
type Receipt struct {
	Events []event.Event
	ID     uuid.UUID
}

// EncodeData encodes an instruction argument or account record
func EncodeData(v any) ([]byte, error) {
	return cbor.Encode(v)
}

// DecodeInstruction decodes instruction data, reporting malformed input as
// ErrInvalidInstruction
func DecodeInstruction(data []byte, dest any) error {
	if _, err := cbor.Decode(data, dest); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInstruction, err)
	}
	return nil
}

// DecodeAccountData decodes an account record, reporting malformed input as
// ErrInvalidAccountData
func DecodeAccountData(data []byte, dest any) error {
	if _, err := cbor.Decode(data, dest); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAccountData, err)
	}
	return nil
}
