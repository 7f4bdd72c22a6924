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
	"errors"
	"fmt"
)

// Program error kinds. Programs report these wrapped in a ProgramError so
// that callers can tell both what failed and which program raised it
var (
	ErrDuplicateMember     = errors.New("duplicate member")
	ErrNotAMember          = errors.New("not a member")
	ErrBindingMismatch     = errors.New("binding mismatch")
	ErrAlreadyInitialized  = errors.New("account already initialized")
	ErrAlreadyBound        = errors.New("already bound")
	ErrNotBound            = errors.New("not bound")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrSeedsMismatch       = errors.New("account does not match derivation seeds")
	ErrArithmeticOverflow  = errors.New("arithmetic overflow")
	ErrInvalidInstruction  = errors.New("invalid instruction data")
	ErrInvalidAccountData  = errors.New("invalid account data")
	ErrNotEnoughAccounts   = errors.New("not enough account keys")
	ErrAccountNotFound     = errors.New("account not found")
	ErrIllegalOwner        = errors.New("account owned by another program")
	ErrAccountNotWritable  = errors.New("account not writable")
	ErrUndeclaredAccount   = errors.New("account not declared by instruction")
	ErrPrivilegeEscalation = errors.New("cross-program invocation with unauthorized signer or writable account")
	ErrReservedAddress     = errors.New("address is reserved")
)

// Runtime errors are raised before or around program execution
var (
	ErrEmptyTransaction   = errors.New("transaction has no instructions")
	ErrMissingSignature   = errors.New("missing required signature")
	ErrUnknownProgram     = errors.New("unknown program")
	ErrProgramRegistered  = errors.New("program already registered")
	ErrCallDepthExceeded  = errors.New("cross-program invocation depth exceeded")
	ErrReentrancy         = errors.New("cross-program invocation reentrancy not allowed")
	ErrProgramNotDeclared = errors.New("invoked program not declared by instruction")
)

// ProgramError is returned for any failure raised while a program executes.
// Errors raised by a program called through a cross-program invocation
// propagate unchanged, so Program always names the raising program
type ProgramError struct {
	Err       error
	Detail    string
	Program   string
	ProgramID Address
}

func (e *ProgramError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Program, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Program, e.Err, e.Detail)
}

func (e *ProgramError) Unwrap() error {
	return e.Err
}

// RaisedBy returns the name of the program which raised err, if err
// contains a ProgramError
func RaisedBy(err error) (string, bool) {
	var progErr *ProgramError
	if errors.As(err, &progErr) {
		return progErr.Program, true
	}
	return "", false
}
