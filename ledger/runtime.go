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
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/blinklabs-io/gatekeeper/database"
	"github.com/blinklabs-io/gatekeeper/database/models"
	"github.com/blinklabs-io/gatekeeper/event"
	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/blinklabs-io/gatekeeper/ledger"

type RuntimeConfig struct {
	Database     *database.Database
	EventBus     *event.EventBus
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	// DisableJournal skips writing a journal entry for each transaction
	DisableJournal bool
	// AsyncEvents hands committed events to the event bus worker pool
	// instead of delivering them before Execute returns. Delivery order is
	// not preserved and events are dropped when the queue is full
	AsyncEvents bool
}

// Runtime executes transactions against the account store. Each transaction
// runs in a single database transaction, so all of its effects, including
// those of cross-program invocations, are committed or discarded together
type Runtime struct {
	config   RuntimeConfig
	db       *database.Database
	logger   *slog.Logger
	metrics  *runtimeMetrics
	tracer   trace.Tracer
	locks    *accountLocks
	programs map[Address]Program
	mu       sync.RWMutex
}

func NewRuntime(cfg RuntimeConfig) (*Runtime, error) {
	if cfg.Database == nil {
		return nil, errors.New("a database is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	r := &Runtime{
		config:   cfg,
		db:       cfg.Database,
		logger:   cfg.Logger,
		tracer:   otel.Tracer(tracerName),
		locks:    newAccountLocks(),
		programs: make(map[Address]Program),
	}
	r.initMetrics(cfg.PromRegistry)
	return r, nil
}

// Register makes a program available for invocation
func (r *Runtime) Register(prog Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := prog.ID()
	if existing, ok := r.programs[id]; ok {
		return fmt.Errorf("%w: %s", ErrProgramRegistered, existing.Name())
	}
	r.programs[id] = prog
	r.logger.Debug(
		"registered program",
		"component", "ledger",
		"program", prog.Name(),
		"id", id.String(),
	)
	return nil
}

func (r *Runtime) program(id Address) (Program, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prog, ok := r.programs[id]
	return prog, ok
}

func (r *Runtime) programName(id Address) string {
	if prog, ok := r.program(id); ok {
		return prog.Name()
	}
	return id.String()
}

// Programs returns the registered programs ordered by name
func (r *Runtime) Programs() []Program {
	r.mu.RLock()
	ret := make([]Program, 0, len(r.programs))
	for _, prog := range r.programs {
		ret = append(ret, prog)
	}
	r.mu.RUnlock()
	slices.SortFunc(ret, func(a, b Program) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return ret
}

func (r *Runtime) Database() *database.Database {
	return r.db
}

// GetAccount returns the committed state of an account
func (r *Runtime) GetAccount(addr Address) (*Account, error) {
	tmpAccount, err := r.db.GetAccount(addr.Bytes(), nil)
	if err != nil {
		if errors.Is(err, database.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
		}
		return nil, err
	}
	return accountFromModel(addr, tmpAccount)
}

// Accounts returns the committed accounts owned by a program, in address
// order
func (r *Runtime) Accounts(owner Address) ([]Account, error) {
	var ret []Account
	err := r.db.ForEachAccount(
		nil,
		func(address []byte, tmpAccount *models.Account) error {
			addr, err := NewAddress(address)
			if err != nil {
				return err
			}
			account, err := accountFromModel(addr, tmpAccount)
			if err != nil {
				return err
			}
			if account.Owner == owner {
				ret = append(ret, *account)
			}
			return nil
		},
	)
	return ret, err
}

func accountFromModel(addr Address, tmpAccount *models.Account) (*Account, error) {
	owner, err := NewAddress(tmpAccount.Owner)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", addr, err)
	}
	return &Account{
		Address: addr,
		Owner:   owner,
		Data:    tmpAccount.Data,
	}, nil
}

// Execute runs a transaction and commits its effects. On failure nothing is
// committed and no events are published
func (r *Runtime) Execute(ctx context.Context, tx Transaction) (*Receipt, error) {
	return r.execute(ctx, tx, true)
}

// Simulate runs a transaction and discards its effects. The returned receipt
// lists the events the transaction would have emitted
func (r *Runtime) Simulate(ctx context.Context, tx Transaction) (*Receipt, error) {
	return r.execute(ctx, tx, false)
}

func (r *Runtime) execute(
	ctx context.Context,
	tx Transaction,
	commit bool,
) (*Receipt, error) {
	start := time.Now()
	receipt := &Receipt{ID: uuid.New()}
	ctx, span := r.tracer.Start(
		ctx,
		"ledger.execute",
		trace.WithAttributes(
			attribute.String("tx.id", receipt.ID.String()),
			attribute.Int("tx.instructions", len(tx.Instructions)),
			attribute.Bool("tx.simulate", !commit),
		),
	)
	defer span.End()
	err := r.run(ctx, tx, receipt, commit)
	r.metrics.recordTransaction(err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Debug(
			"transaction failed",
			"component", "ledger",
			"tx_id", receipt.ID.String(),
			"simulate", !commit,
			"error", err,
		)
		return nil, err
	}
	if commit && r.config.EventBus != nil {
		r.publish(receipt.Events)
	}
	return receipt, nil
}

func (r *Runtime) publish(events []event.Event) {
	for _, evt := range events {
		if !r.config.AsyncEvents {
			r.config.EventBus.Publish(evt)
			continue
		}
		if !r.config.EventBus.PublishAsync(evt) {
			r.logger.Warn(
				"event not published",
				"component", "ledger",
				"type", string(evt.Type),
			)
		}
	}
}

func (r *Runtime) validate(tx Transaction) error {
	if len(tx.Instructions) == 0 {
		return ErrEmptyTransaction
	}
	signers := make(map[Address]struct{}, len(tx.Signers))
	for _, signer := range tx.Signers {
		// Derived addresses have no private key
		if !IsOnCurve(signer) {
			return fmt.Errorf(
				"%w: %s is not a public key",
				ErrMissingSignature,
				signer,
			)
		}
		signers[signer] = struct{}{}
	}
	for i, ix := range tx.Instructions {
		if _, ok := r.program(ix.ProgramID); !ok {
			return fmt.Errorf(
				"instruction %d: %w: %s",
				i,
				ErrUnknownProgram,
				ix.ProgramID,
			)
		}
		for _, meta := range ix.Accounts {
			if !meta.Signer {
				continue
			}
			if _, ok := signers[meta.Address]; !ok {
				return fmt.Errorf(
					"instruction %d: %w: %s",
					i,
					ErrMissingSignature,
					meta.Address,
				)
			}
		}
	}
	return nil
}

func (r *Runtime) run(
	ctx context.Context,
	tx Transaction,
	receipt *Receipt,
	commit bool,
) error {
	if err := r.validate(tx); err != nil {
		return err
	}
	lockStart := time.Now()
	release := r.locks.acquire(lockSet(tx))
	defer release()
	r.metrics.lockWait.Observe(time.Since(lockStart).Seconds())
	exec := &execution{
		runtime: r,
		ctx:     ctx,
	}
	fn := func(txn *database.Txn) error {
		exec.txn = txn
		for i, ix := range tx.Instructions {
			if err := ctx.Err(); err != nil {
				return err
			}
			prog, _ := r.program(ix.ProgramID)
			if err := exec.invoke(prog, ix.Accounts, ix.Data, 1); err != nil {
				return fmt.Errorf("instruction %d: %w", i, err)
			}
		}
		receipt.Events = exec.events
		if !commit || r.config.DisableJournal {
			return nil
		}
		return r.db.AddJournalEntry(r.journalEntry(tx, receipt), txn)
	}
	txn := database.NewTxn(r.db, true)
	if !commit {
		defer txn.Release()
		return fn(txn)
	}
	return txn.Do(fn)
}

func (r *Runtime) journalEntry(tx Transaction, receipt *Receipt) *models.JournalEntry {
	signers := make([]string, 0, len(tx.Signers))
	for _, signer := range tx.Signers {
		signers = append(signers, signer.String())
	}
	var programs []string
	for _, ix := range tx.Instructions {
		name := r.programName(ix.ProgramID)
		if !slices.Contains(programs, name) {
			programs = append(programs, name)
		}
	}
	entry := &models.JournalEntry{
		TxID:         receipt.ID.String(),
		CreatedAt:    time.Now(),
		Signers:      strings.Join(signers, ","),
		Programs:     strings.Join(programs, ","),
		Instructions: uint(len(tx.Instructions)), // #nosec G115
	}
	for _, evt := range receipt.Events {
		data, err := cbor.Encode(evt.Data)
		if err != nil {
			r.logger.Warn(
				"failed to encode event for journal",
				"component", "ledger",
				"type", string(evt.Type),
				"error", err,
			)
		}
		entry.Events = append(
			entry.Events,
			models.JournalEvent{
				Type: string(evt.Type),
				Data: data,
			},
		)
	}
	return entry
}

// execution tracks the state of a single transaction across invocations
type execution struct {
	runtime *Runtime
	ctx     context.Context
	txn     *database.Txn
	events  []event.Event
	stack   []Address
}

func (e *execution) invoke(
	prog Program,
	accounts []AccountMeta,
	data []byte,
	depth int,
) error {
	ctx, span := e.runtime.tracer.Start(
		e.ctx,
		"ledger.invoke",
		trace.WithAttributes(
			attribute.String("program", prog.Name()),
			attribute.Int("depth", depth),
		),
	)
	defer span.End()
	e.stack = append(e.stack, prog.ID())
	defer func() {
		e.stack = e.stack[:len(e.stack)-1]
	}()
	ictx := &InvocationContext{
		exec:     e,
		ctx:      ctx,
		program:  prog,
		accounts: accounts,
		depth:    depth,
	}
	err := prog.Process(ictx, data)
	e.runtime.metrics.recordInvocation(prog.Name(), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		// Anything not already attributed is attributed to this program
		var progErr *ProgramError
		if !errors.As(err, &progErr) {
			err = &ProgramError{
				Err:       err,
				Program:   prog.Name(),
				ProgramID: prog.ID(),
			}
		}
	}
	return err
}

func (e *execution) onStack(id Address) bool {
	return slices.Contains(e.stack, id)
}
