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

package gatekeeper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/gatekeeper/counter"
	"github.com/blinklabs-io/gatekeeper/database"
	"github.com/blinklabs-io/gatekeeper/event"
	"github.com/blinklabs-io/gatekeeper/ledger"
	"github.com/blinklabs-io/gatekeeper/whitelist"
)

const defaultShutdownTimeout = 30 * time.Second

var ErrNodeNotStarted = errors.New("node not started")

// Node hosts the whitelist and counter programs on a ledger runtime
type Node struct {
	eventBus      *event.EventBus
	db            *database.Database
	runtime       *ledger.Runtime
	shutdownFuncs []func(context.Context) error
	config        Config
	startOnce     sync.Once
	shutdownOnce  sync.Once
	mu            sync.RWMutex
}

func New(cfg Config) (*Node, error) {
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	n := &Node{
		config:   cfg,
		eventBus: event.NewEventBus(cfg.promRegistry, cfg.logger),
	}
	return n, nil
}

// Start opens the database and brings up the runtime
func (n *Node) Start() error {
	err := errors.New("node already started")
	n.startOnce.Do(func() {
		err = n.start()
	})
	return err
}

func (n *Node) start() error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(); err != nil {
			return err
		}
	}
	// Load database
	db, err := database.New(
		&database.Config{
			DataDir:        n.config.dataDir,
			BlobPlugin:     n.config.blobPlugin,
			MetadataPlugin: n.config.metadataPlugin,
			Logger:         n.config.logger,
			PromRegistry:   n.config.promRegistry,
		},
	)
	if err != nil {
		var dbErr database.CommitTimestampError
		if errors.As(err, &dbErr) {
			n.config.logger.Error(
				"database commit timestamps disagree, needs recovery",
				"component", "node",
				"error", err,
			)
		}
		if db != nil {
			_ = db.Close()
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	// Load runtime
	rt, err := ledger.NewRuntime(
		ledger.RuntimeConfig{
			Database:       n.db,
			EventBus:       n.eventBus,
			Logger:         n.config.logger,
			PromRegistry:   n.config.promRegistry,
			DisableJournal: n.config.disableJournal,
			AsyncEvents:    n.config.asyncEvents,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create runtime: %w", err)
	}
	for _, prog := range []ledger.Program{whitelist.New(), counter.New()} {
		if err := rt.Register(prog); err != nil {
			return fmt.Errorf("failed to register program: %w", err)
		}
	}
	n.mu.Lock()
	n.runtime = rt
	n.mu.Unlock()
	n.config.logger.Info(
		"node started",
		"component", "node",
		"data_dir", n.config.dataDir,
	)
	return nil
}

// Runtime returns the ledger runtime, or nil until Start has completed
func (n *Node) Runtime() *ledger.Runtime {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.runtime
}

func (n *Node) Database() *database.Database {
	return n.db
}

func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

// Execute runs the instructions as a single transaction signed by signers
func (n *Node) Execute(
	ctx context.Context,
	signers []ledger.Address,
	instructions ...ledger.Instruction,
) (*ledger.Receipt, error) {
	rt := n.Runtime()
	if rt == nil {
		return nil, ErrNodeNotStarted
	}
	return rt.Execute(
		ctx,
		ledger.NewTransaction(signers, instructions...),
	)
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	shutdownTimeout := defaultShutdownTimeout
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error
	n.config.logger.Debug("starting graceful shutdown", "component", "node")

	if n.eventBus != nil {
		n.eventBus.Stop()
	}
	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}
	// Call registered shutdown functions
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	n.config.logger.Debug("graceful shutdown complete", "component", "node")
	return err
}
