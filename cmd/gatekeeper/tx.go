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

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/gatekeeper"
	"github.com/blinklabs-io/gatekeeper/internal/config"
	"github.com/blinklabs-io/gatekeeper/internal/node"
	"github.com/blinklabs-io/gatekeeper/ledger"
	"github.com/spf13/cobra"
)

const dryRunFlag = "dry-run"

// withNode opens a node over the configured store for the duration of fn
func withNode(cmd *cobra.Command, fn func(*gatekeeper.Node) error) error {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return errors.New("no config found in context")
	}
	logger := commandRun()
	n, err := node.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := n.Stop(); err != nil {
			logger.Error(
				"shutdown errors occurred",
				"component", programName,
				"error", err,
			)
		}
	}()
	return fn(n)
}

// addressFlag parses a bech32 or hex address from a flag. An empty value
// yields the default address
func addressFlag(cmd *cobra.Command, name string) (ledger.Address, error) {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		return ledger.Address{}, err
	}
	if val == "" {
		return ledger.DefaultAddress, nil
	}
	addr, err := ledger.AddressFromString(val)
	if err != nil {
		return ledger.Address{}, fmt.Errorf("--%s: %w", name, err)
	}
	return addr, nil
}

// newAddressFlag is addressFlag, generating a fresh address when the flag is
// unset
func newAddressFlag(cmd *cobra.Command, name string) (ledger.Address, error) {
	addr, err := addressFlag(cmd, name)
	if err != nil {
		return ledger.Address{}, err
	}
	if addr.IsDefault() {
		return ledger.NewRandomAddress()
	}
	return addr, nil
}

func addDryRunFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().
		Bool(dryRunFlag, false, "simulate the transaction without committing it")
}

// submit runs the instruction signed by signers, or simulates it with
// --dry-run, and prints the receipt
func submit(
	cmd *cobra.Command,
	n *gatekeeper.Node,
	signers []ledger.Address,
	instruction ledger.Instruction,
) error {
	dryRun, err := cmd.Flags().GetBool(dryRunFlag)
	if err != nil {
		return err
	}
	tx := ledger.NewTransaction(signers, instruction)
	var receipt *ledger.Receipt
	if dryRun {
		receipt, err = n.Runtime().Simulate(cmd.Context(), tx)
	} else {
		receipt, err = n.Runtime().Execute(cmd.Context(), tx)
	}
	if err != nil {
		return err
	}
	printReceipt(cmd.OutOrStdout(), receipt, dryRun)
	return nil
}

func printReceipt(w io.Writer, receipt *ledger.Receipt, dryRun bool) {
	if dryRun {
		fmt.Fprintf(w, "simulated: %s\n", receipt.ID)
	} else {
		fmt.Fprintf(w, "committed: %s\n", receipt.ID)
	}
	for _, evt := range receipt.Events {
		fmt.Fprintf(w, "  %s %+v\n", evt.Type, evt.Data)
	}
}

func requireFlags(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			slog.Error(err.Error())
		}
	}
}
