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
	"fmt"

	"github.com/blinklabs-io/gatekeeper"
	"github.com/blinklabs-io/gatekeeper/counter"
	"github.com/blinklabs-io/gatekeeper/ledger"
	"github.com/blinklabs-io/gatekeeper/whitelist"
	"github.com/spf13/cobra"
)

func accountsCommand() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List the accounts owned by a program",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withNode(cmd, func(n *gatekeeper.Node) error {
				out := cmd.OutOrStdout()
				var owners []ledger.Program
				for _, prog := range n.Runtime().Programs() {
					if owner == "" || owner == prog.Name() {
						owners = append(owners, prog)
					}
				}
				if len(owners) == 0 {
					return fmt.Errorf("unknown program %q", owner)
				}
				for _, prog := range owners {
					accounts, err := n.Runtime().Accounts(prog.ID())
					if err != nil {
						return err
					}
					for _, account := range accounts {
						fmt.Fprintf(
							out,
							"%s %s %s\n",
							prog.Name(),
							account.Address,
							describeAccount(account),
						)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().
		StringVar(&owner, "program", "", "only list accounts owned by this program")
	return cmd
}

func describeAccount(account ledger.Account) string {
	switch account.Owner {
	case whitelist.ProgramID:
		if cfg, err := whitelist.DecodeConfig(account.Data); err == nil {
			return fmt.Sprintf(
				"config authority=%s members=%d",
				cfg.Authority,
				cfg.MemberCount,
			)
		}
		if _, err := whitelist.DecodeMember(account.Data); err == nil {
			return "member"
		}
	case counter.ProgramID:
		if c, err := counter.DecodeCounter(account.Data); err == nil {
			return fmt.Sprintf(
				"counter authority=%s whitelist=%s count=%d",
				c.Authority,
				c.Whitelist,
				c.Count,
			)
		}
	}
	return fmt.Sprintf("unknown (%d bytes)", len(account.Data))
}

func addressCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Address utilities",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "new",
			Short: "Generate a new wallet address",
			RunE: func(cmd *cobra.Command, _ []string) error {
				addr, err := ledger.NewRandomAddress()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), addr)
				return nil
			},
		},
		&cobra.Command{
			Use:   "programs",
			Short: "Show the addresses of the built-in programs",
			Run: func(cmd *cobra.Command, _ []string) {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s %s\n", whitelist.ProgramName, whitelist.ProgramID)
				fmt.Fprintf(out, "%s %s\n", counter.ProgramName, counter.ProgramID)
			},
		},
	)
	return cmd
}
