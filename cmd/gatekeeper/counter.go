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
	"github.com/spf13/cobra"
)

func counterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Manage whitelist-gated counters",
	}
	addDryRunFlag(cmd)
	cmd.AddCommand(
		counterCreateCommand(),
		counterBindCommand(),
		counterAccessCommand(
			"grant",
			"Add a wallet to the counter's whitelist",
			counter.GrantAccess,
		),
		counterAccessCommand(
			"retract",
			"Remove a wallet from the counter's whitelist",
			counter.RetractAccess,
		),
		counterUpdateCommand(),
		counterResetCommand(),
		counterShowCommand(),
	)
	return cmd
}

// authorityCommand builds a command whose only account argument is the
// signing counter authority
func authorityCommand(
	use string,
	short string,
	build func(authority ledger.Address) (ledger.Instruction, error),
) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			authority, err := addressFlag(cmd, "authority")
			if err != nil {
				return err
			}
			ix, err := build(authority)
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *gatekeeper.Node) error {
				return submit(cmd, n, []ledger.Address{authority}, ix)
			})
		},
	}
	cmd.Flags().String("authority", "", "counter authority")
	requireFlags(cmd, "authority")
	return cmd
}

func counterCreateCommand() *cobra.Command {
	return authorityCommand(
		"create",
		"Create the counter owned by an authority",
		counter.CreateCounter,
	)
}

func counterResetCommand() *cobra.Command {
	return authorityCommand(
		"reset",
		"Unbind the whitelist from a counter",
		counter.ResetWhitelist,
	)
}

func counterBindCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bind",
		Short: "Create a whitelist and bind it to a counter",
		RunE: func(cmd *cobra.Command, _ []string) error {
			authority, err := addressFlag(cmd, "authority")
			if err != nil {
				return err
			}
			list, err := newAddressFlag(cmd, "whitelist")
			if err != nil {
				return err
			}
			ix, err := counter.CreateCounterWhitelist(authority, list)
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *gatekeeper.Node) error {
				if err := submit(
					cmd,
					n,
					[]ledger.Address{authority, list},
					ix,
				); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "whitelist: %s\n", list)
				return nil
			})
		},
	}
	cmd.Flags().String("authority", "", "counter authority")
	cmd.Flags().
		String("whitelist", "", "address for the new whitelist (generated when unset)")
	requireFlags(cmd, "authority")
	return cmd
}

func counterAccessCommand(
	use string,
	short string,
	build func(authority, list, member ledger.Address) (ledger.Instruction, error),
) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			authority, err := addressFlag(cmd, "authority")
			if err != nil {
				return err
			}
			list, err := addressFlag(cmd, "whitelist")
			if err != nil {
				return err
			}
			member, err := addressFlag(cmd, "member")
			if err != nil {
				return err
			}
			ix, err := build(authority, list, member)
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *gatekeeper.Node) error {
				return submit(cmd, n, []ledger.Address{authority}, ix)
			})
		},
	}
	cmd.Flags().String("authority", "", "counter authority")
	cmd.Flags().String("whitelist", "", "whitelist bound to the counter")
	cmd.Flags().String("member", "", "wallet address")
	requireFlags(cmd, "authority", "whitelist", "member")
	return cmd
}

func counterUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Increment a counter as a whitelisted wallet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			member, err := addressFlag(cmd, "member")
			if err != nil {
				return err
			}
			authority, err := addressFlag(cmd, "authority")
			if err != nil {
				return err
			}
			list, err := addressFlag(cmd, "whitelist")
			if err != nil {
				return err
			}
			ix, err := counter.UpdateCounter(member, authority, list)
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *gatekeeper.Node) error {
				return submit(cmd, n, []ledger.Address{member}, ix)
			})
		},
	}
	cmd.Flags().String("member", "", "signing wallet")
	cmd.Flags().String("authority", "", "counter authority")
	cmd.Flags().String("whitelist", "", "whitelist bound to the counter")
	requireFlags(cmd, "member", "authority", "whitelist")
	return cmd
}

func counterShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the counter owned by an authority",
		RunE: func(cmd *cobra.Command, _ []string) error {
			authority, err := addressFlag(cmd, "authority")
			if err != nil {
				return err
			}
			addr, _, err := counter.CounterAddress(authority)
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *gatekeeper.Node) error {
				c, err := counter.GetCounter(n.Runtime(), addr)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "counter:   %s\n", addr)
				fmt.Fprintf(out, "authority: %s\n", c.Authority)
				if c.Bound() {
					fmt.Fprintf(out, "whitelist: %s\n", c.Whitelist)
				} else {
					fmt.Fprintf(out, "whitelist: (unbound)\n")
				}
				fmt.Fprintf(out, "count:     %d\n", c.Count)
				return nil
			})
		},
	}
	cmd.Flags().String("authority", "", "counter authority")
	requireFlags(cmd, "authority")
	return cmd
}
