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
	"github.com/blinklabs-io/gatekeeper/ledger"
	"github.com/blinklabs-io/gatekeeper/whitelist"
	"github.com/spf13/cobra"
)

func whitelistCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whitelist",
		Short: "Manage whitelists",
	}
	addDryRunFlag(cmd)
	cmd.AddCommand(
		whitelistCreateCommand(),
		whitelistMemberCommand(
			"add",
			"Add a wallet to a whitelist",
			whitelist.AddWallet,
		),
		whitelistMemberCommand(
			"remove",
			"Remove a wallet from a whitelist",
			whitelist.RemoveWallet,
		),
		whitelistCheckCommand(),
		whitelistSetAuthorityCommand(),
		whitelistShowCommand(),
	)
	return cmd
}

func whitelistCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a whitelist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			authority, err := addressFlag(cmd, "authority")
			if err != nil {
				return err
			}
			list, err := newAddressFlag(cmd, "whitelist")
			if err != nil {
				return err
			}
			ix, err := whitelist.CreateWhitelist(authority, list)
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
	cmd.Flags().String("authority", "", "address allowed to manage the whitelist")
	cmd.Flags().
		String("whitelist", "", "address for the new whitelist (generated when unset)")
	requireFlags(cmd, "authority")
	return cmd
}

func whitelistMemberCommand(
	use string,
	short string,
	build func(config, authority, member ledger.Address) (ledger.Instruction, error),
) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := addressFlag(cmd, "whitelist")
			if err != nil {
				return err
			}
			authority, err := addressFlag(cmd, "authority")
			if err != nil {
				return err
			}
			member, err := addressFlag(cmd, "member")
			if err != nil {
				return err
			}
			ix, err := build(list, authority, member)
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *gatekeeper.Node) error {
				return submit(cmd, n, []ledger.Address{authority}, ix)
			})
		},
	}
	cmd.Flags().String("whitelist", "", "whitelist address")
	cmd.Flags().String("authority", "", "whitelist authority")
	cmd.Flags().String("member", "", "wallet address")
	requireFlags(cmd, "whitelist", "authority", "member")
	return cmd
}

func whitelistCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether a wallet belongs to a whitelist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := addressFlag(cmd, "whitelist")
			if err != nil {
				return err
			}
			member, err := addressFlag(cmd, "member")
			if err != nil {
				return err
			}
			ix, err := whitelist.CheckWallet(list, member)
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *gatekeeper.Node) error {
				// Membership checks never need to be committed
				_, err := n.Runtime().Simulate(
					cmd.Context(),
					ledger.NewTransaction(nil, ix),
				)
				if err != nil {
					return err
				}
				fmt.Fprintf(
					cmd.OutOrStdout(),
					"%s is a member of %s\n",
					member,
					list,
				)
				return nil
			})
		},
	}
	cmd.Flags().String("whitelist", "", "whitelist address")
	cmd.Flags().String("member", "", "wallet address")
	requireFlags(cmd, "whitelist", "member")
	return cmd
}

func whitelistSetAuthorityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-authority",
		Short: "Hand a whitelist to a new authority",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := addressFlag(cmd, "whitelist")
			if err != nil {
				return err
			}
			authority, err := addressFlag(cmd, "authority")
			if err != nil {
				return err
			}
			newAuthority, err := addressFlag(cmd, "new-authority")
			if err != nil {
				return err
			}
			ix, err := whitelist.SetAuthority(list, authority, newAuthority)
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *gatekeeper.Node) error {
				return submit(cmd, n, []ledger.Address{authority}, ix)
			})
		},
	}
	cmd.Flags().String("whitelist", "", "whitelist address")
	cmd.Flags().String("authority", "", "current whitelist authority")
	cmd.Flags().String("new-authority", "", "new whitelist authority")
	requireFlags(cmd, "whitelist", "authority", "new-authority")
	return cmd
}

func whitelistShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the state of a whitelist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := addressFlag(cmd, "whitelist")
			if err != nil {
				return err
			}
			member, err := addressFlag(cmd, "member")
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *gatekeeper.Node) error {
				cfg, err := whitelist.GetConfig(n.Runtime(), list)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "whitelist:    %s\n", list)
				fmt.Fprintf(out, "authority:    %s\n", cfg.Authority)
				fmt.Fprintf(out, "member count: %d\n", cfg.MemberCount)
				if member.IsDefault() {
					return nil
				}
				ok, err := whitelist.IsMember(n.Runtime(), list, member)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "member %s: %t\n", member, ok)
				return nil
			})
		},
	}
	cmd.Flags().String("whitelist", "", "whitelist address")
	cmd.Flags().String("member", "", "also report membership of this wallet")
	requireFlags(cmd, "whitelist")
	return cmd
}
