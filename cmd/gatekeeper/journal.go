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
	"encoding/hex"
	"fmt"
	"io"

	"github.com/blinklabs-io/gatekeeper"
	"github.com/blinklabs-io/gatekeeper/database/models"
	"github.com/spf13/cobra"
)

func journalCommand() *cobra.Command {
	var limit int
	var txId string
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show committed transactions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withNode(cmd, func(n *gatekeeper.Node) error {
				out := cmd.OutOrStdout()
				if txId != "" {
					entry, err := n.Database().JournalEntry(txId, nil)
					if err != nil {
						return err
					}
					if entry == nil {
						return fmt.Errorf("no journal entry for transaction %s", txId)
					}
					printJournalEntry(out, entry)
					return nil
				}
				entries, err := n.Database().JournalEntries(limit, nil)
				if err != nil {
					return err
				}
				for i := range entries {
					printJournalEntry(out, &entries[i])
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to show, 0 for all")
	cmd.Flags().StringVar(&txId, "tx", "", "show a single transaction")
	return cmd
}

func printJournalEntry(w io.Writer, entry *models.JournalEntry) {
	fmt.Fprintf(
		w,
		"%s %s programs=%s instructions=%d signers=%s\n",
		entry.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		entry.TxID,
		entry.Programs,
		entry.Instructions,
		entry.Signers,
	)
	for _, evt := range entry.Events {
		fmt.Fprintf(w, "  %s %s\n", evt.Type, hex.EncodeToString(evt.Data))
	}
}
