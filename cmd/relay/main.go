// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Bilingual clinician and patient consultation relay",
	Long: `relay listens to one party of a consultation, translates what was said
and narrates it to the other party, keeping an ordered transcript that is
analyzed once the consultation ends.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the operator HTTP and websocket server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the history tables",
	RunE:  runMigrate,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect stored consultations",
}

var historyFindCmd = &cobra.Command{
	Use:   "find <identifier>",
	Short: "List the consultations of a patient identifier",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryFind,
}

var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Issue an operator bearer token",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

func init() {
	historyCmd.AddCommand(historyFindCmd)
	tokenCmd.Flags().String("role", "clinician", "Role claim of the token")
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (default 12h)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
