package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/askdb/askdb/internal/assistant"
	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/observability"
	"github.com/askdb/askdb/internal/sqlgen"
)

func newAskCmd() *cobra.Command {
	var showSQL bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question from the terminal",
		Long: "Ask answers a single question and exits. Without arguments it " +
			"starts an interactive session that keeps the conversation history.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromEnv("askdb-cli")
			if err != nil {
				return err
			}
			// CLI output goes to stdout; keep logs out of the way.
			logger := observability.NewLogger(cfg, os.Stderr)

			db, chatAssistant, err := buildAssistant(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if len(args) > 0 {
				response := chatAssistant.Answer(cmd.Context(), strings.Join(args, " "), nil)
				printResponse(cmd.OutOrStdout(), response, showSQL)
				return nil
			}
			return runInteractive(cmd, chatAssistant, showSQL)
		},
	}

	cmd.Flags().BoolVar(&showSQL, "show-sql", false, "print the generated SQL and explanation")
	return cmd
}

func runInteractive(cmd *cobra.Command, chatAssistant *assistant.Assistant, showSQL bool) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	var history []sqlgen.Turn

	fmt.Fprintln(out, "Ask about the Northwind data. Type \"exit\" to quit.")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if message == "exit" || message == "quit" {
			return nil
		}

		response := chatAssistant.Answer(cmd.Context(), message, history)
		printResponse(out, response, showSQL)
		history = append(history, sqlgen.Turn{User: message, Bot: response.Reply})
	}
}

func printResponse(out io.Writer, response assistant.Response, showSQL bool) {
	if showSQL && response.SQLQuery != "" {
		fmt.Fprintf(out, "sql: %s\n", response.SQLQuery)
		if response.Explanation != "" {
			fmt.Fprintf(out, "explanation: %s\n", response.Explanation)
		}
	}
	fmt.Fprintln(out, response.Reply)
}
