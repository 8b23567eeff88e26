package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/compliance-cli/internal/session"
)

var askDocument string

var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Ask a compliance question",
	Long:  "Answers a compliance question with the generation model, grounded in the loaded knowledge base. With --document the given file is analyzed instead of answering a question.",
	Args:  cobra.MinimumNArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initSession(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		if askDocument != "" {
			text, err := os.ReadFile(askDocument)
			if err != nil {
				return eris.Wrap(err, "read document")
			}
			result := e.Session.AnalyzeDocument(cmd.Context(), string(text))
			if result.Status == session.StatusError {
				return eris.New(result.Error)
			}
			fmt.Println(result.Analysis)
			return nil
		}

		if len(args) == 0 {
			return eris.New("provide a question or --document")
		}

		result := e.Session.Ask(cmd.Context(), strings.Join(args, " "))
		if result.Status == session.StatusError {
			return eris.New(result.Error)
		}
		fmt.Println(result.Response)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askDocument, "document", "", "analyze a document instead of answering a question")
	rootCmd.AddCommand(askCmd)
}
