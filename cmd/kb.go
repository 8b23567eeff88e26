package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/compliance-cli/internal/session"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Manage the regulatory knowledge base",
}

var kbLoadCmd = &cobra.Command{
	Use:   "load <document.txt>",
	Short: "Load a regulatory document into the knowledge base",
	Long:  "Replaces the active knowledge base with the given plain-text document. With the retrieval strategy the text is chunked and embedded; with the direct strategy it is kept verbatim or summarized on demand.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "read document")
		}

		e, err := initSession(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		name := filepath.Base(args[0])
		result := e.Session.LoadDocument(cmd.Context(), string(text), name)
		if result.Status == session.StatusError {
			return eris.New(result.Error)
		}

		fmt.Printf("Loaded %q (%d chars, %d chunks)\n",
			result.Info.DocumentName, result.Info.DocumentLength, result.Info.ChunksCreated)
		if result.Info.WillSummarize {
			fmt.Println("Document exceeds the context limit; a summary will be generated on first use.")
		}
		return nil
	},
}

var kbClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Evict the active knowledge base",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initSession(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		e.Session.Store().Clear()
		fmt.Println("Knowledge base cleared.")
		return nil
	},
}

var kbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether a knowledge base is loaded",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initSession(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		if e.Session.Store().HasDocuments() {
			fmt.Println("Knowledge base loaded.")
		} else {
			fmt.Println("No knowledge base loaded.")
		}
		return nil
	},
}

func init() {
	kbCmd.AddCommand(kbLoadCmd, kbClearCmd, kbStatusCmd)
	rootCmd.AddCommand(kbCmd)
}
