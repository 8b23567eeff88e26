package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/compliance-cli/internal/report"
)

var (
	analyzeFormat  string
	analyzeExplain bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <records.xlsx|records.csv>",
	Short: "Scan call records for compliance violations",
	Long:  "Runs the full detector battery over a call-detail-record export, reporting tiered findings, a compliance score and estimated penalty exposure. With --explain the findings are also summarized by the generation model.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDataset(args[0])
		if err != nil {
			return err
		}

		e, err := initSession(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		result := e.Session.AnalyzeDataset(cmd.Context(), d, analyzeExplain)

		switch analyzeFormat {
		case "json":
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return eris.Wrap(err, "marshal result")
			}
			fmt.Println(string(out))
		case "yaml":
			out, err := yaml.Marshal(result)
			if err != nil {
				return eris.Wrap(err, "marshal result")
			}
			fmt.Print(string(out))
		case "text":
			fmt.Print(report.Render(result.Quality, result.Violations))
			if result.Explanation != "" {
				fmt.Printf("Model assessment:\n%s\n", result.Explanation)
			}
		default:
			return eris.Errorf("unknown format %q (want text, json or yaml)", analyzeFormat)
		}

		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "text", "output format: text, json or yaml")
	analyzeCmd.Flags().BoolVar(&analyzeExplain, "explain", false, "ask the generation model to explain the findings")
	rootCmd.AddCommand(analyzeCmd)
}
