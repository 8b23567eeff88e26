// Package report renders scan results for human consumption.
package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/compliance-cli/internal/dataset"
	"github.com/sells-group/compliance-cli/internal/model"
)

// printer groups monetary magnitudes with thousands separators.
var printer = message.NewPrinter(language.English)

// Render produces a plain-text compliance report from a quality report
// and a violation set.
func Render(quality dataset.QualityReport, vs *model.ViolationSet) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Compliance Scan Report\n")
	fmt.Fprintf(&b, "======================\n\n")
	fmt.Fprintf(&b, "Records analyzed: %d\n", quality.TotalRecords)
	fmt.Fprintf(&b, "Date range:       %s to %s (%d days)\n",
		quality.DateRange.Start, quality.DateRange.End, quality.DateRange.Days)
	fmt.Fprintf(&b, "Compliance score: %d/100\n", vs.Summary.ComplianceScore)
	fmt.Fprintf(&b, "Estimated penalty exposure: ₹%s\n", printer.Sprintf("%d", vs.Summary.EstimatedPenalty))
	if vs.Summary.DropViolationSeen {
		fmt.Fprintf(&b, "Call drop violation detected: regulatory priority\n")
	}
	b.WriteString("\n")

	writeTier(&b, "HIGH RISK", vs.High)
	writeTier(&b, "MEDIUM RISK", vs.Medium)
	writeTier(&b, "LOW RISK", vs.Low)

	if len(quality.Issues) > 0 {
		b.WriteString("Data quality issues:\n")
		for _, issue := range quality.Issues {
			fmt.Fprintf(&b, "  - %s\n", issue)
		}
	}

	return b.String()
}

func writeTier(b *strings.Builder, label string, findings []model.Violation) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintf(b, "%s (%d):\n", label, len(findings))
	for _, v := range findings {
		fmt.Fprintf(b, "  - %s: %s\n", v.Type, v.Description)
		if v.PenaltyRange != "" {
			fmt.Fprintf(b, "    Penalty: %s\n", v.PenaltyRange)
		}
		if v.RegulationRef != "" {
			fmt.Fprintf(b, "    Ref: %s\n", v.RegulationRef)
		}
	}
	b.WriteString("\n")
}
