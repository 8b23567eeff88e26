// Package prompt renders violation findings and retrieved context into
// bounded instructions for the generation model. Pure formatting: no
// I/O, no model calls.
package prompt

import (
	"fmt"
	"strings"

	"github.com/sells-group/compliance-cli/internal/model"
)

// maxListedFindings caps how many findings appear in the instruction.
const maxListedFindings = 3

// responseWordLimit is the hard ceiling embedded into the instruction.
const responseWordLimit = 150

// ComposeAnalysis renders a ViolationSet (and optional retrieved
// context) into a fixed four-section instruction. Findings are listed in
// set iteration order: high tier first, then medium, then low.
func ComposeAnalysis(vs *model.ViolationSet, context string) string {
	var bullets []string
	for _, v := range vs.All() {
		bullets = append(bullets, fmt.Sprintf("• %s: %s", v.Type, v.Description))
		if len(bullets) == maxListedFindings {
			break
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "STRICT LIMIT: Respond in EXACTLY %d words or less. No more.\n\n", responseWordLimit)

	if context != "" {
		fmt.Fprintf(&b, "Regulatory Context:\n%s\n\n", context)
	}

	b.WriteString("TRAI Violations Found:\n")
	b.WriteString(strings.Join(bullets, "\n"))
	b.WriteString("\n\n")

	b.WriteString(`FORMAT (use exactly this structure):
**Penalties**: [List max 3 violations with INR amounts]
**Legal Basis**: [1 sentence - TRAI regulation reference]
**Actions**: [3 bullet points max 5 words each]
**Risk**: [1 sentence assessment]

`)
	fmt.Fprintf(&b, "STOP at %d words. Do not exceed this limit under any circumstances.", responseWordLimit)

	return b.String()
}

// ComposeChat renders a compliance question, optionally grounded in
// retrieved or summarized context.
func ComposeChat(question, context string) string {
	if context != "" {
		return fmt.Sprintf(`Context: %s

Question: %s

Please provide a helpful legal analysis or answer based on the context provided.

Answer:`, context, question)
	}

	return fmt.Sprintf(`Question: %s

Please provide a helpful legal analysis or general guidance.

Answer:`, question)
}

// ComposeDocumentAnalysis renders a whole-document compliance review
// instruction.
func ComposeDocumentAnalysis(document string) string {
	return fmt.Sprintf(`Analyze the following document for legal compliance and key insights:

Document:
%s

Please provide:
1. Summary of the document
2. Key legal points
3. Potential compliance issues
4. Recommendations

Analysis:`, document)
}
