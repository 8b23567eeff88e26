// Package session scopes the compliance-analysis state to one logical
// user session: the active knowledge base, the rule engine and the
// generation backend travel together in an explicit object instead of
// ambient globals. Sessions are not designed for multi-session sharing.
package session

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/compliance-cli/internal/dataset"
	"github.com/sells-group/compliance-cli/internal/knowledge"
	"github.com/sells-group/compliance-cli/internal/model"
	"github.com/sells-group/compliance-cli/internal/prompt"
	"github.com/sells-group/compliance-cli/internal/rules"
)

// Output token budgets per operation, mirroring the generation calls'
// expected response sizes.
const (
	violationMaxTokens = 500
	chatMaxTokens      = 750
	analysisMaxTokens  = 1000
)

// Status discriminates success from failure in operation results.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Session owns one user's compliance-analysis state.
type Session struct {
	ID     string
	gen    knowledge.Generator
	store  knowledge.Store
	engine *rules.Engine
}

// New creates a Session over the given generation backend, context
// store and rule engine.
func New(gen knowledge.Generator, store knowledge.Store, engine *rules.Engine) *Session {
	return &Session{
		ID:     uuid.NewString(),
		gen:    gen,
		store:  store,
		engine: engine,
	}
}

// Store exposes the session's context store.
func (s *Session) Store() knowledge.Store { return s.store }

// AnalysisResult is the outcome of a dataset scan. The deterministic
// scan always succeeds; the model explanation is best-effort and its
// failure is carried as data.
type AnalysisResult struct {
	Quality          dataset.QualityReport `json:"stats" yaml:"stats"`
	Violations       *model.ViolationSet   `json:"violations" yaml:"violations"`
	Explanation      string                `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	ExplanationError string                `json:"explanation_error,omitempty" yaml:"explanation_error,omitempty"`
}

// AnalyzeDataset runs the quality checks and the full rule battery
// over the dataset. When explain is set, the findings are also sent to
// the generation model, grounded in any loaded knowledge base.
func (s *Session) AnalyzeDataset(ctx context.Context, d *dataset.Dataset, explain bool) *AnalysisResult {
	result := &AnalysisResult{
		Quality:    dataset.CheckQuality(d),
		Violations: s.engine.Scan(d),
	}

	if !explain {
		return result
	}

	contextText := ""
	if s.store != nil && s.store.HasDocuments() {
		contextText = s.store.GetContext(ctx, "telecom compliance violations penalties")
	}

	p := prompt.ComposeAnalysis(result.Violations, contextText)
	explanation, err := s.gen.Generate(ctx, p, violationMaxTokens)
	if err != nil {
		zap.L().Warn("session: violation explanation failed",
			zap.String("session", s.ID),
			zap.Error(err),
		)
		result.ExplanationError = err.Error()
		return result
	}
	result.Explanation = explanation

	return result
}

// ChatResult is the outcome of a question to the assistant.
type ChatResult struct {
	Status   Status `json:"status"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Ask answers a compliance question, grounded in the knowledge base
// when one is loaded. Generation failures come back as data, not as a
// raised fault.
func (s *Session) Ask(ctx context.Context, question string) *ChatResult {
	contextText := ""
	if s.store != nil && s.store.HasDocuments() {
		contextText = s.store.GetContext(ctx, question)
	}

	response, err := s.gen.Generate(ctx, prompt.ComposeChat(question, contextText), chatMaxTokens)
	if err != nil {
		return &ChatResult{Status: StatusError, Error: err.Error()}
	}
	return &ChatResult{Status: StatusSuccess, Response: response}
}

// DocumentAnalysisResult is the outcome of a whole-document review.
type DocumentAnalysisResult struct {
	Status         Status `json:"status"`
	Analysis       string `json:"analysis,omitempty"`
	DocumentLength int    `json:"document_length,omitempty"`
	Error          string `json:"error,omitempty"`
}

// AnalyzeDocument asks the model for a compliance review of the text.
func (s *Session) AnalyzeDocument(ctx context.Context, text string) *DocumentAnalysisResult {
	analysis, err := s.gen.Generate(ctx, prompt.ComposeDocumentAnalysis(text), analysisMaxTokens)
	if err != nil {
		return &DocumentAnalysisResult{Status: StatusError, Error: err.Error()}
	}
	return &DocumentAnalysisResult{
		Status:         StatusSuccess,
		Analysis:       analysis,
		DocumentLength: len(text),
	}
}

// IngestResult is the outcome of loading a document into the knowledge
// base.
type IngestResult struct {
	Status Status                `json:"status"`
	Info   *knowledge.IngestInfo `json:"info,omitempty"`
	Error  string                `json:"error,omitempty"`
}

// LoadDocument replaces the session's knowledge base with the document.
func (s *Session) LoadDocument(ctx context.Context, text, name string) *IngestResult {
	info, err := s.store.SetDocument(ctx, text, name)
	if err != nil {
		return &IngestResult{Status: StatusError, Error: err.Error()}
	}
	return &IngestResult{Status: StatusSuccess, Info: info}
}
