package main

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/compliance-cli/internal/chunker"
	"github.com/sells-group/compliance-cli/internal/config"
	"github.com/sells-group/compliance-cli/internal/dataset"
	"github.com/sells-group/compliance-cli/internal/knowledge"
	"github.com/sells-group/compliance-cli/internal/rules"
	"github.com/sells-group/compliance-cli/internal/session"
	"github.com/sells-group/compliance-cli/pkg/anthropic"
	"github.com/sells-group/compliance-cli/pkg/watsonx"
)

// env holds the wired session and its closeable resources.
type env struct {
	Session *session.Session
	index   knowledge.Index
}

// Close releases the knowledge index.
func (e *env) Close() {
	if e.index != nil {
		_ = e.index.Close()
	}
}

// initSession wires a session from config: generation backend, context
// store strategy and rule engine.
func initSession(cfg *config.Config) (*env, error) {
	gen, embedder, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}

	e := &env{}
	store, err := newStore(cfg, gen, embedder, e)
	if err != nil {
		return nil, err
	}

	e.Session = session.New(gen, store, rules.NewEngine(cfg.Rules))
	return e, nil
}

// newBackend constructs the generation and embedding clients for the
// configured provider. Missing credentials fail here, before any
// command logic runs.
func newBackend(cfg *config.Config) (knowledge.Generator, knowledge.Embedder, error) {
	timeout := time.Duration(cfg.LLM.TimeoutSecs) * time.Second

	wx, wxErr := watsonx.NewClient(watsonx.Config{
		APIKey:           cfg.Watsonx.APIKey,
		URL:              cfg.Watsonx.URL,
		ProjectID:        cfg.Watsonx.ProjectID,
		ModelID:          cfg.Watsonx.ModelID,
		EmbeddingModelID: cfg.Watsonx.EmbeddingModelID,
		Timeout:          timeout,
	})

	switch strings.ToLower(cfg.LLM.Provider) {
	case "", "watsonx":
		if wxErr != nil {
			return nil, nil, wxErr
		}
		return wx, wx, nil
	case "anthropic":
		gen, err := anthropic.NewClient(cfg.Anthropic.Key, cfg.Anthropic.Model)
		if err != nil {
			return nil, nil, err
		}
		// Embeddings still come from watsonx; anthropic only generates.
		if wxErr != nil {
			return gen, nil, nil
		}
		return gen, wx, nil
	default:
		return nil, nil, eris.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

// newStore constructs the configured context-store strategy.
func newStore(cfg *config.Config, gen knowledge.Generator, embedder knowledge.Embedder, e *env) (knowledge.Store, error) {
	switch strings.ToLower(cfg.KB.Strategy) {
	case "direct":
		return knowledge.NewDirectStore(gen,
			knowledge.WithMaxContextLength(cfg.Context.MaxContextLength),
			knowledge.WithMaxSummaryLength(cfg.Context.MaxSummaryLength),
		), nil
	case "", "retrieval":
		if embedder == nil {
			return nil, eris.New("retrieval strategy requires an embedding backend (configure watsonx)")
		}
		var index knowledge.Index
		if cfg.KB.Path != "" {
			si, err := knowledge.NewSQLiteIndex(cfg.KB.Path)
			if err != nil {
				return nil, err
			}
			index = si
		} else {
			index = knowledge.NewMemoryIndex()
		}
		e.index = index
		return knowledge.NewRetrievalStore(embedder, index,
			knowledge.WithMaxResults(cfg.KB.MaxResults),
			knowledge.WithChunker(chunker.New(
				chunker.WithChunkSize(cfg.KB.ChunkSize),
				chunker.WithOverlap(cfg.KB.ChunkOverlap),
			)),
		), nil
	default:
		return nil, eris.Errorf("unknown kb strategy %q", cfg.KB.Strategy)
	}
}

// loadDataset reads call records from an XLSX or CSV file by extension.
func loadDataset(path string) (*dataset.Dataset, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".xlsx"):
		return dataset.ReadXLSX(path, dataset.XLSXOptions{})
	case strings.HasSuffix(lower, ".csv"):
		return dataset.ReadCSV(path)
	default:
		return nil, eris.Errorf("unsupported dataset format %q (want .xlsx or .csv)", path)
	}
}
