// Package watsonx provides a client for the IBM watsonx.ai text
// generation and embedding APIs, including IAM token acquisition.
package watsonx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// DefaultIAMURL is the IBM Cloud token endpoint.
const DefaultIAMURL = "https://iam.cloud.ibm.com/identity/token"

// DefaultModelID is the default generation model.
const DefaultModelID = "meta-llama/llama-3-3-70b-instruct"

// DefaultEmbeddingModelID is the default embedding model.
const DefaultEmbeddingModelID = "ibm/slate-125m-english-rtrvr"

// apiVersion is the watsonx.ai API version pin.
const apiVersion = "2023-05-29"

// Client defines the watsonx.ai operations used by the core.
type Client interface {
	// Generate produces text for a prompt, bounded by maxTokens.
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	// EmbedDocuments embeds a batch of texts; output order matches input.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Config holds watsonx.ai credentials and model selection. APIKey, URL
// and ProjectID are required.
type Config struct {
	APIKey           string
	URL              string
	ProjectID        string
	ModelID          string
	EmbeddingModelID string
	IAMURL           string
	Timeout          time.Duration
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

type httpClient struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	tokens  *tokenManager
}

// NewClient creates a watsonx.ai client. Missing credentials fail fast
// here rather than on first use.
func NewClient(cfg Config, opts ...Option) (Client, error) {
	if cfg.APIKey == "" || cfg.URL == "" || cfg.ProjectID == "" {
		return nil, eris.New("watsonx: missing required configuration (api key, url, project id)")
	}
	if cfg.ModelID == "" {
		cfg.ModelID = DefaultModelID
	}
	if cfg.EmbeddingModelID == "" {
		cfg.EmbeddingModelID = DefaultEmbeddingModelID
	}
	if cfg.IAMURL == "" {
		cfg.IAMURL = DefaultIAMURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	c := &httpClient{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(5), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.tokens = newTokenManager(c.http, cfg.IAMURL, cfg.APIKey)
	return c, nil
}

// generationRequest is the text generation payload.
type generationRequest struct {
	Input      string           `json:"input"`
	Parameters generationParams `json:"parameters"`
	ModelID    string           `json:"model_id"`
	ProjectID  string           `json:"project_id"`
}

type generationParams struct {
	DecodingMethod    string  `json:"decoding_method"`
	MaxNewTokens      int     `json:"max_new_tokens"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
}

// generationResponse is the text generation result envelope.
type generationResponse struct {
	Results []struct {
		GeneratedText string `json:"generated_text"`
	} `json:"results"`
}

func (c *httpClient) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	payload := generationRequest{
		Input: prompt,
		Parameters: generationParams{
			DecodingMethod:    "greedy",
			MaxNewTokens:      maxTokens,
			RepetitionPenalty: 1.1,
		},
		ModelID:   c.cfg.ModelID,
		ProjectID: c.cfg.ProjectID,
	}

	var result generationResponse
	if err := c.post(ctx, "/ml/v1/text/generation", payload, &result); err != nil {
		return "", eris.Wrap(err, "watsonx: generate")
	}
	if len(result.Results) == 0 {
		return "", eris.New("watsonx: generation returned no results")
	}

	return strings.TrimSpace(result.Results[0].GeneratedText), nil
}

// embeddingRequest is the embeddings payload.
type embeddingRequest struct {
	Inputs    []string `json:"inputs"`
	ModelID   string   `json:"model_id"`
	ProjectID string   `json:"project_id"`
}

// embeddingResponse is the embeddings result envelope.
type embeddingResponse struct {
	Results []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"results"`
}

func (c *httpClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload := embeddingRequest{
		Inputs:    texts,
		ModelID:   c.cfg.EmbeddingModelID,
		ProjectID: c.cfg.ProjectID,
	}

	var result embeddingResponse
	if err := c.post(ctx, "/ml/v1/text/embeddings", payload, &result); err != nil {
		return nil, eris.Wrap(err, "watsonx: embed documents")
	}
	if len(result.Results) != len(texts) {
		return nil, eris.Errorf("watsonx: got %d embeddings for %d inputs", len(result.Results), len(texts))
	}

	vectors := make([][]float32, len(result.Results))
	for i, r := range result.Results {
		vectors[i] = r.Embedding
	}
	return vectors, nil
}

func (c *httpClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, eris.New("watsonx: no embedding returned")
	}
	return vectors[0], nil
}

// retryableStatusCode returns true if the HTTP status should trigger a
// retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// post sends an authenticated JSON request with bounded retries on
// transient failures.
func (c *httpClient) post(ctx context.Context, path string, payload, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "rate limit wait")
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "marshal request")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	reqURL := strings.TrimRight(c.cfg.URL, "/") + path + "?version=" + url.QueryEscape(apiVersion)

	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
		if err != nil {
			return eris.Wrap(err, "create request")
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
		} else {
			respBody, readErr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if readErr != nil {
				return eris.Wrap(readErr, "read response body")
			}

			if resp.StatusCode == http.StatusOK {
				return eris.Wrap(json.Unmarshal(respBody, out), "unmarshal response")
			}

			if resp.StatusCode == http.StatusUnauthorized {
				// Token may have expired server-side: drop the cache so
				// the next attempt re-acquires.
				c.tokens.Invalidate()
				token, err = c.tokens.Token(ctx)
				if err != nil {
					return err
				}
			}

			lastErr = eris.Errorf("status %d: %s", resp.StatusCode, string(respBody))
			if !retryableStatusCode(resp.StatusCode) && resp.StatusCode != http.StatusUnauthorized {
				return lastErr
			}
		}

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	return lastErr
}
