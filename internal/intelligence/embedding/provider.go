// Package embedding converts free-form textual profiles into fixed-length
// numeric vectors via an external text-embedding provider.  Provider failure
// is never fatal to a match run: callers degrade to a zero vector, which
// downstream cosine similarity maps to 0.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/openhaven/matchgrid/internal/config"
	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/logging"
	"github.com/openhaven/matchgrid/pkg/errors"
)

// Provider produces a fixed-dimensionality embedding for a text.
type Provider interface {
	// Embed returns the embedding vector for text.  Implementations must
	// respect ctx cancellation and their configured timeout.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the provider's fixed vector length.
	Dimensions() int
}

// SafeEmbed calls p.Embed and converts any failure into a zero vector of the
// provider's dimensionality, reporting degradation via the second return
// value.  This is the only call path the matching engine uses, so a provider
// outage degrades similarity to 0 instead of aborting the run.
func SafeEmbed(ctx context.Context, p Provider, text string, logger logging.Logger) ([]float32, bool) {
	vec, err := p.Embed(ctx, text)
	if err != nil {
		logger.Warn("embedding degraded to zero vector", logging.Err(err))
		return make([]float32, p.Dimensions()), true
	}
	if len(vec) != p.Dimensions() {
		logger.Warn("embedding has unexpected dimensionality",
			logging.Int("got", len(vec)),
			logging.Int("want", p.Dimensions()),
		)
		return make([]float32, p.Dimensions()), true
	}
	return vec, false
}

// httpProvider calls an OpenAI-compatible /v1/embeddings endpoint.
type httpProvider struct {
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	client     *http.Client
	logger     logging.Logger
}

// NewHTTPProvider constructs a Provider backed by an OpenAI-compatible HTTP
// embeddings API.  The request timeout comes from cfg; exceeding it returns
// an error rather than blocking the caller indefinitely.
func NewHTTPProvider(cfg config.EmbeddingConfig, logger logging.Logger) Provider {
	return &httpProvider{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		client:     &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("embedding"),
	}
}

func (p *httpProvider) Dimensions() int { return p.dimensions }

type embedRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (p *httpProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Input: text, Model: p.model})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "failed to encode embedding request")
	}

	url := p.baseURL + "/v1/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeEmbeddingUnavailable, "failed to build embedding request")
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(err, errors.CodeEmbeddingTimeout, "embedding request cancelled or timed out")
		}
		return nil, errors.Wrap(err, errors.CodeEmbeddingUnavailable, "embedding provider unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, errors.Newf(errors.CodeEmbeddingBadResponse,
			"embedding provider returned status %d", resp.StatusCode)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, errors.CodeEmbeddingBadResponse, "failed to decode embedding response")
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, errors.New(errors.CodeEmbeddingBadResponse, "embedding response contains no vector")
	}

	vec := out.Data[0].Embedding
	if len(vec) != p.dimensions {
		return nil, errors.New(errors.CodeEmbeddingBadResponse,
			fmt.Sprintf("embedding dimensionality mismatch: got %d, want %d", len(vec), p.dimensions))
	}

	p.logger.Debug("embedded text",
		logging.Int("chars", len(text)),
		logging.Duration("took", time.Since(start)),
	)
	return vec, nil
}
