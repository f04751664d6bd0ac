package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sandevgo/guardian/internal/core"
)

// Input cap for the hosted embedding models; they reject longer requests.
const openAIMaxInputTokens = 8000

var openAIModelDims = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// OpenAI calls a hosted /v1/embeddings endpoint. Any transport or server
// failure comes back as ErrEmbeddingUnavailable: the index is temporarily
// stale, not broken.
type OpenAI struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	dims    int
}

func NewOpenAI(baseURL, apiKey, model string) *OpenAI {
	dims, ok := openAIModelDims[model]
	if !ok {
		dims = 1536
	}
	return &OpenAI{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		dims:    dims,
	}
}

func (o *OpenAI) EncodeQuery(ctx context.Context, text string) ([]float32, error) {
	return o.embed(ctx, text)
}

func (o *OpenAI) EncodePassage(ctx context.Context, text string) ([]float32, error) {
	return o.embed(ctx, text)
}

func (o *OpenAI) VersionTag() string {
	return "openai/" + o.model
}

func (o *OpenAI) Dims() int {
	return o.dims
}

func (o *OpenAI) embed(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(map[string]any{
		"model": o.model,
		"input": truncateTokens(text, openAIMaxInputTokens),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("User-Agent", core.GuardianUserAgent)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %s", core.ErrEmbeddingUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http %d: %s", core.ErrEmbeddingUnavailable, resp.StatusCode, string(data))
	}

	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: decode: %s", core.ErrEmbeddingUnavailable, err)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", core.ErrEmbeddingUnavailable)
	}
	return result.Data[0].Embedding, nil
}
