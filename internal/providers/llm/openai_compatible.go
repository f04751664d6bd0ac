package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/sandevgo/guardian/internal/core"
)

const userAgent = core.GuardianUserAgent

// OpenAICompatible talks to any /v1/chat/completions endpoint. HTTP
// failures are classified into transient and fatal generation errors; the
// orchestrator decides what to do with them.
type OpenAICompatible struct {
	baseProvider
	authHeader   string
	authPrefix   string
	extraHeaders map[string]string
}

type OpenAICompatibleConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	AuthHeader   string // e.g., "Authorization"
	AuthPrefix   string // e.g., "Bearer "
	ExtraHeaders map[string]string
}

func NewOpenAICompatible(cfg OpenAICompatibleConfig) *OpenAICompatible {
	return &OpenAICompatible{
		baseProvider: newBaseProvider(cfg.BaseURL, cfg.APIKey, cfg.Model),
		authHeader:   cfg.AuthHeader,
		authPrefix:   cfg.AuthPrefix,
		extraHeaders: cfg.ExtraHeaders,
	}
}

func (o *OpenAICompatible) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	payload := map[string]any{
		"model": o.model,
		"messages": []map[string]string{
			{"role": "user", "content": req.Prompt},
		},
		"max_tokens":  req.MaxOutputTokens,
		"temperature": req.Temperature,
	}

	headers := make(map[string]string)
	if o.authHeader != "" && o.apiKey != "" {
		headers[o.authHeader] = o.authPrefix + o.apiKey
	}
	for k, v := range o.extraHeaders {
		headers[k] = v
	}

	resp, err := o.doRequest(ctx, http.MethodPost, "/v1/chat/completions", payload, headers)
	if err != nil {
		// A dead caller context is not a service failure; surface it as-is
		// so it classifies as non-retryable. Everything else here is a
		// network error or timeout and worth retrying.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", core.NewTransientGenerationError(0, err.Error())
	}
	defer resp.Body.Close()

	return parseCompletionResponse(resp)
}

func parseCompletionResponse(resp *http.Response) (string, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", core.NewTransientGenerationError(resp.StatusCode, "read body: "+err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, string(data))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", core.NewTransientGenerationError(resp.StatusCode, "decode: "+err.Error())
	}
	if len(result.Choices) == 0 {
		return "", core.NewTransientGenerationError(resp.StatusCode, "empty choices")
	}
	return result.Choices[0].Message.Content, nil
}

// classifyStatus maps HTTP status codes onto the retryable/fatal split:
// rate limits and server-side failures may clear on retry, auth and
// request errors will not.
func classifyStatus(status int, body string) error {
	if status == http.StatusTooManyRequests || status >= 500 {
		return core.NewTransientGenerationError(status, body)
	}
	return core.NewFatalGenerationError(status, body)
}
