package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// AnthropicChatTranslator is a Translator backed by the Claude messages
// endpoint, adapted from the teacher's AnthropicLLM client by replacing its
// multi-turn history with a single-turn translation instruction as the
// system prompt.
type AnthropicChatTranslator struct {
	apiKey string
	url    string
	model  string
}

func NewAnthropicChatTranslator(apiKey, model string) *AnthropicChatTranslator {
	if model == "" {
		model = "claude-3-5-sonnet-20240620"
	}
	return &AnthropicChatTranslator{
		apiKey: apiKey,
		url:    "https://api.anthropic.com/v1/messages",
		model:  model,
	}
}

func (l *AnthropicChatTranslator) Translate(ctx context.Context, text, sourceLocale, targetLang string) (string, error) {
	payload := map[string]interface{}{
		"model":      l.model,
		"system":     instructionFor(sourceLocale, targetLang),
		"max_tokens": 1024,
		"messages": []map[string]string{
			{"role": "user", "content": text},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", l.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", l.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		return "", fmt.Errorf("anthropic translator error (status %d): %v", resp.StatusCode, errResp)
	}

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result.Content) == 0 {
		return "", fmt.Errorf("no content returned from anthropic")
	}
	return strings.TrimSpace(result.Content[0].Text), nil
}

func (l *AnthropicChatTranslator) Name() string { return "anthropic-chat-translator" }
