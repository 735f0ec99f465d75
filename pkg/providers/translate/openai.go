package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// OpenAIChatTranslator is a Translator backed by OpenAI's chat-completions
// endpoint, adapted from the teacher's OpenAILLM client by replacing its
// multi-turn message history with a single translation instruction.
type OpenAIChatTranslator struct {
	apiKey string
	url    string
	model  string
}

func NewOpenAIChatTranslator(apiKey, model string) *OpenAIChatTranslator {
	if model == "" {
		model = "gpt-4o"
	}
	return &OpenAIChatTranslator{
		apiKey: apiKey,
		url:    "https://api.openai.com/v1/chat/completions",
		model:  model,
	}
}

func (l *OpenAIChatTranslator) Translate(ctx context.Context, text, sourceLocale, targetLang string) (string, error) {
	payload := map[string]interface{}{
		"model": l.model,
		"messages": []map[string]string{
			{"role": "system", "content": instructionFor(sourceLocale, targetLang)},
			{"role": "user", "content": text},
		},
		"temperature": 0,
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
	req.Header.Set("Authorization", "Bearer "+l.apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		return "", fmt.Errorf("openai translator error (status %d): %v", resp.StatusCode, errResp)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from openai")
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

func (l *OpenAIChatTranslator) Name() string { return "openai-chat-translator" }
