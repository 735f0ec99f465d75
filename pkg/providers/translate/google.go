package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// GoogleChatTranslator is a Translator backed by the Gemini
// generateContent endpoint, adapted from the teacher's GoogleLLM client.
type GoogleChatTranslator struct {
	apiKey string
	url    string
	model  string
}

func NewGoogleChatTranslator(apiKey, model string) *GoogleChatTranslator {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GoogleChatTranslator{
		apiKey: apiKey,
		url:    "https://generativelanguage.googleapis.com/v1beta/models/" + model + ":generateContent",
		model:  model,
	}
}

func (l *GoogleChatTranslator) Translate(ctx context.Context, text, sourceLocale, targetLang string) (string, error) {
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Role  string `json:"role"`
		Parts []part `json:"parts"`
	}

	payload := map[string]interface{}{
		"systemInstruction": content{Parts: []part{{Text: instructionFor(sourceLocale, targetLang)}}},
		"contents":          []content{{Role: "user", Parts: []part{{Text: text}}}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", l.url+"?key="+l.apiKey, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		return "", fmt.Errorf("google translator error (status %d): %v", resp.StatusCode, errResp)
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from google translator")
	}
	return strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text), nil
}

func (l *GoogleChatTranslator) Name() string { return "google-chat-translator" }
