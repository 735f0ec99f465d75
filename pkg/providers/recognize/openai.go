package recognize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/lokutor-ai/voxbridge/pkg/audio"
)

// OpenAIRecognizer is a BatchRecognizer backed by OpenAI's Whisper
// transcription endpoint, grounded on the teacher's OpenAISTT client.
type OpenAIRecognizer struct {
	apiKey     string
	url        string
	model      string
	sampleRate int
}

func NewOpenAIRecognizer(apiKey, model string) *OpenAIRecognizer {
	if model == "" {
		model = "whisper-1"
	}
	return &OpenAIRecognizer{
		apiKey:     apiKey,
		url:        "https://api.openai.com/v1/audio/transcriptions",
		model:      model,
		sampleRate: 16000,
	}
}

func (s *OpenAIRecognizer) SetSampleRate(rate int) { s.sampleRate = rate }

func (s *OpenAIRecognizer) Name() string { return "openai-recognizer" }

func (s *OpenAIRecognizer) Transcribe(ctx context.Context, audioPCM []byte, locale string) (string, error) {
	wavData := audio.NewWavBuffer(audioPCM, s.sampleRate)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("model", s.model); err != nil {
		return "", err
	}
	if locale != "" {
		if err := writer.WriteField("language", localeToISO639(locale)); err != nil {
			return "", err
		}
	}

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(wavData); err != nil {
		return "", err
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", s.url, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai recognizer error: %s (status %d)", string(respBody), resp.StatusCode)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Text, nil
}
