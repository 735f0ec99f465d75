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

// GroqRecognizer is a BatchRecognizer backed by Groq's Whisper-compatible
// transcription endpoint, grounded on the teacher's GroqSTT client.
type GroqRecognizer struct {
	apiKey     string
	url        string
	model      string
	sampleRate int
}

func NewGroqRecognizer(apiKey, model string) *GroqRecognizer {
	if model == "" {
		model = "whisper-large-v3-turbo"
	}
	return &GroqRecognizer{
		apiKey:     apiKey,
		url:        "https://api.groq.com/openai/v1/audio/transcriptions",
		model:      model,
		sampleRate: 16000,
	}
}

func (s *GroqRecognizer) SetSampleRate(rate int) { s.sampleRate = rate }

func (s *GroqRecognizer) Transcribe(ctx context.Context, audioPCM []byte, locale string) (string, error) {
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
	if _, err := io.Copy(part, bytes.NewReader(wavData)); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

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
		var errResp interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		return "", fmt.Errorf("groq recognizer error (status %d): %v", resp.StatusCode, errResp)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Text, nil
}

func (s *GroqRecognizer) Name() string { return "groq-recognizer" }

// localeToISO639 trims a BCP-47 locale like "es-ES" down to the bare
// language subtag most STT APIs expect ("es").
func localeToISO639(locale string) string {
	for i, r := range locale {
		if r == '-' || r == '_' {
			return locale[:i]
		}
	}
	return locale
}
