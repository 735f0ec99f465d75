package synthesize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lokutor-ai/voxbridge/pkg/session"
)

// AzureSynthesizer is a session.Synthesizer against Azure Cognitive
// Services' REST speech synthesis endpoint, grounded on original_source's
// build_streaming_synth(), which requested Raw16Khz16BitMonoPcm output from
// the Azure Speech SDK's push-stream callback. Go's net/http already
// delivers a chunked HTTP response as a streaming io.Reader, so the
// equivalent here is a plain read loop rather than the SDK's own callback
// thread -- the push-stream callback bridge the original relied on
// (TtsPushCallback) has no analog to reconstruct when the transport is
// already pull-based.
type AzureSynthesizer struct {
	subscriptionKey    string
	subscriptionRegion string
	sampleRate         int
}

func NewAzureSynthesizer(subscriptionKey, subscriptionRegion string) *AzureSynthesizer {
	return &AzureSynthesizer{subscriptionKey: subscriptionKey, subscriptionRegion: subscriptionRegion, sampleRate: 16000}
}

func (a *AzureSynthesizer) Name() string { return "azure" }

func (a *AzureSynthesizer) StreamSynthesize(ctx context.Context, text, voice string, onFrame func(session.SynthesisFrame) error) error {
	endpoint := fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", a.subscriptionRegion)
	ssml := fmt.Sprintf(
		`<speak version='1.0' xml:lang='en-US'><voice name='%s'>%s</voice></speak>`,
		voice, escapeSSML(text))

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(ssml))
	if err != nil {
		return err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", a.subscriptionKey)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", "raw-16khz-16bit-mono-pcm")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("azure synthesis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("azure synthesis error (status %d)", resp.StatusCode)
	}

	buf := make([]byte, 3200) // 100ms of 16kHz/16-bit/mono audio per frame
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			frame := session.SynthesisFrame{Data: append([]byte{}, buf[:n]...)}
			if cbErr := onFrame(frame); cbErr != nil {
				return cbErr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return onFrame(session.SynthesisFrame{Final: true})
			}
			return fmt.Errorf("azure synthesis read: %w", err)
		}
	}
}

func escapeSSML(text string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(text)
}
