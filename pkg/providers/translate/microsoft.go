package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// MicrosoftTranslator calls the Azure Translator Text API directly, with
// no chat prompt involved. It is grounded on original_source's
// translate_text(): POST a one-element array body to the v3.0 translate
// endpoint with the subscription key/region headers, to=<targetLang>, and
// read back translations[0].text. This is the closest adaptation to the
// bridge's original translation backend.
type MicrosoftTranslator struct {
	subscriptionKey    string
	subscriptionRegion string
	endpoint           string
}

func NewMicrosoftTranslator(subscriptionKey, subscriptionRegion string) *MicrosoftTranslator {
	return &MicrosoftTranslator{
		subscriptionKey:    subscriptionKey,
		subscriptionRegion: subscriptionRegion,
		endpoint:           "https://api.cognitive.microsofttranslator.com/translate",
	}
}

func (m *MicrosoftTranslator) Translate(ctx context.Context, text, sourceLocale, targetLang string) (string, error) {
	url := fmt.Sprintf("%s?api-version=3.0&from=%s&to=%s", m.endpoint, localeToISO639(sourceLocale), targetLang)

	payload := []map[string]string{{"Text": text}}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", m.subscriptionKey)
	req.Header.Set("Ocp-Apim-Subscription-Region", m.subscriptionRegion)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("microsoft translator error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result []struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result) == 0 || len(result[0].Translations) == 0 {
		return "", fmt.Errorf("no translation returned from microsoft translator")
	}
	return result[0].Translations[0].Text, nil
}

func (m *MicrosoftTranslator) Name() string { return "microsoft-translator" }

// localeToISO639 trims a BCP-47 locale like "es-ES" down to the bare
// language subtag the translate API's "from" parameter expects ("es").
func localeToISO639(locale string) string {
	for i, r := range locale {
		if r == '-' || r == '_' {
			return locale[:i]
		}
	}
	return locale
}
