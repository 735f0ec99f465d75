package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMicrosoftTranslator_ParsesTranslationArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Ocp-Apim-Subscription-Key") != "test-key" {
			t.Errorf("missing subscription key header")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"translations": []map[string]string{{"text": "hello world"}}},
		})
	}))
	defer server.Close()

	tr := &MicrosoftTranslator{subscriptionKey: "test-key", subscriptionRegion: "eastus", endpoint: server.URL}
	got, err := tr.Translate(context.Background(), "hola mundo", "es-ES", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello world" {
		t.Fatalf("expected %q, got %q", "hello world", got)
	}
	if tr.Name() != "microsoft-translator" {
		t.Fatalf("unexpected name: %s", tr.Name())
	}
}

func TestOpenAIChatTranslator_TrimsWhitespace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		msgs, _ := req["messages"].([]interface{})
		if len(msgs) != 2 {
			t.Errorf("expected system+user messages, got %d", len(msgs))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "  hello world  \n"}},
			},
		})
	}))
	defer server.Close()

	tr := &OpenAIChatTranslator{apiKey: "test-key", url: server.URL, model: "gpt-4o"}
	got, err := tr.Translate(context.Background(), "hola mundo", "es-ES", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello world" {
		t.Fatalf("expected trimmed %q, got %q", "hello world", got)
	}
}
