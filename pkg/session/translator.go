package session

import "context"

// Translator is the Translation Stage's provider contract (spec §4.6). A
// single call translates one finalized utterance; the session controller
// enforces the 10s bound named in the config, not the provider.
type Translator interface {
	Translate(ctx context.Context, text, sourceLocale, targetLang string) (string, error)
	Name() string
}
