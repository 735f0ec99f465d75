// Package translate implements the Translation Stage's provider adapters.
// The chat-completion backends (OpenAI, Anthropic, Google) repurpose the
// teacher's LLM clients as single-turn translators by constraining them
// with an instruction prompt instead of a multi-turn message history;
// Microsoft is a direct machine-translation API with no prompt at all,
// grounded on original_source's translate_text().
package translate

import "fmt"

// instructionFor builds the single system instruction every chat-completion
// translator backend sends ahead of the source text. Keeping it terse and
// deterministic matters here: the session controller treats the entire
// response as the translation, with no parsing beyond whitespace trimming.
func instructionFor(sourceLocale, targetLang string) string {
	return fmt.Sprintf(
		"Translate the user's message from %s to %s. "+
			"Reply with only the translation, no quotes, no commentary.",
		sourceLocale, targetLang)
}
