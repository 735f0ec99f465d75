package session

import "errors"

var (
	// ErrEmptyUtterance names a recognizer finalizing an utterance with no
	// non-whitespace text. The controller discards such utterances before
	// they reach the utterance queue without returning this error.
	ErrEmptyUtterance = errors.New("session: recognizer produced an empty utterance")

	// ErrTranslationFailed's message is sent in the error control frame when
	// a Translator call fails or times out; the underlying error is logged,
	// not wrapped.
	ErrTranslationFailed = errors.New("session: translation failed")

	// ErrSynthesisFailed's message is sent in the error control frame when a
	// Synthesizer call fails or times out; the underlying error is logged,
	// not wrapped.
	ErrSynthesisFailed = errors.New("session: synthesis failed")

	// ErrNilProvider is returned by NewController when a required provider
	// dependency is nil.
	ErrNilProvider = errors.New("session: required provider is nil")

	// ErrSessionTerminated names the StateTerminated condition; no function
	// in this package returns it.
	ErrSessionTerminated = errors.New("session: session already terminated")
)
