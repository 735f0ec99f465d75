// Package recognize implements the Recognition Stage's provider adapters.
// BatchRecognizer is the one-shot HTTP contract shared by the fallback
// providers (Groq, OpenAI, AssemblyAI); DeepgramStream in streaming.go is
// the primary session.StreamingRecognizer used by cmd/server.
package recognize

import "context"

// BatchRecognizer transcribes one complete buffer of linear PCM audio in a
// single call. It backs BatchAdapter, which turns it into a
// session.StreamingRecognizer by accumulating ingress chunks and flushing on
// a fixed cadence -- useful when the configured provider doesn't offer a
// real streaming endpoint.
type BatchRecognizer interface {
	Transcribe(ctx context.Context, audioPCM []byte, locale string) (string, error)
	Name() string
}
