// Package config maps environment variables to the server and edge
// command surfaces (spec §6), following the same caarlos0/env struct-tag
// convention the raspi-agent-backend teacher config uses.
package config

import "time"

// ServerConfig configures the cmd/server process: one WebSocket listener
// accepting one session per accepted connection.
type ServerConfig struct {
	ServerAddr string `env:"SERVER_ADDR" envDefault:"0.0.0.0:8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	SourceLocale string `env:"SOURCE_LOCALE" envDefault:"es-ES"`
	TargetLang   string `env:"TARGET_LANG" envDefault:"en"`
	Voice        string `env:"VOICE" envDefault:"default"`

	RecognizerProvider string `env:"RECOGNIZER_PROVIDER" envDefault:"deepgram"`
	TranslatorProvider string `env:"TRANSLATOR_PROVIDER" envDefault:"microsoft"`
	SynthesizerProvider string `env:"SYNTHESIZER_PROVIDER" envDefault:"lokutor"`

	DeepgramAPIKey  string `env:"DEEPGRAM_API_KEY" envDefault:""`
	GroqAPIKey      string `env:"GROQ_API_KEY" envDefault:""`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY" envDefault:""`
	AssemblyAIAPIKey string `env:"ASSEMBLYAI_API_KEY" envDefault:""`

	MicrosoftSubscriptionKey    string `env:"MICROSOFT_SUBSCRIPTION_KEY" envDefault:""`
	MicrosoftSubscriptionRegion string `env:"MICROSOFT_SUBSCRIPTION_REGION" envDefault:""`
	AnthropicAPIKey             string `env:"ANTHROPIC_API_KEY" envDefault:""`
	GoogleAPIKey                string `env:"GOOGLE_API_KEY" envDefault:""`

	LokutorAPIKey string `env:"LOKUTOR_API_KEY" envDefault:""`

	IngressCapacity   int           `env:"INGRESS_CAPACITY" envDefault:"150"`
	UtteranceCapacity int           `env:"UTTERANCE_CAPACITY" envDefault:"50"`
	FrameCapacity     int           `env:"FRAME_CAPACITY" envDefault:"2000"`
	TranslateTimeout  time.Duration `env:"TRANSLATE_TIMEOUT" envDefault:"10s"`
	SynthesisTimeout  time.Duration `env:"SYNTHESIS_TIMEOUT" envDefault:"15s"`
	HeartbeatTimeout  time.Duration `env:"HEARTBEAT_TIMEOUT" envDefault:"20s"`
}

// EdgeConfig configures the cmd/edge process: the malgo capture/playback
// client that dials a running server.
type EdgeConfig struct {
	ServerURL  string `env:"SERVER_URL" envDefault:"ws://127.0.0.1:8080/session"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	SampleRate int    `env:"SAMPLE_RATE" envDefault:"16000"`
	ChunkMs    int    `env:"CHUNK_MS" envDefault:"20"`
}
