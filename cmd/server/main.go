// Command server accepts one WebSocket connection per translation
// channel and drives a session.Controller over it (spec §6's server
// command surface), following the teacher pack's caarlos0/env + go-chi +
// slog/httplog wiring convention for its own backend command.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/lokutor-ai/voxbridge/internal/config"
	"github.com/lokutor-ai/voxbridge/internal/metrics"
	"github.com/lokutor-ai/voxbridge/pkg/providers/recognize"
	"github.com/lokutor-ai/voxbridge/pkg/providers/synthesize"
	"github.com/lokutor-ai/voxbridge/pkg/providers/translate"
	"github.com/lokutor-ai/voxbridge/pkg/session"
	"github.com/lokutor-ai/voxbridge/pkg/transport"
)

var envFile string

func main() {
	root := &cobra.Command{
		Use:   "server",
		Short: "voxbridge translation bridge server",
		RunE:  runServer,
	}
	root.Flags().StringVar(&envFile, "env-file", "", "optional .env file to load before reading environment")

	if err := root.Execute(); err != nil {
		slog.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading env file: %w", err)
		}
	}

	var cfg config.ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	logLevel := slog.LevelInfo
	_ = logLevel.UnmarshalText([]byte(cfg.LogLevel))
	logger := httplog.NewLogger("voxbridge-server", httplog.Options{LogLevel: logLevel})
	slog.SetDefault(logger.Logger)

	mp, rec, err := metrics.InitProvider("voxbridge-server")
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer metrics.Shutdown(context.Background(), mp)

	recognizerFactory, err := buildRecognizerFactory(cfg)
	if err != nil {
		return err
	}
	translator, err := buildTranslator(cfg)
	if err != nil {
		return err
	}
	synth, err := buildSynthesizer(cfg)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/session", func(w http.ResponseWriter, r *http.Request) {
		handleSession(w, r, cfg, logger.Logger, rec, recognizerFactory, translator, synth)
	})

	srv := &http.Server{Addr: cfg.ServerAddr, Handler: r}

	go func() {
		slog.Info("starting voxbridge server", "addr", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped unexpectedly", "err", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func handleSession(
	w http.ResponseWriter, r *http.Request,
	cfg config.ServerConfig,
	logger *slog.Logger,
	rec *metrics.Recorder,
	recognizerFactory func() session.StreamingRecognizer,
	translator session.Translator,
	synth session.Synthesizer,
) {
	conn, err := transport.Accept(w, r)
	if err != nil {
		logger.Warn("websocket accept failed", "err", err)
		return
	}

	sessCfg := session.DefaultConfig()
	sessCfg.Channel = r.URL.Query().Get("channel")
	sessCfg.SourceLocale = firstNonEmpty(r.URL.Query().Get("source_locale"), cfg.SourceLocale)
	sessCfg.TargetLang = firstNonEmpty(r.URL.Query().Get("target_lang"), cfg.TargetLang)
	sessCfg.Voice = firstNonEmpty(r.URL.Query().Get("voice"), cfg.Voice)
	sessCfg.IngressCapacity = cfg.IngressCapacity
	sessCfg.UtteranceCapacity = cfg.UtteranceCapacity
	sessCfg.FrameCapacity = cfg.FrameCapacity
	sessCfg.TranslateTimeout = cfg.TranslateTimeout
	sessCfg.SynthesisTimeout = cfg.SynthesisTimeout
	sessCfg.HeartbeatTimeout = cfg.HeartbeatTimeout

	sess := session.NewSession(sessCfg)
	ctrl, err := session.NewController(sess, sessCfg, recognizerFactory(), translator, synth, slogAdapter{logger})
	if err != nil {
		logger.Error("failed to build session controller", "err", err)
		conn.CloseWithError("controller init failed")
		return
	}

	rec.SessionOpened(r.Context())
	defer rec.SessionClosed(r.Context())

	logger.Info("session started", "session_id", sess.ID, "channel", sess.Channel)
	if err := ctrl.Run(r.Context(), conn); err != nil {
		logger.Info("session ended", "session_id", sess.ID, "err", err)
	}
	conn.Close()
}

func buildRecognizerFactory(cfg config.ServerConfig) (func() session.StreamingRecognizer, error) {
	switch cfg.RecognizerProvider {
	case "deepgram":
		return func() session.StreamingRecognizer {
			return recognize.NewDeepgramStream(cfg.DeepgramAPIKey, 16000)
		}, nil
	case "groq-batch":
		return func() session.StreamingRecognizer {
			return recognize.NewBatchAdapter(recognize.NewGroqRecognizer(cfg.GroqAPIKey, ""), 2*time.Second)
		}, nil
	default:
		return nil, fmt.Errorf("unknown recognizer provider %q", cfg.RecognizerProvider)
	}
}

func buildTranslator(cfg config.ServerConfig) (session.Translator, error) {
	switch cfg.TranslatorProvider {
	case "microsoft":
		return translate.NewMicrosoftTranslator(cfg.MicrosoftSubscriptionKey, cfg.MicrosoftSubscriptionRegion), nil
	case "openai":
		return translate.NewOpenAIChatTranslator(cfg.OpenAIAPIKey, ""), nil
	case "anthropic":
		return translate.NewAnthropicChatTranslator(cfg.AnthropicAPIKey, ""), nil
	case "google":
		return translate.NewGoogleChatTranslator(cfg.GoogleAPIKey, ""), nil
	default:
		return nil, fmt.Errorf("unknown translator provider %q", cfg.TranslatorProvider)
	}
}

func buildSynthesizer(cfg config.ServerConfig) (session.Synthesizer, error) {
	switch cfg.SynthesizerProvider {
	case "lokutor":
		return synthesize.NewLokutorSynthesizer(cfg.LokutorAPIKey), nil
	case "lokutor-wav":
		return synthesize.NewWavFallbackSynthesizer(synthesize.NewLokutorSynthesizer(cfg.LokutorAPIKey), 16000), nil
	case "azure":
		return synthesize.NewAzureSynthesizer(cfg.MicrosoftSubscriptionKey, cfg.MicrosoftSubscriptionRegion), nil
	default:
		return nil, fmt.Errorf("unknown synthesizer provider %q", cfg.SynthesizerProvider)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// slogAdapter implements session.Logger over *slog.Logger so the session
// core stays decoupled from the logging library the teacher picked.
type slogAdapter struct{ l *slog.Logger }

func (s slogAdapter) Debug(msg string, args ...interface{}) { s.l.Debug(msg, args...) }
func (s slogAdapter) Info(msg string, args ...interface{})  { s.l.Info(msg, args...) }
func (s slogAdapter) Warn(msg string, args ...interface{})  { s.l.Warn(msg, args...) }
func (s slogAdapter) Error(msg string, args ...interface{}) { s.l.Error(msg, args...) }
