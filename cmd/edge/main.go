// Command edge is the capture/playback client: it opens a duplex malgo
// audio device, streams uplink chunks to a running server over one
// WebSocket session, and plays back downlink synthesis frames as they
// arrive, the same malgo Duplex wiring the teacher's cmd/agent used for its
// own microphone/speaker loop.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/gen2brain/malgo"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lokutor-ai/voxbridge/internal/config"
	"github.com/lokutor-ai/voxbridge/pkg/audio"
	"github.com/lokutor-ai/voxbridge/pkg/transport"
)

var (
	envFile      string
	sourceLocale string
	targetLang   string
	voice        string
	channel      string
)

func main() {
	root := &cobra.Command{
		Use:   "edge",
		Short: "voxbridge capture/playback edge client",
		RunE:  runEdge,
	}
	root.Flags().StringVar(&envFile, "env-file", "", "optional .env file to load before reading environment")
	root.Flags().StringVar(&sourceLocale, "source-locale", "es-ES", "source language locale")
	root.Flags().StringVar(&targetLang, "target-lang", "en", "target language code")
	root.Flags().StringVar(&voice, "voice", "default", "synthesis voice id")
	root.Flags().StringVar(&channel, "channel", "", "channel identifier")

	if err := root.Execute(); err != nil {
		slog.Error("edge exited with error", "err", err)
		os.Exit(1)
	}
}

func runEdge(cmd *cobra.Command, args []string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading env file: %w", err)
		}
	}

	var cfg config.EdgeConfig
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	url := fmt.Sprintf("%s?channel=%s&source_locale=%s&target_lang=%s&voice=%s",
		cfg.ServerURL, channel, sourceLocale, targetLang, voice)
	conn, err := transport.Dial(ctx, url)
	if err != nil {
		return fmt.Errorf("dialing server: %w", err)
	}
	defer conn.Close()

	// 16-bit mono PCM at the configured sample rate, chunked to ChunkMs.
	bytesPerChunk := cfg.SampleRate * cfg.ChunkMs / 1000 * 2
	acc := audio.NewChunkAccumulator(bytesPerChunk, 150)

	var playbackMu sync.Mutex
	var playbackBytes []byte

	onSamples := func(pOutput, pInput []byte, frameCount uint32) {
		if pInput != nil {
			acc.Write(pInput)
		}
		if pOutput != nil {
			playbackMu.Lock()
			n := copy(pOutput, playbackBytes)
			playbackBytes = playbackBytes[n:]
			for i := n; i < len(pOutput); i++ {
				pOutput[i] = 0
			}
			playbackMu.Unlock()
		}
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("init audio context: %w", err)
	}
	defer mctx.Uninit()

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Duplex)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = 1
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = 1
	deviceConfig.SampleRate = uint32(cfg.SampleRate)

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, malgo.DeviceCallbacks{Data: onSamples})
	if err != nil {
		return fmt.Errorf("init audio device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("starting audio device: %w", err)
	}

	go func() {
		for {
			select {
			case chunk, ok := <-acc.Chunks():
				if !ok {
					return
				}
				if err := conn.WriteBinary(ctx, chunk); err != nil {
					slog.Warn("uplink write failed", "err", err)
					cancel()
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		for {
			kind, data, err := conn.ReadAny(ctx)
			if err != nil {
				slog.Info("downlink closed", "err", err)
				cancel()
				return
			}
			switch kind {
			case transport.FrameBinary:
				// A complete-buffer fallback frame (spec §4.7) arrives WAV-
				// encoded and whole; strip its header and queue the PCM
				// after whatever is already pending so it plays in full
				// before the next frame starts, rather than being
				// interleaved sample-by-sample with a concurrent stream.
				pcm := data
				if audio.IsWavBuffer(data) {
					pcm = audio.DecodePCMFromWav(data)
				}
				playbackMu.Lock()
				playbackBytes = append(playbackBytes, pcm...)
				playbackMu.Unlock()
			case transport.FrameControl:
				logControlFrame(data)
			}
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	return nil
}

// logControlFrame prints the frame's type field for operator visibility; the
// edge doesn't otherwise act on control frames.
func logControlFrame(data []byte) {
	var probe struct {
		Type string `json:"type"`
		Text string `json:"text,omitempty"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		slog.Warn("unparseable control frame", "err", err)
		return
	}
	if probe.Text != "" {
		slog.Info("control frame", "type", probe.Type, "text", probe.Text)
	} else {
		slog.Info("control frame", "type", probe.Type)
	}
}
