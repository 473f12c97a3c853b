// Package pipeline wires adapters, store and orchestrators into a running
// service.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/forPelevin/viralcut/internal/domain/moments"
	"github.com/forPelevin/viralcut/internal/httpapi"
	"github.com/forPelevin/viralcut/internal/jobstore"
	"github.com/forPelevin/viralcut/internal/ports"
	"github.com/forPelevin/viralcut/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/viralcut/internal/ports/adapters/openrouter"
	"github.com/forPelevin/viralcut/internal/ports/adapters/whisperapi"
	"github.com/forPelevin/viralcut/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/viralcut/internal/ports/adapters/ytdlp"
	"github.com/forPelevin/viralcut/internal/usecase"
)

type Config struct {
	Addr    string
	WorkDir string

	MinMoment time.Duration
	MaxMoment time.Duration

	FFmpegPath  string
	FFprobePath string
	YtDlpPath   string

	// Hosted Whisper is used when OpenAIAPIKey is set; otherwise a local
	// whisper.cpp install is required.
	OpenAIAPIKey string
	WhisperBin   string
	WhisperModel string

	OpenRouterAPIKey       string
	OpenRouterModel        string
	OpenRouterBaseURL      string
	OpenRouterAllowedHosts []string

	Logf func(format string, args ...any)
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("listen address is empty")
	}
	if c.WorkDir == "" {
		return errors.New("work dir is empty")
	}
	if c.MinMoment <= 0 {
		return fmt.Errorf("min moment duration must be > 0")
	}
	if c.MaxMoment <= 0 {
		return fmt.Errorf("max moment duration must be > 0")
	}
	if c.MinMoment > c.MaxMoment {
		return fmt.Errorf("min moment duration must be <= max")
	}
	if c.OpenAIAPIKey == "" && (c.WhisperBin == "" || c.WhisperModel == "") {
		return errors.New("transcription backend required: set OPENAI_API_KEY or whisper.cpp binary and model paths")
	}
	if c.OpenRouterAPIKey != "" {
		return openrouter.ValidateBaseURL(c.OpenRouterBaseURL, c.OpenRouterAllowedHosts)
	}
	return nil
}

// Run builds the service and serves until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		return err
	}
	logf("work dir: %s", cfg.WorkDir)

	// adapters
	video := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
	source := ytdlp.New(cfg.YtDlpPath, cfg.WorkDir)

	var asr ports.ASR
	if cfg.OpenAIAPIKey != "" {
		asr = whisperapi.New(cfg.OpenAIAPIKey)
		logf("transcription: hosted whisper")
	} else {
		asr = whispercpp.New(cfg.WhisperBin, cfg.WhisperModel, cfg.WorkDir)
		logf("transcription: whisper.cpp (%s)", cfg.WhisperModel)
	}

	var ranker ports.Ranker
	if cfg.OpenRouterAPIKey != "" {
		ranker = openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL)
		logf("refinement: openrouter (%s)", cfg.OpenRouterModel)
	} else {
		logf("refinement: disabled (no OPENROUTER_API_KEY)")
	}

	detector := moments.NewDetector(ranker, moments.Options{
		MinMoment: cfg.MinMoment,
		MaxMoment: cfg.MaxMoment,
		Logf:      logf,
	})

	store := jobstore.New()
	uc := usecase.New(usecase.Deps{
		Video:      video,
		ASR:        asr,
		Captions:   source,
		Downloader: source,
		Detector:   detector,
		Store:      store,
		Logf:       logf,
	}, cfg.WorkDir)

	api := httpapi.NewServer(uc, store, filepath.Join(cfg.WorkDir, "uploads"), logf)

	srv := &http.Server{Addr: cfg.Addr, Handler: api.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logf("listening on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.ASR = (*whisperapi.Adapter)(nil)
var _ ports.ASR = (*whispercpp.Adapter)(nil)
var _ ports.CaptionSource = (*ytdlp.Adapter)(nil)
var _ ports.Downloader = (*ytdlp.Adapter)(nil)
var _ ports.Ranker = (*openrouter.Adapter)(nil)
var _ ports.JobStore = (*jobstore.Store)(nil)
