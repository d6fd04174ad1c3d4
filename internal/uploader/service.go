// Package uploader fans a single video out to the configured platforms
// and collects one result per platform.
package uploader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"clipcast/internal/config"
	"clipcast/internal/model"
	"clipcast/internal/platform/instagram"
	"clipcast/internal/platform/youtube"
	"clipcast/internal/probe"
	"clipcast/internal/progress"
	"clipcast/internal/retry"
	"clipcast/internal/util"
	"clipcast/internal/util/deps"
	"clipcast/internal/validate"
)

// Client is the per-platform upload surface the service drives. The
// concrete YouTube and Instagram clients satisfy it through small
// adapters so their richer result types stay package-local.
type Client interface {
	Platform() model.Platform
	Upload(ctx context.Context, req model.UploadRequest, rep progress.Reporter, jobID string) (videoID, videoURL string, err error)
}

// Service orchestrates validation and concurrent platform uploads.
type Service struct {
	cfg      *config.Manager
	runner   util.CmdRunner
	reporter progress.Reporter
	clients  map[model.Platform]Client

	skipValidation bool
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithRunner overrides the subprocess runner used for probing.
func WithRunner(r util.CmdRunner) ServiceOption {
	return func(s *Service) { s.runner = r }
}

// WithReporter attaches a progress reporter (the TUI or a logger bridge).
func WithReporter(rep progress.Reporter) ServiceOption {
	return func(s *Service) { s.reporter = rep }
}

// WithClient registers a platform client, replacing the default one.
func WithClient(c Client) ServiceOption {
	return func(s *Service) { s.clients[c.Platform()] = c }
}

// WithSkipValidation bypasses the pre-upload video checks.
func WithSkipValidation(skip bool) ServiceOption {
	return func(s *Service) { s.skipValidation = skip }
}

// SetReporter swaps the progress reporter. The TUI attaches itself here
// after both it and the service exist.
func (s *Service) SetReporter(rep progress.Reporter) { s.reporter = rep }

// New builds a Service with real platform clients; options may replace
// any of them.
func New(cfg *config.Manager, opts ...ServiceOption) *Service {
	s := &Service{
		cfg:     cfg,
		clients: map[model.Platform]Client{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runner == nil {
		s.runner = util.NewDefaultRunner()
	}
	if _, ok := s.clients[model.PlatformYouTube]; !ok {
		s.clients[model.PlatformYouTube] = &youtubeAdapter{c: youtube.NewClient(cfg)}
	}
	if _, ok := s.clients[model.PlatformInstagram]; !ok {
		s.clients[model.PlatformInstagram] = &instagramAdapter{c: instagram.NewClient(cfg, instagram.WithRunner(s.runner))}
	}
	return s
}

// Run validates the video, then uploads to every requested platform
// concurrently. It always returns one result per platform, in request
// order; the error is non-nil only for failures before fan-out.
func (s *Service) Run(ctx context.Context, req model.UploadRequest) ([]model.UploadResult, error) {
	platforms := req.Platforms
	if len(platforms) == 0 {
		platforms = model.AllPlatforms
	}

	if !s.skipValidation {
		if res, ok := s.validateVideo(ctx, req.VideoPath, platforms); !ok {
			log.Error().Str("video", req.VideoPath).Strs("issues", res.Issues).Msg("video validation failed")
			return failAll(platforms, validationMessage(res)), nil
		}
	}

	results := make([]model.UploadResult, len(platforms))
	g, gctx := errgroup.WithContext(ctx)
	if !s.cfg.GetBool("upload.concurrent_uploads") {
		g.SetLimit(1)
	}
	var mu sync.Mutex

	for i, p := range platforms {
		i, p := i, p
		g.Go(func() error {
			r := s.uploadOne(gctx, p, req)
			mu.Lock()
			results[i] = r
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers never return errors, failures live in results

	return results, nil
}

// uploadOne runs a single platform upload with retries and a per-call
// timeout, timing the whole thing.
func (s *Service) uploadOne(ctx context.Context, p model.Platform, req model.UploadRequest) model.UploadResult {
	client, ok := s.clients[p]
	if !ok {
		return model.UploadResult{Platform: p, ErrorMessage: fmt.Sprintf("no client for platform %s", p)}
	}

	jobID := string(p)
	start := time.Now()

	type uploadOut struct{ id, url string }
	out, err := retry.Do(ctx, s.retryConfig(p), func() (uploadOut, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.UploadTimeout())
		defer cancel()
		id, url, err := client.Upload(callCtx, req, s.reporter, jobID)
		return uploadOut{id, url}, err
	})
	elapsed := time.Since(start).Seconds()

	if err != nil {
		log.Error().Err(err).Str("platform", string(p)).Msg("upload failed")
		if s.reporter != nil {
			s.reporter.Result(progress.Result{JobID: jobID, Err: err})
		}
		return model.UploadResult{Platform: p, ErrorMessage: err.Error(), DurationSec: elapsed, Err: err}
	}

	log.Info().Str("platform", string(p)).Str("video_id", out.id).Float64("seconds", elapsed).Msg("upload complete")
	if s.reporter != nil {
		s.reporter.Update(progress.Update{JobID: jobID, Stage: progress.StageCompleted, Percent: 100})
		s.reporter.Result(progress.Result{JobID: jobID, VideoID: out.id, VideoURL: out.url})
	}
	return model.UploadResult{
		Platform:    p,
		Success:     true,
		VideoID:     out.id,
		VideoURL:    out.url,
		DurationSec: elapsed,
	}
}

func (s *Service) retryConfig(p model.Platform) retry.Config {
	key := "upload.retry_attempts"
	if p == model.PlatformInstagram {
		key = "instagram.max_retries"
	}
	return retry.ForAttempts(s.cfg.GetInt(key))
}

func (s *Service) validateVideo(ctx context.Context, path string, platforms []model.Platform) (model.ValidationResult, bool) {
	if s.reporter != nil {
		for _, p := range platforms {
			s.reporter.Update(progress.Update{JobID: string(p), Stage: progress.StageValidating, Percent: -1, Message: "Validating video"})
		}
	}

	opts := probe.Options{Runner: s.runner, Verbose: s.cfg.GetBool("app.verbose")}
	if ffprobe, err := deps.FindFFprobe(s.cfg.GetString("video.ffprobe_path")); err == nil {
		opts.FFprobePath = ffprobe
	}
	res := validate.New(s.cfg.VideoLimits(), opts).Validate(ctx, path)
	return res, res.Valid
}

func validationMessage(res model.ValidationResult) string {
	if res.ErrorMessage != "" {
		return "video validation failed: " + res.ErrorMessage
	}
	if len(res.Issues) > 0 {
		return "video validation failed: " + res.Issues[0]
	}
	return "video validation failed"
}

func failAll(platforms []model.Platform, msg string) []model.UploadResult {
	out := make([]model.UploadResult, len(platforms))
	for i, p := range platforms {
		out[i] = model.UploadResult{Platform: p, ErrorMessage: msg, Err: model.ErrValidation}
	}
	return out
}

// AnyFailed reports whether at least one result is a failure.
func AnyFailed(results []model.UploadResult) bool {
	for _, r := range results {
		if !r.Success {
			return true
		}
	}
	return false
}

type youtubeAdapter struct{ c *youtube.Client }

func (a *youtubeAdapter) Platform() model.Platform { return model.PlatformYouTube }

func (a *youtubeAdapter) Upload(ctx context.Context, req model.UploadRequest, rep progress.Reporter, jobID string) (string, string, error) {
	res, err := a.c.Upload(ctx, req, rep, jobID)
	if err != nil {
		return "", "", err
	}
	return res.VideoID, res.ShortsURL, nil
}

type instagramAdapter struct{ c *instagram.Client }

func (a *instagramAdapter) Platform() model.Platform { return model.PlatformInstagram }

func (a *instagramAdapter) Upload(ctx context.Context, req model.UploadRequest, rep progress.Reporter, jobID string) (string, string, error) {
	res, err := a.c.Upload(ctx, req, rep, jobID)
	if err != nil {
		return "", "", err
	}
	return res.MediaID, res.URL, nil
}
