// Package youtube uploads videos as Shorts through the YouTube Data API.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/term"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"clipcast/internal/config"
	"clipcast/internal/model"
	"clipcast/internal/progress"
)

// Result describes a completed YouTube upload.
type Result struct {
	VideoID   string
	URL       string
	ShortsURL string
}

// Client wraps the YouTube Data API v3 for Shorts uploads.
type Client struct {
	credentialsPath string
	tokenPath       string
	categoryID      string
	chunkSize       int

	svc *yt.Service

	// newService is swapped in tests to avoid real API construction.
	newService func(ctx context.Context, ts oauth2.TokenSource) (*yt.Service, error)
}

// NewClient builds a Client from the youtube.* config section.
func NewClient(cfg *config.Manager) *Client {
	return &Client{
		credentialsPath: cfg.GetString("youtube.credentials_path"),
		tokenPath:       cfg.GetString("youtube.token_path"),
		categoryID:      cfg.GetString("youtube.category_id"),
		chunkSize:       cfg.GetInt("youtube.chunk_size"),
		newService: func(ctx context.Context, ts oauth2.TokenSource) (*yt.Service, error) {
			return yt.NewService(ctx, option.WithTokenSource(ts))
		},
	}
}

// Authenticate loads OAuth2 credentials and builds the API service.
// When no cached token exists and stdin is a terminal, it walks the user
// through the out-of-band code flow; otherwise it fails with an auth error.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.svc != nil {
		return nil
	}

	secrets, err := os.ReadFile(c.credentialsPath)
	if err != nil {
		return model.NewPlatformError(model.PlatformYouTube, model.ErrAuth,
			fmt.Errorf("credentials file not found at %s (download from Google Cloud Console): %w", c.credentialsPath, err))
	}
	oauthCfg, err := google.ConfigFromJSON(secrets, yt.YoutubeUploadScope)
	if err != nil {
		return model.NewPlatformError(model.PlatformYouTube, model.ErrAuth, fmt.Errorf("parse client secrets: %w", err))
	}

	tok, err := tokenFromFile(c.tokenPath)
	if err != nil {
		tok, err = c.tokenFromPrompt(ctx, oauthCfg)
		if err != nil {
			return err
		}
		if serr := saveToken(c.tokenPath, tok); serr != nil {
			log.Warn().Err(serr).Msg("failed to cache YouTube token")
		} else {
			log.Info().Str("path", c.tokenPath).Msg("YouTube credentials saved")
		}
	}

	svc, err := c.newService(ctx, oauthCfg.TokenSource(ctx, tok))
	if err != nil {
		return model.NewPlatformError(model.PlatformYouTube, model.ErrAuth, fmt.Errorf("build service: %w", err))
	}
	c.svc = svc
	log.Info().Msg("YouTube authentication successful")
	return nil
}

func (c *Client) tokenFromPrompt(ctx context.Context, oauthCfg *oauth2.Config) (*oauth2.Token, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, model.NewPlatformError(model.PlatformYouTube, model.ErrAuth,
			fmt.Errorf("no cached token at %s and no terminal for the OAuth flow", c.tokenPath))
	}
	authURL := oauthCfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(os.Stderr, "Open the following URL in a browser, then paste the code:\n%s\n> ", authURL)

	var code string
	if _, err := fmt.Fscan(os.Stdin, &code); err != nil {
		return nil, model.NewPlatformError(model.PlatformYouTube, model.ErrAuth, fmt.Errorf("read auth code: %w", err))
	}
	tok, err := oauthCfg.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, model.NewPlatformError(model.PlatformYouTube, model.ErrAuth, fmt.Errorf("exchange auth code: %w", err))
	}
	return tok, nil
}

// Upload publishes the video. Progress is emitted through rep when non-nil.
func (c *Client) Upload(ctx context.Context, req model.UploadRequest, rep progress.Reporter, jobID string) (Result, error) {
	if rep != nil {
		rep.Update(progress.Update{JobID: jobID, Stage: progress.StageAuthenticating, Percent: -1, Message: "Signing in to YouTube"})
	}
	if err := c.Authenticate(ctx); err != nil {
		return Result{}, err
	}

	body := c.buildVideo(req)

	f, err := os.Open(req.VideoPath)
	if err != nil {
		return Result{}, model.NewPlatformError(model.PlatformYouTube, nil, fmt.Errorf("open video: %w", err))
	}
	defer f.Close()

	var total int64
	if fi, err := f.Stat(); err == nil {
		total = fi.Size()
	}

	log.Info().Str("title", body.Snippet.Title).Msg("starting YouTube upload")

	call := c.svc.Videos.Insert([]string{"snippet", "status"}, body).
		Media(f, googleapi.ChunkSize(c.chunkSize)).
		Context(ctx)
	call.ProgressUpdater(func(current, _ int64) {
		if rep == nil || total <= 0 {
			return
		}
		pct := float64(current) / float64(total) * 100
		sent := current
		rep.Update(progress.Update{
			JobID:   jobID,
			Stage:   progress.StageUploading,
			Percent: pct,
			Bytes:   &sent,
			Message: fmt.Sprintf("Uploading to YouTube (%.0f%%)", pct),
		})
	})

	resp, err := call.Do()
	if err != nil {
		return Result{}, classify(err)
	}

	videoID := resp.Id
	log.Info().Str("video_id", videoID).Msg("YouTube upload successful")

	if req.ThumbnailPath != "" {
		c.setThumbnail(ctx, videoID, req.ThumbnailPath)
	}
	c.ensureShortsRemote(ctx, videoID)

	return Result{
		VideoID:   videoID,
		URL:       "https://youtube.com/watch?v=" + videoID,
		ShortsURL: "https://youtube.com/shorts/" + videoID,
	}, nil
}

func (c *Client) buildVideo(req model.UploadRequest) *yt.Video {
	privacy := string(req.Privacy)
	status := &yt.VideoStatus{
		PrivacyStatus:           privacy,
		SelfDeclaredMadeForKids: false,
		Embeddable:              true,
		PublicStatsViewable:     true,
		ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
	}
	if req.ScheduleAt != nil {
		// Scheduled videos must be private until publish time.
		status.PublishAt = req.ScheduleAt.UTC().Format("2006-01-02T15:04:05Z")
		status.PrivacyStatus = string(model.PrivacyPrivate)
	}

	return &yt.Video{
		Snippet: &yt.VideoSnippet{
			Title:                FormatTitle(req.Title),
			Description:          FormatDescription(req.Description, req.Tags),
			Tags:                 CapTags(req.Tags),
			CategoryId:           c.categoryID,
			DefaultLanguage:      "en",
			DefaultAudioLanguage: "en",
		},
		Status: status,
	}
}

// setThumbnail uploads a custom thumbnail; failures are logged, not fatal.
func (c *Client) setThumbnail(ctx context.Context, videoID, thumbnailPath string) {
	tf, err := os.Open(thumbnailPath)
	if err != nil {
		log.Warn().Err(err).Msg("thumbnail open failed")
		return
	}
	defer tf.Close()

	if _, err := c.svc.Thumbnails.Set(videoID).Media(tf).Context(ctx).Do(); err != nil {
		log.Warn().Err(err).Msg("thumbnail upload failed")
		return
	}
	log.Info().Str("video_id", videoID).Msg("thumbnail uploaded")
}

// ensureShortsRemote patches the live description to carry #Shorts; the
// formatter already adds it locally, so this only fires when the API
// stripped or altered it. Best-effort.
func (c *Client) ensureShortsRemote(ctx context.Context, videoID string) {
	resp, err := c.svc.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx).Do()
	if err != nil || len(resp.Items) == 0 {
		return
	}
	snippet := resp.Items[0].Snippet
	if strings.Contains(snippet.Description, "#Shorts") || strings.Contains(snippet.Description, "#shorts") {
		return
	}
	snippet.Description = EnsureShortsTag(snippet.Description)
	if _, err := c.svc.Videos.Update([]string{"snippet"}, &yt.Video{Id: videoID, Snippet: snippet}).Context(ctx).Do(); err != nil {
		log.Warn().Err(err).Msg("shorts tag update failed")
		return
	}
	log.Info().Msg("added #Shorts hashtag to video description")
}

// GetVideoStatus returns processing/status details for an uploaded video.
func (c *Client) GetVideoStatus(ctx context.Context, videoID string) (*yt.Video, error) {
	if err := c.Authenticate(ctx); err != nil {
		return nil, err
	}
	resp, err := c.svc.Videos.List([]string{"status", "processingDetails", "snippet"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("video %s not found", videoID)
	}
	return resp.Items[0], nil
}

// classify maps API errors onto the shared failure classes.
func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := apiMessage(gerr)
		switch {
		case gerr.Code == 401 || (gerr.Code == 403 && !isRateReason(gerr)):
			return model.NewPlatformError(model.PlatformYouTube, model.ErrAuth, errors.New(msg))
		case gerr.Code == 429 || isRateReason(gerr):
			return model.NewPlatformError(model.PlatformYouTube, model.ErrRateLimited, errors.New(msg))
		case gerr.Code >= 500:
			return model.NewPlatformError(model.PlatformYouTube, model.ErrNetwork, errors.New(msg))
		}
		return model.NewPlatformError(model.PlatformYouTube, nil, errors.New(msg))
	}
	return model.NewPlatformError(model.PlatformYouTube, model.ErrNetwork, err)
}

func isRateReason(gerr *googleapi.Error) bool {
	for _, e := range gerr.Errors {
		switch e.Reason {
		case "rateLimitExceeded", "userRateLimitExceeded", "quotaExceeded", "uploadLimitExceeded":
			return true
		}
	}
	return false
}

func apiMessage(gerr *googleapi.Error) string {
	if gerr.Message != "" {
		return gerr.Message
	}
	return gerr.Error()
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
