package instagram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"clipcast/internal/model"
	"clipcast/internal/optimize"
	"clipcast/internal/progress"
	"clipcast/internal/util/deps"
)

// Result describes a published Reel.
type Result struct {
	MediaID string
	Code    string
	URL     string
}

// Upload publishes the video as a Reel: raw bytes first, then a cover
// frame, then the configure call that turns the upload into a clip.
func (c *Client) Upload(ctx context.Context, req model.UploadRequest, rep progress.Reporter, jobID string) (Result, error) {
	if rep != nil {
		rep.Update(progress.Update{JobID: jobID, Stage: progress.StageAuthenticating, Percent: -1, Message: "Signing in to Instagram"})
	}
	if err := c.Authenticate(ctx); err != nil {
		return Result{}, err
	}

	if req.ScheduleAt != nil {
		log.Warn().Msg("Instagram does not support scheduled publishing, posting the Reel now")
	}

	uploadID := strconv.FormatInt(time.Now().UnixMilli(), 10)
	caption := FormatCaption(req.InstagramCaption())

	log.Info().Str("video", req.VideoPath).Msg("starting Instagram Reels upload")

	if err := c.ruploadVideo(ctx, req.VideoPath, uploadID, rep, jobID); err != nil {
		return Result{}, err
	}

	if coverPath, err := c.extractCover(ctx, req.VideoPath); err != nil {
		log.Warn().Err(err).Msg("cover frame extraction failed, Instagram will pick one")
	} else {
		defer os.Remove(coverPath)
		if err := c.ruploadCover(ctx, coverPath, uploadID); err != nil {
			log.Warn().Err(err).Msg("cover upload failed")
		}
	}

	if rep != nil {
		rep.Update(progress.Update{JobID: jobID, Stage: progress.StageProcessing, Percent: 100, Message: "Waiting for Instagram to process the clip"})
	}

	res, err := c.configureClip(ctx, uploadID, caption)
	if err != nil {
		return Result{}, err
	}
	log.Info().Str("media_id", res.MediaID).Str("url", res.URL).Msg("Instagram upload successful")

	if req.ShareToStory {
		if err := c.shareToStory(ctx, res.MediaID); err != nil {
			log.Warn().Err(err).Msg("share to story failed")
		} else {
			log.Info().Msg("reel shared to story")
		}
	}
	return res, nil
}

// ruploadVideo streams the raw video bytes to the resumable upload
// endpoint.
func (c *Client) ruploadVideo(ctx context.Context, videoPath, uploadID string, rep progress.Reporter, jobID string) error {
	f, err := os.Open(videoPath)
	if err != nil {
		return model.NewPlatformError(model.PlatformInstagram, nil, fmt.Errorf("open video: %w", err))
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return model.NewPlatformError(model.PlatformInstagram, nil, err)
	}
	size := fi.Size()

	entityName := fmt.Sprintf("%s_0_%d", uploadID, size)
	params, _ := json.Marshal(map[string]string{
		"upload_id":         uploadID,
		"media_type":        "2",
		"upload_media_type": "2",
	})

	if rep != nil {
		rep.Update(progress.Update{JobID: jobID, Stage: progress.StageUploading, Percent: 0, Message: "Uploading to Instagram"})
	}

	headers := map[string]string{
		"X-Entity-Name":              entityName,
		"X-Entity-Length":            strconv.FormatInt(size, 10),
		"X-Entity-Type":              "video/mp4",
		"X-Instagram-Rupload-Params": string(params),
		"Offset":                     "0",
		"Content-Type":               "application/octet-stream",
	}

	reader := &progressReader{r: f, total: size, rep: rep, jobID: jobID}
	body, err := c.callRupload(ctx, "/rupload_igvideo/"+entityName, headers, reader)
	if err != nil {
		return err
	}

	var resp uploadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.NewPlatformError(model.PlatformInstagram, nil, fmt.Errorf("decode upload response: %w", err))
	}
	if resp.Status != "ok" {
		return classifyAPI(resp.apiResponse, 0)
	}
	return nil
}

func (c *Client) ruploadCover(ctx context.Context, coverPath, uploadID string) error {
	data, err := os.ReadFile(coverPath)
	if err != nil {
		return err
	}
	entityName := fmt.Sprintf("%s_0_%d", uploadID, len(data))
	params, _ := json.Marshal(map[string]string{
		"upload_id":  uploadID,
		"media_type": "2",
	})
	headers := map[string]string{
		"X-Entity-Name":              entityName,
		"X-Entity-Length":            strconv.Itoa(len(data)),
		"X-Entity-Type":              "image/jpeg",
		"X-Instagram-Rupload-Params": string(params),
		"Offset":                     "0",
		"Content-Type":               "application/octet-stream",
	}
	_, err = c.callRupload(ctx, "/rupload_igphoto/"+entityName, headers, bytes.NewReader(data))
	return err
}

// callRupload hits the upload host, which lives outside the /api/v1
// prefix the regular endpoints use.
func (c *Client) callRupload(ctx context.Context, path string, headers map[string]string, body io.Reader) ([]byte, error) {
	base := strings.TrimSuffix(c.baseURL, "/api/v1")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+path, body)
	if err != nil {
		return nil, model.NewPlatformError(model.PlatformInstagram, nil, err)
	}
	req.Header.Set("User-Agent", c.sess.UserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for name, value := range c.sess.Cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, model.NewPlatformError(model.PlatformInstagram, model.ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, model.NewPlatformError(model.PlatformInstagram, model.ErrNetwork, err)
	}

	if resp.StatusCode >= 400 {
		var api apiResponse
		_ = json.Unmarshal(data, &api)
		return nil, classifyAPI(api, resp.StatusCode)
	}
	return data, nil
}

// configureClip converts the uploaded bytes into a published Reel.
// Instagram often needs a few seconds to transcode, in which case the
// endpoint answers "media not found" or "transcode not finished"; those
// are polled, not treated as failures.
func (c *Client) configureClip(ctx context.Context, uploadID, caption string) (Result, error) {
	form := url.Values{
		"upload_id":         {uploadID},
		"caption":           {caption},
		"clips_share_sheet": {"1"},
		"source_type":       {"4"},
		"_uuid":             {c.sess.UUID},
		"_uid":              {c.sess.UserID},
		"_csrftoken":        {c.sess.CSRFToken},
	}

	const attempts = 10
	for i := 0; i < attempts; i++ {
		body, err := c.call(ctx, http.MethodPost, "/media/configure_to_clips/", nil, strings.NewReader(form.Encode()))
		if err != nil {
			if transcodePending(err) && i < attempts-1 {
				if werr := sleepCtx(ctx, 5*time.Second); werr != nil {
					return Result{}, werr
				}
				continue
			}
			return Result{}, err
		}

		var resp configureResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return Result{}, model.NewPlatformError(model.PlatformInstagram, nil, fmt.Errorf("decode configure response: %w", err))
		}
		if resp.Status != "ok" {
			cerr := classifyAPI(resp.apiResponse, 0)
			if transcodePending(cerr) && i < attempts-1 {
				if werr := sleepCtx(ctx, 5*time.Second); werr != nil {
					return Result{}, werr
				}
				continue
			}
			return Result{}, cerr
		}

		mediaID := resp.Media.ID
		if mediaID == "" && resp.Media.PK != 0 {
			mediaID = strconv.FormatInt(resp.Media.PK, 10)
		}
		return Result{
			MediaID: mediaID,
			Code:    resp.Media.Code,
			URL:     "https://instagram.com/reel/" + resp.Media.Code + "/",
		}, nil
	}
	return Result{}, model.NewPlatformError(model.PlatformInstagram, model.ErrNetwork,
		errors.New("clip transcode did not finish in time"))
}

// shareToStory reposts the published Reel to the account's story.
func (c *Client) shareToStory(ctx context.Context, mediaID string) error {
	form := url.Values{
		"media_id":   {mediaID},
		"_uuid":      {c.sess.UUID},
		"_uid":       {c.sess.UserID},
		"_csrftoken": {c.sess.CSRFToken},
	}
	body, err := c.call(ctx, http.MethodPost, "/media/"+mediaID+"/share_to_story/", nil, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return classifyAPI(resp, 0)
	}
	return nil
}

func (c *Client) extractCover(ctx context.Context, videoPath string) (string, error) {
	ffmpeg, err := deps.FindFFmpeg()
	if err != nil {
		return "", err
	}
	return optimize.ExtractCoverFrame(ctx, videoPath, 1.0, optimize.Options{
		FFmpegPath: ffmpeg,
		Verbose:    c.verbose,
		Runner:     c.runner,
	})
}

func transcodePending(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "transcode not finished") ||
		strings.Contains(msg, "media_needs_reupload") ||
		strings.Contains(msg, "media not found")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// progressReader reports bytes-sent updates as the HTTP client consumes
// the video file.
type progressReader struct {
	r     io.Reader
	total int64
	sent  int64
	rep   progress.Reporter
	jobID string
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	pr.sent += int64(n)
	if pr.rep != nil && pr.total > 0 {
		pct := float64(pr.sent) / float64(pr.total) * 100
		sent := pr.sent
		pr.rep.Update(progress.Update{
			JobID:   pr.jobID,
			Stage:   progress.StageUploading,
			Percent: pct,
			Bytes:   &sent,
			Message: fmt.Sprintf("Uploading to Instagram (%.0f%%)", pct),
		})
	}
	return n, err
}
