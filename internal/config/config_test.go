package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadClean(t *testing.T, path string) *Manager {
	t.Helper()
	// Keep the search paths away from any real config on the machine.
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.Chdir(t.TempDir()))

	m, err := Load(path)
	require.NoError(t, err)
	return m
}

func TestDefaults(t *testing.T) {
	m := loadClean(t, "")

	assert.Equal(t, "data/youtube_credentials.json", m.GetString("youtube.credentials_path"))
	assert.Equal(t, "22", m.GetString("youtube.category_id"))
	assert.Equal(t, "public", m.GetString("youtube.default_privacy"))
	assert.Equal(t, int64(500*1024*1024), m.GetInt64("video.max_file_size"))
	assert.Equal(t, 3, m.GetInt("youtube.max_retries"))
	assert.True(t, m.GetBool("upload.concurrent_uploads"))
	assert.InDelta(t, 0.5625, m.GetFloat64("video.preferred_aspect_ratio"), 1e-9)
	assert.Equal(t, []string{".mp4", ".mov", ".avi"}, m.GetStringSlice("video.supported_formats"))
}

func TestDotNotationGetSetRoundTrip(t *testing.T) {
	m := loadClean(t, "")

	m.Set("youtube.category_id", "24")
	assert.Equal(t, "24", m.GetString("youtube.category_id"))

	m.Set("custom.nested.value", 42)
	assert.Equal(t, 42, m.GetInt("custom.nested.value"))

	assert.Nil(t, m.Get("does.not.exist"))
	assert.False(t, m.IsSet("does.not.exist"))
}

func TestEnvOverridesAndCoercion(t *testing.T) {
	t.Setenv("YOUTUBE_CATEGORY_ID", "10")
	t.Setenv("MAX_FILE_SIZE", "1048576")
	t.Setenv("MAX_DURATION_YOUTUBE", "30.5")
	t.Setenv("CLIPCAST_UPLOAD_CONCURRENT_UPLOADS", "false")

	m := loadClean(t, "")

	assert.Equal(t, "10", m.GetString("youtube.category_id"))
	assert.Equal(t, int64(1048576), m.GetInt64("video.max_file_size"))
	assert.InDelta(t, 30.5, m.GetFloat64("video.max_duration_youtube"), 1e-9)
	assert.False(t, m.GetBool("upload.concurrent_uploads"))
}

func TestConfigFileMergeJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{"youtube": {"default_privacy": "unlisted"}, "video": {"max_duration_instagram": 60}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	m := loadClean(t, path)

	// File values win over defaults; untouched defaults survive the merge.
	assert.Equal(t, "unlisted", m.GetString("youtube.default_privacy"))
	assert.InDelta(t, 60, m.GetFloat64("video.max_duration_instagram"), 1e-9)
	assert.Equal(t, "22", m.GetString("youtube.category_id"))
	assert.Equal(t, path, m.Path())
}

func TestConfigFileMergeYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "instagram:\n  username: reeluser\nlogging:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	m := loadClean(t, path)

	assert.Equal(t, "reeluser", m.GetString("instagram.username"))
	assert.Equal(t, "debug", m.GetString("logging.level"))
}

func TestSaveToRoundTrip(t *testing.T) {
	m := loadClean(t, "")
	m.Set("youtube.category_id", "17")

	out := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, m.SaveTo(out))

	reloaded := loadClean(t, out)
	assert.Equal(t, "17", reloaded.GetString("youtube.category_id"))
}

func TestVideoLimits(t *testing.T) {
	m := loadClean(t, "")
	l := m.VideoLimits()

	assert.Equal(t, int64(500*1024*1024), l.MaxFileSize)
	assert.Equal(t, 720, l.MinWidth)
	assert.Equal(t, 1280, l.MinHeight)
	assert.Equal(t, 1080, l.MaxWidth)
	assert.Equal(t, 1920, l.MaxHeight)
	assert.InDelta(t, 60, l.MaxDurationYouTube, 1e-9)
	assert.InDelta(t, 90, l.MaxDurationInstagram, 1e-9)
}

func TestValidate(t *testing.T) {
	m := loadClean(t, "")

	val := m.Validate()
	// No credentials file and no Instagram credentials in a fresh dir.
	assert.NotEmpty(t, val.Errors)
	assert.Contains(t, val.Warnings, "Instagram username not configured")

	m.Set("video.max_file_size", 0)
	val = m.Validate()
	assert.Contains(t, val.Errors, "Invalid max file size configuration")

	m.Set("youtube.default_privacy", "friends-only")
	val = m.Validate()
	found := false
	for _, e := range val.Errors {
		if e == `invalid youtube.default_privacy: "friends-only"` {
			found = true
		}
	}
	assert.True(t, found, "expected privacy validation error, got %v", val.Errors)
}

func TestStringMasksPassword(t *testing.T) {
	m := loadClean(t, "")
	m.Set("instagram.password", "hunter2")

	s := m.String()
	assert.NotContains(t, s, "hunter2")
	assert.Contains(t, s, "***masked***")
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.json")
	require.NoError(t, WriteSample(path))

	m := loadClean(t, path)
	assert.Equal(t, "your_instagram_username", m.GetString("instagram.username"))
	assert.Equal(t, "22", m.GetString("youtube.category_id"))
}
