// Package config merges defaults, an optional JSON/YAML file, and
// environment variables into a single dotted-key configuration view.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"clipcast/internal/dirs"
)

// envMappings documents the explicit environment variable → dotted key
// contract. CLIPCAST_* variables map automatically on top of these.
var envMappings = map[string]string{
	"YOUTUBE_CREDENTIALS_PATH": "youtube.credentials_path",
	"YOUTUBE_TOKEN_PATH":       "youtube.token_path",
	"YOUTUBE_CATEGORY_ID":      "youtube.category_id",
	"YOUTUBE_DEFAULT_PRIVACY":  "youtube.default_privacy",

	"INSTAGRAM_USERNAME":     "instagram.username",
	"INSTAGRAM_PASSWORD":     "instagram.password",
	"INSTAGRAM_SESSION_PATH": "instagram.session_path",

	"MAX_FILE_SIZE":          "video.max_file_size",
	"MAX_DURATION_YOUTUBE":   "video.max_duration_youtube",
	"MAX_DURATION_INSTAGRAM": "video.max_duration_instagram",

	"UPLOAD_TIMEOUT": "upload.timeout",
	"MAX_RETRIES":    "youtube.max_retries",

	"LOG_LEVEL": "logging.level",
	"LOG_FILE":  "logging.file_path",
}

// Manager wraps viper with the uploader's defaults and env contract.
type Manager struct {
	v    *viper.Viper
	path string // config file actually loaded, if any
}

// Load builds a Manager. explicitPath points at a config file; when empty,
// the usual locations are searched (data/, ., user config dir) and a missing
// file is not an error.
func Load(explicitPath string) (*Manager, error) {
	// .env support mirrors the original tool; missing file is fine.
	_ = godotenv.Load()

	_ = dirs.EnsureAll()

	v := viper.New()
	setDefaults(v)

	// Environment: CLIPCAST_* plus the documented explicit names.
	v.SetEnvPrefix("CLIPCAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for env, key := range envMappings {
		_ = v.BindEnv(key, env)
	}

	m := &Manager{v: v}

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", explicitPath, err)
		}
		m.path = explicitPath
		return m, nil
	}

	v.SetConfigName("config") // config.{json,yaml,yml}
	v.AddConfigPath("data")
	v.AddConfigPath(".")
	if cfgDir, err := dirs.ConfigDir(); err == nil {
		v.AddConfigPath(cfgDir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errorsAs(err, &notFound) {
			// A present-but-broken file is worth a warning, not a hard stop.
			log.Warn().Err(err).Msg("failed to load config file")
		}
	} else {
		m.path = v.ConfigFileUsed()
		log.Debug().Str("path", m.path).Msg("configuration loaded")
	}
	return m, nil
}

func errorsAs(err error, target *viper.ConfigFileNotFoundError) bool {
	if e, ok := err.(viper.ConfigFileNotFoundError); ok {
		*target = e
		return true
	}
	return false
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("youtube.credentials_path", "data/youtube_credentials.json")
	v.SetDefault("youtube.token_path", "data/youtube_token.json")
	v.SetDefault("youtube.category_id", "22") // People & Blogs
	v.SetDefault("youtube.default_privacy", "public")
	v.SetDefault("youtube.default_tags", []string{"Shorts", "Video", "Content"})
	v.SetDefault("youtube.chunk_size", 4*1024*1024)
	v.SetDefault("youtube.max_retries", 3)

	v.SetDefault("instagram.session_path", "data/instagram_session.json")
	v.SetDefault("instagram.max_retries", 3)
	v.SetDefault("instagram.delay_between_uploads", 30)
	v.SetDefault("instagram.default_hashtags", []string{"#Reels", "#Instagram", "#Video"})

	v.SetDefault("video.max_file_size", 500*1024*1024)
	v.SetDefault("video.supported_formats", []string{".mp4", ".mov", ".avi"})
	v.SetDefault("video.max_duration_youtube", 60)
	v.SetDefault("video.max_duration_instagram", 90)
	v.SetDefault("video.min_duration", 1.0)
	v.SetDefault("video.preferred_aspect_ratio", 9.0/16.0)
	v.SetDefault("video.min_resolution", []int{720, 1280})
	v.SetDefault("video.max_resolution", []int{1080, 1920})

	v.SetDefault("upload.concurrent_uploads", true)
	v.SetDefault("upload.retry_attempts", 3)
	v.SetDefault("upload.timeout", 300)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file_path", "")

	v.SetDefault("app.verbose", false)
}

// Path returns the config file loaded, or "" when running on defaults.
func (m *Manager) Path() string { return m.path }

// Get returns the raw value at a dotted key path.
func (m *Manager) Get(key string) any { return m.v.Get(key) }

// Set overrides the value at a dotted key path.
func (m *Manager) Set(key string, value any) { m.v.Set(key, value) }

// IsSet reports whether the key has any value (default, file, or env).
func (m *Manager) IsSet(key string) bool { return m.v.IsSet(key) }

func (m *Manager) GetString(key string) string        { return m.v.GetString(key) }
func (m *Manager) GetInt(key string) int              { return m.v.GetInt(key) }
func (m *Manager) GetInt64(key string) int64          { return m.v.GetInt64(key) }
func (m *Manager) GetFloat64(key string) float64      { return m.v.GetFloat64(key) }
func (m *Manager) GetBool(key string) bool            { return m.v.GetBool(key) }
func (m *Manager) GetStringSlice(key string) []string { return m.v.GetStringSlice(key) }

// UploadTimeout returns upload.timeout as a duration (configured in seconds).
func (m *Manager) UploadTimeout() time.Duration {
	return time.Duration(m.v.GetInt("upload.timeout")) * time.Second
}

// Section returns a whole top-level section as a nested map.
func (m *Manager) Section(name string) map[string]any {
	sub := m.v.Sub(name)
	if sub == nil {
		return map[string]any{}
	}
	return sub.AllSettings()
}

// SaveTo writes the effective configuration to path; the format follows the
// extension (.json, .yaml, .yml).
func (m *Manager) SaveTo(path string) error {
	if path == "" {
		path = m.path
	}
	if path == "" {
		path = "data/config.json"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := m.v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	log.Info().Str("path", path).Msg("configuration saved")
	return nil
}

// VideoLimits is the typed view the validator consumes.
type VideoLimits struct {
	MaxFileSize          int64
	SupportedFormats     []string
	MaxDurationYouTube   float64
	MaxDurationInstagram float64
	MinDuration          float64
	PreferredAspectRatio float64
	MinWidth, MinHeight  int
	MaxWidth, MaxHeight  int
}

// VideoLimits resolves the video.* section into threshold values.
func (m *Manager) VideoLimits() VideoLimits {
	l := VideoLimits{
		MaxFileSize:          m.v.GetInt64("video.max_file_size"),
		SupportedFormats:     m.v.GetStringSlice("video.supported_formats"),
		MaxDurationYouTube:   m.v.GetFloat64("video.max_duration_youtube"),
		MaxDurationInstagram: m.v.GetFloat64("video.max_duration_instagram"),
		MinDuration:          m.v.GetFloat64("video.min_duration"),
		PreferredAspectRatio: m.v.GetFloat64("video.preferred_aspect_ratio"),
	}
	if res := m.v.GetIntSlice("video.min_resolution"); len(res) == 2 {
		l.MinWidth, l.MinHeight = res[0], res[1]
	}
	if res := m.v.GetIntSlice("video.max_resolution"); len(res) == 2 {
		l.MaxWidth, l.MaxHeight = res[0], res[1]
	}
	return l
}

// Validation reports config problems split by severity.
type Validation struct {
	Errors   []string
	Warnings []string
}

// Validate checks the configuration for missing credentials and bad values.
func (m *Manager) Validate() Validation {
	var val Validation

	if p := m.GetString("youtube.credentials_path"); p == "" {
		val.Errors = append(val.Errors, "youtube.credentials_path is empty")
	} else if _, err := os.Stat(p); err != nil {
		val.Errors = append(val.Errors, "YouTube credentials file not found. Download from Google Cloud Console.")
	}

	if m.GetString("instagram.username") == "" {
		val.Warnings = append(val.Warnings, "Instagram username not configured")
	}
	if m.GetString("instagram.password") == "" {
		val.Warnings = append(val.Warnings, "Instagram password not configured")
	}

	if m.GetInt64("video.max_file_size") <= 0 {
		val.Errors = append(val.Errors, "Invalid max file size configuration")
	}
	if m.GetFloat64("video.min_duration") <= 0 {
		val.Warnings = append(val.Warnings, "video.min_duration should be positive")
	}
	if !validPrivacy(m.GetString("youtube.default_privacy")) {
		val.Errors = append(val.Errors, fmt.Sprintf("invalid youtube.default_privacy: %q", m.GetString("youtube.default_privacy")))
	}

	if _, err := os.Stat("data"); err != nil {
		val.Warnings = append(val.Warnings, "Data directory does not exist. It will be created automatically.")
	}

	return val
}

func validPrivacy(s string) bool {
	switch s {
	case "public", "unlisted", "private":
		return true
	}
	return false
}

// CredentialsInfo summarizes credential material for the doctor command.
type CredentialsInfo struct {
	YouTubeCredentialsPath  string
	YouTubeCredentialsExist bool
	YouTubeTokenPath        string
	YouTubeTokenExists      bool
	InstagramUsernameSet    bool
	InstagramPasswordSet    bool
	InstagramSessionPath    string
	InstagramSessionExists  bool
}

// CredentialsInfo gathers configured credential locations and their presence.
func (m *Manager) CredentialsInfo() CredentialsInfo {
	info := CredentialsInfo{
		YouTubeCredentialsPath: m.GetString("youtube.credentials_path"),
		YouTubeTokenPath:       m.GetString("youtube.token_path"),
		InstagramUsernameSet:   m.GetString("instagram.username") != "",
		InstagramPasswordSet:   m.GetString("instagram.password") != "",
		InstagramSessionPath:   m.GetString("instagram.session_path"),
	}
	info.YouTubeCredentialsExist = fileExists(info.YouTubeCredentialsPath)
	info.YouTubeTokenExists = fileExists(info.YouTubeTokenPath)
	info.InstagramSessionExists = fileExists(info.InstagramSessionPath)
	return info
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// WriteSample writes a fully populated sample config to path.
func WriteSample(path string) error {
	v := viper.New()
	setDefaults(v)
	v.Set("instagram.username", "your_instagram_username")
	v.Set("instagram.password", "your_instagram_password")

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// String renders the effective configuration as JSON with the Instagram
// password masked.
func (m *Manager) String() string {
	settings := m.v.AllSettings()
	if ig, ok := settings["instagram"].(map[string]any); ok {
		if _, ok := ig["password"]; ok {
			ig["password"] = "***masked***"
		}
	}
	out, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return string(out)
}
