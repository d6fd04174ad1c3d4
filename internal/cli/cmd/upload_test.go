package cmd

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"clipcast/internal/model"
)

func TestExitCodeFor(t *testing.T) {
	ok := model.UploadResult{Platform: model.PlatformYouTube, Success: true}
	authFail := model.UploadResult{
		Platform: model.PlatformYouTube,
		Err:      fmt.Errorf("token refresh: %w", model.ErrAuth),
	}
	netFail := model.UploadResult{
		Platform: model.PlatformInstagram,
		Err:      fmt.Errorf("rupload: %w", model.ErrNetwork),
	}
	valFail := model.UploadResult{
		Platform: model.PlatformInstagram,
		Err:      fmt.Errorf("too short: %w", model.ErrValidation),
	}

	tests := []struct {
		name    string
		results []model.UploadResult
		want    int
	}{
		{"all succeed", []model.UploadResult{ok, ok}, ExitOK},
		{"all auth failures", []model.UploadResult{authFail, authFail}, ExitAuthError},
		{"all validation failures", []model.UploadResult{valFail, valFail}, ExitValidationError},
		{"mixed auth and network", []model.UploadResult{authFail, netFail}, ExitUploadError},
		{"mixed validation and auth", []model.UploadResult{valFail, authFail}, ExitUploadError},
		{"partial success with auth failure", []model.UploadResult{ok, authFail}, ExitAuthError},
		{"unclassified failure", []model.UploadResult{ok, {Platform: model.PlatformInstagram, Err: fmt.Errorf("boom")}}, ExitUploadError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCodeFor(tt.results))
		})
	}
}
