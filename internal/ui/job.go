package ui

import (
	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"

	"clipcast/internal/model"
	"clipcast/internal/progress"
)

type jobState struct {
	id       string
	platform model.Platform
	stage    progress.Stage
	status   string
	err      error
	done     bool

	videoURL string
	bytes    int64
	percent  float64 // -1 means unknown

	spinner spinner.Model
	bar     bubblesprogress.Model

	// Recent log lines, kept small.
	logsRing []string
}

func newJobState(p model.Platform, styles Styles) jobState {
	sp := spinner.New()
	sp.Style = styles.Spinner
	bar := bubblesprogress.New(
		bubblesprogress.WithDefaultGradient(),
		bubblesprogress.WithWidth(40),
	)
	return jobState{
		id:       string(p),
		platform: p,
		stage:    progress.StageValidating,
		status:   "Queued",
		percent:  -1,
		spinner:  sp,
		bar:      bar,
	}
}
