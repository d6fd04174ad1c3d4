package ui

import (
	"clipcast/internal/model"
	"clipcast/internal/progress"
)

type jobUpdateMsg struct {
	U progress.Update
}

type jobLogMsg struct {
	L progress.Log
}

type jobResultMsg struct {
	R progress.Result
}

// runDoneMsg carries the final per-platform results once the service
// returns.
type runDoneMsg struct {
	Results []model.UploadResult
	Err     error
}
