package ui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"clipcast/internal/model"
	"clipcast/internal/progress"
)

// Run drives the upload through the TUI and returns the per-platform
// results once every job has finished or the user quit.
func Run(ctx context.Context, svc Runner, req model.UploadRequest) ([]model.UploadResult, error) {
	m := NewModel(ctx, svc, req)
	if s, ok := svc.(interface{ SetReporter(progress.Reporter) }); ok {
		s.SetReporter(m.Reporter())
	}
	prog := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	final, err := prog.Run()
	if err != nil {
		return nil, err
	}
	fm, ok := final.(Model)
	if !ok {
		return nil, errors.New("unexpected final model")
	}
	if fm.runErr != nil {
		return fm.results, fm.runErr
	}
	if fm.results == nil {
		return nil, errors.New("upload canceled")
	}
	return fm.results, nil
}
