package ui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"clipcast/internal/model"
	"clipcast/internal/progress"
)

// Runner is the upload orchestration the TUI drives; the uploader
// service satisfies it.
type Runner interface {
	Run(ctx context.Context, req model.UploadRequest) ([]model.UploadResult, error)
}

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	svc Runner
	req model.UploadRequest

	jobOrder []string
	jobs     map[string]*jobState

	results []model.UploadResult
	runErr  error

	width, height int
	styles        Styles

	// Internal event channel used by the reporter to feed tea messages.
	eventCh chan tea.Msg
}

func NewModel(ctx context.Context, svc Runner, req model.UploadRequest) Model {
	c, cancel := context.WithCancel(ctx)
	sty := defaultStyles()

	platforms := req.Platforms
	if len(platforms) == 0 {
		platforms = model.AllPlatforms
	}

	jobs := make(map[string]*jobState, len(platforms))
	order := make([]string, 0, len(platforms))
	for _, p := range platforms {
		js := newJobState(p, sty)
		jobs[js.id] = &js
		order = append(order, js.id)
	}

	return Model{
		ctx:      c,
		cancel:   cancel,
		svc:      svc,
		req:      req,
		jobs:     jobs,
		jobOrder: order,
		styles:   sty,
		eventCh:  make(chan tea.Msg, 256),
	}
}

// Reporter returns the progress bridge to hand to the service before
// calling Run on the program.
func (m Model) Reporter() progress.Reporter {
	return teaReporter{ch: m.eventCh}
}

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, id := range m.jobOrder {
		sp := m.jobs[id].spinner
		cmds = append(cmds, sp.Tick)
	}
	cmds = append(cmds, m.listenEventsCmd())
	cmds = append(cmds, m.startRunCmd())
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case jobUpdateMsg:
		u := msg.U
		if js, ok := m.jobs[u.JobID]; ok {
			js.stage = u.Stage
			js.percent = u.Percent
			if u.Message != "" {
				js.status = u.Message
			}
			if u.Bytes != nil {
				js.bytes = *u.Bytes
			}
		}
	case jobLogMsg:
		l := msg.L
		if js, ok := m.jobs[l.JobID]; ok {
			line := strings.TrimRight(l.Line, "\r\n")
			if len(js.logsRing) > 1000 {
				js.logsRing = js.logsRing[1:]
			}
			js.logsRing = append(js.logsRing, line)
		}
	case jobResultMsg:
		r := msg.R
		if js, ok := m.jobs[r.JobID]; ok {
			js.done = true
			js.err = r.Err
			if r.Err == nil {
				js.stage = progress.StageCompleted
				js.percent = 100
				js.videoURL = r.VideoURL
				if r.VideoURL != "" {
					js.status = "Published: " + r.VideoURL
				} else {
					js.status = "Completed"
				}
			} else {
				js.stage = progress.StageError
				js.status = r.Err.Error()
				js.percent = -1
			}
		}
	case runDoneMsg:
		m.results = msg.Results
		m.runErr = msg.Err
		// Jobs that never reported (validation failure) show their message.
		for _, res := range msg.Results {
			if js, ok := m.jobs[string(res.Platform)]; ok && !js.done {
				js.done = true
				if res.Success {
					js.stage = progress.StageCompleted
					js.percent = 100
					js.videoURL = res.VideoURL
				} else {
					js.stage = progress.StageError
					js.status = res.ErrorMessage
					js.percent = -1
				}
			}
		}
		return m, tea.Quit
	}

	var cmds []tea.Cmd
	for _, id := range m.jobOrder {
		js := m.jobs[id]
		var c tea.Cmd
		js.spinner, c = js.spinner.Update(msg)
		if c != nil {
			cmds = append(cmds, c)
		}
	}
	cmds = append(cmds, m.listenEventsCmd())
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	summary := m.viewSummary()
	if summary != "" {
		return m.viewHeader() + "\n\n" + m.viewJobs() + "\n" + summary
	}
	return m.viewHeader() + "\n\n" + m.viewJobs()
}

func (m Model) listenEventsCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return nil
		case msg := <-m.eventCh:
			return msg
		}
	}
}

// startRunCmd launches the service once. Per-job events may still be
// queued when runDoneMsg lands, so its handler backfills any job that
// never reported.
func (m Model) startRunCmd() tea.Cmd {
	return func() tea.Msg {
		results, err := m.svc.Run(m.ctx, m.req)
		return runDoneMsg{Results: results, Err: err}
	}
}

type teaReporter struct {
	ch chan tea.Msg
}

func (r teaReporter) Update(u progress.Update) {
	// Completion and error updates must not be dropped.
	if u.Stage == progress.StageCompleted || u.Stage == progress.StageError {
		r.ch <- jobUpdateMsg{U: u}
		return
	}
	select {
	case r.ch <- jobUpdateMsg{U: u}:
	default:
	}
}

func (r teaReporter) Log(l progress.Log) {
	select {
	case r.ch <- jobLogMsg{L: l}:
	default:
	}
}

func (r teaReporter) Result(res progress.Result) {
	r.ch <- jobResultMsg{R: res}
}
