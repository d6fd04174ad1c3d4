package ui

import (
	"fmt"
	"strings"

	"clipcast/internal/model"
	"clipcast/internal/progress"
	"clipcast/internal/util/format"
)

func (m Model) viewHeader() string {
	done, total := 0, len(m.jobOrder)
	for _, id := range m.jobOrder {
		if m.jobs[id].done {
			done++
		}
	}
	title := m.styles.Title.Render("clipcast — Shorts & Reels uploader")
	sub := m.styles.Subtitle.Render(fmt.Sprintf("Platforms: %d/%d done • q: quit", done, total))
	return title + "\n" + sub
}

func (m Model) viewJobs() string {
	var b strings.Builder
	for _, id := range m.jobOrder {
		js := m.jobs[id]
		b.WriteString(m.viewJob(js))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewJob(js *jobState) string {
	stageStyle := m.styles.JobInfo
	switch js.stage {
	case progress.StageValidating, progress.StageAuthenticating:
		stageStyle = m.styles.StageCheck
	case progress.StageUploading:
		stageStyle = m.styles.StageUp
	case progress.StageProcessing:
		stageStyle = m.styles.StageProc
	case progress.StageCompleted:
		stageStyle = m.styles.Success
	case progress.StageError:
		stageStyle = m.styles.Error
	}

	left := m.styles.JobTitle.Render(platformLabel(js.platform))
	stage := stageStyle.Render(string(js.stage))

	var right string
	if js.percent >= 0 && js.percent <= 100 {
		right = fmt.Sprintf("%s %5.1f%%", js.bar.ViewAs(js.percent/100.0), js.percent)
		if js.bytes > 0 {
			right += "  " + m.styles.Faint.Render(format.HumanizeBytes(js.bytes))
		}
	} else if js.done && js.err == nil {
		right = m.styles.Success.Render("✓ done")
	} else if js.err != nil {
		right = m.styles.Error.Render("✗ error")
	} else {
		right = m.styles.Spinner.Render(js.spinner.View()) + " " + m.styles.Faint.Render("waiting")
	}

	line1 := fmt.Sprintf("%s  %s", left, stage)
	line2 := m.styles.JobInfo.Render(js.status)
	return m.styles.Box.Render(line1 + "\n" + right + "\n" + line2)
}

func (m Model) viewSummary() string {
	var published []string
	for _, id := range m.jobOrder {
		js := m.jobs[id]
		if js.done && js.err == nil && js.videoURL != "" {
			published = append(published, fmt.Sprintf("%s: %s", platformLabel(js.platform), js.videoURL))
		}
	}

	if len(published) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Subtitle.Render("✓ Published:"))
	b.WriteString("\n")
	for _, line := range published {
		b.WriteString(m.styles.Success.Render("  • " + line))
		b.WriteString("\n")
	}
	return b.String()
}

func platformLabel(p model.Platform) string {
	switch p {
	case model.PlatformYouTube:
		return "YouTube Shorts"
	case model.PlatformInstagram:
		return "Instagram Reels"
	}
	return string(p)
}
