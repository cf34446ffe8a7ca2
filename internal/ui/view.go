package ui

import (
	"fmt"
	"strings"
)

func (m Model) viewHeader() string {
	done, total := 0, len(m.order)
	for _, in := range m.order {
		if m.jobs[in].done {
			done++
		}
	}
	title := m.styles.Title.Render(fmt.Sprintf("vidconv: batch to %s", m.format))
	sub := m.styles.Subtitle.Render(fmt.Sprintf("Files: %d/%d done • q: cancel", done, total))
	return title + "\n" + sub
}

func (m Model) viewJobs() string {
	var b strings.Builder
	for _, in := range m.order {
		b.WriteString(m.viewJob(m.jobs[in]))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewJob(js *jobState) string {
	left := m.styles.JobTitle.Render(truncate(js.input, 48))
	state := m.styles.forState(js.state).Render(string(js.state))

	var right string
	switch {
	case js.percent >= 0 && js.percent <= 100:
		right = fmt.Sprintf("%s %5.1f%%", js.bar.ViewAs(js.percent/100.0), js.percent)
	case js.done && js.err == nil:
		right = m.styles.Success.Render("✓ done")
	case js.err != nil && js.state == rowSkipped:
		right = m.styles.Warning.Render("- skipped")
	case js.err != nil:
		right = m.styles.Error.Render("✗ error")
	case js.state == rowRunning:
		right = m.styles.Spinner.Render(js.spinner.View()) + " " + m.styles.Faint.Render("duration unknown")
	default:
		right = m.styles.Spinner.Render(js.spinner.View()) + " " + m.styles.Faint.Render("waiting")
	}

	line1 := fmt.Sprintf("%s  %s", left, state)
	line2 := m.styles.JobInfo.Render(js.status)
	return m.styles.Box.Render(line1 + "\n" + right + "\n" + line2)
}

func (m Model) viewSummary() string {
	if m.report == nil {
		if m.batchErr != nil {
			return m.styles.Error.Render("✗ " + m.batchErr.Error())
		}
		return ""
	}
	r := m.report
	var b strings.Builder
	line := fmt.Sprintf("%s: %d succeeded, %d failed, %d invalid", r.Outcome, r.Succeeded, r.Failed, r.Invalid)
	switch {
	case r.Failed == 0 && r.Invalid == 0 && r.Succeeded > 0:
		b.WriteString(m.styles.Success.Render("✓ " + line))
	case r.Succeeded > 0:
		b.WriteString(m.styles.Warning.Render("! " + line))
	default:
		b.WriteString(m.styles.Error.Render("✗ " + line))
	}
	b.WriteString("\n")
	for _, path := range r.SucceededFiles {
		b.WriteString(m.styles.Success.Render("  • " + path))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if n <= 0 || len(rs) <= n {
		return s
	}
	return "…" + string(rs[len(rs)-n+1:])
}
