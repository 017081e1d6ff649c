package app

import (
	"fmt"
	"strings"

	"cowork/chatmodel"
)

// View renders the full screen.
func (m Model) View() string {
	if m.width == 0 {
		return "loading…"
	}

	var sections []string

	sections = append(sections, m.renderTitleBar())

	if m.focus == FocusSessionPicker && m.picker != nil {
		sections = append(sections, m.picker.View(m.styles, m.width, m.store.SessionID()))
		return strings.Join(sections, "\n")
	}

	sections = append(sections, m.renderTranscript())

	if errText := m.store.LastError(); errText != "" {
		sections = append(sections, m.styles.Error.Render("✗ "+truncateVisual(errText, m.width-4))+
			"  "+m.styles.Dim.Render(formatKeyHints("Esc", "dismiss")))
	}

	switch m.focus {
	case FocusConfirm:
		if m.confirm != nil {
			sections = append(sections, m.confirm.View(m.styles))
		}
	case FocusEditArgs:
		sections = append(sections, m.renderEditArgs())
	default:
		sections = append(sections, m.styles.InputBox.Render(m.input.View()))
	}

	sections = append(sections, m.renderStatusLine())

	return strings.Join(sections, "\n")
}

// renderTitleBar shows the active session and keybinding hints.
func (m Model) renderTitleBar() string {
	session := m.store.SessionID()
	if session == "" {
		session = "no session"
	}
	left := m.styles.Title.Render("cowork") + "  " + m.styles.Dim.Render(session)
	hints := m.styles.Dim.Render(
		formatKeyHints("Ctrl+N", "new") + "  " +
			formatKeyHints("Ctrl+L", "sessions") + "  " +
			formatKeyHints("Ctrl+C", "quit"))
	return left + "  " + hints
}

// renderTranscript renders the message history plus the streaming tail,
// clipped to the available height.
func (m Model) renderTranscript() string {
	messages := m.store.Messages()
	generating := m.store.Generating()

	var lines []string
	orphanIDs := make(map[int64]struct{})
	for _, msg := range chatmodel.OrphanResults(messages) {
		orphanIDs[msg.ID] = struct{}{}
	}

	for _, msg := range messages {
		switch msg.Role {
		case chatmodel.RoleUser:
			lines = append(lines, m.styles.Title.Render("you ")+msg.Content)

		case chatmodel.RoleAssistant:
			if msg.Content != "" {
				lines = append(lines, m.renderMarkdown(msg.Content))
			}
			if len(msg.ToolCalls) > 0 {
				steps := chatmodel.BuildTrace(msg.ToolCalls, messages, generating)
				for _, step := range steps {
					lines = append(lines, m.renderTraceStep(step))
				}
			}

		case chatmodel.RoleTool:
			// Correlated results surface through the trace; only orphans
			// are rendered standalone.
			if _, ok := orphanIDs[msg.ID]; ok {
				lines = append(lines, m.styles.Dim.Render(
					fmt.Sprintf("? orphan result %s: %s", msg.ToolCallID, chatmodel.PreviewText(msg.Content))))
			}

		case chatmodel.RoleSystem:
			lines = append(lines, m.styles.Dim.Render(msg.Content))
		}
	}

	if stream := m.store.StreamText(); stream != "" {
		lines = append(lines, stream+m.spin.View())
	} else if generating {
		lines = append(lines, m.spin.View()+m.styles.Dim.Render(" thinking…"))
	}

	return m.clipToHeight(lines)
}

// renderTraceStep renders one tool call with its derived status glyph.
func (m Model) renderTraceStep(step chatmodel.TraceStep) string {
	preview := chatmodel.FormatToolPreview(step.Call.Name, step.Call.Arguments)
	switch step.Status {
	case chatmodel.TracePending:
		return m.styles.Pending.Render("○ " + preview)
	case chatmodel.TraceExecuting:
		return m.styles.Running.Render("◌ "+preview) + " " + m.spin.View()
	case chatmodel.TraceComplete:
		line := m.styles.Done.Render("● " + preview)
		if step.Result != nil && step.Result.DurationMs > 0 {
			line += m.styles.Dim.Render(fmt.Sprintf(" (%dms)", step.Result.DurationMs))
		}
		return line
	case chatmodel.TraceError:
		line := m.styles.Error.Render("✗ " + preview)
		if step.Result != nil && step.Result.Error != "" {
			line += " " + m.styles.Dim.Render(chatmodel.PreviewText(step.Result.Error))
		}
		return line
	}
	return preview
}

// renderMarkdown renders assistant prose, falling back to plain text when
// the renderer is unavailable.
func (m Model) renderMarkdown(text string) string {
	if m.mdRenderer == nil {
		return text
	}
	rendered, err := m.mdRenderer.Render(text)
	if err != nil {
		return text
	}
	return rendered
}

// renderEditArgs renders the argument-edit overlay.
func (m Model) renderEditArgs() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Edit arguments"))
	b.WriteString("\n")
	b.WriteString(m.editArea.View())
	b.WriteString("\n")
	if m.editError != "" {
		b.WriteString(m.styles.Error.Render(m.editError))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Dim.Render(formatKeyHints("Ctrl+S", "send") + "  " + formatKeyHints("Esc", "back")))
	return m.styles.InputBox.Render(b.String())
}

// renderStatusLine shows the budget gauge and turn state.
func (m Model) renderStatusLine() string {
	var parts []string

	if m.store.Initializing() {
		parts = append(parts, m.styles.Dim.Render("starting session…"))
	}

	if budget := m.store.Budget(); budget != nil {
		used := budget.UsedFraction()
		gauge := renderGauge(used, 20)
		style := m.styles.BudgetOK
		if used > 0.85 {
			style = m.styles.BudgetHi
		}
		parts = append(parts, style.Render(gauge)+m.styles.Dim.Render(
			fmt.Sprintf(" %d/%d tokens", budget.Total-budget.Remaining, budget.Total)))
	}

	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "  ")
}

// renderGauge draws a fixed-width usage bar.
func renderGauge(fraction float64, width int) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction * float64(width))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

// clipToHeight joins lines and clips them to the transcript viewport,
// honouring the scroll offset (0 = latest).
func (m Model) clipToHeight(lines []string) string {
	// Title bar, input box, status line.
	reserved := 8
	visible := m.height - reserved
	if visible < 3 {
		visible = 3
	}

	// Flatten multi-line renders.
	var flat []string
	for _, l := range lines {
		flat = append(flat, strings.Split(l, "\n")...)
	}

	end := len(flat) - m.scrollOffset
	if end > len(flat) {
		end = len(flat)
	}
	if end < 0 {
		end = 0
	}
	start := end - visible
	if start < 0 {
		start = 0
	}
	return strings.Join(flat[start:end], "\n")
}
