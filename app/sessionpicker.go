package app

import (
	"fmt"
	"strings"

	"cowork/chatmodel"
)

// SessionPicker is a simple vertical list over the persisted sessions.
type SessionPicker struct {
	sessions []chatmodel.SessionListItem
	cursor   int
}

// NewSessionPicker creates a picker over the given sessions.
func NewSessionPicker(sessions []chatmodel.SessionListItem) *SessionPicker {
	return &SessionPicker{sessions: sessions}
}

// MoveUp moves the cursor up one row.
func (p *SessionPicker) MoveUp() {
	if p.cursor > 0 {
		p.cursor--
	}
}

// MoveDown moves the cursor down one row.
func (p *SessionPicker) MoveDown() {
	if p.cursor < len(p.sessions)-1 {
		p.cursor++
	}
}

// Selected returns the session under the cursor, or nil when empty.
func (p *SessionPicker) Selected() *chatmodel.SessionListItem {
	if len(p.sessions) == 0 {
		return nil
	}
	return &p.sessions[p.cursor]
}

// Remove drops the session under the cursor from the list (after a delete).
func (p *SessionPicker) Remove() {
	if len(p.sessions) == 0 {
		return
	}
	p.sessions = append(p.sessions[:p.cursor], p.sessions[p.cursor+1:]...)
	if p.cursor >= len(p.sessions) && p.cursor > 0 {
		p.cursor--
	}
}

// View renders the picker.
func (p *SessionPicker) View(s *Styles, width int, activeID string) string {
	var b strings.Builder
	b.WriteString(s.Title.Render("Sessions"))
	b.WriteString("\n\n")

	if len(p.sessions) == 0 {
		b.WriteString(s.Dim.Render("no sessions"))
	}

	for i, item := range p.sessions {
		marker := "  "
		if i == p.cursor {
			marker = "> "
		}
		line := fmt.Sprintf("%s%s  %s", marker, item.ID, s.Dim.Render(fmt.Sprintf("%d messages", item.MessageCount)))
		if item.Preview != "" {
			line += "  " + s.Dim.Render(chatmodel.PreviewText(item.Preview))
		}
		if item.ID == activeID {
			line += "  " + s.Title.Render("(active)")
		}
		if width > 4 {
			line = truncateVisual(line, width-2)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	hints := []string{
		formatKeyHints("↑/↓", "move"),
		formatKeyHints("Enter", "switch"),
		formatKeyHints("d", "delete"),
		formatKeyHints("n", "new"),
		formatKeyHints("Esc", "close"),
	}
	b.WriteString(s.Dim.Render(strings.Join(hints, "  ")))

	return s.InputBox.Render(b.String())
}
