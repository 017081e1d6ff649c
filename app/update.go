package app

import (
	"encoding/json"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"cowork/chat"
	"cowork/chatmodel"
)

// Update handles all messages for the root model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(msg.Width - 4)
		m.editArea.SetWidth(msg.Width - 4)
		if m.mdRenderer != nil {
			_ = m.mdRenderer.SetWidth(msg.Width - 4)
		} else {
			if r, err := NewMarkdownRenderer(msg.Width-4, m.styles.Palette); err == nil {
				m.mdRenderer = r
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case storeEventMsg:
		return m.handleStoreEvent(msg.event)

	case sessionsMsg:
		m.picker = NewSessionPicker(msg.sessions)
		m.focus = FocusSessionPicker
		return m, nil

	case sessionDeletedMsg:
		if m.picker != nil {
			m.picker.Remove()
		}
		return m, nil

	case sessionSwitchedMsg:
		m.focus = FocusInput
		m.picker = nil
		m.scrollOffset = 0
		m.input.Focus()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleStoreEvent reacts to a store mutation.
func (m Model) handleStoreEvent(ev chat.StoreEvent) (tea.Model, tea.Cmd) {
	switch ev.(type) {
	case chat.ConfirmationUpdated:
		if pending := m.store.PendingConfirmation(); pending != nil {
			m.confirm = NewConfirmPrompt(*pending)
			m.focus = FocusConfirm
			m.input.Blur()
		} else {
			m.confirm = nil
			if m.focus == FocusConfirm || m.focus == FocusEditArgs {
				m.focus = FocusInput
				m.input.Focus()
			}
		}
	case chat.LogUpdated, chat.StreamUpdated:
		// Pin the view to the latest output when new content arrives.
		m.scrollOffset = 0
	}
	// Every store event triggers a redraw; keep listening.
	return m, m.listenForStoreEvents()
}

// handleKey routes a key press by focus area.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.focus {
	case FocusConfirm:
		return m.handleConfirmKey(msg)
	case FocusEditArgs:
		return m.handleEditArgsKey(msg)
	case FocusSessionPicker:
		return m.handlePickerKey(msg)
	default:
		return m.handleInputKey(msg)
	}
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm == nil {
		m.focus = FocusInput
		return m, nil
	}

	result := m.confirm.HandleKey(msg)
	if result.Quit {
		return m, tea.Quit
	}
	if result.Matched == "" {
		return m, nil
	}

	if result.Matched == "e" {
		args, err := json.MarshalIndent(m.confirm.Request().Arguments, "", "  ")
		if err != nil {
			args = []byte("{}")
		}
		m.editArea.SetValue(string(args))
		m.editArea.Focus()
		m.editError = ""
		m.focus = FocusEditArgs
		return m, textarea.Blink
	}

	response, ok := ResponseForKey(result.Matched)
	if !ok {
		return m, nil
	}
	requestID := m.confirm.Request().RequestID
	m.confirm = nil
	m.focus = FocusInput
	m.input.Focus()
	return m, m.respond(requestID, response)
}

func (m Model) handleEditArgsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// Back to the confirm prompt without resolving.
		m.editArea.Blur()
		m.editError = ""
		m.focus = FocusConfirm
		return m, nil

	case "ctrl+s":
		if m.confirm == nil {
			// The request resolved elsewhere while editing.
			m.editArea.Blur()
			m.focus = FocusInput
			m.input.Focus()
			return m, nil
		}
		var args map[string]interface{}
		if err := json.Unmarshal([]byte(m.editArea.Value()), &args); err != nil {
			m.editError = "invalid JSON: " + err.Error()
			return m, nil
		}
		requestID := m.confirm.Request().RequestID
		m.confirm = nil
		m.editArea.Blur()
		m.editError = ""
		m.focus = FocusInput
		m.input.Focus()
		return m, m.respond(requestID, chatmodel.EditedAndConfirmed(args))
	}

	var cmd tea.Cmd
	m.editArea, cmd = m.editArea.Update(msg)
	return m, cmd
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker == nil {
		m.focus = FocusInput
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.picker = nil
		m.focus = FocusInput
		m.input.Focus()
		return m, nil
	case "up", "k":
		m.picker.MoveUp()
		return m, nil
	case "down", "j":
		m.picker.MoveDown()
		return m, nil
	case "enter":
		if item := m.picker.Selected(); item != nil {
			return m, m.switchToSession(item.ID)
		}
		return m, nil
	case "d":
		if item := m.picker.Selected(); item != nil {
			return m, m.deleteSession(item.ID)
		}
		return m, nil
	case "n":
		return m, m.startNewSession()
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		content := m.input.Value()
		if content == "" || m.store.Generating() {
			return m, nil
		}
		m.input.Reset()
		return m, m.sendMessage(content)

	case "esc":
		m.store.ClearError()
		return m, nil

	case "ctrl+n":
		return m, m.startNewSession()

	case "ctrl+l":
		return m, m.fetchSessions()

	case "pgup":
		m.scrollOffset += 5
		return m, nil

	case "pgdown":
		m.scrollOffset -= 5
		if m.scrollOffset < 0 {
			m.scrollOffset = 0
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
