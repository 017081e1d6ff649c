// Package app provides the root TUI application model. It is presentation
// only: it reads reconciled snapshots from the chat store and calls store
// methods in response to key presses; it never mutates the log itself.
package app

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cowork/chat"
	"cowork/chatmodel"
)

// FocusArea indicates which area has focus.
type FocusArea int

const (
	FocusInput         FocusArea = iota // composing a message (default)
	FocusConfirm                        // pending tool confirmation
	FocusEditArgs                       // editing confirmation arguments
	FocusSessionPicker                  // session picker overlay open
)

// Model is the root application model.
type Model struct {
	ctx   context.Context
	store *chat.Store

	// Store notifications, bridged into tea messages.
	notifications <-chan chat.StoreEvent

	// Widgets
	input    textarea.Model
	editArea textarea.Model
	spin     spinner.Model
	confirm  *ConfirmPrompt
	picker   *SessionPicker

	// Rendering
	styles     *Styles
	mdRenderer *MarkdownRenderer

	// UI state
	focus         FocusArea
	width, height int
	scrollOffset  int // 0 = showing latest
	editError     string
}

// NewModel creates the root model.
func NewModel(ctx context.Context, store *chat.Store, notifications <-chan chat.StoreEvent, theme string) Model {
	input := textarea.New()
	input.Placeholder = "Send a message…"
	input.SetHeight(2)
	input.ShowLineNumbers = false
	input.Focus()

	editArea := textarea.New()
	editArea.SetHeight(6)
	editArea.ShowLineNumbers = false

	palette := PaletteForTheme(theme)
	sp := spinner.New(spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Running))))

	return Model{
		ctx:           ctx,
		store:         store,
		notifications: notifications,
		input:         input,
		editArea:      editArea,
		spin:          sp,
		styles:        NewStyles(palette),
		focus:         FocusInput,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.listenForStoreEvents(),
		m.spin.Tick,
	)
}

// listenForStoreEvents waits for the next store notification.
func (m Model) listenForStoreEvents() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return nil
		case ev, ok := <-m.notifications:
			if !ok {
				return nil
			}
			return storeEventMsg{event: ev}
		}
	}
}

// fetchSessions lists sessions for the picker. Failures land in the store's
// error string and re-render through the store event pump.
func (m Model) fetchSessions() tea.Cmd {
	return func() tea.Msg {
		sessions, err := m.store.ListSessions(m.ctx)
		if err != nil {
			return nil
		}
		return sessionsMsg{sessions}
	}
}

// sendMessage submits the composed message.
func (m Model) sendMessage(content string) tea.Cmd {
	return func() tea.Msg {
		// Errors surface through the store's error string.
		_ = m.store.SendMessage(m.ctx, content)
		return nil
	}
}

// respond resolves the pending confirmation.
func (m Model) respond(requestID string, response chatmodel.ConfirmationResponse) tea.Cmd {
	return func() tea.Msg {
		_ = m.store.RespondToConfirmation(m.ctx, requestID, response)
		return nil
	}
}

// deleteSession removes a session and refreshes the picker list.
func (m Model) deleteSession(id string) tea.Cmd {
	return func() tea.Msg {
		if err := m.store.DeleteSession(m.ctx, id); err != nil {
			return nil
		}
		return sessionDeletedMsg{id}
	}
}

// switchToSession loads a session's history and switches to it.
func (m Model) switchToSession(id string) tea.Cmd {
	return func() tea.Msg {
		if err := m.store.LoadAndSwitch(m.ctx, id); err != nil {
			return nil
		}
		return sessionSwitchedMsg{id}
	}
}

// startNewSession forces a fresh session.
func (m Model) startNewSession() tea.Cmd {
	return func() tea.Msg {
		if err := m.store.StartSession(m.ctx, true); err != nil {
			return nil
		}
		return sessionSwitchedMsg{m.store.SessionID()}
	}
}
