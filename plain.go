package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/ergochat/readline"

	"cowork/chat"
	"cowork/chatmodel"
)

// plainPrinter mirrors store mutations to stdout as plain lines. It is the
// non-TTY counterpart of the TUI, sharing the same store and guard.
type plainPrinter struct {
	store *chat.Store
	out   io.Writer
	mu    sync.Mutex
	seen  int
}

func newPlainPrinter(store *chat.Store, out io.Writer) *plainPrinter {
	return &plainPrinter{store: store, out: out}
}

// OnStoreEvent implements chat.Observer.
func (p *plainPrinter) OnStoreEvent(event chat.StoreEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch ev := event.(type) {
	case chat.SessionChanged:
		p.seen = 0
		fmt.Fprintf(p.out, "-- session %s --\n", ev.New)
		p.printNewMessages()

	case chat.LogUpdated:
		p.printNewMessages()

	case chat.ConfirmationUpdated:
		if pending := p.store.PendingConfirmation(); pending != nil {
			fmt.Fprintf(p.out, "confirm %s: %s\n", pending.ToolName, pending.Preview)
			if pending.IsDestructive {
				fmt.Fprintln(p.out, "  (destructive)")
			}
			fmt.Fprintln(p.out, "  reply: r=reject  a=allow  s=allow-session  A=allow-always  e={json}=edit")
		}

	case chat.ErrorChanged:
		if errText := p.store.LastError(); errText != "" {
			fmt.Fprintf(p.out, "error: %s\n", errText)
		}

	case chat.BudgetUpdated:
		if budget := p.store.Budget(); budget != nil {
			fmt.Fprintf(p.out, "budget: %d/%d tokens used\n", budget.Total-budget.Remaining, budget.Total)
		}
	}
}

// printNewMessages prints messages appended since the last call.
func (p *plainPrinter) printNewMessages() {
	messages := p.store.Messages()
	for ; p.seen < len(messages); p.seen++ {
		msg := messages[p.seen]
		switch msg.Role {
		case chatmodel.RoleUser:
			fmt.Fprintf(p.out, "you> %s\n", msg.Content)
		case chatmodel.RoleAssistant:
			if msg.Content != "" {
				fmt.Fprintf(p.out, "assistant> %s\n", msg.Content)
			}
			for _, call := range msg.ToolCalls {
				fmt.Fprintf(p.out, "tool-call> %s\n", chatmodel.FormatToolPreview(call.Name, call.Arguments))
			}
		case chatmodel.RoleTool:
			status := "ok"
			if msg.ToolResult != nil && msg.ToolResult.Error != "" {
				status = "error: " + msg.ToolResult.Error
			}
			fmt.Fprintf(p.out, "tool-result> %s %s\n", msg.ToolCallID, status)
		case chatmodel.RoleSystem:
			fmt.Fprintf(p.out, "system> %s\n", msg.Content)
		}
	}
}

// runPlain runs the line-based REPL.
func runPlain(ctx context.Context, store *chat.Store) error {
	printer := newPlainPrinter(store, os.Stdout)
	store.AddObserver(printer)
	printer.OnStoreEvent(chat.LogUpdated{})

	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt: "> ",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.ReadLine()
		if err == readline.ErrInterrupt || err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if pending := store.PendingConfirmation(); pending != nil {
			if handleConfirmLine(ctx, store, pending, line) {
				continue
			}
		}

		if strings.HasPrefix(line, "/") {
			if quit := handleCommand(ctx, store, rl, line); quit {
				return nil
			}
			continue
		}

		_ = store.SendMessage(ctx, line)
	}
}

// handleConfirmLine interprets a REPL line as a confirmation resolution.
// Returns false when the line is not a recognized resolution, in which case
// it falls through to normal handling.
func handleConfirmLine(ctx context.Context, store *chat.Store, pending *chatmodel.ConfirmationRequest, line string) bool {
	var response chatmodel.ConfirmationResponse
	switch {
	case line == "r":
		response = chatmodel.Rejected()
	case line == "a":
		response = chatmodel.AllowOnce()
	case line == "s":
		response = chatmodel.AllowForSession()
	case line == "A":
		response = chatmodel.AllowAlways()
	case strings.HasPrefix(line, "e="):
		var args map[string]interface{}
		if err := json.Unmarshal([]byte(line[2:]), &args); err != nil {
			fmt.Printf("invalid JSON: %v\n", err)
			return true
		}
		response = chatmodel.EditedAndConfirmed(args)
	default:
		return false
	}
	_ = store.RespondToConfirmation(ctx, pending.RequestID, response)
	return true
}

// handleCommand runs a /-prefixed REPL command. Returns true to quit.
func handleCommand(ctx context.Context, store *chat.Store, rl *readline.Instance, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true

	case "/new":
		_ = store.StartSession(ctx, true)

	case "/sessions":
		sessions, err := store.ListSessions(ctx)
		if err != nil {
			return false
		}
		for _, s := range sessions {
			marker := " "
			if s.ID == store.SessionID() {
				marker = "*"
			}
			fmt.Printf("%s %s  %d messages  %s\n", marker, s.ID, s.MessageCount, chatmodel.PreviewText(s.Preview))
		}

	case "/switch":
		if len(fields) < 2 {
			fmt.Println("usage: /switch <session-id>")
			return false
		}
		_ = store.LoadAndSwitch(ctx, fields[1])

	case "/delete":
		if len(fields) < 2 {
			fmt.Println("usage: /delete <session-id>")
			return false
		}
		_ = store.DeleteSession(ctx, fields[1])

	case "/cleanup":
		if n, err := store.CleanupEmptySessions(ctx); err == nil {
			fmt.Printf("cleaned %d empty sessions\n", n)
		}

	case "/budget":
		store.RefreshBudget(ctx, store.SessionID())

	default:
		fmt.Println("commands: /new /sessions /switch /delete /cleanup /budget /quit")
	}
	return false
}
