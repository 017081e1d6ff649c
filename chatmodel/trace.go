package chatmodel

// TraceStatus is the derived execution state of a single tool call.
type TraceStatus string

const (
	TracePending   TraceStatus = "pending"
	TraceExecuting TraceStatus = "executing"
	TraceComplete  TraceStatus = "complete"
	TraceError     TraceStatus = "error"
)

// TraceStep joins one ToolCall to zero-or-one result. It is recomputed from
// the message log on every read and never stored, so it cannot drift from
// the source history.
type TraceStep struct {
	Result *ToolResult
	Call   ToolCall
	Status TraceStatus
}

// BuildTrace derives one TraceStep per tool call by scanning the tool-role
// messages once and looking each call up by its correlation id. A call with
// no result is "executing" while the turn is still generating, otherwise
// "pending". The input slices are not mutated.
func BuildTrace(calls []ToolCall, messages []Message, generating bool) []TraceStep {
	results := resultsByCallID(messages)

	steps := make([]TraceStep, len(calls))
	for i, call := range calls {
		step := TraceStep{Call: call}
		if res, ok := results[call.ID]; ok {
			step.Result = res
			if res.Error != "" {
				step.Status = TraceError
			} else {
				step.Status = TraceComplete
			}
		} else if generating {
			step.Status = TraceExecuting
		} else {
			step.Status = TracePending
		}
		steps[i] = step
	}
	return steps
}

// OrphanResults returns tool-role messages whose correlation id matches no
// tool call in any assistant message. Orphans indicate a correlation gap
// (e.g. a partially loaded history) and must stay visible, rendered
// standalone rather than attached to a trace.
func OrphanResults(messages []Message) []Message {
	known := make(map[string]struct{})
	for _, msg := range messages {
		if msg.Role != RoleAssistant {
			continue
		}
		for _, call := range msg.ToolCalls {
			known[call.ID] = struct{}{}
		}
	}

	var orphans []Message
	for _, msg := range messages {
		if msg.Role != RoleTool || msg.ToolCallID == "" {
			continue
		}
		if _, ok := known[msg.ToolCallID]; !ok {
			orphans = append(orphans, msg)
		}
	}
	return orphans
}

// HasDuplicateCallIDs reports whether any tool call id repeats within the
// given calls. Call ids must be unique within one assistant message.
func HasDuplicateCallIDs(calls []ToolCall) bool {
	seen := make(map[string]struct{}, len(calls))
	for _, call := range calls {
		if _, ok := seen[call.ID]; ok {
			return true
		}
		seen[call.ID] = struct{}{}
	}
	return false
}

// resultsByCallID builds a correlation-id lookup over tool-role messages.
// A later result for the same id wins, matching engine retry semantics.
func resultsByCallID(messages []Message) map[string]*ToolResult {
	results := make(map[string]*ToolResult)
	for i := range messages {
		msg := &messages[i]
		if msg.Role != RoleTool || msg.ToolCallID == "" {
			continue
		}
		if msg.ToolResult != nil {
			results[msg.ToolCallID] = msg.ToolResult
			continue
		}
		// Tool message without an explicit result payload: treat the
		// content as a successful result so the trace still completes.
		results[msg.ToolCallID] = &ToolResult{
			Success:    true,
			Result:     msg.Content,
			ToolCallID: msg.ToolCallID,
		}
	}
	return results
}
