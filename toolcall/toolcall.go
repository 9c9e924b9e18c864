// Package toolcall reconstructs complete tool-call invocations from the
// fragments an LLM provider streams token by token (spec.md §3.4, §4.4).
// It is grounded on the teacher's features/model/anthropic anthropicStreamer:
// the same toolBuffer/accumulate-then-parse shape, adapted here to the
// (message_id, index) linkage key and explicit state machine the spec
// names, instead of a provider SDK's content-block index.
package toolcall

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/errajibadr/langgraph-agent-repo/event"
	"github.com/errajibadr/langgraph-agent-repo/message"
	"github.com/errajibadr/langgraph-agent-repo/scope"
)

// Status is the internal lifecycle status of a tracked tool call, per the
// state machine in §4.4. It is a superset of event.ToolCallStatus: it also
// tracks RESULT_PENDING, which never itself produces an event.
type Status string

const (
	StatusInitializing  Status = "INITIALIZING"
	StatusStreaming     Status = "STREAMING"
	StatusCompleted     Status = "COMPLETED"
	StatusError         Status = "ERROR"
	StatusResultPending Status = "RESULT_PENDING"
	StatusResultSuccess Status = "RESULT_SUCCESS"
	StatusResultError   Status = "RESULT_ERROR"
)

// Key is the tool-call tracker's linkage key: the first chunk of a call
// carries its own (message_id, index); every later fragment for the same
// call repeats that pair without re-sending id/name.
type Key struct {
	MessageID string
	Index     int
}

// Call is the tracked state for one (message_id, index) tool call.
type Call struct {
	ToolCallID      string
	ToolName        string
	Scope           string
	Status          Status
	AccumulatedArgs string
	ParsedArgs      any
	Result          any

	balance jsonBalance
}

// Tracker owns every in-flight and completed tool call for one streaming
// session (§3.9). It is not safe for concurrent use — the orchestrator
// drives it from its single processing goroutine (§5).
type Tracker struct {
	byKey        map[Key]*Call
	byToolCallID map[string]Key
	schema       *jsonschema.Schema
}

// Option configures a Tracker at construction.
type Option func(*Tracker)

// WithSchema enables strict JSON-Schema validation of parsed_args once a
// call's argument buffer closes. A schema-rejected payload is treated the
// same as a JSON parse failure: the call transitions to ERROR.
func WithSchema(schema *jsonschema.Schema) Option {
	return func(t *Tracker) { t.schema = schema }
}

// NewTracker constructs an empty Tracker for one streaming session.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		byKey:        make(map[Key]*Call),
		byToolCallID: make(map[string]Key),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Reset drops every tracked call, per §4.4's "on session end, drop all
// tracker entries."
func (t *Tracker) Reset() {
	t.byKey = make(map[Key]*Call)
	t.byToolCallID = make(map[string]Key)
}

// HandleChunk feeds one tool-call chunk into the tracker and returns zero or
// more ToolCall events produced by the resulting state transition(s). scp
// is the display name of the scope the enclosing message was delivered in.
//
// includeToolCalls gates event emission per §4.4's "if include_tool_calls
// enabled" — the tracker still updates its internal state either way, since
// result linkage (§4.5) must work even when no args_* events were ever
// surfaced.
func (t *Tracker) HandleChunk(msgID string, chunk message.ToolCallChunk, scp string, includeToolCalls bool) []event.Event {
	key := Key{MessageID: msgID, Index: chunk.Index}
	call, exists := t.byKey[key]
	if !exists {
		if chunk.ID == nil || chunk.Name == nil {
			// ToolCallOrphanArg (§7): arg fragment with no prior
			// INITIALIZING entry. Locally recovered: drop it.
			return nil
		}
		call = &Call{ToolCallID: *chunk.ID, ToolName: *chunk.Name, Scope: scp, Status: StatusInitializing}
		t.byKey[key] = call
		t.byToolCallID[call.ToolCallID] = key
	}

	var events []event.Event
	firstFragment := call.Status == StatusInitializing
	if firstFragment {
		call.Status = StatusStreaming
		if includeToolCalls {
			events = append(events, t.toolCallEvent(call, event.StatusArgsStarted))
		}
	}

	call.AccumulatedArgs += chunk.Args
	call.balance.feed(chunk.Args)
	if includeToolCalls {
		events = append(events, t.toolCallEvent(call, event.StatusArgsStreaming))
	}

	if call.balance.zero() {
		if parsed, ok := t.tryParse(call); ok {
			call.Status = StatusCompleted
			call.ParsedArgs = parsed
			if includeToolCalls {
				events = append(events, t.toolCallEvent(call, event.StatusArgsReady))
			}
		}
	}
	return events
}

// FinalizeMessage closes out every call still STREAMING at the end of the
// enclosing message. Per §4.4, a non-empty buffer that never validated as
// JSON transitions to ERROR and (if include_tool_calls) emits a
// result_error ToolCall event carrying the parse failure description.
func (t *Tracker) FinalizeMessage(msgID string, includeToolCalls bool) []event.Event {
	return t.finalize(includeToolCalls, func(key Key) bool { return key.MessageID == msgID })
}

// FinalizeAll closes out every call still STREAMING, regardless of which
// message it belongs to. The orchestrator calls this once at session end,
// before Reset, so a stream that terminates mid tool-call still surfaces
// ToolCallInvalidJson failures instead of silently dropping them (§7).
func (t *Tracker) FinalizeAll(includeToolCalls bool) []event.Event {
	return t.finalize(includeToolCalls, func(Key) bool { return true })
}

func (t *Tracker) finalize(includeToolCalls bool, match func(Key) bool) []event.Event {
	var events []event.Event
	for key, call := range t.byKey {
		if !match(key) || call.Status != StatusStreaming {
			continue
		}
		if parsed, ok := t.tryParse(call); ok {
			call.Status = StatusCompleted
			call.ParsedArgs = parsed
			if includeToolCalls {
				events = append(events, t.toolCallEvent(call, event.StatusArgsReady))
			}
			continue
		}
		call.Status = StatusError
		if includeToolCalls {
			ev := t.toolCallEvent(call, event.StatusResultError)
			ev.Data.ErrorMessage = fmt.Sprintf("tool call %s: argument buffer did not close as valid JSON", call.ToolCallID)
			events = append(events, ev)
		}
	}
	return events
}

// HandleFinalizedCall registers a tool call observed already fully-assembled
// on a finalized message (§4.5 point 3), as opposed to one reconstructed
// chunk by chunk from TOKEN mode. If the call was already tracked (e.g. it
// streamed in earlier and has since COMPLETED), this is a no-op: the
// cross-mode dedup in §4.5 point 4 means the channel handler should not
// re-announce a call the tracker already finalized.
func (t *Tracker) HandleFinalizedCall(toolCallID, toolName, scp string, args any, includeToolCalls bool) []event.Event {
	if _, known := t.byToolCallID[toolCallID]; known {
		return nil
	}
	key := Key{MessageID: "finalized:" + toolCallID, Index: 0}
	call := &Call{ToolCallID: toolCallID, ToolName: toolName, Scope: scp, Status: StatusCompleted, ParsedArgs: args}
	t.byKey[key] = call
	t.byToolCallID[toolCallID] = key
	if !includeToolCalls {
		return nil
	}
	return []event.Event{t.toolCallEvent(call, event.StatusArgsReady)}
}

// HandleResult links an observed tool-result message back to its tracked
// call (§4.5 point 3, §4.4 "Result linkage"). It succeeds even when the
// call's initialization was never observed (e.g. streaming was disabled for
// that scope); in that case the event carries only tool_call_id, scope, and
// the result payload, per §9 open question 2.
func (t *Tracker) HandleResult(toolCallID, scp string, result any, isError bool) event.Event {
	status := event.StatusResultSuccess
	if isError {
		status = event.StatusResultError
	}

	key, known := t.byToolCallID[toolCallID]
	if !known {
		return event.NewToolCall(scp, scope.NodeNameFromDisplayName(scp), event.ToolCallPayload{
			ToolCallID:    toolCallID,
			Status:        status,
			Result:        result,
			ResultIsError: isError,
		})
	}

	call := t.byKey[key]
	if isError {
		call.Status = StatusResultError
	} else {
		call.Status = StatusResultSuccess
	}
	call.Result = result
	return t.toolCallEvent(call, status)
}

// Lookup returns the tracked call for a (message_id, index) key, mainly for
// tests and introspection.
func (t *Tracker) Lookup(key Key) (Call, bool) {
	call, ok := t.byKey[key]
	if !ok {
		return Call{}, false
	}
	return *call, true
}

func (t *Tracker) tryParse(call *Call) (any, bool) {
	buf := strings.TrimSpace(call.AccumulatedArgs)
	if buf == "" {
		buf = "{}"
	}
	var parsed any
	if err := json.Unmarshal([]byte(buf), &parsed); err != nil {
		return nil, false
	}
	if t.schema != nil {
		if err := t.schema.Validate(parsed); err != nil {
			return nil, false
		}
	}
	return parsed, true
}

func (t *Tracker) toolCallEvent(call *Call, status event.ToolCallStatus) event.ToolCall {
	return event.NewToolCall(call.Scope, scope.NodeNameFromDisplayName(call.Scope), event.ToolCallPayload{
		ToolCallID:      call.ToolCallID,
		ToolName:        call.ToolName,
		Status:          status,
		AccumulatedArgs: call.AccumulatedArgs,
		ParsedArgs:      call.ParsedArgs,
		Result:          call.Result,
		ResultIsError:   status == event.StatusResultError,
	})
}
