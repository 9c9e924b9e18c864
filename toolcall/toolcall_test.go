package toolcall

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/errajibadr/langgraph-agent-repo/event"
	"github.com/errajibadr/langgraph-agent-repo/message"
)

func strPtr(s string) *string { return &s }

// TestToolCallReconstruction follows end-to-end scenario 3 from spec.md §8.
func TestToolCallReconstruction(t *testing.T) {
	tr := NewTracker()

	events := tr.HandleChunk("m2", message.ToolCallChunk{Index: 0, ID: strPtr("c1"), Name: strPtr("think"), Args: ""}, "main", true)
	require.Len(t, events, 2)
	require.Equal(t, event.StatusArgsStarted, events[0].(event.ToolCall).Data.Status)
	require.Equal(t, event.StatusArgsStreaming, events[1].(event.ToolCall).Data.Status)
	require.Equal(t, "", events[1].(event.ToolCall).Data.AccumulatedArgs)

	events = tr.HandleChunk("m2", message.ToolCallChunk{Index: 0, Args: `{"q":"`}, "main", true)
	require.Len(t, events, 1)
	require.Equal(t, event.StatusArgsStreaming, events[0].(event.ToolCall).Data.Status)
	require.Equal(t, `{"q":"`, events[0].(event.ToolCall).Data.AccumulatedArgs)

	events = tr.HandleChunk("m2", message.ToolCallChunk{Index: 0, Args: `hello"}`}, "main", true)
	require.Len(t, events, 2)
	require.Equal(t, event.StatusArgsStreaming, events[0].(event.ToolCall).Data.Status)
	require.Equal(t, event.StatusArgsReady, events[1].(event.ToolCall).Data.Status)
	require.Equal(t, map[string]any{"q": "hello"}, events[1].(event.ToolCall).Data.ParsedArgs)

	call, ok := tr.Lookup(Key{MessageID: "m2", Index: 0})
	require.True(t, ok)
	require.Equal(t, StatusCompleted, call.Status)
}

func TestOrphanArgFragmentIsDropped(t *testing.T) {
	tr := NewTracker()
	events := tr.HandleChunk("m3", message.ToolCallChunk{Index: 0, Args: "{}"}, "main", true)
	require.Nil(t, events)
	_, ok := tr.Lookup(Key{MessageID: "m3", Index: 0})
	require.False(t, ok)
}

// TestEmptyArgsResolveAtFinalize follows end-to-end scenario 3 from spec.md
// §8: a tool call whose only chunk carries empty args must not resolve on
// that chunk alone, since the buffer never structurally opened (invariant
// #4 allows at most one args_ready per call). It resolves once the
// enclosing message finalizes, with the same empty-object parsed_args a
// "{}" buffer yields.
func TestEmptyArgsResolveAtFinalize(t *testing.T) {
	tr := NewTracker()
	events := tr.HandleChunk("m4", message.ToolCallChunk{Index: 0, ID: strPtr("c4"), Name: strPtr("noop"), Args: ""}, "main", true)
	require.Len(t, events, 2)
	for _, e := range events {
		require.NotEqual(t, event.StatusArgsReady, e.(event.ToolCall).Data.Status)
	}

	events = tr.FinalizeMessage("m4", true)
	require.Len(t, events, 1)
	require.Equal(t, event.StatusArgsReady, events[0].(event.ToolCall).Data.Status)
	require.Equal(t, map[string]any{}, events[0].(event.ToolCall).Data.ParsedArgs)

	call, ok := tr.Lookup(Key{MessageID: "m4", Index: 0})
	require.True(t, ok)
	require.Equal(t, StatusCompleted, call.Status)
}

func TestFinalizeMessageErrorsOnUnclosedBuffer(t *testing.T) {
	tr := NewTracker()
	tr.HandleChunk("m5", message.ToolCallChunk{Index: 0, ID: strPtr("c5"), Name: strPtr("broken"), Args: `{"q":`}, "main", false)
	events := tr.FinalizeMessage("m5", true)
	require.Len(t, events, 1)
	tc := events[0].(event.ToolCall)
	require.Equal(t, event.StatusResultError, tc.Data.Status)
	require.NotEmpty(t, tc.Data.ErrorMessage)

	call, _ := tr.Lookup(Key{MessageID: "m5", Index: 0})
	require.Equal(t, StatusError, call.Status)
}

func TestHandleResultWithoutPriorInitialization(t *testing.T) {
	tr := NewTracker()
	ev := tr.HandleResult("unseen-call", "clarify:t1", map[string]any{"ok": true}, false)
	tc := ev.(event.ToolCall)
	require.Equal(t, "unseen-call", tc.Data.ToolCallID)
	require.Empty(t, tc.Data.ToolName)
	require.Equal(t, event.StatusResultSuccess, tc.Data.Status)
}

func TestHandleResultLinksKnownCall(t *testing.T) {
	tr := NewTracker()
	tr.HandleChunk("m6", message.ToolCallChunk{Index: 0, ID: strPtr("c6"), Name: strPtr("search"), Args: "{}"}, "main", false)
	ev := tr.HandleResult("c6", "main", "42", false)
	tc := ev.(event.ToolCall)
	require.Equal(t, "search", tc.Data.ToolName)
	require.Equal(t, event.StatusResultSuccess, tc.Data.Status)

	call, _ := tr.Lookup(Key{MessageID: "m6", Index: 0})
	require.Equal(t, StatusResultSuccess, call.Status)
}

func TestResetClearsTrackedState(t *testing.T) {
	tr := NewTracker()
	tr.HandleChunk("m7", message.ToolCallChunk{Index: 0, ID: strPtr("c7"), Name: strPtr("x"), Args: "{}"}, "main", false)
	tr.Reset()
	_, ok := tr.Lookup(Key{MessageID: "m7", Index: 0})
	require.False(t, ok)
}
