package tokenstream

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/errajibadr/langgraph-agent-repo/event"
	"github.com/errajibadr/langgraph-agent-repo/message"
	"github.com/errajibadr/langgraph-agent-repo/scope"
	"github.com/errajibadr/langgraph-agent-repo/toolcall"
)

func strPtr(s string) *string { return &s }

// TestSimpleTokenStream follows end-to-end scenario 1 from spec.md §8.
func TestSimpleTokenStream(t *testing.T) {
	s := NewStreamer(Config{TokenConfig: scope.TokenConfig{Enabled: []string{scope.AllNamespaces}}}, toolcall.NewTracker(), nil)

	deltas := []string{"Hello ", "world", "!"}
	var accumulated string
	for _, d := range deltas {
		events := s.Handle(message.Message{ID: "m1", Content: strPtr(d)}, message.Metadata{})
		require.Len(t, events, 1)
		ts := events[0].(event.TokenStream)
		accumulated += d
		require.Equal(t, "main", ts.Scope())
		require.Equal(t, "m1", ts.Data.MessageID)
		require.Equal(t, d, ts.Data.ContentDelta)
		require.Equal(t, accumulated, ts.Data.AccumulatedContent)
	}
}

// TestNamespaceFilter follows end-to-end scenario 4 from spec.md §8.
func TestNamespaceFilter(t *testing.T) {
	cfg := Config{TokenConfig: scope.TokenConfig{
		Enabled:  []string{"clarify:*"},
		Excluded: []string{"clarify:internal"},
	}}
	s := NewStreamer(cfg, toolcall.NewTracker(), nil)

	cases := []struct {
		scopeSeq []string
		expect   bool
	}{
		{[]string{"clarify", "t1"}, true},
		{[]string{"clarify", "t1", "validator", "t2"}, true},
		{[]string{"clarify", "internal", "t3"}, false},
		{[]string{"other", "t4"}, false},
	}
	for _, c := range cases {
		events := s.Handle(message.Message{ID: "m", Content: strPtr("x")}, message.Metadata{Scope: c.scopeSeq})
		if c.expect {
			require.NotEmpty(t, events, "%v", c.scopeSeq)
		} else {
			require.Empty(t, events, "%v", c.scopeSeq)
		}
	}
}

func TestAccumulatorInvariantAcrossMultipleMessageIDs(t *testing.T) {
	s := NewStreamer(Config{TokenConfig: scope.TokenConfig{Enabled: []string{scope.AllNamespaces}}}, toolcall.NewTracker(), nil)

	s.Handle(message.Message{ID: "m1", Content: strPtr("A")}, message.Metadata{})
	s.Handle(message.Message{ID: "m2", Content: strPtr("B")}, message.Metadata{})
	events := s.Handle(message.Message{ID: "m1", Content: strPtr("C")}, message.Metadata{})

	ts := events[0].(event.TokenStream)
	require.Equal(t, "AC", ts.Data.AccumulatedContent)
}

func TestMessageTagFilterDropsUnmatchedTags(t *testing.T) {
	cfg := Config{
		TokenConfig: scope.TokenConfig{Enabled: []string{scope.AllNamespaces}},
		MessageTags: []string{"draft"},
	}
	s := NewStreamer(cfg, toolcall.NewTracker(), nil)

	events := s.Handle(message.Message{ID: "m1", Content: strPtr("x"), Tags: []string{"final"}}, message.Metadata{})
	require.Empty(t, events)

	events = s.Handle(message.Message{ID: "m2", Content: strPtr("x"), Tags: []string{"draft"}}, message.Metadata{})
	require.NotEmpty(t, events)
}

func TestToolCallChunksForwardedToTracker(t *testing.T) {
	tr := toolcall.NewTracker()
	cfg := Config{TokenConfig: scope.TokenConfig{Enabled: []string{scope.AllNamespaces}}, IncludeToolCalls: true}
	s := NewStreamer(cfg, tr, nil)

	events := s.Handle(message.Message{
		ID: "m9",
		ToolCallChunks: []message.ToolCallChunk{
			{Index: 0, ID: strPtr("c9"), Name: strPtr("search"), Args: "{}"},
		},
	}, message.Metadata{})
	require.NotEmpty(t, events)
	_, ok := tr.Lookup(toolcall.Key{MessageID: "m9", Index: 0})
	require.True(t, ok)
}

func TestIneligibleScopeSkipsToolCallForwardingToo(t *testing.T) {
	tr := toolcall.NewTracker()
	cfg := Config{TokenConfig: scope.TokenConfig{Enabled: nil}, IncludeToolCalls: true}
	s := NewStreamer(cfg, tr, nil)

	s.Handle(message.Message{
		ID: "m10",
		ToolCallChunks: []message.ToolCallChunk{
			{Index: 0, ID: strPtr("c10"), Name: strPtr("search"), Args: "{}"},
		},
	}, message.Metadata{Scope: []string{"other", "t1"}})

	_, ok := tr.Lookup(toolcall.Key{MessageID: "m10", Index: 0})
	require.False(t, ok)
}
