package event

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventVariantsCarryScopeAndKind(t *testing.T) {
	ts := NewTokenStream("main", "", TokenStreamPayload{MessageID: "m1", ContentDelta: "a", AccumulatedContent: "a"})
	require.Equal(t, KindTokenStream, ts.Kind())
	require.Equal(t, "main", ts.Scope())
	require.Equal(t, TokenStreamPayload{MessageID: "m1", ContentDelta: "a", AccumulatedContent: "a"}, ts.Payload())

	tc := NewToolCall("clarify:t1", "clarify", ToolCallPayload{ToolCallID: "c1", Status: StatusArgsReady})
	require.Equal(t, KindToolCall, tc.Kind())
	require.Equal(t, "clarify", tc.NodeName())

	f := NewFault("main", "", FaultPayload{ErrorKind: ErrorKindRawShapeUnknown, Description: "boom"})
	require.Equal(t, KindFault, f.Kind())
}

func TestEventSatisfiesInterface(t *testing.T) {
	var events []Event
	events = append(events,
		NewTokenStream("main", "", TokenStreamPayload{}),
		NewChannelValue("main", "", ChannelValuePayload{}),
		NewChannelUpdate("main", "", ChannelUpdatePayload{}),
		NewArtifact("main", "", ArtifactPayload{}),
		NewMessageReceived("main", "", MessageReceivedPayload{}),
		NewToolCall("main", "", ToolCallPayload{}),
		NewFault("main", "", FaultPayload{}),
	)
	require.Len(t, events, 7)
	for _, e := range events {
		require.NotEmpty(t, e.Kind())
	}
}
