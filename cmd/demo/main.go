// Command demo wires a scripted in-memory runtime through the full stream
// processor pipeline and prints every event it produces, end to end: a
// token-streamed reply, a tool call reconstructed from chunks, its result
// linked back via a FULL_VALUE message channel, an artifact observation, and
// a DELTA_ONLY channel update.
package main

import (
	"context"
	"fmt"
	"io"

	"github.com/errajibadr/langgraph-agent-repo/channel"
	"github.com/errajibadr/langgraph-agent-repo/event"
	"github.com/errajibadr/langgraph-agent-repo/processor"
	"github.com/errajibadr/langgraph-agent-repo/scope"
	"github.com/errajibadr/langgraph-agent-repo/tokenstream"
)

// scriptedIterator replays a fixed sequence of raw chunks, the way a real
// graph runtime would replay its own internal event log.
type scriptedIterator struct {
	chunks []any
	pos    int
}

func (s *scriptedIterator) Recv(ctx context.Context) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.chunks) {
		return nil, io.EOF
	}
	c := s.chunks[s.pos]
	s.pos++
	return c, nil
}

func (s *scriptedIterator) Close() error { return nil }

// scriptedRuntime is a stand-in for the external graph-execution runtime: it
// ignores input/config and modes, and always starts the same scripted
// invocation.
type scriptedRuntime struct{}

func (scriptedRuntime) Stream(ctx context.Context, input, runtimeConfig any, modes []string) (processor.RawIterator, error) {
	fmt.Println("requested modes:", modes)
	return &scriptedIterator{chunks: script()}, nil
}

// script builds the raw chunk sequence for this demo invocation.
func script() []any {
	return []any{
		// TOKEN mode, root scope: an assistant reply streamed in two deltas.
		tokenPair(nil, "m1", "Checking the weather "),
		tokenPair(nil, "m1", "for you..."),

		// TOKEN mode, nested "clarify:t1" scope: a tool call streamed chunk
		// by chunk, split mid-argument.
		toolChunkPair([]string{"clarify", "t1"}, "m2", 0, strPtr("call-1"), strPtr("get_weather"), `{"city":`),
		toolChunkPair([]string{"clarify", "t1"}, "m2", 0, nil, nil, `"portland"}`),

		// FULL_VALUE mode, root scope: the tool result and a finalized
		// assistant message land on the "messages" channel; a "notes"
		// artifact is observed alongside it.
		[]any{"values", map[string]any{
			"messages": []any{
				map[string]any{"id": "m3", "tool_call_id": "call-1", "result": map[string]any{"forecast": "68F and cloudy"}},
				map[string]any{"id": "m4", "content": "It's 68F and cloudy in Portland."},
			},
			"notes": []any{"checked forecast for portland"},
		}},

		// DELTA_ONLY mode: a generic per-node counter increment.
		[]any{"updates", map[string]any{"clarify": map[string]any{"visits": 1}}},
	}
}

func tokenPair(scopeTuple []string, id, content string) any {
	return []any{
		map[string]any{"id": id, "content": content},
		map[string]any{"scope": toAnySlice(scopeTuple)},
	}
}

func toolChunkPair(scopeTuple []string, msgID string, index int, id, name *string, args string) any {
	chunk := map[string]any{"index": index, "args": args}
	if id != nil {
		chunk["id"] = *id
	}
	if name != nil {
		chunk["name"] = *name
	}
	return []any{
		map[string]any{"id": msgID, "tool_call_chunks": []any{chunk}},
		map[string]any{"scope": toAnySlice(scopeTuple)},
	}
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func strPtr(s string) *string { return &s }

func main() {
	ctx := context.Background()

	cfg := processor.Config{
		Channels: []channel.Config{
			{Key: "messages", Delivery: channel.DeliveryFullValue, Kind: channel.KindMessage},
			{Key: "notes", Delivery: channel.DeliveryFullValue, Kind: channel.KindArtifact, ArtifactType: "Note"},
			{Key: "visits", Delivery: channel.DeliveryDeltaOnly, Kind: channel.KindGeneric},
		},
		Token: tokenstream.Config{
			TokenConfig:      scope.TokenConfig{Enabled: []string{scope.AllNamespaces}},
			IncludeToolCalls: true,
		},
	}

	p, err := processor.New(cfg)
	if err != nil {
		panic(err)
	}

	for e := range p.Stream(ctx, scriptedRuntime{}, nil, nil) {
		printEvent(e)
	}
}

func printEvent(e event.Event) {
	switch ev := e.(type) {
	case event.TokenStream:
		fmt.Printf("[%s] token delta=%q accumulated=%q\n", ev.Scope(), ev.Data.ContentDelta, ev.Data.AccumulatedContent)
	case event.ToolCall:
		fmt.Printf("[%s] tool_call %s status=%s args=%q result=%v\n", ev.Scope(), ev.Data.ToolName, ev.Data.Status, ev.Data.AccumulatedArgs, ev.Data.Result)
	case event.MessageReceived:
		fmt.Printf("[%s] message_received id=%s\n", ev.Scope(), ev.Data.MessageID)
	case event.Artifact:
		fmt.Printf("[%s] artifact type=%s payload=%v\n", ev.Scope(), ev.Data.ArtifactType, ev.Data.Payload)
	case event.ChannelValue:
		fmt.Printf("[%s] channel_value key=%s value=%v delta=%v\n", ev.Scope(), ev.Data.ChannelKey, ev.Data.Value, ev.Data.Delta)
	case event.ChannelUpdate:
		fmt.Printf("[%s] channel_update key=%s delta=%v\n", ev.Scope(), ev.Data.ChannelKey, ev.Data.Delta)
	case event.Fault:
		fmt.Printf("[%s] fault kind=%s: %s\n", ev.Scope(), ev.Data.ErrorKind, ev.Data.Description)
	default:
		fmt.Printf("[%s] unrecognized event kind=%s\n", ev.Scope(), ev.Kind())
	}
}
