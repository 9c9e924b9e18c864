// Package tokenstream implements the token streamer (spec.md §3.3, §3.5,
// §4.6): per-scope namespace filtering, per-(scope, message) content
// accumulation, and handoff of tool-call chunks to the tool-call tracker.
//
// It is grounded on the teacher's hooks.StreamSubscriber, which performs
// the analogous job of filtering and forwarding one event kind at a time
// from an internal bus to an external sink — here the "sink" is the
// processor's event slice rather than a stream.Sink.
package tokenstream

import (
	"fmt"
	"strings"

	"github.com/errajibadr/langgraph-agent-repo/channel"
	"github.com/errajibadr/langgraph-agent-repo/event"
	"github.com/errajibadr/langgraph-agent-repo/message"
	"github.com/errajibadr/langgraph-agent-repo/scope"
	"github.com/errajibadr/langgraph-agent-repo/toolcall"
)

// Config is the token-streaming configuration from §3.3.
type Config struct {
	scope.TokenConfig
	// MessageTags, when non-empty, restricts streaming to messages
	// carrying at least one of these tags.
	MessageTags []string
	// IncludeToolCalls gates tool-call event emission (§4.4); tool-call
	// chunks are still reconstructed internally either way.
	IncludeToolCalls bool
}

// Streamer is the token streamer for one session. It owns the accumulator
// table (§3.5), keyed by scope, task and message ID, so interleaved messages
// in one scope each accumulate only their own deltas.
type Streamer struct {
	cfg     Config
	tracker *toolcall.Tracker
	// engine, when set, receives MarkMessageSeen notifications so a
	// message streamed via TOKEN mode is recognized for cross-mode dedup
	// if it is later finalized on a MESSAGE channel (§4.5 point 4).
	engine *channel.Engine

	accumulators map[string]*strings.Builder
}

// NewStreamer constructs a Streamer for one session.
func NewStreamer(cfg Config, tracker *toolcall.Tracker, engine *channel.Engine) *Streamer {
	return &Streamer{
		cfg:          cfg,
		tracker:      tracker,
		engine:       engine,
		accumulators: make(map[string]*strings.Builder),
	}
}

// Reset drops every accumulator, per §3.9's session-end reset requirement.
func (s *Streamer) Reset() {
	s.accumulators = make(map[string]*strings.Builder)
}

// Handle processes one TOKEN-mode (message, metadata) pair per §4.6's five
// steps and returns the events produced.
func (s *Streamer) Handle(msg message.Message, md message.Metadata) []event.Event {
	displayName := scope.Scope(md.Scope).DisplayName()
	if !scope.Eligible(displayName, s.cfg.TokenConfig) {
		return nil
	}

	tags := msg.Tags
	if len(tags) == 0 {
		tags = md.Tags
	}
	if len(s.cfg.MessageTags) > 0 && !anyTagMatches(s.cfg.MessageTags, tags) {
		return nil
	}

	var events []event.Event
	nodeName := scope.NodeNameFromDisplayName(displayName)

	for _, chunk := range msg.ToolCallChunks {
		events = append(events, s.tracker.HandleChunk(msg.ID, chunk, displayName, s.cfg.IncludeToolCalls)...)
	}

	if msg.Content != nil {
		key := accumulatorKey(displayName, scope.Scope(md.Scope).TaskID(), msg.ID)
		acc, ok := s.accumulators[key]
		if !ok {
			acc = &strings.Builder{}
			s.accumulators[key] = acc
		}
		acc.WriteString(*msg.Content)

		if s.engine != nil {
			s.engine.MarkMessageSeen(msg.ID)
		}

		events = append(events, event.NewTokenStream(displayName, nodeName, event.TokenStreamPayload{
			MessageID:          msg.ID,
			ContentDelta:       *msg.Content,
			AccumulatedContent: acc.String(),
			Tag:                firstTag(tags),
		}))
	}
	return events
}

func accumulatorKey(displayName, taskID, messageID string) string {
	if taskID == "" {
		taskID = "default"
	}
	return fmt.Sprintf("%s:%s:%s", displayName, taskID, messageID)
}

func anyTagMatches(want, have []string) bool {
	for _, w := range want {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}

func firstTag(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return tags[0]
}
