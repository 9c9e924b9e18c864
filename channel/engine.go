package channel

import (
	"github.com/errajibadr/langgraph-agent-repo/event"
	"github.com/errajibadr/langgraph-agent-repo/message"
	"github.com/errajibadr/langgraph-agent-repo/scope"
	"github.com/errajibadr/langgraph-agent-repo/toolcall"
)

// Engine is the channel diff engine plus message channel handler (§4.3,
// §4.5). It owns the previous-state table (§3.6) and the seen-message set
// (§3.7) for one streaming session.
type Engine struct {
	configs []Config
	tracker *toolcall.Tracker

	// previous holds, per scope display name then channel key, the last
	// full value observed (§3.6). Only populated from the FULL_VALUE path.
	previous map[string]map[string]any

	// seen holds every message identifier already emitted as a finalized
	// MessageReceived in this session (§3.7).
	seen map[string]struct{}
}

// NewEngine constructs an Engine. configs must already have passed
// ValidateConfigs.
func NewEngine(configs []Config, tracker *toolcall.Tracker) *Engine {
	return &Engine{
		configs:  configs,
		tracker:  tracker,
		previous: make(map[string]map[string]any),
		seen:     make(map[string]struct{}),
	}
}

// MarkMessageSeen records that messageID has already been observed via
// TOKEN mode, so a later FULL_VALUE finalization of the same message is
// recognized as cross-mode dedup (§4.5 point 4) rather than emitted again
// as a fresh MessageReceived.
func (e *Engine) MarkMessageSeen(messageID string) {
	if messageID == "" {
		return
	}
	e.seen[messageID] = struct{}{}
}

// Reset clears the previous-state table and seen-message set, per §3.9's
// session-end reset requirement. The tool-call tracker is reset separately
// by its owner.
func (e *Engine) Reset() {
	e.previous = make(map[string]map[string]any)
	e.seen = make(map[string]struct{})
}

// HandleFullValue processes one FULL_VALUE chunk: a mapping from channel key
// to current value. Matched keys are visited in channel configuration
// order (§4.3 "Ordering").
func (e *Engine) HandleFullValue(scopeDisplay string, chunk map[string]any, includeToolCalls bool) []event.Event {
	var events []event.Event
	nodeName := scope.NodeNameFromDisplayName(scopeDisplay)
	scopeState := e.previous[scopeDisplay]
	if scopeState == nil {
		scopeState = make(map[string]any)
		e.previous[scopeDisplay] = scopeState
	}

	for _, cfg := range e.configs {
		if cfg.Delivery != DeliveryFullValue {
			continue
		}
		value, ok := chunk[cfg.Key]
		if !ok {
			continue
		}

		prevValue, hadPrev := scopeState[cfg.Key]
		var delta any
		if hadPrev {
			delta = Diff(prevValue, value)
		}
		scopeState[cfg.Key] = value

		if cfg.Filter != nil && !cfg.Filter(value) {
			// ChannelFilterRejected (§7): locally recovered, not surfaced.
			continue
		}

		switch cfg.Kind {
		case KindMessage:
			events = append(events, e.handleMessageChannel(scopeDisplay, nodeName, cfg, value, delta, includeToolCalls)...)
		case KindArtifact:
			events = append(events, event.NewArtifact(scopeDisplay, nodeName, event.ArtifactPayload{
				ChannelKey:   cfg.Key,
				ArtifactType: cfg.ArtifactType,
				Payload:      value,
				Delta:        delta,
			}))
		default:
			events = append(events, event.NewChannelValue(scopeDisplay, nodeName, event.ChannelValuePayload{
				ChannelKey: cfg.Key,
				Value:      value,
				Delta:      delta,
				Kind:       string(cfg.Kind),
			}))
		}
	}
	return events
}

// HandleDeltaOnly processes one DELTA_ONLY chunk: a mapping from node name
// to a mapping from channel key to delta value (§6.1). No previous-state
// lookup is performed for this path, per §4.3.
func (e *Engine) HandleDeltaOnly(scopeDisplay string, chunk map[string]any) []event.Event {
	var events []event.Event
	for nodeName, perNode := range chunk {
		deltas, ok := perNode.(map[string]any)
		if !ok {
			continue
		}
		for _, cfg := range e.configs {
			if cfg.Delivery != DeliveryDeltaOnly {
				continue
			}
			delta, ok := deltas[cfg.Key]
			if !ok {
				continue
			}
			if cfg.Filter != nil && !cfg.Filter(delta) {
				continue
			}
			if cfg.Kind == KindArtifact {
				events = append(events, event.NewArtifact(scopeDisplay, nodeName, event.ArtifactPayload{
					ChannelKey:   cfg.Key,
					ArtifactType: cfg.ArtifactType,
					Delta:        delta,
				}))
				continue
			}
			events = append(events, event.NewChannelUpdate(scopeDisplay, nodeName, event.ChannelUpdatePayload{
				ChannelKey: cfg.Key,
				Delta:      delta,
			}))
		}
	}
	return events
}

// handleMessageChannel implements the message channel handler (§4.5): it
// identifies new messages in value by identifier, emits MessageReceived for
// each (a tool-result message yields the tracker's ToolCall result event
// instead), forwards finalized tool-call/tool-result shapes to the tracker, and
// falls back to a generic ChannelValue event when value carries no new
// messages (e.g. a correction to already-seen content).
func (e *Engine) handleMessageChannel(scopeDisplay, nodeName string, cfg Config, value, delta any, includeToolCalls bool) []event.Event {
	candidates := delta
	if candidates == nil {
		candidates = value
	}

	var events []event.Event
	anyNew := false
	for _, raw := range asMessageList(candidates) {
		msg, err := message.FromAny(raw)
		if err != nil || msg.ID == "" {
			continue
		}
		// Cross-mode dedup (§4.5 point 4): a message already seen, including
		// one already streamed via TOKEN mode, is skipped entirely here.
		if _, already := e.seen[msg.ID]; already {
			continue
		}

		// A tool-result message is linked to its call by the tracker and
		// yields a ToolCall result event instead of MessageReceived.
		if e.tracker != nil && msg.IsToolResult() {
			isErr := isErrorResult(msg.Result)
			events = append(events, e.tracker.HandleResult(msg.ToolCallID, scopeDisplay, msg.Result, isErr))
			e.seen[msg.ID] = struct{}{}
			anyNew = true
			continue
		}

		e.seen[msg.ID] = struct{}{}
		anyNew = true
		events = append(events, event.NewMessageReceived(scopeDisplay, nodeName, event.MessageReceivedPayload{
			MessageID: msg.ID,
			Message:   raw,
		}))

		for _, tc := range msg.ToolCalls {
			if e.tracker == nil {
				continue
			}
			events = append(events, e.tracker.HandleFinalizedCall(tc.ID, tc.Name, scopeDisplay, tc.Args, includeToolCalls)...)
		}
	}

	if !anyNew {
		events = append(events, event.NewChannelValue(scopeDisplay, nodeName, event.ChannelValuePayload{
			ChannelKey: cfg.Key,
			Value:      value,
			Delta:      delta,
			Kind:       string(KindMessage),
		}))
	}
	return events
}

func asMessageList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case nil:
		return nil
	default:
		return []any{t}
	}
}

func isErrorResult(result any) bool {
	m, ok := result.(map[string]any)
	if !ok {
		return false
	}
	_, hasErr := m["error"]
	return hasErr
}
