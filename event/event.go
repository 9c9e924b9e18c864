// Package event defines the tagged event union the stream processor yields
// to its consumer (spec.md §3.8). Each concrete type embeds Base for the
// common scope/node metadata and exposes its own Data payload for
// type-safe field access, mirroring the teacher's stream.Event/Base split
// (every concrete stream event embeds Base and carries a typed Data field).
package event

// Kind identifies which variant of the tagged union an Event carries.
type Kind string

const (
	KindTokenStream     Kind = "token_stream"
	KindChannelValue    Kind = "channel_value"
	KindChannelUpdate   Kind = "channel_update"
	KindArtifact        Kind = "artifact"
	KindMessageReceived Kind = "message_received"
	KindToolCall        Kind = "tool_call"
	// KindFault is the terminal error event described in §6.5/§7: emitted at
	// most once, immediately before normal termination of the sequence.
	KindFault Kind = "fault"
)

// Event is implemented by every concrete event type. Every variant carries
// the originating scope display name and node name, per §3.8.
type Event interface {
	Kind() Kind
	Scope() string
	NodeName() string
	Payload() any
}

// Base supplies the scope/node metadata and Kind() common to every event
// variant. Concrete event types embed Base and add their own Data field.
type Base struct {
	kind     Kind
	scope    string
	nodeName string
}

func newBase(k Kind, scope, nodeName string) Base {
	return Base{kind: k, scope: scope, nodeName: nodeName}
}

func (b Base) Kind() Kind       { return b.kind }
func (b Base) Scope() string    { return b.scope }
func (b Base) NodeName() string { return b.nodeName }

type (
	// TokenStream streams an incremental content delta for a message within
	// a scope, plus the accumulated content so far (§3.8, §4.6).
	TokenStream struct {
		Base
		Data TokenStreamPayload
	}

	// TokenStreamPayload carries the fields of a TokenStream event.
	TokenStreamPayload struct {
		MessageID          string
		ContentDelta       string
		AccumulatedContent string
		// Tag is the optional LLM message tag, when the message carried one.
		Tag string
	}

	// ChannelValue streams a full (or optionally delta-annotated) channel
	// observation for channels of kind GENERIC or MESSAGE whose content is
	// not itself a finalized message (§4.3).
	ChannelValue struct {
		Base
		Data ChannelValuePayload
	}

	ChannelValuePayload struct {
		ChannelKey string
		Value      any
		// Delta is nil when this is the first observation for (scope, key).
		Delta any
		Kind  string
	}

	// ChannelUpdate streams a DELTA_ONLY observation for a GENERIC channel
	// (§4.3): delta only, no previous-state lookup.
	ChannelUpdate struct {
		Base
		Data ChannelUpdatePayload
	}

	ChannelUpdatePayload struct {
		ChannelKey string
		Delta      any
	}

	// Artifact streams a typed, presentation-oriented channel observation
	// (§4.3). Per the documented policy, artifacts are re-emitted at every
	// observation; the processor performs no identity-based deduplication.
	Artifact struct {
		Base
		Data ArtifactPayload
	}

	ArtifactPayload struct {
		ChannelKey   string
		ArtifactType string
		Payload      any
		// Delta is the runtime-delivered delta on a DELTA_ONLY channel (where
		// Payload is nil), or on a FULL_VALUE channel the value-level
		// difference from the previous observation (nil on the first
		// observation or when nothing changed).
		Delta any
	}

	// MessageReceived streams a newly finalized message, deduplicated by
	// message identifier within the session (§4.5).
	MessageReceived struct {
		Base
		Data MessageReceivedPayload
	}

	MessageReceivedPayload struct {
		MessageID string
		Message   any
	}

	// ToolCall streams a tool-call lifecycle transition (§3.4, §4.4).
	ToolCall struct {
		Base
		Data ToolCallPayload
	}

	ToolCallPayload struct {
		ToolCallID string
		// ToolName may be empty on a result event linked to a call whose
		// initialization was never observed (§9 open question 2).
		ToolName        string
		Status          ToolCallStatus
		AccumulatedArgs string
		ParsedArgs      any
		Result          any
		// ResultIsError distinguishes result_success from result_error when
		// Status is one of those two terminal result statuses.
		ResultIsError bool
		// ErrorMessage carries a human-readable description on the
		// result_error emitted for the args-parse-failure path (§7). A
		// result_error linked from a tool-result message leaves it empty and
		// carries the payload in Result.
		ErrorMessage string
	}

	// Fault is the single terminal error event a session may emit just
	// before the sequence ends (§6.5, §7). It is never followed by any
	// other event in the same session.
	Fault struct {
		Base
		Data FaultPayload
	}

	FaultPayload struct {
		ErrorKind   ErrorKind
		Description string
	}
)

// ToolCallStatus enumerates the status values a ToolCall event carries, per
// §4.4's "Event emissions" list. These are distinct from (and coarser than)
// toolcall.Status, which tracks the full internal lifecycle including
// RESULT_PENDING.
type ToolCallStatus string

const (
	StatusArgsStarted   ToolCallStatus = "args_started"
	StatusArgsStreaming ToolCallStatus = "args_streaming"
	StatusArgsReady     ToolCallStatus = "args_ready"
	StatusResultSuccess ToolCallStatus = "result_success"
	StatusResultError   ToolCallStatus = "result_error"
)

// ErrorKind enumerates the terminal/fault categories from spec.md §7's error
// table. Only the kinds that are surfaced are represented here:
// ConfigInvalid through the error processor.New returns, the others as a
// terminal Fault event. ToolCallOrphanArg and ChannelFilterRejected are
// locally recovered and never surfaced.
type ErrorKind string

const (
	ErrorKindConfigInvalid   ErrorKind = "config_invalid"
	ErrorKindRawShapeUnknown ErrorKind = "raw_shape_unknown"
	ErrorKindRuntimeFailure  ErrorKind = "runtime_failure"
)

func NewTokenStream(scope, nodeName string, data TokenStreamPayload) TokenStream {
	return TokenStream{Base: newBase(KindTokenStream, scope, nodeName), Data: data}
}

func NewChannelValue(scope, nodeName string, data ChannelValuePayload) ChannelValue {
	return ChannelValue{Base: newBase(KindChannelValue, scope, nodeName), Data: data}
}

func NewChannelUpdate(scope, nodeName string, data ChannelUpdatePayload) ChannelUpdate {
	return ChannelUpdate{Base: newBase(KindChannelUpdate, scope, nodeName), Data: data}
}

func NewArtifact(scope, nodeName string, data ArtifactPayload) Artifact {
	return Artifact{Base: newBase(KindArtifact, scope, nodeName), Data: data}
}

func NewMessageReceived(scope, nodeName string, data MessageReceivedPayload) MessageReceived {
	return MessageReceived{Base: newBase(KindMessageReceived, scope, nodeName), Data: data}
}

func NewToolCall(scope, nodeName string, data ToolCallPayload) ToolCall {
	return ToolCall{Base: newBase(KindToolCall, scope, nodeName), Data: data}
}

func NewFault(scope, nodeName string, data FaultPayload) Fault {
	return Fault{Base: newBase(KindFault, scope, nodeName), Data: data}
}

func (e TokenStream) Payload() any     { return e.Data }
func (e ChannelValue) Payload() any    { return e.Data }
func (e ChannelUpdate) Payload() any   { return e.Data }
func (e Artifact) Payload() any        { return e.Data }
func (e MessageReceived) Payload() any { return e.Data }
func (e ToolCall) Payload() any        { return e.Data }
func (e Fault) Payload() any           { return e.Data }
