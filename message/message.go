// Package message models the message and tool-call shapes the external
// runtime delivers in token-mode chunks and in finalized channel values, per
// spec.md §6.2. It is deliberately a thin, JSON-tagged value type: unlike the
// teacher's runtime/agent/model package, there is no provider-facing Part
// union to marshal here, only the wire shape the stream processor needs to
// read.
package message

import "encoding/json"

// Message is the minimal shape the runtime stamps on every token-mode chunk
// and on finalized MESSAGE-channel values: a stable ID, optional text
// content, and optionally the tool-call chunks or finalized tool calls it
// carries.
type Message struct {
	ID string `json:"id"`

	// Content is the message's text content, when present. A token-mode
	// chunk with no textual delta in this step has a nil Content.
	Content *string `json:"content,omitempty"`

	// ToolCallChunks carries partial tool-call fragments as they stream in
	// TOKEN mode. See §4.4 and §6.2: id/name are non-null only on the first
	// chunk of a given (message_id, index) sequence.
	ToolCallChunks []ToolCallChunk `json:"tool_call_chunks,omitempty"`

	// ToolCalls carries fully-finalized tool calls, present on messages
	// observed via a FULL_VALUE channel rather than reconstructed token by
	// token.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID, when non-empty, marks this message as a tool-result
	// message referencing the call it answers.
	ToolCallID string `json:"tool_call_id,omitempty"`

	// Result carries the tool-result payload on a tool-result message.
	Result any `json:"result,omitempty"`

	// Tags carries optional LLM message tags used by §3.3's tag filter.
	Tags []string `json:"tags,omitempty"`
}

// ToolCallChunk is one fragment of a streaming tool-call invocation,
// identified in-stream by (message_id, Index).
type ToolCallChunk struct {
	Index int     `json:"index"`
	ID    *string `json:"id,omitempty"`
	Name  *string `json:"name,omitempty"`
	Args  string  `json:"args"`
	Type  *string `json:"type,omitempty"`
}

// ToolCall is a fully-assembled tool invocation as carried on a finalized
// message.
type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
	Type string         `json:"type,omitempty"`
}

// IsToolResult reports whether m is a tool-result message (§6.2: "a tool
// result message references a tool_call_id and carries a result value").
func (m Message) IsToolResult() bool {
	return m.ToolCallID != ""
}

// FromAny decodes a generic decoded-JSON value (typically map[string]any,
// as produced by the raw-output parser) into a Message. It round-trips
// through encoding/json rather than hand-walking the map, matching the
// runtime's own boundary format and keeping one codec for both directions.
func FromAny(v any) (Message, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Message{}, err
	}
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return Message{}, err
	}
	return m, nil
}

// Metadata is the TOKEN-mode companion value delivered alongside a Message
// (§6.1): at minimum the originating scope, as a flattened sequence of
// strings, plus any message tags stamped by the runtime.
type Metadata struct {
	Scope []string `json:"scope"`
	Tags  []string `json:"tags,omitempty"`
}

// MetadataFromAny decodes a generic metadata value the same way FromAny
// decodes a Message.
func MetadataFromAny(v any) (Metadata, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Metadata{}, err
	}
	var md Metadata
	if err := json.Unmarshal(raw, &md); err != nil {
		return Metadata{}, err
	}
	return md, nil
}
