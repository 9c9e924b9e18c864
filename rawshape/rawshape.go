// Package rawshape normalizes the union of raw output shapes the external
// graph-execution runtime may deliver (spec.md §4.2) into a single uniform
// triple. Per the Design Notes in spec.md §9, the union is expressed here as
// a disambiguating parse function plus a small tagged result type rather
// than runtime shape-probing scattered through the caller — the same shape
// the teacher's anthropicChunkProcessor.Handle gives the Anthropic SDK's
// event union.
package rawshape

import (
	"errors"
	"fmt"
)

// Mode names the three streaming modes the runtime can be asked to produce.
// The names mirror the host graph runtime's own stream-mode vocabulary.
type Mode string

const (
	ModeToken     Mode = "messages"
	ModeFullValue Mode = "values"
	ModeDeltaOnly Mode = "updates"
)

func knownMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeToken, ModeFullValue, ModeDeltaOnly:
		return Mode(s), true
	}
	return "", false
}

// ErrUnknown is returned when raw matches none of the five accepted shapes.
// It corresponds to error kind RawShapeUnknown in spec.md §7.
var ErrUnknown = errors.New("rawshape: unrecognized raw output shape")

// Chunk is the normalized (scope, mode, data) triple produced by Parse.
//
// ScopeTuple holds the flattened (type, id, ...) sequence when the raw
// element carried one (shapes 3 and 4); it is nil otherwise, meaning the
// scope must be resolved some other way (root, for shapes 1 and 2; from
// token metadata, for shape 5 — see §4.6 step 1).
type Chunk struct {
	ScopeTuple []string
	Mode       Mode
	Data       any
}

// TokenPair is the (message, metadata) payload carried by a TOKEN-mode chunk
// produced from shape 5 (or from a mode-tagged pair/triple whose resolved
// mode is ModeToken).
type TokenPair struct {
	Message  any
	Metadata any
}

// Parse classifies raw into one of the five shapes from spec.md §4.2 and
// returns the normalized triple. requestedMode is the single stream mode in
// effect when raw carries no mode marker of its own: a bare chunk (shape 1)
// or a (scope_tuple, chunk) pair (shape 3); it is ignored for every other
// shape.
func Parse(raw any, requestedMode Mode) (Chunk, error) {
	seq, isSeq := asSlice(raw)
	if isSeq {
		switch len(seq) {
		case 2:
			if chunk, ok := tryScopeMappingPair(seq, requestedMode); ok {
				return chunk, nil
			}
			if chunk, ok := tryModePair(seq); ok {
				return chunk, nil
			}
			if chunk, ok := tryMessagePair(seq); ok {
				return chunk, nil
			}
		case 3:
			if chunk, ok := tryScopeModeTriple(seq); ok {
				return chunk, nil
			}
		}
		return Chunk{}, fmt.Errorf("%w: %d-element sequence did not match any known shape", ErrUnknown, len(seq))
	}

	// Shape 1: bare chunk, no envelope at all.
	if _, ok := asMapping(raw); ok {
		return Chunk{Mode: requestedMode, Data: raw}, nil
	}
	return Chunk{}, fmt.Errorf("%w: value is neither a sequence nor a mapping", ErrUnknown)
}

// tryScopeMappingPair matches shape 3: (scope_tuple, chunk) where chunk is a
// mapping. Like shape 1, this shape carries no mode marker of its own — it
// occurs only when a single mode was requested — so the caller's
// requestedMode applies.
func tryScopeMappingPair(seq []any, requestedMode Mode) (Chunk, bool) {
	scopeSeq, ok := asStringSlice(seq[0])
	if !ok {
		return Chunk{}, false
	}
	if _, ok := asMapping(seq[1]); !ok {
		return Chunk{}, false
	}
	return Chunk{ScopeTuple: scopeSeq, Mode: requestedMode, Data: seq[1]}, true
}

func tryModePair(seq []any) (Chunk, bool) {
	modeStr, ok := seq[0].(string)
	if !ok {
		return Chunk{}, false
	}
	mode, ok := knownMode(modeStr)
	if !ok {
		return Chunk{}, false
	}
	if mode == ModeToken {
		if pair, ok := asTokenPair(seq[1]); ok {
			return Chunk{Mode: mode, Data: pair}, true
		}
	}
	return Chunk{Mode: mode, Data: seq[1]}, true
}

func tryMessagePair(seq []any) (Chunk, bool) {
	if !looksLikeMessage(seq[0]) {
		return Chunk{}, false
	}
	return Chunk{Mode: ModeToken, Data: TokenPair{Message: seq[0], Metadata: seq[1]}}, true
}

func tryScopeModeTriple(seq []any) (Chunk, bool) {
	scopeSeq, ok := asStringSlice(seq[0])
	if !ok {
		return Chunk{}, false
	}
	modeStr, ok := seq[1].(string)
	if !ok {
		return Chunk{}, false
	}
	mode, ok := knownMode(modeStr)
	if !ok {
		return Chunk{}, false
	}
	if mode == ModeToken {
		if pair, ok := asTokenPair(seq[2]); ok {
			return Chunk{ScopeTuple: scopeSeq, Mode: mode, Data: pair}, true
		}
	}
	return Chunk{ScopeTuple: scopeSeq, Mode: mode, Data: seq[2]}, true
}

func asTokenPair(v any) (TokenPair, bool) {
	seq, ok := asSlice(v)
	if !ok || len(seq) != 2 {
		return TokenPair{}, false
	}
	if !looksLikeMessage(seq[0]) {
		return TokenPair{}, false
	}
	return TokenPair{Message: seq[0], Metadata: seq[1]}, true
}

// looksLikeMessage applies the structural test from §4.2: a message-shaped
// object carries a string identifier and optionally content.
func looksLikeMessage(v any) bool {
	m, ok := asMapping(v)
	if !ok {
		return false
	}
	id, ok := m["id"]
	if !ok {
		return false
	}
	_, ok = id.(string)
	return ok
}

func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

func asMapping(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asStringSlice(v any) ([]string, bool) {
	seq, ok := asSlice(v)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(seq))
	for _, elem := range seq {
		s, ok := elem.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
