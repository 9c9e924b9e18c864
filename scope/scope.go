// Package scope implements the namespace utility described in spec.md §3.1
// and §4.1: parsing scope tuples into display names/patterns, and deciding
// whether a scope is eligible for token streaming under a configured set of
// enabled/excluded namespace patterns.
//
// A Scope is the flattened (type, id, type, id, ...) sequence the runtime
// stamps on every chunk for a nested execution context. The empty scope is
// the root and is canonicalized to the display name "main".
package scope

import "strings"

// Scope is an ordered sequence of alternating (type, id) tokens describing a
// nested execution context, e.g. ["clarify", "t1", "validator", "t2"] for the
// leaf task t2 of node "validator" nested under task t1 of node "clarify".
type Scope []string

// RootDisplayName is the reserved display name for the empty (root) scope.
const RootDisplayName = "main"

// DisplayName returns the ":"-joined concatenation of every component. The
// empty scope maps to the reserved name "main".
func (s Scope) DisplayName() string {
	if len(s) == 0 {
		return RootDisplayName
	}
	return strings.Join(s, ":")
}

// Pattern returns the ":"-joined concatenation of only the type components
// (even indices: 0, 2, 4, ...). The empty scope maps to "main".
func (s Scope) Pattern() string {
	if len(s) == 0 {
		return RootDisplayName
	}
	types := make([]string, 0, (len(s)+1)/2)
	for i := 0; i < len(s); i += 2 {
		types = append(types, s[i])
	}
	return strings.Join(types, ":")
}

// NodeName returns the type component of the leaf (type, id) pair, or "" for
// the empty scope.
func (s Scope) NodeName() string {
	if len(s) < 2 {
		return ""
	}
	return s[len(s)-2]
}

// TaskID returns the id component of the leaf (type, id) pair, or "" for the
// empty scope.
func (s Scope) TaskID() string {
	if len(s) < 2 {
		return ""
	}
	return s[len(s)-1]
}

// NodeNameFromDisplayName re-derives the leaf node name directly from a
// display name string, mirroring Scope.NodeName for callers that only have
// the display name on hand (see PatternFromDisplayName).
func NodeNameFromDisplayName(displayName string) string {
	if displayName == "" || displayName == RootDisplayName {
		return ""
	}
	components := strings.Split(displayName, ":")
	if len(components) < 2 {
		return ""
	}
	return components[len(components)-2]
}

// PatternFromDisplayName re-derives a scope pattern directly from a display
// name string, without requiring the caller to hold the original Scope
// value. Several collaborators (the token streamer, metadata decoded from
// the runtime) only have the display name on hand, so the extraction rule
// from §4.1 is exposed standalone here. For a well-formed display name the
// result equals Scope.Pattern; for an odd component count it differs, as
// described below (Scope.Pattern always keeps the even-index components).
//
// A well-formed display name has an even component count (complete (type,
// id) pairs throughout). A scope snapshot can also carry a dangling,
// not-yet-paired trailing component: a node whose task id hasn't arrived
// yet, e.g. "clarify:internal:t3" sitting one level below a task id of
// "internal" itself (spec.md §8 scenario 4). Reducing that case down to
// type-only components the same way would throw away "internal" (an id,
// sitting at the odd index right before the dangling tail) and collapse it
// onto the same pattern as the unrelated, shallower "clarify:t3". Instead,
// only the unpaired tail is dropped and the rest of the path is kept whole.
func PatternFromDisplayName(displayName string) string {
	if displayName == "" || displayName == RootDisplayName {
		return RootDisplayName
	}
	components := strings.Split(displayName, ":")
	if len(components)%2 == 1 && len(components) > 1 {
		return strings.Join(components[:len(components)-1], ":")
	}
	types := make([]string, 0, (len(components)+1)/2)
	for i := 0; i < len(components); i += 2 {
		types = append(types, components[i])
	}
	return strings.Join(types, ":")
}
