package channel

import "reflect"

// Diff computes the value-level delta between a previous and current
// observation, per the rules in §4.3:
//
//   - mappings: added/changed keys only (shallow, one level deep)
//   - sequences: the new tail after the previously-stored length
//   - scalars (and anything else): the new value when it differs at all
//
// Diff returns nil when there is no meaningful delta (e.g. an unchanged
// scalar, or a sequence that did not grow).
func Diff(previous, current any) any {
	switch cur := current.(type) {
	case map[string]any:
		prev, ok := previous.(map[string]any)
		if !ok {
			return cur
		}
		delta := make(map[string]any)
		for k, v := range cur {
			pv, existed := prev[k]
			if !existed || !reflect.DeepEqual(pv, v) {
				delta[k] = v
			}
		}
		if len(delta) == 0 {
			return nil
		}
		return delta
	case []any:
		prev, ok := previous.([]any)
		start := 0
		if ok {
			start = len(prev)
		}
		if start >= len(cur) {
			return nil
		}
		tail := append([]any(nil), cur[start:]...)
		return tail
	default:
		if reflect.DeepEqual(previous, current) {
			return nil
		}
		return current
	}
}
