package rawshape

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBareChunkUsesRequestedMode(t *testing.T) {
	raw := map[string]any{"messages": []any{"m1"}}
	chunk, err := Parse(raw, ModeFullValue)
	require.NoError(t, err)
	require.Equal(t, ModeFullValue, chunk.Mode)
	require.Nil(t, chunk.ScopeTuple)
	require.Equal(t, raw, chunk.Data)
}

func TestParseModePair(t *testing.T) {
	raw := []any{"updates", map[string]any{"notes": "x"}}
	chunk, err := Parse(raw, ModeFullValue)
	require.NoError(t, err)
	require.Equal(t, ModeDeltaOnly, chunk.Mode)
	require.Equal(t, map[string]any{"notes": "x"}, chunk.Data)
}

func TestParseScopeMappingPair(t *testing.T) {
	raw := []any{[]any{"clarify", "t1"}, map[string]any{"notes": "x"}}
	chunk, err := Parse(raw, ModeFullValue)
	require.NoError(t, err)
	require.Equal(t, []string{"clarify", "t1"}, chunk.ScopeTuple)
	require.Equal(t, ModeFullValue, chunk.Mode)
}

func TestParseMessagePair(t *testing.T) {
	raw := []any{
		map[string]any{"id": "m1", "content": "hi"},
		map[string]any{"scope": []any{"clarify", "t1"}},
	}
	chunk, err := Parse(raw, ModeFullValue)
	require.NoError(t, err)
	require.Equal(t, ModeToken, chunk.Mode)
	pair, ok := chunk.Data.(TokenPair)
	require.True(t, ok)
	require.Equal(t, raw[0], pair.Message)
	require.Equal(t, raw[1], pair.Metadata)
}

func TestParseScopeModeTriple(t *testing.T) {
	raw := []any{[]any{"clarify", "t1"}, "values", map[string]any{"notes": "x"}}
	chunk, err := Parse(raw, ModeDeltaOnly)
	require.NoError(t, err)
	require.Equal(t, []string{"clarify", "t1"}, chunk.ScopeTuple)
	require.Equal(t, ModeFullValue, chunk.Mode)
	require.Equal(t, map[string]any{"notes": "x"}, chunk.Data)
}

func TestParseScopeModeTripleToken(t *testing.T) {
	raw := []any{
		[]any{"clarify", "t1"},
		"messages",
		[]any{
			map[string]any{"id": "m1", "content": "hi"},
			map[string]any{},
		},
	}
	chunk, err := Parse(raw, ModeFullValue)
	require.NoError(t, err)
	require.Equal(t, ModeToken, chunk.Mode)
	_, ok := chunk.Data.(TokenPair)
	require.True(t, ok)
}

func TestParseUnknownShapeReturnsErrUnknown(t *testing.T) {
	raw := []any{map[string]any{"not": "a scope sequence"}, "values", map[string]any{}}
	_, err := Parse(raw, ModeFullValue)
	require.ErrorIs(t, err, ErrUnknown)
}

func TestParseUnknownTopLevelScalar(t *testing.T) {
	_, err := Parse(42, ModeFullValue)
	require.ErrorIs(t, err, ErrUnknown)
}
