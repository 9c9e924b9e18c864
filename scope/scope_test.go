package scope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopeDisplayNameAndPattern(t *testing.T) {
	require.Equal(t, "main", Scope(nil).DisplayName())
	require.Equal(t, "main", Scope(nil).Pattern())

	s := Scope{"clarify", "t1", "validator", "t2"}
	require.Equal(t, "clarify:t1:validator:t2", s.DisplayName())
	require.Equal(t, "clarify:validator", s.Pattern())
	require.Equal(t, "validator", s.NodeName())
	require.Equal(t, "t2", s.TaskID())
}

func TestPatternFromDisplayName(t *testing.T) {
	require.Equal(t, "main", PatternFromDisplayName(""))
	require.Equal(t, "main", PatternFromDisplayName("main"))
	require.Equal(t, "clarify:validator", PatternFromDisplayName("clarify:t1:validator:t2"))
}

func TestEligibleExclusionWins(t *testing.T) {
	cfg := TokenConfig{
		Enabled:  []string{"clarify:*"},
		Excluded: []string{"clarify:internal"},
	}
	require.True(t, Eligible("clarify:t1", cfg))
	require.True(t, Eligible("clarify:t1:validator:t2", cfg))
	require.False(t, Eligible("clarify:internal:t3", cfg))
	require.False(t, Eligible("other:t4", cfg))
}

func TestEligibleAllSentinel(t *testing.T) {
	cfg := TokenConfig{Enabled: []string{AllNamespaces}}
	require.True(t, Eligible("main", cfg))
	require.True(t, Eligible("anything:else", cfg))

	cfg.Excluded = []string{"blocked"}
	require.False(t, Eligible("blocked:t1", cfg))
}

func TestEligiblePrefixDoesNotMatchConcatenation(t *testing.T) {
	cfg := TokenConfig{Enabled: []string{"a:*"}}
	require.True(t, Eligible("a", cfg))
	require.True(t, Eligible("a:b", cfg))
	require.True(t, Eligible("a:b:c", cfg))
	require.False(t, Eligible("ab", cfg))
}

func TestEligibleExactMatch(t *testing.T) {
	cfg := TokenConfig{Enabled: []string{"clarify"}}
	require.True(t, Eligible("clarify", cfg))
	require.True(t, Eligible("clarify:t1", cfg))
}
