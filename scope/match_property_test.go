package scope

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestEligibleExclusionAlwaysWinsProperty verifies invariant 5 of spec.md §8:
// for any scope pattern that appears in excluded_namespaces, Eligible must
// report false regardless of how permissive Enabled is (including the "all"
// sentinel).
func TestEligibleExclusionAlwaysWinsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	segment := gen.RegexMatch(`[a-z][a-z0-9]{0,4}`)

	properties.Property("excluded pattern is never eligible", prop.ForAll(
		func(segments []string, enableAll bool) bool {
			if len(segments) == 0 {
				segments = []string{"root"}
			}
			excludedPattern := strings.Join(segments, ":")
			display := interleaveWithIDs(segments)

			enabled := []string{excludedPattern + ":*"}
			if enableAll {
				enabled = append(enabled, AllNamespaces)
			}
			cfg := TokenConfig{
				Enabled:  enabled,
				Excluded: []string{excludedPattern},
			}
			return !Eligible(display, cfg)
		},
		gen.SliceOfN(3, segment),
		gen.Bool(),
	))

	properties.Property("exact exclusion wins over the all sentinel but spares a sibling pattern", prop.ForAll(
		func(base string) bool {
			cfg := TokenConfig{
				Enabled:  []string{AllNamespaces},
				Excluded: []string{base},
			}
			if Eligible(fmt.Sprintf("%s:task1", base), cfg) {
				return false
			}
			// exact exclusion does not reject a sibling pattern
			return Eligible(fmt.Sprintf("%sx:task1", base), cfg)
		},
		segment,
	))

	properties.TestingRun(t)
}

// interleaveWithIDs builds a well-formed scope display name
// "type0:id0:type1:id1:..." from a list of node-type segments, so its
// extracted pattern (§4.1) equals strings.Join(segments, ":").
func interleaveWithIDs(segments []string) string {
	parts := make([]string, 0, len(segments)*2)
	for i, seg := range segments {
		parts = append(parts, seg, fmt.Sprintf("id%d", i))
	}
	return strings.Join(parts, ":")
}
