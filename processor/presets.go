package processor

import (
	"github.com/errajibadr/langgraph-agent-repo/channel"
	"github.com/errajibadr/langgraph-agent-repo/scope"
	"github.com/errajibadr/langgraph-agent-repo/tokenstream"
)

// DefaultConfig returns the "default factory preset" named in spec.md §6.4
// and §9 ("Factory presets that build pre-configured processors are pure
// constructors"): a MESSAGE channel on the conventional "messages" key,
// token streaming enabled for every namespace with tool-call events
// included. It is grounded on the teacher's retry.DefaultConfig /
// retry.DefaultStreamReconnectConfig (runtime/a2a/retry/retry.go): a bare
// struct literal with conservative, broadly-applicable values, callable with
// no arguments and safe to use as-is or as a starting point for overrides.
func DefaultConfig() Config {
	return Config{
		Channels: []channel.Config{
			{Key: "messages", Delivery: channel.DeliveryFullValue, Kind: channel.KindMessage},
		},
		Token: tokenstream.Config{
			TokenConfig: scope.TokenConfig{
				Enabled: []string{scope.AllNamespaces},
			},
			IncludeToolCalls: true,
		},
	}
}

// MessagesOnlyConfig returns a preset that monitors only the "messages"
// channel and disables token/tool-call streaming entirely — the minimal
// configuration for a consumer that only wants finalized messages, never
// incremental token deltas. It monitors no artifact channel;
// WithArtifactChannel adds one.
func MessagesOnlyConfig() Config {
	return Config{
		Channels: []channel.Config{
			{Key: "messages", Delivery: channel.DeliveryFullValue, Kind: channel.KindMessage},
		},
	}
}

// WithArtifactChannel returns a copy of cfg with an additional ARTIFACT
// channel monitoring key, tagged artifactType, appended to its channel
// list. It is a pure function: cfg itself is never mutated, following the
// same copy-then-append shape the teacher's own DSL option helpers use
// when layering one preset on top of another (dsl/policy.go).
func WithArtifactChannel(cfg Config, key, artifactType string) Config {
	channels := make([]channel.Config, len(cfg.Channels), len(cfg.Channels)+1)
	copy(channels, cfg.Channels)
	channels = append(channels, channel.Config{
		Key:          key,
		Delivery:     channel.DeliveryFullValue,
		Kind:         channel.KindArtifact,
		ArtifactType: artifactType,
	})
	cfg.Channels = channels
	return cfg
}
