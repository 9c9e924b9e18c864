// Package channel implements the channel diff engine (spec.md §3.2, §4.3)
// and the message channel handler (§4.5): per configured channel key, it
// tracks the last observed value per scope, computes value-level deltas,
// and emits ChannelValue/ChannelUpdate/Artifact/MessageReceived events.
//
// It is grounded on the teacher's hooks.Bus for its fan-out/ordering
// discipline (configured channels are visited in declaration order, same
// as Bus visits subscribers in registration order) and on model/json.go for
// the "decode generic value into a typed shape, fail closed" idiom used to
// recognize message-shaped channel content.
package channel

import "fmt"

// DeliveryMode is a channel's delivery mode, per §3.2.
type DeliveryMode string

const (
	DeliveryFullValue DeliveryMode = "FULL_VALUE"
	DeliveryDeltaOnly DeliveryMode = "DELTA_ONLY"
)

// Kind is a channel's content kind, per §3.2.
type Kind string

const (
	KindMessage  Kind = "MESSAGE"
	KindArtifact Kind = "ARTIFACT"
	KindGeneric  Kind = "GENERIC"
)

// Filter is a user-provided value filter predicate (§3.2, §4.3): returning
// false drops the value before it is emitted as an event.
type Filter func(value any) bool

// Config is one immutable channel configuration.
type Config struct {
	// Key is the state field this channel monitors.
	Key string
	// Delivery selects FULL_VALUE or DELTA_ONLY handling for this key.
	Delivery DeliveryMode
	// Kind selects MESSAGE, ARTIFACT, or GENERIC routing.
	Kind Kind
	// ArtifactType tags ARTIFACT-kind events; ignored otherwise.
	ArtifactType string
	// Filter optionally drops values before emission.
	Filter Filter
}

// ValidateConfigs checks the configuration error conditions from §7's
// ConfigInvalid row: duplicate channel keys. It runs before any iteration
// begins, per §4.7.
func ValidateConfigs(configs []Config) error {
	seen := make(map[string]struct{}, len(configs))
	for _, c := range configs {
		if c.Key == "" {
			return fmt.Errorf("channel: config has empty key")
		}
		if _, dup := seen[c.Key]; dup {
			return fmt.Errorf("channel: duplicate channel key %q", c.Key)
		}
		seen[c.Key] = struct{}{}
	}
	return nil
}
