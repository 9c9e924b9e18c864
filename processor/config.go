// Package processor implements the stream processor orchestrator (spec.md
// §4.7, §5, §6, §7): it validates configuration up front, selects the
// minimum set of runtime modes to request, and drives a lazy, cancellable
// event sequence by pulling one raw chunk at a time from the external
// runtime and routing it through rawshape, tokenstream, and channel.
//
// The Stream/goroutine/channel shape is grounded on the teacher's
// anthropicStreamer: a single producer goroutine owns all mutable state and
// feeds a buffered channel the consumer drains, with a context cancel that
// tears the goroutine down without leaving anything buffered behind.
package processor

import (
	"fmt"
	"strings"

	"github.com/errajibadr/langgraph-agent-repo/channel"
	"github.com/errajibadr/langgraph-agent-repo/scope"
	"github.com/errajibadr/langgraph-agent-repo/telemetry"
	"github.com/errajibadr/langgraph-agent-repo/tokenstream"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Config is the full construction-time configuration for a Processor
// (§6.4): channel configurations plus the token-streaming configuration.
type Config struct {
	Channels []channel.Config
	Token    tokenstream.Config

	// ArgsSchema, when set, is applied to every tool call's parsed_args once
	// its buffer closes (toolcall.WithSchema).
	ArgsSchema *jsonschema.Schema
}

// Option configures a Processor at construction, for the ambient concerns
// SPEC_FULL.md layers on top of the spec's configuration surface (logging,
// metrics, tracing).
type Option func(*Processor)

// WithLogger attaches a structured logger. Defaults to telemetry.NoopLogger.
func WithLogger(l telemetry.Logger) Option { return func(p *Processor) { p.logger = l } }

// WithMetrics attaches a metrics recorder. Defaults to telemetry.NoopMetrics.
func WithMetrics(m telemetry.Metrics) Option { return func(p *Processor) { p.metrics = m } }

// WithTracer attaches a tracer. Defaults to telemetry.NoopTracer.
func WithTracer(t telemetry.Tracer) Option { return func(p *Processor) { p.tracer = t } }

// validateTokenConfig checks the "malformed pattern" ConfigInvalid condition
// from §7: every enabled/excluded pattern must be the "all" sentinel, or a
// ":"-joined sequence of non-empty segments optionally ending in the
// full-segment wildcard ":*".
func validateTokenConfig(cfg scope.TokenConfig) error {
	for _, entries := range [][]string{cfg.Enabled, cfg.Excluded} {
		for _, entry := range entries {
			if err := validatePattern(entry); err != nil {
				return err
			}
		}
	}
	return nil
}

func validatePattern(entry string) error {
	if entry == scope.AllNamespaces {
		return nil
	}
	if entry == "" {
		return fmt.Errorf("processor: empty scope pattern")
	}
	body := strings.TrimSuffix(entry, ":*")
	for _, segment := range strings.Split(body, ":") {
		if segment == "" {
			return fmt.Errorf("processor: malformed scope pattern %q", entry)
		}
	}
	return nil
}
