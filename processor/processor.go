package processor

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/errajibadr/langgraph-agent-repo/channel"
	"github.com/errajibadr/langgraph-agent-repo/event"
	"github.com/errajibadr/langgraph-agent-repo/message"
	"github.com/errajibadr/langgraph-agent-repo/rawshape"
	"github.com/errajibadr/langgraph-agent-repo/scope"
	"github.com/errajibadr/langgraph-agent-repo/telemetry"
	"github.com/errajibadr/langgraph-agent-repo/toolcall"
	"github.com/errajibadr/langgraph-agent-repo/tokenstream"
)

// Processor is the stream processor orchestrator (§4.7). One Processor
// serves one streaming session at a time; a caller needing concurrent
// sessions constructs one Processor per session (§5 "Shared resources").
type Processor struct {
	cfg Config

	tracker  *toolcall.Tracker
	engine   *channel.Engine
	streamer *tokenstream.Streamer

	modes       map[rawshape.Mode]bool
	primaryMode rawshape.Mode

	logger  telemetry.Logger
	metrics telemetry.Metrics
	tracer  telemetry.Tracer
}

// New validates cfg and constructs a Processor. Configuration errors
// (duplicate channel keys, malformed scope patterns) are returned
// immediately as a *Fault, before any iteration starts, per §7's
// ConfigInvalid row.
func New(cfg Config, opts ...Option) (*Processor, error) {
	if err := channel.ValidateConfigs(cfg.Channels); err != nil {
		return nil, newFault(event.ErrorKindConfigInvalid, err.Error())
	}
	if err := validateTokenConfig(cfg.Token.TokenConfig); err != nil {
		return nil, newFault(event.ErrorKindConfigInvalid, err.Error())
	}

	var trackerOpts []toolcall.Option
	if cfg.ArgsSchema != nil {
		trackerOpts = append(trackerOpts, toolcall.WithSchema(cfg.ArgsSchema))
	}
	tracker := toolcall.NewTracker(trackerOpts...)
	engine := channel.NewEngine(cfg.Channels, tracker)
	streamer := tokenstream.NewStreamer(cfg.Token, tracker, engine)

	modes := computeModes(cfg)

	p := &Processor{
		cfg:         cfg,
		tracker:     tracker,
		engine:      engine,
		streamer:    streamer,
		modes:       modes,
		primaryMode: primaryMode(modes),
		logger:      telemetry.NewNoopLogger(),
		metrics:     telemetry.NewNoopMetrics(),
		tracer:      telemetry.NewNoopTracer(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// computeModes implements §4.7's mode-selection rule: TOKEN mode whenever
// token streaming or tool-call streaming is enabled; FULL_VALUE/DELTA_ONLY
// whenever any configured channel uses that delivery mode.
func computeModes(cfg Config) map[rawshape.Mode]bool {
	modes := make(map[rawshape.Mode]bool)
	if len(cfg.Token.Enabled) > 0 || cfg.Token.IncludeToolCalls {
		modes[rawshape.ModeToken] = true
	}
	for _, c := range cfg.Channels {
		switch c.Delivery {
		case channel.DeliveryFullValue:
			modes[rawshape.ModeFullValue] = true
		case channel.DeliveryDeltaOnly:
			modes[rawshape.ModeDeltaOnly] = true
		}
	}
	return modes
}

// requestedModes returns the stable list of mode names to pass to
// Runtime.Stream.
func requestedModes(modes map[rawshape.Mode]bool) []string {
	var out []string
	for _, m := range []rawshape.Mode{rawshape.ModeToken, rawshape.ModeFullValue, rawshape.ModeDeltaOnly} {
		if modes[m] {
			out = append(out, string(m))
		}
	}
	return out
}

// primaryMode picks the mode implied for a bare, envelope-free chunk (shape
// 1 and shape 3 in §4.2), which carries no mode marker of its own and so
// only occurs when a single mode was requested. TOKEN takes priority over
// FULL_VALUE over DELTA_ONLY when, unusually, more than one mode was
// requested but the runtime still emits an unmarked chunk.
func primaryMode(modes map[rawshape.Mode]bool) rawshape.Mode {
	for _, m := range []rawshape.Mode{rawshape.ModeToken, rawshape.ModeFullValue, rawshape.ModeDeltaOnly} {
		if modes[m] {
			return m
		}
	}
	return rawshape.ModeFullValue
}

// Stream implements §4.7's single public operation. It starts the runtime
// invocation, then lazily pulls and routes one raw chunk at a time from a
// dedicated producer goroutine, yielding events to the returned channel in
// production order. The channel is closed when the runtime is exhausted,
// when a fatal condition surfaces a terminal event.Fault, or when ctx is
// canceled.
func (p *Processor) Stream(ctx context.Context, rt Runtime, input any, runtimeConfig any) <-chan event.Event {
	out := make(chan event.Event, 32)

	sessionID := fmt.Sprintf("stream-%s", uuid.NewString())
	ctx, span := p.tracer.Start(ctx, "processor.Stream", trace.WithAttributes(attribute.String("session_id", sessionID)))
	p.logger.Info(ctx, "stream session started", "session_id", sessionID)

	iter, err := rt.Stream(ctx, input, runtimeConfig, requestedModes(p.modes))
	if err != nil {
		p.logger.Error(ctx, "runtime failed to start", "session_id", sessionID, "error", err)
		p.metrics.IncCounter("processor.session.runtime_failure", 1)
		go func() {
			defer close(out)
			defer span.End()
			p.send(ctx, out, event.NewFault(scope.RootDisplayName, "", event.FaultPayload{
				ErrorKind:   event.ErrorKindRuntimeFailure,
				Description: err.Error(),
			}))
		}()
		return out
	}

	go p.run(ctx, sessionID, iter, out, span)
	return out
}

func (p *Processor) run(ctx context.Context, sessionID string, iter RawIterator, out chan<- event.Event, span telemetry.Span) {
	defer span.End()
	defer close(out)
	defer p.reset()
	defer iter.Close()

	for {
		if ctx.Err() != nil {
			p.logger.Info(ctx, "stream session canceled", "session_id", sessionID)
			return
		}

		raw, err := iter.Recv(ctx)
		if err != nil {
			p.finishMessage(ctx, out)
			if errors.Is(err, io.EOF) {
				p.logger.Info(ctx, "stream session completed", "session_id", sessionID)
				p.metrics.IncCounter("processor.session.completed", 1)
				return
			}
			if ctx.Err() != nil {
				// Cancellation (§5): no terminal event, nothing buffered.
				return
			}
			p.logger.Error(ctx, "runtime iterator failed", "session_id", sessionID, "error", err)
			p.metrics.IncCounter("processor.session.runtime_failure", 1)
			p.send(ctx, out, event.NewFault(scope.RootDisplayName, "", event.FaultPayload{
				ErrorKind:   event.ErrorKindRuntimeFailure,
				Description: err.Error(),
			}))
			return
		}

		chunk, err := rawshape.Parse(raw, p.primaryMode)
		if err != nil {
			p.finishMessage(ctx, out)
			p.logger.Error(ctx, "raw shape unrecognized", "session_id", sessionID, "error", err)
			p.metrics.IncCounter("processor.session.raw_shape_unknown", 1)
			p.send(ctx, out, event.NewFault(scope.RootDisplayName, "", event.FaultPayload{
				ErrorKind:   event.ErrorKindRawShapeUnknown,
				Description: err.Error(),
			}))
			return
		}

		events, err := p.route(chunk)
		if err != nil {
			p.finishMessage(ctx, out)
			p.logger.Error(ctx, "chunk routing failed", "session_id", sessionID, "error", err)
			p.metrics.IncCounter("processor.session.runtime_failure", 1)
			p.send(ctx, out, event.NewFault(scope.RootDisplayName, "", event.FaultPayload{
				ErrorKind:   event.ErrorKindRuntimeFailure,
				Description: err.Error(),
			}))
			return
		}
		if !p.sendAll(ctx, out, events) {
			return
		}
	}
}

// route implements §4.7's per-chunk routing table.
func (p *Processor) route(ch rawshape.Chunk) ([]event.Event, error) {
	displayName := scope.RootDisplayName
	if ch.ScopeTuple != nil {
		displayName = scope.Scope(ch.ScopeTuple).DisplayName()
	}

	switch ch.Mode {
	case rawshape.ModeToken:
		pair, ok := ch.Data.(rawshape.TokenPair)
		if !ok {
			return nil, fmt.Errorf("processor: TOKEN-mode chunk carried no (message, metadata) pair")
		}
		msg, err := message.FromAny(pair.Message)
		if err != nil {
			return nil, fmt.Errorf("processor: decoding token-mode message: %w", err)
		}
		md, err := message.MetadataFromAny(pair.Metadata)
		if err != nil {
			return nil, fmt.Errorf("processor: decoding token-mode metadata: %w", err)
		}
		if len(md.Scope) == 0 && ch.ScopeTuple != nil {
			md.Scope = ch.ScopeTuple
		}
		return p.streamer.Handle(msg, md), nil

	case rawshape.ModeFullValue:
		value, ok := ch.Data.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("processor: FULL_VALUE chunk was not a mapping")
		}
		return p.engine.HandleFullValue(displayName, value, p.cfg.Token.IncludeToolCalls), nil

	case rawshape.ModeDeltaOnly:
		value, ok := ch.Data.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("processor: DELTA_ONLY chunk was not a mapping")
		}
		return p.engine.HandleDeltaOnly(displayName, value), nil

	default:
		return nil, fmt.Errorf("processor: chunk carried unrecognized mode %q", ch.Mode)
	}
}

// finishMessage closes out any tool call still STREAMING, so a stream that
// ends (cleanly or faulted) mid-argument-buffer still surfaces
// ToolCallInvalidJson failures instead of silently dropping them (§7).
func (p *Processor) finishMessage(ctx context.Context, out chan<- event.Event) {
	p.sendAll(ctx, out, p.tracker.FinalizeAll(p.cfg.Token.IncludeToolCalls))
}

func (p *Processor) reset() {
	p.engine.Reset()
	p.streamer.Reset()
	p.tracker.Reset()
}

func (p *Processor) send(ctx context.Context, out chan<- event.Event, e event.Event) bool {
	select {
	case out <- e:
		return true
	case <-ctx.Done():
		return false
	}
}

func (p *Processor) sendAll(ctx context.Context, out chan<- event.Event, events []event.Event) bool {
	for _, e := range events {
		if !p.send(ctx, out, e) {
			return false
		}
	}
	return true
}
