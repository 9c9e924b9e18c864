package processor

import "context"

// RawIterator is the produced iterator from spec.md §6.1: a lazy async
// sequence of raw chunks matching one of the five shapes in §4.2. It mirrors
// the teacher's model.Streamer: Recv blocks for the next element and returns
// io.EOF once the runtime is exhausted; Close releases any underlying
// resources and unblocks a pending Recv.
type RawIterator interface {
	Recv(ctx context.Context) (any, error)
	Close() error
}

// Runtime is the external graph-execution runtime handle from §4.7's
// "handle to the external runtime" input: given an input state value and a
// runtime configuration value, it starts one invocation and returns the raw
// iterator to drive it, requesting the given set of stream modes. This
// mirrors the teacher's model.Client.Stream(ctx, req) (model.Streamer,
// error) shape.
type Runtime interface {
	Stream(ctx context.Context, input any, runtimeConfig any, modes []string) (RawIterator, error)
}
