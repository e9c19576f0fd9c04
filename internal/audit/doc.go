// Package audit implements async event dispatching for security-relevant
// operations: sign-up, sign-in, sign-out, token rejection, rate limiting.
//
// [Dispatcher] is a buffered async relay with drop-if-full or
// block-with-context semantics; [Sink] is the consumer interface
// (channel, JSON writer, no-op). The package owns buffering and delivery
// only; which events get emitted is the Engine's call. It never filters
// events and performs no I/O beyond what a caller-supplied Sink does.
package audit
