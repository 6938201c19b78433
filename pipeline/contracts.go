// Package pipeline implements the producer/processor/consumer pipeline
// runtime: the polymorphic contracts a NIC handle's facets and the
// concrete processors (bpfproc, script) all satisfy, the predicate
// compaction helper they are built on, and the worker that drives one
// producer through one processor to one consumer forever.
package pipeline

import (
	"context"

	"github.com/caladri/brilter/packet"
)

// Producer delivers packets received on an interface. Produce blocks,
// pulling batches from its internal RX source(s) and handing each batch
// to proc, forwarding out so proc can emit admitted packets downstream.
//
// Produce returns when ctx is cancelled, or on an unrecoverable backend
// error. Under normal operation it is invoked in an outer unbounded
// loop by Start and never returns on its own.
type Producer interface {
	Produce(ctx context.Context, proc Processor, out Consumer) error
}

// Consumer transmits a batch of packets, in order, on an interface.
// Consume must not block indefinitely on a live link, but may block
// while its underlying rings drain.
type Consumer interface {
	Consume(batch packet.Batch) error
}

// Processor transforms or filters a batch and forwards the result to
// out. It may call out.Consume zero or one time per invocation.
type Processor interface {
	Process(batch packet.Batch, out Consumer) error
}

// ProcessorFunc adapts a plain function to the Processor interface.
type ProcessorFunc func(batch packet.Batch, out Consumer) error

// Process implements Processor.
func (f ProcessorFunc) Process(batch packet.Batch, out Consumer) error {
	return f(batch, out)
}

// ConsumerFunc adapts a plain function to the Consumer interface.
type ConsumerFunc func(batch packet.Batch) error

// Consume implements Consumer.
func (f ConsumerFunc) Consume(batch packet.Batch) error {
	return f(batch)
}
