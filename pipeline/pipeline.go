package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Pipeline drives one Producer through one Processor to one Consumer,
// on its own goroutine, until its context is cancelled. Two pipelines
// sharing a NIC handle (spec §4.H) never contend on ring state because
// the handle structurally splits RX state (driven only by a Producer)
// from TX state (driven only by a Consumer).
type Pipeline struct {
	producer  Producer
	processor Processor
	consumer  Consumer

	logger *zerolog.Logger

	done chan struct{}
	err  atomic.Value // error
}

// Start spawns a goroutine whose body loops Produce(ctx, processor,
// consumer) until ctx is cancelled or Produce returns a non-nil error.
// Matches spec §4.H ("loop forever: producer.produce(...)"), translated
// to a goroutine the way the teacher spawns one per pipe direction
// (pipe.Pipe.Start's "go p.R.Process(...)" / "go p.L.Process(...)").
func Start(ctx context.Context, producer Producer, processor Processor, consumer Consumer, logger *zerolog.Logger) (*Pipeline, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	pl := &Pipeline{
		producer:  producer,
		processor: processor,
		consumer:  consumer,
		logger:    logger,
		done:      make(chan struct{}),
	}

	go pl.run(ctx)

	return pl, nil
}

func (pl *Pipeline) run(ctx context.Context) {
	defer close(pl.done)

	for {
		if ctx.Err() != nil {
			return
		}

		err := pl.producer.Produce(ctx, pl.processor, pl.consumer)
		if err != nil {
			pl.err.Store(err)
			pl.logger.Error().Err(err).Msg("pipeline: produce failed, stopping")
			return
		}

		// A well-behaved Producer only returns nil when ctx is
		// cancelled; this guards against one that returns early.
		if ctx.Err() != nil {
			return
		}
	}
}

// Wait blocks until the pipeline's goroutine returns (normally because
// ctx was cancelled, or because Produce failed), the direct translation
// of the original's pipe_wait/pthread_join.
func (pl *Pipeline) Wait() error {
	<-pl.done
	if err, ok := pl.err.Load().(error); ok {
		return err
	}
	return nil
}

// Done returns a channel closed once the pipeline's goroutine exits.
func (pl *Pipeline) Done() <-chan struct{} {
	return pl.done
}
