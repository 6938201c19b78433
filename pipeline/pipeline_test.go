package pipeline_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/caladri/brilter/packet"
	"github.com/caladri/brilter/pipeline"
	"github.com/stretchr/testify/require"
)

type countingConsumer struct {
	n atomic.Int64
}

func (c *countingConsumer) Consume(b packet.Batch) error {
	c.n.Add(int64(len(b)))
	return nil
}

// produceOnce emits a fixed batch once, then blocks until ctx is done,
// so Pipeline.Start exercises exactly one Produce/Process/Consume round
// trip before the goroutine is torn down.
type produceOnce struct {
	batch packet.Batch
	done  chan struct{}
}

func (p *produceOnce) Produce(ctx context.Context, proc pipeline.Processor, out pipeline.Consumer) error {
	if err := proc.Process(p.batch, out); err != nil {
		return err
	}
	close(p.done)
	<-ctx.Done()
	return nil
}

func TestPipelineDeliversBatchThroughPassAllProcessor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	producer := &produceOnce{
		batch: packet.Batch{{Data: []byte{1}}, {Data: []byte{2}}, {Data: []byte{3}}},
		done:  make(chan struct{}),
	}
	consumer := &countingConsumer{}
	passAll := pipeline.ProcessorFunc(func(b packet.Batch, out pipeline.Consumer) error {
		return pipeline.Predicate(func(packet.Packet) bool { return true }, b, out)
	})

	pl, err := pipeline.Start(ctx, producer, passAll, consumer, nil)
	require.NoError(t, err)

	select {
	case <-producer.done:
	case <-time.After(time.Second):
		t.Fatal("producer never ran")
	}
	require.EqualValues(t, 3, consumer.n.Load())

	cancel()
	require.NoError(t, pl.Wait())
}

func TestPipelineSurfacesProducerError(t *testing.T) {
	boom := errors.New("boom")
	failing := failingProducer{err: boom}
	pl, err := pipeline.Start(context.Background(), failing, pipeline.ProcessorFunc(func(packet.Batch, pipeline.Consumer) error { return nil }), &countingConsumer{}, nil)
	require.NoError(t, err)
	require.ErrorIs(t, pl.Wait(), boom)
}

type failingProducer struct{ err error }

func (f failingProducer) Produce(ctx context.Context, proc pipeline.Processor, out pipeline.Consumer) error {
	return f.err
}
