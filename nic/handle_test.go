package nic_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/caladri/brilter/nic"
	"github.com/caladri/brilter/packet"
	"github.com/caladri/brilter/pipeline"
	"github.com/stretchr/testify/require"
)

func TestOpenReturnsSameHandleForSameName(t *testing.T) {
	name := fmt.Sprintf("loop:%s", t.Name())

	h1, err := nic.Open(name)
	require.NoError(t, err)
	h2, err := nic.Open(name)
	require.NoError(t, err)

	require.Same(t, h1, h2)
	require.Same(t, h1.Producer(), h2.Producer())
	require.Same(t, h1.Consumer(), h2.Consumer())
}

func TestOpenReturnsDistinctHandlesForDistinctNames(t *testing.T) {
	h1, err := nic.Open(fmt.Sprintf("loop:%s-a", t.Name()))
	require.NoError(t, err)
	h2, err := nic.Open(fmt.Sprintf("loop:%s-b", t.Name()))
	require.NoError(t, err)

	require.NotSame(t, h1, h2)
}

func TestOpenUnknownSchemeFails(t *testing.T) {
	_, err := nic.Open("bogus-no-colon")
	require.ErrorIs(t, err, nic.ErrUnknownScheme)
}

func TestOpenNetmapWithoutBuildTagFails(t *testing.T) {
	_, err := nic.Open(fmt.Sprintf("netmap:%s", t.Name()))
	require.ErrorIs(t, err, nic.ErrNetmapUnavailable)
}

// TestLoopRoundTripDeliversEveryPacketExactlyOnceInOrder exercises the
// "loop:" backend end to end: a pipeline whose consumer is a handle's
// TxEnd and whose producer is the same handle's RxEnd must deliver
// every packet handed to Consume back out through Produce, in order,
// exactly once, the backend-level analogue of spec §8's loopback
// pipeline testable property.
func TestLoopRoundTripDeliversEveryPacketExactlyOnceInOrder(t *testing.T) {
	h, err := nic.Open(fmt.Sprintf("loop:%s", t.Name()))
	require.NoError(t, err)

	const n = 500
	in := make(packet.Batch, n)
	for i := range in {
		in[i] = packet.Packet{Data: []byte{byte(i), byte(i >> 8)}}
	}
	require.NoError(t, h.Consumer().Consume(in))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got packet.Batch
	done := make(chan struct{})
	collect := pipeline.ProcessorFunc(func(b packet.Batch, out pipeline.Consumer) error {
		got = append(got, b...)
		if len(got) >= n {
			close(done)
		}
		return nil
	})

	pl, err := pipeline.Start(ctx, h.Producer(), collect, recordingConsumer{}, nil)
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("did not receive all packets")
	}
	cancel()
	_ = pl.Wait()

	require.Len(t, got, n)
	for i, p := range got {
		require.Equal(t, []byte{byte(i), byte(i >> 8)}, p.Data)
	}
}

type recordingConsumer struct{}

func (recordingConsumer) Consume(packet.Batch) error { return nil }
