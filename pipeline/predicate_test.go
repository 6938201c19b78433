package pipeline_test

import (
	"testing"

	"github.com/caladri/brilter/packet"
	"github.com/caladri/brilter/pipeline"
	"github.com/stretchr/testify/require"
)

type recordingConsumer struct {
	calls []packet.Batch
}

func (r *recordingConsumer) Consume(b packet.Batch) error {
	r.calls = append(r.calls, b)
	return nil
}

func TestPredicatePassAllYieldsBatchUnchanged(t *testing.T) {
	c := &recordingConsumer{}
	b := packet.Batch{{Data: []byte{1}}, {Data: []byte{2}}}

	err := pipeline.Predicate(func(packet.Packet) bool { return true }, b, c)
	require.NoError(t, err)
	require.Len(t, c.calls, 1)
	require.Equal(t, b, c.calls[0])
}

func TestPredicateDenyAllYieldsNoConsumerCall(t *testing.T) {
	c := &recordingConsumer{}
	b := packet.Batch{{Data: []byte{1}}, {Data: []byte{2}}}

	err := pipeline.Predicate(func(packet.Packet) bool { return false }, b, c)
	require.NoError(t, err)
	require.Empty(t, c.calls)
}

func TestPredicateOrderPreserving(t *testing.T) {
	c := &recordingConsumer{}
	b := packet.Batch{{Data: []byte{1}}, {Data: []byte{2}}, {Data: []byte{3}}, {Data: []byte{4}}}

	err := pipeline.Predicate(func(p packet.Packet) bool { return p.Data[0]%2 == 1 }, b, c)
	require.NoError(t, err)
	require.Len(t, c.calls, 1)
	require.Equal(t, []byte{1}, c.calls[0][0].Data)
	require.Equal(t, []byte{3}, c.calls[0][1].Data)
}
