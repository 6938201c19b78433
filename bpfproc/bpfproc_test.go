package bpfproc_test

import (
	"testing"

	"github.com/caladri/brilter/bpfproc"
	"github.com/caladri/brilter/packet"
	"github.com/stretchr/testify/require"
)

type recordingConsumer struct {
	calls []packet.Batch
}

func (r *recordingConsumer) Consume(b packet.Batch) error {
	r.calls = append(r.calls, b)
	return nil
}

// ethIPv4TCP builds a minimal Ethernet+IPv4+TCP frame with the given
// destination port, just large enough for a BPF program to inspect.
func ethIPv4TCP(dstPort uint16) []byte {
	f := make([]byte, 14+20+20)
	f[12], f[13] = 0x08, 0x00 // EtherType IPv4
	f[14] = 0x45              // version 4, IHL 5
	f[23] = 6                 // protocol TCP
	tcp := f[34:]
	tcp[2] = byte(dstPort >> 8)
	tcp[3] = byte(dstPort)
	return f
}

func TestNewInvalidExpressionFails(t *testing.T) {
	_, err := bpfproc.New("this is not a valid bpf expression (")
	require.Error(t, err)
}

func TestProcessFiltersByPort(t *testing.T) {
	p, err := bpfproc.New("tcp port 22")
	require.NoError(t, err)

	batch := packet.Batch{
		{Data: ethIPv4TCP(22)},
		{Data: ethIPv4TCP(80)},
	}
	c := &recordingConsumer{}
	require.NoError(t, p.Process(batch, c))

	require.Len(t, c.calls, 1)
	require.Len(t, c.calls[0], 1)
	require.Equal(t, batch[0].Data, c.calls[0][0].Data)
}

func TestProcessDenyAllYieldsNoConsumerCall(t *testing.T) {
	p, err := bpfproc.New("tcp port 22")
	require.NoError(t, err)

	batch := packet.Batch{{Data: ethIPv4TCP(443)}}
	c := &recordingConsumer{}
	require.NoError(t, p.Process(batch, c))
	require.Empty(t, c.calls)
}
