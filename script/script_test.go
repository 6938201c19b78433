package script_test

import (
	"context"
	"testing"

	lua "github.com/yuin/gopher-lua"
	"github.com/stretchr/testify/require"

	"github.com/caladri/brilter/packet"
	"github.com/caladri/brilter/pipeline"
	"github.com/caladri/brilter/script"
)

type recordingConsumer struct {
	calls []packet.Batch
}

func (r *recordingConsumer) Consume(b packet.Batch) error {
	r.calls = append(r.calls, b)
	return nil
}

func processorGlobal(t *testing.T, rt *script.Runtime, name string) pipeline.Processor {
	t.Helper()
	v := rt.Global(name)
	ud, ok := v.(*lua.LUserData)
	require.True(t, ok, "%s is not userdata", name)
	proc, ok := ud.Value.(pipeline.Processor)
	require.True(t, ok, "%s is not a processor", name)
	return proc
}

func TestPredicateProcessorPassAll(t *testing.T) {
	rt, err := script.ExecuteString(context.Background(), `
		p = brilter.predicate_processor(function(pkt) return true end)
	`, nil)
	require.NoError(t, err)
	defer rt.L.Close()

	proc := processorGlobal(t, rt, "p")
	c := &recordingConsumer{}
	batch := packet.Batch{{Data: []byte{1, 2, 3}}, {Data: []byte{4, 5, 6}}}
	require.NoError(t, proc.Process(batch, c))
	require.Len(t, c.calls, 1)
	require.Equal(t, batch, c.calls[0])
}

func TestPredicateProcessorDenyAll(t *testing.T) {
	rt, err := script.ExecuteString(context.Background(), `
		p = brilter.predicate_processor(function(pkt) return false end)
	`, nil)
	require.NoError(t, err)
	defer rt.L.Close()

	proc := processorGlobal(t, rt, "p")
	c := &recordingConsumer{}
	require.NoError(t, proc.Process(packet.Batch{{Data: []byte{1}}}, c))
	require.Empty(t, c.calls)
}

func TestPredicateProcessorReadsPacketField(t *testing.T) {
	rt, err := script.ExecuteString(context.Background(), `
		p = brilter.predicate_processor(function(pkt)
			return pkt:read16be(0) == 0x0102
		end)
	`, nil)
	require.NoError(t, err)
	defer rt.L.Close()

	proc := processorGlobal(t, rt, "p")
	c := &recordingConsumer{}
	batch := packet.Batch{{Data: []byte{1, 2, 3, 4}}}
	require.NoError(t, proc.Process(batch, c))
	require.Len(t, c.calls, 1)
}

func TestPredicateProcessorOutOfRangeReadFailsTheBatch(t *testing.T) {
	rt, err := script.ExecuteString(context.Background(), `
		p = brilter.predicate_processor(function(pkt)
			return pkt:read32be(0) == 0
		end)
	`, nil)
	require.NoError(t, err)
	defer rt.L.Close()

	proc := processorGlobal(t, rt, "p")
	c := &recordingConsumer{}
	// Three bytes: read32be(0) needs four.
	err = proc.Process(packet.Batch{{Data: []byte{1, 2, 3}}}, c)
	require.Error(t, err)
	require.Contains(t, err.Error(), "read offset excessive")
}

func TestPredicateProcessorNonBooleanReturnFails(t *testing.T) {
	rt, err := script.ExecuteString(context.Background(), `
		p = brilter.predicate_processor(function(pkt) return 1 end)
	`, nil)
	require.NoError(t, err)
	defer rt.L.Close()

	proc := processorGlobal(t, rt, "p")
	c := &recordingConsumer{}
	err = proc.Process(packet.Batch{{Data: []byte{1}}}, c)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not boolean")
}

func TestPcapFilterProcessorConstruction(t *testing.T) {
	rt, err := script.ExecuteString(context.Background(), `
		p = brilter.pcap_filter_processor("tcp port 22")
	`, nil)
	require.NoError(t, err)
	defer rt.L.Close()

	_ = processorGlobal(t, rt, "p")
}

func TestPcapFilterProcessorBadExpressionRaisesScriptError(t *testing.T) {
	_, err := script.ExecuteString(context.Background(), `
		p = brilter.pcap_filter_processor("not a valid filter (")
	`, nil)
	require.Error(t, err)
}
