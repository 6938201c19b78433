// Package bpfproc implements the BPF-expression Processor of spec
// §4.G: a pipeline.Processor that compiles a libpcap filter expression
// once and evaluates it per packet, the direct Go analogue of the
// original's pcap_open_dead(DLT_EN10MB, 2048) + pcap_compile +
// pcap_offline_filter triad.
package bpfproc

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/caladri/brilter/packet"
	"github.com/caladri/brilter/pipeline"
)

// snapLen matches the original's pcap_open_dead second argument: large
// enough to let the filter program inspect any field it references.
const snapLen = 2048

// Processor evaluates a compiled BPF filter against every packet in a
// batch, forwarding only the packets that match.
type Processor struct {
	bpf pcap.BPF
}

// New compiles filter against an Ethernet link type, mirroring
// pcap_open_dead(DLT_EN10MB, snapLen) followed by pcap_compile with
// PCAP_NETMASK_UNKNOWN (pcap.NewBPF always compiles with an unknown
// netmask internally, so no netmask parameter is needed here).
func New(filter string) (*Processor, error) {
	bpf, err := pcap.NewBPF(layers.LinkTypeEthernet, snapLen, filter)
	if err != nil {
		return nil, err
	}
	return &Processor{bpf: *bpf}, nil
}

// Process implements pipeline.Processor by running pipeline.Predicate
// with a pass function backed by pcap_offline_filter semantics.
func (p *Processor) Process(batch packet.Batch, out pipeline.Consumer) error {
	return pipeline.Predicate(p.matches, batch, out)
}

func (p *Processor) matches(pkt packet.Packet) bool {
	ci := gopacket.CaptureInfo{
		CaptureLength: len(pkt.Data),
		Length:        len(pkt.Data),
	}
	return p.bpf.Matches(ci, pkt.Data)
}
