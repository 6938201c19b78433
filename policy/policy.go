// Package policy implements the default directional firewall policy of
// spec §6 natively in Go (no BPF/pcap involved), reading Ethernet/IPv6/
// TCP header fields directly off the wire bytes, plus the equivalent
// literal BPF expressions for callers that prefer compiling a filter
// through bpfproc instead, and a declarative JSON policy file as an
// enrichment beyond the distilled specification.
package policy

import (
	"encoding/binary"

	"github.com/caladri/brilter/dir"
	"github.com/caladri/brilter/packet"
	"github.com/caladri/brilter/pipeline"
)

const (
	ethHeaderLen  = 14
	ethTypeIPv6   = 0x86DD
	ipv6HeaderLen = 40

	// Offsets are relative to the start of the frame.
	offIPv6Version    = ethHeaderLen     // high nibble of this byte
	offIPv6NextHeader = ethHeaderLen + 6
	offIPv6Src        = ethHeaderLen + 8
	offIPv6Dst        = ethHeaderLen + 24
	offTCP            = ethHeaderLen + ipv6HeaderLen

	nextHeaderICMPv6 = 58
	nextHeaderTCP    = 6

	tcpFlagSYN = 0x02
	tcpFlagACK = 0x10
)

// Default returns the pipeline.Processor implementing spec §6's default
// directional policy for packets flowing in direction d. Link-local
// pairs are matched on fe80::/10; DefaultInboundFilter and
// DefaultOutboundFilter keep the original /112 literal instead.
func Default(d dir.Direction) pipeline.Processor {
	return pipeline.ProcessorFunc(func(batch packet.Batch, out pipeline.Consumer) error {
		return pipeline.Predicate(func(p packet.Packet) bool {
			return passDefault(p.Data, d)
		}, batch, out)
	})
}

func passDefault(f []byte, d dir.Direction) bool {
	if len(f) < ethHeaderLen {
		return false
	}
	if binary.BigEndian.Uint16(f[12:14]) != ethTypeIPv6 {
		return false
	}
	if len(f) < offIPv6Dst+16 {
		return false
	}
	if f[offIPv6Version]>>4 != 6 {
		return false
	}

	src := f[offIPv6Src : offIPv6Src+16]
	dst := f[offIPv6Dst : offIPv6Dst+16]
	nextHeader := f[offIPv6NextHeader]

	if src[0] == 0xfe && src[1]&0xc0 == 0x80 && dst[0] == 0xfe && dst[1]&0xc0 == 0x80 {
		return true
	}
	if dst[0] == 0xff && dst[1]&0x0f == 0x02 {
		return true
	}
	if nextHeader == nextHeaderICMPv6 {
		return true
	}
	if nextHeader != nextHeaderTCP {
		return false
	}
	if d.Is(dir.DirectionOutbound) {
		return true
	}

	// Inbound TCP: pass unless it is a bare SYN to a port other than 22.
	const tcpFlagsOff = offTCP + 13
	const tcpDstPortOff = offTCP + 2
	if len(f) < tcpDstPortOff+2 || len(f) < tcpFlagsOff+1 {
		return false
	}
	flags := f[tcpFlagsOff]
	dstPort := binary.BigEndian.Uint16(f[tcpDstPortOff : tcpDstPortOff+2])
	bareSYN := flags&(tcpFlagSYN|tcpFlagACK) == tcpFlagSYN
	return !bareSYN || dstPort == 22
}
