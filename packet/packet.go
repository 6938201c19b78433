// Package packet describes a borrowed Ethernet frame and a batch thereof.
//
// A Packet never owns its bytes: Data aliases memory owned by whichever
// Producer emitted the packet (a kernel-bypass ring slot, or a loopback
// backend's scratch buffer) and is only valid until that Producer
// publishes its batch and moves on. Processors that need to retain bytes
// beyond the Process call must copy them.
package packet

// Packet is a borrowed view over bytes received on an interface.
type Packet struct {
	Data []byte
}

// Len returns the packet length in bytes.
func (p Packet) Len() int {
	return len(p.Data)
}

// Batch is a contiguous, possibly-compacted sequence of packets.
//
// Processors may compact a Batch in place (see Compact), keeping only a
// prefix of packets that pass some predicate, preserving relative order.
type Batch []Packet

// Compact rewrites b in place to contain only the packets for which
// keep returns true, preserving their relative order, and returns the
// resulting sub-slice. This is the substrate both concrete processors
// (bpfproc and script) are built on.
func Compact(b Batch, keep func(Packet) bool) Batch {
	n := 0
	for _, p := range b {
		if !keep(p) {
			continue
		}
		b[n] = p
		n++
	}
	return b[:n]
}
