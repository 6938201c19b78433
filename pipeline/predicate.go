package pipeline

import "github.com/caladri/brilter/packet"

// Predicate compacts batch in place, keeping exactly the packets for
// which pass returns true (order preserved), then, if anything
// survived, forwards the compacted batch to out. If every packet fails
// pass, out is not called at all.
//
// This is the shared substrate for bpfproc and script: both dispatch
// their per-packet verdict through Predicate rather than re-implementing
// the compact-then-forward dance.
func Predicate(pass func(packet.Packet) bool, batch packet.Batch, out Consumer) error {
	kept := packet.Compact(batch, pass)
	if len(kept) == 0 {
		return nil
	}
	return out.Consume(kept)
}
