// Package nic implements the NIC handle registry of spec §4.B: one
// Handle per interface name, shared by every pipeline that opens it,
// split into an RxEnd (driven by exactly one Producer) and a TxEnd
// (driven by exactly one Consumer) so that two pipelines sharing a
// handle never contend on the same ring cursor.
//
// Backends are selected by the name's scheme prefix: "loop:" opens an
// in-process, no-cgo emulated interface (always built, used by tests
// and by the loopback testable property of spec §8); "netmap:" opens
// a real netmap(4) device and requires the netmap build tag.
package nic

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/caladri/brilter/packet"
	"github.com/caladri/brilter/pipeline"
	"github.com/puzpuzpuz/xsync/v3"
)

// BatchSize bounds the number of packets drained from one RX ring in
// a single Produce round, matching the original's fixed nh_packets[1024]
// scratch array.
const BatchSize = 1024

var registry = xsync.NewMapOf[string, *Handle]()

// Handle is one NIC open, shared by every caller that names the same
// interface. Once populated it never changes: RxEnd and TxEnd own
// disjoint ring state, so no further locking is needed after Open
// returns.
type Handle struct {
	name string
	desc Descriptor
	rx   *RxEnd
	tx   *TxEnd
}

// Name returns the interface name the handle was opened with.
func (h *Handle) Name() string { return h.name }

// fatal reports a ring sync/poll failure and terminates the process,
// per spec §4.B "Failure semantics": once the driver itself cannot be
// trusted to sync RX/TX state, nothing downstream can proceed safely,
// so there is no error to propagate, only a diagnostic to emit before
// exit(1).
func (h *Handle) fatal(err error) {
	log.Fatal().Str("handle", h.name).Err(err).Msg("nic: ring sync/poll failure")
}

// Producer returns the handle's RX facet.
func (h *Handle) Producer() *RxEnd { return h.rx }

// Consumer returns the handle's TX facet.
func (h *Handle) Consumer() *TxEnd { return h.tx }

// Open returns the Handle for name, opening the underlying descriptor
// on first use and reusing it on every subsequent call, the Go
// equivalent of the original's STAILQ_FOREACH-by-name scan before
// nm_open.
func Open(name string) (*Handle, error) {
	if h, ok := registry.Load(name); ok {
		return h, nil
	}

	desc, err := openDescriptor(name)
	if err != nil {
		return nil, err
	}

	h := &Handle{
		name: name,
		desc: desc,
	}
	h.rx = &RxEnd{h: h, scratch: make(packet.Batch, 0, BatchSize)}
	h.tx = &TxEnd{h: h}

	actual, loaded := registry.LoadOrStore(name, h)
	if loaded {
		// Lost the race to populate this name; discard our open.
		_ = desc.Close()
		return actual, nil
	}
	return h, nil
}

// OpenProducer opens (or reuses) name and returns its RX facet.
func OpenProducer(name string) (*RxEnd, error) {
	h, err := Open(name)
	if err != nil {
		return nil, err
	}
	return h.rx, nil
}

// OpenConsumer opens (or reuses) name and returns its TX facet.
func OpenConsumer(name string) (*TxEnd, error) {
	h, err := Open(name)
	if err != nil {
		return nil, err
	}
	return h.tx, nil
}

// QualifyName defaults a bare interface name (no "scheme:" prefix) to
// the real netmap(4) backend, the scheme every entry point (cmd/brilter,
// script) should assume absent an explicit one; a name already prefixed
// with a recognized scheme is returned unchanged, so "loop:name" still
// selects the emulated backend. Open itself requires an explicit scheme
// and does not call this, keeping ErrUnknownScheme meaningful for a
// truly malformed name.
func QualifyName(name string) string {
	for _, scheme := range []string{"netmap:", "loop:"} {
		if strings.HasPrefix(name, scheme) {
			return name
		}
	}
	return "netmap:" + name
}

func openDescriptor(name string) (Descriptor, error) {
	scheme, rest, ok := strings.Cut(name, ":")
	if !ok {
		return nil, ErrUnknownScheme
	}
	switch scheme {
	case "loop":
		return openLoopDescriptor(rest)
	case "netmap":
		return openNetmapDescriptor(rest)
	default:
		return nil, ErrUnknownScheme
	}
}

// RxEnd is the RX facet of a Handle: it implements pipeline.Producer
// by running the ring-cursor/need-sync state machine of spec §4.B.
type RxEnd struct {
	h       *Handle
	scratch packet.Batch
}

// Produce drains rings in round-robin, handing drained batches to proc
// and publishing consumed slots back to the driver, until ctx is done
// or an unrecoverable poll/sync error occurs.
func (rx *RxEnd) Produce(ctx context.Context, proc pipeline.Processor, out pipeline.Consumer) error {
	d := rx.h.desc
	n := d.RxRingCount()
	cur := 0
	needSync := true

	for {
		if ctx.Err() != nil {
			return nil
		}

		ring := d.RxRing(cur)
		if ring.Empty() {
			if cur == n-1 {
				if needSync {
					if err := d.PollRx(); err != nil {
						rx.h.fatal(err)
						return err
					}
					needSync = false
				} else {
					needSync = true
				}
				cur = 0
			} else {
				cur++
				needSync = true
			}
			continue
		}

		needSync = false

		batch := rx.scratch[:0]
		for len(batch) < BatchSize {
			data, ok := ring.Recv()
			if !ok {
				break
			}
			batch = append(batch, packet.Packet{Data: data})
		}

		if err := proc.Process(batch, out); err != nil {
			return err
		}
		ring.PublishHead()
		if err := d.SyncRx(); err != nil {
			rx.h.fatal(err)
			return err
		}
	}
}

// TxEnd is the TX facet of a Handle: it implements pipeline.Consumer
// by running the ring-full/wrap/sync state machine of spec §4.B.
type TxEnd struct {
	h *Handle
}

// Consume transmits every packet in b, advancing across TX rings as
// each fills, syncing whenever a ring wraps or is exhausted, until the
// whole batch has been handed to the driver.
func (tx *TxEnd) Consume(b packet.Batch) error {
	d := tx.h.desc
	n := d.TxRingCount()
	cur := 0
	pkts := b

	for len(pkts) > 0 {
		ring := d.TxRing(cur)
		if ring.Full() {
			if cur == n-1 {
				cur = 0
				if err := d.SyncTx(); err != nil {
					tx.h.fatal(err)
					return err
				}
			} else {
				cur++
			}
			continue
		}

		for len(pkts) > 0 && !ring.Full() {
			ring.Send(pkts[0].Data)
			pkts = pkts[1:]
		}
		ring.PublishHead()
		if err := d.SyncTx(); err != nil {
			tx.h.fatal(err)
			return err
		}
	}
	return nil
}
