package nic

import (
	"sync"
	"time"
)

// loopQueueCap bounds the number of packets a "loop:" interface can
// hold before its TX ring reports Full, giving the producer/consumer
// state machines in handle.go a ring-wrap boundary to exercise even
// without real hardware.
const loopQueueCap = 4096

// openLoopDescriptor returns a new in-process, no-cgo descriptor: a
// single RX ring and a single TX ring sharing one FIFO queue, so that
// packets handed to its Consumer are delivered back out its Producer
// in order, exactly once. This is the "loopback emulated interface" of
// spec §8's pipeline testable property.
func openLoopDescriptor(name string) (Descriptor, error) {
	return &loopDescriptor{}, nil
}

type loopDescriptor struct {
	mu    sync.Mutex
	queue [][]byte
}

func (d *loopDescriptor) RxRingCount() int    { return 1 }
func (d *loopDescriptor) RxRing(i int) RxRing { return (*loopRxRing)(d) }
func (d *loopDescriptor) TxRingCount() int    { return 1 }
func (d *loopDescriptor) TxRing(i int) TxRing { return (*loopTxRing)(d) }

// PollRx has no real fd to wait on; it yields briefly when the queue
// is empty so an idle producer goroutine does not spin the CPU.
func (d *loopDescriptor) PollRx() error {
	d.mu.Lock()
	empty := len(d.queue) == 0
	d.mu.Unlock()
	if empty {
		time.Sleep(time.Millisecond)
	}
	return nil
}

func (d *loopDescriptor) SyncRx() error { return nil }
func (d *loopDescriptor) SyncTx() error { return nil }
func (d *loopDescriptor) Close() error  { return nil }

type loopRxRing loopDescriptor

func (r *loopRxRing) Empty() bool {
	d := (*loopDescriptor)(r)
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue) == 0
}

func (r *loopRxRing) Recv() (data []byte, ok bool) {
	d := (*loopDescriptor)(r)
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queue) == 0 {
		return nil, false
	}
	data = d.queue[0]
	d.queue = d.queue[1:]
	return data, true
}

func (r *loopRxRing) PublishHead() {}

type loopTxRing loopDescriptor

func (r *loopTxRing) Full() bool {
	d := (*loopDescriptor)(r)
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue) >= loopQueueCap
}

// Send copies data, matching the original's nm_pkt_copy into the TX
// ring's own buffer: the caller's slice may be reused or invalidated
// once it returns.
func (r *loopTxRing) Send(data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)

	d := (*loopDescriptor)(r)
	d.mu.Lock()
	d.queue = append(d.queue, cp)
	d.mu.Unlock()
}

func (r *loopTxRing) PublishHead() {}
