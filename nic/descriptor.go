package nic

// Descriptor abstracts one kernel-bypass (or emulated) NIC open, with
// possibly multiple RX and TX hardware rings, matching spec §4.B's
// nm_desc: first_rx_ring..last_rx_ring, first_tx_ring..last_tx_ring,
// plus the RX-poll and RX/TX-sync operations.
type Descriptor interface {
	// RxRingCount returns the number of RX rings (>= 1).
	RxRingCount() int
	// RxRing returns the i'th RX ring, 0 <= i < RxRingCount().
	RxRing(i int) RxRing
	// TxRingCount returns the number of TX rings (>= 1).
	TxRingCount() int
	// TxRing returns the i'th TX ring, 0 <= i < TxRingCount().
	TxRing(i int) TxRing

	// PollRx polls the descriptor's fd for readability with a zero
	// timeout, the synchronization point of spec §4.B step 1.
	PollRx() error
	// SyncRx issues the RX-sync ioctl. Fatal on error per spec §4.B.
	SyncRx() error
	// SyncTx issues the TX-sync ioctl. Fatal on error per spec §4.B.
	SyncTx() error

	// Close releases the underlying descriptor.
	Close() error
}

// RxRing is one RX hardware ring.
type RxRing interface {
	// Empty reports whether the ring currently has no packets to drain.
	Empty() bool
	// Recv returns the next slot's borrowed bytes and advances the
	// ring's cursor (ring.cur), but does not publish ring.head.
	Recv() (data []byte, ok bool)
	// PublishHead sets ring.head = ring.cur, making drained slots
	// available to the driver again.
	PublishHead()
}

// TxRing is one TX hardware ring.
type TxRing interface {
	// Full reports whether the ring has no free slot to send into.
	Full() bool
	// Send copies data into the next free slot and advances ring.cur.
	// Send must not be called when Full() is true.
	Send(data []byte)
	// PublishHead sets ring.head = ring.cur, handing queued slots to
	// the driver for transmission.
	PublishHead()
}
