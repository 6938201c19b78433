//go:build netmap

package nic

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// #cgo CFLAGS: -I/usr/local/include
// #cgo LDFLAGS: -lnetmap
// #include <stdlib.h>
// #include <net/netmap_user.h>
//
// static struct netmap_ring *brilter_rxring(struct nm_desc *d, int i) {
//   return NETMAP_RXRING(d->nifp, i);
// }
// static struct netmap_ring *brilter_txring(struct nm_desc *d, int i) {
//   return NETMAP_TXRING(d->nifp, i);
// }
// static int brilter_ring_empty(struct netmap_ring *r) {
//   return nm_ring_empty(r);
// }
// static void *brilter_ring_buf(struct netmap_ring *r, uint32_t idx) {
//   return NETMAP_BUF(r, idx);
// }
import "C"

// netmapDescriptor wraps one nm_open'd device, matching the original's
// struct netmap_handle minus the consumer/producer function pointers
// (those are supplied by RxEnd/TxEnd instead).
type netmapDescriptor struct {
	d   *C.struct_nm_desc
	fd  int
}

func openNetmapDescriptor(ifname string) (Descriptor, error) {
	cname := C.CString("netmap:" + ifname)
	defer C.free(unsafe.Pointer(cname))

	d := C.nm_open(cname, nil, 0, nil)
	if d == nil {
		return nil, errNetmapOpenFailed(ifname)
	}
	return &netmapDescriptor{d: d, fd: int(d.fd)}, nil
}

func (nd *netmapDescriptor) RxRingCount() int {
	return int(nd.d.last_rx_ring-nd.d.first_rx_ring) + 1
}

func (nd *netmapDescriptor) RxRing(i int) RxRing {
	ring := C.brilter_rxring(nd.d, C.int(int(nd.d.first_rx_ring)+i))
	return &netmapRxRing{ring: ring}
}

func (nd *netmapDescriptor) TxRingCount() int {
	return int(nd.d.last_tx_ring-nd.d.first_tx_ring) + 1
}

func (nd *netmapDescriptor) TxRing(i int) TxRing {
	ring := C.brilter_txring(nd.d, C.int(int(nd.d.first_tx_ring)+i))
	return &netmapTxRing{ring: ring}
}

// PollRx mirrors the original's poll(&pfd, 1, 0) with POLLIN, a
// zero-timeout readiness check rather than a blocking wait.
func (nd *netmapDescriptor) PollRx() error {
	fds := []unix.PollFd{{Fd: int32(nd.fd), Events: unix.POLLIN}}
	_, err := unix.Poll(fds, 0)
	return err
}

func (nd *netmapDescriptor) SyncRx() error {
	return ioctlNoArg(nd.fd, C.NIOCRXSYNC)
}

func (nd *netmapDescriptor) SyncTx() error {
	return ioctlNoArg(nd.fd, C.NIOCTXSYNC)
}

func (nd *netmapDescriptor) Close() error {
	C.nm_close(nd.d)
	return nil
}

func ioctlNoArg(fd int, req C.ulong) error {
	return unix.IoctlSetInt(fd, uint(req), 0)
}

type netmapRxRing struct {
	ring *C.struct_netmap_ring
}

func (r *netmapRxRing) Empty() bool {
	return C.brilter_ring_empty(r.ring) != 0
}

func (r *netmapRxRing) Recv() (data []byte, ok bool) {
	if C.brilter_ring_empty(r.ring) != 0 {
		return nil, false
	}
	slot := &r.ring.slot[r.ring.cur]
	buf := C.brilter_ring_buf(r.ring, C.uint32_t(slot.buf_idx))
	data = unsafe.Slice((*byte)(buf), int(slot.len))
	r.ring.cur = C.nm_ring_next(r.ring, r.ring.cur)
	return data, true
}

func (r *netmapRxRing) PublishHead() {
	r.ring.head = r.ring.cur
}

type netmapTxRing struct {
	ring *C.struct_netmap_ring
}

func (r *netmapTxRing) Full() bool {
	return C.brilter_ring_empty(r.ring) != 0
}

func (r *netmapTxRing) Send(data []byte) {
	slot := &r.ring.slot[r.ring.cur]
	slot.len = C.uint16_t(len(data))
	buf := C.brilter_ring_buf(r.ring, C.uint32_t(slot.buf_idx))
	dst := unsafe.Slice((*byte)(buf), len(data))
	copy(dst, data)
	r.ring.cur = C.nm_ring_next(r.ring, r.ring.cur)
}

func (r *netmapTxRing) PublishHead() {
	r.ring.head = r.ring.cur
}
