package nic

import (
	"errors"
	"fmt"
)

var (
	// ErrNetmapUnavailable is returned by Open for a "netmap:" name when
	// the binary was built without the netmap build tag.
	ErrNetmapUnavailable = errors.New("nic: netmap support not built in")

	// ErrUnknownScheme is returned by Open when name has no recognized
	// "scheme:" prefix.
	ErrUnknownScheme = errors.New("nic: unrecognized interface name scheme")
)

// errNetmapOpenFailed reports nm_open returning NULL for ifname, the Go
// equivalent of the original logging "nm_open: %s\n" and returning NULL.
func errNetmapOpenFailed(ifname string) error {
	return fmt.Errorf("nic: nm_open %q failed", ifname)
}
