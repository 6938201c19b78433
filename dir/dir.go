// Package dir represents the direction a packet is flowing relative
// to the bridge: inbound (from the WAN side towards the LAN side) or
// outbound (from the LAN side towards the WAN side).
//
// Exported to a separate package in order to avoid import loops between
// policy and pipeline.
package dir

//go:generate go run github.com/dmarkham/enumer -type Direction -trimprefix Direction

// Direction of a packet through the bridge.
type Direction byte

const (
	DirectionInbound  Direction = 0b01 // from WAN to LAN
	DirectionOutbound Direction = 0b10 // from LAN to WAN
	DirectionBoth     Direction = 0b11 // either direction (a mask for Is)
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	switch d {
	case DirectionInbound:
		return DirectionOutbound
	case DirectionOutbound:
		return DirectionInbound
	default:
		return 0
	}
}

// Is returns true iff d includes other (used for DirectionBoth masks).
func (d Direction) Is(other Direction) bool {
	return d&other != 0
}
