package script

import (
	"encoding/binary"

	lua "github.com/yuin/gopher-lua"
)

// packetHandle is the value wrapped by a metaPacket userdata: a borrowed
// view of one packet's bytes, valid only for the duration of the
// predicate call that received it (spec §4.I: "must not be retained
// beyond the call").
type packetHandle struct {
	data []byte
}

var packetAccessors = map[string]lua.LGFunction{
	"length":   packetLength,
	"read8":    packetRead(1, func(b []byte) uint64 { return uint64(b[0]) }),
	"read16be": packetRead(2, func(b []byte) uint64 { return uint64(binary.BigEndian.Uint16(b)) }),
	"read16le": packetRead(2, func(b []byte) uint64 { return uint64(binary.LittleEndian.Uint16(b)) }),
	"read32be": packetRead(4, func(b []byte) uint64 { return uint64(binary.BigEndian.Uint32(b)) }),
	"read32le": packetRead(4, func(b []byte) uint64 { return uint64(binary.LittleEndian.Uint32(b)) }),
	"read64be": packetRead(8, binary.BigEndian.Uint64),
	"read64le": packetRead(8, binary.LittleEndian.Uint64),
}

func checkPacket(L *lua.LState, n int) *packetHandle {
	ud := L.CheckUserData(n)
	p, ok := ud.Value.(*packetHandle)
	if !ok {
		L.ArgError(n, "packet expected")
		return nil
	}
	return p
}

func packetLength(L *lua.LState) int {
	p := checkPacket(L, 1)
	L.Push(lua.LNumber(len(p.data)))
	return 1
}

// packetRead returns an LGFunction reading a width-byte field at the
// offset given as the Lua call's second argument, decoded by decode.
func packetRead(width int, decode func([]byte) uint64) lua.LGFunction {
	return func(L *lua.LState) int {
		p := checkPacket(L, 1)
		offset := L.CheckInt(2)

		if offset < 0 || offset+width > len(p.data) {
			L.RaiseError("read offset excessive")
			return 0
		}

		L.Push(lua.LNumber(decode(p.data[offset : offset+width])))
		return 1
	}
}
