package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/caladri/brilter/packet"
	"github.com/caladri/brilter/pipeline"
)

// scriptPredicate is the processor built by brilter.predicate_processor:
// a retained reference to the script function plus a dedicated child
// interpreter state (spec §4.I "fresh child execution context") used to
// give every per-packet invocation its own isolated call stack, reused
// across the whole lifetime of the processor rather than recreated per
// packet or per batch.
//
// The child state is created once via L.NewThread() and driven with
// CallByParam rather than the coroutine Resume/Yield protocol: a
// gopher-lua coroutine cannot be resumed again once its call completes,
// which would force a fresh thread per packet and defeat the point of
// reusing one isolated stack across the batch.
type scriptPredicate struct {
	rt *Runtime
	fn *lua.LFunction
	co *lua.LState
}

func (rt *Runtime) luaPredicateProcessor(L *lua.LState) int {
	fn := L.CheckFunction(1)
	// The cancel func is unused: the child state lives as long as the
	// interpreter itself, torn down together by Runtime.L.Close().
	co, _ := L.NewThread()

	sp := &scriptPredicate{rt: rt, fn: fn, co: co}
	L.Push(newUserData(L, metaProcessor, pipeline.Processor(sp)))
	return 1
}

// Process implements pipeline.Processor via pipeline.Predicate, calling
// the retained script function once per packet on the dedicated child
// state, serialized against every other Lua call through rt.mu.
func (sp *scriptPredicate) Process(batch packet.Batch, out pipeline.Consumer) error {
	sp.rt.mu.Lock()
	defer sp.rt.mu.Unlock()

	var callErr error
	pass := func(p packet.Packet) bool {
		if callErr != nil {
			return false
		}

		pkt := &packetHandle{data: p.Data}
		ud := newUserData(sp.co, metaPacket, pkt)

		if err := sp.co.CallByParam(lua.P{
			Fn:      sp.fn,
			NRet:    1,
			Protect: true,
		}, ud); err != nil {
			callErr = err
			return false
		}

		ret := sp.co.Get(-1)
		sp.co.Pop(1)

		b, ok := ret.(lua.LBool)
		if !ok {
			callErr = errPredicateNotBoolean(ret)
			return false
		}
		return bool(b)
	}

	if err := pipeline.Predicate(pass, batch, out); err != nil {
		return err
	}
	return callErr
}
