package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/caladri/brilter/bpfproc"
	"github.com/caladri/brilter/nic"
	"github.com/caladri/brilter/pipeline"
)

func newUserData(L *lua.LState, meta string, value any) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = value
	L.SetMetatable(ud, L.GetTypeMetatable(meta))
	return ud
}

func checkUserData(L *lua.LState, n int, meta string) any {
	ud := L.CheckUserData(n)
	if ud.Metatable != L.GetTypeMetatable(meta) {
		L.ArgError(n, meta+" expected")
		return nil
	}
	return ud.Value
}

// luaNetmapConsumer implements brilter.netmap_consumer(name) -> consumer.
// name is a plain interface name, as the original netmap_handle_open
// took it (original_source/netmap.c): a bare name defaults to the
// netmap(4) backend, while a "loop:"-prefixed name still selects the
// emulated backend, matching the command-line surface.
func (rt *Runtime) luaNetmapConsumer(L *lua.LState) int {
	name := L.CheckString(1)
	c, err := nic.OpenConsumer(nic.QualifyName(name))
	if err != nil {
		L.RaiseError("netmap_consumer: %s", err)
		return 0
	}
	L.Push(newUserData(L, metaConsumer, pipeline.Consumer(c)))
	return 1
}

// luaNetmapProducer implements brilter.netmap_producer(name) -> producer.
func (rt *Runtime) luaNetmapProducer(L *lua.LState) int {
	name := L.CheckString(1)
	p, err := nic.OpenProducer(nic.QualifyName(name))
	if err != nil {
		L.RaiseError("netmap_producer: %s", err)
		return 0
	}
	L.Push(newUserData(L, metaProducer, pipeline.Producer(p)))
	return 1
}

// luaPcapFilterProcessor implements brilter.pcap_filter_processor(expr) -> processor.
func (rt *Runtime) luaPcapFilterProcessor(L *lua.LState) int {
	expr := L.CheckString(1)
	p, err := bpfproc.New(expr)
	if err != nil {
		L.RaiseError("pcap_filter_processor: %s", err)
		return 0
	}
	L.Push(newUserData(L, metaProcessor, pipeline.Processor(p)))
	return 1
}

// luaPipeStart implements brilter.pipe_start(producer, processor, consumer) -> pipe.
func (rt *Runtime) luaPipeStart(L *lua.LState) int {
	producer, _ := checkUserData(L, 1, metaProducer).(pipeline.Producer)
	processor, _ := checkUserData(L, 2, metaProcessor).(pipeline.Processor)
	consumer, _ := checkUserData(L, 3, metaConsumer).(pipeline.Consumer)
	if producer == nil || processor == nil || consumer == nil {
		L.RaiseError("pipe_start: argument type mismatch")
		return 0
	}

	pl, err := pipeline.Start(rt.ctx, producer, processor, consumer, rt.log)
	if err != nil {
		L.RaiseError("pipe_start: %s", err)
		return 0
	}
	L.Push(newUserData(L, metaPipe, pl))
	return 1
}

// luaPipeWait implements brilter.pipe_wait(pipe).
func (rt *Runtime) luaPipeWait(L *lua.LState) int {
	pl, _ := checkUserData(L, 1, metaPipe).(*pipeline.Pipeline)
	if pl == nil {
		L.RaiseError("pipe_wait: pipe expected")
		return 0
	}
	if err := pl.Wait(); err != nil {
		L.RaiseError("pipe_wait: %s", err)
	}
	return 0
}
