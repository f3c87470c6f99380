package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/lixenwraith/blocklog"
	"github.com/lixenwraith/blocklog/compat"
	"github.com/panjf2000/gnet/v2"
)

// echoServer logs every connection and drives the flush from gnet's ticker
type echoServer struct {
	gnet.BuiltinEventEngine
	guard *compat.Guard
	tick  time.Duration
}

func (es *echoServer) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	_ = es.guard.LogData(fmt.Sprintf("open %s", c.RemoteAddr()))
	return nil, gnet.None
}

func (es *echoServer) OnTraffic(c gnet.Conn) gnet.Action {
	buf, _ := c.Next(-1)
	_ = es.guard.LogData(fmt.Sprintf("rx %d bytes", len(buf)))
	c.Write(buf)
	return gnet.None
}

// OnTick advances the flush state machine by one phase per tick
func (es *echoServer) OnTick() (time.Duration, gnet.Action) {
	if res, err := es.guard.Step(); res == blocklog.StepFailed {
		fmt.Printf("flush failed: %v\n", err)
	}
	return es.tick, gnet.None
}

func main() {
	root := flag.String("root", "/var/lib/blocklog", "storage root")
	addr := flag.String("addr", "tcp://127.0.0.1:9000", "listen address")
	flag.Parse()

	logger := blocklog.NewLogger(blocklog.NewOSStorage(*root))
	err := logger.ApplyConfigString(
		"directory=/gnet",
		"category=txt",
		"buffer_capacity=32",
		"record_max_length=96",
	)
	if err != nil {
		panic(err)
	}
	if err := logger.Start(); err != nil {
		panic(err)
	}

	guard := compat.NewGuard(logger)
	defer func() {
		_, _ = guard.Drain(64)
		_ = guard.Close()
	}()

	gnetAdapter := compat.NewGnetAdapter(guard)

	err = gnet.Run(
		&echoServer{guard: guard, tick: 10 * time.Millisecond},
		*addr,
		gnet.WithMulticore(true),
		gnet.WithTicker(true),
		gnet.WithLogger(gnetAdapter),
		gnet.WithReusePort(true),
	)
	if err != nil {
		panic(err)
	}
}
