package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lixenwraith/blocklog"
	"github.com/lixenwraith/blocklog/compat"
	"github.com/valyala/fasthttp"
)

func main() {
	logger, err := blocklog.NewBuilder().
		Directory("/fasthttp").
		Category(blocklog.CategoryCSV).
		MaxFileSizeKB(64).
		BufferCapacity(16).
		RecordMaxLength(128).
		Build(blocklog.NewOSStorage("/var/lib/blocklog"))
	if err != nil {
		panic(err)
	}
	if err := logger.Start(); err != nil {
		panic(err)
	}

	guard := compat.NewGuard(logger)
	defer guard.Close()

	// Create fasthttp adapter with custom level detection
	fasthttpAdapter := compat.NewFastHTTPAdapter(
		guard,
		compat.WithDefaultLevel(compat.LevelInfo),
		compat.WithLevelDetector(customLevelDetector),
	)

	// Cooperative flush driver, one phase per tick
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			if res, err := guard.Step(); res == blocklog.StepFailed {
				fmt.Printf("flush failed: %v\n", err)
			}
		}
	}()

	server := &fasthttp.Server{
		Handler: requestHandler(guard),
		Logger:  fasthttpAdapter,

		Name:              "blocklog-status",
		Concurrency:       fasthttp.DefaultConcurrency,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		TCPKeepalive:      true,
		ReduceMemoryUsage: true,
	}

	fmt.Println("Starting server on :8080")
	if err := server.ListenAndServe(":8080"); err != nil {
		panic(err)
	}
}

// requestHandler serves the logger counters on /status and logs every other path
func requestHandler(guard *compat.Guard) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/status":
			ctx.SetContentType("application/json")
			_ = json.NewEncoder(ctx).Encode(guard.Stats())
		case "/flush":
			fmt.Fprintf(ctx, "flush requested: %t\n", guard.RequestFlush())
		default:
			if err := guard.LogData(fmt.Sprintf("GET %s", ctx.Path())); err != nil {
				ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			}
			ctx.SetContentType("text/plain")
			fmt.Fprintf(ctx, "Hello, world! Path: %s\n", ctx.Path())
		}
	}
}

func customLevelDetector(msg string) compat.Level {
	if strings.Contains(msg, "connection cannot be served") {
		return compat.LevelWarn
	}
	if strings.Contains(msg, "error when serving connection") {
		return compat.LevelError
	}

	// Use default detection
	return compat.DetectLogLevel(msg)
}
