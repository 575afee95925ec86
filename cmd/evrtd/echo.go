package main

import (
	"fmt"

	"github.com/go-evrt/evrt"
	"github.com/go-evrt/evrt/evrtlog"
	"github.com/go-evrt/evrt/evrtmetrics"
	"github.com/go-evrt/evrt/netio"
	"github.com/spf13/cobra"
)

func newEchoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "echo",
		Short: "Run a TCP echo server",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			configPath, _ := flags.GetString("config")
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if v, _ := flags.GetString("backend"); v != "" {
				cfg.Backend = v
			}
			if v, _ := flags.GetBool("trace"); v {
				cfg.Trace = true
			}
			if v, _ := flags.GetString("metrics-addr"); v != "" {
				cfg.MetricsAddr = v
			}
			if cfg.Addr == "" {
				cfg.Addr = ":7007"
			}

			backend, err := parseBackend(cfg.Backend)
			if err != nil {
				return err
			}

			logger := evrtlog.New(cmd.ErrOrStderr())
			metrics := evrtmetrics.New()

			stop, err := serveMetrics(cfg.MetricsAddr, metrics.Collectors()...)
			if err != nil {
				return err
			}
			defer stop()

			return runEchoServer(cfg.Addr, backend, cfg.Trace, logger, metrics)
		},
	}
	return cmd
}

func runEchoServer(addr string, backend evrt.BackendKind, trace bool, logger evrt.Logger, metrics evrt.Metrics) error {
	var serveErr error
	_, err := evrt.Run(evrt.FromFunc(func(cx *evrt.Context) (struct{}, bool) {
		ln, err := netio.Listen(cx.Loop(), addr)
		if err != nil {
			serveErr = err
			return struct{}{}, true
		}
		logger.Infof("evrtd: echo server listening on %s", ln.Addr())
		if interactive() {
			fmt.Println("echo server listening on", ln.Addr())
		}

		group := evrt.NewTaskGroup[struct{}](cx.Loop())
		group.Spawn(evrt.FromFunc(acceptLoop(cx.Loop(), ln, logger)))
		return struct{}{}, false
	}), evrt.WithBackend(backend), evrt.WithTrace(trace), evrt.WithLogger(logger), evrt.WithMetrics(metrics))
	if err != nil {
		return err
	}
	return serveErr
}

func acceptLoop(loop *evrt.Loop, ln *netio.Listener, logger evrt.Logger) func(cx *evrt.Context) (struct{}, bool) {
	return func(cx *evrt.Context) (struct{}, bool) {
		for {
			res, ok := ln.Accept().Poll(cx)
			if !ok {
				return struct{}{}, false
			}
			if res.Err != nil {
				logger.Warnf("evrtd: accept: %v", res.Err)
				continue
			}
			logger.Infof("evrtd: accepted connection from %s", res.Peer)
			evrt.Spawn(loop, evrt.FromFunc(echoConn(res.Stream, logger)))
		}
	}
}

func echoConn(stream *netio.Stream, logger evrt.Logger) func(cx *evrt.Context) (struct{}, bool) {
	buf := make([]byte, 4096)
	sending := false
	var send evrt.Future[error]
	return func(cx *evrt.Context) (struct{}, bool) {
		for {
			if sending {
				if err, ok := send.Poll(cx); ok {
					sending = false
					if err != nil {
						logger.Warnf("evrtd: send: %v", err)
						_ = stream.Close()
						return struct{}{}, true
					}
					continue
				}
				return struct{}{}, false
			}

			res, ok := stream.RecvSome(buf).Poll(cx)
			if !ok {
				return struct{}{}, false
			}
			if res.Err != nil {
				logger.Warnf("evrtd: recv: %v", res.Err)
				_ = stream.Close()
				return struct{}{}, true
			}
			if res.N == 0 {
				_ = stream.Close()
				return struct{}{}, true
			}
			send = stream.SendAll(buf[:res.N])
			sending = true
		}
	}
}
