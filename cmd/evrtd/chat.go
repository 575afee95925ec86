package main

import (
	"fmt"

	"github.com/go-evrt/evrt"
	"github.com/go-evrt/evrt/evrtlog"
	"github.com/go-evrt/evrt/evrtmetrics"
	"github.com/go-evrt/evrt/netio"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run a TCP chat-room broadcast server",
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
				cfg.Addr = ":7008"
			}

			backend, err := parseBackend(cfg.Backend)
			if err != nil {
				return err
			}

			metrics := evrtmetrics.New()
			stop, err := serveMetrics(cfg.MetricsAddr, metrics.Collectors()...)
			if err != nil {
				return err
			}
			defer stop()

			return runChatServer(cfg.Addr, backend, cfg.Trace, evrtlog.New(cmd.ErrOrStderr()), metrics)
		},
	}
	return cmd
}

// room broadcasts every message it receives to every other member's
// outbound queue.
type room struct {
	members map[*member]struct{}
}

type member struct {
	stream *netio.Stream
	outbox *evrt.AsyncQueue[[]byte]
}

func (r *room) broadcast(from *member, msg []byte) {
	for m := range r.members {
		if m == from {
			continue
		}
		m.outbox.Push(msg)
	}
}

func runChatServer(addr string, backend evrt.BackendKind, trace bool, logger evrt.Logger, metrics evrt.Metrics) error {
	var serveErr error
	_, err := evrt.Run(evrt.FromFunc(func(cx *evrt.Context) (struct{}, bool) {
		ln, err := netio.Listen(cx.Loop(), addr)
		if err != nil {
			serveErr = err
			return struct{}{}, true
		}
		logger.Infof("evrtd: chat server listening on %s", ln.Addr())
		if interactive() {
			fmt.Println("chat server listening on", ln.Addr())
		}

		r := &room{members: make(map[*member]struct{})}
		group := evrt.NewTaskGroup[struct{}](cx.Loop())
		group.Spawn(evrt.FromFunc(chatAcceptLoop(cx.Loop(), ln, r, logger)))
		return struct{}{}, false
	}), evrt.WithBackend(backend), evrt.WithTrace(trace), evrt.WithLogger(logger), evrt.WithMetrics(metrics))
	if err != nil {
		return err
	}
	return serveErr
}

func chatAcceptLoop(loop *evrt.Loop, ln *netio.Listener, r *room, logger evrt.Logger) func(cx *evrt.Context) (struct{}, bool) {
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
			m := &member{stream: res.Stream, outbox: evrt.NewAsyncQueue[[]byte](loop)}
			r.members[m] = struct{}{}
			evrt.Spawn(loop, evrt.FromFunc(chatReader(r, m, logger)))
			evrt.Spawn(loop, evrt.FromFunc(chatWriter(r, m, logger)))
		}
	}
}

func chatReader(r *room, m *member, logger evrt.Logger) func(cx *evrt.Context) (struct{}, bool) {
	buf := make([]byte, 4096)
	return func(cx *evrt.Context) (struct{}, bool) {
		for {
			res, ok := m.stream.RecvSome(buf).Poll(cx)
			if !ok {
				return struct{}{}, false
			}
			if res.Err != nil || res.N == 0 {
				delete(r.members, m)
				m.outbox.Close()
				return struct{}{}, true
			}
			msg := make([]byte, res.N)
			copy(msg, buf[:res.N])
			r.broadcast(m, msg)
		}
	}
}

func chatWriter(r *room, m *member, logger evrt.Logger) func(cx *evrt.Context) (struct{}, bool) {
	sending := false
	var send evrt.Future[error]
	return func(cx *evrt.Context) (struct{}, bool) {
		for {
			if sending {
				if err, ok := send.Poll(cx); ok {
					sending = false
					if err != nil {
						delete(r.members, m)
						return struct{}{}, true
					}
					continue
				}
				return struct{}{}, false
			}
			res, ok := m.outbox.Pop().Poll(cx)
			if !ok {
				return struct{}{}, false
			}
			if !res.OK {
				_ = m.stream.Close()
				return struct{}{}, true
			}
			send = m.stream.SendAll(res.Value)
			sending = true
		}
	}
}
