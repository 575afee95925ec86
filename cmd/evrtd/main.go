// Command evrtd runs a TCP echo or chat-room server on top of evrt,
// mainly as a way to exercise the runtime against real sockets outside
// of tests.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// interactive reports whether stderr is attached to a real terminal,
// gating the plain-text startup banner printed alongside the always-on
// structured JSON logs (there's no point dressing up output headed to a
// log collector or a file).
func interactive() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "evrtd",
		Short: "Run evrt-backed network servers",
	}
	root.PersistentFlags().String("config", "", "path to a TOML config file")
	root.PersistentFlags().String("backend", "", "readiness backend: epoll or poll (default: platform default)")
	root.PersistentFlags().Bool("trace", os.Getenv("EVLOOP_TRACE") != "", "log each dispatch batch")
	root.PersistentFlags().String("metrics-addr", "", "address to serve Prometheus /metrics on (disabled if empty)")

	root.AddCommand(newEchoCmd(), newChatCmd())
	return root
}
