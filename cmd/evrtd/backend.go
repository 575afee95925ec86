package main

import (
	"fmt"

	"github.com/go-evrt/evrt"
)

func parseBackend(name string) (evrt.BackendKind, error) {
	switch name {
	case "":
		return evrt.DefaultBackendKind(), nil
	case "epoll":
		return evrt.BackendEpoll, nil
	case "poll":
		return evrt.BackendPoll, nil
	default:
		return 0, fmt.Errorf("unknown backend %q: want epoll or poll", name)
	}
}
