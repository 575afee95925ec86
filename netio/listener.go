// Package netio provides non-blocking TCP primitives — Listener and
// Stream — built directly on evrt.AsyncFd, following the retry-on-EAGAIN
// pattern used by readiness-based async I/O libraries: attempt the
// syscall, and only suspend when it reports EAGAIN.
package netio

import (
	"net"

	"github.com/go-evrt/evrt"
	"golang.org/x/sys/unix"
)

// Listener accepts TCP connections without blocking the loop.
type Listener struct {
	loop *evrt.Loop
	fd   *evrt.AsyncFd
	addr *net.TCPAddr
}

// Listen binds and listens on addr, registering the listening socket
// with l.
func Listen(l *evrt.Loop, addr string) (*Listener, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}

	domain := unix.AF_INET
	sockaddr, err := tcpSockaddr(tcpAddr)
	if err != nil {
		return nil, err
	}
	if tcpAddr.IP != nil && tcpAddr.IP.To4() == nil {
		domain = unix.AF_INET6
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, err
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err := unix.Bind(fd, sockaddr); err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err := unix.Listen(fd, 128); err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return &Listener{loop: l, fd: evrt.NewAsyncFd(l, fd), addr: tcpAddr}, nil
}

// Addr returns the bound local address.
func (ln *Listener) Addr() net.Addr { return ln.addr }

// Accept returns a Future that completes with a new Stream and its peer
// address once a connection arrives (spec.md §6: "accept().await →
// (stream, peer address) or error").
func (ln *Listener) Accept() evrt.Future[AcceptResult] {
	return evrt.FromFunc(func(cx *evrt.Context) (AcceptResult, bool) {
		for {
			connFd, sa, err := unix.Accept(ln.fd.Fd())
			if err == nil {
				if err := unix.SetNonblock(connFd, true); err != nil {
					unix.Close(connFd)
					return AcceptResult{Err: err}, true
				}
				return AcceptResult{
					Stream: &Stream{loop: ln.loop, fd: evrt.NewAsyncFd(ln.loop, connFd)},
					Peer:   sockaddrToTCPAddr(sa),
				}, true
			}
			if err == unix.EAGAIN {
				// Park on read-readiness; the executor polls us again
				// once the fd wakes, retrying the accept.
				if _, ok := ln.fd.Readable().Poll(cx); !ok {
					return AcceptResult{}, false
				}
				continue
			}
			if err == unix.EINTR {
				continue
			}
			return AcceptResult{Err: err}, true
		}
	})
}

// Close deregisters and closes the listening socket.
func (ln *Listener) Close() error {
	fd := ln.fd.Fd()
	_ = ln.fd.Close()
	return unix.Close(fd)
}

// AcceptResult is Listener.Accept's outcome.
type AcceptResult struct {
	Stream *Stream
	Peer   net.Addr
	Err    error
}

// sockaddrToTCPAddr converts the unix.Sockaddr a successful Accept
// returns into a net.Addr. A nil or unrecognized sockaddr yields a nil
// Addr rather than an error, since the connection itself is still good.
func sockaddrToTCPAddr(sa unix.Sockaddr) net.Addr {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: append(net.IP(nil), sa.Addr[:]...), Port: sa.Port}
	case *unix.SockaddrInet6:
		return &net.TCPAddr{IP: append(net.IP(nil), sa.Addr[:]...), Port: sa.Port}
	default:
		return nil
	}
}

func tcpSockaddr(addr *net.TCPAddr) (unix.Sockaddr, error) {
	if addr.IP == nil || addr.IP.To4() != nil {
		var sa unix.SockaddrInet4
		sa.Port = addr.Port
		if addr.IP != nil {
			copy(sa.Addr[:], addr.IP.To4())
		}
		return &sa, nil
	}
	var sa unix.SockaddrInet6
	sa.Port = addr.Port
	copy(sa.Addr[:], addr.IP.To16())
	return &sa, nil
}
