package netio

import (
	"net"

	"github.com/go-evrt/evrt"
	"golang.org/x/sys/unix"
)

// DialResult is Dial's outcome.
type DialResult struct {
	Stream *Stream
	Err    error
}

// Dial connects to addr without blocking the loop: it issues a
// non-blocking connect(2) and, if the connection doesn't complete
// synchronously, parks on write-readiness and inspects SO_ERROR once the
// fd becomes writable, the standard non-blocking connect pattern.
func Dial(l *evrt.Loop, addr string) evrt.Future[DialResult] {
	return evrt.Lazy(func(cx *evrt.Context) evrt.Future[DialResult] {
		tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
		if err != nil {
			return evrt.Done(DialResult{Err: err})
		}

		domain := unix.AF_INET
		if tcpAddr.IP != nil && tcpAddr.IP.To4() == nil {
			domain = unix.AF_INET6
		}
		sockaddr, err := tcpSockaddr(tcpAddr)
		if err != nil {
			return evrt.Done(DialResult{Err: err})
		}

		fd, err := unix.Socket(domain, unix.SOCK_STREAM, unix.IPPROTO_TCP)
		if err != nil {
			return evrt.Done(DialResult{Err: err})
		}
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(fd)
			return evrt.Done(DialResult{Err: err})
		}

		connectErr := unix.Connect(fd, sockaddr)
		if connectErr != nil && connectErr != unix.EINPROGRESS {
			unix.Close(fd)
			return evrt.Done(DialResult{Err: connectErr})
		}

		asyncFd := evrt.NewAsyncFd(l, fd)
		if connectErr == nil {
			return evrt.Done(DialResult{Stream: &Stream{loop: l, fd: asyncFd}})
		}

		return evrt.FromFunc(func(cx *evrt.Context) (DialResult, bool) {
			if _, ok := asyncFd.Writable().Poll(cx); !ok {
				return DialResult{}, false
			}
			errno, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
			if err != nil {
				return DialResult{Err: err}, true
			}
			if errno != 0 {
				return DialResult{Err: unix.Errno(errno)}, true
			}
			return DialResult{Stream: &Stream{loop: l, fd: asyncFd}}, true
		})
	})
}
