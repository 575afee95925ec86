package netio

import (
	"io"

	"github.com/go-evrt/evrt"
	"golang.org/x/sys/unix"
)

// Stream is a non-blocking, connected TCP socket.
type Stream struct {
	loop *evrt.Loop
	fd   *evrt.AsyncFd
}

// RecvResult is RecvSome's outcome: N == 0 with Err == nil means the peer
// closed the connection (EOF).
type RecvResult struct {
	N   int
	Err error
}

// RecvSome reads at most one buffer's worth of data, parking on
// read-readiness if none is available yet.
func (s *Stream) RecvSome(buf []byte) evrt.Future[RecvResult] {
	return evrt.FromFunc(func(cx *evrt.Context) (RecvResult, bool) {
		for {
			n, err := unix.Read(s.fd.Fd(), buf)
			switch err {
			case nil:
				return RecvResult{N: n}, true
			case unix.EAGAIN:
				if _, ok := s.fd.Readable().Poll(cx); !ok {
					return RecvResult{}, false
				}
				continue
			case unix.EINTR:
				continue
			default:
				return RecvResult{Err: err}, true
			}
		}
	})
}

// SendAll writes every byte of buf, parking on write-readiness between
// partial writes. It reports ErrWriteZero if a write call ever reports
// success having advanced nothing.
func (s *Stream) SendAll(buf []byte) evrt.Future[error] {
	sent := 0
	return evrt.FromFunc(func(cx *evrt.Context) (error, bool) {
		for sent < len(buf) {
			n, err := unix.Write(s.fd.Fd(), buf[sent:])
			switch err {
			case nil:
				if n == 0 {
					return evrt.ErrWriteZero, true
				}
				sent += n
			case unix.EAGAIN:
				if _, ok := s.fd.Writable().Poll(cx); !ok {
					return nil, false
				}
			case unix.EINTR:
				// retry without advancing sent
			default:
				return err, true
			}
		}
		return nil, true
	})
}

// Close deregisters and closes the underlying socket.
func (s *Stream) Close() error {
	fd := s.fd.Fd()
	_ = s.fd.Close()
	return unix.Close(fd)
}

var _ io.Closer = (*Stream)(nil)
