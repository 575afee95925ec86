package evrt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// nonblockingSocketpair returns a connected, non-blocking AF_UNIX stream
// pair for exercising AsyncFd against a real backend and real readiness
// events instead of a fake source.
func nonblockingSocketpair(t *testing.T) (a, b int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	require.NoError(t, unix.SetNonblock(fds[0], true))
	require.NoError(t, unix.SetNonblock(fds[1], true))
	t.Cleanup(func() {
		_ = unix.Close(fds[0])
		_ = unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func TestAsyncFdReadableParksThenWakesOnData(t *testing.T) {
	a, b := nonblockingSocketpair(t)

	result, err := Run(Lazy(func(cx *Context) Future[byte] {
		loop := cx.Loop()
		fd := NewAsyncFd(loop, a)

		Spawn(loop, FromFunc(func(cx *Context) (struct{}, bool) {
			_, _ = unix.Write(b, []byte{42})
			return struct{}{}, true
		}))

		return AndThen(fd.Readable(), func(r Ready) Future[byte] {
			require.True(t, r.Readable)
			var buf [1]byte
			_, _ = unix.Read(a, buf[:])
			return Done(buf[0])
		})
	}))
	require.NoError(t, err)
	assert.Equal(t, byte(42), result)
}

func TestAsyncFdHangupIsReportedToOneSideOnly(t *testing.T) {
	a, b := nonblockingSocketpair(t)

	type outcome struct {
		readSawHangup  bool
		writeSawHangup bool
	}

	result, err := Run(Lazy(func(cx *Context) Future[outcome] {
		loop := cx.Loop()
		fd := NewAsyncFd(loop, a)

		Spawn(loop, FromFunc(func(cx *Context) (struct{}, bool) {
			_ = unix.Close(b)
			return struct{}{}, true
		}))

		var out outcome
		read := Map(fd.Readable(), func(r Ready) struct{} {
			out.readSawHangup = r.Hangup
			return struct{}{}
		})
		write := Map(fd.Writable(), func(r Ready) struct{} {
			out.writeSawHangup = r.Hangup
			return struct{}{}
		})

		return Map(JoinAll([]*JoinHandle[struct{}]{
			Spawn(loop, read),
			Spawn(loop, write),
		}), func([]JoinResult[struct{}]) outcome { return out })
	}))
	require.NoError(t, err)
	assert.True(t, result.readSawHangup)
	assert.False(t, result.writeSawHangup, "the write side completes on plain write-readiness before the hangup arrives; only the read side observes it")
}

func TestAsyncFdCloseDeregistersWithoutClosingFd(t *testing.T) {
	a, b := nonblockingSocketpair(t)

	_, err := Run(Lazy(func(cx *Context) Future[struct{}] {
		loop := cx.Loop()
		fd := NewAsyncFd(loop, a)
		require.NoError(t, fd.Close())
		return Sleep(time.Millisecond)
	}))
	require.NoError(t, err)

	// The fd itself must still be open and usable; only the loop's
	// registration was torn down.
	_, err = unix.Write(b, []byte{1})
	assert.NoError(t, err)
}
