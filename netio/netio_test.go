package netio_test

import (
	"testing"

	"github.com/go-evrt/evrt"
	"github.com/go-evrt/evrt/netio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenerAcceptAndStreamRoundTrip(t *testing.T) {
	result, err := evrt.Run(evrt.Lazy(func(cx *evrt.Context) evrt.Future[string] {
		loop := cx.Loop()
		ln, err := netio.Listen(loop, "127.0.0.1:0")
		require.NoError(t, err)
		addr := ln.Addr().String()

		evrt.Spawn(loop, evrt.AndThen(ln.Accept(), func(res netio.AcceptResult) evrt.Future[struct{}] {
			require.NoError(t, res.Err)
			require.NotNil(t, res.Peer, "Accept must report the connecting peer's address")
			return evrt.FromFunc(echoOnce(res.Stream))
		}))

		return evrt.AndThen(netio.Dial(loop, addr), func(dr netio.DialResult) evrt.Future[string] {
			require.NoError(t, dr.Err)
			client := dr.Stream
			return evrt.AndThen(client.SendAll([]byte("ping")), func(sendErr error) evrt.Future[string] {
				require.NoError(t, sendErr)
				buf := make([]byte, 32)
				return evrt.Map(client.RecvSome(buf), func(r netio.RecvResult) string {
					require.NoError(t, r.Err)
					_ = client.Close()
					return string(buf[:r.N])
				})
			})
		})
	}))
	require.NoError(t, err)
	assert.Equal(t, "ping", result)
}

// echoOnce reads a single message from stream and writes it straight
// back, persisting the in-flight send future across polls the same way
// cmd/evrtd's echo handler does.
func echoOnce(stream *netio.Stream) func(cx *evrt.Context) (struct{}, bool) {
	buf := make([]byte, 32)
	var send evrt.Future[error]
	return func(cx *evrt.Context) (struct{}, bool) {
		if send != nil {
			err, ok := send.Poll(cx)
			if !ok {
				return struct{}{}, false
			}
			_ = stream.Close()
			return struct{}{}, err == nil
		}
		res, ok := stream.RecvSome(buf).Poll(cx)
		if !ok {
			return struct{}{}, false
		}
		if res.Err != nil || res.N == 0 {
			_ = stream.Close()
			return struct{}{}, true
		}
		send = stream.SendAll(buf[:res.N])
		err, ok := send.Poll(cx)
		if !ok {
			return struct{}{}, false
		}
		_ = stream.Close()
		return struct{}{}, err == nil
	}
}
