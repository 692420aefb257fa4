package radio_test

import (
	"net"
	"testing"
	"time"

	"github.com/picolume/firmware/internal/radio"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loopbackPair(t *testing.T) (*radio.Listener, *radio.Broadcaster) {
	t.Helper()
	l, err := radio.Listen("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	b, err := radio.Dial(l.LocalAddr().String())
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return l, b
}

func waitReceived(t *testing.T, l *radio.Listener, n uint64) {
	t.Helper()
	require.Eventually(t, func() bool { return l.Received() == n },
		2*time.Second, time.Millisecond, "want %d received packets", n)
}

func TestListenerDeliversLatestPacket(t *testing.T) {
	l, b := loopbackPair(t)

	require.NoError(t, b.Send(radio.Packet{Counter: 1, TimeMS: 1000, Play: true}))
	waitReceived(t, l, 1)
	require.NoError(t, b.Send(radio.Packet{Counter: 2, TimeMS: 1100, Play: true}))
	waitReceived(t, l, 2)

	got := l.Poll()
	require.NotNil(t, got)
	assert.Equal(t, uint32(2), got.Counter, "older packet superseded, not queued")

	assert.Nil(t, l.Poll(), "poll reads and clears")
}

func TestListenerPollEmpty(t *testing.T) {
	l, _ := loopbackPair(t)
	assert.Nil(t, l.Poll())
}

func TestListenerCountsMalformedDatagrams(t *testing.T) {
	l, _ := loopbackPair(t)

	conn, err := net.Dial("udp4", l.LocalAddr().String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte{1, 2, 3})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return l.Malformed() == 1 },
		2*time.Second, time.Millisecond)
	assert.Nil(t, l.Poll(), "short datagrams never surface")
	assert.Zero(t, l.Received())
}

func TestListenerCloseStopsReader(t *testing.T) {
	l, err := radio.Listen("127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, l.Close())
	// Closing twice reports the usual net error, nothing worse.
	assert.Error(t, l.Close())
}
