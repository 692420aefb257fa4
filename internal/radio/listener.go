package radio

import (
	"errors"
	"net"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// Listener receives timecode datagrams and holds only the newest one.
// The control loop drains it with Poll once per tick; if several
// packets land between ticks the older ones are superseded, never
// queued, because only the latest clock value matters.
type Listener struct {
	conn   *net.UDPConn
	latest atomic.Pointer[Packet]

	received  atomic.Uint64
	malformed atomic.Uint64
}

// Listen binds the timecode socket and starts the reader. Multicast
// group addresses join the group; plain addresses bind directly.
func Listen(addr string) (*Listener, error) {
	ua, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, err
	}
	var conn *net.UDPConn
	if ua.IP != nil && ua.IP.IsMulticast() {
		conn, err = net.ListenMulticastUDP("udp4", nil, ua)
	} else {
		conn, err = net.ListenUDP("udp4", ua)
	}
	if err != nil {
		return nil, err
	}
	l := &Listener{conn: conn}
	go l.read()
	return l, nil
}

func (l *Listener) read() {
	buf := make([]byte, 64)
	for {
		n, _, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Debug().Err(err).Msg("radio read")
			continue
		}
		pkt, err := DecodePacket(buf[:n])
		if err != nil {
			l.malformed.Add(1)
			log.Debug().Int("len", n).Msg("short radio datagram")
			continue
		}
		l.received.Add(1)
		l.latest.Store(&pkt)
	}
}

// Poll returns the newest packet since the previous Poll, or nil. It
// reads and clears in one step, so a packet is delivered exactly once.
func (l *Listener) Poll() *Packet {
	return l.latest.Swap(nil)
}

// Received returns how many well-formed datagrams arrived.
func (l *Listener) Received() uint64 { return l.received.Load() }

// Malformed returns how many datagrams were too short to decode.
func (l *Listener) Malformed() uint64 { return l.malformed.Load() }

// LocalAddr returns the bound socket address.
func (l *Listener) LocalAddr() net.Addr { return l.conn.LocalAddr() }

// Close stops the reader and releases the socket.
func (l *Listener) Close() error { return l.conn.Close() }
