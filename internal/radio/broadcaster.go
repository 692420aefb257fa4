package radio

import "net"

// Broadcaster sends timecode packets to a multicast group or broadcast
// address. It holds no schedule of its own; the transmitter drives it
// once per beacon tick.
type Broadcaster struct {
	conn *net.UDPConn
	buf  []byte
}

// Dial connects the beacon socket.
func Dial(addr string) (*Broadcaster, error) {
	ua, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp4", nil, ua)
	if err != nil {
		return nil, err
	}
	return &Broadcaster{conn: conn, buf: make([]byte, 0, PacketSize)}, nil
}

// Send encodes and transmits one packet.
func (b *Broadcaster) Send(p Packet) error {
	b.buf = p.AppendTo(b.buf[:0])
	_, err := b.conn.Write(b.buf)
	return err
}

// Close releases the socket.
func (b *Broadcaster) Close() error { return b.conn.Close() }
