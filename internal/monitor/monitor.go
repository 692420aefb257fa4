// Package monitor serves the receiver's observation surfaces: a live
// frame websocket, a status websocket, a health endpoint and
// prometheus metrics. It observes the control loop and never steers
// it; props take commands from the radio alone.
package monitor

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/picolume/firmware/internal/render"
	"github.com/picolume/firmware/internal/status"
)

const writeWait = 200 * time.Millisecond

// Server fans frames and diagnostics out to websocket clients. Push
// methods are called from the control loop; handlers run on the HTTP
// server's goroutines.
type Server struct {
	mu          sync.RWMutex
	identity    int
	leds        int
	startTime   time.Time
	frameID     uint64
	state       status.State
	showTimeMS  int64
	playing     bool
	lastEmit    time.Time
	throttle    time.Duration
	rgb         []byte
	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool

	srv *http.Server
}

func NewServer(addr string, identity, leds int) *Server {
	s := &Server{
		identity:    identity,
		leds:        leds,
		startTime:   time.Now(),
		state:       status.NoShow,
		throttle:    50 * time.Millisecond,
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/frames", s.handleFramesWS)
	mux.HandleFunc("/ws/status", s.handleStatusWS)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	s.srv = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start serves in the background until Close.
func (s *Server) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", s.srv.Addr).Msg("monitor server")
		}
	}()
}

func (s *Server) Close() error {
	return s.srv.Close()
}

// SetLEDCount tracks strip resizes after a show reload.
func (s *Server) SetLEDCount(n int) {
	s.mu.Lock()
	s.leds = n
	s.mu.Unlock()
}

// PushFrame records the latest rendered frame and broadcasts it to
// frame clients, throttled so slow viewers see ~20 Hz at most. The
// white channel is folded back into the display color.
func (s *Server) PushFrame(frame []render.Pixel, showTimeMS int64, playing bool) {
	s.mu.Lock()
	s.frameID++
	s.showTimeMS = showTimeMS
	s.playing = playing
	rgb := s.rgb[:0]
	for _, px := range frame {
		rgb = append(rgb, saturate(px.R, px.W), saturate(px.G, px.W), saturate(px.B, px.W))
	}
	s.rgb = rgb
	now := time.Now()
	if len(s.clients) == 0 || now.Sub(s.lastEmit) < s.throttle {
		s.mu.Unlock()
		return
	}
	s.lastEmit = now
	id := s.frameID
	buf := append([]byte{}, rgb...)
	s.mu.Unlock()

	s.broadcastFrame(id, showTimeMS, buf)
}

// StateChanged implements status.Reporter. Transitions surface on the
// status websocket as diagnostics.
func (s *Server) StateChanged(st status.State) {
	s.mu.Lock()
	changed := s.state != st
	s.state = st
	s.mu.Unlock()
	if changed {
		s.Report(status.Diagnostic{Severity: status.Info, Code: "STATE.CHANGED", Summary: string(st)})
	}
}

// Report implements status.Reporter.
func (s *Server) Report(d status.Diagnostic) {
	b, _ := json.Marshal(d)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.diagClients {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.WriteMessage(websocket.TextMessage, b)
	}
}

func (s *Server) handleFramesWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.sendHello(conn)
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) handleStatusWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.RLock()
	st := s.state
	s.mu.RUnlock()
	b, _ := json.Marshal(status.Diagnostic{Severity: status.Info, Code: "STATE.CURRENT", Summary: string(st)})
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.TextMessage, b)

	s.mu.Lock()
	s.diagClients[conn] = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.diagClients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := map[string]any{
		"identity":     s.identity,
		"leds":         s.leds,
		"state":        string(s.state),
		"show_time_ms": s.showTimeMS,
		"playing":      s.playing,
		"frame_id":     s.frameID,
		"uptime_s":     time.Since(s.startTime).Seconds(),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) sendHello(conn *websocket.Conn) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hello := map[string]any{
		"identity": s.identity,
		"leds":     s.leds,
	}
	b, _ := json.Marshal(hello)
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.TextMessage, b)
}

func (s *Server) broadcastFrame(id uint64, showTimeMS int64, rgb []byte) {
	type frame struct {
		T          int64  `json:"t"`
		FrameID    uint64 `json:"frame_id"`
		ShowTimeMS int64  `json:"show_time_ms"`
		RGB        []byte `json:"rgb"`
	}
	b, _ := json.Marshal(frame{T: time.Now().UnixNano(), FrameID: id, ShowTimeMS: showTimeMS, RGB: rgb})
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write frame")
		}
	}
}

func saturate(c, w uint8) uint8 {
	v := int(c) + int(w)
	if v > 255 {
		return 255
	}
	return uint8(v)
}
