package monitor

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/picolume/firmware/internal/metrics"
	"github.com/picolume/firmware/internal/render"
	"github.com/picolume/firmware/internal/status"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer("127.0.0.1:0", 7, 4)
	ts := httptest.NewServer(s.srv.Handler)
	t.Cleanup(ts.Close)
	return s, ts
}

func wsURL(ts *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + path
}

func waitClients(t *testing.T, s *Server, frames, diags int) {
	t.Helper()
	require.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return len(s.clients) == frames && len(s.diagClients) == diags
	}, 2*time.Second, 5*time.Millisecond)
}

func TestHealthReportsLoopState(t *testing.T) {
	s, ts := newTestServer(t)
	s.PushFrame(make([]render.Pixel, 4), 1234, true)
	s.StateChanged(status.Playing)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	var m map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	assert.EqualValues(t, 7, m["identity"])
	assert.EqualValues(t, 4, m["leds"])
	assert.Equal(t, "playing", m["state"])
	assert.EqualValues(t, 1234, m["show_time_ms"])
	assert.Equal(t, true, m["playing"])
	assert.EqualValues(t, 1, m["frame_id"])
}

func TestFramesWebsocketStreamsRGB(t *testing.T) {
	s, ts := newTestServer(t)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws/frames"), nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	_, hello, err := conn.ReadMessage()
	require.NoError(t, err)
	var h map[string]any
	require.NoError(t, json.Unmarshal(hello, &h))
	assert.EqualValues(t, 7, h["identity"])
	assert.EqualValues(t, 4, h["leds"])

	waitClients(t, s, 1, 0)
	s.PushFrame([]render.Pixel{{R: 250, W: 10}, {G: 3}, {}, {B: 9}}, 500, true)

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var f struct {
		FrameID    uint64 `json:"frame_id"`
		ShowTimeMS int64  `json:"show_time_ms"`
		RGB        []byte `json:"rgb"`
	}
	require.NoError(t, json.Unmarshal(msg, &f))
	assert.EqualValues(t, 1, f.FrameID)
	assert.EqualValues(t, 500, f.ShowTimeMS)
	assert.Equal(t, []byte{255, 10, 10, 0, 3, 0, 0, 0, 0, 0, 0, 9}, f.RGB)
}

func TestFrameBroadcastIsThrottled(t *testing.T) {
	s, ts := newTestServer(t)
	s.throttle = time.Hour

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws/frames"), nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage() // hello
	require.NoError(t, err)
	waitClients(t, s, 1, 0)

	frame := make([]render.Pixel, 4)
	s.PushFrame(frame, 100, true)
	s.PushFrame(frame, 120, true)
	s.PushFrame(frame, 140, true)

	_, _, err = conn.ReadMessage()
	require.NoError(t, err, "first push must broadcast")
	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "burst pushes must be throttled")

	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.EqualValues(t, 3, s.frameID, "frame accounting continues while throttled")
}

func TestStatusWebsocketStreamsDiagnostics(t *testing.T) {
	s, ts := newTestServer(t)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws/status"), nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var d status.Diagnostic
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(msg, &d))
	assert.Equal(t, "STATE.CURRENT", d.Code)
	assert.Equal(t, string(status.NoShow), d.Summary)

	waitClients(t, s, 0, 1)
	s.StateChanged(status.NoSignal)
	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(msg, &d))
	assert.Equal(t, "STATE.CHANGED", d.Code)
	assert.Equal(t, string(status.NoSignal), d.Summary)

	// Same state again must not produce another transition message.
	s.StateChanged(status.NoSignal)
	s.Report(status.Diagnostic{Severity: status.Warn, Code: "RADIO.SIGNAL_LOST", Summary: "no packets"})
	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(msg, &d))
	assert.Equal(t, "RADIO.SIGNAL_LOST", d.Code)
	assert.Equal(t, status.Warn, d.Severity)
}

func TestMetricsEndpointServesNamespace(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "picolume_frames_rendered_total")
}
