package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kerbaras/herogen/pkg/data"
	"github.com/kerbaras/herogen/pkg/live"
)

const writeTimeout = 5 * time.Second

type liveEvent struct {
	Type   string           `json:"type"`
	Status data.AudioStatus `json:"status,omitempty"`
	Error  string           `json:"error,omitempty"`
}

type controlMessage struct {
	Type string `json:"type"`
}

// formatFloat32 switches a connection to Web Audio float samples in both
// directions instead of PCM16.
const formatFloat32 = "f32"

// wsSink forwards director audio to the browser as binary frames. Reset
// tells the client to drop its own playback queue.
type wsSink struct {
	mu    sync.Mutex
	conn  *websocket.Conn
	float bool
}

func (s *wsSink) Write(pcm []byte) error {
	if s.float {
		pcm = live.MarshalFloat32(live.DecodePCM16(pcm))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteMessage(websocket.BinaryMessage, pcm)
}

func (s *wsSink) Reset() error {
	return s.send(liveEvent{Type: "reset"})
}

func (s *wsSink) Close() error {
	return nil
}

func (s *wsSink) send(event liveEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

// handleLive bridges one browser to one director session. Binary frames are
// 16 kHz PCM16 microphone audio, or float32 samples with ?format=f32;
// {"type":"stop"} ends the session.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	if s.newDirector == nil {
		writeError(w, http.StatusNotImplemented, "live director is not configured")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	float := r.URL.Query().Get("format") == formatFloat32
	sink := &wsSink{conn: conn, float: float}
	director := s.newDirector(sink)
	defer director.Close()

	director.OnStatus(func(status data.AudioStatus) {
		_ = sink.send(liveEvent{Type: "status", Status: status})
	})
	_ = sink.send(liveEvent{Type: "status", Status: director.Status()})

	if err := director.Connect(r.Context()); err != nil {
		_ = sink.send(liveEvent{Type: "error", Error: err.Error()})
		return
	}

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Err(err).Msg("live client read failed")
			}
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			send := director.SendAudio
			if float {
				send = func(frame []byte) error { return director.SendSamples(live.UnmarshalFloat32(frame)) }
			}
			if err := send(payload); err != nil {
				_ = sink.send(liveEvent{Type: "error", Error: err.Error()})
				return
			}
		case websocket.TextMessage:
			var msg controlMessage
			if json.Unmarshal(payload, &msg) == nil && msg.Type == "stop" {
				_ = director.Disconnect()
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeTimeout))
				return
			}
		}
	}
}
