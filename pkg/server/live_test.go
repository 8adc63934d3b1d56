package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kerbaras/herogen/pkg/data"
	"github.com/kerbaras/herogen/pkg/live"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type liveSession struct {
	messages chan *genai.LiveServerMessage
	closed   chan struct{}
	once     sync.Once

	mu    sync.Mutex
	audio [][]byte
}

func newLiveSession() *liveSession {
	return &liveSession{
		messages: make(chan *genai.LiveServerMessage, 10),
		closed:   make(chan struct{}),
	}
}

func (s *liveSession) SendRealtimeInput(input genai.LiveRealtimeInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if input.Audio != nil {
		s.audio = append(s.audio, input.Audio.Data)
	}
	return nil
}

func (s *liveSession) Receive() (*genai.LiveServerMessage, error) {
	select {
	case msg := <-s.messages:
		return msg, nil
	case <-s.closed:
		return nil, net.ErrClosed
	}
}

func (s *liveSession) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

func (s *liveSession) frame(i int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audio[i]
}

func (s *liveSession) frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.audio)
}

func newLiveServer(t *testing.T, dial live.DialFunc, query ...string) string {
	t.Helper()
	f := newFixture(t, WithDirector(func(sink live.Sink) *live.Director {
		return live.NewDirector(dial, live.DefaultConfig(), live.WithSink(sink))
	}))
	srv := httptest.NewServer(f.handler)
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/live"
	if len(query) > 0 {
		url += "?" + query[0]
	}
	return url
}

func dialLive(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads frames until match returns true.
func readUntil(t *testing.T, conn *websocket.Conn, match func(messageType int, payload []byte) bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		messageType, payload, err := conn.ReadMessage()
		require.NoError(t, err)
		if match(messageType, payload) {
			return
		}
	}
}

func isEvent(want liveEvent) func(int, []byte) bool {
	return func(messageType int, payload []byte) bool {
		if messageType != websocket.TextMessage {
			return false
		}
		var got liveEvent
		return json.Unmarshal(payload, &got) == nil && got.Type == want.Type && got.Status == want.Status
	}
}

func TestLiveBridge(t *testing.T) {
	session := newLiveSession()
	url := newLiveServer(t, func(context.Context, string, *genai.LiveConnectConfig) (live.Session, error) {
		return session, nil
	})
	conn := dialLive(t, url)

	readUntil(t, conn, isEvent(liveEvent{Type: "status", Status: data.AudioConnected}))

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, make([]byte, 320)))
	require.Eventually(t, func() bool { return session.frames() == 1 }, time.Second, 5*time.Millisecond)

	pcm := []byte{1, 2, 3, 4}
	session.messages <- &genai.LiveServerMessage{
		ServerContent: &genai.LiveServerContent{
			ModelTurn: genai.NewContentFromParts([]*genai.Part{
				genai.NewPartFromBytes(pcm, "audio/pcm;rate=24000"),
			}, genai.RoleModel),
		},
	}
	readUntil(t, conn, isEvent(liveEvent{Type: "status", Status: data.AudioSpeaking}))
	readUntil(t, conn, func(messageType int, payload []byte) bool {
		return messageType == websocket.BinaryMessage && string(payload) == string(pcm)
	})

	session.messages <- &genai.LiveServerMessage{
		ServerContent: &genai.LiveServerContent{Interrupted: true},
	}
	readUntil(t, conn, isEvent(liveEvent{Type: "reset"}))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"stop"}`)))
	require.Eventually(t, func() bool {
		select {
		case <-session.closed:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestLiveBridgeConnectFailure(t *testing.T) {
	url := newLiveServer(t, func(context.Context, string, *genai.LiveConnectConfig) (live.Session, error) {
		return nil, errors.New("quota exceeded")
	})
	conn := dialLive(t, url)

	readUntil(t, conn, isEvent(liveEvent{Type: "status", Status: data.AudioError}))
	readUntil(t, conn, func(messageType int, payload []byte) bool {
		var got liveEvent
		return json.Unmarshal(payload, &got) == nil && got.Type == "error" && strings.Contains(got.Error, "quota exceeded")
	})
}

func TestLiveNotConfigured(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/live", nil))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestLiveBridgeFloat32(t *testing.T) {
	session := newLiveSession()
	url := newLiveServer(t, func(context.Context, string, *genai.LiveConnectConfig) (live.Session, error) {
		return session, nil
	}, "format=f32")
	conn := dialLive(t, url)

	readUntil(t, conn, isEvent(liveEvent{Type: "status", Status: data.AudioConnected}))

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, live.MarshalFloat32([]float32{0, 0.5})))
	require.Eventually(t, func() bool { return session.frames() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x40}, session.frame(0))

	session.messages <- &genai.LiveServerMessage{
		ServerContent: &genai.LiveServerContent{
			ModelTurn: genai.NewContentFromParts([]*genai.Part{
				genai.NewPartFromBytes([]byte{0x00, 0xC0}, "audio/pcm;rate=24000"),
			}, genai.RoleModel),
		},
	}
	want := string(live.MarshalFloat32([]float32{-0.5}))
	readUntil(t, conn, func(messageType int, payload []byte) bool {
		return messageType == websocket.BinaryMessage && string(payload) == want
	})
}
