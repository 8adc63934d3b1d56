package live

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/kerbaras/herogen/pkg/data"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const (
	DefaultModel = "gemini-2.5-flash-native-audio-preview-09-2025"
	DefaultVoice = "Fenrir"

	DirectorInstruction = `You are the Director and Narrator of a superhero comic book being created live.
The user is the star. Be enthusiastic, hype up their superpowers, and act like a movie trailer voiceover guy or a comic book geek.
Keep responses relatively short and punchy unless asked for deep lore.`
)

var ErrNotConnected = errors.New("live session is not connected")

// Session is the part of *genai.Session the director drives.
type Session interface {
	SendRealtimeInput(input genai.LiveRealtimeInput) error
	Receive() (*genai.LiveServerMessage, error)
	Close() error
}

type Dialer interface {
	Dial(ctx context.Context, model string, config *genai.LiveConnectConfig) (Session, error)
}

type DialFunc func(ctx context.Context, model string, config *genai.LiveConnectConfig) (Session, error)

func (f DialFunc) Dial(ctx context.Context, model string, config *genai.LiveConnectConfig) (Session, error) {
	return f(ctx, model, config)
}

// GeminiDialer opens live sessions through the Gemini API client.
func GeminiDialer(client *genai.Client) Dialer {
	return DialFunc(func(ctx context.Context, model string, config *genai.LiveConnectConfig) (Session, error) {
		session, err := client.Live.Connect(ctx, model, config)
		if err != nil {
			return nil, err
		}
		return session, nil
	})
}

// Sink plays decoded 24 kHz mono PCM16 audio.
type Sink interface {
	Write(pcm []byte) error
	// Reset drops anything buffered but not yet heard.
	Reset() error
	Close() error
}

type discardSink struct{}

func (discardSink) Write([]byte) error { return nil }
func (discardSink) Reset() error       { return nil }
func (discardSink) Close() error       { return nil }

type Config struct {
	Model             string
	Voice             string
	SystemInstruction string
}

func DefaultConfig() Config {
	return Config{
		Model:             DefaultModel,
		Voice:             DefaultVoice,
		SystemInstruction: DirectorInstruction,
	}
}

func (c Config) connectConfig() *genai.LiveConnectConfig {
	cfg := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: c.Voice},
			},
		},
	}
	if c.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(c.SystemInstruction, genai.RoleUser)
	}
	return cfg
}

type Option func(*Director)

func WithSink(sink Sink) Option {
	return func(d *Director) {
		if sink != nil {
			d.sink = sink
		}
	}
}

func WithClock(clock Clock) Option {
	return func(d *Director) {
		d.queue = NewPlaybackQueue(clock)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(d *Director) {
		d.log = logger
	}
}

// Director narrates over a live audio session: microphone frames go out,
// spoken audio comes back and is queued for gapless playback.
type Director struct {
	dialer Dialer
	cfg    Config
	sink   Sink
	queue  *PlaybackQueue
	log    zerolog.Logger

	sendMu   sync.Mutex
	notifyMu sync.Mutex

	mu        sync.Mutex
	status    data.AudioStatus
	session   Session
	attempt   uint64
	lastErr   error
	listeners []func(data.AudioStatus)
	pending   []data.AudioStatus
}

func NewDirector(dialer Dialer, cfg Config, opts ...Option) *Director {
	def := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Voice == "" {
		cfg.Voice = def.Voice
	}
	if cfg.SystemInstruction == "" {
		cfg.SystemInstruction = def.SystemInstruction
	}

	d := &Director{
		dialer: dialer,
		cfg:    cfg,
		sink:   discardSink{},
		log:    zerolog.Nop(),
		status: data.AudioDisconnected,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.queue == nil {
		d.queue = NewPlaybackQueue(nil)
	}
	d.queue.OnIdle(d.playbackIdle)
	return d
}

// OnStatus registers a listener for every status change. Listeners are
// called in order and must not call Connect or Disconnect synchronously.
func (d *Director) OnStatus(fn func(data.AudioStatus)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

func (d *Director) Status() data.AudioStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// Err is the error behind the last ERROR status, if any.
func (d *Director) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// Connect opens the live session and starts receiving. Calling it while a
// session is open or opening does nothing.
func (d *Director) Connect(ctx context.Context) error {
	d.mu.Lock()
	if d.session != nil || d.status == data.AudioConnecting {
		d.unlock()
		return nil
	}
	d.attempt++
	attempt := d.attempt
	d.lastErr = nil
	d.setStatusLocked(data.AudioConnecting)
	d.unlock()

	session, err := d.dialer.Dial(ctx, d.cfg.Model, d.cfg.connectConfig())

	d.mu.Lock()
	if attempt != d.attempt {
		// Disconnected while dialing.
		d.unlock()
		if session != nil {
			_ = session.Close()
		}
		return ErrNotConnected
	}
	if err != nil {
		d.lastErr = err
		d.setStatusLocked(data.AudioError)
		d.unlock()
		d.log.Error().Err(err).Str("model", d.cfg.Model).Msg("live connect failed")
		return fmt.Errorf("failed to open live session: %w", err)
	}
	d.session = session
	d.setStatusLocked(data.AudioConnected)
	d.unlock()

	d.log.Info().Str("model", d.cfg.Model).Str("voice", d.cfg.Voice).Msg("director connected")
	go d.receive(session)
	return nil
}

// SendAudio forwards one 16 kHz mono PCM16 frame.
func (d *Director) SendAudio(frame []byte) error {
	d.mu.Lock()
	session := d.session
	d.mu.Unlock()
	if session == nil {
		return ErrNotConnected
	}

	d.sendMu.Lock()
	defer d.sendMu.Unlock()
	return session.SendRealtimeInput(genai.LiveRealtimeInput{
		Audio: &genai.Blob{Data: frame, MIMEType: InputMIMEType},
	})
}

// SendSamples encodes float capture samples and sends them.
func (d *Director) SendSamples(samples []float32) error {
	return d.SendAudio(EncodeFloat32(samples))
}

// StreamFrom pumps PCM16 frames from r until it ends, ctx is done or a
// send fails.
func (d *Director) StreamFrom(ctx context.Context, r io.Reader) error {
	buf := make([]byte, CaptureFrameSamples*bytesPerSample)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, readErr := r.Read(buf)
		if n > 0 {
			frame := make([]byte, n)
			copy(frame, buf[:n])
			if err := d.SendAudio(frame); err != nil {
				return err
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return readErr
		}
	}
}

// Disconnect closes the session and silences playback. The director can be
// connected again afterwards.
func (d *Director) Disconnect() error {
	d.mu.Lock()
	d.attempt++
	session := d.session
	d.session = nil
	d.setStatusLocked(data.AudioDisconnected)
	d.unlock()

	d.queue.Interrupt()
	if err := d.sink.Reset(); err != nil {
		d.log.Warn().Err(err).Msg("failed to reset audio sink")
	}
	if session == nil {
		return nil
	}
	d.log.Info().Msg("director disconnected")
	return session.Close()
}

// Close disconnects and releases the sink.
func (d *Director) Close() error {
	err := d.Disconnect()
	if sinkErr := d.sink.Close(); sinkErr != nil && err == nil {
		err = sinkErr
	}
	return err
}

func (d *Director) receive(session Session) {
	for {
		msg, err := session.Receive()
		if err != nil {
			d.receiveFailed(session, err)
			return
		}
		d.handle(session, msg)
	}
}

func (d *Director) handle(session Session, msg *genai.LiveServerMessage) {
	if msg == nil || msg.ServerContent == nil {
		return
	}
	content := msg.ServerContent

	if content.ModelTurn != nil {
		for _, part := range content.ModelTurn.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			if mime := part.InlineData.MIMEType; mime != "" && !strings.HasPrefix(mime, "audio/") {
				continue
			}
			d.play(session, part.InlineData.Data)
		}
	}

	if content.Interrupted {
		d.interrupt(session)
	}
}

func (d *Director) play(session Session, pcm []byte) {
	d.mu.Lock()
	if d.session != session {
		d.unlock()
		return
	}
	d.setStatusLocked(data.AudioSpeaking)
	d.queue.Enqueue(PCMDuration(len(pcm), OutputSampleRate, Channels))
	d.unlock()

	d.log.Debug().Dur("buffered", d.queue.Remaining()).Msg("director speaking")
	if err := d.sink.Write(pcm); err != nil {
		d.log.Warn().Err(err).Msg("audio playback failed")
	}
}

func (d *Director) interrupt(session Session) {
	d.mu.Lock()
	if d.session != session {
		d.unlock()
		return
	}
	d.queue.Interrupt()
	d.setStatusLocked(data.AudioConnected)
	d.unlock()

	if err := d.sink.Reset(); err != nil {
		d.log.Warn().Err(err).Msg("failed to reset audio sink")
	}
	d.log.Debug().Msg("director interrupted")
}

func (d *Director) playbackIdle() {
	d.mu.Lock()
	defer d.unlock()
	// play may have queued more audio since the queue went idle.
	if d.status == data.AudioSpeaking && d.queue.Pending() == 0 {
		d.setStatusLocked(data.AudioConnected)
	}
}

func (d *Director) receiveFailed(session Session, err error) {
	d.mu.Lock()
	if d.session != session {
		d.unlock()
		return
	}
	d.session = nil
	if isClosed(err) {
		d.setStatusLocked(data.AudioDisconnected)
	} else {
		d.lastErr = err
		d.setStatusLocked(data.AudioError)
	}
	d.unlock()

	d.queue.Interrupt()
	if err := d.sink.Reset(); err != nil {
		d.log.Warn().Err(err).Msg("failed to reset audio sink")
	}
	if err := session.Close(); err != nil {
		d.log.Warn().Err(err).Msg("failed to close live session")
	}

	if isClosed(err) {
		d.log.Info().Msg("live session closed by server")
	} else {
		d.log.Error().Err(err).Msg("live session failed")
	}
}

// setStatusLocked must be called with d.mu held. The change is delivered
// to listeners by unlock.
func (d *Director) setStatusLocked(status data.AudioStatus) {
	if d.status == status {
		return
	}
	d.status = status
	d.pending = append(d.pending, status)
}

// unlock releases d.mu and then reports queued status changes. notifyMu is
// taken before d.mu is released so listeners see changes in order.
func (d *Director) unlock() {
	pending := d.pending
	d.pending = nil
	if len(pending) == 0 {
		d.mu.Unlock()
		return
	}
	listeners := append([]func(data.AudioStatus){}, d.listeners...)

	d.notifyMu.Lock()
	defer d.notifyMu.Unlock()
	d.mu.Unlock()
	for _, status := range pending {
		for _, fn := range listeners {
			fn(status)
		}
	}
}

func isClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
