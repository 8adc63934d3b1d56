// Package live runs the voice director: a bidirectional audio session with
// the Gemini live API. Microphone PCM goes out as realtime input, narrated
// audio comes back and is queued for gapless playback. An interruption from
// the model drops everything still queued.
package live
