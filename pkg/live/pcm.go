package live

import (
	"encoding/binary"
	"math"
	"time"
)

const (
	InputSampleRate  = 16000
	OutputSampleRate = 24000
	Channels         = 1
	bytesPerSample   = 2

	// InputMIMEType labels microphone frames sent to the live session.
	InputMIMEType = "audio/pcm;rate=16000"

	// CaptureFrameSamples matches the capture buffer size of the browser client.
	CaptureFrameSamples = 4096
)

// EncodeFloat32 converts [-1, 1] float samples to little-endian PCM16.
func EncodeFloat32(samples []float32) []byte {
	out := make([]byte, len(samples)*bytesPerSample)
	for i, s := range samples {
		v := float64(s) * 32768
		v = math.Max(math.MinInt16, math.Min(math.MaxInt16, v))
		binary.LittleEndian.PutUint16(out[i*bytesPerSample:], uint16(int16(v)))
	}
	return out
}

// DecodePCM16 converts little-endian PCM16 to float samples in [-1, 1).
// A trailing odd byte is ignored.
func DecodePCM16(pcm []byte) []float32 {
	out := make([]float32, len(pcm)/bytesPerSample)
	for i := range out {
		v := int16(binary.LittleEndian.Uint16(pcm[i*bytesPerSample:]))
		out[i] = float32(v) / 32768
	}
	return out
}

// MarshalFloat32 packs samples as little-endian IEEE 754 floats, the layout
// of a Web Audio Float32Array.
func MarshalFloat32(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	return out
}

// UnmarshalFloat32 is the inverse of MarshalFloat32. Trailing bytes that do
// not make a whole sample are ignored.
func UnmarshalFloat32(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

// PCMDuration is the playback length of a PCM16 buffer.
func PCMDuration(n, sampleRate, channels int) time.Duration {
	if sampleRate <= 0 || channels <= 0 {
		return 0
	}
	frames := n / (bytesPerSample * channels)
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}
