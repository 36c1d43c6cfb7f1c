package audio_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/alkime/stretch/internal/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildWAV(t *testing.T, format, channels uint16, rate uint32, bits uint16, pcm []byte, extra ...[]byte) []byte {
	t.Helper()

	var fmtChunk bytes.Buffer
	for _, v := range []any{format, channels, rate, rate * uint32(channels) * uint32(bits/8), channels * bits / 8, bits} {
		require.NoError(t, binary.Write(&fmtChunk, binary.LittleEndian, v))
	}

	var body bytes.Buffer
	body.WriteString("WAVE")

	writeChunk := func(id string, data []byte) {
		body.WriteString(id)
		require.NoError(t, binary.Write(&body, binary.LittleEndian, uint32(len(data))))
		body.Write(data)
		if len(data)%2 == 1 {
			body.WriteByte(0)
		}
	}

	writeChunk("fmt ", fmtChunk.Bytes())
	for _, e := range extra {
		writeChunk("LIST", e)
	}
	writeChunk("data", pcm)

	var out bytes.Buffer
	out.WriteString("RIFF")
	require.NoError(t, binary.Write(&out, binary.LittleEndian, uint32(body.Len())))
	out.Write(body.Bytes())

	return out.Bytes()
}

func TestDecodeWAV(t *testing.T) {
	t.Parallel()

	t.Run("mono 16-bit", func(t *testing.T) {
		t.Parallel()

		pcm := make([]byte, 24000*2) // one second
		clip, err := audio.DecodeWAV(buildWAV(t, 1, 1, 24000, 16, pcm))
		require.NoError(t, err)

		assert.Equal(t, 24000, clip.SampleRate)
		assert.Equal(t, 1, clip.Channels)
		assert.Len(t, clip.PCM, len(pcm))
		assert.Equal(t, time.Second, clip.Duration())
	})

	t.Run("skips unknown chunks with odd sizes", func(t *testing.T) {
		t.Parallel()

		pcm := []byte{1, 0, 2, 0, 3, 0, 4, 0}
		clip, err := audio.DecodeWAV(buildWAV(t, 1, 2, 16000, 16, pcm, []byte("odd")))
		require.NoError(t, err)

		assert.Equal(t, pcm, clip.PCM)
		assert.Equal(t, 2, clip.Frames())
	})

	t.Run("unbounded data size takes the rest", func(t *testing.T) {
		t.Parallel()

		pcm := []byte{1, 0, 2, 0, 3, 0}
		wav := buildWAV(t, 1, 1, 24000, 16, pcm)
		binary.LittleEndian.PutUint32(wav[4:8], math.MaxUint32)
		binary.LittleEndian.PutUint32(wav[len(wav)-len(pcm)-4:], math.MaxUint32)

		clip, err := audio.DecodeWAV(wav)
		require.NoError(t, err)
		assert.Equal(t, pcm, clip.PCM)
	})

	t.Run("rejects non-wav data", func(t *testing.T) {
		t.Parallel()

		_, err := audio.DecodeWAV([]byte("ID3\x03 mp3 data here"))
		assert.ErrorIs(t, err, audio.ErrNotWAV)
	})

	t.Run("rejects non-pcm formats", func(t *testing.T) {
		t.Parallel()

		_, err := audio.DecodeWAV(buildWAV(t, 3, 1, 24000, 32, make([]byte, 8)))
		assert.ErrorIs(t, err, audio.ErrUnsupportedFormat)
	})

	t.Run("missing data chunk", func(t *testing.T) {
		t.Parallel()

		wav := buildWAV(t, 1, 1, 24000, 16, nil)
		_, err := audio.DecodeWAV(wav[:len(wav)-8])
		assert.ErrorContains(t, err, "no data chunk")
	})
}

func TestClip_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		clip        audio.Clip
		expectError string
	}{
		{name: "valid", clip: audio.Clip{PCM: make([]byte, 4), SampleRate: 24000, Channels: 1}},
		{name: "zero rate", clip: audio.Clip{PCM: make([]byte, 4), Channels: 1}, expectError: "sample rate must be positive"},
		{name: "zero channels", clip: audio.Clip{PCM: make([]byte, 4), SampleRate: 24000}, expectError: "channels must be positive"},
		{name: "partial frame", clip: audio.Clip{PCM: make([]byte, 3), SampleRate: 24000, Channels: 1}, expectError: "whole number of frames"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.clip.Validate()

			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
