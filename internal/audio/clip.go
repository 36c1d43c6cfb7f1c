package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// bytesPerSample is fixed: every clip is signed 16-bit little-endian PCM.
const bytesPerSample = 2

// Clip is a decoded utterance ready for playback.
type Clip struct {
	// PCM holds interleaved S16LE samples.
	PCM        []byte
	SampleRate int
	Channels   int
}

// Validate returns an error if the clip cannot be played.
func (c Clip) Validate() error {
	if c.SampleRate <= 0 {
		return errors.New("sample rate must be positive")
	}

	if c.Channels <= 0 {
		return errors.New("channels must be positive")
	}

	if len(c.PCM)%(bytesPerSample*c.Channels) != 0 {
		return fmt.Errorf("pcm length %d is not a whole number of frames", len(c.PCM))
	}

	return nil
}

// Frames returns the number of sample frames in the clip.
func (c Clip) Frames() int {
	if c.Channels <= 0 {
		return 0
	}

	return len(c.PCM) / (bytesPerSample * c.Channels)
}

// Duration returns the playback length of the clip.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}

	return time.Duration(c.Frames()) * time.Second / time.Duration(c.SampleRate)
}

var (
	ErrNotWAV            = errors.New("not a RIFF/WAVE stream")
	ErrUnsupportedFormat = errors.New("unsupported WAV format: only 16-bit PCM is supported")
)

// DecodeWAV parses a RIFF/WAVE byte stream holding 16-bit PCM.
func DecodeWAV(data []byte) (*Clip, error) {
	if len(data) < 12 || !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return nil, ErrNotWAV
	}

	var (
		clip    Clip
		haveFmt bool
	)

	rest := data[12:]
	for len(rest) >= 8 {
		id := string(rest[0:4])
		declared := uint64(binary.LittleEndian.Uint32(rest[4:8]))
		rest = rest[8:]

		// Streams written without a final size are common; take what is there.
		size := len(rest)
		if declared < uint64(size) {
			size = int(declared)
		}
		body := rest[:size]

		switch id {
		case "fmt ":
			if len(body) < 16 {
				return nil, fmt.Errorf("fmt chunk too short: %d bytes", len(body))
			}

			format := binary.LittleEndian.Uint16(body[0:2])
			bits := binary.LittleEndian.Uint16(body[14:16])
			if format != 1 || bits != 16 {
				return nil, ErrUnsupportedFormat
			}

			clip.Channels = int(binary.LittleEndian.Uint16(body[2:4]))
			clip.SampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, errors.New("data chunk before fmt chunk")
			}

			clip.PCM = body[:len(body)-len(body)%(bytesPerSample*max(clip.Channels, 1))]
			if err := clip.Validate(); err != nil {
				return nil, fmt.Errorf("invalid WAV clip: %w", err)
			}

			return &clip, nil
		}

		// chunks are word aligned
		if size%2 == 1 && size < len(rest) {
			size++
		}
		rest = rest[size:]
	}

	return nil, errors.New("no data chunk in WAV stream")
}
