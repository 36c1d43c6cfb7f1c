package audio

import (
	"github.com/gen2brain/malgo"
)

// DeviceConfig selects the playback device format. Zero fields are taken
// from the clip being played.
type DeviceConfig struct {
	Format           malgo.FormatType
	PlaybackChannels int
	SampleRate       int
}

func (c DeviceConfig) forClip(clip Clip) DeviceConfig {
	if c.Format == malgo.FormatUnknown {
		c.Format = malgo.FormatS16
	}

	if c.PlaybackChannels == 0 {
		c.PlaybackChannels = clip.Channels
	}

	if c.SampleRate == 0 {
		c.SampleRate = clip.SampleRate
	}

	return c
}
