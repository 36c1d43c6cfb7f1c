package pose

import "time"

// Sample is one landmark snapshot received from the camera pipeline.
type Sample struct {
	Keypoints  Keypoints
	ReceivedAt time.Time
}

// Empty reports whether the sample carries no keypoints.
func (s Sample) Empty() bool {
	return len(s.Keypoints) == 0
}

// SampleBuffer holds the most recent landmark sample.
//
// Writes overwrite; Take hands the latest sample out exactly once. It is not
// safe for concurrent use: the session event loop is its only owner.
type SampleBuffer struct {
	latest   Sample
	has      bool
	received int
}

// Put replaces the buffered sample. Empty samples are ignored.
func (b *SampleBuffer) Put(s Sample) {
	if s.Empty() {
		return
	}

	b.latest = s
	b.has = true
	b.received++
}

// Take returns the buffered sample and clears the buffer.
func (b *SampleBuffer) Take() (Sample, bool) {
	if !b.has {
		return Sample{}, false
	}

	s := b.latest
	b.Reset()

	return s, true
}

// Received returns how many samples were accepted since the last Reset.
func (b *SampleBuffer) Received() int {
	return b.received
}

// Reset drops any buffered sample.
func (b *SampleBuffer) Reset() {
	b.latest = Sample{}
	b.has = false
	b.received = 0
}
