package domain

import "time"

type TranscodeInput struct {
	Path string
	// Seek is applied before the input when non-zero.
	Seek float64
}

// TranscodeJob describes one encoder invocation. VideoFilter is used with a
// single input and FilterGraph when several inputs are combined.
type TranscodeJob struct {
	Inputs       []TranscodeInput
	Duration     float64
	VideoFilter  string
	FilterGraph  string
	VideoCodec   string
	Preset       string
	CRF          int
	PixelFormat  string
	CopyAudio    bool
	AudioCodec   string
	AudioBitrate string
	FastStart    bool
	Output       string
	Timeout      time.Duration
}
