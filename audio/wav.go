package audio

import (
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/amzeratul/retrograde-sub000/logger"
)

// Capture records samples to a 16-bit stereo WAV stream. The header is
// written with the first source rate announced.
type Capture struct {
	w    io.WriteSeeker
	log  *logger.Logger
	rate int
	enc  *wav.Encoder
	buf  *audio.IntBuffer
}

// NewCapture creates a capture writing to w.
func NewCapture(w io.WriteSeeker, log *logger.Logger) *Capture {
	if log == nil {
		log = logger.Nop()
	}
	return &Capture{w: w, log: log}
}

// SetSourceRate implements api.AudioSink.
func (c *Capture) SetSourceRate(rate float64) {
	r := int(math.Round(rate))
	if c.enc != nil {
		if r != c.rate {
			c.log.Warn().Int("rate", r).Int("recording", c.rate).Msg("capture keeps its initial sample rate")
		}
		return
	}
	c.rate = r
}

// WriteSamples implements api.AudioSink.
func (c *Capture) WriteSamples(samples []float32) {
	if c.rate <= 0 || len(samples) == 0 {
		return
	}
	if c.enc == nil {
		c.enc = wav.NewEncoder(c.w, c.rate, 16, 2, 1)
		c.buf = &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 2, SampleRate: c.rate},
			SourceBitDepth: 16,
		}
	}
	data := c.buf.Data[:0]
	for _, v := range samples {
		data = append(data, int(max(min(v, 1), -1)*math.MaxInt16))
	}
	c.buf.Data = data
	if err := c.enc.Write(c.buf); err != nil {
		c.log.Error().Err(err).Msg("audio capture write failed")
	}
}

// Close finalizes the WAV header. It does not close the writer.
func (c *Capture) Close() error {
	if c.enc == nil {
		return nil
	}
	if err := c.enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	c.enc = nil
	return nil
}
