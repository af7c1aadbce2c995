package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/amzeratul/retrograde-sub000/logger"
)

// oto allows one context per process.
var (
	otoCtx      *oto.Context
	otoRate     int
	otoInitOnce sync.Once
	otoInitErr  error
)

func ensureOtoContext(rate int, buffer time.Duration) (*oto.Context, error) {
	otoInitOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   rate,
			ChannelCount: 2,
			Format:       oto.FormatFloat32LE,
			BufferSize:   buffer,
		}
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr != nil {
			return
		}
		otoRate = rate
		<-ready
	})
	if otoInitErr == nil && otoRate != rate {
		return nil, fmt.Errorf("audio context already running at %d Hz", otoRate)
	}
	return otoCtx, otoInitErr
}

// OutputConfig configures an Output.
type OutputConfig struct {
	SampleRate int
	Latency    time.Duration
	Volume     float64
	Muted      bool
}

// Output plays samples through oto. WriteSamples runs on the stepping
// goroutine and oto pulls through Read on its own goroutine, with a Ring
// between them.
type Output struct {
	player    *oto.Player
	ring      *Ring
	resampler *Resampler
	log       *logger.Logger

	volume float64
	muted  bool

	readBuf []float32
}

// NewOutput opens the audio device.
func NewOutput(cfg OutputConfig, log *logger.Logger) (*Output, error) {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", cfg.SampleRate)
	}
	ctx, err := ensureOtoContext(cfg.SampleRate, cfg.Latency)
	if err != nil {
		return nil, fmt.Errorf("oto audio not available: %w", err)
	}

	// Twice the latency in stereo samples, so DRC can aim for half full.
	capacity := int(2 * cfg.Latency.Seconds() * float64(cfg.SampleRate) * 2)
	if capacity < 4096 {
		capacity = 4096
	}
	o := &Output{
		ring:      NewRing(capacity),
		resampler: NewResampler(float64(cfg.SampleRate), float64(cfg.SampleRate)),
		log:       log,
	}
	o.player = ctx.NewPlayer(o)
	o.player.SetBufferSize(int(cfg.Latency.Seconds()*float64(cfg.SampleRate)) * 8)
	o.volume = cfg.Volume
	o.muted = cfg.Muted
	o.applyVolume()
	o.player.Play()
	log.Info().Int("rate", cfg.SampleRate).Int("ring", o.ring.Cap()).Msg("audio output started")
	return o, nil
}

// SetSourceRate implements api.AudioSink.
func (o *Output) SetSourceRate(rate float64) {
	o.resampler.SetInputRate(rate)
	o.resampler.Reset()
}

// WriteSamples implements api.AudioSink.
func (o *Output) WriteSamples(samples []float32) {
	out := o.resampler.Process(samples, o.ring.Fill())
	if n := o.ring.Write(out); n < len(out) {
		o.log.Debug().Int("dropped", len(out)-n).Msg("audio overrun")
	}
}

// Read implements io.Reader for the oto player. Underruns are padded with
// silence.
func (o *Output) Read(p []byte) (int, error) {
	n := len(p) / 4
	if cap(o.readBuf) < n {
		o.readBuf = make([]float32, n)
	}
	buf := o.readBuf[:n]
	got := o.ring.Read(buf)
	clear(buf[got:])
	for i, v := range buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	return n * 4, nil
}

// Buffered returns the number of buffered samples.
func (o *Output) Buffered() int { return o.ring.Len() }

// Fill returns how full the playback buffer is, from 0 to 1.
func (o *Output) Fill() float64 { return o.ring.Fill() }

// SetVolume sets the playback volume, clamped to [0, 2].
func (o *Output) SetVolume(v float64) {
	o.volume = min(max(v, 0), 2)
	o.applyVolume()
}

// SetMuted mutes or unmutes playback.
func (o *Output) SetMuted(m bool) {
	o.muted = m
	o.applyVolume()
}

func (o *Output) applyVolume() {
	if o.muted {
		o.player.SetVolume(0)
		return
	}
	o.player.SetVolume(o.volume)
}

// Close stops playback.
func (o *Output) Close() error {
	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	return err
}
