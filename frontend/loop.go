package frontend

import (
	"context"
	"time"

	"github.com/amzeratul/retrograde-sub000/api"
	"github.com/amzeratul/retrograde-sub000/logger"
)

// Audio-driven timing thresholds as playback buffer fill.
const (
	adtMinFill = 0.25 // speed up below this
	adtMaxFill = 0.75 // slow down above this
)

// Emulator is the part of the host the loop drives. Every call is made
// from the loop goroutine.
type Emulator interface {
	RunFrame() error
	AVInfo() (api.AVInfo, error)
	Reset() error
	SaveSlot(n int) error
	LoadSlot(n int) error
	RewindEnabled() bool
	SetRewinding(on bool)
	SetFastForward(on bool)
	ShutdownRequested() bool
}

// Command runs on the loop goroutine between frames.
type Command func(Emulator) error

// Loop steps an Emulator on its own goroutine. Other goroutines reach the
// emulator only through Post.
type Loop struct {
	emu      Emulator
	log      *logger.Logger
	control  *EmuControl
	turbo    *TurboState
	commands chan Command

	// Throttle paces frames to the core's frame rate.
	Throttle bool
	// AudioFill, when set, nudges pacing to keep the audio buffer half full.
	AudioFill func() float64
	// MaxFrames stops the loop after that many frames. Zero runs until
	// stopped.
	MaxFrames uint64
	// OnFrame is called after every frame.
	OnFrame func(frame uint64)

	fastForward bool
}

// NewLoop creates a loop for emu.
func NewLoop(emu Emulator, log *logger.Logger) *Loop {
	if log == nil {
		log = logger.Nop()
	}
	return &Loop{
		emu:      emu,
		log:      log,
		control:  NewEmuControl(),
		turbo:    &TurboState{},
		commands: make(chan Command, 16),
		Throttle: true,
	}
}

// Control returns the pause/stop control.
func (l *Loop) Control() *EmuControl { return l.control }

// Turbo returns the fast-forward state.
func (l *Loop) Turbo() *TurboState { return l.turbo }

// Post queues cmd for the next frame boundary. It reports false when the
// queue is full.
func (l *Loop) Post(cmd Command) bool {
	select {
	case l.commands <- cmd:
		return true
	default:
		return false
	}
}

// Run steps the emulator until ctx is done, the loop is stopped, the core
// asks to shut down or MaxFrames is reached. Only a failing frame is
// returned as an error.
func (l *Loop) Run(ctx context.Context) error {
	defer l.control.Stop()

	frameTime := time.Second / 60
	if av, err := l.emu.AVInfo(); err == nil && av.FPS > 0 {
		frameTime = time.Duration(float64(time.Second) / av.FPS)
	}
	lastFrameTime := time.Now()

	var frames uint64
	for {
		if ctx.Err() != nil || !l.control.CheckPause() {
			return nil
		}
		l.drain()

		mult := l.turbo.Read()
		if ff := mult > 1; ff != l.fastForward {
			l.fastForward = ff
			l.emu.SetFastForward(ff)
		}
		for i := 0; i < mult; i++ {
			if err := l.emu.RunFrame(); err != nil {
				return err
			}
			frames++
			if l.OnFrame != nil {
				l.OnFrame(frames)
			}
			if l.MaxFrames > 0 && frames >= l.MaxFrames {
				return nil
			}
		}
		if l.emu.ShutdownRequested() {
			l.log.Info().Uint64("frames", frames).Msg("core requested shutdown")
			return nil
		}

		if !l.Throttle {
			continue
		}
		sleepTime := frameTime - time.Since(lastFrameTime)
		if l.AudioFill != nil {
			fill := l.AudioFill()
			if fill < adtMinFill {
				sleepTime = time.Duration(float64(sleepTime) * 0.9)
			} else if fill > adtMaxFill {
				sleepTime = time.Duration(float64(sleepTime) * 1.1)
			}
		}
		if sleepTime > time.Millisecond {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(sleepTime):
			}
		}
		lastFrameTime = time.Now()
	}
}

func (l *Loop) drain() {
	for {
		select {
		case cmd := <-l.commands:
			if err := cmd(l.emu); err != nil {
				l.log.Warn().Err(err).Msg("command failed")
			}
		default:
			return
		}
	}
}
