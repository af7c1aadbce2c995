package frontend

import (
	"context"
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/amzeratul/retrograde-sub000/logger"
)

const numSlots = 10

// Window is a minimal ebiten front end: it shows frames, reads keyboard
// and gamepads, drives rumble and maps a few hotkeys.
//
//	F1 save slot, F2 next slot, F3 load slot, F4 fast-forward,
//	F5 reset, R (held) rewind, Escape pause, F11 fullscreen,
//	F12 screenshot.
type Window struct {
	log *logger.Logger

	Framebuffer  *SharedFramebuffer
	Texture      *Texture
	SharedInput  *SharedInput
	Input        *Input
	Rumble       *Rumble
	Notification *Notification

	// Screenshots, when set, handles F12 with GameName as subdirectory.
	Screenshots *ScreenshotManager
	GameName    string

	renderer *FramebufferRenderer
	mapping  InputMapping

	loop      *Loop
	emuDone   chan struct{}
	emuErr    error
	slot      int
	rewinding bool
	paused    bool
}

// NewWindow creates the window's sinks. Pass them to the host before
// calling Run.
func NewWindow(log *logger.Logger) *Window {
	if log == nil {
		log = logger.Nop()
	}
	fb := &SharedFramebuffer{}
	si := &SharedInput{}
	return &Window{
		log:          log,
		Framebuffer:  fb,
		Texture:      NewTexture(fb, log),
		SharedInput:  si,
		Input:        NewInput(si),
		Rumble:       &Rumble{},
		Notification: NewNotification(log),
		renderer:     NewFramebufferRenderer(fb),
		mapping:      DefaultMapping(),
	}
}

// Run opens the window and runs loop on its own goroutine until the window
// is closed or the loop ends.
func (w *Window) Run(title string, loop *Loop) error {
	av, err := loop.emu.AVInfo()
	if err != nil {
		return err
	}
	width, height := int(av.BaseWidth), int(av.BaseHeight)
	if av.Rotation%2 == 1 {
		width, height = height, width
	}
	if width == 0 || height == 0 {
		width, height = 320, 240
	}

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)
	ebiten.SetWindowSize(width*3, height*3)
	ebiten.SetWindowSizeLimits(width, height, -1, -1)

	w.loop = loop
	w.emuDone = make(chan struct{})
	go func() {
		defer close(w.emuDone)
		w.emuErr = loop.Run(context.Background())
	}()

	err = ebiten.RunGame(w)
	loop.Control().Stop()
	<-w.emuDone
	w.Rumble.Stop()

	if errors.Is(err, ebiten.Termination) {
		err = nil
	}
	return errors.Join(err, w.emuErr)
}

// Update implements ebiten.Game.
func (w *Window) Update() error {
	select {
	case <-w.emuDone:
		return ebiten.Termination
	default:
	}

	w.pollInput()
	w.hotkeys()
	return nil
}

// Draw implements ebiten.Game.
func (w *Window) Draw(screen *ebiten.Image) {
	w.renderer.Draw(screen)
	w.Notification.Draw(screen)
}

// Layout implements ebiten.Game.
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := 1.0
	if m := ebiten.Monitor(); m != nil {
		s = m.DeviceScaleFactor()
	}
	return int(float64(outsideWidth) * s), int(float64(outsideHeight) * s)
}

// pollInput reads keyboard and gamepad input into the shared state.
// Port 0 is the keyboard plus the first gamepad, port 1 the second gamepad.
func (w *Window) pollInput() {
	gamepads := ebiten.AppendGamepadIDs(nil)

	p1 := PortState{Buttons: PollKeyboard(w.mapping)}
	if len(gamepads) > 0 {
		pad := PollGamepad(w.mapping, gamepads[0])
		p1.Buttons |= pad.Buttons
		p1.Axes = pad.Axes
	}
	w.SharedInput.Set(0, p1)

	if len(gamepads) > 1 {
		w.SharedInput.Set(1, PollGamepad(w.mapping, gamepads[1]))
	} else {
		w.SharedInput.Set(1, PortState{})
	}

	w.Rumble.Apply(gamepads)
}

func (w *Window) hotkeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) && w.Screenshots != nil {
		if path, err := w.Screenshots.TakeScreenshot(w.GameName); err != nil {
			w.log.Warn().Err(err).Msg("screenshot failed")
		} else {
			w.log.Info().Str("path", path).Msg("screenshot saved")
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		w.togglePause()
	}
	if w.paused {
		return
	}

	slot := w.slot
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyF1):
		w.loop.Post(func(e Emulator) error { return e.SaveSlot(slot) })
	case inpututil.IsKeyJustPressed(ebiten.KeyF2):
		w.slot = (w.slot + 1) % numSlots
		w.Notification.Notify(fmt.Sprintf("Slot %d", w.slot), 0, 0)
	case inpututil.IsKeyJustPressed(ebiten.KeyF3):
		w.loop.Post(func(e Emulator) error { return e.LoadSlot(slot) })
	case inpututil.IsKeyJustPressed(ebiten.KeyF4):
		m := w.loop.Turbo().CycleMultiplier()
		if m == 1 {
			w.Notification.Notify("Fast-forward off", 0, 0)
		} else {
			w.Notification.Notify(fmt.Sprintf("Fast-forward %dx", m), 0, 0)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyF5):
		w.loop.Post(func(e Emulator) error { return e.Reset() })
	}

	rewind := ebiten.IsKeyPressed(ebiten.KeyR)
	if rewind != w.rewinding {
		w.rewinding = rewind
		w.loop.Post(func(e Emulator) error {
			if e.RewindEnabled() {
				e.SetRewinding(rewind)
			}
			return nil
		})
	}
}

func (w *Window) togglePause() {
	if w.paused {
		w.loop.Control().RequestResume()
		w.paused = false
		w.Notification.Notify("Resumed", 0, 0)
		return
	}
	w.loop.Control().RequestPause()
	w.paused = true
	w.Notification.Notify("Paused", 0, 0)
}
