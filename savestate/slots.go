package savestate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/amzeratul/retrograde-sub000/api"
	"github.com/amzeratul/retrograde-sub000/config"
)

// NumSlots is the number of numbered save slots per game.
const NumSlots = 10

// ErrNoGame is returned by slot operations before SetGame.
var ErrNoGame = errors.New("no game set")

// ErrEmptySlot is returned when loading a slot that was never saved.
var ErrEmptySlot = errors.New("empty save slot")

// Slots stores containers in numbered slot files and a resume file under
// a per-game directory.
type Slots struct {
	fs          afero.Fs
	dir         string
	game        string
	currentSlot int
	notifier    api.Notifier
}

// NewSlots creates a slot manager rooted at dir. notifier may be nil.
func NewSlots(fs afero.Fs, dir string, notifier api.Notifier) *Slots {
	return &Slots{fs: fs, dir: dir, notifier: notifier}
}

// SetGame selects the game whose slots are used and resets to slot 0.
func (m *Slots) SetGame(name string) {
	m.game = name
	m.currentSlot = 0
}

// Game returns the current game name.
func (m *Slots) Game() string { return m.game }

// CurrentSlot returns the selected slot.
func (m *Slots) CurrentSlot() int { return m.currentSlot }

// SetSlot selects a slot, wrapping out of range values.
func (m *Slots) SetSlot(n int) {
	m.currentSlot = ((n % NumSlots) + NumSlots) % NumSlots
}

// NextSlot cycles to the next save slot
func (m *Slots) NextSlot() {
	m.SetSlot(m.currentSlot + 1)
	m.notify(fmt.Sprintf("Slot %d", m.currentSlot))
}

// PreviousSlot cycles to the previous save slot
func (m *Slots) PreviousSlot() {
	m.SetSlot(m.currentSlot - 1)
	m.notify(fmt.Sprintf("Slot %d", m.currentSlot))
}

func (m *Slots) notify(msg string) {
	if m.notifier != nil {
		m.notifier.Notify(msg, 2*time.Second, 0)
	}
}

func (m *Slots) gameDir() (string, error) {
	if m.game == "" {
		return "", ErrNoGame
	}
	return filepath.Join(m.dir, m.game), nil
}

// SlotPath returns the file backing slot n.
func (m *Slots) SlotPath(n int) (string, error) {
	dir, err := m.gameDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fmt.Sprintf("state-%d.state", n)), nil
}

// ResumePath returns the file backing the resume state.
func (m *Slots) ResumePath() (string, error) {
	dir, err := m.gameDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "resume.state"), nil
}

// Save writes c to the current slot.
func (m *Slots) Save(c *Container) error {
	path, err := m.SlotPath(m.currentSlot)
	if err != nil {
		return err
	}
	if err := m.write(path, c); err != nil {
		return err
	}
	m.notify(fmt.Sprintf("State saved to slot %d", m.currentSlot))
	return nil
}

// Load reads the current slot.
func (m *Slots) Load() (*Container, error) {
	path, err := m.SlotPath(m.currentSlot)
	if err != nil {
		return nil, err
	}
	c, err := m.read(path)
	if errors.Is(err, os.ErrNotExist) {
		m.notify(fmt.Sprintf("No save in slot %d", m.currentSlot))
		return nil, fmt.Errorf("%w: %d", ErrEmptySlot, m.currentSlot)
	}
	if err != nil {
		return nil, err
	}
	m.notify("State loaded")
	return c, nil
}

// SaveResume writes the resume state.
func (m *Slots) SaveResume(c *Container) error {
	path, err := m.ResumePath()
	if err != nil {
		return err
	}
	return m.write(path, c)
}

// LoadResume reads the resume state.
func (m *Slots) LoadResume() (*Container, error) {
	path, err := m.ResumePath()
	if err != nil {
		return nil, err
	}
	return m.read(path)
}

// HasResume reports whether a resume state exists.
func (m *Slots) HasResume() bool {
	path, err := m.ResumePath()
	if err != nil {
		return false
	}
	ok, _ := afero.Exists(m.fs, path)
	return ok
}

// Used reports which slots hold a state.
func (m *Slots) Used() []bool {
	used := make([]bool, NumSlots)
	for i := range used {
		if path, err := m.SlotPath(i); err == nil {
			used[i], _ = afero.Exists(m.fs, path)
		}
	}
	return used
}

func (m *Slots) write(path string, c *Container) error {
	data, err := Encode(c)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := config.AtomicWriteFile(m.fs, path, data); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

func (m *Slots) read(path string) (*Container, error) {
	data, err := afero.ReadFile(m.fs, path)
	if err != nil {
		return nil, err
	}
	c, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return c, nil
}
