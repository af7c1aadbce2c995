package frontend

import (
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/amzeratul/retrograde-sub000/api"
	"github.com/amzeratul/retrograde-sub000/logger"
)

// DefaultNotifyDuration is used when a message asks for no duration.
const DefaultNotifyDuration = 3 * time.Second

var _ api.Notifier = (*Notification)(nil)

// Notification displays temporary messages on screen
type Notification struct {
	mu        sync.Mutex
	message   string
	level     int
	startTime time.Time
	duration  time.Duration
	log       *logger.Logger

	now func() time.Time
}

// NewNotification creates a new notification system. Messages are also
// logged when log is set.
func NewNotification(log *logger.Logger) *Notification {
	return &Notification{log: log, now: time.Now}
}

// Notify replaces the current message.
func (n *Notification) Notify(msg string, d time.Duration, level int) {
	if d <= 0 {
		d = DefaultNotifyDuration
	}
	n.mu.Lock()
	n.message = msg
	n.level = level
	n.startTime = n.now()
	n.duration = d
	n.mu.Unlock()
	if n.log != nil {
		n.log.Info().Int("level", level).Dur("duration", d).Msg(msg)
	}
}

// Current returns the message on screen, or "" when it expired.
func (n *Notification) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.message == "" || n.now().Sub(n.startTime) >= n.duration {
		return ""
	}
	return n.message
}

// Draw prints the current message in the bottom-left corner.
func (n *Notification) Draw(screen *ebiten.Image) {
	msg := n.Current()
	if msg == "" {
		return
	}
	ebitenutil.DebugPrintAt(screen, msg, 8, screen.Bounds().Dy()-24)
}
