// Package notify shows transient messages for panel outcomes. Toasts are
// kept in a bounded ring and mirrored to a logger.
package notify

import (
	"io"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	apperrors "rpgpanel/internal/errors"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// DefaultCapacity bounds how many recent toasts are kept.
const DefaultCapacity = 50

type Toast struct {
	ID      string
	Level   Level
	Panel   string
	Message string
	Code    apperrors.Code
	At      time.Time
}

type Notifier struct {
	logger *log.Logger
	max    int
	now    func() time.Time

	mu      sync.Mutex
	entropy *rand.Rand
	toasts  []Toast
	pending []Toast
}

// New returns a Notifier keeping at most max toasts. A nil logger discards
// log output.
func New(max int, logger *log.Logger) *Notifier {
	if max <= 0 {
		max = DefaultCapacity
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Notifier{
		logger:  logger,
		max:     max,
		now:     time.Now,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (n *Notifier) Info(panel, message string) Toast {
	return n.push(Toast{Level: LevelInfo, Panel: panel, Message: message})
}

func (n *Notifier) Success(panel, message string) Toast {
	return n.push(Toast{Level: LevelSuccess, Panel: panel, Message: message})
}

// Error turns err into a user-visible toast labelled by its error code.
func (n *Notifier) Error(panel string, err error) Toast {
	code := apperrors.CodeOf(err)
	message := ""
	if err != nil {
		message = code.Label() + ": " + err.Error()
	}
	return n.push(Toast{Level: LevelError, Panel: panel, Message: message, Code: code})
}

func (n *Notifier) push(t Toast) Toast {
	n.mu.Lock()
	t.At = n.now()
	t.ID = ulid.MustNew(ulid.Timestamp(t.At), n.entropy).String()
	n.toasts = append(n.toasts, t)
	if len(n.toasts) > n.max {
		n.toasts = n.toasts[len(n.toasts)-n.max:]
	}
	n.pending = append(n.pending, t)
	if len(n.pending) > n.max {
		n.pending = n.pending[len(n.pending)-n.max:]
	}
	n.mu.Unlock()

	n.logger.Printf("[%s] %s: %s", t.Level, t.Panel, t.Message)
	return t
}

// Recent returns up to the last max toasts, oldest first.
func (n *Notifier) Recent() []Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Toast, len(n.toasts))
	copy(out, n.toasts)
	return out
}

// Drain returns toasts not yet shown and marks them shown.
func (n *Notifier) Drain() []Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.pending
	n.pending = nil
	return out
}
