package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DebounceMsg is delivered when a debounce interval elapses. Only the message
// carrying the latest sequence number should be acted on.
type DebounceMsg struct {
	Key string
	Seq int
}

// Debouncer coalesces rapid events (keystrokes, resizes) into a single
// delayed tea.Msg. It is a value owned by the model, so it needs no locking.
type Debouncer struct {
	key      string
	duration time.Duration
	seq      int
}

// NewDebouncer creates a debouncer whose messages carry key.
func NewDebouncer(key string, duration time.Duration) Debouncer {
	return Debouncer{key: key, duration: duration}
}

// Trigger supersedes any pending message and schedules a new one. With a
// zero duration the message is delivered immediately.
func (d *Debouncer) Trigger() tea.Cmd {
	d.seq++
	msg := DebounceMsg{Key: d.key, Seq: d.seq}
	if d.duration <= 0 {
		return func() tea.Msg { return msg }
	}
	return tea.Tick(d.duration, func(time.Time) tea.Msg { return msg })
}

// Cancel invalidates any pending message.
func (d *Debouncer) Cancel() {
	d.seq++
}

// Ready reports whether msg is the latest message for this debouncer.
func (d Debouncer) Ready(msg DebounceMsg) bool {
	return msg.Key == d.key && msg.Seq == d.seq
}

// Duration returns the configured interval.
func (d Debouncer) Duration() time.Duration {
	return d.duration
}

// DefaultSearchDebounce is the recommended delay for filter-as-you-type.
const DefaultSearchDebounce = 150 * time.Millisecond
