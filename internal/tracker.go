package internal

import "iter"

// Read describes a single reactive property read.
type Read struct {
	Source   any
	Property string
	Value    any
}

// Monitors is the read monitor registry of a runtime.
// Each registered monitor sees every read published while it is registered,
// nested monitors included.
type Monitors struct {
	monitors Listeners[func(Read)]

	// each nested untracked section increases the depth by 1
	// reads are not published while depth > 0
	untracked int
}

func (m *Monitors) Add(fn func(Read)) (remove func()) {
	return m.monitors.Add(fn)
}

// Active reports whether a published read would reach at least one monitor.
func (m *Monitors) Active() bool {
	return m.untracked == 0 && m.monitors.Len() > 0
}

func (m *Monitors) Untracked(fn func()) {
	m.untracked++
	defer func() { m.untracked-- }()

	fn()
}

// All iterates over the registered monitors, yielding nothing while
// tracking is suspended.
func (m *Monitors) All() iter.Seq[func(Read)] {
	return func(yield func(func(Read)) bool) {
		if !m.Active() {
			return
		}

		for monitor := range m.monitors.All() {
			if !yield(monitor) {
				return
			}
		}
	}
}
