package internal

import "github.com/rs/zerolog"

// DefaultMaxReevaluations bounds how many times in a row an expression may
// invalidate itself from inside its own evaluation.
const DefaultMaxReevaluations = 100

// Hooks receive runtime instrumentation events. Any of them may be nil.
type Hooks struct {
	OnSettle func(Pass)
	OnStorm  func(Pass)
	OnPanic  func()
}

// Runtime is the state shared by every reactive node of one logical
// execution context: the read monitor registry and the fire stack.
// It does no locking; all of its users must run on the same goroutine.
type Runtime struct {
	monitors Monitors
	stack    FireStack
	hooks    Hooks

	// owner that collects the nodes created right now, if any
	owner *Owner

	log zerolog.Logger

	// goroutine that created the runtime, used by the affinity check
	gid           int64
	checkAffinity bool

	maxReevaluations int
}

func NewRuntime() *Runtime {
	r := &Runtime{
		log:              zerolog.Nop(),
		gid:              goroutineID(),
		maxReevaluations: DefaultMaxReevaluations,
	}
	r.stack.onStorm = r.storm
	r.stack.onSettle = r.settle

	return r
}

func (r *Runtime) Logger() *zerolog.Logger { return &r.log }

func (r *Runtime) SetLogger(l zerolog.Logger) { r.log = l }

func (r *Runtime) SetHooks(h Hooks) { r.hooks = h }

func (r *Runtime) SetStormLimits(depth, count int) { r.stack.Limit(depth, count) }

func (r *Runtime) SetCheckAffinity(on bool) { r.checkAffinity = on }

func (r *Runtime) SetMaxReevaluations(n int) {
	if n <= 0 {
		n = DefaultMaxReevaluations
	}
	r.maxReevaluations = n
}

func (r *Runtime) MaxReevaluations() int { return r.maxReevaluations }

func (r *Runtime) Stack() *FireStack { return &r.stack }

func (r *Runtime) Monitors() *Monitors { return &r.monitors }

func (r *Runtime) Owner() *Owner { return r.owner }

// RunWithOwner runs fn with o as the current owner.
func (r *Runtime) RunWithOwner(o *Owner, fn func()) {
	prev := r.owner
	r.owner = o
	defer func() { r.owner = prev }()

	fn()
}

// Fire runs a notification dispatch inside the fire stack.
func (r *Runtime) Fire(fn func()) {
	r.verifyGoroutine()
	r.stack.Enter(fn)
}

// PublishRead delivers a read to every active monitor.
func (r *Runtime) PublishRead(source any, property string, value any) {
	if !r.monitors.Active() {
		return
	}

	read := Read{Source: source, Property: property, Value: value}
	for monitor := range r.monitors.All() {
		r.Call(property, func() { monitor(read) })
	}
}

// Call runs a listener, recovering and logging any panic so that dispatch
// can continue with the remaining listeners.
func (r *Runtime) Call(property string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error().
				Str("property", property).
				Interface("panic", p).
				Msg("reactive listener panicked")

			if r.hooks.OnPanic != nil {
				r.hooks.OnPanic()
			}
		}
	}()

	fn()
}

func (r *Runtime) verifyGoroutine() {
	if !r.checkAffinity {
		return
	}

	if gid := goroutineID(); gid != r.gid {
		r.log.Error().
			Int64("owner_goroutine", r.gid).
			Int64("goroutine", gid).
			Msg("reactive state mutated from a foreign goroutine")
	}
}

func (r *Runtime) storm(p Pass) {
	r.log.Warn().
		Int("depth", p.MaxDepth).
		Int("count", p.Count).
		Msg("reactive notification storm")

	if r.hooks.OnStorm != nil {
		r.hooks.OnStorm(p)
	}
}

func (r *Runtime) settle(p Pass) {
	if r.hooks.OnSettle != nil {
		r.hooks.OnSettle(p)
	}
}
