package reactive

import (
	"github.com/rs/zerolog"

	"github.com/xariahdailstone/xarchat-reactive/internal"
	"github.com/xariahdailstone/xarchat-reactive/internal/config"
)

// Config holds the tunables of a Context, see LoadConfig.
type Config = config.Config

// LoadConfig reads a Config from a .yaml, .yml, .json or .toml file.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// Context is the evaluation context shared by a group of reactive nodes:
// it owns the read monitor registry and the fire stack.
//
// A Context is not safe for concurrent use. Every read, write and
// registration against the nodes of one Context must happen on the same
// goroutine.
type Context struct {
	rt *internal.Runtime
}

type Option func(*contextOptions)

type contextOptions struct {
	logger *zerolog.Logger
	cfg    Config
}

// WithLogger routes the context's diagnostics (recovered listener panics,
// notification storms, affinity violations) to l.
func WithLogger(l zerolog.Logger) Option {
	return func(o *contextOptions) { o.logger = &l }
}

// WithConfig applies cfg to the context.
func WithConfig(cfg Config) Option {
	return func(o *contextOptions) { o.cfg = cfg }
}

// NewContext creates an independent evaluation context.
func NewContext(opts ...Option) *Context {
	o := contextOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	rt := internal.NewRuntime()
	if o.logger != nil {
		logger := *o.logger
		if o.cfg.LogLevel != "" {
			if lvl, err := o.cfg.Level(); err == nil {
				logger = logger.Level(lvl)
			}
		}
		rt.SetLogger(logger)
	}
	rt.SetStormLimits(o.cfg.StormDepth, o.cfg.StormCount)
	rt.SetMaxReevaluations(o.cfg.MaxReevaluations)
	rt.SetCheckAffinity(o.cfg.CheckAffinity)

	return &Context{rt: rt}
}

// Default returns the context bound to the calling goroutine.
// Nodes created with a nil *Context use it.
func Default() *Context {
	return &Context{rt: internal.GetRuntime()}
}

// ReleaseDefault drops the calling goroutine's default context. Call it when
// a goroutine that used Default is about to exit.
func ReleaseDefault() {
	internal.ReleaseRuntime()
}

func resolve(rc *Context) *Context {
	if rc == nil {
		return Default()
	}
	return rc
}

// Logger returns the context's logger.
func (c *Context) Logger() *zerolog.Logger {
	return c.rt.Logger()
}

// Read is a single reactive property read, as seen by a read monitor.
type Read struct {
	Source   Observable
	Property string
	Value    any
}

// AddReadMonitor registers fn to be called synchronously for every reactive
// read published while it stays registered.
func (c *Context) AddReadMonitor(fn func(Read)) Disposable {
	return disposer(c.rt.Monitors().Add(func(r internal.Read) {
		source, ok := r.Source.(Observable)
		if !ok {
			return
		}

		fn(Read{Source: source, Property: r.Property, Value: r.Value})
	}))
}

// Tracking reports whether reads are currently being monitored.
func (c *Context) Tracking() bool {
	return c.rt.Monitors().Active()
}

// Untracked runs fn without publishing any of its reads.
func Untracked[T any](rc *Context, fn func() T) T {
	var result T
	resolve(rc).rt.Monitors().Untracked(func() { result = fn() })
	return result
}

// Fire runs fn as a notification dispatch inside the fire stack.
func (c *Context) Fire(fn func()) {
	c.rt.Fire(fn)
}

// FireStackStats is a snapshot of the fire stack counters.
type FireStackStats struct {
	Depth    int
	Count    int
	MaxDepth int
}

// FireStackStats returns the counters of the dispatch in progress. Outside
// of any dispatch they are all zero.
func (c *Context) FireStackStats() FireStackStats {
	s := c.rt.Stack()
	return FireStackStats{Depth: s.Depth(), Count: s.Count(), MaxDepth: s.MaxDepth()}
}

func (c *Context) call(property string, fn func()) {
	c.rt.Call(property, fn)
}
