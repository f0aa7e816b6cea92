package reactive

import "github.com/xariahdailstone/xarchat-reactive/internal"

// Scope releases a group of disposables together. Expressions and awaitables
// created inside Run are added to the scope automatically, and scopes created
// inside Run become children of it.
//
// Dispose releases the child scopes first, newest first, then everything
// added to the scope itself in the order it was added.
type Scope struct {
	rc    *Context
	owner *internal.Owner
}

// NewScope creates a scope. When called inside the Run of another scope of
// the same context, the new scope is its child.
func NewScope(rc *Context) *Scope {
	rc = resolve(rc)
	return &Scope{rc: rc, owner: internal.NewOwner(rc.rt.Owner())}
}

// Run calls fn with s as the current scope.
func (s *Scope) Run(fn func()) {
	s.rc.rt.RunWithOwner(s.owner, fn)
}

// Add ties d to the scope. Adding to a disposed scope disposes d right away.
func (s *Scope) Add(d Disposable) {
	s.owner.OnCleanup(d.Dispose)
}

// OnCleanup registers fn to run when the scope is disposed.
func (s *Scope) OnCleanup(fn func()) {
	s.owner.OnCleanup(fn)
}

func (s *Scope) Disposed() bool {
	return s.owner.Disposed()
}

func (s *Scope) Dispose() {
	s.owner.Dispose()
}

// own adds d to the current scope, if there is one.
func (c *Context) own(d Disposable) {
	if o := c.rt.Owner(); o != nil {
		o.OnCleanup(d.Dispose)
	}
}
