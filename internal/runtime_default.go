//go:build !wasm

package internal

import (
	"sync"

	"github.com/petermattis/goid"
)

var runtimes sync.Map

func goroutineID() int64 {
	return goid.Get()
}

// GetRuntime returns the runtime bound to the calling goroutine, creating it
// on first use.
func GetRuntime() *Runtime {
	gid := goid.Get()

	if r, ok := runtimes.Load(gid); ok {
		return r.(*Runtime)
	}

	r := NewRuntime()
	runtimes.Store(gid, r)
	return r
}

// ReleaseRuntime forgets the calling goroutine's runtime.
func ReleaseRuntime() {
	runtimes.Delete(goid.Get())
}
