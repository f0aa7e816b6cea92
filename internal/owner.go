package internal

import (
	"iter"
)

// Owner is a node of a disposal tree.
// Disposing an owner disposes its children first, newest first, then runs its
// own cleanups in registration order.
type Owner struct {
	// cleanup functions to be called when the owner is disposed
	cleanups []func()
	disposed bool

	parent       *Owner
	prevSibling  *Owner
	nextSibling  *Owner
	childrenHead *Owner
}

// NewOwner creates an owner, attached to parent when parent is not nil.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{}
	if parent != nil {
		parent.AddChild(o)
	}
	return o
}

func (parent *Owner) AddChild(child *Owner) {
	child.parent = parent
	child.prevSibling = nil
	child.nextSibling = parent.childrenHead

	if parent.childrenHead != nil {
		parent.childrenHead.prevSibling = child
	}

	parent.childrenHead = child
}

func (o *Owner) Children() iter.Seq[*Owner] {
	return func(yield func(*Owner) bool) {
		child := o.childrenHead

		for child != nil {
			// the child may detach itself while being yielded
			next := child.nextSibling
			if !yield(child) {
				return
			}

			child = next
		}
	}
}

func (o *Owner) Disposed() bool { return o.disposed }

// OnCleanup registers fn to run when the owner is disposed. On an owner that
// is already disposed fn runs immediately.
func (o *Owner) OnCleanup(fn func()) {
	if o.disposed {
		fn()
		return
	}
	o.cleanups = append(o.cleanups, fn)
}

func (o *Owner) Dispose() {
	if o.disposed {
		return
	}
	o.disposed = true

	for child := range o.Children() {
		child.Dispose()
	}
	o.childrenHead = nil

	cleanups := o.cleanups
	o.cleanups = nil
	for _, fn := range cleanups {
		fn()
	}

	o.detach()
}

func (o *Owner) detach() {
	if o.parent == nil {
		return
	}

	if o.prevSibling != nil {
		o.prevSibling.nextSibling = o.nextSibling
	} else if o.parent.childrenHead == o {
		o.parent.childrenHead = o.nextSibling
	}
	if o.nextSibling != nil {
		o.nextSibling.prevSibling = o.prevSibling
	}

	o.parent, o.prevSibling, o.nextSibling = nil, nil, nil
}
