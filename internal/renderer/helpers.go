package renderer

// Unwind is a stack of cleanups run in reverse order, used to release the
// resources of a partially built scene.
type Unwind []func()

func (u *Unwind) Add(cleanup func()) {
	*u = append(*u, cleanup)
}

// Release adds r's Release to the stack when r is not nil.
func (u *Unwind) Release(r Releaser) {
	if r != nil {
		u.Add(r.Release)
	}
}

func (u *Unwind) Unwind() {
	for i := len(*u) - 1; i >= 0; i-- {
		(*u)[i]()
	}
	*u = (*u)[:0]
}

// Discard forgets every cleanup, for when setup succeeded and ownership moved on.
func (u *Unwind) Discard() {
	*u = (*u)[:0]
}
