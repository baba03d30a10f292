package renderer

// Unwind collects cleanup funcs for a multi-step allocation. Call Unwind on the
// failure path to release everything acquired so far in reverse order, or
// Discard once ownership has moved elsewhere.
type Unwind []func()

func (u *Unwind) Add(cleanup func()) {
	*u = append(*u, cleanup)
}

func (u *Unwind) Unwind() {
	for i := len(*u) - 1; i >= 0; i-- {
		(*u)[i]()
	}
	*u = (*u)[:0]
}

func (u *Unwind) Discard() {
	*u = (*u)[:0]
}
