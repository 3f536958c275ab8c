package render

// releaser is a stack of release functions. Owners push a release for each
// resource right after acquiring it, so early returns and shutdown unwind in
// reverse acquisition order.
type releaser struct {
	fns []func()
}

func (r *releaser) push(fn func()) {
	r.fns = append(r.fns, fn)
}

// release runs every pushed function, last first, and empties the stack.
func (r *releaser) release() {
	for i := len(r.fns) - 1; i >= 0; i-- {
		r.fns[i]()
	}
	r.fns = nil
}
