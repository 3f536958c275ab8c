package vkdriver

// table maps render handles to API objects of one kind. All tables of a
// device share one id sequence so handles never collide across kinds.
type table[T comparable] struct {
	ids  *uint64
	objs map[uint64]T
}

func newTable[T comparable](ids *uint64) table[T] {
	return table[T]{ids: ids, objs: make(map[uint64]T)}
}

func (t table[T]) put(obj T) uint64 {
	*t.ids++
	t.objs[*t.ids] = obj
	return *t.ids
}

// get returns the zero value for unknown handles, which the API treats
// as the null handle.
func (t table[T]) get(h uint64) T {
	return t.objs[h]
}

func (t table[T]) take(h uint64) (T, bool) {
	obj, ok := t.objs[h]
	delete(t.objs, h)
	return obj, ok
}

func (t table[T]) len() int {
	return len(t.objs)
}
