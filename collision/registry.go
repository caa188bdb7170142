package collision

import (
	"github.com/kamstrup/intmap"
)

// Member is a collidable with a stable integer identity.
type Member[K intmap.IntKey] interface {
	Candidate
	ID() K
}

// Registry is the ordered set of live collidables. Lookups go through an
// intmap index; Candidates preserves insertion order so checks are
// deterministic.
type Registry[K intmap.IntKey, T Member[K]] struct {
	index *intmap.Map[K, T]
	order []K
}

func NewRegistry[K intmap.IntKey, T Member[K]]() *Registry[K, T] {
	return &Registry[K, T]{
		index: intmap.New[K, T](64),
	}
}

// Add registers v; re-adding a present id is a no-op.
func (r *Registry[K, T]) Add(v T) {
	id := v.ID()
	if r.index.Has(id) {
		return
	}
	r.index.Put(id, v)
	r.order = append(r.order, id)
}

// Remove unregisters id and reports whether it was present.
func (r *Registry[K, T]) Remove(id K) bool {
	if !r.index.Del(id) {
		return false
	}
	for i, k := range r.order {
		if k == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *Registry[K, T]) Get(id K) (T, bool) {
	return r.index.Get(id)
}

func (r *Registry[K, T]) Has(id K) bool {
	return r.index.Has(id)
}

func (r *Registry[K, T]) Len() int {
	return len(r.order)
}

// Candidates returns the members in insertion order. The slice is a copy.
func (r *Registry[K, T]) Candidates() []T {
	out := make([]T, 0, len(r.order))
	for _, id := range r.order {
		if v, ok := r.index.Get(id); ok {
			out = append(out, v)
		}
	}
	return out
}

// Filter returns the members for which keep is true, in insertion order.
func (r *Registry[K, T]) Filter(keep func(T) bool) []T {
	out := make([]T, 0, len(r.order))
	for _, id := range r.order {
		if v, ok := r.index.Get(id); ok && keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Clear removes every member.
func (r *Registry[K, T]) Clear() {
	r.index.Clear()
	r.order = nil
}
