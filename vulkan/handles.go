package vulkan

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/svke/gpu"
)

// handleSpace hands out handles that are unique across every table of one
// device, so a handle of the wrong kind never resolves by accident.
type handleSpace struct {
	mu   sync.Mutex
	next gpu.Handle
}

type table[T any] struct {
	space   *handleSpace
	kind    string
	objects map[gpu.Handle]T
}

func newTable[T any](space *handleSpace, kind string) *table[T] {
	return &table[T]{
		space:   space,
		kind:    kind,
		objects: make(map[gpu.Handle]T),
	}
}

func (t *table[T]) put(object T) gpu.Handle {
	t.space.mu.Lock()
	defer t.space.mu.Unlock()

	t.space.next++
	t.objects[t.space.next] = object
	return t.space.next
}

func (t *table[T]) get(handle gpu.Handle) (T, error) {
	t.space.mu.Lock()
	defer t.space.mu.Unlock()

	object, ok := t.objects[handle]
	if !ok {
		var zero T
		return zero, errors.AssertionFailedf("unknown %s handle %d", t.kind, handle)
	}
	return object, nil
}

func (t *table[T]) getAll(handles []gpu.Handle) ([]T, error) {
	objects := make([]T, 0, len(handles))
	for _, handle := range handles {
		object, err := t.get(handle)
		if err != nil {
			return nil, err
		}
		objects = append(objects, object)
	}
	return objects, nil
}

func (t *table[T]) take(handle gpu.Handle) (T, bool) {
	t.space.mu.Lock()
	defer t.space.mu.Unlock()

	object, ok := t.objects[handle]
	if ok {
		delete(t.objects, handle)
	}
	return object, ok
}

func (t *table[T]) len() int {
	t.space.mu.Lock()
	defer t.space.mu.Unlock()
	return len(t.objects)
}

func handlesOf[H ~uint64](in []H) []gpu.Handle {
	out := make([]gpu.Handle, len(in))
	for i, h := range in {
		out[i] = gpu.Handle(h)
	}
	return out
}
