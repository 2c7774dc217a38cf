package gputest

import (
	"sync"

	"github.com/vkngwrapper/svke/gpu"
)

// Window is a scripted window. WaitEvents pops the next extent from Pending,
// simulating the user restoring a minimized window.
type Window struct {
	mu      sync.Mutex
	extent  gpu.Extent2D
	resized bool
	closed  bool
	pending []gpu.Extent2D
	waits   int
}

func NewWindow(extent gpu.Extent2D) *Window {
	return &Window{extent: extent}
}

func (w *Window) Extent() gpu.Extent2D {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.extent
}

// Resize changes the extent and raises the resized flag.
func (w *Window) Resize(extent gpu.Extent2D) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.extent = extent
	w.resized = true
}

// QueueExtents schedules extents for subsequent WaitEvents calls.
func (w *Window) QueueExtents(extents ...gpu.Extent2D) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, extents...)
}

func (w *Window) WasResized() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.resized
}

func (w *Window) ResetResized() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resized = false
}

func (w *Window) WaitEvents() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.waits++
	if len(w.pending) > 0 {
		w.extent = w.pending[0]
		w.pending = w.pending[1:]
	}
}

func (w *Window) PollEvents() {}

func (w *Window) ShouldClose() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *Window) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
}

// Waits counts calls to WaitEvents.
func (w *Window) Waits() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.waits
}
