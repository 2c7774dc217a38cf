// Package renderer drives the per-frame protocol on top of a swapchain:
// acquire an image, hand out a command buffer to record into, submit and
// present, and rebuild the swapchain whenever the surface changes.
package renderer

import (
	"log"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/svke/gpu"
	"github.com/vkngwrapper/svke/swapchain"
)

var (
	ErrFrameInProgress       = errors.New("cannot begin a frame while one is in progress")
	ErrNoFrameInProgress     = errors.New("no frame in progress")
	ErrCommandBufferMismatch = errors.New("command buffer belongs to a different frame")
	// ErrWindowClosed is returned when the window is closed while the
	// renderer waits for it to be restored.
	ErrWindowClosed = errors.New("window closed while minimized")
	// ErrFormatChanged is returned when a recreated swapchain renders into
	// different color or depth formats than its predecessor.
	ErrFormatChanged = errors.New("swapchain image or depth format has changed")
)

// ClearColor is the color every frame's render pass starts from.
var ClearColor = [4]float32{0.1, 0.1, 0.1, 1}

// Window is what the renderer needs from the window system.
type Window interface {
	// Extent is the drawable size in pixels. Zero in either dimension means
	// the window is minimized.
	Extent() gpu.Extent2D
	WasResized() bool
	ResetResized()
	// WaitEvents blocks until the window system delivers at least one event.
	WaitEvents()
	ShouldClose() bool
}

type Device interface {
	swapchain.Device

	AllocateCommandBuffers(count int) ([]gpu.CommandBuffer, error)
	FreeCommandBuffers(buffers ...gpu.CommandBuffer)
	BeginCommandBuffer(buffer gpu.CommandBuffer) error
	EndCommandBuffer(buffer gpu.CommandBuffer) error
	CmdBeginRenderPass(buffer gpu.CommandBuffer, info gpu.RenderPassBeginInfo) error
	CmdEndRenderPass(buffer gpu.CommandBuffer)
	CmdSetViewport(buffer gpu.CommandBuffer, viewport gpu.Viewport)
	CmdSetScissor(buffer gpu.CommandBuffer, scissor gpu.Rect2D)
	DeviceWaitIdle() error
}

type Option func(*Renderer)

func WithVerbose(verbose bool) Option {
	return func(r *Renderer) {
		r.verbose = verbose
	}
}

// WithRecreateListener registers a callback run after every successful
// swapchain build, including the first.
func WithRecreateListener(listener func(*swapchain.Swapchain)) Option {
	return func(r *Renderer) {
		r.listeners = append(r.listeners, listener)
	}
}

// Renderer is either idle or has a frame in progress. BeginFrame moves it to
// in progress, EndFrame moves it back.
type Renderer struct {
	window  Window
	device  Device
	verbose bool

	swapchain      *swapchain.Swapchain
	commandBuffers []gpu.CommandBuffer
	listeners      []func(*swapchain.Swapchain)
	recreations    int

	currentImageIndex int
	frameStarted      bool
}

func New(window Window, device Device, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		window: window,
		device: device,
	}
	for _, opt := range opts {
		opt(r)
	}

	err := r.RecreateSwapchain()
	if err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}

// RecreateSwapchain rebuilds the swapchain at the window's current extent.
// While the window is minimized it blocks on window events. Command buffers
// are only reallocated when the image count changes. A format change is
// reported only after the renderer is consistent with the new chain.
func (r *Renderer) RecreateSwapchain() error {
	extent := r.window.Extent()
	for extent.Zero() {
		if r.window.ShouldClose() {
			return ErrWindowClosed
		}
		r.window.WaitEvents()
		extent = r.window.Extent()
	}

	start := hrtime.Now()

	err := r.device.DeviceWaitIdle()
	if err != nil {
		return errors.Wrap(err, "failed to wait for device idle")
	}

	var opts []swapchain.Option
	if r.verbose {
		opts = append(opts, swapchain.WithVerbose(true))
	}

	old := r.swapchain
	sc, err := swapchain.New(r.device, extent, old, opts...)
	if err != nil {
		return errors.Wrap(err, "failed to create swapchain")
	}
	r.swapchain = sc

	var formatErr error
	if old != nil {
		if !old.CompareFormats(sc) {
			formatErr = errors.Wrapf(ErrFormatChanged, "color %s -> %s, depth %s -> %s",
				old.ImageFormat(), sc.ImageFormat(), old.DepthFormat(), sc.DepthFormat())
		}
		old.Destroy()
	}

	if len(r.commandBuffers) != sc.ImageCount() {
		r.freeCommandBuffers()

		r.commandBuffers, err = r.device.AllocateCommandBuffers(sc.ImageCount())
		if err != nil {
			return errors.CombineErrors(errors.Wrap(err, "failed to allocate command buffers"), formatErr)
		}
	}

	r.recreations++
	if r.verbose {
		log.Printf("renderer: swapchain %dx%d with %d images built in %s", sc.Width(), sc.Height(), sc.ImageCount(), hrtime.Since(start))
	}

	for _, listener := range r.listeners {
		listener(sc)
	}

	return formatErr
}

func (r *Renderer) freeCommandBuffers() {
	if len(r.commandBuffers) > 0 {
		r.device.FreeCommandBuffers(r.commandBuffers...)
	}
	r.commandBuffers = nil
}

// Close waits for the device to go idle and releases the command buffers
// and the swapchain.
func (r *Renderer) Close() error {
	err := r.device.DeviceWaitIdle()

	r.freeCommandBuffers()
	if r.swapchain != nil {
		r.swapchain.Destroy()
		r.swapchain = nil
	}

	return errors.Wrap(err, "failed to wait for device idle")
}

func (r *Renderer) Swapchain() *swapchain.Swapchain {
	return r.swapchain
}

func (r *Renderer) SwapchainRenderPass() gpu.RenderPass {
	return r.swapchain.RenderPass()
}

func (r *Renderer) AspectRatio() float32 {
	return r.swapchain.AspectRatio()
}

func (r *Renderer) Extent() gpu.Extent2D {
	return r.swapchain.Extent()
}

func (r *Renderer) ImageCount() int {
	return r.swapchain.ImageCount()
}

// Recreations counts how many swapchains the renderer has built.
func (r *Renderer) Recreations() int {
	return r.recreations
}

func (r *Renderer) CommandBufferCount() int {
	return len(r.commandBuffers)
}

func (r *Renderer) IsFrameInProgress() bool {
	return r.frameStarted
}

func (r *Renderer) CurrentCommandBuffer() (gpu.CommandBuffer, error) {
	if !r.frameStarted {
		return 0, errors.WithAssertionFailure(ErrNoFrameInProgress)
	}
	return r.commandBuffers[r.currentImageIndex], nil
}

// CurrentFrameIndex is the frame-ring slot of the next or in-progress frame.
func (r *Renderer) CurrentFrameIndex() int {
	return r.swapchain.CurrentFrame()
}
