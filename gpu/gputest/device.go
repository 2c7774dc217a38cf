// Package gputest provides an in-memory device and window for exercising the
// swapchain manager and frame orchestrator without a GPU.
package gputest

import (
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/svke/gpu"
)

// Device simulates a rendering device. Fences signal as soon as their
// submission is queued unless HoldSubmissions is set, in which case they stay
// pending until Signal or SignalAll is called, and WaitForFences blocks.
//
// Exported configuration fields must be set before the device is shared with
// another goroutine; everything else is safe for concurrent use.
type Device struct {
	Support  gpu.SurfaceSupport
	Families gpu.QueueFamilyIndices
	// Formats overrides per-format properties. Formats missing from a non-nil
	// map report no features; a nil map supports every format fully.
	Formats map[gpu.Format]gpu.FormatProperties
	// ImageCount forces how many images each swapchain hands out. Zero means
	// the requested minimum.
	ImageCount      int
	HoldSubmissions bool
	// Failures makes the named operation fail, e.g. "CreateFramebuffer".
	Failures map[string]error

	mu   sync.Mutex
	cond *sync.Cond

	next         gpu.Handle
	live         map[gpu.Handle]string
	borrowed     map[gpu.Image]gpu.Swapchain
	chainImages  map[gpu.Swapchain][]gpu.Image
	acquireNext  map[gpu.Swapchain]int
	signaled     map[gpu.Fence]bool
	acquireQueue []acquireResult
	presentQueue []gpu.Status
	blocked      int

	swapchainInfos   []gpu.SwapchainCreateInfo
	submits          []gpu.SubmitInfo
	submitFences     []gpu.Fence
	presents         []gpu.PresentInfo
	violations       []string
	commands         []string
	allocations      int
	waitIdles        int
	commandRecording map[gpu.CommandBuffer]bool
}

type acquireResult struct {
	index  int
	status gpu.Status
}

// NewDevice returns a device whose surface reports the given extent, offers
// B8G8R8A8 sRGB, supports FIFO and Mailbox presentation, and wants at least
// two images.
func NewDevice(extent gpu.Extent2D) *Device {
	d := &Device{
		Support: gpu.SurfaceSupport{
			Capabilities: gpu.SurfaceCapabilities{
				MinImageCount:    2,
				MaxImageCount:    8,
				CurrentExtent:    extent,
				MinImageExtent:   gpu.Extent2D{Width: 1, Height: 1},
				MaxImageExtent:   gpu.Extent2D{Width: 4096, Height: 4096},
				CurrentTransform: gpu.SurfaceTransformIdentity,
			},
			Formats: []gpu.SurfaceFormat{
				{Format: gpu.FormatB8G8R8A8SRGB, ColorSpace: gpu.ColorSpaceSRGBNonlinear},
			},
			PresentModes: []gpu.PresentMode{gpu.PresentModeFIFO, gpu.PresentModeMailbox},
		},
		live:             make(map[gpu.Handle]string),
		borrowed:         make(map[gpu.Image]gpu.Swapchain),
		chainImages:      make(map[gpu.Swapchain][]gpu.Image),
		acquireNext:      make(map[gpu.Swapchain]int),
		signaled:         make(map[gpu.Fence]bool),
		commandRecording: make(map[gpu.CommandBuffer]bool),
	}
	d.cond = sync.NewCond(&d.mu)
	return d
}

func (d *Device) fail(op string) error {
	if err, ok := d.Failures[op]; ok {
		return errors.Wrap(err, op)
	}
	return nil
}

func (d *Device) create(kind string) gpu.Handle {
	d.next++
	d.live[d.next] = kind
	return d.next
}

func (d *Device) destroy(kind string, handle gpu.Handle) {
	got, ok := d.live[handle]
	if !ok {
		d.violations = append(d.violations, fmt.Sprintf("destroy of unknown %s %d", kind, handle))
		return
	}
	if got != kind {
		d.violations = append(d.violations, fmt.Sprintf("destroy of %s %d as %s", got, handle, kind))
		return
	}
	delete(d.live, handle)
}

// ScriptAcquire queues results for upcoming AcquireNextImage calls. An index
// of -1 keeps the default round-robin image choice.
func (d *Device) ScriptAcquire(index int, status gpu.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.acquireQueue = append(d.acquireQueue, acquireResult{index: index, status: status})
}

// ScriptPresent queues statuses for upcoming QueuePresent calls.
func (d *Device) ScriptPresent(statuses ...gpu.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.presentQueue = append(d.presentQueue, statuses...)
}

// SetSurfaceExtent changes the extent the surface reports.
func (d *Device) SetSurfaceExtent(extent gpu.Extent2D) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Support.Capabilities.CurrentExtent = extent
}

func (d *Device) FormatProperties(format gpu.Format) gpu.FormatProperties {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Formats == nil {
		all := gpu.FormatFeatureSampledImage | gpu.FormatFeatureColorAttachment | gpu.FormatFeatureDepthStencilAttachment
		return gpu.FormatProperties{LinearTilingFeatures: all, OptimalTilingFeatures: all}
	}
	return d.Formats[format]
}

func (d *Device) SurfaceSupport() (gpu.SurfaceSupport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("SurfaceSupport"); err != nil {
		return gpu.SurfaceSupport{}, err
	}
	support := d.Support
	support.Formats = append([]gpu.SurfaceFormat(nil), d.Support.Formats...)
	support.PresentModes = append([]gpu.PresentMode(nil), d.Support.PresentModes...)
	return support, nil
}

func (d *Device) QueueFamilies() gpu.QueueFamilyIndices {
	return d.Families
}

func (d *Device) CreateSwapchain(info gpu.SwapchainCreateInfo) (gpu.Swapchain, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateSwapchain"); err != nil {
		return 0, err
	}

	swapchain := gpu.Swapchain(d.create("swapchain"))
	count := info.MinImageCount
	if d.ImageCount > 0 {
		count = d.ImageCount
	}
	images := make([]gpu.Image, count)
	for i := range images {
		d.next++
		images[i] = gpu.Image(d.next)
		d.borrowed[images[i]] = swapchain
	}
	d.chainImages[swapchain] = images
	d.swapchainInfos = append(d.swapchainInfos, info)
	return swapchain, nil
}

func (d *Device) SwapchainImages(swapchain gpu.Swapchain) ([]gpu.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	images, ok := d.chainImages[swapchain]
	if !ok {
		return nil, errors.Newf("unknown swapchain %d", swapchain)
	}
	return append([]gpu.Image(nil), images...), nil
}

func (d *Device) DestroySwapchain(swapchain gpu.Swapchain) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("swapchain", gpu.Handle(swapchain))
	for _, image := range d.chainImages[swapchain] {
		delete(d.borrowed, image)
	}
	delete(d.chainImages, swapchain)
}

func (d *Device) CreateImageView(image gpu.Image, format gpu.Format, aspect gpu.ImageAspectFlags) (gpu.ImageView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateImageView"); err != nil {
		return 0, err
	}
	return gpu.ImageView(d.create("image view")), nil
}

func (d *Device) DestroyImageView(view gpu.ImageView) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("image view", gpu.Handle(view))
}

func (d *Device) CreateImage(info gpu.ImageCreateInfo, properties gpu.MemoryPropertyFlags) (gpu.Image, gpu.DeviceMemory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateImage"); err != nil {
		return 0, 0, err
	}
	image := gpu.Image(d.create("image"))
	memory := gpu.DeviceMemory(d.create("memory"))
	return image, memory, nil
}

func (d *Device) DestroyImage(image gpu.Image) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if owner, ok := d.borrowed[image]; ok {
		d.violations = append(d.violations, fmt.Sprintf("destroyed image %d borrowed from swapchain %d", image, owner))
		return
	}
	d.destroy("image", gpu.Handle(image))
}

func (d *Device) FreeMemory(memory gpu.DeviceMemory) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("memory", gpu.Handle(memory))
}

func (d *Device) CreateRenderPass(description gpu.RenderPassDescription) (gpu.RenderPass, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateRenderPass"); err != nil {
		return 0, err
	}
	return gpu.RenderPass(d.create("render pass")), nil
}

func (d *Device) DestroyRenderPass(renderPass gpu.RenderPass) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("render pass", gpu.Handle(renderPass))
}

func (d *Device) CreateFramebuffer(info gpu.FramebufferCreateInfo) (gpu.Framebuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateFramebuffer"); err != nil {
		return 0, err
	}
	return gpu.Framebuffer(d.create("framebuffer")), nil
}

func (d *Device) DestroyFramebuffer(framebuffer gpu.Framebuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("framebuffer", gpu.Handle(framebuffer))
}

func (d *Device) CreateSemaphore() (gpu.Semaphore, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateSemaphore"); err != nil {
		return 0, err
	}
	return gpu.Semaphore(d.create("semaphore")), nil
}

func (d *Device) DestroySemaphore(semaphore gpu.Semaphore) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("semaphore", gpu.Handle(semaphore))
}

func (d *Device) CreateFence(signaled bool) (gpu.Fence, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("CreateFence"); err != nil {
		return 0, err
	}
	fence := gpu.Fence(d.create("fence"))
	d.signaled[fence] = signaled
	return fence, nil
}

func (d *Device) DestroyFence(fence gpu.Fence) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("fence", gpu.Handle(fence))
	delete(d.signaled, fence)
}

func (d *Device) allSignaled(fences []gpu.Fence) bool {
	for _, fence := range fences {
		if !d.signaled[fence] {
			return false
		}
	}
	return true
}

func (d *Device) WaitForFences(fences ...gpu.Fence) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("WaitForFences"); err != nil {
		return err
	}
	for _, fence := range fences {
		if _, ok := d.signaled[fence]; !ok {
			return errors.Newf("wait on unknown fence %d", fence)
		}
	}

	for !d.allSignaled(fences) {
		d.blocked++
		d.cond.Wait()
		d.blocked--
	}
	return nil
}

func (d *Device) ResetFences(fences ...gpu.Fence) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, fence := range fences {
		d.signaled[fence] = false
	}
	return nil
}

// Signal completes the GPU work guarded by fence.
func (d *Device) Signal(fence gpu.Fence) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.signaled[fence] = true
	d.cond.Broadcast()
}

// SignalAll completes every pending submission.
func (d *Device) SignalAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for fence := range d.signaled {
		d.signaled[fence] = true
	}
	d.cond.Broadcast()
}

// Blocked is the number of goroutines parked in WaitForFences.
func (d *Device) Blocked() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.blocked
}

func (d *Device) AcquireNextImage(swapchain gpu.Swapchain, signal gpu.Semaphore) (int, gpu.Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("AcquireNextImage"); err != nil {
		return -1, gpu.StatusFatal, err
	}
	images, ok := d.chainImages[swapchain]
	if !ok {
		return -1, gpu.StatusFatal, errors.Newf("acquire on unknown swapchain %d", swapchain)
	}

	index := d.acquireNext[swapchain]
	status := gpu.StatusOK
	if len(d.acquireQueue) > 0 {
		result := d.acquireQueue[0]
		d.acquireQueue = d.acquireQueue[1:]
		status = result.status
		if result.index >= 0 {
			index = result.index
		}
	}
	d.acquireNext[swapchain] = (index + 1) % len(images)
	return index, status, nil
}

func (d *Device) QueueSubmit(fence gpu.Fence, info gpu.SubmitInfo) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("QueueSubmit"); err != nil {
		return err
	}
	if fence.Initialized() && d.signaled[fence] {
		d.violations = append(d.violations, fmt.Sprintf("submit with signaled fence %d", fence))
	}
	for _, buffer := range info.CommandBuffers {
		if d.commandRecording[buffer] {
			d.violations = append(d.violations, fmt.Sprintf("submit of command buffer %d still recording", buffer))
		}
	}
	d.submits = append(d.submits, info)
	d.submitFences = append(d.submitFences, fence)
	if fence.Initialized() && !d.HoldSubmissions {
		d.signaled[fence] = true
		d.cond.Broadcast()
	}
	return nil
}

func (d *Device) QueuePresent(info gpu.PresentInfo) (gpu.Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("QueuePresent"); err != nil {
		return gpu.StatusFatal, err
	}
	d.presents = append(d.presents, info)
	if len(d.presentQueue) > 0 {
		status := d.presentQueue[0]
		d.presentQueue = d.presentQueue[1:]
		return status, nil
	}
	return gpu.StatusOK, nil
}

// SwapchainInfos returns the create info of every swapchain built so far.
func (d *Device) SwapchainInfos() []gpu.SwapchainCreateInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]gpu.SwapchainCreateInfo(nil), d.swapchainInfos...)
}

func (d *Device) Submits() []gpu.SubmitInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]gpu.SubmitInfo(nil), d.submits...)
}

// SubmitFences returns the fence passed with each submission, in order.
func (d *Device) SubmitFences() []gpu.Fence {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]gpu.Fence(nil), d.submitFences...)
}

func (d *Device) Presents() []gpu.PresentInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]gpu.PresentInfo(nil), d.presents...)
}

// Violations lists misuse the device observed, such as destroying a borrowed
// swapchain image or destroying an object twice.
func (d *Device) Violations() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.violations...)
}

// Live counts the objects of each kind that were created and not destroyed.
func (d *Device) Live() map[string]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	counts := make(map[string]int)
	for _, kind := range d.live {
		counts[kind]++
	}
	return counts
}

// IsSwapchainImage reports whether image currently belongs to a swapchain.
func (d *Device) IsSwapchainImage(image gpu.Image) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.borrowed[image]
	return ok
}
