// Package swapchain owns the presentable images of a window surface together
// with everything derived from them: image views, per-image depth buffers,
// the render pass, framebuffers, and the synchronization objects that keep at
// most MaxFramesInFlight frames queued on the GPU.
package swapchain

import (
	"log"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/svke/gpu"
)

// MaxFramesInFlight bounds how many frames the CPU may record ahead of the
// GPU.
const MaxFramesInFlight = 2

type Option func(*Swapchain)

// WithVerbose logs the negotiated present mode and format choices.
func WithVerbose(verbose bool) Option {
	return func(s *Swapchain) {
		s.verbose = verbose
	}
}

type Swapchain struct {
	device  Device
	verbose bool

	handle      gpu.Swapchain
	imageFormat gpu.Format
	depthFormat gpu.Format
	extent      gpu.Extent2D
	presentMode gpu.PresentMode

	// Owned by the presentation engine, never destroyed here.
	images     []gpu.Image
	imageViews []gpu.ImageView

	depthImages        []gpu.Image
	depthImageMemories []gpu.DeviceMemory
	depthImageViews    []gpu.ImageView

	renderPass   gpu.RenderPass
	framebuffers []gpu.Framebuffer

	imageAvailable []gpu.Semaphore
	renderFinished []gpu.Semaphore
	inFlightFences []gpu.Fence
	imagesInFlight []gpu.Fence
	currentFrame   int
}

// New builds a swapchain for the device's surface at the given window extent.
//
// When previous is non-nil its presentation handle is passed along so the
// presentation engine can reuse resources, and the frame cursor carries over
// so the frame ring keeps cycling across recreation. New does not destroy
// previous; the caller does once the device is idle.
func New(device Device, windowExtent gpu.Extent2D, previous *Swapchain, opts ...Option) (*Swapchain, error) {
	s := &Swapchain{
		device: device,
	}
	for _, opt := range opts {
		opt(s)
	}
	if previous != nil {
		s.currentFrame = previous.currentFrame
	}

	err := s.init(windowExtent, previous)
	if err != nil {
		s.Destroy()
		return nil, err
	}

	return s, nil
}

func (s *Swapchain) init(windowExtent gpu.Extent2D, previous *Swapchain) error {
	err := s.createSwapchain(windowExtent, previous)
	if err != nil {
		return err
	}

	err = s.createImageViews()
	if err != nil {
		return err
	}

	err = s.createRenderPass()
	if err != nil {
		return err
	}

	err = s.createDepthResources()
	if err != nil {
		return err
	}

	err = s.createFramebuffers()
	if err != nil {
		return err
	}

	return s.createSyncObjects()
}

func (s *Swapchain) createSwapchain(windowExtent gpu.Extent2D, previous *Swapchain) error {
	support, err := s.device.SurfaceSupport()
	if err != nil {
		return errors.Wrap(err, "failed to query surface support")
	}

	surfaceFormat, err := ChooseSurfaceFormat(support.Formats)
	if err != nil {
		return err
	}
	presentMode := ChoosePresentMode(support.PresentModes)
	extent := ChooseExtent(support.Capabilities, windowExtent)

	sharingMode := gpu.SharingModeExclusive
	var queueFamilyIndices []int

	families := s.device.QueueFamilies()
	if !families.Shared() {
		sharingMode = gpu.SharingModeConcurrent
		queueFamilyIndices = []int{families.Graphics, families.Present}
	}

	info := gpu.SwapchainCreateInfo{
		MinImageCount:      ChooseImageCount(support.Capabilities),
		ImageFormat:        surfaceFormat.Format,
		ImageColorSpace:    surfaceFormat.ColorSpace,
		ImageExtent:        extent,
		ImageUsage:         gpu.ImageUsageColorAttachment,
		ImageSharingMode:   sharingMode,
		QueueFamilyIndices: queueFamilyIndices,
		PreTransform:       support.Capabilities.CurrentTransform,
		PresentMode:        presentMode,
	}
	if previous != nil {
		info.OldSwapchain = previous.handle
	}

	s.handle, err = s.device.CreateSwapchain(info)
	if err != nil {
		return errors.Wrap(err, "failed to create swapchain")
	}

	s.images, err = s.device.SwapchainImages(s.handle)
	if err != nil {
		return errors.Wrap(err, "failed to get swapchain images")
	}

	s.imageFormat = surfaceFormat.Format
	s.extent = extent
	s.presentMode = presentMode

	if s.verbose {
		log.Printf("swapchain: present mode %s, format %s, %dx%d, %d images", presentMode, surfaceFormat.Format, extent.Width, extent.Height, len(s.images))
	}

	return nil
}

// Destroy releases every object the swapchain created, in reverse order of
// creation. Swapchain images belong to the presentation engine and are left
// alone. Destroy tolerates a partially built swapchain.
func (s *Swapchain) Destroy() {
	for _, fence := range s.inFlightFences {
		if fence.Initialized() {
			s.device.DestroyFence(fence)
		}
	}
	for _, semaphore := range s.renderFinished {
		if semaphore.Initialized() {
			s.device.DestroySemaphore(semaphore)
		}
	}
	for _, semaphore := range s.imageAvailable {
		if semaphore.Initialized() {
			s.device.DestroySemaphore(semaphore)
		}
	}
	s.inFlightFences = nil
	s.renderFinished = nil
	s.imageAvailable = nil
	s.imagesInFlight = nil

	for _, framebuffer := range s.framebuffers {
		if framebuffer.Initialized() {
			s.device.DestroyFramebuffer(framebuffer)
		}
	}
	s.framebuffers = nil

	for i := range s.depthImageViews {
		if s.depthImageViews[i].Initialized() {
			s.device.DestroyImageView(s.depthImageViews[i])
		}
	}
	for i := range s.depthImages {
		if s.depthImages[i].Initialized() {
			s.device.DestroyImage(s.depthImages[i])
		}
	}
	for i := range s.depthImageMemories {
		if s.depthImageMemories[i].Initialized() {
			s.device.FreeMemory(s.depthImageMemories[i])
		}
	}
	s.depthImageViews = nil
	s.depthImages = nil
	s.depthImageMemories = nil

	if s.renderPass.Initialized() {
		s.device.DestroyRenderPass(s.renderPass)
		s.renderPass = 0
	}

	for _, view := range s.imageViews {
		if view.Initialized() {
			s.device.DestroyImageView(view)
		}
	}
	s.imageViews = nil
	s.images = nil

	if s.handle.Initialized() {
		s.device.DestroySwapchain(s.handle)
		s.handle = 0
	}
}

func (s *Swapchain) Handle() gpu.Swapchain {
	return s.handle
}

func (s *Swapchain) Framebuffer(index int) gpu.Framebuffer {
	return s.framebuffers[index]
}

func (s *Swapchain) RenderPass() gpu.RenderPass {
	return s.renderPass
}

func (s *Swapchain) ImageView(index int) gpu.ImageView {
	return s.imageViews[index]
}

// ImageCount is the number of presentable images the presentation engine
// actually handed out, which may exceed the requested minimum.
func (s *Swapchain) ImageCount() int {
	return len(s.images)
}

func (s *Swapchain) ImageFormat() gpu.Format {
	return s.imageFormat
}

func (s *Swapchain) DepthFormat() gpu.Format {
	return s.depthFormat
}

func (s *Swapchain) PresentMode() gpu.PresentMode {
	return s.presentMode
}

func (s *Swapchain) Extent() gpu.Extent2D {
	return s.extent
}

func (s *Swapchain) Width() int {
	return s.extent.Width
}

func (s *Swapchain) Height() int {
	return s.extent.Height
}

func (s *Swapchain) AspectRatio() float32 {
	return float32(s.extent.Width) / float32(s.extent.Height)
}

// CurrentFrame is the frame-ring slot the next acquire will use.
func (s *Swapchain) CurrentFrame() int {
	return s.currentFrame
}

// CompareFormats reports whether other renders into the same color and depth
// formats, which keeps pipelines built against this render pass usable.
func (s *Swapchain) CompareFormats(other *Swapchain) bool {
	return s.imageFormat == other.imageFormat && s.depthFormat == other.depthFormat
}
