package swapchain

import "github.com/vkngwrapper/svke/gpu"

// FormatQuerier reports per-format feature support for the physical device.
type FormatQuerier interface {
	FormatProperties(format gpu.Format) gpu.FormatProperties
}

// Device is the subset of the rendering device a Swapchain drives. The
// vulkan package implements it over a real device; gputest fakes it.
type Device interface {
	FormatQuerier

	SurfaceSupport() (gpu.SurfaceSupport, error)
	QueueFamilies() gpu.QueueFamilyIndices

	CreateSwapchain(info gpu.SwapchainCreateInfo) (gpu.Swapchain, error)
	SwapchainImages(swapchain gpu.Swapchain) ([]gpu.Image, error)
	DestroySwapchain(swapchain gpu.Swapchain)

	CreateImageView(image gpu.Image, format gpu.Format, aspect gpu.ImageAspectFlags) (gpu.ImageView, error)
	DestroyImageView(view gpu.ImageView)
	CreateImage(info gpu.ImageCreateInfo, properties gpu.MemoryPropertyFlags) (gpu.Image, gpu.DeviceMemory, error)
	DestroyImage(image gpu.Image)
	FreeMemory(memory gpu.DeviceMemory)

	CreateRenderPass(description gpu.RenderPassDescription) (gpu.RenderPass, error)
	DestroyRenderPass(renderPass gpu.RenderPass)
	CreateFramebuffer(info gpu.FramebufferCreateInfo) (gpu.Framebuffer, error)
	DestroyFramebuffer(framebuffer gpu.Framebuffer)

	CreateSemaphore() (gpu.Semaphore, error)
	DestroySemaphore(semaphore gpu.Semaphore)
	CreateFence(signaled bool) (gpu.Fence, error)
	DestroyFence(fence gpu.Fence)
	WaitForFences(fences ...gpu.Fence) error
	ResetFences(fences ...gpu.Fence) error

	AcquireNextImage(swapchain gpu.Swapchain, signal gpu.Semaphore) (int, gpu.Status, error)
	QueueSubmit(fence gpu.Fence, info gpu.SubmitInfo) error
	QueuePresent(info gpu.PresentInfo) (gpu.Status, error)
}
