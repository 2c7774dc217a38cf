// Package gpu holds the backend-neutral vocabulary shared by the swapchain
// manager, the frame orchestrator and the device backends: opaque object
// handles, enumerations carrying Vulkan's numeric values, and the small
// descriptions passed across the device contract.
package gpu

// Handle is an opaque reference to a backend object. The zero Handle is the
// null handle.
//
// Handles carry no ownership by themselves. Whoever created an object through
// a device owns it and must destroy it; objects handed out by the presentation
// engine (swapchain color images) are borrowed and must never be destroyed by
// the engine.
type Handle uint64

type (
	Image         Handle
	ImageView     Handle
	DeviceMemory  Handle
	Framebuffer   Handle
	RenderPass    Handle
	Semaphore     Handle
	Fence         Handle
	CommandBuffer Handle
	Swapchain     Handle
)

func (h Image) Initialized() bool         { return h != 0 }
func (h ImageView) Initialized() bool     { return h != 0 }
func (h DeviceMemory) Initialized() bool  { return h != 0 }
func (h Framebuffer) Initialized() bool   { return h != 0 }
func (h RenderPass) Initialized() bool    { return h != 0 }
func (h Semaphore) Initialized() bool     { return h != 0 }
func (h Fence) Initialized() bool         { return h != 0 }
func (h CommandBuffer) Initialized() bool { return h != 0 }
func (h Swapchain) Initialized() bool     { return h != 0 }
