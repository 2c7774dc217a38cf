package gpu

// UndefinedExtent is reported by surfaces whose size is decided by the
// swapchain rather than by the window system.
const UndefinedExtent = -1

type Extent2D struct {
	Width  int
	Height int
}

// Zero reports whether either dimension is zero, as with a minimized window.
func (e Extent2D) Zero() bool {
	return e.Width == 0 || e.Height == 0
}

type Offset2D struct {
	X int
	Y int
}

type Rect2D struct {
	Offset Offset2D
	Extent Extent2D
}

type Viewport struct {
	X        float32
	Y        float32
	Width    float32
	Height   float32
	MinDepth float32
	MaxDepth float32
}

// SurfaceCapabilities mirrors the capability query of a presentation surface.
// A MaxImageCount of 0 means there is no upper bound.
type SurfaceCapabilities struct {
	MinImageCount    int
	MaxImageCount    int
	CurrentExtent    Extent2D
	MinImageExtent   Extent2D
	MaxImageExtent   Extent2D
	CurrentTransform SurfaceTransformFlags
}

type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

// SurfaceSupport is everything the swapchain manager needs to know about the
// surface in one query.
type SurfaceSupport struct {
	Capabilities SurfaceCapabilities
	Formats      []SurfaceFormat
	PresentModes []PresentMode
}

type QueueFamilyIndices struct {
	Graphics int
	Present  int
}

// Shared reports whether graphics and presentation happen on one family.
func (q QueueFamilyIndices) Shared() bool {
	return q.Graphics == q.Present
}

type SwapchainCreateInfo struct {
	MinImageCount      int
	ImageFormat        Format
	ImageColorSpace    ColorSpace
	ImageExtent        Extent2D
	ImageUsage         ImageUsageFlags
	ImageSharingMode   SharingMode
	QueueFamilyIndices []int
	PreTransform       SurfaceTransformFlags
	PresentMode        PresentMode
	OldSwapchain       Swapchain
}

// ImageCreateInfo describes a single-sample, single-mip 2D image.
type ImageCreateInfo struct {
	Extent Extent2D
	Format Format
	Tiling ImageTiling
	Usage  ImageUsageFlags
}

type AttachmentDescription struct {
	Format         Format
	LoadOp         AttachmentLoadOp
	StoreOp        AttachmentStoreOp
	StencilLoadOp  AttachmentLoadOp
	StencilStoreOp AttachmentStoreOp
	InitialLayout  ImageLayout
	FinalLayout    ImageLayout
}

// RenderPassDescription is a single-subpass render pass with one color and
// one depth attachment. Backends add the external dependency that makes the
// subpass wait for the color and early fragment test stages.
type RenderPassDescription struct {
	Color AttachmentDescription
	Depth AttachmentDescription
}

type FramebufferCreateInfo struct {
	RenderPass  RenderPass
	Attachments []ImageView
	Extent      Extent2D
}

type SubmitInfo struct {
	WaitSemaphores   []Semaphore
	WaitDstStageMask []PipelineStageFlags
	CommandBuffers   []CommandBuffer
	SignalSemaphores []Semaphore
}

type PresentInfo struct {
	WaitSemaphores []Semaphore
	Swapchain      Swapchain
	ImageIndex     int
}

type ClearDepthStencil struct {
	Depth   float32
	Stencil uint32
}

type RenderPassBeginInfo struct {
	RenderPass  RenderPass
	Framebuffer Framebuffer
	RenderArea  Rect2D
	ClearColor  [4]float32
	ClearDepth  ClearDepthStencil
}
