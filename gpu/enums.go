package gpu

import "fmt"

// The enumerations below use the numeric values of their Vulkan counterparts,
// so backends convert them with plain type conversions.

type Format int32

const (
	FormatUndefined                          Format = 0
	FormatR8G8B8A8UnsignedNormalized         Format = 37
	FormatR8G8B8A8SRGB                       Format = 43
	FormatB8G8R8A8UnsignedNormalized         Format = 44
	FormatB8G8R8A8SRGB                       Format = 50
	FormatR32G32SignedFloat                  Format = 103
	FormatR32G32B32SignedFloat               Format = 106
	FormatD16UnsignedNormalized              Format = 124
	FormatD32SignedFloat                     Format = 126
	FormatD24UnsignedNormalizedS8UnsignedInt Format = 129
	FormatD32SignedFloatS8UnsignedInt        Format = 130
)

var formatNames = map[Format]string{
	FormatUndefined:                          "Undefined",
	FormatR8G8B8A8UnsignedNormalized:         "R8G8B8A8UnsignedNormalized",
	FormatR8G8B8A8SRGB:                       "R8G8B8A8SRGB",
	FormatB8G8R8A8UnsignedNormalized:         "B8G8R8A8UnsignedNormalized",
	FormatB8G8R8A8SRGB:                       "B8G8R8A8SRGB",
	FormatR32G32SignedFloat:                  "R32G32SignedFloat",
	FormatR32G32B32SignedFloat:               "R32G32B32SignedFloat",
	FormatD16UnsignedNormalized:              "D16UnsignedNormalized",
	FormatD32SignedFloat:                     "D32SignedFloat",
	FormatD24UnsignedNormalizedS8UnsignedInt: "D24UnsignedNormalizedS8UnsignedInt",
	FormatD32SignedFloatS8UnsignedInt:        "D32SignedFloatS8UnsignedInt",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int32(f))
}

// HasStencilComponent reports whether a depth format also carries stencil.
func (f Format) HasStencilComponent() bool {
	return f == FormatD32SignedFloatS8UnsignedInt || f == FormatD24UnsignedNormalizedS8UnsignedInt
}

type ColorSpace int32

const ColorSpaceSRGBNonlinear ColorSpace = 0

type PresentMode int32

const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFIFO        PresentMode = 2
	PresentModeFIFORelaxed PresentMode = 3
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeImmediate:
		return "Immediate"
	case PresentModeMailbox:
		return "Mailbox"
	case PresentModeFIFO:
		return "V-Sync"
	case PresentModeFIFORelaxed:
		return "Relaxed V-Sync"
	}
	return fmt.Sprintf("PresentMode(%d)", int32(m))
}

type ImageTiling int32

const (
	ImageTilingOptimal ImageTiling = 0
	ImageTilingLinear  ImageTiling = 1
)

func (t ImageTiling) String() string {
	switch t {
	case ImageTilingOptimal:
		return "Optimal"
	case ImageTilingLinear:
		return "Linear"
	}
	return fmt.Sprintf("ImageTiling(%d)", int32(t))
}

type FormatFeatureFlags int32

const (
	FormatFeatureSampledImage           FormatFeatureFlags = 0x1
	FormatFeatureColorAttachment        FormatFeatureFlags = 0x80
	FormatFeatureDepthStencilAttachment FormatFeatureFlags = 0x200
)

// FormatProperties lists the features a format supports per tiling mode.
type FormatProperties struct {
	LinearTilingFeatures  FormatFeatureFlags
	OptimalTilingFeatures FormatFeatureFlags
	BufferFeatures        FormatFeatureFlags
}

type ImageAspectFlags int32

const (
	ImageAspectColor   ImageAspectFlags = 0x1
	ImageAspectDepth   ImageAspectFlags = 0x2
	ImageAspectStencil ImageAspectFlags = 0x4
)

type ImageUsageFlags int32

const (
	ImageUsageTransferSrc            ImageUsageFlags = 0x1
	ImageUsageTransferDst            ImageUsageFlags = 0x2
	ImageUsageSampled                ImageUsageFlags = 0x4
	ImageUsageColorAttachment        ImageUsageFlags = 0x10
	ImageUsageDepthStencilAttachment ImageUsageFlags = 0x20
)

type MemoryPropertyFlags int32

const (
	MemoryPropertyDeviceLocal  MemoryPropertyFlags = 0x1
	MemoryPropertyHostVisible  MemoryPropertyFlags = 0x2
	MemoryPropertyHostCoherent MemoryPropertyFlags = 0x4
)

type SharingMode int32

const (
	SharingModeExclusive  SharingMode = 0
	SharingModeConcurrent SharingMode = 1
)

type AttachmentLoadOp int32

const (
	AttachmentLoadOpLoad     AttachmentLoadOp = 0
	AttachmentLoadOpClear    AttachmentLoadOp = 1
	AttachmentLoadOpDontCare AttachmentLoadOp = 2
)

type AttachmentStoreOp int32

const (
	AttachmentStoreOpStore    AttachmentStoreOp = 0
	AttachmentStoreOpDontCare AttachmentStoreOp = 1
)

type ImageLayout int32

const (
	ImageLayoutUndefined                     ImageLayout = 0
	ImageLayoutColorAttachmentOptimal        ImageLayout = 2
	ImageLayoutDepthStencilAttachmentOptimal ImageLayout = 3
	ImageLayoutPresentSrc                    ImageLayout = 1000001002
)

type PipelineStageFlags int32

const (
	PipelineStageEarlyFragmentTests    PipelineStageFlags = 0x100
	PipelineStageColorAttachmentOutput PipelineStageFlags = 0x400
)

type SurfaceTransformFlags int32

const SurfaceTransformIdentity SurfaceTransformFlags = 0x1
