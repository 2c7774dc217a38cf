package swapchain

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/svke/gpu"
)

// DepthFormatCandidates are tried in order by FindDepthFormat.
var DepthFormatCandidates = []gpu.Format{
	gpu.FormatD32SignedFloat,
	gpu.FormatD32SignedFloatS8UnsignedInt,
	gpu.FormatD24UnsignedNormalizedS8UnsignedInt,
}

// PresentModePreference lists present modes from most to least preferred.
// FIFO is last because every surface must support it.
var PresentModePreference = []gpu.PresentMode{
	gpu.PresentModeImmediate,
	gpu.PresentModeMailbox,
	gpu.PresentModeFIFO,
}

// ChooseSurfaceFormat prefers 8-bit BGRA sRGB with a nonlinear sRGB color
// space and falls back on the first format the surface offers.
func ChooseSurfaceFormat(formats []gpu.SurfaceFormat) (gpu.SurfaceFormat, error) {
	if len(formats) == 0 {
		return gpu.SurfaceFormat{}, errors.Wrap(gpu.ErrNoSupportedFormat, "surface reports no formats")
	}

	for _, format := range formats {
		if format.Format == gpu.FormatB8G8R8A8SRGB && format.ColorSpace == gpu.ColorSpaceSRGBNonlinear {
			return format, nil
		}
	}

	return formats[0], nil
}

func ChoosePresentMode(modes []gpu.PresentMode) gpu.PresentMode {
	for _, preferred := range PresentModePreference {
		for _, mode := range modes {
			if mode == preferred {
				return mode
			}
		}
	}

	return gpu.PresentModeFIFO
}

// ChooseExtent uses the surface's current extent when it is defined, and
// otherwise clamps the requested window extent into the supported range.
func ChooseExtent(capabilities gpu.SurfaceCapabilities, window gpu.Extent2D) gpu.Extent2D {
	if capabilities.CurrentExtent.Width != gpu.UndefinedExtent {
		return capabilities.CurrentExtent
	}

	return gpu.Extent2D{
		Width:  clamp(window.Width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: clamp(window.Height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

// ChooseImageCount asks for one image more than the minimum, bounded by the
// maximum when the surface has one.
func ChooseImageCount(capabilities gpu.SurfaceCapabilities) int {
	count := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && count > capabilities.MaxImageCount {
		count = capabilities.MaxImageCount
	}
	return count
}

// FindSupportedFormat returns the first candidate whose properties for the
// given tiling include all requested features.
func FindSupportedFormat(device FormatQuerier, candidates []gpu.Format, tiling gpu.ImageTiling, features gpu.FormatFeatureFlags) (gpu.Format, error) {
	for _, format := range candidates {
		props := device.FormatProperties(format)

		if tiling == gpu.ImageTilingLinear && (props.LinearTilingFeatures&features) == features {
			return format, nil
		} else if tiling == gpu.ImageTilingOptimal && (props.OptimalTilingFeatures&features) == features {
			return format, nil
		}
	}

	return gpu.FormatUndefined, errors.Wrapf(gpu.ErrNoSupportedFormat, "candidates %v with %s tiling", candidates, tiling)
}

func FindDepthFormat(device FormatQuerier) (gpu.Format, error) {
	return FindSupportedFormat(device, DepthFormatCandidates, gpu.ImageTilingOptimal, gpu.FormatFeatureDepthStencilAttachment)
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
