package swapchain

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/svke/gpu"
	"github.com/vkngwrapper/svke/gpu/gputest"
)

func TestChoosePresentMode(t *testing.T) {
	testCases := map[string]struct {
		modes    []gpu.PresentMode
		expected gpu.PresentMode
	}{
		"MailboxOverFIFO": {
			modes:    []gpu.PresentMode{gpu.PresentModeFIFO, gpu.PresentModeMailbox},
			expected: gpu.PresentModeMailbox,
		},
		"ImmediateFirst": {
			modes:    []gpu.PresentMode{gpu.PresentModeMailbox, gpu.PresentModeFIFO, gpu.PresentModeImmediate},
			expected: gpu.PresentModeImmediate,
		},
		"FIFOOnly": {
			modes:    []gpu.PresentMode{gpu.PresentModeFIFO},
			expected: gpu.PresentModeFIFO,
		},
		"RelaxedIgnored": {
			modes:    []gpu.PresentMode{gpu.PresentModeFIFORelaxed, gpu.PresentModeFIFO},
			expected: gpu.PresentModeFIFO,
		},
		"Empty": {
			expected: gpu.PresentModeFIFO,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.expected, ChoosePresentMode(tc.modes))
		})
	}
}

func TestChooseSurfaceFormat(t *testing.T) {
	preferred := gpu.SurfaceFormat{Format: gpu.FormatB8G8R8A8SRGB, ColorSpace: gpu.ColorSpaceSRGBNonlinear}
	other := gpu.SurfaceFormat{Format: gpu.FormatR8G8B8A8UnsignedNormalized, ColorSpace: gpu.ColorSpaceSRGBNonlinear}

	format, err := ChooseSurfaceFormat([]gpu.SurfaceFormat{other, preferred})
	require.NoError(t, err)
	require.Equal(t, preferred, format)

	format, err = ChooseSurfaceFormat([]gpu.SurfaceFormat{other})
	require.NoError(t, err)
	require.Equal(t, other, format)

	_, err = ChooseSurfaceFormat(nil)
	require.True(t, errors.Is(err, gpu.ErrNoSupportedFormat))
}

func TestChooseExtent(t *testing.T) {
	capabilities := gpu.SurfaceCapabilities{
		CurrentExtent:  gpu.Extent2D{Width: 800, Height: 600},
		MinImageExtent: gpu.Extent2D{Width: 100, Height: 100},
		MaxImageExtent: gpu.Extent2D{Width: 1920, Height: 1080},
	}
	require.Equal(t, gpu.Extent2D{Width: 800, Height: 600}, ChooseExtent(capabilities, gpu.Extent2D{Width: 1024, Height: 768}))

	capabilities.CurrentExtent = gpu.Extent2D{Width: gpu.UndefinedExtent, Height: gpu.UndefinedExtent}
	require.Equal(t, gpu.Extent2D{Width: 1024, Height: 768}, ChooseExtent(capabilities, gpu.Extent2D{Width: 1024, Height: 768}))
	require.Equal(t, gpu.Extent2D{Width: 1920, Height: 100}, ChooseExtent(capabilities, gpu.Extent2D{Width: 4000, Height: 10}))
}

func TestChooseImageCount(t *testing.T) {
	require.Equal(t, 3, ChooseImageCount(gpu.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 8}))
	require.Equal(t, 2, ChooseImageCount(gpu.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 2}))
	require.Equal(t, 5, ChooseImageCount(gpu.SurfaceCapabilities{MinImageCount: 4, MaxImageCount: 0}))
}

func TestFindDepthFormat_ThirdCandidate(t *testing.T) {
	device := gputest.NewDevice(gpu.Extent2D{Width: 800, Height: 600})
	device.Formats = map[gpu.Format]gpu.FormatProperties{
		gpu.FormatD32SignedFloat: {
			LinearTilingFeatures: gpu.FormatFeatureDepthStencilAttachment,
		},
		gpu.FormatD32SignedFloatS8UnsignedInt: {
			OptimalTilingFeatures: gpu.FormatFeatureSampledImage,
		},
		gpu.FormatD24UnsignedNormalizedS8UnsignedInt: {
			OptimalTilingFeatures: gpu.FormatFeatureDepthStencilAttachment | gpu.FormatFeatureSampledImage,
		},
	}

	format, err := FindDepthFormat(device)
	require.NoError(t, err)
	require.Equal(t, gpu.FormatD24UnsignedNormalizedS8UnsignedInt, format)
}

func TestFindSupportedFormat_LinearTiling(t *testing.T) {
	device := gputest.NewDevice(gpu.Extent2D{Width: 800, Height: 600})
	device.Formats = map[gpu.Format]gpu.FormatProperties{
		gpu.FormatD32SignedFloat: {
			LinearTilingFeatures: gpu.FormatFeatureDepthStencilAttachment,
		},
	}

	format, err := FindSupportedFormat(device, DepthFormatCandidates, gpu.ImageTilingLinear, gpu.FormatFeatureDepthStencilAttachment)
	require.NoError(t, err)
	require.Equal(t, gpu.FormatD32SignedFloat, format)
}

func TestFindDepthFormat_NoneSupported(t *testing.T) {
	device := gputest.NewDevice(gpu.Extent2D{Width: 800, Height: 600})
	device.Formats = map[gpu.Format]gpu.FormatProperties{}

	_, err := FindDepthFormat(device)
	require.Error(t, err)
	require.True(t, errors.Is(err, gpu.ErrNoSupportedFormat))
}
