package renderer

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/svke/gpu"
	"github.com/vkngwrapper/svke/gpu/gputest"
	"github.com/vkngwrapper/svke/swapchain"
)

func TestBeginFrame_OutOfDateRecreates(t *testing.T) {
	device, window, r := setup(t, nil)

	resized := gpu.Extent2D{Width: 1024, Height: 768}
	window.Resize(resized)
	device.ScriptAcquire(-1, gpu.StatusOutOfDate)

	commandBuffer, err := r.BeginFrame()
	require.NoError(t, err)
	require.False(t, commandBuffer.Initialized())
	require.False(t, r.IsFrameInProgress())

	require.Equal(t, 2, r.Recreations())
	require.Equal(t, resized, r.Swapchain().Extent())
	require.Equal(t, 2, device.WaitIdles())

	drawFrame(t, r)
	require.Contains(t, device.Commands()[1], "1024x768")
}

func TestBeginFrame_SuboptimalAcquireProceeds(t *testing.T) {
	device, _, r := setup(t, nil)
	device.ScriptAcquire(-1, gpu.StatusSuboptimal)

	commandBuffer, err := r.BeginFrame()
	require.NoError(t, err)
	require.True(t, commandBuffer.Initialized())
	require.NoError(t, r.EndFrame())
	require.Equal(t, 1, r.Recreations())
}

func TestBeginFrame_AcquireFailure(t *testing.T) {
	device, _, r := setup(t, nil)
	device.Failures = map[string]error{
		"AcquireNextImage": errors.New("device lost"),
	}

	_, err := r.BeginFrame()
	require.Error(t, err)
	require.True(t, errors.Is(err, gpu.ErrFatal))
	require.False(t, r.IsFrameInProgress())
}

func TestEndFrame_StalePresentRecreates(t *testing.T) {
	for _, status := range []gpu.Status{gpu.StatusSuboptimal, gpu.StatusOutOfDate} {
		t.Run(status.String(), func(t *testing.T) {
			device, _, r := setup(t, nil)
			device.ScriptPresent(status)

			drawFrame(t, r)
			require.Equal(t, 2, r.Recreations())
			require.False(t, r.IsFrameInProgress())
		})
	}
}

func TestEndFrame_ResizedWindowRecreates(t *testing.T) {
	_, window, r := setup(t, nil)

	_, err := r.BeginFrame()
	require.NoError(t, err)

	resized := gpu.Extent2D{Width: 640, Height: 480}
	window.Resize(resized)

	require.NoError(t, r.EndFrame())
	require.False(t, window.WasResized())
	require.Equal(t, 2, r.Recreations())
	require.Equal(t, resized, r.Swapchain().Extent())
}

func TestEndFrame_PresentFailure(t *testing.T) {
	device, _, r := setup(t, nil)

	_, err := r.BeginFrame()
	require.NoError(t, err)

	device.Failures = map[string]error{
		"QueuePresent": errors.New("device lost"),
	}
	err = r.EndFrame()
	require.True(t, errors.Is(err, gpu.ErrFatal))
	require.False(t, r.IsFrameInProgress())
	device.Failures = nil
}

func TestRecreateSwapchain_WaitsWhileMinimized(t *testing.T) {
	_, window, r := setup(t, nil)

	window.Resize(gpu.Extent2D{Width: 0, Height: 600})
	window.QueueExtents(gpu.Extent2D{Width: 0, Height: 0}, gpu.Extent2D{Width: 640, Height: 480})

	require.NoError(t, r.RecreateSwapchain())
	require.Equal(t, 2, window.Waits())
	require.Equal(t, gpu.Extent2D{Width: 640, Height: 480}, r.Swapchain().Extent())
}

func TestRecreateSwapchain_UnchangedExtent(t *testing.T) {
	device, _, r := setup(t, nil)

	before := r.Swapchain()
	oldHandle := before.Handle()
	count := before.ImageCount()
	live := device.Live()

	require.NoError(t, r.RecreateSwapchain())

	after := r.Swapchain()
	require.NotSame(t, before, after)
	require.Equal(t, count, after.ImageCount())
	require.Equal(t, count, r.CommandBufferCount())
	require.Equal(t, 1, device.Allocations())
	require.Equal(t, live, device.Live())
	require.True(t, oldHandle.Initialized())
	require.Equal(t, oldHandle, device.SwapchainInfos()[1].OldSwapchain)
}

func TestRecreateSwapchain_ImageCountChanged(t *testing.T) {
	device, _, r := setup(t, nil)
	require.Equal(t, 3, r.CommandBufferCount())

	device.ImageCount = 5
	require.NoError(t, r.RecreateSwapchain())

	require.Equal(t, 5, r.CommandBufferCount())
	require.Equal(t, 2, device.Allocations())
	require.Equal(t, 5, device.Live()["command buffer"])
}

func TestRecreateSwapchain_FormatChanged(t *testing.T) {
	device, _, r := setup(t, nil)

	device.Support.Formats = []gpu.SurfaceFormat{
		{Format: gpu.FormatR8G8B8A8UnsignedNormalized, ColorSpace: gpu.ColorSpaceSRGBNonlinear},
	}

	err := r.RecreateSwapchain()
	require.True(t, errors.Is(err, ErrFormatChanged))
}

func TestRecreateSwapchain_FormatAndImageCountChanged(t *testing.T) {
	device, _, r := setup(t, nil)

	var rebuilt int
	r.listeners = append(r.listeners, func(*swapchain.Swapchain) { rebuilt++ })

	device.ImageCount = 5
	device.Support.Formats = []gpu.SurfaceFormat{
		{Format: gpu.FormatR8G8B8A8UnsignedNormalized, ColorSpace: gpu.ColorSpaceSRGBNonlinear},
	}

	err := r.RecreateSwapchain()
	require.True(t, errors.Is(err, ErrFormatChanged))

	require.Equal(t, 5, r.ImageCount())
	require.Equal(t, 5, r.CommandBufferCount())
	require.Equal(t, 2, r.Recreations())
	require.Equal(t, 1, rebuilt)

	device.ScriptAcquire(4, gpu.StatusOK)
	commandBuffer, err := r.BeginFrame()
	require.NoError(t, err)
	require.True(t, commandBuffer.Initialized())
	require.NoError(t, r.BeginSwapchainRenderPass(commandBuffer))
	require.NoError(t, r.EndSwapchainRenderPass(commandBuffer))
	require.NoError(t, r.EndFrame())
}

func TestRecreateSwapchain_ClosedWhileMinimized(t *testing.T) {
	device, window, r := setup(t, nil)
	before := r.Swapchain()

	window.Resize(gpu.Extent2D{Width: 0, Height: 0})
	window.Close()

	err := r.RecreateSwapchain()
	require.True(t, errors.Is(err, ErrWindowClosed))
	require.Equal(t, 0, window.Waits())
	require.Same(t, before, r.Swapchain())
	require.Equal(t, 1, r.Recreations())
	require.Equal(t, 1, device.WaitIdles())
}

func TestRecreateListener(t *testing.T) {
	device := gputest.NewDevice(testExtent)
	window := gputest.NewWindow(testExtent)

	var seen []*swapchain.Swapchain
	r, err := New(window, device, WithRecreateListener(func(sc *swapchain.Swapchain) {
		seen = append(seen, sc)
	}))
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.RecreateSwapchain())
	require.Len(t, seen, 2)
	require.Same(t, r.Swapchain(), seen[1])
}
