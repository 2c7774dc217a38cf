package renderer

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/svke/gpu"
	"github.com/vkngwrapper/svke/gpu/gputest"
	"github.com/vkngwrapper/svke/swapchain"
)

var testExtent = gpu.Extent2D{Width: 800, Height: 600}

func setup(t *testing.T, configure func(device *gputest.Device)) (*gputest.Device, *gputest.Window, *Renderer) {
	t.Helper()

	device := gputest.NewDevice(testExtent)
	device.Support.Capabilities.CurrentExtent = gpu.Extent2D{Width: gpu.UndefinedExtent, Height: gpu.UndefinedExtent}
	if configure != nil {
		configure(device)
	}
	window := gputest.NewWindow(testExtent)

	r, err := New(window, device)
	require.NoError(t, err)
	t.Cleanup(func() {
		device.SignalAll()
		require.NoError(t, r.Close())
	})

	return device, window, r
}

func drawFrame(t *testing.T, r *Renderer) {
	t.Helper()

	commandBuffer, err := r.BeginFrame()
	require.NoError(t, err)
	require.True(t, commandBuffer.Initialized())
	require.NoError(t, r.BeginSwapchainRenderPass(commandBuffer))
	require.NoError(t, r.EndSwapchainRenderPass(commandBuffer))
	require.NoError(t, r.EndFrame())
}

func TestNew_OneCommandBufferPerImage(t *testing.T) {
	device, _, r := setup(t, func(device *gputest.Device) {
		device.ImageCount = 4
	})

	require.Equal(t, 4, r.ImageCount())
	require.Equal(t, 4, r.CommandBufferCount())
	require.Equal(t, testExtent, r.Extent())
	require.InDelta(t, 800.0/600.0, r.AspectRatio(), 1e-6)
	require.Equal(t, 1, device.Allocations())
	require.Equal(t, 1, r.Recreations())
	require.False(t, r.IsFrameInProgress())
}

func TestBeginFrame_Twice(t *testing.T) {
	_, _, r := setup(t, nil)

	_, err := r.BeginFrame()
	require.NoError(t, err)

	_, err = r.BeginFrame()
	require.True(t, errors.IsAssertionFailure(err))
	require.True(t, errors.Is(err, ErrFrameInProgress))
	require.True(t, r.IsFrameInProgress())

	require.NoError(t, r.EndFrame())
}

func TestEndFrame_WithoutBegin(t *testing.T) {
	device, _, r := setup(t, nil)

	err := r.EndFrame()
	require.True(t, errors.IsAssertionFailure(err))
	require.True(t, errors.Is(err, ErrNoFrameInProgress))
	require.Empty(t, device.Submits())
}

func TestCurrentCommandBuffer(t *testing.T) {
	_, _, r := setup(t, nil)

	_, err := r.CurrentCommandBuffer()
	require.True(t, errors.Is(err, ErrNoFrameInProgress))

	commandBuffer, err := r.BeginFrame()
	require.NoError(t, err)

	current, err := r.CurrentCommandBuffer()
	require.NoError(t, err)
	require.Equal(t, commandBuffer, current)

	require.NoError(t, r.EndFrame())
}

func TestFrame_RecordsRenderPass(t *testing.T) {
	device, _, r := setup(t, nil)

	drawFrame(t, r)

	commands := device.Commands()
	require.Len(t, commands, 6)
	require.Contains(t, commands[0], "begin")
	require.Contains(t, commands[1], "begin render pass")
	require.Contains(t, commands[1], "800x600")
	require.Contains(t, commands[1], "clear [0.1 0.1 0.1 1]")
	require.Contains(t, commands[2], "viewport 800x600")
	require.Contains(t, commands[3], "scissor 800x600")
	require.Contains(t, commands[4], "end render pass")
	require.Contains(t, commands[5], "end")
	require.Len(t, device.Submits(), 1)
	require.Len(t, device.Presents(), 1)
	require.Empty(t, device.Violations())
}

func TestFrame_RingCycles(t *testing.T) {
	_, _, r := setup(t, nil)

	for frame := 0; frame < 6; frame++ {
		require.Equal(t, frame%swapchain.MaxFramesInFlight, r.CurrentFrameIndex())
		drawFrame(t, r)
	}
}

func TestFrame_RingCyclesAcrossRecreation(t *testing.T) {
	_, _, r := setup(t, nil)

	drawFrame(t, r)
	require.Equal(t, 1, r.CurrentFrameIndex())

	require.NoError(t, r.RecreateSwapchain())
	require.Equal(t, 1, r.CurrentFrameIndex())

	drawFrame(t, r)
	require.Equal(t, 0, r.CurrentFrameIndex())
}

func TestRenderPass_WrongCommandBuffer(t *testing.T) {
	_, _, r := setup(t, nil)

	err := r.BeginSwapchainRenderPass(gpu.CommandBuffer(9999))
	require.True(t, errors.Is(err, ErrNoFrameInProgress))

	_, err = r.BeginFrame()
	require.NoError(t, err)

	err = r.BeginSwapchainRenderPass(gpu.CommandBuffer(9999))
	require.True(t, errors.IsAssertionFailure(err))
	require.True(t, errors.Is(err, ErrCommandBufferMismatch))

	err = r.EndSwapchainRenderPass(gpu.CommandBuffer(9999))
	require.True(t, errors.Is(err, ErrCommandBufferMismatch))

	require.NoError(t, r.EndFrame())
}

func TestClose_ReleasesEverything(t *testing.T) {
	device := gputest.NewDevice(testExtent)
	window := gputest.NewWindow(testExtent)

	r, err := New(window, device)
	require.NoError(t, err)
	drawFrame(t, r)
	require.NoError(t, r.RecreateSwapchain())
	drawFrame(t, r)

	require.NoError(t, r.Close())
	require.Empty(t, device.Live())
	require.Empty(t, device.Violations())
}

func TestNew_FailureReleasesEverything(t *testing.T) {
	device := gputest.NewDevice(testExtent)
	device.Failures = map[string]error{
		"AllocateCommandBuffers": errors.New("out of pool memory"),
	}

	_, err := New(gputest.NewWindow(testExtent), device)
	require.Error(t, err)
	require.Empty(t, device.Live())
}
