package swapchain

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/svke/gpu"
	"github.com/vkngwrapper/svke/gpu/gputest"
	"golang.org/x/sync/errgroup"
)

func TestFrameRingCycles(t *testing.T) {
	device := gputest.NewDevice(testExtent)

	swapchain, err := New(device, testExtent, nil)
	require.NoError(t, err)
	defer swapchain.Destroy()

	for frame := 0; frame < 5; frame++ {
		require.Equal(t, frame%MaxFramesInFlight, swapchain.CurrentFrame())

		index, status, err := swapchain.AcquireNextImage()
		require.NoError(t, err)
		require.Equal(t, gpu.StatusOK, status)
		require.Equal(t, frame%swapchain.ImageCount(), index)

		status, err = swapchain.SubmitCommandBuffers(gpu.CommandBuffer(1000), index)
		require.NoError(t, err)
		require.Equal(t, gpu.StatusOK, status)
	}

	fences := device.SubmitFences()
	require.Len(t, fences, 5)
	require.Equal(t, fences[0], fences[2])
	require.Equal(t, fences[1], fences[3])
	require.NotEqual(t, fences[0], fences[1])

	presents := device.Presents()
	require.Len(t, presents, 5)
	submits := device.Submits()
	for i := range presents {
		require.Equal(t, submits[i].SignalSemaphores, presents[i].WaitSemaphores)
		require.Equal(t, []gpu.PipelineStageFlags{gpu.PipelineStageColorAttachmentOutput}, submits[i].WaitDstStageMask)
	}
}

func TestAcquireNextImage_OutOfDate(t *testing.T) {
	device := gputest.NewDevice(testExtent)
	device.ScriptAcquire(-1, gpu.StatusOutOfDate)

	swapchain, err := New(device, testExtent, nil)
	require.NoError(t, err)
	defer swapchain.Destroy()

	_, status, err := swapchain.AcquireNextImage()
	require.NoError(t, err)
	require.Equal(t, gpu.StatusOutOfDate, status)
	require.Equal(t, 0, swapchain.CurrentFrame())
}

func TestSubmitCommandBuffers_PresentStatus(t *testing.T) {
	device := gputest.NewDevice(testExtent)
	device.ScriptPresent(gpu.StatusSuboptimal)

	swapchain, err := New(device, testExtent, nil)
	require.NoError(t, err)
	defer swapchain.Destroy()

	index, _, err := swapchain.AcquireNextImage()
	require.NoError(t, err)

	status, err := swapchain.SubmitCommandBuffers(gpu.CommandBuffer(1000), index)
	require.NoError(t, err)
	require.Equal(t, gpu.StatusSuboptimal, status)
	require.Equal(t, 1, swapchain.CurrentFrame())
}

func TestSubmitCommandBuffers_IndexOutOfRange(t *testing.T) {
	device := gputest.NewDevice(testExtent)

	swapchain, err := New(device, testExtent, nil)
	require.NoError(t, err)
	defer swapchain.Destroy()

	_, err = swapchain.SubmitCommandBuffers(gpu.CommandBuffer(1000), swapchain.ImageCount())
	require.True(t, errors.IsAssertionFailure(err))
	require.Empty(t, device.Submits())
}

func TestSubmitCommandBuffers_WaitsForImageInFlight(t *testing.T) {
	device := gputest.NewDevice(testExtent)
	device.ImageCount = 3
	device.HoldSubmissions = true
	device.ScriptAcquire(0, gpu.StatusOK)
	device.ScriptAcquire(0, gpu.StatusOK)

	swapchain, err := New(device, testExtent, nil)
	require.NoError(t, err)

	index, _, err := swapchain.AcquireNextImage()
	require.NoError(t, err)
	require.Equal(t, 0, index)
	_, err = swapchain.SubmitCommandBuffers(gpu.CommandBuffer(1000), index)
	require.NoError(t, err)

	var g errgroup.Group
	g.Go(func() error {
		index, _, err := swapchain.AcquireNextImage()
		if err != nil {
			return err
		}
		_, err = swapchain.SubmitCommandBuffers(gpu.CommandBuffer(1001), index)
		return err
	})

	require.Eventually(t, func() bool {
		return device.Blocked() == 1
	}, time.Second, time.Millisecond)
	require.Len(t, device.Submits(), 1)

	device.Signal(device.SubmitFences()[0])
	require.NoError(t, g.Wait())

	submits := device.Submits()
	require.Len(t, submits, 2)
	require.Equal(t, []gpu.CommandBuffer{1001}, submits[1].CommandBuffers)

	device.SignalAll()
	swapchain.Destroy()
	require.Empty(t, device.Violations())
}
