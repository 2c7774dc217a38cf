package swapchain

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/svke/gpu"
)

func (s *Swapchain) createSyncObjects() error {
	s.imageAvailable = make([]gpu.Semaphore, MaxFramesInFlight)
	s.renderFinished = make([]gpu.Semaphore, MaxFramesInFlight)
	s.inFlightFences = make([]gpu.Fence, MaxFramesInFlight)
	s.imagesInFlight = make([]gpu.Fence, len(s.images))

	for i := 0; i < MaxFramesInFlight; i++ {
		semaphore, err := s.device.CreateSemaphore()
		if err != nil {
			return errors.Wrap(err, "failed to create image available semaphore")
		}
		s.imageAvailable[i] = semaphore

		semaphore, err = s.device.CreateSemaphore()
		if err != nil {
			return errors.Wrap(err, "failed to create render finished semaphore")
		}
		s.renderFinished[i] = semaphore

		fence, err := s.device.CreateFence(true)
		if err != nil {
			return errors.Wrap(err, "failed to create in flight fence")
		}
		s.inFlightFences[i] = fence
	}

	return nil
}

// AcquireNextImage waits until the current frame slot is free on the GPU and
// then asks the presentation engine for the next image. Suboptimal and
// out-of-date results come back as a status with a nil error; the index is
// only meaningful when the status is OK or Suboptimal.
func (s *Swapchain) AcquireNextImage() (int, gpu.Status, error) {
	err := s.device.WaitForFences(s.inFlightFences[s.currentFrame])
	if err != nil {
		return -1, gpu.StatusFatal, errors.Wrap(err, "failed to wait for in flight fence")
	}

	imageIndex, status, err := s.device.AcquireNextImage(s.handle, s.imageAvailable[s.currentFrame])
	if err != nil {
		return -1, gpu.StatusFatal, errors.Wrap(err, "failed to acquire swapchain image")
	}

	return imageIndex, status, nil
}

// SubmitCommandBuffers submits a recorded command buffer for imageIndex and
// queues the image for presentation, then advances the frame ring. If an
// earlier frame still renders to the same image, it blocks until that frame's
// fence signals.
func (s *Swapchain) SubmitCommandBuffers(commandBuffer gpu.CommandBuffer, imageIndex int) (gpu.Status, error) {
	if imageIndex < 0 || imageIndex >= len(s.images) {
		return gpu.StatusFatal, errors.AssertionFailedf("image index %d out of range for %d images", imageIndex, len(s.images))
	}

	if s.imagesInFlight[imageIndex].Initialized() {
		err := s.device.WaitForFences(s.imagesInFlight[imageIndex])
		if err != nil {
			return gpu.StatusFatal, errors.Wrap(err, "failed to wait for image in flight")
		}
	}
	fence := s.inFlightFences[s.currentFrame]
	s.imagesInFlight[imageIndex] = fence

	err := s.device.ResetFences(fence)
	if err != nil {
		return gpu.StatusFatal, errors.Wrap(err, "failed to reset in flight fence")
	}

	signalSemaphore := s.renderFinished[s.currentFrame]
	err = s.device.QueueSubmit(fence, gpu.SubmitInfo{
		WaitSemaphores:   []gpu.Semaphore{s.imageAvailable[s.currentFrame]},
		WaitDstStageMask: []gpu.PipelineStageFlags{gpu.PipelineStageColorAttachmentOutput},
		CommandBuffers:   []gpu.CommandBuffer{commandBuffer},
		SignalSemaphores: []gpu.Semaphore{signalSemaphore},
	})
	if err != nil {
		return gpu.StatusFatal, errors.Wrap(err, "failed to submit draw command buffer")
	}

	status, err := s.device.QueuePresent(gpu.PresentInfo{
		WaitSemaphores: []gpu.Semaphore{signalSemaphore},
		Swapchain:      s.handle,
		ImageIndex:     imageIndex,
	})

	// The frame was submitted either way, so the ring moves on.
	s.currentFrame = (s.currentFrame + 1) % MaxFramesInFlight

	if err != nil {
		return gpu.StatusFatal, errors.Wrap(err, "failed to present swapchain image")
	}

	return status, nil
}
