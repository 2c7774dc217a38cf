package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/svke/gpu"
)

// BeginFrame acquires the next swapchain image and starts recording its
// command buffer. When the swapchain turns out to be stale it is rebuilt and
// BeginFrame returns a null command buffer with a nil error; the caller skips
// the frame and stays idle.
func (r *Renderer) BeginFrame() (gpu.CommandBuffer, error) {
	if r.frameStarted {
		return 0, errors.WithAssertionFailure(ErrFrameInProgress)
	}

	imageIndex, status, err := r.swapchain.AcquireNextImage()
	switch status {
	case gpu.StatusOK, gpu.StatusSuboptimal:
	case gpu.StatusOutOfDate:
		return 0, r.RecreateSwapchain()
	default:
		return 0, fatal(err, "failed to acquire swapchain image")
	}

	r.currentImageIndex = imageIndex
	commandBuffer := r.commandBuffers[imageIndex]

	err = r.device.BeginCommandBuffer(commandBuffer)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin recording command buffer")
	}

	r.frameStarted = true
	return commandBuffer, nil
}

// EndFrame finishes recording, submits and presents the frame, and always
// returns the renderer to idle. A stale swapchain or a resized window causes
// a rebuild.
func (r *Renderer) EndFrame() error {
	if !r.frameStarted {
		return errors.WithAssertionFailure(ErrNoFrameInProgress)
	}
	r.frameStarted = false

	commandBuffer := r.commandBuffers[r.currentImageIndex]
	err := r.device.EndCommandBuffer(commandBuffer)
	if err != nil {
		return errors.Wrap(err, "failed to record command buffer")
	}

	status, err := r.swapchain.SubmitCommandBuffers(commandBuffer, r.currentImageIndex)
	if status == gpu.StatusFatal {
		return fatal(err, "failed to present swapchain image")
	}

	if status.Stale() || r.window.WasResized() {
		r.window.ResetResized()
		return r.RecreateSwapchain()
	}

	return nil
}

// BeginSwapchainRenderPass clears the current framebuffer and sets a viewport
// and scissor covering the whole swapchain extent.
func (r *Renderer) BeginSwapchainRenderPass(commandBuffer gpu.CommandBuffer) error {
	err := r.checkCommandBuffer(commandBuffer)
	if err != nil {
		return err
	}

	extent := r.swapchain.Extent()
	renderArea := gpu.Rect2D{Extent: extent}

	err = r.device.CmdBeginRenderPass(commandBuffer, gpu.RenderPassBeginInfo{
		RenderPass:  r.swapchain.RenderPass(),
		Framebuffer: r.swapchain.Framebuffer(r.currentImageIndex),
		RenderArea:  renderArea,
		ClearColor:  ClearColor,
		ClearDepth:  gpu.ClearDepthStencil{Depth: 1, Stencil: 0},
	})
	if err != nil {
		return errors.Wrap(err, "failed to begin render pass")
	}

	r.device.CmdSetViewport(commandBuffer, gpu.Viewport{
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	})
	r.device.CmdSetScissor(commandBuffer, renderArea)
	return nil
}

func (r *Renderer) EndSwapchainRenderPass(commandBuffer gpu.CommandBuffer) error {
	err := r.checkCommandBuffer(commandBuffer)
	if err != nil {
		return err
	}

	r.device.CmdEndRenderPass(commandBuffer)
	return nil
}

func (r *Renderer) checkCommandBuffer(commandBuffer gpu.CommandBuffer) error {
	if !r.frameStarted {
		return errors.WithAssertionFailure(ErrNoFrameInProgress)
	}
	if commandBuffer != r.commandBuffers[r.currentImageIndex] {
		return errors.WithAssertionFailure(ErrCommandBufferMismatch)
	}
	return nil
}

func fatal(err error, msg string) error {
	if err == nil {
		err = gpu.ErrFatal
	} else {
		err = errors.Mark(err, gpu.ErrFatal)
	}
	return errors.Wrap(err, msg)
}
