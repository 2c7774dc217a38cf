package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/svke/gpu"
)

func (d *Device) AllocateCommandBuffers(count int) ([]gpu.CommandBuffer, error) {
	buffers, _, err := d.deviceDriver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        d.commandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	})
	if err != nil {
		return nil, errors.Wrap(err, "vkAllocateCommandBuffers")
	}

	result := make([]gpu.CommandBuffer, len(buffers))
	for i, buffer := range buffers {
		result[i] = gpu.CommandBuffer(d.commandBuffers.put(buffer))
	}
	return result, nil
}

func (d *Device) FreeCommandBuffers(handles ...gpu.CommandBuffer) {
	var buffers []core1_0.CommandBuffer
	for _, handle := range handles {
		buffer, ok := d.commandBuffers.take(gpu.Handle(handle))
		if ok {
			buffers = append(buffers, buffer)
		}
	}

	if len(buffers) > 0 {
		d.deviceDriver.FreeCommandBuffers(buffers...)
	}
}

// CommandBuffer resolves a command buffer handle so draw code can record
// pipeline binds and draws into it.
func (d *Device) CommandBuffer(handle gpu.CommandBuffer) (core1_0.CommandBuffer, error) {
	return d.commandBuffers.get(gpu.Handle(handle))
}

func (d *Device) BeginCommandBuffer(handle gpu.CommandBuffer) error {
	buffer, err := d.commandBuffers.get(gpu.Handle(handle))
	if err != nil {
		return err
	}

	_, err = d.deviceDriver.BeginCommandBuffer(buffer, core1_0.CommandBufferBeginInfo{})
	return errors.Wrap(err, "vkBeginCommandBuffer")
}

func (d *Device) EndCommandBuffer(handle gpu.CommandBuffer) error {
	buffer, err := d.commandBuffers.get(gpu.Handle(handle))
	if err != nil {
		return err
	}

	_, err = d.deviceDriver.EndCommandBuffer(buffer)
	return errors.Wrap(err, "vkEndCommandBuffer")
}

func (d *Device) CmdBeginRenderPass(handle gpu.CommandBuffer, info gpu.RenderPassBeginInfo) error {
	buffer, err := d.commandBuffers.get(gpu.Handle(handle))
	if err != nil {
		return err
	}
	renderPass, err := d.renderPasses.get(gpu.Handle(info.RenderPass))
	if err != nil {
		return err
	}
	framebuffer, err := d.framebuffers.get(gpu.Handle(info.Framebuffer))
	if err != nil {
		return err
	}

	return d.deviceDriver.CmdBeginRenderPass(buffer, core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  renderPass,
			Framebuffer: framebuffer,
			RenderArea:  fromRect(info.RenderArea),
			ClearValues: []core1_0.ClearValue{
				core1_0.ClearValueFloat(info.ClearColor),
				core1_0.ClearValueDepthStencil{Depth: info.ClearDepth.Depth, Stencil: info.ClearDepth.Stencil},
			},
		})
}

func (d *Device) CmdEndRenderPass(handle gpu.CommandBuffer) {
	buffer, err := d.commandBuffers.get(gpu.Handle(handle))
	if err != nil {
		return
	}
	d.deviceDriver.CmdEndRenderPass(buffer)
}

func (d *Device) CmdSetViewport(handle gpu.CommandBuffer, viewport gpu.Viewport) {
	buffer, err := d.commandBuffers.get(gpu.Handle(handle))
	if err != nil {
		return
	}
	d.deviceDriver.CmdSetViewport(buffer, []core1_0.Viewport{
		{
			X:        viewport.X,
			Y:        viewport.Y,
			Width:    viewport.Width,
			Height:   viewport.Height,
			MinDepth: viewport.MinDepth,
			MaxDepth: viewport.MaxDepth,
		},
	})
}

func (d *Device) CmdSetScissor(handle gpu.CommandBuffer, scissor gpu.Rect2D) {
	buffer, err := d.commandBuffers.get(gpu.Handle(handle))
	if err != nil {
		return
	}
	d.deviceDriver.CmdSetScissor(buffer, []core1_0.Rect2D{fromRect(scissor)})
}

func (d *Device) QueueSubmit(fence gpu.Fence, info gpu.SubmitInfo) error {
	var fencePtr *core1_0.Fence
	if fence.Initialized() {
		coreFence, err := d.fences.get(gpu.Handle(fence))
		if err != nil {
			return err
		}
		fencePtr = &coreFence
	}

	waitSemaphores, err := d.semaphores.getAll(handlesOf(info.WaitSemaphores))
	if err != nil {
		return err
	}
	signalSemaphores, err := d.semaphores.getAll(handlesOf(info.SignalSemaphores))
	if err != nil {
		return err
	}
	commandBuffers, err := d.commandBuffers.getAll(handlesOf(info.CommandBuffers))
	if err != nil {
		return err
	}

	waitStages := make([]core1_0.PipelineStageFlags, len(info.WaitDstStageMask))
	for i, stage := range info.WaitDstStageMask {
		waitStages[i] = core1_0.PipelineStageFlags(stage)
	}

	_, err = d.deviceDriver.QueueSubmit(d.graphicsQueue, fencePtr,
		core1_0.SubmitInfo{
			WaitSemaphores:   waitSemaphores,
			WaitDstStageMask: waitStages,
			CommandBuffers:   commandBuffers,
			SignalSemaphores: signalSemaphores,
		},
	)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "vkQueueSubmit"), gpu.ErrFatal)
	}
	return nil
}

// SingleTimeCommands records fn into a throwaway command buffer, submits it
// to the graphics queue and waits for it to finish.
func (d *Device) SingleTimeCommands(fn func(buffer core1_0.CommandBuffer) error) error {
	buffers, _, err := d.deviceDriver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        d.commandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err != nil {
		return errors.Wrap(err, "vkAllocateCommandBuffers")
	}
	buffer := buffers[0]
	defer d.deviceDriver.FreeCommandBuffers(buffer)

	_, err = d.deviceDriver.BeginCommandBuffer(buffer, core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	if err != nil {
		return errors.Wrap(err, "vkBeginCommandBuffer")
	}

	err = fn(buffer)
	if err != nil {
		return err
	}

	_, err = d.deviceDriver.EndCommandBuffer(buffer)
	if err != nil {
		return errors.Wrap(err, "vkEndCommandBuffer")
	}

	_, err = d.deviceDriver.QueueSubmit(d.graphicsQueue, nil,
		core1_0.SubmitInfo{
			CommandBuffers: []core1_0.CommandBuffer{buffer},
		},
	)
	if err != nil {
		return errors.Wrap(err, "vkQueueSubmit")
	}

	_, err = d.deviceDriver.QueueWaitIdle(d.graphicsQueue)
	return errors.Wrap(err, "vkQueueWaitIdle")
}

func fromRect(rect gpu.Rect2D) core1_0.Rect2D {
	return core1_0.Rect2D{
		Offset: core1_0.Offset2D{X: rect.Offset.X, Y: rect.Offset.Y},
		Extent: fromExtent(rect.Extent),
	}
}
