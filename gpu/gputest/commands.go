package gputest

import (
	"fmt"

	"github.com/vkngwrapper/svke/gpu"
)

func (d *Device) AllocateCommandBuffers(count int) ([]gpu.CommandBuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("AllocateCommandBuffers"); err != nil {
		return nil, err
	}
	d.allocations++
	buffers := make([]gpu.CommandBuffer, count)
	for i := range buffers {
		buffers[i] = gpu.CommandBuffer(d.create("command buffer"))
	}
	return buffers, nil
}

func (d *Device) FreeCommandBuffers(buffers ...gpu.CommandBuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, buffer := range buffers {
		d.destroy("command buffer", gpu.Handle(buffer))
		delete(d.commandRecording, buffer)
	}
}

func (d *Device) BeginCommandBuffer(buffer gpu.CommandBuffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("BeginCommandBuffer"); err != nil {
		return err
	}
	if d.commandRecording[buffer] {
		d.violations = append(d.violations, fmt.Sprintf("begin of command buffer %d already recording", buffer))
	}
	d.commandRecording[buffer] = true
	d.record(buffer, "begin")
	return nil
}

func (d *Device) EndCommandBuffer(buffer gpu.CommandBuffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("EndCommandBuffer"); err != nil {
		return err
	}
	if !d.commandRecording[buffer] {
		d.violations = append(d.violations, fmt.Sprintf("end of command buffer %d not recording", buffer))
	}
	d.commandRecording[buffer] = false
	d.record(buffer, "end")
	return nil
}

func (d *Device) CmdBeginRenderPass(buffer gpu.CommandBuffer, info gpu.RenderPassBeginInfo) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(buffer, fmt.Sprintf("begin render pass %d framebuffer %d %dx%d clear %v", info.RenderPass, info.Framebuffer, info.RenderArea.Extent.Width, info.RenderArea.Extent.Height, info.ClearColor))
	return nil
}

func (d *Device) CmdEndRenderPass(buffer gpu.CommandBuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(buffer, "end render pass")
}

func (d *Device) CmdSetViewport(buffer gpu.CommandBuffer, viewport gpu.Viewport) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(buffer, fmt.Sprintf("viewport %gx%g", viewport.Width, viewport.Height))
}

func (d *Device) CmdSetScissor(buffer gpu.CommandBuffer, scissor gpu.Rect2D) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(buffer, fmt.Sprintf("scissor %dx%d", scissor.Extent.Width, scissor.Extent.Height))
}

func (d *Device) DeviceWaitIdle() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail("DeviceWaitIdle"); err != nil {
		return err
	}
	d.waitIdles++
	return nil
}

func (d *Device) record(buffer gpu.CommandBuffer, command string) {
	d.commands = append(d.commands, fmt.Sprintf("%d: %s", buffer, command))
}

// Commands returns every recorded command as "<buffer>: <command>".
func (d *Device) Commands() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.commands...)
}

// Allocations counts calls to AllocateCommandBuffers.
func (d *Device) Allocations() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.allocations
}

func (d *Device) WaitIdles() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.waitIdles
}
