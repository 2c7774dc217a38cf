package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/svke/gpu"
)

func (d *Device) CreateImageView(handle gpu.Image, format gpu.Format, aspect gpu.ImageAspectFlags) (gpu.ImageView, error) {
	image, err := d.images.get(gpu.Handle(handle))
	if err != nil {
		return 0, err
	}

	imageView, _, err := d.deviceDriver.CreateImageView(nil, core1_0.ImageViewCreateInfo{
		Image:    image,
		ViewType: core1_0.ImageViewType2D,
		Format:   core1_0.Format(format),
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     core1_0.ImageAspectFlags(aspect),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	})
	if err != nil {
		return 0, errors.Wrap(err, "vkCreateImageView")
	}

	return gpu.ImageView(d.imageViews.put(imageView)), nil
}

func (d *Device) DestroyImageView(handle gpu.ImageView) {
	view, ok := d.imageViews.take(gpu.Handle(handle))
	if ok {
		d.deviceDriver.DestroyImageView(view, nil)
	}
}

func (d *Device) CreateImage(info gpu.ImageCreateInfo, properties gpu.MemoryPropertyFlags) (gpu.Image, gpu.DeviceMemory, error) {
	image, _, err := d.deviceDriver.CreateImage(nil, core1_0.ImageCreateInfo{
		ImageType: core1_0.ImageType2D,
		Extent: core1_0.Extent3D{
			Width:  info.Extent.Width,
			Height: info.Extent.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        core1_0.Format(info.Format),
		Tiling:        core1_0.ImageTiling(info.Tiling),
		InitialLayout: core1_0.ImageLayoutUndefined,
		Usage:         core1_0.ImageUsageFlags(info.Usage),
		SharingMode:   core1_0.SharingModeExclusive,
		Samples:       core1_0.Samples1,
	})
	if err != nil {
		return 0, 0, errors.Wrap(err, "vkCreateImage")
	}

	memReqs := d.deviceDriver.GetImageMemoryRequirements(image)
	memory, err := d.allocate(memReqs.MemoryTypeBits, memReqs.Size, core1_0.MemoryPropertyFlags(properties))
	if err != nil {
		d.deviceDriver.DestroyImage(image, nil)
		return 0, 0, err
	}

	_, err = d.deviceDriver.BindImageMemory(image, memory, 0)
	if err != nil {
		d.deviceDriver.DestroyImage(image, nil)
		d.deviceDriver.FreeMemory(memory, nil)
		return 0, 0, errors.Wrap(err, "vkBindImageMemory")
	}

	return gpu.Image(d.images.put(image)), gpu.DeviceMemory(d.memories.put(memory)), nil
}

func (d *Device) DestroyImage(handle gpu.Image) {
	image, ok := d.images.take(gpu.Handle(handle))
	if ok {
		d.deviceDriver.DestroyImage(image, nil)
	}
}

func (d *Device) FreeMemory(handle gpu.DeviceMemory) {
	memory, ok := d.memories.take(gpu.Handle(handle))
	if ok {
		d.deviceDriver.FreeMemory(memory, nil)
	}
}

func (d *Device) allocate(typeBits uint32, size int, properties core1_0.MemoryPropertyFlags) (core1_0.DeviceMemory, error) {
	memoryIndex, err := d.FindMemoryType(typeBits, properties)
	if err != nil {
		return core1_0.DeviceMemory{}, err
	}

	memory, _, err := d.deviceDriver.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  size,
		MemoryTypeIndex: memoryIndex,
	})
	if err != nil {
		return core1_0.DeviceMemory{}, errors.Wrap(err, "vkAllocateMemory")
	}

	return memory, nil
}

func (d *Device) FindMemoryType(typeFilter uint32, properties core1_0.MemoryPropertyFlags) (int, error) {
	memProperties := d.instanceDriver.GetPhysicalDeviceMemoryProperties(d.physicalDevice)
	for i, memoryType := range memProperties.MemoryTypes {
		typeBit := uint32(1 << i)

		if (typeFilter&typeBit) != 0 && (memoryType.PropertyFlags&properties) == properties {
			return i, nil
		}
	}

	return 0, errors.Errorf("failed to find any suitable memory type for %s", properties)
}

func (d *Device) CreateRenderPass(description gpu.RenderPassDescription) (gpu.RenderPass, error) {
	renderPass, _, err := d.deviceDriver.CreateRenderPass(nil, core1_0.RenderPassCreateInfo{
		Attachments: []core1_0.AttachmentDescription{
			attachment(description.Color),
			attachment(description.Depth),
		},
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				ColorAttachments: []core1_0.AttachmentReference{
					{
						Attachment: 0,
						Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
					},
				},
				DepthStencilAttachment: &core1_0.AttachmentReference{
					Attachment: 1,
					Layout:     core1_0.ImageLayoutDepthStencilAttachmentOptimal,
				},
			},
		},
		SubpassDependencies: []core1_0.SubpassDependency{
			{
				SrcSubpass: core1_0.SubpassExternal,
				DstSubpass: 0,

				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput | core1_0.PipelineStageEarlyFragmentTests,
				SrcAccessMask: 0,

				DstStageMask:  core1_0.PipelineStageColorAttachmentOutput | core1_0.PipelineStageEarlyFragmentTests,
				DstAccessMask: core1_0.AccessColorAttachmentWrite | core1_0.AccessDepthStencilAttachmentWrite,
			},
		},
	})
	if err != nil {
		return 0, errors.Wrap(err, "vkCreateRenderPass")
	}

	return gpu.RenderPass(d.renderPasses.put(renderPass)), nil
}

func attachment(description gpu.AttachmentDescription) core1_0.AttachmentDescription {
	return core1_0.AttachmentDescription{
		Format:         core1_0.Format(description.Format),
		Samples:        core1_0.Samples1,
		LoadOp:         core1_0.AttachmentLoadOp(description.LoadOp),
		StoreOp:        core1_0.AttachmentStoreOp(description.StoreOp),
		StencilLoadOp:  core1_0.AttachmentLoadOp(description.StencilLoadOp),
		StencilStoreOp: core1_0.AttachmentStoreOp(description.StencilStoreOp),
		InitialLayout:  core1_0.ImageLayout(description.InitialLayout),
		FinalLayout:    core1_0.ImageLayout(description.FinalLayout),
	}
}

func (d *Device) DestroyRenderPass(handle gpu.RenderPass) {
	renderPass, ok := d.renderPasses.take(gpu.Handle(handle))
	if ok {
		d.deviceDriver.DestroyRenderPass(renderPass, nil)
	}
}

// RenderPass resolves a render pass handle for pipeline creation.
func (d *Device) RenderPass(handle gpu.RenderPass) (core1_0.RenderPass, error) {
	return d.renderPasses.get(gpu.Handle(handle))
}

func (d *Device) CreateFramebuffer(info gpu.FramebufferCreateInfo) (gpu.Framebuffer, error) {
	renderPass, err := d.renderPasses.get(gpu.Handle(info.RenderPass))
	if err != nil {
		return 0, err
	}
	attachments, err := d.imageViews.getAll(handlesOf(info.Attachments))
	if err != nil {
		return 0, err
	}

	framebuffer, _, err := d.deviceDriver.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
		RenderPass:  renderPass,
		Layers:      1,
		Attachments: attachments,
		Width:       info.Extent.Width,
		Height:      info.Extent.Height,
	})
	if err != nil {
		return 0, errors.Wrap(err, "vkCreateFramebuffer")
	}

	return gpu.Framebuffer(d.framebuffers.put(framebuffer)), nil
}

func (d *Device) DestroyFramebuffer(handle gpu.Framebuffer) {
	framebuffer, ok := d.framebuffers.take(gpu.Handle(handle))
	if ok {
		d.deviceDriver.DestroyFramebuffer(framebuffer, nil)
	}
}

func (d *Device) CreateSemaphore() (gpu.Semaphore, error) {
	semaphore, _, err := d.deviceDriver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		return 0, errors.Wrap(err, "vkCreateSemaphore")
	}

	return gpu.Semaphore(d.semaphores.put(semaphore)), nil
}

func (d *Device) DestroySemaphore(handle gpu.Semaphore) {
	semaphore, ok := d.semaphores.take(gpu.Handle(handle))
	if ok {
		d.deviceDriver.DestroySemaphore(semaphore, nil)
	}
}

func (d *Device) CreateFence(signaled bool) (gpu.Fence, error) {
	var flags core1_0.FenceCreateFlags
	if signaled {
		flags = core1_0.FenceCreateSignaled
	}

	fence, _, err := d.deviceDriver.CreateFence(nil, core1_0.FenceCreateInfo{
		Flags: flags,
	})
	if err != nil {
		return 0, errors.Wrap(err, "vkCreateFence")
	}

	return gpu.Fence(d.fences.put(fence)), nil
}

func (d *Device) DestroyFence(handle gpu.Fence) {
	fence, ok := d.fences.take(gpu.Handle(handle))
	if ok {
		d.deviceDriver.DestroyFence(fence, nil)
	}
}

func (d *Device) WaitForFences(handles ...gpu.Fence) error {
	fences, err := d.fences.getAll(handlesOf(handles))
	if err != nil {
		return err
	}

	_, err = d.deviceDriver.WaitForFences(true, common.NoTimeout, fences...)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "vkWaitForFences"), gpu.ErrFatal)
	}
	return nil
}

func (d *Device) ResetFences(handles ...gpu.Fence) error {
	fences, err := d.fences.getAll(handlesOf(handles))
	if err != nil {
		return err
	}

	_, err = d.deviceDriver.ResetFences(fences...)
	if err != nil {
		return errors.Wrap(err, "vkResetFences")
	}
	return nil
}
