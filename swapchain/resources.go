package swapchain

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/svke/gpu"
)

func (s *Swapchain) createImageViews() error {
	s.imageViews = make([]gpu.ImageView, len(s.images))
	for i, image := range s.images {
		view, err := s.device.CreateImageView(image, s.imageFormat, gpu.ImageAspectColor)
		if err != nil {
			return errors.Wrapf(err, "failed to create image view %d", i)
		}
		s.imageViews[i] = view
	}

	return nil
}

func (s *Swapchain) createRenderPass() error {
	depthFormat, err := FindDepthFormat(s.device)
	if err != nil {
		return err
	}
	s.depthFormat = depthFormat

	s.renderPass, err = s.device.CreateRenderPass(gpu.RenderPassDescription{
		Color: gpu.AttachmentDescription{
			Format:         s.imageFormat,
			LoadOp:         gpu.AttachmentLoadOpClear,
			StoreOp:        gpu.AttachmentStoreOpStore,
			StencilLoadOp:  gpu.AttachmentLoadOpDontCare,
			StencilStoreOp: gpu.AttachmentStoreOpDontCare,
			InitialLayout:  gpu.ImageLayoutUndefined,
			FinalLayout:    gpu.ImageLayoutPresentSrc,
		},
		Depth: gpu.AttachmentDescription{
			Format:         depthFormat,
			LoadOp:         gpu.AttachmentLoadOpClear,
			StoreOp:        gpu.AttachmentStoreOpDontCare,
			StencilLoadOp:  gpu.AttachmentLoadOpDontCare,
			StencilStoreOp: gpu.AttachmentStoreOpDontCare,
			InitialLayout:  gpu.ImageLayoutUndefined,
			FinalLayout:    gpu.ImageLayoutDepthStencilAttachmentOptimal,
		},
	})
	if err != nil {
		return errors.Wrap(err, "failed to create render pass")
	}

	return nil
}

func (s *Swapchain) createDepthResources() error {
	count := len(s.images)
	s.depthImages = make([]gpu.Image, count)
	s.depthImageMemories = make([]gpu.DeviceMemory, count)
	s.depthImageViews = make([]gpu.ImageView, count)

	for i := 0; i < count; i++ {
		image, memory, err := s.device.CreateImage(gpu.ImageCreateInfo{
			Extent: s.extent,
			Format: s.depthFormat,
			Tiling: gpu.ImageTilingOptimal,
			Usage:  gpu.ImageUsageDepthStencilAttachment,
		}, gpu.MemoryPropertyDeviceLocal)
		if err != nil {
			return errors.Wrapf(err, "failed to create depth image %d", i)
		}
		s.depthImages[i] = image
		s.depthImageMemories[i] = memory

		view, err := s.device.CreateImageView(image, s.depthFormat, gpu.ImageAspectDepth)
		if err != nil {
			return errors.Wrapf(err, "failed to create depth image view %d", i)
		}
		s.depthImageViews[i] = view
	}

	return nil
}

func (s *Swapchain) createFramebuffers() error {
	s.framebuffers = make([]gpu.Framebuffer, len(s.images))
	for i := range s.images {
		framebuffer, err := s.device.CreateFramebuffer(gpu.FramebufferCreateInfo{
			RenderPass:  s.renderPass,
			Attachments: []gpu.ImageView{s.imageViews[i], s.depthImageViews[i]},
			Extent:      s.extent,
		})
		if err != nil {
			return errors.Wrapf(err, "failed to create framebuffer %d", i)
		}
		s.framebuffers[i] = framebuffer
	}

	return nil
}
