package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/svke/gpu"
)

func (d *Device) querySurfaceSupport(device core1_0.PhysicalDevice) (gpu.SurfaceSupport, error) {
	var support gpu.SurfaceSupport

	capabilities, _, err := d.surfaceExtension.GetPhysicalDeviceSurfaceCapabilities(d.surface, device)
	if err != nil {
		return support, errors.Wrap(err, "failed to query surface capabilities")
	}
	support.Capabilities = gpu.SurfaceCapabilities{
		MinImageCount:    capabilities.MinImageCount,
		MaxImageCount:    capabilities.MaxImageCount,
		CurrentExtent:    toExtent(capabilities.CurrentExtent),
		MinImageExtent:   toExtent(capabilities.MinImageExtent),
		MaxImageExtent:   toExtent(capabilities.MaxImageExtent),
		CurrentTransform: gpu.SurfaceTransformFlags(capabilities.CurrentTransform),
	}

	formats, _, err := d.surfaceExtension.GetPhysicalDeviceSurfaceFormats(d.surface, device)
	if err != nil {
		return support, errors.Wrap(err, "failed to query surface formats")
	}
	for _, format := range formats {
		support.Formats = append(support.Formats, gpu.SurfaceFormat{
			Format:     gpu.Format(format.Format),
			ColorSpace: gpu.ColorSpace(format.ColorSpace),
		})
	}

	presentModes, _, err := d.surfaceExtension.GetPhysicalDeviceSurfacePresentModes(d.surface, device)
	if err != nil {
		return support, errors.Wrap(err, "failed to query surface present modes")
	}
	for _, mode := range presentModes {
		support.PresentModes = append(support.PresentModes, gpu.PresentMode(mode))
	}

	return support, nil
}

func (d *Device) SurfaceSupport() (gpu.SurfaceSupport, error) {
	return d.querySurfaceSupport(d.physicalDevice)
}

func (d *Device) FormatProperties(format gpu.Format) gpu.FormatProperties {
	props := d.instanceDriver.GetPhysicalDeviceFormatProperties(d.physicalDevice, core1_0.Format(format))
	return gpu.FormatProperties{
		LinearTilingFeatures:  gpu.FormatFeatureFlags(props.LinearTilingFeatures),
		OptimalTilingFeatures: gpu.FormatFeatureFlags(props.OptimalTilingFeatures),
		BufferFeatures:        gpu.FormatFeatureFlags(props.BufferFeatures),
	}
}

func (d *Device) CreateSwapchain(info gpu.SwapchainCreateInfo) (gpu.Swapchain, error) {
	createInfo := khr_swapchain.SwapchainCreateInfo{
		Surface: d.surface,

		MinImageCount:    info.MinImageCount,
		ImageFormat:      core1_0.Format(info.ImageFormat),
		ImageColorSpace:  khr_surface.ColorSpace(info.ImageColorSpace),
		ImageExtent:      fromExtent(info.ImageExtent),
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageFlags(info.ImageUsage),

		ImageSharingMode:   core1_0.SharingMode(info.ImageSharingMode),
		QueueFamilyIndices: info.QueueFamilyIndices,

		PreTransform:   khr_surface.SurfaceTransformFlags(info.PreTransform),
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    khr_surface.PresentMode(info.PresentMode),
		Clipped:        true,
	}
	if info.OldSwapchain.Initialized() {
		old, err := d.swapchains.get(gpu.Handle(info.OldSwapchain))
		if err != nil {
			return 0, err
		}
		createInfo.OldSwapchain = old
	}

	swapchain, _, err := d.swapchainExtension.CreateSwapchain(nil, createInfo)
	if err != nil {
		return 0, errors.Wrap(err, "vkCreateSwapchainKHR")
	}

	return gpu.Swapchain(d.swapchains.put(swapchain)), nil
}

func (d *Device) SwapchainImages(handle gpu.Swapchain) ([]gpu.Image, error) {
	swapchain, err := d.swapchains.get(gpu.Handle(handle))
	if err != nil {
		return nil, err
	}

	images, _, err := d.swapchainExtension.GetSwapchainImages(swapchain)
	if err != nil {
		return nil, errors.Wrap(err, "vkGetSwapchainImagesKHR")
	}

	result := make([]gpu.Image, len(images))
	for i, image := range images {
		result[i] = gpu.Image(d.images.put(image))
	}
	d.swapchainImages[handle] = append(d.swapchainImages[handle], handlesOf(result)...)

	return result, nil
}

func (d *Device) DestroySwapchain(handle gpu.Swapchain) {
	for _, image := range d.swapchainImages[handle] {
		d.images.take(image)
	}
	delete(d.swapchainImages, handle)

	swapchain, ok := d.swapchains.take(gpu.Handle(handle))
	if ok {
		d.swapchainExtension.DestroySwapchain(swapchain, nil)
	}
}

func (d *Device) AcquireNextImage(handle gpu.Swapchain, signal gpu.Semaphore) (int, gpu.Status, error) {
	swapchain, err := d.swapchains.get(gpu.Handle(handle))
	if err != nil {
		return -1, gpu.StatusFatal, err
	}
	semaphore, err := d.semaphores.get(gpu.Handle(signal))
	if err != nil {
		return -1, gpu.StatusFatal, err
	}

	imageIndex, res, err := d.swapchainExtension.AcquireNextImage(swapchain, common.NoTimeout, &semaphore, nil)
	status, err := presentStatus(res, err)
	return imageIndex, status, err
}

func (d *Device) QueuePresent(info gpu.PresentInfo) (gpu.Status, error) {
	swapchain, err := d.swapchains.get(gpu.Handle(info.Swapchain))
	if err != nil {
		return gpu.StatusFatal, err
	}
	waitSemaphores, err := d.semaphores.getAll(handlesOf(info.WaitSemaphores))
	if err != nil {
		return gpu.StatusFatal, err
	}

	res, err := d.swapchainExtension.QueuePresent(d.presentQueue, khr_swapchain.PresentInfo{
		WaitSemaphores: waitSemaphores,
		Swapchains:     []khr_swapchain.Swapchain{swapchain},
		ImageIndices:   []int{info.ImageIndex},
	})
	return presentStatus(res, err)
}

func presentStatus(res common.VkResult, err error) (gpu.Status, error) {
	switch {
	case res == khr_swapchain.VKErrorOutOfDate:
		return gpu.StatusOutOfDate, nil
	case res == khr_swapchain.VKSuboptimal:
		return gpu.StatusSuboptimal, nil
	case err != nil:
		return gpu.StatusFatal, errors.Mark(err, gpu.ErrFatal)
	}
	return gpu.StatusOK, nil
}

func toExtent(extent core1_0.Extent2D) gpu.Extent2D {
	return gpu.Extent2D{Width: extent.Width, Height: extent.Height}
}

func fromExtent(extent gpu.Extent2D) core1_0.Extent2D {
	return core1_0.Extent2D{Width: extent.Width, Height: extent.Height}
}
