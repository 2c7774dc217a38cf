// Package vulkan implements the engine's device contract on top of
// vkngwrapper: instance and device setup, presentation, resource creation and
// command recording.
package vulkan

import (
	"log"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/v3/khr_portability_subset"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/svke/gpu"
	"github.com/vkngwrapper/svke/renderer"
)

var _ renderer.Device = (*Device)(nil)

var validationLayers = []string{"VK_LAYER_KHRONOS_validation"}
var deviceExtensions = []string{khr_swapchain.ExtensionName}

// ErrNoSuitableDevice is returned when no physical device can render to the
// window surface.
var ErrNoSuitableDevice = errors.New("failed to find a suitable GPU")

// Surface is the window-system side of device creation.
type Surface interface {
	ProcAddr() unsafe.Pointer
	InstanceExtensions() []string
	CreateSurface(instance core1_0.Instance, surfaceExtension khr_surface.ExtensionDriver) (khr_surface.Surface, error)
}

type Options struct {
	ApplicationName  string
	EnableValidation bool
	Verbose          bool
}

type Device struct {
	opts Options

	globalDriver   core1_0.GlobalDriver
	instanceDriver core1_0.CoreInstanceDriver
	deviceDriver   core1_0.CoreDeviceDriver

	debugDriver        ext_debug_utils.ExtensionDriver
	debugMessenger     ext_debug_utils.DebugUtilsMessenger
	surfaceExtension   khr_surface.ExtensionDriver
	surface            khr_surface.Surface
	swapchainExtension khr_swapchain.ExtensionDriver

	physicalDevice core1_0.PhysicalDevice
	properties     *core1_0.PhysicalDeviceProperties
	families       gpu.QueueFamilyIndices
	graphicsQueue  core1_0.Queue
	presentQueue   core1_0.Queue
	commandPool    core1_0.CommandPool

	space          *handleSpace
	images         *table[core1_0.Image]
	imageViews     *table[core1_0.ImageView]
	memories       *table[core1_0.DeviceMemory]
	renderPasses   *table[core1_0.RenderPass]
	framebuffers   *table[core1_0.Framebuffer]
	semaphores     *table[core1_0.Semaphore]
	fences         *table[core1_0.Fence]
	commandBuffers *table[core1_0.CommandBuffer]
	swapchains     *table[khr_swapchain.Swapchain]
	// Images handed out by each swapchain; dropped from the image table, not
	// destroyed, when the swapchain goes away.
	swapchainImages map[gpu.Swapchain][]gpu.Handle
}

// New creates the instance, the presentation surface, the logical device and
// a resettable command pool on the graphics queue family.
func New(surface Surface, opts Options) (*Device, error) {
	space := &handleSpace{}
	d := &Device{
		opts:            opts,
		space:           space,
		images:          newTable[core1_0.Image](space, "image"),
		imageViews:      newTable[core1_0.ImageView](space, "image view"),
		memories:        newTable[core1_0.DeviceMemory](space, "device memory"),
		renderPasses:    newTable[core1_0.RenderPass](space, "render pass"),
		framebuffers:    newTable[core1_0.Framebuffer](space, "framebuffer"),
		semaphores:      newTable[core1_0.Semaphore](space, "semaphore"),
		fences:          newTable[core1_0.Fence](space, "fence"),
		commandBuffers:  newTable[core1_0.CommandBuffer](space, "command buffer"),
		swapchains:      newTable[khr_swapchain.Swapchain](space, "swapchain"),
		swapchainImages: make(map[gpu.Swapchain][]gpu.Handle),
	}

	var err error
	d.globalDriver, err = core.CreateDriverFromProcAddr(surface.ProcAddr())
	if err != nil {
		return nil, errors.Wrap(err, "failed to load vulkan")
	}

	err = d.init(surface)
	if err != nil {
		d.Destroy()
		return nil, err
	}

	return d, nil
}

func (d *Device) init(surface Surface) error {
	err := d.createInstance(surface.InstanceExtensions())
	if err != nil {
		return err
	}

	err = d.setupDebugMessenger()
	if err != nil {
		return err
	}

	d.surfaceExtension = khr_surface.CreateExtensionDriverFromCoreDriver(d.instanceDriver)
	d.surface, err = surface.CreateSurface(d.instanceDriver.Instance(), d.surfaceExtension)
	if err != nil {
		return errors.Wrap(err, "failed to create window surface")
	}

	err = d.pickPhysicalDevice()
	if err != nil {
		return err
	}

	err = d.createLogicalDevice()
	if err != nil {
		return err
	}

	return d.createCommandPool()
}

func (d *Device) createInstance(windowExtensions []string) error {
	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:    d.opts.ApplicationName,
		ApplicationVersion: common.CreateVersion(1, 0, 0),
		EngineName:         "svke",
		EngineVersion:      common.CreateVersion(1, 0, 0),
		APIVersion:         common.Vulkan1_2,
	}

	extensions, _, err := d.globalDriver.AvailableExtensions()
	if err != nil {
		return errors.Wrap(err, "failed to enumerate instance extensions")
	}

	for _, ext := range windowExtensions {
		_, hasExt := extensions[ext]
		if !hasExt {
			return errors.Errorf("createInstance: missing window extension %s", ext)
		}
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, ext)
	}

	if d.opts.EnableValidation {
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, ext_debug_utils.ExtensionName)
	}

	_, enumerationSupported := extensions[khr_portability_enumeration.ExtensionName]
	if enumerationSupported {
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, khr_portability_enumeration.ExtensionName)
		instanceOptions.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	if d.opts.EnableValidation {
		layers, _, err := d.globalDriver.AvailableLayers()
		if err != nil {
			return errors.Wrap(err, "failed to enumerate instance layers")
		}

		for _, layer := range validationLayers {
			_, hasValidation := layers[layer]
			if !hasValidation {
				return errors.Errorf("createInstance: cannot add validation layer %s, install the LunarG Vulkan SDK", layer)
			}
			instanceOptions.EnabledLayerNames = append(instanceOptions.EnabledLayerNames, layer)
		}

		instanceOptions.Next = d.debugMessengerOptions()
	}

	d.instanceDriver, _, err = d.globalDriver.CreateInstance(nil, instanceOptions)
	if err != nil {
		return errors.Wrap(err, "failed to create instance")
	}

	return nil
}

func (d *Device) pickPhysicalDevice() error {
	physicalDevices, _, err := d.instanceDriver.EnumeratePhysicalDevices()
	if err != nil {
		return errors.Wrap(err, "failed to enumerate physical devices")
	}

	for _, device := range physicalDevices {
		families, ok := d.isDeviceSuitable(device)
		if ok {
			d.physicalDevice = device
			d.families = families
			break
		}
	}

	if !d.physicalDevice.Initialized() {
		return ErrNoSuitableDevice
	}

	d.properties, err = d.instanceDriver.GetPhysicalDeviceProperties(d.physicalDevice)
	if err != nil {
		return errors.Wrap(err, "failed to read physical device properties")
	}
	if d.opts.Verbose {
		log.Printf("vulkan: using physical device %s", d.properties.DeviceName)
	}

	return nil
}

func (d *Device) isDeviceSuitable(device core1_0.PhysicalDevice) (gpu.QueueFamilyIndices, bool) {
	families, complete, err := d.findQueueFamilies(device)
	if err != nil || !complete {
		return families, false
	}

	if !d.checkDeviceExtensionSupport(device) {
		return families, false
	}

	support, err := d.querySurfaceSupport(device)
	if err != nil {
		return families, false
	}

	return families, canPresent(support)
}

// canPresent reports whether a surface offers at least one format and one
// present mode. No optional device features are required.
func canPresent(support gpu.SurfaceSupport) bool {
	return len(support.Formats) > 0 && len(support.PresentModes) > 0
}

func (d *Device) checkDeviceExtensionSupport(device core1_0.PhysicalDevice) bool {
	extensions, _, err := d.instanceDriver.EnumerateDeviceExtensionProperties(device)
	if err != nil {
		return false
	}

	for _, extension := range deviceExtensions {
		_, hasExtension := extensions[extension]
		if !hasExtension {
			return false
		}
	}

	return true
}

func (d *Device) findQueueFamilies(device core1_0.PhysicalDevice) (gpu.QueueFamilyIndices, bool, error) {
	var graphicsFamily, presentFamily *int
	queueFamilies := d.instanceDriver.GetPhysicalDeviceQueueFamilyProperties(device)

	for queueFamilyIdx, queueFamily := range queueFamilies {
		if (queueFamily.QueueFlags & core1_0.QueueGraphics) != 0 {
			graphicsFamily = new(int)
			*graphicsFamily = queueFamilyIdx
		}

		supported, _, err := d.surfaceExtension.GetPhysicalDeviceSurfaceSupport(d.surface, device, queueFamilyIdx)
		if err != nil {
			return gpu.QueueFamilyIndices{}, false, err
		}

		if supported {
			presentFamily = new(int)
			*presentFamily = queueFamilyIdx
		}

		if graphicsFamily != nil && presentFamily != nil {
			return gpu.QueueFamilyIndices{Graphics: *graphicsFamily, Present: *presentFamily}, true, nil
		}
	}

	return gpu.QueueFamilyIndices{}, false, nil
}

func (d *Device) createLogicalDevice() error {
	uniqueQueueFamilies := []int{d.families.Graphics}
	if !d.families.Shared() {
		uniqueQueueFamilies = append(uniqueQueueFamilies, d.families.Present)
	}

	var queueFamilyOptions []core1_0.DeviceQueueCreateInfo
	queuePriority := float32(1.0)
	for _, queueFamily := range uniqueQueueFamilies {
		queueFamilyOptions = append(queueFamilyOptions, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: queueFamily,
			QueuePriorities:  []float32{queuePriority},
		})
	}

	var extensionNames []string
	extensionNames = append(extensionNames, deviceExtensions...)

	// Needed to run on top of portability implementations such as MoltenVK
	extensions, _, err := d.instanceDriver.EnumerateDeviceExtensionProperties(d.physicalDevice)
	if err != nil {
		return errors.Wrap(err, "failed to enumerate device extensions")
	}

	_, supported := extensions[khr_portability_subset.ExtensionName]
	if supported {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	d.deviceDriver, _, err = d.instanceDriver.CreateDevice(d.physicalDevice, nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queueFamilyOptions,
		EnabledExtensionNames: extensionNames,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create logical device")
	}

	d.graphicsQueue = d.deviceDriver.GetQueue(d.families.Graphics, 0)
	d.presentQueue = d.deviceDriver.GetQueue(d.families.Present, 0)
	d.swapchainExtension = khr_swapchain.CreateExtensionDriverFromCoreDriver(d.deviceDriver)
	return nil
}

func (d *Device) createCommandPool() error {
	pool, _, err := d.deviceDriver.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		Flags:            core1_0.CommandPoolCreateTransient | core1_0.CommandPoolCreateResetBuffer,
		QueueFamilyIndex: d.families.Graphics,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create command pool")
	}
	d.commandPool = pool

	return nil
}

// Destroy tears the device down. Every object created through it must
// already be destroyed.
func (d *Device) Destroy() {
	if d.opts.Verbose {
		for kind, count := range d.liveObjects() {
			log.Printf("vulkan: %d %s objects still alive at shutdown", count, kind)
		}
	}

	if d.commandPool.Initialized() {
		d.deviceDriver.DestroyCommandPool(d.commandPool, nil)
	}

	if d.deviceDriver != nil {
		d.deviceDriver.DestroyDevice(nil)
	}

	if d.debugMessenger.Initialized() {
		d.debugDriver.DestroyDebugUtilsMessenger(d.debugMessenger, nil)
	}

	if d.surface.Initialized() {
		d.surfaceExtension.DestroySurface(d.surface, nil)
	}

	if d.instanceDriver != nil {
		d.instanceDriver.DestroyInstance(nil)
	}
}

func (d *Device) liveObjects() map[string]int {
	live := map[string]int{
		"image view":     d.imageViews.len(),
		"device memory":  d.memories.len(),
		"render pass":    d.renderPasses.len(),
		"framebuffer":    d.framebuffers.len(),
		"semaphore":      d.semaphores.len(),
		"fence":          d.fences.len(),
		"command buffer": d.commandBuffers.len(),
		"swapchain":      d.swapchains.len(),
	}
	for kind, count := range live {
		if count == 0 {
			delete(live, kind)
		}
	}
	return live
}

// Driver exposes the device driver to pipeline and buffer code.
func (d *Device) Driver() core1_0.CoreDeviceDriver {
	return d.deviceDriver
}

func (d *Device) QueueFamilies() gpu.QueueFamilyIndices {
	return d.families
}

// PipelineCacheIdentity returns the values a pipeline cache header must
// carry to be accepted by this device.
func (d *Device) PipelineCacheIdentity() (vendorID, deviceID uint32, cacheUUID uuid.UUID) {
	return d.properties.VendorID, d.properties.DeviceID, d.properties.PipelineCacheUUID
}

func (d *Device) DeviceWaitIdle() error {
	_, err := d.deviceDriver.DeviceWaitIdle()
	if err != nil {
		return errors.Mark(errors.Wrap(err, "failed to wait for device idle"), gpu.ErrFatal)
	}
	return nil
}
