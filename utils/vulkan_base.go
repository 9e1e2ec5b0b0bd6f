package utils

import (
	"fmt"
	"log"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/ext_debug_utils"
	"github.com/vkngwrapper/extensions/khr_portability_subset"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2"
)

var deviceExtensions = []string{khr_swapchain.ExtensionName}

// VulkanBase owns the instance, device, queues and swapchain that a sample renders with.
type VulkanBase struct {
	window  *Window
	options Options

	loader         core.Loader
	instance       core1_0.Instance
	debugMessenger ext_debug_utils.DebugUtilsMessenger
	surface        khr_surface.Surface

	physicalDevice core1_0.PhysicalDevice
	device         core1_0.Device

	graphicsQueue QueueParameters
	presentQueue  QueueParameters

	swapchainExtension khr_swapchain.Extension
	swapchain          SwapchainParameters
}

func (b *VulkanBase) Device() core1_0.Device                 { return b.device }
func (b *VulkanBase) PhysicalDevice() core1_0.PhysicalDevice { return b.physicalDevice }
func (b *VulkanBase) GraphicsQueue() QueueParameters         { return b.graphicsQueue }
func (b *VulkanBase) PresentQueue() QueueParameters          { return b.presentQueue }
func (b *VulkanBase) SwapchainExtension() khr_swapchain.Extension {
	return b.swapchainExtension
}
func (b *VulkanBase) Swapchain() SwapchainParameters { return b.swapchain }

// PrepareVulkan runs every step between window creation and the first object a sample
// builds itself.
func (b *VulkanBase) PrepareVulkan(window *Window, options Options) error {
	b.window = window
	b.options = options

	var err error
	b.loader, err = core.CreateLoaderFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return errors.Wrap(err, "create vulkan loader")
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"CreateInstance", b.createInstance},
		{"SetupDebugMessenger", b.setupDebugMessenger},
		{"CreateSurface", b.createSurface},
		{"PickPhysicalDevice", b.pickPhysicalDevice},
		{"CreateLogicalDevice", b.createLogicalDevice},
		{"CreateSwapchain", b.createSwapchain},
	}
	for _, step := range steps {
		log.Println(step.name)
		if err := step.run(); err != nil {
			return err
		}
	}

	return nil
}

func (b *VulkanBase) createInstance() error {
	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:    "Hello Triangle",
		ApplicationVersion: common.CreateVersion(1, 0, 0),
		EngineName:         "No Engine",
		EngineVersion:      common.CreateVersion(1, 0, 0),
		APIVersion:         common.Vulkan1_0,
	}

	// Add extensions
	extensions, _, err := b.loader.AvailableExtensions()
	if err != nil {
		return errors.Wrap(err, "enumerate instance extensions")
	}

	available := make(map[string]bool, len(extensions))
	for name := range extensions {
		available[name] = true
	}

	instanceOptions.EnabledExtensionNames, instanceOptions.Flags, err = selectInstanceExtensions(
		b.window.SDLWindow().VulkanGetInstanceExtensions(), available, b.options.Validation)
	if err != nil {
		return err
	}

	// Add layers
	if b.options.Validation {
		layers, _, err := b.loader.AvailableLayers()
		if err != nil {
			return errors.Wrap(err, "enumerate instance layers")
		}

		for _, layer := range ValidationLayers {
			_, hasValidation := layers[layer]
			if !hasValidation {
				return errors.Newf("createInstance: cannot add validation- layer %s not available- install LunarG Vulkan SDK or pass --no-validation", layer)
			}
			instanceOptions.EnabledLayerNames = append(instanceOptions.EnabledLayerNames, layer)
		}

		// Instance creation and destruction are covered by chaining the messenger options
		instanceOptions.Next = debugMessengerOptions()
	}

	b.instance, _, err = b.loader.CreateInstance(nil, instanceOptions)
	if err != nil {
		return errors.Wrap(err, "create instance")
	}

	return nil
}

// selectInstanceExtensions returns the instance extensions to enable along with the
// creation flags they require. Portability enumeration is only added when available.
func selectInstanceExtensions(windowExtensions []string, available map[string]bool, validation bool) ([]string, core1_0.InstanceCreateFlags, error) {
	var names []string
	var flags core1_0.InstanceCreateFlags

	for _, ext := range windowExtensions {
		if !available[ext] {
			return nil, 0, errors.Newf("createInstance: cannot initialize sdl: missing extension %s", ext)
		}
		names = append(names, ext)
	}

	if validation {
		if !available[ext_debug_utils.ExtensionName] {
			return nil, 0, errors.Newf("createInstance: cannot add validation- missing extension %s", ext_debug_utils.ExtensionName)
		}
		names = append(names, ext_debug_utils.ExtensionName)
	}

	if available[portabilityEnumerationExtensionName] {
		names = append(names, portabilityEnumerationExtensionName)
		flags |= instanceCreateEnumeratePortability
	}

	return names, flags, nil
}

func debugMessengerOptions() ext_debug_utils.DebugUtilsMessengerCreateInfo {
	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.SeverityError | ext_debug_utils.SeverityWarning,
		MessageType:     ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
		UserCallback:    logDebug,
	}
}

func logDebug(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
	log.Printf("[%s %s] - %s", severity, msgType, data.Message)
	return false
}

func (b *VulkanBase) setupDebugMessenger() error {
	if !b.options.Validation {
		return nil
	}

	var err error
	debugExtension := ext_debug_utils.CreateExtensionFromInstance(b.instance)
	b.debugMessenger, _, err = debugExtension.CreateDebugUtilsMessenger(b.instance, nil, debugMessengerOptions())
	if err != nil {
		return errors.Wrap(err, "create debug messenger")
	}

	return nil
}

func (b *VulkanBase) createSurface() error {
	surfaceExtension := khr_surface.CreateExtensionFromInstance(b.instance)

	surface, err := vkng_sdl2.CreateSurface(b.instance, surfaceExtension, b.window.SDLWindow())
	if err != nil {
		return errors.Wrap(err, "create window surface")
	}

	b.surface = surface
	return nil
}

func (b *VulkanBase) pickPhysicalDevice() error {
	physicalDevices, _, err := b.instance.EnumeratePhysicalDevices()
	if err != nil {
		return errors.Wrap(err, "enumerate physical devices")
	}

	for _, device := range physicalDevices {
		if b.isDeviceSuitable(device) {
			b.physicalDevice = device
			break
		}
	}

	if b.physicalDevice == nil {
		return errors.Newf("failed to find a suitable GPU among %d devices", len(physicalDevices))
	}

	properties, err := b.physicalDevice.Properties()
	if err != nil {
		return errors.Wrap(err, "read physical device properties")
	}
	log.Printf("Using %s", describeDevice(properties.DriverName, properties.VendorID, properties.DeviceID))

	return nil
}

func describeDevice(name string, vendorID, deviceID uint32) string {
	return fmt.Sprintf("%s (vendor 0x%04x, device 0x%04x)", name, vendorID, deviceID)
}

func (b *VulkanBase) isDeviceSuitable(device core1_0.PhysicalDevice) bool {
	indices, err := findQueueFamilies(device, b.surface)
	if err != nil {
		return false
	}

	if !checkDeviceExtensionSupport(device) {
		return false
	}

	swapChainSupport, err := b.querySwapChainSupport(device)
	if err != nil {
		return false
	}

	return indices.IsComplete() && swapChainSupport.Adequate()
}

func checkDeviceExtensionSupport(device core1_0.PhysicalDevice) bool {
	extensions, _, err := device.EnumerateDeviceExtensionProperties()
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

func (b *VulkanBase) createLogicalDevice() error {
	indices, err := findQueueFamilies(b.physicalDevice, b.surface)
	if err != nil {
		return errors.Wrap(err, "find queue families")
	}

	var queueFamilyOptions []core1_0.DeviceQueueCreateInfo
	queuePriority := float32(1.0)
	for _, queueFamily := range indices.UniqueFamilies() {
		queueFamilyOptions = append(queueFamilyOptions, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: queueFamily,
			QueuePriorities:  []float32{queuePriority},
		})
	}

	var extensionNames []string
	extensionNames = append(extensionNames, deviceExtensions...)

	// Makes the samples run on portability implementations such as MoltenVK
	extensions, _, err := b.physicalDevice.EnumerateDeviceExtensionProperties()
	if err != nil {
		return errors.Wrap(err, "enumerate device extensions")
	}

	_, supported := extensions[khr_portability_subset.ExtensionName]
	if supported {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	b.device, _, err = b.physicalDevice.CreateDevice(nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queueFamilyOptions,
		EnabledExtensionNames: extensionNames,
	})
	if err != nil {
		return errors.Wrap(err, "create logical device")
	}

	b.graphicsQueue = QueueParameters{
		Handle:      b.device.GetQueue(*indices.GraphicsFamily, 0),
		FamilyIndex: *indices.GraphicsFamily,
	}
	b.presentQueue = QueueParameters{
		Handle:      b.device.GetQueue(*indices.PresentFamily, 0),
		FamilyIndex: *indices.PresentFamily,
	}
	b.swapchainExtension = khr_swapchain.CreateExtensionFromDevice(b.device)

	return nil
}

// CanRender reports whether a swapchain can currently be built for the window.
func (b *VulkanBase) CanRender() bool {
	width, height := b.window.DrawableSize()
	return width > 0 && height > 0 && !b.window.Minimized()
}

// RecreateSwapchain rebuilds the swapchain and its views for the current window size. It
// returns false and leaves everything untouched when the window has no drawable area.
func (b *VulkanBase) RecreateSwapchain() (bool, error) {
	if !b.CanRender() {
		return false, nil
	}

	_, err := b.device.WaitIdle()
	if err != nil {
		return false, errors.Wrap(err, "wait for device idle")
	}

	b.cleanupSwapchain()

	err = b.createSwapchain()
	if err != nil {
		return false, err
	}

	return true, nil
}

// Destroy releases everything PrepareVulkan created, in reverse order. Objects built on
// top of the device must already be gone.
func (b *VulkanBase) Destroy() {
	if b.device != nil {
		b.device.WaitIdle()
		b.cleanupSwapchain()
		b.device.Destroy(nil)
		b.device = nil
	}

	if b.surface != nil {
		b.surface.Destroy(nil)
		b.surface = nil
	}

	if b.debugMessenger != nil {
		b.debugMessenger.Destroy(nil)
		b.debugMessenger = nil
	}

	if b.instance != nil {
		b.instance.Destroy(nil)
		b.instance = nil
	}
}
