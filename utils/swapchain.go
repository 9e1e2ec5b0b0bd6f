package utils

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"
)

type SwapChainSupportDetails struct {
	Capabilities *khr_surface.SurfaceCapabilities
	Formats      []khr_surface.SurfaceFormat
	PresentModes []khr_surface.PresentMode
}

func (d SwapChainSupportDetails) Adequate() bool {
	return len(d.Formats) > 0 && len(d.PresentModes) > 0
}

// SwapchainParameters is the state downstream objects are built against.
type SwapchainParameters struct {
	Handle khr_swapchain.Swapchain
	Format core1_0.Format
	Extent core1_0.Extent2D
	Images []core1_0.Image
	Views  []core1_0.ImageView
}

func chooseSwapSurfaceFormat(availableFormats []khr_surface.SurfaceFormat) khr_surface.SurfaceFormat {
	for _, format := range availableFormats {
		if format.Format == PreferredSurfaceFormat && format.ColorSpace == PreferredSurfaceColorSpace {
			return format
		}
	}

	return availableFormats[0]
}

func chooseSwapPresentMode(availablePresentModes []khr_surface.PresentMode) khr_surface.PresentMode {
	for _, presentMode := range availablePresentModes {
		if presentMode == PreferredPresentMode {
			return presentMode
		}
	}

	return khr_surface.PresentModeFIFO
}

// chooseSwapExtent uses the surface's current extent unless the surface leaves it up to
// the application, in which case the drawable size is clamped to what the surface allows.
func chooseSwapExtent(capabilities *khr_surface.SurfaceCapabilities, drawableWidth, drawableHeight int) core1_0.Extent2D {
	if capabilities.CurrentExtent.Width != -1 {
		return capabilities.CurrentExtent
	}

	width := clamp(drawableWidth, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width)
	height := clamp(drawableHeight, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height)

	return core1_0.Extent2D{Width: width, Height: height}
}

func chooseImageCount(capabilities *khr_surface.SurfaceCapabilities) int {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && capabilities.MaxImageCount < imageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func (b *VulkanBase) querySwapChainSupport(device core1_0.PhysicalDevice) (SwapChainSupportDetails, error) {
	var details SwapChainSupportDetails
	var err error

	details.Capabilities, _, err = b.surface.PhysicalDeviceSurfaceCapabilities(device)
	if err != nil {
		return details, err
	}

	details.Formats, _, err = b.surface.PhysicalDeviceSurfaceFormats(device)
	if err != nil {
		return details, err
	}

	details.PresentModes, _, err = b.surface.PhysicalDeviceSurfacePresentModes(device)
	return details, err
}

func (b *VulkanBase) createSwapchain() error {
	swapchainSupport, err := b.querySwapChainSupport(b.physicalDevice)
	if err != nil {
		return errors.Wrap(err, "query swapchain support")
	}
	if !swapchainSupport.Adequate() {
		return errors.New("surface reports no formats or present modes")
	}

	drawableWidth, drawableHeight := b.window.DrawableSize()
	surfaceFormat := chooseSwapSurfaceFormat(swapchainSupport.Formats)
	presentMode := chooseSwapPresentMode(swapchainSupport.PresentModes)
	extent := chooseSwapExtent(swapchainSupport.Capabilities, drawableWidth, drawableHeight)

	sharingMode := core1_0.SharingModeExclusive
	var queueFamilyIndices []int
	if b.graphicsQueue.FamilyIndex != b.presentQueue.FamilyIndex {
		sharingMode = core1_0.SharingModeConcurrent
		queueFamilyIndices = append(queueFamilyIndices, b.graphicsQueue.FamilyIndex, b.presentQueue.FamilyIndex)
	}

	swapchain, _, err := b.swapchainExtension.CreateSwapchain(b.device, nil, khr_swapchain.SwapchainCreateInfo{
		Surface: b.surface,

		MinImageCount:    chooseImageCount(swapchainSupport.Capabilities),
		ImageFormat:      surfaceFormat.Format,
		ImageColorSpace:  surfaceFormat.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode:   sharingMode,
		QueueFamilyIndices: queueFamilyIndices,

		PreTransform:   swapchainSupport.Capabilities.CurrentTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    presentMode,
		Clipped:        true,
	})
	if err != nil {
		return errors.Wrap(err, "create swapchain")
	}

	b.swapchain = SwapchainParameters{
		Handle: swapchain,
		Format: surfaceFormat.Format,
		Extent: extent,
	}

	return b.createImageViews()
}

func (b *VulkanBase) createImageViews() error {
	images, _, err := b.swapchain.Handle.SwapchainImages()
	if err != nil {
		return errors.Wrap(err, "get swapchain images")
	}
	b.swapchain.Images = images

	for _, image := range images {
		view, _, err := b.device.CreateImageView(nil, core1_0.ImageViewCreateInfo{
			Image:    image,
			ViewType: core1_0.ImageViewType2D,
			Format:   b.swapchain.Format,
			SubresourceRange: core1_0.ImageSubresourceRange{
				AspectMask:     core1_0.ImageAspectColor,
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		})
		if err != nil {
			return errors.Wrap(err, "create swapchain image view")
		}

		b.swapchain.Views = append(b.swapchain.Views, view)
	}

	return nil
}

func (b *VulkanBase) cleanupSwapchain() {
	for _, view := range b.swapchain.Views {
		view.Destroy(nil)
	}

	if b.swapchain.Handle != nil {
		b.swapchain.Handle.Destroy(nil)
	}

	b.swapchain = SwapchainParameters{}
}
