package utils

import (
	"time"

	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 600

	PreferredSurfaceFormat     = core1_0.FormatB8G8R8A8SRGB
	PreferredSurfaceColorSpace = khr_surface.ColorSpaceSRGBNonlinear
	PreferredPresentMode       = khr_surface.PresentModeMailbox

	DefaultStatsInterval = 5 * time.Second
	DefaultShaderDir     = "shaders"
)

// VK_KHR_portability_enumeration is newer than the extension packages this module builds
// against, so its name and instance flag are spelled out here.
const (
	portabilityEnumerationExtensionName = "VK_KHR_portability_enumeration"
	instanceCreateEnumeratePortability  = core1_0.InstanceCreateFlags(0x1)
)

var ValidationLayers = []string{"VK_LAYER_KHRONOS_validation"}

// ClearColor is the background of every frame.
var ClearColor = core1_0.ClearValueFloat{0.2, 0.3, 0.3, 1.0}
