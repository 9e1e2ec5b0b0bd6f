package utils

import (
	"strings"
	"testing"

	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/ext_debug_utils"
)

var sdlSurfaceExtensions = []string{"VK_KHR_surface", "VK_KHR_xlib_surface"}

func availableExtensions(names ...string) map[string]bool {
	available := make(map[string]bool)
	for _, name := range names {
		available[name] = true
	}
	return available
}

func TestSelectInstanceExtensions(t *testing.T) {
	available := availableExtensions("VK_KHR_surface", "VK_KHR_xlib_surface", ext_debug_utils.ExtensionName)

	names, flags, err := selectInstanceExtensions(sdlSurfaceExtensions, available, true)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	expected := []string{"VK_KHR_surface", "VK_KHR_xlib_surface", ext_debug_utils.ExtensionName}
	if strings.Join(names, ",") != strings.Join(expected, ",") {
		t.Errorf("expected %v, got %v", expected, names)
	}
	if flags != 0 {
		t.Errorf("expected no creation flags without portability enumeration, got %d", flags)
	}

	names, _, err = selectInstanceExtensions(sdlSurfaceExtensions, available, false)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if len(names) != 2 {
		t.Errorf("debug utils should only be enabled with validation, got %v", names)
	}
}

func TestSelectInstanceExtensionsPortability(t *testing.T) {
	available := availableExtensions("VK_KHR_surface", "VK_KHR_xlib_surface", "VK_KHR_portability_enumeration")

	names, flags, err := selectInstanceExtensions(sdlSurfaceExtensions, available, false)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if names[len(names)-1] != "VK_KHR_portability_enumeration" {
		t.Errorf("expected portability enumeration to be enabled, got %v", names)
	}
	if flags&instanceCreateEnumeratePortability == 0 {
		t.Error("expected the enumerate portability creation flag")
	}
}

func TestSelectInstanceExtensionsMissing(t *testing.T) {
	_, _, err := selectInstanceExtensions(sdlSurfaceExtensions, availableExtensions("VK_KHR_surface"), false)
	if err == nil || !strings.Contains(err.Error(), "VK_KHR_xlib_surface") {
		t.Errorf("expected an error naming the missing window extension, got %v", err)
	}

	_, _, err = selectInstanceExtensions(sdlSurfaceExtensions, availableExtensions(sdlSurfaceExtensions...), true)
	if err == nil || !strings.Contains(err.Error(), ext_debug_utils.ExtensionName) {
		t.Errorf("expected an error naming %s, got %v", ext_debug_utils.ExtensionName, err)
	}
}

func TestDescribeDevice(t *testing.T) {
	properties := core1_0.PhysicalDeviceProperties{
		DriverName: "llvmpipe (LLVM 15.0.7, 256 bits)",
		VendorID:   0x10005,
		DeviceID:   0,
	}
	description := describeDevice(properties.DriverName, properties.VendorID, properties.DeviceID)

	expected := "llvmpipe (LLVM 15.0.7, 256 bits) (vendor 0x10005, device 0x0000)"
	if description != expected {
		t.Errorf("expected %q, got %q", expected, description)
	}
}
