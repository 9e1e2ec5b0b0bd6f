package utils

import (
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
)

type QueueFamilyIndices struct {
	GraphicsFamily *int
	PresentFamily  *int
}

func (i *QueueFamilyIndices) IsComplete() bool {
	return i.GraphicsFamily != nil && i.PresentFamily != nil
}

// UniqueFamilies lists each family index once, graphics first.
func (i *QueueFamilyIndices) UniqueFamilies() []int {
	families := []int{*i.GraphicsFamily}
	if *i.PresentFamily != *i.GraphicsFamily {
		families = append(families, *i.PresentFamily)
	}
	return families
}

// QueueParameters pairs a queue with the family it was retrieved from.
type QueueParameters struct {
	Handle      core1_0.Queue
	FamilyIndex int
}

// selectQueueFamilies picks the first graphics family and the first present capable
// family.
func selectQueueFamilies(familyFlags []core1_0.QueueFlags, presentSupported func(familyIndex int) (bool, error)) (QueueFamilyIndices, error) {
	indices := QueueFamilyIndices{}

	for familyIdx, flags := range familyFlags {
		if (flags&core1_0.QueueGraphics) != 0 && indices.GraphicsFamily == nil {
			indices.GraphicsFamily = new(int)
			*indices.GraphicsFamily = familyIdx
		}

		supported, err := presentSupported(familyIdx)
		if err != nil {
			return indices, err
		}

		if supported && indices.PresentFamily == nil {
			indices.PresentFamily = new(int)
			*indices.PresentFamily = familyIdx
		}

		if indices.IsComplete() {
			break
		}
	}

	return indices, nil
}

func findQueueFamilies(device core1_0.PhysicalDevice, surface khr_surface.Surface) (QueueFamilyIndices, error) {
	var familyFlags []core1_0.QueueFlags
	for _, queueFamily := range device.QueueFamilyProperties() {
		familyFlags = append(familyFlags, queueFamily.QueueFlags)
	}

	return selectQueueFamilies(familyFlags, func(familyIndex int) (bool, error) {
		supported, _, err := surface.PhysicalDeviceSurfaceSupport(device, familyIndex)
		return supported, err
	})
}
