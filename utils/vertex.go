package utils

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
)

type Vertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

var TriangleVertices = []Vertex{
	{Position: mgl32.Vec3{0.5, -0.5, 0}, Color: mgl32.Vec3{1, 0, 0}},
	{Position: mgl32.Vec3{0, 0.5, 0}, Color: mgl32.Vec3{0, 1, 0}},
	{Position: mgl32.Vec3{-0.5, -0.5, 0}, Color: mgl32.Vec3{0, 0, 1}},
}

func getVertexBindingDescription() []core1_0.VertexInputBindingDescription {
	v := Vertex{}
	return []core1_0.VertexInputBindingDescription{
		{
			Binding:   0,
			Stride:    int(unsafe.Sizeof(v)),
			InputRate: core1_0.VertexInputRateVertex,
		},
	}
}

func getVertexAttributeDescriptions() []core1_0.VertexInputAttributeDescription {
	v := Vertex{}
	return []core1_0.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   core1_0.FormatR32G32B32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.Position)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   core1_0.FormatR32G32B32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.Color)),
		},
	}
}

// VertexBuffer is a host visible buffer holding a non-indexed triangle list.
type VertexBuffer struct {
	Buffer      core1_0.Buffer
	Memory      core1_0.DeviceMemory
	VertexCount int
}

func (v *VertexBuffer) Destroy() {
	if v.Buffer != nil {
		v.Buffer.Destroy(nil)
		v.Buffer = nil
	}

	if v.Memory != nil {
		v.Memory.Free(nil)
		v.Memory = nil
	}
}

// findMemoryType returns the first memory type allowed by typeFilter that has every flag
// in properties.
func findMemoryType(memProperties *core1_0.PhysicalDeviceMemoryProperties, typeFilter uint32, properties core1_0.MemoryPropertyFlags) (int, error) {
	for i, memoryType := range memProperties.MemoryTypes {
		typeBit := uint32(1 << i)

		if (typeFilter&typeBit) != 0 && (memoryType.PropertyFlags&properties) == properties {
			return i, nil
		}
	}

	return 0, errors.Newf("failed to find a memory type in 0x%x with properties %s", typeFilter, properties)
}

func writeData(memory core1_0.DeviceMemory, offset int, data any) error {
	bufferSize := binary.Size(data)
	if bufferSize < 0 {
		return errors.Newf("cannot determine the encoded size of %T", data)
	}

	buf := &bytes.Buffer{}
	err := binary.Write(buf, common.ByteOrder, data)
	if err != nil {
		return errors.Wrap(err, "encode data")
	}

	memoryPtr, _, err := memory.Map(offset, bufferSize, 0)
	if err != nil {
		return errors.Wrap(err, "map memory")
	}
	defer memory.Unmap()

	dataBuffer := unsafe.Slice((*byte)(memoryPtr), bufferSize)
	copy(dataBuffer, buf.Bytes())
	return nil
}

// CreateVertexBuffer uploads vertices into a buffer the device reads straight from host
// visible memory.
func CreateVertexBuffer(device core1_0.Device, physicalDevice core1_0.PhysicalDevice, vertices []Vertex) (*VertexBuffer, error) {
	if len(vertices) == 0 {
		return nil, errors.New("no vertices to upload")
	}

	bufferSize := binary.Size(vertices)
	result := &VertexBuffer{VertexCount: len(vertices)}

	var err error
	result.Buffer, _, err = device.CreateBuffer(nil, core1_0.BufferCreateInfo{
		Size:        bufferSize,
		Usage:       core1_0.BufferUsageVertexBuffer,
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create vertex buffer")
	}

	memRequirements := result.Buffer.MemoryRequirements()
	memoryTypeIndex, err := findMemoryType(physicalDevice.MemoryProperties(), memRequirements.MemoryTypeBits, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		result.Destroy()
		return nil, err
	}

	result.Memory, _, err = device.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		result.Destroy()
		return nil, errors.Wrap(err, "allocate vertex buffer memory")
	}

	_, err = result.Buffer.BindBufferMemory(result.Memory, 0)
	if err != nil {
		result.Destroy()
		return nil, errors.Wrap(err, "bind vertex buffer memory")
	}

	err = writeData(result.Memory, 0, vertices)
	if err != nil {
		result.Destroy()
		return nil, err
	}

	return result, nil
}
