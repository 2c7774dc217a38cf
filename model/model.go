// Package model uploads meshes to device-local buffers and records the
// commands that draw them.
package model

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/svke/gpu"
	"github.com/vkngwrapper/svke/mesh"
	"github.com/vkngwrapper/svke/vulkan"
)

func BindingDescriptions() []core1_0.VertexInputBindingDescription {
	v := mesh.Vertex{}
	return []core1_0.VertexInputBindingDescription{
		{
			Binding:   0,
			Stride:    int(unsafe.Sizeof(v)),
			InputRate: core1_0.VertexInputRateVertex,
		},
	}
}

func AttributeDescriptions() []core1_0.VertexInputAttributeDescription {
	v := mesh.Vertex{}
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
		{
			Binding:  0,
			Location: 2,
			Format:   core1_0.FormatR32G32B32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.Normal)),
		},
		{
			Binding:  0,
			Location: 3,
			Format:   core1_0.FormatR32G32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.UV)),
		},
	}
}

type Model struct {
	device *vulkan.Device

	vertexBuffer *vulkan.Buffer
	vertexCount  int
	indexBuffer  *vulkan.Buffer
	indexCount   int
}

// New uploads the builder's vertices, plus its indices when the mesh is
// indexed.
func New(device *vulkan.Device, builder *mesh.Builder) (*Model, error) {
	if len(builder.Vertices) < 3 {
		return nil, errors.AssertionFailedf("a model needs at least 3 vertices, got %d", len(builder.Vertices))
	}

	m := &Model{device: device, vertexCount: len(builder.Vertices)}

	var err error
	m.vertexBuffer, err = device.CreateDeviceLocalBuffer(builder.Vertices, core1_0.BufferUsageVertexBuffer)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create vertex buffer")
	}

	if builder.Indexed() {
		m.indexCount = len(builder.Indices)
		m.indexBuffer, err = device.CreateDeviceLocalBuffer(builder.Indices, core1_0.BufferUsageIndexBuffer)
		if err != nil {
			m.Destroy()
			return nil, errors.Wrap(err, "failed to create index buffer")
		}
	}

	return m, nil
}

func (m *Model) Bind(commandBuffer gpu.CommandBuffer) error {
	buffer, err := m.device.CommandBuffer(commandBuffer)
	if err != nil {
		return err
	}

	driver := m.device.Driver()
	driver.CmdBindVertexBuffers(buffer, 0, []core1_0.Buffer{m.vertexBuffer.Buffer}, []int{0})
	if m.indexBuffer != nil {
		driver.CmdBindIndexBuffer(buffer, m.indexBuffer.Buffer, 0, core1_0.IndexTypeUInt32)
	}
	return nil
}

func (m *Model) Draw(commandBuffer gpu.CommandBuffer) error {
	buffer, err := m.device.CommandBuffer(commandBuffer)
	if err != nil {
		return err
	}

	driver := m.device.Driver()
	if m.indexBuffer != nil {
		driver.CmdDrawIndexed(buffer, m.indexCount, 1, 0, 0, 0)
	} else {
		driver.CmdDraw(buffer, m.vertexCount, 1, 0, 0)
	}
	return nil
}

func (m *Model) Destroy() {
	m.device.DestroyBuffer(m.indexBuffer)
	m.device.DestroyBuffer(m.vertexBuffer)
	m.indexBuffer = nil
	m.vertexBuffer = nil
}
