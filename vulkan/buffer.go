package vulkan

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// Buffer is a device buffer together with the memory bound to it.
type Buffer struct {
	Buffer core1_0.Buffer
	Memory core1_0.DeviceMemory
	Size   int
}

func (d *Device) CreateBuffer(size int, usage core1_0.BufferUsageFlags, properties core1_0.MemoryPropertyFlags) (*Buffer, error) {
	buffer, _, err := d.deviceDriver.CreateBuffer(nil, core1_0.BufferCreateInfo{
		Size:        size,
		Usage:       usage,
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return nil, errors.Wrap(err, "vkCreateBuffer")
	}

	memRequirements := d.deviceDriver.GetBufferMemoryRequirements(buffer)
	memory, err := d.allocate(memRequirements.MemoryTypeBits, memRequirements.Size, properties)
	if err != nil {
		d.deviceDriver.DestroyBuffer(buffer, nil)
		return nil, err
	}

	_, err = d.deviceDriver.BindBufferMemory(buffer, memory, 0)
	if err != nil {
		d.deviceDriver.DestroyBuffer(buffer, nil)
		d.deviceDriver.FreeMemory(memory, nil)
		return nil, errors.Wrap(err, "vkBindBufferMemory")
	}

	return &Buffer{Buffer: buffer, Memory: memory, Size: size}, nil
}

func (d *Device) DestroyBuffer(buffer *Buffer) {
	if buffer == nil {
		return
	}
	if buffer.Buffer.Initialized() {
		d.deviceDriver.DestroyBuffer(buffer.Buffer, nil)
	}
	if buffer.Memory.Initialized() {
		d.deviceDriver.FreeMemory(buffer.Memory, nil)
	}
}

// WriteData copies the binary encoding of data into host-visible memory.
func (d *Device) WriteData(buffer *Buffer, offset int, data any) error {
	bufferSize := binary.Size(data)
	if bufferSize < 0 {
		return errors.AssertionFailedf("cannot encode %T", data)
	}

	memoryPtr, _, err := d.deviceDriver.MapMemory(buffer.Memory, offset, bufferSize, 0)
	if err != nil {
		return errors.Wrap(err, "vkMapMemory")
	}
	defer d.deviceDriver.UnmapMemory(buffer.Memory)

	dataBuffer := unsafe.Slice((*byte)(memoryPtr), bufferSize)

	buf := &bytes.Buffer{}
	err = binary.Write(buf, common.ByteOrder, data)
	if err != nil {
		return err
	}

	copy(dataBuffer, buf.Bytes())
	return nil
}

func (d *Device) CopyBuffer(src, dst *Buffer, size int) error {
	return d.SingleTimeCommands(func(buffer core1_0.CommandBuffer) error {
		return d.deviceDriver.CmdCopyBuffer(buffer, src.Buffer, dst.Buffer,
			core1_0.BufferCopy{
				SrcOffset: 0,
				DstOffset: 0,
				Size:      size,
			},
		)
	})
}

// CreateDeviceLocalBuffer uploads data through a host-visible staging buffer
// into a device-local buffer with the given usage.
func (d *Device) CreateDeviceLocalBuffer(data any, usage core1_0.BufferUsageFlags) (*Buffer, error) {
	bufferSize := binary.Size(data)
	if bufferSize <= 0 {
		return nil, errors.AssertionFailedf("cannot upload %T of size %d", data, bufferSize)
	}

	staging, err := d.CreateBuffer(bufferSize, core1_0.BufferUsageTransferSrc, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		return nil, err
	}
	defer d.DestroyBuffer(staging)

	err = d.WriteData(staging, 0, data)
	if err != nil {
		return nil, err
	}

	buffer, err := d.CreateBuffer(bufferSize, core1_0.BufferUsageTransferDst|usage, core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return nil, err
	}

	err = d.CopyBuffer(staging, buffer, bufferSize)
	if err != nil {
		d.DestroyBuffer(buffer)
		return nil, err
	}

	return buffer, nil
}
