package pipeline

import (
	"bytes"
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// Layout is a pipeline layout with a single push constant range and no
// descriptor sets.
type Layout struct {
	driver core1_0.CoreDeviceDriver
	layout core1_0.PipelineLayout
	stages core1_0.ShaderStageFlags
	size   int
}

// NewLayout reserves pushConstantSize bytes of push constants visible to
// stages.
func NewLayout(driver core1_0.CoreDeviceDriver, stages core1_0.ShaderStageFlags, pushConstantSize int) (*Layout, error) {
	layout, _, err := driver.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{
		PushConstantRanges: []core1_0.PushConstantRange{
			{
				StageFlags: stages,
				Offset:     0,
				Size:       pushConstantSize,
			},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create pipeline layout")
	}

	return &Layout{driver: driver, layout: layout, stages: stages, size: pushConstantSize}, nil
}

func (l *Layout) Handle() core1_0.PipelineLayout {
	return l.layout
}

// Push records data as push constants. data must encode to exactly the size
// the layout was created with.
func (l *Layout) Push(buffer core1_0.CommandBuffer, data any) error {
	pushWriter := bytes.NewBuffer(make([]byte, 0, l.size))
	err := binary.Write(pushWriter, common.ByteOrder, data)
	if err != nil {
		return errors.Wrap(err, "failed to encode push constants")
	}
	if pushWriter.Len() != l.size {
		return errors.AssertionFailedf("push constants are %d bytes, layout expects %d", pushWriter.Len(), l.size)
	}

	l.driver.CmdPushConstants(buffer, l.layout, l.stages, 0, pushWriter.Bytes())
	return nil
}

func (l *Layout) Destroy() {
	if l.layout.Initialized() {
		l.driver.DestroyPipelineLayout(l.layout, nil)
	}
}
