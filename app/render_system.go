package app

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/svke/gpu"
	"github.com/vkngwrapper/svke/model"
	"github.com/vkngwrapper/svke/pipeline"
	"github.com/vkngwrapper/svke/scene"
	"github.com/vkngwrapper/svke/vulkan"
)

// PushConstantData mirrors the push constant block of the simple shaders.
type PushConstantData struct {
	Transform mgl32.Mat4
	Color     mgl32.Vec3
	_         float32
}

// SimpleRenderSystem draws every object in a scene with one pipeline,
// pushing each object's transform and color.
type SimpleRenderSystem struct {
	device *vulkan.Device
	cache  *pipeline.Cache

	vertexShader   string
	fragmentShader string

	layout   *pipeline.Layout
	pipeline *pipeline.Pipeline
}

func NewSimpleRenderSystem(device *vulkan.Device, cache *pipeline.Cache, renderPass gpu.RenderPass, vertexShader, fragmentShader string) (*SimpleRenderSystem, error) {
	layout, err := pipeline.NewLayout(device.Driver(), core1_0.StageVertex|core1_0.StageFragment, binary.Size(PushConstantData{}))
	if err != nil {
		return nil, err
	}

	s := &SimpleRenderSystem{
		device:         device,
		cache:          cache,
		vertexShader:   vertexShader,
		fragmentShader: fragmentShader,
		layout:         layout,
	}

	err = s.Rebuild(renderPass)
	if err != nil {
		s.Destroy()
		return nil, err
	}

	return s, nil
}

// Rebuild replaces the pipeline with one built against renderPass. The
// device must be idle.
func (s *SimpleRenderSystem) Rebuild(renderPass gpu.RenderPass) error {
	pass, err := s.device.RenderPass(renderPass)
	if err != nil {
		return err
	}

	config := pipeline.DefaultConfig()
	config.BindingDescriptions = model.BindingDescriptions()
	config.AttributeDescriptions = model.AttributeDescriptions()
	config.Layout = s.layout.Handle()
	config.RenderPass = pass

	p, err := pipeline.New(s.device.Driver(), s.cache, s.vertexShader, s.fragmentShader, config)
	if err != nil {
		return err
	}

	if s.pipeline != nil {
		s.pipeline.Destroy()
	}
	s.pipeline = p
	return nil
}

func (s *SimpleRenderSystem) Render(commandBuffer gpu.CommandBuffer, objects []*scene.Object, camera *scene.Camera) error {
	buffer, err := s.device.CommandBuffer(commandBuffer)
	if err != nil {
		return err
	}

	s.pipeline.Bind(buffer)

	projectionView := camera.ProjectionView()
	for _, object := range objects {
		if object.Model == nil {
			continue
		}

		err = s.layout.Push(buffer, PushConstantData{
			Transform: projectionView.Mul4(object.Transform.Mat4()),
			Color:     object.Color,
		})
		if err != nil {
			return err
		}

		err = object.Model.Bind(commandBuffer)
		if err != nil {
			return errors.Wrapf(err, "failed to bind model of object %d", object.ID())
		}
		err = object.Model.Draw(commandBuffer)
		if err != nil {
			return errors.Wrapf(err, "failed to draw object %d", object.ID())
		}
	}

	return nil
}

func (s *SimpleRenderSystem) Destroy() {
	if s.pipeline != nil {
		s.pipeline.Destroy()
	}
	s.layout.Destroy()
}
