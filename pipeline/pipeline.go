// Package pipeline builds the graphics pipelines the render systems draw
// with.
package pipeline

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
)

const spirvMagic = 0x07230203

type Config struct {
	BindingDescriptions   []core1_0.VertexInputBindingDescription
	AttributeDescriptions []core1_0.VertexInputAttributeDescription

	InputAssembly core1_0.PipelineInputAssemblyStateCreateInfo
	Rasterization core1_0.PipelineRasterizationStateCreateInfo
	Multisample   core1_0.PipelineMultisampleStateCreateInfo
	ColorBlend    core1_0.PipelineColorBlendStateCreateInfo
	DepthStencil  core1_0.PipelineDepthStencilStateCreateInfo
	DynamicStates []core1_0.DynamicState

	Layout     core1_0.PipelineLayout
	RenderPass core1_0.RenderPass
	Subpass    int
}

// DefaultConfig leaves viewport and scissor dynamic so pipelines survive
// swapchain recreation.
func DefaultConfig() Config {
	return Config{
		InputAssembly: core1_0.PipelineInputAssemblyStateCreateInfo{
			Topology:               core1_0.PrimitiveTopologyTriangleList,
			PrimitiveRestartEnable: false,
		},
		Rasterization: core1_0.PipelineRasterizationStateCreateInfo{
			DepthClampEnable:        false,
			RasterizerDiscardEnable: false,

			PolygonMode: core1_0.PolygonModeFill,
			CullMode:    core1_0.CullModeNone,
			FrontFace:   core1_0.FrontFaceClockwise,

			DepthBiasEnable: false,

			LineWidth: 1.0,
		},
		Multisample: core1_0.PipelineMultisampleStateCreateInfo{
			SampleShadingEnable:  false,
			RasterizationSamples: core1_0.Samples1,
			MinSampleShading:     1.0,
		},
		ColorBlend: core1_0.PipelineColorBlendStateCreateInfo{
			LogicOpEnabled: false,
			LogicOp:        core1_0.LogicOpCopy,

			BlendConstants: [4]float32{0, 0, 0, 0},
			Attachments: []core1_0.PipelineColorBlendAttachmentState{
				{
					BlendEnabled:   false,
					ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
				},
			},
		},
		DepthStencil: core1_0.PipelineDepthStencilStateCreateInfo{
			DepthTestEnable:  true,
			DepthWriteEnable: true,
			DepthCompareOp:   core1_0.CompareOpLess,
			MinDepthBounds:   0,
			MaxDepthBounds:   1,
		},
		DynamicStates: []core1_0.DynamicState{core1_0.DynamicStateViewport, core1_0.DynamicStateScissor},
	}
}

type Pipeline struct {
	driver   core1_0.CoreDeviceDriver
	pipeline core1_0.Pipeline
}

// New compiles a graphics pipeline from the SPIR-V files at vertPath and
// fragPath. cache may be nil.
func New(driver core1_0.CoreDeviceDriver, cache *Cache, vertPath, fragPath string, config Config) (*Pipeline, error) {
	if !config.Layout.Initialized() {
		return nil, errors.AssertionFailedf("cannot create pipeline without a pipeline layout")
	}
	if !config.RenderPass.Initialized() {
		return nil, errors.AssertionFailedf("cannot create pipeline without a render pass")
	}

	vertShader, err := createShaderModule(driver, vertPath)
	if err != nil {
		return nil, err
	}
	defer driver.DestroyShaderModule(vertShader, nil)

	fragShader, err := createShaderModule(driver, fragPath)
	if err != nil {
		return nil, err
	}
	defer driver.DestroyShaderModule(fragShader, nil)

	vertStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageVertex,
		Module: vertShader,
		Name:   "main",
	}

	fragStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageFragment,
		Module: fragShader,
		Name:   "main",
	}

	// Counts only; the real values are set while recording.
	viewport := &core1_0.PipelineViewportStateCreateInfo{
		Viewports: []core1_0.Viewport{{MaxDepth: 1}},
		Scissors:  []core1_0.Rect2D{{}},
	}

	pipelines, _, err := driver.CreateGraphicsPipelines(cache.handle(), nil,
		core1_0.GraphicsPipelineCreateInfo{
			Stages: []core1_0.PipelineShaderStageCreateInfo{
				vertStage,
				fragStage,
			},
			VertexInputState: &core1_0.PipelineVertexInputStateCreateInfo{
				VertexBindingDescriptions:   config.BindingDescriptions,
				VertexAttributeDescriptions: config.AttributeDescriptions,
			},
			InputAssemblyState: &config.InputAssembly,
			ViewportState:      viewport,
			RasterizationState: &config.Rasterization,
			MultisampleState:   &config.Multisample,
			DepthStencilState:  &config.DepthStencil,
			ColorBlendState:    &config.ColorBlend,
			DynamicState: &core1_0.PipelineDynamicStateCreateInfo{
				DynamicStates: config.DynamicStates,
			},
			Layout:            config.Layout,
			RenderPass:        config.RenderPass,
			Subpass:           config.Subpass,
			BasePipelineIndex: -1,
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create graphics pipeline")
	}

	return &Pipeline{driver: driver, pipeline: pipelines[0]}, nil
}

func (p *Pipeline) Bind(buffer core1_0.CommandBuffer) {
	p.driver.CmdBindPipeline(buffer, core1_0.PipelineBindPointGraphics, p.pipeline)
}

func (p *Pipeline) Destroy() {
	if p.pipeline.Initialized() {
		p.driver.DestroyPipeline(p.pipeline, nil)
	}
}

func createShaderModule(driver core1_0.CoreDeviceDriver, path string) (core1_0.ShaderModule, error) {
	code, err := ReadShader(path)
	if err != nil {
		return core1_0.ShaderModule{}, err
	}

	module, _, err := driver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: code,
	})
	if err != nil {
		return core1_0.ShaderModule{}, errors.Wrapf(err, "failed to create shader module from %s", path)
	}
	return module, nil
}

// ReadShader loads a SPIR-V binary as 32-bit words.
func ReadShader(path string) ([]uint32, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open shader")
	}

	if len(b) == 0 || len(b)%4 != 0 {
		return nil, errors.Newf("%s is not SPIR-V: size %d is not a multiple of 4", path, len(b))
	}

	code := bytesToBytecode(b)
	if code[0] != spirvMagic {
		return nil, errors.Newf("%s is not SPIR-V: bad magic number 0x%08x", path, code[0])
	}
	return code, nil
}

func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode
}
