package app

type Config struct {
	Title            string
	Width            int
	Height           int
	EnableValidation bool
	Verbose          bool

	VertexShader   string
	FragmentShader string
	// Meshes are Wavefront OBJ files placed in the scene next to the
	// built-in cube and Sierpinski triangle.
	Meshes []string
	// PipelineCache is where compiled pipeline state is kept between runs.
	// Empty disables persistence.
	PipelineCache string
}

func DefaultConfig() Config {
	return Config{
		Title:          "svke",
		Width:          800,
		Height:         600,
		VertexShader:   "shaders/simple.vert.spv",
		FragmentShader: "shaders/simple.frag.spv",
		PipelineCache:  "pipeline_cache.bin",
	}
}
