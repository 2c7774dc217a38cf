package main

import (
	"log"
	"runtime"

	"github.com/spf13/pflag"
	"github.com/vkngwrapper/svke/app"
)

func main() {
	runtime.LockOSThread()

	config := app.DefaultConfig()
	pflag.IntVar(&config.Width, "width", config.Width, "initial window width")
	pflag.IntVar(&config.Height, "height", config.Height, "initial window height")
	pflag.BoolVar(&config.EnableValidation, "validation", config.EnableValidation, "enable the Khronos validation layer")
	pflag.BoolVarP(&config.Verbose, "verbose", "v", config.Verbose, "log device selection and swapchain rebuilds")
	pflag.StringVar(&config.VertexShader, "vert", config.VertexShader, "vertex shader SPIR-V")
	pflag.StringVar(&config.FragmentShader, "frag", config.FragmentShader, "fragment shader SPIR-V")
	pflag.StringSliceVar(&config.Meshes, "mesh", config.Meshes, "OBJ mesh to add to the scene, may be repeated")
	pflag.StringVar(&config.PipelineCache, "pipeline-cache", config.PipelineCache, "pipeline cache file, empty to disable")
	pflag.Parse()

	application, err := app.New(config)
	if err != nil {
		log.Fatalf("%+v\n", err)
	}

	err = application.Run()
	application.Close()
	if err != nil {
		log.Fatalf("%+v\n", err)
	}
}
