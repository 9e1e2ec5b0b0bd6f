package main

import (
	"log"
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/hello-triangle/utils"
)

//go:generate glslc ../shaders/triangle.vert -o ../shaders/triangle.vert.spv
//go:generate glslc ../shaders/triangle.frag -o ../shaders/triangle.frag.spv

var shaders = []utils.ShaderFile{
	{Name: "triangle.vert", Stage: core1_0.StageVertex},
	{Name: "triangle.frag", Stage: core1_0.StageFragment},
}

func main() {
	runtime.LockOSThread()

	options, err := utils.ProcessCommandLineArgs(os.Args[0], os.Args[1:], false, os.Stderr)
	if errors.Is(err, utils.ErrHelp) {
		return
	} else if err != nil {
		log.Fatalf("%+v\n", err)
	}

	err = run(options)
	if err != nil {
		log.Fatalf("%+v\n", err)
	}
}

func run(options utils.Options) error {
	window, err := utils.CreateWindow("Hello, triangle", options.Width, options.Height)
	if err != nil {
		return err
	}
	defer window.Destroy()

	app := utils.NewHelloTriangle(shaders)
	defer app.Destroy()

	err = app.PrepareVulkan(window, options)
	if err != nil {
		return err
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"CreateRenderPass", app.CreateRenderPass},
		{"CreateFramebuffers", app.CreateFramebuffers},
		{"CreatePipeline", app.CreatePipeline},
		{"CreateSemaphores", app.CreateSemaphores},
		{"CreateCommandBuffers", app.CreateCommandBuffers},
		{"RecordCommandBuffers", app.RecordCommandBuffers},
	}
	for _, step := range steps {
		log.Println(step.name)
		if err := step.run(); err != nil {
			return errors.Wrapf(err, "%s", step.name)
		}
	}

	return window.RenderingLoop(app, options.MaxFrames)
}
