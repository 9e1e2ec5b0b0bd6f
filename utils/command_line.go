package utils

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"
)

// Options carries everything the samples accept on the command line.
type Options struct {
	Width, Height int
	ShaderDir     string
	MeshPath      string
	PipelineCache string
	MaxFrames     int
	StatsInterval time.Duration
	Validation    bool
}

func DefaultOptions() Options {
	return Options{
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		ShaderDir:     DefaultShaderDir,
		StatsInterval: DefaultStatsInterval,
		Validation:    true,
	}
}

// ErrHelp is returned by ProcessCommandLineArgs when the usage text was requested.
var ErrHelp = flag.ErrHelp

// ProcessCommandLineArgs parses args (without the program name). allowMesh controls
// whether --mesh is accepted, since only the vertex buffer sample can draw a mesh.
func ProcessCommandLineArgs(name string, args []string, allowMesh bool, output io.Writer) (Options, error) {
	opts := DefaultOptions()

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(output)
	flags.IntVar(&opts.Width, "width", opts.Width, "initial window width")
	flags.IntVar(&opts.Height, "height", opts.Height, "initial window height")
	flags.StringVar(&opts.ShaderDir, "shaders", opts.ShaderDir, "directory containing the compiled .spv shaders")
	flags.StringVar(&opts.PipelineCache, "pipeline-cache", "", "load and save pipeline cache data at this path")
	flags.IntVar(&opts.MaxFrames, "frames", 0, "exit after presenting this many frames (0 runs until the window closes)")
	flags.DurationVar(&opts.StatsInterval, "stats", opts.StatsInterval, "how often to log frame statistics (0 disables)")
	noValidation := flags.Bool("no-validation", false, "do not enable VK_LAYER_KHRONOS_validation")
	if allowMesh {
		flags.StringVar(&opts.MeshPath, "mesh", "", "draw the triangles of this .obj file instead of the built-in triangle")
	}
	flags.Usage = func() {
		fmt.Fprintf(output, "\nUsage of %s:\n", name)
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return opts, err
	}
	if flags.NArg() > 0 {
		return opts, errors.Newf("unrecognized option: %s", flags.Arg(0))
	}
	opts.Validation = !*noValidation

	if opts.Width <= 0 || opts.Height <= 0 {
		return opts, errors.Newf("window size must be positive, got %dx%d", opts.Width, opts.Height)
	}
	if opts.MaxFrames < 0 {
		return opts, errors.Newf("--frames must not be negative, got %d", opts.MaxFrames)
	}
	if opts.StatsInterval < 0 {
		return opts, errors.Newf("--stats must not be negative, got %s", opts.StatsInterval)
	}

	return opts, nil
}
