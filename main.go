package main

import (
	"os"

	"github.com/rigel-pt/rigel/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "rigel"
	app.Usage = "trace specular paths through compiled scenes"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "compile text scene representation into a binary compressed format",
			Description: `
Parse a scene definition from a wavefront obj file, build a two-level BVH to
optimize ray intersection tests and flatten the scene elements into the
buffers consumed by the tracer.

The compiled scene data is then written to a zip archive which can be supplied
as an argument to the info and shade commands.`,
			ArgsUsage: "scene_file1.obj scene_file2.obj ...",
			Action:    cmd.CompileScene,
		},
		{
			Name:      "info",
			Usage:     "print information about a compiled scene",
			ArgsUsage: "scene_file.zip",
			Action:    cmd.ShowSceneInfo,
		},
		{
			Name:  "shade",
			Usage: "trace a frame through the scene and save it as png",
			Description: `
Emit one path per frame pixel, advance all paths in lock-step until they are
absorbed or escape the scene and map the accumulated path throughput of every
covered pixel to the output image.`,
			ArgsUsage: "scene_file.obj|scene_file.zip",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 512,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 512,
					Usage: "frame height",
				},
				cli.IntFlag{
					Name:  "num-bounces",
					Value: 5,
					Usage: "number of bounces to trace per path",
				},
				cli.IntFlag{
					Name:  "workers",
					Value: 0,
					Usage: "number of tracing workers (0 selects all cores)",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the traced frame",
				},
			},
			Action: cmd.ShadeScene,
		},
	}

	app.Run(os.Args)
}
