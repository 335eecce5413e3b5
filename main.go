package main

import (
	"os"

	"github.com/urfave/cli"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

// sceneFlags are shared by every command that builds a scene
func sceneFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "settings, s",
			Usage: "JSON file with image size, camera and lights",
		},
		cli.StringFlag{
			Name:  "builtin",
			Value: "cube",
			Usage: "built-in scene rendered when no model file is given",
		},
		cli.StringFlag{
			Name:  "texture",
			Usage: "diffuse texture for the built-in cube",
		},
		cli.IntFlag{
			Name:  "width",
			Value: 640,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 480,
			Usage: "frame height",
		},
		cli.StringFlag{
			Name:  "camera-pos",
			Usage: "camera position as x,y,z",
		},
		cli.StringFlag{
			Name:  "camera-dir",
			Usage: "camera view direction as x,y,z",
		},
		cli.Float64Flag{
			Name:  "fov",
			Value: 60,
			Usage: "vertical field of view in degrees",
		},
		cli.Float64Flag{
			Name:  "roll",
			Usage: "camera roll around the view direction in degrees",
		},
		cli.StringFlag{
			Name:  "light",
			Usage: "position x,y,z of a white light placed before any configured lights",
		},
	}
}

func newApp() *cli.App {
	// -v selects verbosity; keep the version flag long-only
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "phong-raytracer"
	app.Usage = "render Wavefront OBJ models with an octree accelerated Phong raytracer"
	app.Version = "0.1.0"
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
			Name:  "render",
			Usage: "render a model to an image file",
			Description: `
Load a Wavefront OBJ model (or a built-in scene when no file is given), build
an octree over its triangles and trace one primary and one shadow ray per
pixel. The output format follows the file extension: png, bmp, tiff or jpeg.`,
			ArgsUsage: "[model.obj]",
			Flags: append(sceneFlags(),
				cli.IntFlag{
					Name:  "workers, w",
					Usage: "number of render goroutines; 0 uses all CPUs",
				},
				cli.IntFlag{
					Name:  "rows-per-task",
					Value: 8,
					Usage: "image rows handed to a worker at once",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "output/render.png",
					Usage: "image file to write",
				},
			),
			Action: renderModel,
		},
		{
			Name:      "inspect",
			Usage:     "print scene and octree statistics without rendering",
			ArgsUsage: "[model.obj]",
			Flags:     sceneFlags(),
			Action:    inspectModel,
		},
	}

	return app
}
