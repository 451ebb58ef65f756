package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/rigel-pt/rigel/asset/scene/reader"
	"github.com/rigel-pt/rigel/renderer"
	"github.com/rigel-pt/rigel/tracer/cpu"
	"github.com/urfave/cli"
)

// Trace a still frame and write it out as a png image.
func ShadeScene(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := renderer.Options{
		FrameW:     uint32(ctx.Int("width")),
		FrameH:     uint32(ctx.Int("height")),
		NumBounces: uint32(ctx.Int("num-bounces")),
	}

	// Load scene
	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	// Create renderer backed by a cpu tracer
	tr := cpu.NewTracer("cpu-0", ctx.Int("workers"))
	r, err := renderer.NewDefault(sc, tr, opts)
	if err != nil {
		tr.Close()
		return err
	}
	defer r.Close()

	logger.Noticef("tracing %dx%d frame with up to %d bounces per path", opts.FrameW, opts.FrameH, opts.NumBounces)
	frame, err := r.Render()
	if err != nil {
		return err
	}

	// Export PNG
	imgFile := ctx.String("out")
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	err = png.Encode(f, frame)
	if err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s", imgFile)

	// Display stats
	displayFrameStats(r.Stats())

	return nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Bounce", "Reflected", "Absorbed", "Missed", "Alive", "Trace time"})
	for _, stat := range stats.Bounces {
		table.Append([]string{
			fmt.Sprintf("%d", stat.Bounce),
			fmt.Sprintf("%d", stat.Reflected),
			fmt.Sprintf("%d", stat.Absorbed),
			fmt.Sprintf("%d", stat.Missed),
			fmt.Sprintf("%d", stat.Alive),
			fmt.Sprintf("%s", stat.TraceTime),
		})
	}
	table.SetFooter([]string{"", "", "", "", "TOTAL", fmt.Sprintf("%s", stats.RenderTime)})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
