package cmd

import (
	"bytes"
	"fmt"

	"github.com/achilleasa/spheretrace/tracer/cpu"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List the cpu device available for rendering.
func ListDevices(ctx *cli.Context) error {
	setupLogging(ctx)

	dev, err := cpu.DetectDevice()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Device", "Cores", "Threads", "Clock (MHz)", "Speed estimate"})
	table.Append([]string{
		dev.Name,
		fmt.Sprintf("%d", dev.Cores),
		fmt.Sprintf("%d", dev.Threads),
		fmt.Sprintf("%d", dev.ClockSpeed),
		fmt.Sprintf("%d", dev.Speed),
	})
	table.Render()

	logger.Noticef("available devices\n%s", buf.String())
	return nil
}
