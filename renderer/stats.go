package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
)

type TracerStat struct {
	// The tracer id.
	Id string

	// True if this is the primary tracer
	IsPrimary bool

	// The block height and the percentage of total frame area it represents.
	BlockH       uint32
	FramePercent float32

	// Render time for assigned blocks across all passes.
	RenderTime time.Duration
}

type FrameStats struct {
	// A unique id for the rendered frame.
	FrameId string

	// Individual tracer stats.
	Tracers []TracerStat

	// Number of samples per pixel and sampling passes.
	SamplesPerPixel uint32
	Passes          uint32

	// Total render time for entire frame.
	RenderTime time.Duration
}

// Format frame stats as a table.
func (fs FrameStats) String() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Device", "Primary", "Block height", "% of frame", "Render time"})
	for _, stat := range fs.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%t", stat.IsPrimary),
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			stat.RenderTime.String(),
		})
	}
	table.SetFooter([]string{
		fs.FrameId,
		fmt.Sprintf("%d spp", fs.SamplesPerPixel),
		fmt.Sprintf("%d passes", fs.Passes),
		"TOTAL",
		fs.RenderTime.String(),
	})

	table.Render()
	return buf.String()
}
