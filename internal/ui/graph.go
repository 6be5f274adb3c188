package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/nozo-moto/netspeed/pkg/types"
)

const (
	leftMargin   = 10 // Y-axis labels
	bottomMargin = 2  // X-axis labels
)

// renderGraph draws the windowed samples as a point chart. The x-axis spans
// [max(0, latest-duration), latest+1] seconds.
func renderGraph(samples []types.RateSample, duration float64, width, height int) string {
	if len(samples) < 2 {
		return "[gray]Collecting traffic data..."
	}

	latest := samples[len(samples)-1].Timestamp
	xMin := math.Max(0, latest-duration)
	xMax := latest + 1

	maxRate := 0.0
	for _, s := range samples {
		maxRate = math.Max(maxRate, math.Max(s.UploadRate, s.DownloadRate))
	}

	grid := make([][]string, height+bottomMargin)
	for i := range grid {
		grid[i] = make([]string, width+leftMargin)
		for j := range grid[i] {
			grid[i][j] = " "
		}
	}

	for i := 0; i < height; i++ {
		grid[i][leftMargin] = "│"
	}
	for j := leftMargin; j < width+leftMargin; j++ {
		grid[height-1][j] = "─"
	}
	grid[height-1][leftMargin] = "└"

	for i := 0; i <= 4; i++ {
		row := i * (height - 1) / 4
		label := fmt.Sprintf("%8.2f", maxRate*float64(4-i)/4)
		for j, ch := range label {
			if j < leftMargin {
				grid[row][j] = string(ch)
			}
		}
	}

	if maxRate > 0 {
		span := xMax - xMin
		for _, s := range samples {
			if s.Timestamp < xMin {
				continue
			}
			x := leftMargin + 1 + int((s.Timestamp-xMin)/span*float64(width-2))
			if x >= width+leftMargin {
				continue
			}

			yDown := height - 2 - int(s.DownloadRate/maxRate*float64(height-3))
			yUp := height - 2 - int(s.UploadRate/maxRate*float64(height-3))

			if yDown >= 0 && yDown < height-1 {
				grid[yDown][x] = "[green]▼[white]"
			}
			if yUp >= 0 && yUp < height-1 {
				grid[yUp][x] = "[red]▲[white]"
			}
		}
	}

	left := fmt.Sprintf("%.0fs", xMin)
	right := fmt.Sprintf("%.0fs", latest)
	for j, ch := range left {
		grid[height][leftMargin+j] = string(ch)
	}
	if start := leftMargin + width - len(right); start > leftMargin+len(left) {
		for j, ch := range right {
			grid[height][start+j] = string(ch)
		}
	}

	var builder strings.Builder
	builder.WriteString("[yellow]Upload and Download Speed Over Time (MB/s)[white]\n\n")
	for _, row := range grid {
		for _, cell := range row {
			builder.WriteString(cell)
		}
		builder.WriteString("\n")
	}
	builder.WriteString("[green]▼ Download[white]  [red]▲ Upload[white]\n")
	return builder.String()
}
