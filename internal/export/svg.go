// Package export renders recorded chain samples to SVG for quick inspection
// outside the terminal.
package export

import (
	"fmt"
	"strings"

	"github.com/mkraev/yarnsim/internal/sim"
)

// ChainProfileSVG draws the XY side view of selected samples as polylines,
// later samples brighter, so a falling chain reads as a motion trail. every
// controls sample decimation; 1 draws all of them.
func ChainProfileSVG(samples []sim.Sample, width, height, every int) string {
	if len(samples) == 0 || every < 1 {
		return ""
	}

	minX, maxX, minY, maxY := bounds(samples)
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	kept := 0
	for i := 0; i < len(samples); i += every {
		kept++
	}

	drawn := 0
	for i := 0; i < len(samples); i += every {
		sample := samples[i]
		if len(sample.Positions) < 2 {
			continue
		}

		// fade from dim to bright over the run
		level := 70
		if kept > 1 {
			level = 70 + (185*drawn)/(kept-1)
		}
		drawn++

		sb.WriteString(fmt.Sprintf(`<polyline fill="none" stroke="#%02x%02xff" stroke-width="1.2" points="`,
			level/2, level))
		for j, p := range sample.Positions {
			x := (p[0] - minX) / rangeX * float64(width)
			y := float64(height) - (p[1]-minY)/rangeY*float64(height)
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func bounds(samples []sim.Sample) (minX, maxX, minY, maxY float64) {
	first := true
	for _, sample := range samples {
		for _, p := range sample.Positions {
			if first {
				minX, maxX = p[0], p[0]
				minY, maxY = p[1], p[1]
				first = false
				continue
			}
			if p[0] < minX {
				minX = p[0]
			}
			if p[0] > maxX {
				maxX = p[0]
			}
			if p[1] < minY {
				minY = p[1]
			}
			if p[1] > maxY {
				maxY = p[1]
			}
		}
	}
	return minX, maxX, minY, maxY
}
