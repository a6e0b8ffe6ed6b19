// Package export renders a cloth frame as a standalone SVG document.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/clothsim/internal/xpbd"
)

// ClothSVG draws the constraint edges of a frame as SVG line segments.
// Positions are auto-fit to the viewport with 10% padding; anchors and
// sag stay visually proportional.
func ClothSVG(positions []xpbd.Vec3, edges [][2]int, width, height int) string {
	if len(positions) == 0 {
		return ""
	}

	minX, maxX := positions[0].X, positions[0].X
	minY, maxY := positions[0].Y, positions[0].Y
	for _, p := range positions {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

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

	toScreen := func(p xpbd.Vec3) (float64, float64) {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)
		return x, y
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g stroke="#00ff00" stroke-width="1">
`, width, height, width, height))

	for _, e := range edges {
		if e[0] >= len(positions) || e[1] >= len(positions) {
			continue
		}
		x0, y0 := toScreen(positions[e[0]])
		x1, y1 := toScreen(positions[e[1]])
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
`, x0, y0, x1, y1))
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}
