package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/mpsfluid/internal/mps"
	"github.com/san-kum/mpsfluid/internal/viz"
)

const background = "#0a0a0a"

// SnapshotToSVG draws one frame as colored circles, framed on view. The
// image is width pixels wide with the view's aspect ratio.
func SnapshotToSVG(snap *mps.Snapshot, view mps.Bounds, width int) string {
	vw, vh := view.MaxX-view.MinX, view.MaxY-view.MinY
	if snap == nil || vw <= 0 || vh <= 0 || width <= 0 {
		return ""
	}
	scale := float64(width) / vw
	height := int(vh*scale + 0.5)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))

	colors := viz.Colors(snap)
	sizes := viz.Sizes(snap)
	// Sizes are point diameters in pixels at a 500 px wide view.
	px := float64(width) / 500

	for k, t := range snap.Types {
		if t == mps.Ghost {
			continue
		}
		x, y := snap.Positions[2*k], snap.Positions[2*k+1]
		if !view.Contains(mps.Vec2{X: x, Y: y}) {
			continue
		}
		cx := (x - view.MinX) * scale
		cy := (view.MaxY - y) * scale
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.2f" fill="%s"/>
`, cx, cy, sizes[k]*px/2, colors[k].Hex()))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesToSVG draws a telemetry column as a polyline.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	rng := hi - lo
	if rng == 0 {
		rng = 1
	}
	lo -= rng * 0.1
	hi += rng * 0.1
	rng = hi - lo

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, strokeColor))

	last := float64(len(values) - 1)
	for i, v := range values {
		x := float64(i) / last * float64(width)
		y := float64(height) - (v-lo)/rng*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// WriteSnapshot writes SnapshotToSVG to w.
func WriteSnapshot(w io.Writer, snap *mps.Snapshot, view mps.Bounds, width int) error {
	svg := SnapshotToSVG(snap, view, width)
	if svg == "" {
		return fmt.Errorf("nothing to draw")
	}
	_, err := io.WriteString(w, svg)
	return err
}
