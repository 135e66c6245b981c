package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/isingsim/internal/lattice"
)

// LatticeToSVG draws one square per site, scale units wide.
func LatticeToSVG(v lattice.View, scale float64) string {
	if v == nil || v.Size() == 0 {
		return ""
	}
	n := v.Size()
	size := float64(n) * scale

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" shape-rendering="crispEdges">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="%s">
`, size, size, size, size, hexColor(DownColor), hexColor(UpColor)))

	// background is spin down; only up sites are drawn
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if v.Get(x, y) != lattice.Up {
				continue
			}
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>
`, float64(x)*scale, float64(y)*scale, scale, scale))
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesToSVG plots m(t) on a fixed [-1, 1] vertical range.
func SeriesToSVG(series []float64, width, height int, strokeColor string) string {
	if len(series) < 2 {
		return ""
	}

	last := float64(len(series) - 1)
	mid := float64(height) / 2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444" stroke-width="1"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, mid, width, mid, strokeColor))

	for i, m := range series {
		x := float64(i) / last * float64(width)
		y := mid - m*mid*0.9

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
