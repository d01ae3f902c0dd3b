// Copyright (c) 2026 WSO2 LLC. (https://www.wso2.com).
//
// WSO2 LLC. licenses this file to you under the Apache License,
// Version 2.0 (the "License"); you may not use this file except
// in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/wso2-open-operations/common-tools/operations/qr-studio/internal/qr"
)

// SVG builds a vector document for g. The background rect covers the whole
// canvas; dark modules are one path in the foreground color, drawn inside the
// canvas less a 20 unit inset per side when the margin is enabled.
func SVG(g qr.Grid, style Style, size int) ([]byte, error) {
	if g.Empty() {
		return nil, ErrEmptyGrid
	}
	canvas := CanvasSize(size)
	inset := 0
	if style.IncludeMargin {
		inset = vectorInset
	}
	area := canvas - 2*inset
	if area <= 0 {
		return nil, fmt.Errorf("%w: no drawable area in %d units", ErrNoSurface, canvas)
	}
	scale := strconv.FormatFloat(float64(area)/float64(g.Size()), 'f', -1, 64)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>`+"\n")
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`,
		canvas, canvas, canvas, canvas)
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="%s"/>`, canvas, canvas, HexColor(style.Background))
	fmt.Fprintf(&sb, `<g transform="translate(%d %d) scale(%s)">`, inset, inset, scale)
	fmt.Fprintf(&sb, `<path fill="%s" d="%s"/>`, HexColor(style.Foreground), modulePath(g))
	sb.WriteString(`</g></svg>`)
	return []byte(sb.String()), nil
}

// modulePath traces dark modules in grid units, merging horizontal runs.
func modulePath(g qr.Grid) string {
	var sb strings.Builder
	n := g.Size()
	for y := 0; y < n; y++ {
		for x := 0; x < n; {
			if !g.Dark(x, y) {
				x++
				continue
			}
			start := x
			for x < n && g.Dark(x, y) {
				x++
			}
			run := x - start
			fmt.Fprintf(&sb, "M%d %dh%dv1h-%dz", start, y, run, run)
		}
	}
	return sb.String()
}

// HexColor formats c as #rrggbb.
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
