package chart

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const svgStyle = `.grid line{stroke:rgba(230,237,246,0.08);stroke-width:1}` +
	`.axis text{fill:rgba(230,237,246,0.55);font-size:11px;font-family:sans-serif}` +
	`.price-line{fill:none;stroke:` + PriceColor + `;stroke-width:2}` +
	`.price-area{fill:rgba(91,214,255,0.10);stroke:none}`

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// SVG serializes the scene into a standalone SVG document.
func (s *Scene) SVG() string {
	var b strings.Builder
	s.writeTo(&b)
	return b.String()
}

// WriteSVG writes the SVG document to w.
func (s *Scene) WriteSVG(w io.Writer) error {
	_, err := io.WriteString(w, s.SVG())
	return err
}

func (s *Scene) writeTo(b *strings.Builder) {
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" preserveAspectRatio="none">`,
		s.Width, s.Height, s.Width, s.Height)
	if s.Empty {
		b.WriteString(`</svg>`)
		return
	}
	b.WriteString(`<style>` + svgStyle + `</style>`)

	b.WriteString(`<g class="grid">`)
	for _, l := range s.Grid {
		writeLine(b, l)
	}
	b.WriteString(`</g><g class="axis">`)
	for _, t := range s.Axis {
		writeText(b, t)
	}
	b.WriteString(`</g>`)
	if s.Unit != nil {
		writeText(b, *s.Unit)
	}
	if s.Area != nil {
		fmt.Fprintf(b, `<path d="%s" class="%s"/>`, s.Area.D, s.Area.Class)
	}
	if s.Curve != nil {
		fmt.Fprintf(b, `<path d="%s" class="%s"/>`, s.Curve.D, s.Curve.Class)
	}
	if s.Focus != nil {
		writeLine(b, *s.Focus)
	}
	if len(s.Markers) > 0 {
		b.WriteString(`<g class="markers">`)
		for _, m := range s.Markers {
			writeMarker(b, m)
		}
		b.WriteString(`</g>`)
	}
	b.WriteString(`</svg>`)
}

func writeLine(b *strings.Builder, l Line) {
	fmt.Fprintf(b, `<line x1="%s" y1="%s" x2="%s" y2="%s"`, num(l.X1), num(l.Y1), num(l.X2), num(l.Y2))
	if l.Stroke != "" {
		fmt.Fprintf(b, ` stroke="%s"`, l.Stroke)
	}
	if l.StrokeWidth > 0 {
		fmt.Fprintf(b, ` stroke-width="%s"`, num(l.StrokeWidth))
	}
	if l.Dash != "" {
		fmt.Fprintf(b, ` stroke-dasharray="%s"`, l.Dash)
	}
	b.WriteString(`/>`)
}

func writeText(b *strings.Builder, t Text) {
	fmt.Fprintf(b, `<text x="%s" y="%s" text-anchor="%s"`, num(t.X), num(t.Y), t.Anchor)
	if t.FontSize > 0 {
		fmt.Fprintf(b, ` font-size="%s"`, num(t.FontSize))
	}
	if t.Fill != "" {
		fmt.Fprintf(b, ` fill="%s"`, t.Fill)
	}
	fmt.Fprintf(b, `>%s</text>`, escape(t.Content))
}

func writeMarker(b *strings.Builder, m Marker) {
	class := "marker"
	if m.Selected {
		class += " marker--selected"
	}
	fmt.Fprintf(b, `<g class="%s" data-event-id="%s">`, class, escape(m.ID))
	if m.Guide != nil {
		writeLine(b, *m.Guide)
	}
	fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="%s" fill="%s" fill-opacity="%s" stroke="%s" stroke-width="%s"><title>%s</title></circle>`,
		num(m.CX), num(m.CY), num(m.R), escape(m.Fill), num(m.FillOpacity), m.Stroke, num(m.StrokeWidth), escape(m.Event.Title))
	b.WriteString(`</g>`)
}
