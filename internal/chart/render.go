package chart

import (
	"strconv"
	"strings"
	"time"
)

const (
	yTickCount = 5

	markerRadius         = 6
	markerRadiusSelected = 7
	markerFillOpacity    = 0.95
	markerStroke         = "rgba(255,255,255,0.25)"
	markerStrokeSelected = "rgba(255,255,255,0.55)"

	focusStroke       = "rgba(255,255,255,0.25)"
	focusDash         = "4 4"
	selectedGuide     = "rgba(255,255,255,0.18)"
	selectedGuideDash = "3 4"

	unitFill = "rgba(230,237,246,0.55)"

	DefaultUnitLabel = "$/MMBtu"
)

// RenderInput is everything one render pass reads.
type RenderInput struct {
	Viewport    Viewport
	Padding     Padding
	Prices      []PriceSample
	Events      []Event
	Selection   Selection
	ShowMarkers bool
	Palette     Palette
	Location    *time.Location
	UnitLabel   string
}

// Build produces the whole scene from scratch. Invalid viewports, fewer than
// two samples and degenerate domains yield an empty scene.
func Build(in RenderInput) *Scene {
	if !renderable(in.Viewport, in.Prices) {
		return emptyScene(in.Viewport)
	}
	dom := ComputeDomain(in.Prices)
	if !dom.Valid() {
		return emptyScene(in.Viewport)
	}
	m := NewMapper(in.Viewport, in.Padding, dom)

	s := &Scene{Width: in.Viewport.Width, Height: in.Viewport.Height, Domain: &dom}
	drawValueAxis(s, m)
	drawMonthAxis(s, m, in.Location)
	s.Unit = unitLabel(m, in.UnitLabel)
	s.Curve, s.Area = priceCurve(m, in.Prices)
	s.Focus = focusGuide(m, in.Selection.FocusedTime)
	if in.ShowMarkers && len(in.Events) > 0 {
		s.Markers = placeMarkers(m, in.Prices, in.Events, in.Selection.SelectedID, in.Palette)
	}
	return s
}

func renderable(vp Viewport, prices []PriceSample) bool {
	return vp.Width >= MinViewportWidth && vp.Height >= MinViewportHeight && len(prices) >= 2
}

func drawValueAxis(s *Scene, m Mapper) {
	dom := m.Domain()
	pad := m.Padding()
	for i := 0; i <= yTickCount; i++ {
		frac := float64(i) / yTickCount
		yy := pad.Top + frac*m.InnerHeight()
		s.Grid = append(s.Grid, Line{X1: pad.Left, Y1: yy, X2: m.PlotRight(), Y2: yy})
		v := dom.VMax - frac*(dom.VMax-dom.VMin)
		s.Axis = append(s.Axis, Text{
			X:       pad.Left - 8,
			Y:       yy + 4,
			Anchor:  "end",
			Content: strconv.FormatFloat(v, 'f', 2, 64),
		})
	}
}

func drawMonthAxis(s *Scene, m Mapper, loc *time.Location) {
	dom := m.Domain()
	h := float64(m.Viewport().Height)
	// at most one boundary per plot pixel
	for _, b := range monthBoundaries(dom.TMin, dom.TMax, loc, int(m.InnerWidth())) {
		xx := m.ToX(float64(b.UnixMilli()))
		s.Grid = append(s.Grid, Line{X1: xx, Y1: m.PlotTop(), X2: xx, Y2: h - m.Padding().Bottom})
		s.Axis = append(s.Axis, Text{
			X:       xx + 2,
			Y:       h - 12,
			Anchor:  "start",
			Content: monthLabels[b.Month()-1],
		})
	}
}

func unitLabel(m Mapper, label string) *Text {
	if label == "" {
		label = DefaultUnitLabel
	}
	pad := m.Padding()
	return &Text{
		X:        pad.Left + 10,
		Y:        pad.Top + 40,
		Anchor:   "end",
		FontSize: 11,
		Fill:     unitFill,
		Content:  label,
	}
}

func priceCurve(m Mapper, prices []PriceSample) (curve, area *Path) {
	var d strings.Builder
	for i, p := range prices {
		if i == 0 {
			d.WriteString("M")
		} else {
			d.WriteString(" L")
		}
		d.WriteString(num(m.ToX(float64(p.T))))
		d.WriteByte(' ')
		d.WriteString(num(m.ToY(p.P)))
	}
	line := d.String()
	bottom := num(m.PlotBottom())
	areaD := line +
		" L" + num(m.ToX(float64(prices[len(prices)-1].T))) + " " + bottom +
		" L" + num(m.ToX(float64(prices[0].T))) + " " + bottom + " Z"
	return &Path{D: line, Class: "price-line"}, &Path{D: areaD, Class: "price-area"}
}

func focusGuide(m Mapper, focused *int64) *Line {
	if focused == nil {
		return nil
	}
	fx := m.ToX(float64(m.ClampTime(*focused)))
	return &Line{
		X1: fx, Y1: m.PlotTop(), X2: fx, Y2: m.PlotBottom(),
		Stroke: focusStroke,
		Dash:   focusDash,
	}
}

func placeMarkers(m Mapper, prices []PriceSample, events []Event, selectedID string, palette Palette) []Marker {
	times := sampleTimes(prices)
	markers := make([]Marker, 0, len(events))
	for _, ev := range events {
		idx := Nearest(times, float64(ev.T))
		if idx < 0 || idx >= len(prices) {
			continue
		}
		markers = append(markers, newMarker(m, ev, idx, prices[idx], selectedID, palette))
	}
	return markers
}

func newMarker(m Mapper, ev Event, idx int, sample PriceSample, selectedID string, palette Palette) Marker {
	id := EventID(ev)
	ex := m.ToX(float64(ev.T))
	ey := m.ToY(sample.P)
	mk := Marker{
		ID:          id,
		Event:       ev,
		SampleIndex: idx,
		CX:          ex,
		CY:          ey,
		R:           markerRadius,
		Fill:        palette.Color(ev.Category),
		FillOpacity: markerFillOpacity,
		Stroke:      markerStroke,
		StrokeWidth: 1,
	}
	if selectedID != "" && selectedID == id {
		mk.Selected = true
		mk.R = markerRadiusSelected
		mk.Stroke = markerStrokeSelected
		mk.StrokeWidth = 2
		mk.Guide = &Line{
			X1: ex, Y1: ey + markerRadiusSelected,
			X2: ex, Y2: m.PlotBottom(),
			Stroke: selectedGuide,
			Dash:   selectedGuideDash,
		}
	}
	return mk
}
