package chart

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

var scenarioPrices = []PriceSample{{T: 0, P: 2.0}, {T: 1000, P: 2.5}, {T: 2000, P: 2.2}}

func scenarioInput() RenderInput {
	return RenderInput{
		Viewport:    Viewport{Width: 400, Height: 300},
		Padding:     DefaultPadding,
		Prices:      scenarioPrices,
		ShowMarkers: true,
		Palette:     DefaultPalette(),
		Location:    time.UTC,
	}
}

func TestBuildRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		vp   Viewport
		in   []PriceSample
	}{
		{"narrow", Viewport{Width: 199, Height: 300}, scenarioPrices},
		{"short", Viewport{Width: 400, Height: 199}, scenarioPrices},
		{"no samples", Viewport{Width: 400, Height: 300}, nil},
		{"one sample", Viewport{Width: 400, Height: 300}, scenarioPrices[:1]},
		{"zero time span", Viewport{Width: 400, Height: 300}, []PriceSample{{T: 5, P: 1}, {T: 5, P: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := scenarioInput()
			in.Viewport = tt.vp
			in.Prices = tt.in
			s := Build(in)
			if !s.Empty {
				t.Fatalf("Build() Empty = false; want true")
			}
			if len(s.Grid)+len(s.Axis)+len(s.Markers) != 0 || s.Curve != nil {
				t.Fatalf("Build() drew nodes for invalid input: %+v", s)
			}
		})
	}
}

func TestBuildAxes(t *testing.T) {
	s := Build(scenarioInput())
	if s.Empty {
		t.Fatalf("Build() Empty = true; want false")
	}
	// six value gridlines plus one month boundary at t=0 (1970-01-01 UTC)
	if got := len(s.Grid); got != 7 {
		t.Fatalf("len(Grid) = %d; want 7", got)
	}
	if got := s.Axis[0].Content; got != "2.54" {
		t.Fatalf("top tick = %q; want %q", got, "2.54")
	}
	if got := s.Axis[5].Content; got != "1.96" {
		t.Fatalf("bottom tick = %q; want %q", got, "1.96")
	}
	if got := s.Axis[6].Content; got != "Jan" {
		t.Fatalf("month label = %q; want %q", got, "Jan")
	}
	if s.Unit == nil || s.Unit.Content != DefaultUnitLabel {
		t.Fatalf("unit label = %+v; want %q", s.Unit, DefaultUnitLabel)
	}
}

func TestMonthBoundariesStartAtOrAfterTMin(t *testing.T) {
	tMin := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC).UnixMilli()
	tMax := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	got := monthBoundaries(tMin, tMax, time.UTC, 100)
	want := []time.Month{time.February, time.March, time.April}
	if len(got) != len(want) {
		t.Fatalf("monthBoundaries() = %v; want months %v", got, want)
	}
	for i, m := range want {
		if got[i].Month() != m || got[i].Day() != 1 {
			t.Fatalf("monthBoundaries()[%d] = %v; want 1 %v", i, got[i], m)
		}
	}
}

func TestBuildCurveAndArea(t *testing.T) {
	s := Build(scenarioInput())
	if s.Curve == nil || !strings.HasPrefix(s.Curve.D, "M46 ") {
		t.Fatalf("curve = %+v; want path starting at M46", s.Curve)
	}
	if got := strings.Count(s.Curve.D, "L"); got != 2 {
		t.Fatalf("curve segments = %d; want 2", got)
	}
	if s.Area == nil || !strings.HasSuffix(s.Area.D, " Z") {
		t.Fatalf("area = %+v; want closed path", s.Area)
	}
	if !strings.Contains(s.Area.D, "L382 266 L46 266") {
		t.Fatalf("area = %q; want baseline at plot bottom 266", s.Area.D)
	}
}

func TestBuildScenarioPolicyEventMatchesSupplyFilter(t *testing.T) {
	events := []Event{{ID: "e1", T: 900, Category: CategoryPolicy, Title: "x"}}
	in := scenarioInput()
	in.Events = FilterEvents(events, NewCategorySet(CategorySupply))

	s := Build(in)
	if len(s.Markers) != 1 {
		t.Fatalf("len(Markers) = %d; want 1", len(s.Markers))
	}
	mk := s.Markers[0]
	if mk.ID != "e1" {
		t.Fatalf("marker id = %q; want %q", mk.ID, "e1")
	}
	if mk.SampleIndex != 1 {
		t.Fatalf("marker sample index = %d; want 1", mk.SampleIndex)
	}
	m := NewMapper(in.Viewport, in.Padding, *s.Domain)
	if !approx(mk.CX, m.ToX(900)) || !approx(mk.CY, m.ToY(2.5)) {
		t.Fatalf("marker at (%v,%v); want (%v,%v)", mk.CX, mk.CY, m.ToX(900), m.ToY(2.5))
	}
	if mk.Fill != in.Palette.Color(CategorySupply) {
		t.Fatalf("marker fill = %q; want SUPPLY color %q", mk.Fill, in.Palette.Color(CategorySupply))
	}
	if mk.R != markerRadius || mk.Selected || mk.Guide != nil {
		t.Fatalf("unselected marker = %+v; want plain marker", mk)
	}
}

func TestBuildSelectedMarker(t *testing.T) {
	in := scenarioInput()
	in.Events = []Event{
		{ID: "a", T: 100, Category: CategoryLNG, Title: "a"},
		{ID: "b", T: 1900, Category: CategoryMacro, Title: "b"},
	}
	in.Selection = Selection{SelectedID: "b"}

	s := Build(in)
	sel, ok := s.SelectedMarker()
	if !ok || sel.ID != "b" {
		t.Fatalf("SelectedMarker() = %+v, %v; want b", sel, ok)
	}
	if sel.R != markerRadiusSelected || sel.StrokeWidth != 2 || sel.Stroke != markerStrokeSelected {
		t.Fatalf("selected marker style = %+v", sel)
	}
	if sel.Guide == nil || !approx(sel.Guide.Y1, sel.CY+7) || !approx(sel.Guide.Y2, 266) {
		t.Fatalf("selected guide = %+v; want from cy+7 to 266", sel.Guide)
	}
	if s.Markers[0].Selected {
		t.Fatalf("marker a selected; want only b")
	}
}

func TestBuildEmptyEventsWithMarkersShown(t *testing.T) {
	in := scenarioInput()
	in.Events = []Event{}
	s := Build(in)
	if s.Empty {
		t.Fatalf("Build() Empty = true; want false")
	}
	if len(s.Markers) != 0 {
		t.Fatalf("len(Markers) = %d; want 0", len(s.Markers))
	}
}

func TestBuildHidesMarkersWhenDisabled(t *testing.T) {
	in := scenarioInput()
	in.Events = []Event{{ID: "a", T: 100, Category: CategoryLNG}}
	in.ShowMarkers = false
	if got := len(Build(in).Markers); got != 0 {
		t.Fatalf("len(Markers) = %d; want 0", got)
	}
}

func TestBuildFocusGuideIsClamped(t *testing.T) {
	in := scenarioInput()
	in.Selection = Selection{FocusedTime: timePtr(99999)}
	s := Build(in)
	if s.Focus == nil {
		t.Fatalf("Focus = nil; want guide")
	}
	if !approx(s.Focus.X1, 382) || s.Focus.Dash != focusDash {
		t.Fatalf("Focus = %+v; want dashed guide at x=382", s.Focus)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	in := scenarioInput()
	in.Events = []Event{{T: 1000, Category: CategoryStorage, Title: "s"}}
	if !reflect.DeepEqual(Build(in), Build(in)) {
		t.Fatalf("Build() differs across identical inputs")
	}
}

func TestSceneSVG(t *testing.T) {
	in := scenarioInput()
	in.Events = []Event{{ID: "e<1>", T: 900, Category: CategoryLNG, Title: "Freeport & co"}}
	in.Selection = Selection{SelectedID: "e<1>"}
	svg := Build(in).SVG()

	for _, want := range []string{
		`viewBox="0 0 400 300"`,
		`preserveAspectRatio="none"`,
		`class="price-line"`,
		`class="price-area"`,
		`data-event-id="e&lt;1&gt;"`,
		`Freeport &amp; co`,
		`stroke-dasharray="3 4"`,
		`>$/MMBtu</text>`,
	} {
		if !strings.Contains(svg, want) {
			t.Fatalf("SVG() missing %q in %s", want, svg)
		}
	}

	empty := emptyScene(Viewport{Width: 10, Height: 10}).SVG()
	if strings.Contains(empty, "<path") {
		t.Fatalf("empty SVG() = %q; want no paths", empty)
	}
}

func TestMonthBoundariesThinToLimit(t *testing.T) {
	tMin := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	tMax := time.Date(2009, 12, 31, 0, 0, 0, 0, time.UTC).UnixMilli()

	got := monthBoundaries(tMin, tMax, time.UTC, 30)
	if len(got) == 0 || len(got) > 30 {
		t.Fatalf("len(monthBoundaries()) = %d; want 1..30", len(got))
	}
	// 120 months over 30 slots keeps every 4th month
	if got[1].Sub(got[0]) < 80*24*time.Hour {
		t.Fatalf("boundaries %v and %v not thinned", got[0], got[1])
	}
	if got := monthBoundaries(tMin, tMax, time.UTC, 0); got != nil {
		t.Fatalf("monthBoundaries(limit 0) = %v; want nil", got)
	}
}

func TestBuildBoundsMonthGridOnWideDomain(t *testing.T) {
	in := scenarioInput()
	in.Prices = []PriceSample{{T: -1e16, P: 2.0}, {T: 0, P: 2.5}, {T: 1e16, P: 2.2}}
	s := Build(in)
	if s.Empty {
		t.Fatalf("Build() Empty = true; want a scene")
	}
	innerW := 400 - DefaultPadding.Left - DefaultPadding.Right
	limit := int(innerW) + yTickCount + 1
	if len(s.Grid) > limit || len(s.Axis) > limit {
		t.Fatalf("len(Grid) = %d, len(Axis) = %d; want at most %d", len(s.Grid), len(s.Axis), limit)
	}
}
