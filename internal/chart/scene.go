package chart

// Line is a straight SVG line segment.
type Line struct {
	X1          float64 `json:"x1"`
	Y1          float64 `json:"y1"`
	X2          float64 `json:"x2"`
	Y2          float64 `json:"y2"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`
	Dash        string  `json:"dash,omitempty"`
}

// Text is a positioned label.
type Text struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Anchor   string  `json:"anchor"`
	FontSize float64 `json:"font_size,omitempty"`
	Fill     string  `json:"fill,omitempty"`
	Content  string  `json:"content"`
}

// Path is an SVG path with a CSS class.
type Path struct {
	D     string `json:"d"`
	Class string `json:"class"`
}

// Marker is the drawn glyph of one event, snapped to its nearest sample.
type Marker struct {
	ID          string  `json:"id"`
	Event       Event   `json:"event"`
	SampleIndex int     `json:"sample_index"`
	CX          float64 `json:"cx"`
	CY          float64 `json:"cy"`
	R           float64 `json:"r"`
	Fill        string  `json:"fill"`
	FillOpacity float64 `json:"fill_opacity"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"stroke_width"`
	Selected    bool    `json:"selected"`
	Guide       *Line   `json:"guide,omitempty"`
}

// Contains reports whether the point (x, y) lies on the marker disc.
func (m Marker) Contains(x, y float64) bool {
	dx, dy := x-m.CX, y-m.CY
	return dx*dx+dy*dy <= m.R*m.R
}

// Scene is the full visual output of one render pass. An empty scene has no
// nodes and represents "render nothing".
type Scene struct {
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Empty   bool     `json:"empty"`
	Domain  *Domain  `json:"domain,omitempty"`
	Grid    []Line   `json:"grid,omitempty"`
	Axis    []Text   `json:"axis,omitempty"`
	Unit    *Text    `json:"unit,omitempty"`
	Area    *Path    `json:"area,omitempty"`
	Curve   *Path    `json:"curve,omitempty"`
	Focus   *Line    `json:"focus,omitempty"`
	Markers []Marker `json:"markers,omitempty"`
}

func emptyScene(vp Viewport) *Scene {
	return &Scene{Width: vp.Width, Height: vp.Height, Empty: true}
}

// MarkerAt returns the topmost marker under (x, y). Markers drawn later sit
// above earlier ones.
func (s *Scene) MarkerAt(x, y float64) (Marker, bool) {
	for i := len(s.Markers) - 1; i >= 0; i-- {
		if s.Markers[i].Contains(x, y) {
			return s.Markers[i], true
		}
	}
	return Marker{}, false
}

// SelectedMarker returns the marker drawn in the selected state, if any.
func (s *Scene) SelectedMarker() (Marker, bool) {
	for _, m := range s.Markers {
		if m.Selected {
			return m, true
		}
	}
	return Marker{}, false
}
