package chart

import "math"

// Padding is the gap between the container edge and the plot area.
type Padding struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// DefaultPadding leaves room for value labels on the left and month labels below.
var DefaultPadding = Padding{Left: 46, Right: 18, Top: 16, Bottom: 34}

const (
	valueMarginRatio    = 0.08
	valueMarginFallback = 0.1
)

// Domain is the data interval mapped onto the plot area.
type Domain struct {
	TMin int64   `json:"t_min"`
	TMax int64   `json:"t_max"`
	VMin float64 `json:"v_min"`
	VMax float64 `json:"v_max"`
}

// ComputeDomain derives the time domain and the padded value domain of samples.
// The caller must pass at least two samples.
func ComputeDomain(samples []PriceSample) Domain {
	d := Domain{
		TMin: samples[0].T,
		TMax: samples[0].T,
		VMin: samples[0].P,
		VMax: samples[0].P,
	}
	for _, s := range samples[1:] {
		d.TMin = min(d.TMin, s.T)
		d.TMax = max(d.TMax, s.T)
		d.VMin = math.Min(d.VMin, s.P)
		d.VMax = math.Max(d.VMax, s.P)
	}
	margin := (d.VMax - d.VMin) * valueMarginRatio
	if margin == 0 {
		margin = valueMarginFallback
	}
	d.VMin -= margin
	d.VMax += margin
	return d
}

// Span is TMax-TMin computed in float64 so wide domains cannot overflow.
func (d Domain) Span() float64 {
	return float64(d.TMax) - float64(d.TMin)
}

// Valid reports whether d can be mapped without dividing by zero.
func (d Domain) Valid() bool {
	if span := d.Span(); !(span > 0) || math.IsInf(span, 0) {
		return false
	}
	if math.IsNaN(d.VMin) || math.IsNaN(d.VMax) || math.IsInf(d.VMin, 0) || math.IsInf(d.VMax, 0) {
		return false
	}
	return d.VMax > d.VMin
}

// Mapper converts data coordinates to pixel coordinates with affine transforms.
// It assumes a valid domain; callers check Domain.Valid first.
type Mapper struct {
	vp     Viewport
	pad    Padding
	dom    Domain
	innerW float64
	innerH float64
}

func NewMapper(vp Viewport, pad Padding, dom Domain) Mapper {
	return Mapper{
		vp:     vp,
		pad:    pad,
		dom:    dom,
		innerW: float64(vp.Width) - pad.Left - pad.Right,
		innerH: float64(vp.Height) - pad.Top - pad.Bottom,
	}
}

func (m Mapper) ToX(t float64) float64 {
	return m.pad.Left + (t-float64(m.dom.TMin))/m.dom.Span()*m.innerW
}

func (m Mapper) ToY(v float64) float64 {
	return m.pad.Top + (1-(v-m.dom.VMin)/(m.dom.VMax-m.dom.VMin))*m.innerH
}

// TimeAt is the inverse of ToX. It is not clamped to the domain.
func (m Mapper) TimeAt(x float64) float64 {
	return float64(m.dom.TMin) + (x-m.pad.Left)/m.innerW*m.dom.Span()
}

// ClampTime limits t to the time domain.
func (m Mapper) ClampTime(t int64) int64 {
	return min(max(t, m.dom.TMin), m.dom.TMax)
}

func (m Mapper) Domain() Domain        { return m.dom }
func (m Mapper) Padding() Padding      { return m.pad }
func (m Mapper) InnerWidth() float64   { return m.innerW }
func (m Mapper) InnerHeight() float64  { return m.innerH }
func (m Mapper) PlotTop() float64      { return m.pad.Top }
func (m Mapper) PlotBottom() float64   { return m.pad.Top + m.innerH }
func (m Mapper) PlotLeft() float64     { return m.pad.Left }
func (m Mapper) PlotRight() float64    { return float64(m.vp.Width) - m.pad.Right }
func (m Mapper) Viewport() Viewport    { return m.vp }
