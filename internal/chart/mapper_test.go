package chart

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestComputeDomainMargin(t *testing.T) {
	d := ComputeDomain([]PriceSample{{T: 0, P: 2.0}, {T: 1000, P: 2.5}, {T: 2000, P: 2.2}})
	if d.TMin != 0 || d.TMax != 2000 {
		t.Fatalf("time domain = [%d,%d]; want [0,2000]", d.TMin, d.TMax)
	}
	if !approx(d.VMin, 1.96) || !approx(d.VMax, 2.54) {
		t.Fatalf("value domain = [%v,%v]; want [1.96,2.54]", d.VMin, d.VMax)
	}
}

func TestComputeDomainFlatSeriesUsesFallbackMargin(t *testing.T) {
	d := ComputeDomain([]PriceSample{{T: 0, P: 3}, {T: 10, P: 3}})
	if !approx(d.VMin, 2.9) || !approx(d.VMax, 3.1) {
		t.Fatalf("value domain = [%v,%v]; want [2.9,3.1]", d.VMin, d.VMax)
	}
	if !d.Valid() {
		t.Fatalf("Valid() = false; want true")
	}
}

func TestDomainValidRejectsDegenerate(t *testing.T) {
	tests := []Domain{
		{TMin: 5, TMax: 5, VMin: 0, VMax: 1},
		{TMin: 0, TMax: 5, VMin: math.NaN(), VMax: 1},
		{TMin: 0, TMax: 5, VMin: 0, VMax: math.Inf(1)},
	}
	for _, d := range tests {
		if d.Valid() {
			t.Fatalf("Valid(%+v) = true; want false", d)
		}
	}
}

func TestMapperEndpoints(t *testing.T) {
	vp := Viewport{Width: 400, Height: 300}
	dom := Domain{TMin: 1000, TMax: 5000, VMin: 1.5, VMax: 4.5}
	m := NewMapper(vp, DefaultPadding, dom)

	innerW := 400 - DefaultPadding.Left - DefaultPadding.Right
	innerH := 300 - DefaultPadding.Top - DefaultPadding.Bottom

	if got := m.ToX(1000); !approx(got, DefaultPadding.Left) {
		t.Fatalf("ToX(tMin) = %v; want %v", got, DefaultPadding.Left)
	}
	if got := m.ToX(5000); !approx(got, DefaultPadding.Left+innerW) {
		t.Fatalf("ToX(tMax) = %v; want %v", got, DefaultPadding.Left+innerW)
	}
	if got := m.ToY(4.5); !approx(got, DefaultPadding.Top) {
		t.Fatalf("ToY(vMax) = %v; want %v", got, DefaultPadding.Top)
	}
	if got := m.ToY(1.5); !approx(got, DefaultPadding.Top+innerH) {
		t.Fatalf("ToY(vMin) = %v; want %v", got, DefaultPadding.Top+innerH)
	}
	if got := m.PlotBottom(); !approx(got, DefaultPadding.Top+innerH) {
		t.Fatalf("PlotBottom() = %v; want %v", got, DefaultPadding.Top+innerH)
	}
}

func TestMapperMonotonic(t *testing.T) {
	m := NewMapper(Viewport{Width: 640, Height: 480}, DefaultPadding, Domain{TMin: -500, TMax: 1500, VMin: -2, VMax: 7})
	prevX, prevY := math.Inf(-1), math.Inf(1)
	for i := 0; i <= 100; i++ {
		x := m.ToX(-500 + float64(i)*20)
		y := m.ToY(-2 + float64(i)*0.09)
		if x <= prevX {
			t.Fatalf("ToX not increasing at step %d: %v <= %v", i, x, prevX)
		}
		if y >= prevY {
			t.Fatalf("ToY not decreasing at step %d: %v >= %v", i, y, prevY)
		}
		prevX, prevY = x, y
	}
}

func TestMapperTimeAtInvertsToX(t *testing.T) {
	m := NewMapper(Viewport{Width: 500, Height: 250}, DefaultPadding, Domain{TMin: 0, TMax: 86_400_000, VMin: 0, VMax: 1})
	for _, ts := range []float64{0, 1234, 43_200_000, 86_400_000} {
		if got := m.TimeAt(m.ToX(ts)); math.Abs(got-ts) > 1e-3 {
			t.Fatalf("TimeAt(ToX(%v)) = %v; want %v", ts, got, ts)
		}
	}
}

func TestMapperClampTime(t *testing.T) {
	m := NewMapper(Viewport{Width: 300, Height: 300}, DefaultPadding, Domain{TMin: 100, TMax: 200, VMin: 0, VMax: 1})
	if got := m.ClampTime(50); got != 100 {
		t.Fatalf("ClampTime(50) = %d; want 100", got)
	}
	if got := m.ClampTime(250); got != 200 {
		t.Fatalf("ClampTime(250) = %d; want 200", got)
	}
	if got := m.ClampTime(150); got != 150 {
		t.Fatalf("ClampTime(150) = %d; want 150", got)
	}
}

func TestMapperWideDomainDoesNotOverflow(t *testing.T) {
	dom := Domain{TMin: -9e18, TMax: 9e18, VMin: 0, VMax: 1}
	if !dom.Valid() {
		t.Fatalf("Valid() = false; want true for a wide finite domain")
	}
	vp := Viewport{Width: 400, Height: 300}
	m := NewMapper(vp, DefaultPadding, dom)
	right := 400 - DefaultPadding.Right
	if got := m.ToX(float64(dom.TMin)); !approx(got, DefaultPadding.Left) {
		t.Fatalf("ToX(tMin) = %v; want %v", got, DefaultPadding.Left)
	}
	if got := m.ToX(float64(dom.TMax)); !approx(got, right) {
		t.Fatalf("ToX(tMax) = %v; want %v", got, right)
	}
	if got := m.ToX(0); !approx(got, (DefaultPadding.Left+right)/2) {
		t.Fatalf("ToX(0) = %v; want plot center", got)
	}
}

func TestDomainSpan(t *testing.T) {
	if got := (Domain{TMin: 1000, TMax: 5000}).Span(); got != 4000 {
		t.Fatalf("Span() = %v; want 4000", got)
	}
	if (Domain{TMin: 5, TMax: 5, VMin: 0, VMax: 1}).Valid() {
		t.Fatalf("Valid() = true; want false for an empty time span")
	}
}
