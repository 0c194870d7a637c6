package chart

import (
	"fmt"
	"time"
)

const (
	tooltipOffset = 14
	tooltipMargin = 10
	tooltipInset  = 20

	DefaultPriceSource = "Henry Hub"
)

// TooltipContent is what a tooltip displays.
type TooltipContent struct {
	Title    string
	Category string
	Source   string
	T        int64
	key      string
}

// TooltipController is the hidden/shown hover state machine. It is
// independent of selection.
type TooltipController struct {
	shown   bool
	content TooltipContent
	x, y    float64
}

// Show opens the tooltip next to the anchor point (x, y).
func (c *TooltipController) Show(content TooltipContent, x, y float64) {
	c.shown = true
	c.content = content
	c.x = x + tooltipOffset
	c.y = y + tooltipOffset
}

// Move follows the pointer, clamped so the tooltip stays inside a w×h container.
func (c *TooltipController) Move(px, py float64, w, h int) {
	if !c.shown {
		return
	}
	c.x = clamp(px+tooltipOffset, tooltipMargin, float64(w-tooltipInset))
	c.y = clamp(py+tooltipOffset, tooltipMargin, float64(h-tooltipInset))
}

func (c *TooltipController) Hide() {
	c.shown = false
	c.content = TooltipContent{}
}

// Target returns the key of the content currently shown, empty when hidden.
func (c *TooltipController) Target() string {
	if !c.shown {
		return ""
	}
	return c.content.key
}

// State renders the tooltip for display with times formatted in loc.
func (c *TooltipController) State(loc *time.Location) Tooltip {
	if !c.shown {
		return Tooltip{}
	}
	return Tooltip{
		Visible:  true,
		Title:    c.content.Title,
		Meta:     fmt.Sprintf("%s • %s • %s", c.content.Category, c.content.Source, FormatTimestamp(c.content.T, loc)),
		Category: c.content.Category,
		T:        c.content.T,
		X:        c.x,
		Y:        c.y,
	}
}

func eventTooltip(id string, ev Event) TooltipContent {
	return TooltipContent{
		Title:    ev.Title,
		Category: NormalizeCategory(ev.Category),
		Source:   ev.Source,
		T:        ev.T,
		key:      "event:" + id,
	}
}

func priceTooltip(idx int, s PriceSample, source string) TooltipContent {
	return TooltipContent{
		Title:    fmt.Sprintf("Price: %.3f", s.P),
		Category: CategoryPrice,
		Source:   source,
		T:        s.T,
		key:      fmt.Sprintf("price:%d", idx),
	}
}

func clamp(x, lo, hi float64) float64 {
	if x > hi {
		x = hi
	}
	if x < lo {
		x = lo
	}
	return x
}
