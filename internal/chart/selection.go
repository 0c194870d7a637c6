package chart

// Origin names where a selection transition was initiated.
type Origin string

const (
	OriginMarker     Origin = "marker"
	OriginList       Origin = "list"
	OriginBackground Origin = "background"
	OriginFocus      Origin = "focus"
	OriginReconcile  Origin = "reconcile"
)

// SelectionController owns the selected identity and focused time of one
// widget. Marker and list clicks run the same transition; neither asks the
// other side to select again.
type SelectionController struct {
	selectedID string
	focused    *int64
}

// MarkerClicked promotes a chart marker to selected.
func (c *SelectionController) MarkerClicked(id string, t int64) bool {
	return c.set(id, timePtr(t))
}

// ListClicked promotes an external list item to selected. A nil time keeps
// the focus cleared.
func (c *SelectionController) ListClicked(id string, t *int64) bool {
	return c.set(id, t)
}

// BackgroundClicked clears selection and focus.
func (c *SelectionController) BackgroundClicked() bool {
	return c.set("", nil)
}

// Focus moves the focus guide without touching the selected identity.
func (c *SelectionController) Focus(t *int64) bool {
	return c.set(c.selectedID, t)
}

// Reconcile clears the selection when the selected identity is no longer in
// the visible set. It reports whether the state changed.
func (c *SelectionController) Reconcile(visible map[string]struct{}) bool {
	if c.selectedID == "" {
		return false
	}
	if _, ok := visible[c.selectedID]; ok {
		return false
	}
	return c.set("", nil)
}

func (c *SelectionController) State() Selection {
	sel := Selection{SelectedID: c.selectedID}
	if c.focused != nil {
		sel.FocusedTime = timePtr(*c.focused)
	}
	return sel
}

func (c *SelectionController) set(id string, t *int64) bool {
	changed := c.selectedID != id || !sameTime(c.focused, t)
	c.selectedID = id
	if t != nil {
		c.focused = timePtr(*t)
	} else {
		c.focused = nil
	}
	return changed
}

func sameTime(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
