package chart

// PriceSample is one time/price observation on the price curve.
type PriceSample struct {
	T int64   `json:"t" doc:"Epoch milliseconds"`
	P float64 `json:"p" doc:"Price"`
}

// Event is a categorized, discrete occurrence drawn as a marker.
type Event struct {
	ID       string `json:"id,omitempty"`
	T        int64  `json:"t" doc:"Epoch milliseconds"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Source   string `json:"source"`
	URL      string `json:"url,omitempty"`
}

// Viewport is the pixel size of the widget container.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Selection is the widget's single piece of persistent interaction state.
// Empty SelectedID means nothing is selected; nil FocusedTime means no focus.
type Selection struct {
	SelectedID  string `json:"selected_id,omitempty"`
	FocusedTime *int64 `json:"focused_time,omitempty"`
}

// Tooltip is the transient hover state of the widget.
type Tooltip struct {
	Visible  bool    `json:"visible"`
	Title    string  `json:"title,omitempty"`
	Meta     string  `json:"meta,omitempty"`
	Category string  `json:"category,omitempty"`
	T        int64   `json:"t,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

const (
	MinViewportWidth  = 200
	MinViewportHeight = 200
)

func timePtr(t int64) *int64 { return &t }
