// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package overlay

// Popup geometry in CSS pixels
const (
	Width   = 320.0
	Height  = 150.0
	Padding = 12.0
)

// Side values
const (
	SideTop    = "top"
	SideBottom = "bottom"
)

// Rect is a bounding box in viewport (client) coordinates.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Viewport describes the visible window and its scroll offset.
type Viewport struct {
	ScrollX float64 `json:"scrollX"`
	ScrollY float64 `json:"scrollY"`
	Width   float64 `json:"innerWidth"`
	Height  float64 `json:"innerHeight"`
}

// Placement is the document-coordinate position of the popup.
type Placement struct {
	X                  float64 `json:"x"`
	Y                  float64 `json:"y"`
	ArrowOffsetPercent float64 `json:"arrowX"`
	Side               string  `json:"side"`
	Visible            bool    `json:"visible"`
}

// Place positions the popup centred over rect, clamped horizontally into
// the viewport. It flips below the word when there is not enough room
// above. The arrow offset points at the word centre even after clamping.
func Place(rect Rect, vp Viewport) Placement {
	anchor := rect.Left + vp.ScrollX + rect.Width()/2

	x := anchor - Width/2
	minX := vp.ScrollX + Padding
	maxX := vp.ScrollX + vp.Width - Width - Padding
	if x < minX {
		x = minX
	}
	if x > maxX {
		x = maxX
	}

	p := Placement{
		X:                  x,
		Y:                  rect.Top + vp.ScrollY - Height - Padding,
		ArrowOffsetPercent: (anchor - x) / Width * 100,
		Side:               SideTop,
		Visible:            true,
	}

	if rect.Top < Height+Padding {
		p.Y = rect.Bottom + vp.ScrollY + Padding
		p.Side = SideBottom
	}
	return p
}

// InViewport reports whether rect lies fully inside the visible window.
func InViewport(rect Rect, vp Viewport) bool {
	return rect.Top >= 0 &&
		rect.Left >= 0 &&
		rect.Bottom <= vp.Height &&
		rect.Right <= vp.Width
}
