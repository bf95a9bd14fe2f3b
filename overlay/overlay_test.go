// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var desktop = Viewport{Width: 1280, Height: 800}

func TestPlaceCentersAboveWord(t *testing.T) {
	rect := Rect{Top: 400, Left: 600, Bottom: 420, Right: 680}

	p := Place(rect, desktop)

	assert.Equal(t, SideTop, p.Side)
	assert.Equal(t, 640.0-Width/2, p.X)
	assert.Equal(t, 400.0-Height-Padding, p.Y)
	assert.InDelta(t, 50.0, p.ArrowOffsetPercent, 1e-9)
	assert.True(t, p.Visible)
}

func TestPlaceIsPure(t *testing.T) {
	rect := Rect{Top: 37, Left: 5, Bottom: 55, Right: 40}
	vp := Viewport{ScrollX: 100, ScrollY: 2000, Width: 900, Height: 700}

	assert.Equal(t, Place(rect, vp), Place(rect, vp))
}

func TestPlaceClampsHorizontally(t *testing.T) {
	tests := []struct {
		name      string
		rect      Rect
		vp        Viewport
		wantX     float64
		wantArrow float64
	}{
		{
			name:      "left edge",
			rect:      Rect{Top: 300, Left: 0, Bottom: 320, Right: 40},
			vp:        desktop,
			wantX:     Padding,
			wantArrow: (20 - Padding) / Width * 100,
		},
		{
			name:      "right edge",
			rect:      Rect{Top: 300, Left: 1240, Bottom: 320, Right: 1280},
			vp:        desktop,
			wantX:     1280 - Width - Padding,
			wantArrow: (1260 - (1280 - Width - Padding)) / Width * 100,
		},
		{
			name:      "scrolled left edge",
			rect:      Rect{Top: 300, Left: 10, Bottom: 320, Right: 30},
			vp:        Viewport{ScrollX: 500, Width: 1280, Height: 800},
			wantX:     500 + Padding,
			wantArrow: (520 - (500 + Padding)) / Width * 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Place(tt.rect, tt.vp)
			assert.InDelta(t, tt.wantX, p.X, 1e-9)
			assert.InDelta(t, tt.wantArrow, p.ArrowOffsetPercent, 1e-9)
		})
	}
}

func TestPlaceNeverLeavesViewport(t *testing.T) {
	vp := Viewport{ScrollX: 40, ScrollY: 0, Width: Width + 2*Padding + 200, Height: 600}
	for left := -100.0; left <= vp.Width+100; left += 7 {
		p := Place(Rect{Top: 300, Left: left, Bottom: 318, Right: left + 30}, vp)
		assert.GreaterOrEqual(t, p.X, vp.ScrollX+Padding, "left=%v", left)
		assert.LessOrEqual(t, p.X+Width, vp.ScrollX+vp.Width-Padding, "left=%v", left)
	}
}

func TestPlaceFlipsBelow(t *testing.T) {
	vp := Viewport{ScrollY: 1000, Width: 1280, Height: 800}

	// Exactly at the threshold stays on top
	top := Place(Rect{Top: Height + Padding, Left: 100, Bottom: Height + Padding + 20, Right: 150}, vp)
	assert.Equal(t, SideTop, top.Side)
	assert.Equal(t, 1000.0, top.Y)

	below := Place(Rect{Top: Height + Padding - 1, Left: 100, Bottom: Height + Padding + 19, Right: 150}, vp)
	assert.Equal(t, SideBottom, below.Side)
	assert.Equal(t, Height+Padding+19+1000+Padding, below.Y)
}

func TestInViewport(t *testing.T) {
	assert.True(t, InViewport(Rect{Top: 0, Left: 0, Bottom: 800, Right: 1280}, desktop))
	assert.False(t, InViewport(Rect{Top: -1, Left: 0, Bottom: 20, Right: 40}, desktop))
	assert.False(t, InViewport(Rect{Top: 780, Left: 0, Bottom: 801, Right: 40}, desktop))
	assert.False(t, InViewport(Rect{Top: 10, Left: 1250, Bottom: 30, Right: 1281}, desktop))
}
