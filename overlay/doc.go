// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package overlay computes where the definition popup is drawn relative to
// the selected word. Place is a pure function of the selection rectangle and
// the viewport; callers recompute it rather than adjusting a placement.
package overlay
