// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package selection implements the word selection detector that decides when
the definition overlay is shown.

# Validation

A selection is accepted when its trimmed text is exactly one
whitespace-delimited token made of letters and apostrophes, with at least
three letters once boundary apostrophes are removed:

	word, err := selection.Validate("  ephemeral ")

# Detector

The Detector is driven by host events and renders through an Overlay:

	d := selection.NewDetector(page, view, timer.System())
	d.HandleSelection()       // mouseup
	d.HandleSelectionChange() // selectionchange
	d.HandleMouseDown(false)  // mousedown outside the overlay
	d.HandleScroll()          // scroll
	d.Dismiss()               // overlay close button
	go d.Listen(ctx, messages)

Accepted words are shown after a 300ms debounce, provided the live selection
still holds the same word. A dismissed word stays hidden until the selection
collapses or a user/activation broadcast arrives.

# Disallowed Hosts

Entries match the page host exactly or as a parent domain. Entries
containing '*' are glob patterns where '*' does not cross a dot:

	m := selection.NewHostMatcher([]string{"example.com", "*.internal.corp"})
	m.Match("docs.example.com") // true
*/
package selection
