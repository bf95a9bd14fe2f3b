// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package selection

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/danielhkuo/highlightly/models"
	"github.com/danielhkuo/highlightly/overlay"
	"github.com/danielhkuo/highlightly/timer"
)

const (
	DebounceDelay  = 300 * time.Millisecond
	ScrollThrottle = 10 * time.Millisecond
)

// Location is the scheme and host of the observed page.
type Location struct {
	Protocol string // including the trailing colon, e.g. "https:"
	Hostname string
}

// Selection is a snapshot of the live document selection.
type Selection struct {
	Text      string
	Collapsed bool
	Rect      overlay.Rect
}

// Page exposes the live state of the host document.
type Page interface {
	Location() Location
	Selection() Selection
	Viewport() overlay.Viewport
}

// Overlay renders the definition popup. Implementations must not call back
// into the Detector synchronously.
type Overlay interface {
	Show(word string, p overlay.Placement)
	Move(p overlay.Placement)
	Hide()
}

// Candidate is the accepted word waiting for, or shown after, the debounce.
type Candidate struct {
	Word       string
	Rect       overlay.Rect
	AcceptedAt time.Time
}

// Detector turns selection events into show/hide intents.
type Detector struct {
	mu    sync.Mutex
	page  Page
	view  Overlay
	clock timer.Clock

	debounce *timer.Slot
	scroll   *timer.Slot

	user       *models.User
	hosts      *HostMatcher
	candidate  *Candidate
	closedWord string
	shownWord  string
}

func NewDetector(page Page, view Overlay, clock timer.Clock) *Detector {
	return &Detector{
		page:     page,
		view:     view,
		clock:    clock,
		debounce: timer.NewSlot(clock),
		scroll:   timer.NewSlot(clock),
	}
}

// SetUser replaces the cached user and re-runs detection.
func (d *Detector) SetUser(user *models.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setUserLocked(user.Clone())
	d.detectLocked()
}

// Candidate returns a copy of the current candidate, or nil.
func (d *Detector) Candidate() *Candidate {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.candidate == nil {
		return nil
	}
	c := *d.candidate
	return &c
}

// ClosedWord returns the suppressed word, or "".
func (d *Detector) ClosedWord() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closedWord
}

// HandleSelection inspects the live selection (mouseup).
func (d *Detector) HandleSelection() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detectLocked()
}

// HandleSelectionChange hides the overlay when the selection collapses.
func (d *Detector) HandleSelectionChange() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.page.Selection().Collapsed {
		d.resetLocked()
	}
}

// HandleMouseDown reacts to a document mousedown. A click outside the
// overlay with nothing selected hides it and forgets the dismissed word.
func (d *Detector) HandleMouseDown(insideOverlay bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if insideOverlay {
		return
	}
	if !d.page.Selection().Collapsed {
		return
	}
	d.hideLocked()
	d.closedWord = ""
}

// Dismiss closes the overlay and suppresses the same word until the
// selection changes.
func (d *Detector) Dismiss() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.shownWord != "" {
		d.closedWord = d.shownWord
	}
	d.hideLocked()
}

// HandleScroll repositions the overlay, at most once per throttle window.
func (d *Detector) HandleScroll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.shownWord == "" || d.candidate == nil {
		return
	}
	d.scroll.TrySchedule(ScrollThrottle, d.reposition)
}

// HandleMessage applies a broadcast from another extension context.
func (d *Detector) HandleMessage(msg models.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch msg.Type {
	case models.MsgUserUpdated:
		d.setUserLocked(msg.User.Clone())
		d.closedWord = ""
		d.detectLocked()

	case models.MsgExtensionActivated, models.MsgExtensionDeactivated:
		if msg.IsActivated != nil {
			if d.user == nil {
				d.user = &models.User{}
			}
			on := *msg.IsActivated
			d.user.ExtensionMode = &on
		}
		d.closedWord = ""
		d.detectLocked()

	case models.MsgDisallowedListUpdated:
		if d.user == nil {
			d.user = &models.User{}
		}
		d.user.DisallowedList = append([]string(nil), msg.DisallowedList...)
		d.hosts = NewHostMatcher(d.user.DisallowedList)
		d.detectLocked()

	case models.MsgUserLoggedOut:
		d.hideLocked()
	}
}

// Listen applies messages until ctx is done or ch is closed.
func (d *Detector) Listen(ctx context.Context, ch <-chan models.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			d.HandleMessage(msg)
		}
	}
}

// Unload tears down timers and the overlay (page navigation).
func (d *Detector) Unload() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.debounce.Stop()
	d.scroll.Stop()
	d.hideLocked()
	d.candidate = nil
	d.closedWord = ""
}

func (d *Detector) setUserLocked(user *models.User) {
	d.user = user
	if user != nil {
		d.hosts = NewHostMatcher(user.DisallowedList)
	} else {
		d.hosts = nil
	}
}

func (d *Detector) blockedLocked() bool {
	loc := d.page.Location()
	if IsRestricted(loc) {
		return true
	}
	if d.user != nil && d.user.ExtensionMode != nil && !*d.user.ExtensionMode {
		return true
	}
	return d.hosts.Match(loc.Hostname)
}

func (d *Detector) detectLocked() {
	if d.blockedLocked() {
		d.rejectLocked()
		return
	}

	sel := d.page.Selection()
	if sel.Collapsed {
		d.rejectLocked()
		return
	}

	word, err := Validate(sel.Text)
	if err != nil {
		slog.Debug("selection rejected", "reason", err)
		d.rejectLocked()
		return
	}

	if word == d.closedWord {
		return
	}

	d.candidate = &Candidate{Word: word, Rect: sel.Rect, AcceptedAt: d.clock.Now()}
	rect := sel.Rect
	d.debounce.Schedule(DebounceDelay, func() { d.settle(word, rect) })
}

// settle runs when the debounce expires.
func (d *Detector) settle(word string, rect overlay.Rect) {
	d.mu.Lock()
	defer d.mu.Unlock()

	live := d.page.Selection()
	if live.Collapsed || strings.TrimSpace(live.Text) != word {
		return
	}
	if d.candidate == nil || d.candidate.Word != word || word == d.closedWord {
		return
	}

	d.hideLocked()
	p := overlay.Place(rect, d.page.Viewport())
	d.view.Show(word, p)
	d.shownWord = word
}

func (d *Detector) reposition() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.shownWord == "" || d.candidate == nil {
		return
	}

	live := d.page.Selection()
	if live.Collapsed || strings.TrimSpace(live.Text) != d.candidate.Word {
		d.hideLocked()
		return
	}

	vp := d.page.Viewport()
	p := overlay.Place(live.Rect, vp)
	p.Visible = overlay.InViewport(live.Rect, vp)
	d.view.Move(p)
	d.candidate.Rect = live.Rect
}

func (d *Detector) rejectLocked() {
	d.debounce.Stop()
	d.candidate = nil
	d.hideLocked()
}

func (d *Detector) resetLocked() {
	d.rejectLocked()
	d.closedWord = ""
}

func (d *Detector) hideLocked() {
	d.scroll.Stop()
	if d.shownWord == "" {
		return
	}
	d.view.Hide()
	d.shownWord = ""
}
