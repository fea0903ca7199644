// Package mux implements the priority multiplexer (component C5): it
// holds every registered color source and, at each evaluation, selects
// the single "visible" one by priority and timeout.
package mux

import (
	"sync"
	"time"

	"github.com/ledstream/core/ledmap"
)

// SentinelPriority is the reserved lowest-priority slot that always
// holds a black color, guaranteeing currentPriority is always valid.
const SentinelPriority = 255

// ComponentColor is the component tag the reserved sentinel input
// always carries, applied uniformly rather than left unset on some
// paths.
const ComponentColor = "COMP_COLOR"

// inactiveTimeout marks a record as registered-but-not-selectable.
const inactiveTimeout = -100

// Input is a single priority input record.
type Input struct {
	Priority    uint8
	Component   string
	Origin      string
	ComponentID string
	TimeoutMs   int64 // absolute deadline in ms since epoch; inactiveTimeout means inactive; 0 means sticky.
	SmoothCfg   uint32
	StaticColor ledmap.ColorRGB
	Owner       string
}

func (in Input) active(nowMs int64) bool {
	if in.TimeoutMs == inactiveTimeout {
		return false
	}
	if in.TimeoutMs == 0 {
		return true // sticky.
	}
	return nowMs < in.TimeoutMs
}

// Muxer holds every registered input and the currently visible
// selection.
type Muxer struct {
	mu sync.Mutex

	inputs map[uint8]Input

	currentPriority  uint8
	previousPriority uint8
	previousComp     string
	manualSelected   uint8
	manualSet        bool
	autoSelect       bool

	prioritiesChanged chan struct{}
	visibleChanged    chan struct{}

	lastTimeRunner time.Time
}

// New returns a Muxer with only the reserved black sentinel present.
func New() *Muxer {
	m := &Muxer{
		inputs:            make(map[uint8]Input),
		currentPriority:   SentinelPriority,
		previousPriority:  SentinelPriority,
		autoSelect:        true,
		prioritiesChanged: make(chan struct{}, 1),
		visibleChanged:    make(chan struct{}, 1),
	}
	m.inputs[SentinelPriority] = Input{
		Priority:    SentinelPriority,
		Component:   ComponentColor,
		StaticColor: ledmap.Black,
		TimeoutMs:   0,
	}
	return m
}

// PrioritiesChanged signals whenever the candidate set changes (a
// register, or a selection change at a priority higher than current),
// mirroring the original's distinct SignalPrioritiesChanged.
func (m *Muxer) PrioritiesChanged() <-chan struct{} { return m.prioritiesChanged }

// VisibleChanged signals whenever the selected (visible) source
// changes, mirroring the original's SignalVisiblePriorityChanged.
func (m *Muxer) VisibleChanged() <-chan struct{} { return m.visibleChanged }

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Register creates an inactive record at priority p. It emits
// prioritiesChanged only when auto-select is off, so a manual UI sees
// the new candidate.
func (m *Muxer) Register(priority uint8, component, origin string, smoothCfg uint32, owner string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.inputs[priority] = Input{
		Priority:  priority,
		Component: component,
		Origin:    origin,
		SmoothCfg: smoothCfg,
		Owner:     owner,
		TimeoutMs: inactiveTimeout,
	}
	if !m.autoSelect {
		notify(m.prioritiesChanged)
	}
}

// SetInput activates priority p's record and updates its deadline.
// timeoutMs == 0 means sticky.
func (m *Muxer) SetInput(priority uint8, timeoutMs int64, color ledmap.ColorRGB, nowMs int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	in, ok := m.inputs[priority]
	if !ok {
		in = Input{Priority: priority}
	}
	in.TimeoutMs = timeoutMs
	in.StaticColor = color
	m.inputs[priority] = in

	if priority < m.currentPriority {
		notify(m.prioritiesChanged)
	}
	m.evaluateLocked(nowMs)
}

// SetInputInactive is setInput(p, -100).
func (m *Muxer) SetInputInactive(priority uint8, nowMs int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.inputs[priority]
	if !ok {
		return
	}
	in.TimeoutMs = inactiveTimeout
	m.inputs[priority] = in
	m.evaluateLocked(nowMs)
}

// ClearInput removes the record at priority p.
func (m *Muxer) ClearInput(priority uint8, nowMs int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inputs, priority)
	m.evaluateLocked(nowMs)
}

// ClearAll drops every non-sentinel record. If force is false, only
// color/effect/image sources are cleared (component != "video"),
// preserving video sources; if force is true, everything is dropped
// and the sentinel is reinstalled.
func (m *Muxer) ClearAll(force bool, nowMs int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for p, in := range m.inputs {
		if p == SentinelPriority {
			continue
		}
		if force || in.Component != "video" {
			delete(m.inputs, p)
		}
	}
	m.inputs[SentinelPriority] = Input{
		Priority:    SentinelPriority,
		Component:   ComponentColor,
		StaticColor: ledmap.Black,
		TimeoutMs:   0,
	}
	m.evaluateLocked(nowMs)
}

// SetManualSelection pins the visible source to priority p regardless
// of auto-select, until auto-select is re-enabled.
func (m *Muxer) SetManualSelection(priority uint8, nowMs int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.manualSelected = priority
	m.manualSet = true
	m.autoSelect = false
	m.evaluateLocked(nowMs)
}

// SetAutoSelect toggles automatic priority-based selection.
func (m *Muxer) SetAutoSelect(auto bool, nowMs int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoSelect = auto
	m.evaluateLocked(nowMs)
}

// Evaluate re-runs the selection algorithm for the given instant,
// intended to be called by a ~250ms ticker and whenever state changes.
func (m *Muxer) Evaluate(nowMs int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluateLocked(nowMs)
}

func (m *Muxer) evaluateLocked(nowMs int64) {
	newPriority := uint8(SentinelPriority)
	for p, in := range m.inputs {
		if in.active(nowMs) && p < newPriority {
			newPriority = p
		}
	}

	if !m.autoSelect {
		if _, ok := m.inputs[m.manualSelected]; m.manualSet && ok {
			newPriority = m.manualSelected
		} else {
			m.autoSelect = true
		}
	}

	newComp := m.inputs[newPriority].Component
	if newPriority != m.currentPriority || newComp != m.previousComp {
		m.previousPriority = m.currentPriority
		m.currentPriority = newPriority
		m.previousComp = newComp
		notify(m.visibleChanged)
	}
}

// Visible returns the currently selected input's static color and its
// priority.
func (m *Muxer) Visible() (ledmap.ColorRGB, uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in := m.inputs[m.currentPriority]
	return in.StaticColor, m.currentPriority
}

// TimeRunner re-emits visibleChanged for the current selection if it
// carries a positive timeout and at least 1000ms elapsed since the
// last re-emission, so downstream consumers that only react to
// visibleChanged don't starve waiting on a static timeout-bearing
// source.
func (m *Muxer) TimeRunner(now time.Time, nowMs int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	in := m.inputs[m.currentPriority]
	if in.TimeoutMs <= 0 {
		return
	}
	if now.Sub(m.lastTimeRunner) < time.Second {
		return
	}
	m.lastTimeRunner = now
	notify(m.visibleChanged)
}
