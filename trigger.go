package flipbook

import "log"

// TriggerKind identifies the condition a Trigger fires on.
type TriggerKind uint8

const (
	TriggerFrameEnter  TriggerKind = iota // current frame became Frame
	TriggerFrameExit                      // current frame left Frame
	TriggerRangeEnter                     // frame entered [StartFrame, EndFrame]
	TriggerRangeExit                      // frame left [StartFrame, EndFrame]
	TriggerInteraction                    // host-forwarded element interaction
	TriggerPlayback                       // playback state change
	TriggerCustom                         // named custom event
)

// Trigger is a declarative binding from a timeline, interaction, playback,
// or custom condition to a named event. A single flat struct covers all
// kinds; the fields beyond ID, Kind, Action, and Parameters are meaningful
// per Kind only. Action is the event name dispatched when the trigger fires
// and Parameters are merged into the dispatched event data.
type Trigger struct {
	ID         string
	Kind       TriggerKind
	Action     string
	Parameters map[string]Value

	// Frame triggers.
	Frame int

	// Range triggers; bounds are inclusive on both ends.
	StartFrame int
	EndFrame   int

	// Interaction triggers.
	Interaction InteractionType
	ElementID   string

	// Playback triggers.
	Playback PlaybackEventType

	// Custom triggers.
	EventName string
}

// Event is the payload delivered to event handlers.
type Event struct {
	Name string
	Data map[string]Value
}

// EventHandler consumes a dispatched event. A handler that panics is logged
// and isolated; it cannot prevent sibling handlers from running.
type EventHandler func(Event)

// ListenerHandle identifies a registered event handler for removal.
type ListenerHandle struct {
	name string
	id   int
}

type handlerEntry struct {
	id int
	fn EventHandler
}

// TriggerManager evaluates frame and range triggers on every frame change
// and dispatches interaction, playback, and custom triggers on demand. It is
// single-threaded and re-entrant: a handler invoked during dispatch may
// register listeners, add triggers, or seek the clock.
type TriggerManager struct {
	triggers []Trigger
	handlers map[string][]handlerEntry
	nextID   int

	previous     int
	current      int
	activeRanges map[string]bool
}

// NewTriggerManager creates an empty manager positioned at frame 0.
func NewTriggerManager() *TriggerManager {
	return &TriggerManager{
		handlers:     make(map[string][]handlerEntry),
		activeRanges: make(map[string]bool),
	}
}

// AddTrigger registers a trigger declaration. IDs are not checked for
// uniqueness; duplicates each fire independently.
func (m *TriggerManager) AddTrigger(t Trigger) {
	m.triggers = append(m.triggers, t)
}

// AddEventListener registers a handler for a named event. Handlers run in
// registration order.
func (m *TriggerManager) AddEventListener(name string, fn EventHandler) ListenerHandle {
	m.nextID++
	m.handlers[name] = append(m.handlers[name], handlerEntry{id: m.nextID, fn: fn})
	return ListenerHandle{name: name, id: m.nextID}
}

// RemoveEventListener unregisters a handler. Removing an unknown handle is a
// no-op. The handler list is rebuilt rather than compacted in place so an
// in-flight dispatch iterating the old slice is unaffected.
func (m *TriggerManager) RemoveEventListener(h ListenerHandle) {
	entries := m.handlers[h.name]
	kept := make([]handlerEntry, 0, len(entries))
	for _, e := range entries {
		if e.id != h.id {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		delete(m.handlers, h.name)
		return
	}
	m.handlers[h.name] = kept
}

// DispatchEvent invokes every handler registered for name in registration
// order. A panicking handler is recovered and logged; subsequent handlers
// for the same event still run.
func (m *TriggerManager) DispatchEvent(name string, data map[string]Value) {
	for _, e := range m.handlers[name] {
		invokeHandler(name, e.fn, Event{Name: name, Data: data})
	}
}

func invokeHandler(name string, fn EventHandler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("flipbook: handler for event %q panicked: %v", name, r)
		}
	}()
	fn(ev)
}

// UpdateFrame evaluates frame and range triggers for a move from the current
// frame to frame. Calling it with an unchanged frame is a no-op and re-fires
// nothing. Enter triggers are evaluated before exit triggers.
//
// Every condition is evaluated against this one transition before any handler
// runs: a handler may seek the clock and re-enter here, and the triggers it
// matches must not be matched again by the interrupted evaluation.
func (m *TriggerManager) UpdateFrame(frame int) {
	if frame == m.current {
		return
	}
	prev := m.current
	m.previous = prev
	m.current = frame

	var fired []*Trigger
	for i := range m.triggers {
		t := &m.triggers[i]
		switch t.Kind {
		case TriggerFrameEnter:
			if frame == t.Frame && prev != t.Frame {
				fired = append(fired, t)
			}
		case TriggerRangeEnter:
			in := t.StartFrame <= frame && frame <= t.EndFrame
			switch {
			case in && !m.activeRanges[t.ID]:
				m.activeRanges[t.ID] = true
				fired = append(fired, t)
			case !in && m.activeRanges[t.ID]:
				// Left the range with no matching exit trigger: drop from the
				// active set without firing.
				delete(m.activeRanges, t.ID)
			}
		}
	}

	for i := range m.triggers {
		t := &m.triggers[i]
		switch t.Kind {
		case TriggerFrameExit:
			if prev == t.Frame && frame != t.Frame {
				fired = append(fired, t)
			}
		case TriggerRangeExit:
			in := t.StartFrame <= frame && frame <= t.EndFrame
			// Membership may predate any UpdateFrame call: the frame the
			// manager sat on before this move counts as inside the range even
			// when no earlier evaluation recorded it.
			wasIn := m.activeRanges[t.ID] || (t.StartFrame <= prev && prev <= t.EndFrame)
			switch {
			case in:
				m.activeRanges[t.ID] = true
			case wasIn:
				delete(m.activeRanges, t.ID)
				fired = append(fired, t)
			}
		}
	}

	for _, t := range fired {
		m.fire(t, frame)
	}
}

// fire dispatches a trigger's action with its parameters plus the trigger id
// and the frame of the transition that matched it.
func (m *TriggerManager) fire(t *Trigger, frame int) {
	data := eventData(t.Parameters)
	data["triggerId"] = Str(t.ID)
	data["frame"] = Num(float64(frame))
	m.DispatchEvent(t.Action, data)
}

// eventData copies base parameters into a fresh event payload map.
func eventData(base map[string]Value) map[string]Value {
	data := make(map[string]Value, len(base)+2)
	for k, v := range base {
		data[k] = v
	}
	return data
}

// CurrentFrame returns the frame of the latest UpdateFrame call.
func (m *TriggerManager) CurrentFrame() int { return m.current }

// IsInRange reports whether the current frame lies in [start, end], using
// the same inclusive bounds as range triggers.
func (m *TriggerManager) IsInRange(start, end int) bool {
	return start <= m.current && m.current <= end
}

// ActiveRangeTriggers returns the ids of range triggers whose range contains
// the current frame. Order is unspecified.
func (m *TriggerManager) ActiveRangeTriggers() []string {
	ids := make([]string, 0, len(m.activeRanges))
	for id := range m.activeRanges {
		ids = append(ids, id)
	}
	return ids
}

// TriggerInteraction dispatches every interaction trigger matching the
// (type, elementID) pair. data may be nil.
func (m *TriggerManager) TriggerInteraction(it InteractionType, elementID string, data map[string]Value) {
	for i := range m.triggers {
		t := &m.triggers[i]
		if t.Kind != TriggerInteraction || t.Interaction != it || t.ElementID != elementID {
			continue
		}
		merged := eventData(t.Parameters)
		for k, v := range data {
			merged[k] = v
		}
		merged["triggerId"] = Str(t.ID)
		merged["elementId"] = Str(elementID)
		m.DispatchEvent(t.Action, merged)
	}
}

// TriggerPlaybackEvent dispatches every playback trigger matching the event
// type.
func (m *TriggerManager) TriggerPlaybackEvent(pt PlaybackEventType) {
	for i := range m.triggers {
		t := &m.triggers[i]
		if t.Kind != TriggerPlayback || t.Playback != pt {
			continue
		}
		data := eventData(t.Parameters)
		data["triggerId"] = Str(t.ID)
		data["frame"] = Num(float64(m.current))
		m.DispatchEvent(t.Action, data)
	}
}

// TriggerCustomEvent dispatches the named event itself, then every custom
// trigger bound to that event name.
func (m *TriggerManager) TriggerCustomEvent(name string, data map[string]Value) {
	m.DispatchEvent(name, data)
	for i := range m.triggers {
		t := &m.triggers[i]
		if t.Kind != TriggerCustom || t.EventName != name {
			continue
		}
		merged := eventData(t.Parameters)
		for k, v := range data {
			merged[k] = v
		}
		merged["triggerId"] = Str(t.ID)
		m.DispatchEvent(t.Action, merged)
	}
}
