package flipbook

import "time"

// Engine composes the frame clock, property interpolator, path engine,
// trigger manager, and group/sequence orchestrator over one Timeline. It is
// single-threaded and driven by the host's per-frame callback: call Tick
// once per host frame, then read CurrentElements (or call Render).
//
// All control-surface calls are synchronous and safe from within an event
// handler invoked during a tick; a handler seeking the clock re-evaluates
// triggers before the seek call returns.
type Engine struct {
	timeline *Timeline
	clock    *Clock
	paths    *pathEngine
	triggers *TriggerManager
	orch     *orchestrator
}

// NewEngine creates an engine owning the given timeline. The timeline is
// retained for the engine's lifetime and mutated only by group keyframe
// synthesis.
func NewEngine(tl *Timeline) *Engine {
	e := &Engine{
		timeline: tl,
		clock:    NewClock(tl.FrameRate, tl.Duration),
		paths:    newPathEngine(),
		triggers: NewTriggerManager(),
	}
	e.orch = newOrchestrator(e.findElement, e.triggers.DispatchEvent, e.ensurePlaying)
	e.clock.onFrame = e.onFrameChange
	e.clock.onLoop = func() {
		e.triggers.TriggerPlaybackEvent(PlaybackLoop)
	}
	return e
}

// Timeline returns the engine's timeline.
func (e *Engine) Timeline() *Timeline { return e.timeline }

// CurrentFrame returns the clock's current frame.
func (e *Engine) CurrentFrame() int { return e.clock.CurrentFrame() }

// State returns the playback state.
func (e *Engine) State() PlaybackState { return e.clock.State() }

// onFrameChange feeds every frame change — ticked or sought — to the trigger
// manager and the orchestrator's completion watchers.
func (e *Engine) onFrameChange(prev, current int, looped bool) {
	e.triggers.UpdateFrame(current)
	e.orch.checkWatchers(prev, current, looped)
}

// --- Playback control ---

// Play starts or resumes the clock and fires playback triggers.
func (e *Engine) Play() {
	if e.clock.State() == StatePlaying {
		return
	}
	e.clock.Play()
	e.triggers.TriggerPlaybackEvent(PlaybackPlay)
}

// Pause holds the current frame and fires playback triggers.
func (e *Engine) Pause() {
	if e.clock.State() != StatePlaying {
		return
	}
	e.clock.Pause()
	e.triggers.TriggerPlaybackEvent(PlaybackPause)
}

// Stop halts playback, rewinds to frame 0, and clears in-flight sequence
// state.
func (e *Engine) Stop() {
	e.orch.Reset()
	e.clock.Stop()
	e.triggers.TriggerPlaybackEvent(PlaybackStop)
}

// SeekToFrame jumps to a frame, clamped to the timeline bounds. Frame and
// range triggers evaluate against the previous and new frame.
func (e *Engine) SeekToFrame(frame int) {
	e.clock.SeekToFrame(frame)
}

// Tick advances the clock from the host's frame callback. No-op unless
// playing.
func (e *Engine) Tick(now time.Time) {
	e.clock.Tick(now)
}

// ensurePlaying is the orchestrator's hook for PlaySequence: a sequence
// cannot progress on a stopped clock.
func (e *Engine) ensurePlaying() {
	e.Play()
}

// --- Registration surface ---

// RegisterPath stores a path for path animations.
func (e *Engine) RegisterPath(p *Path) { e.paths.RegisterPath(p) }

// RegisterPathAnimation binds an element to a registered path.
func (e *Engine) RegisterPathAnimation(a PathAnimation) { e.paths.RegisterAnimation(a) }

// RegisterGroup stores an animation group declaration.
func (e *Engine) RegisterGroup(g *AnimationGroup) { e.orch.RegisterGroup(g) }

// RegisterSequence stores a sequence declaration; AutoPlay sequences start
// immediately.
func (e *Engine) RegisterSequence(s *AnimationSequence) { e.orch.RegisterSequence(s) }

// PlayGroup re-expands a group into element keyframes and starts the clock.
func (e *Engine) PlayGroup(id string) { e.orch.PlayGroup(id) }

// PlaySequence starts (or restarts) a sequence and starts the clock.
func (e *Engine) PlaySequence(id string) { e.orch.PlaySequence(id) }

// StopSequence discards a sequence's runtime state.
func (e *Engine) StopSequence(id string) { e.orch.StopSequence(id) }

// AddTrigger registers any trigger declaration.
func (e *Engine) AddTrigger(t Trigger) { e.triggers.AddTrigger(t) }

// AddFrameTrigger fires action when the clock arrives at frame.
func (e *Engine) AddFrameTrigger(id string, frame int, action string) {
	e.triggers.AddTrigger(Trigger{ID: id, Kind: TriggerFrameEnter, Frame: frame, Action: action})
}

// AddFrameExitTrigger fires action when the clock leaves frame.
func (e *Engine) AddFrameExitTrigger(id string, frame int, action string) {
	e.triggers.AddTrigger(Trigger{ID: id, Kind: TriggerFrameExit, Frame: frame, Action: action})
}

// AddRangeTrigger fires action when the clock enters [start, end].
func (e *Engine) AddRangeTrigger(id string, start, end int, action string) {
	e.triggers.AddTrigger(Trigger{ID: id, Kind: TriggerRangeEnter, StartFrame: start, EndFrame: end, Action: action})
}

// AddRangeExitTrigger fires action when the clock leaves [start, end].
func (e *Engine) AddRangeExitTrigger(id string, start, end int, action string) {
	e.triggers.AddTrigger(Trigger{ID: id, Kind: TriggerRangeExit, StartFrame: start, EndFrame: end, Action: action})
}

// AddInteractionTrigger fires action when the host forwards a matching
// interaction on the element.
func (e *Engine) AddInteractionTrigger(id string, it InteractionType, elementID, action string) {
	e.triggers.AddTrigger(Trigger{ID: id, Kind: TriggerInteraction, Interaction: it, ElementID: elementID, Action: action})
}

// AddEventListener registers a handler for a named event.
func (e *Engine) AddEventListener(name string, fn EventHandler) ListenerHandle {
	return e.triggers.AddEventListener(name, fn)
}

// RemoveEventListener unregisters a handler.
func (e *Engine) RemoveEventListener(h ListenerHandle) {
	e.triggers.RemoveEventListener(h)
}

// TriggerCustomEvent dispatches a named event and fires matching custom
// triggers.
func (e *Engine) TriggerCustomEvent(name string, data map[string]Value) {
	e.triggers.TriggerCustomEvent(name, data)
}

// HandleElementInteraction forwards a host interaction (the shell owns hit
// testing) to matching interaction triggers.
func (e *Engine) HandleElementInteraction(it InteractionType, elementID string, data map[string]Value) {
	e.triggers.TriggerInteraction(it, elementID, data)
}

// IsInRange reports whether the current frame lies in [start, end].
func (e *Engine) IsInRange(start, end int) bool {
	return e.triggers.IsInRange(start, end)
}

// ActiveRangeTriggers returns the ids of range triggers currently in range.
func (e *Engine) ActiveRangeTriggers() []string {
	return e.triggers.ActiveRangeTriggers()
}

// --- Frame resolution ---

// CurrentElements returns the fully resolved snapshot for the current frame:
// elements of every visible layer whose segment contains the frame, with
// keyframe animations and path placement applied to deep copies. The caller
// may read and mutate the result freely; the canonical timeline is
// untouched.
func (e *Engine) CurrentElements() []*Element {
	frame := e.clock.CurrentFrame()
	var out []*Element
	byID := make(map[string]*Element)

	for _, layer := range e.timeline.Layers {
		if !layer.Visible {
			continue
		}
		for _, seg := range layer.Frames {
			if !seg.Contains(frame) {
				continue
			}
			for _, el := range seg.Elements {
				resolved := el.Clone()
				resolveAnimations(resolved, seg.StartFrame, frame)
				indexByID(resolved, byID)
				out = append(out, resolved)
			}
		}
	}

	e.paths.apply(byID, frame)
	return out
}

// indexByID registers an element and its descendants for path animation
// lookup. Element ids are unique within a render pass by contract; on a
// collision the first element wins.
func indexByID(el *Element, byID map[string]*Element) {
	if _, ok := byID[el.ID]; !ok && el.ID != "" {
		byID[el.ID] = el
	}
	for _, c := range el.Children {
		indexByID(c, byID)
	}
}

// findElement locates a canonical timeline element (and its containing
// segment) by id, searching children recursively. Used by the orchestrator's
// keyframe synthesis.
func (e *Engine) findElement(id string) (*Element, *Frame) {
	for _, layer := range e.timeline.Layers {
		for _, seg := range layer.Frames {
			for _, el := range seg.Elements {
				if found := findInTree(el, id); found != nil {
					return found, seg
				}
			}
		}
	}
	return nil, nil
}

func findInTree(el *Element, id string) *Element {
	if el.ID == id {
		return el
	}
	for _, c := range el.Children {
		if found := findInTree(c, id); found != nil {
			return found
		}
	}
	return nil
}
