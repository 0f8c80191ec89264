package flipbook

import "log"

// GroupType selects the timing policy an AnimationGroup applies across its
// target elements.
type GroupType uint8

const (
	GroupParallel GroupType = iota // all elements start together
	GroupSequence                  // elements stagger by duration/elementCount
	GroupStagger                   // elements stagger by StaggerDelay frames
)

// defaultStaggerDelay is used when a stagger group leaves StaggerDelay unset.
const defaultStaggerDelay = 5

// AnimationGroup is a declarative bundle of elements and properties animated
// together under one timing policy. Playing a group synthesizes exactly two
// keyframes per element property: the element's current value at the group
// start (plus the per-element delay) and — for numeric properties — double
// that value at the end of the duration. Non-numeric values are held
// constant across both keyframes.
//
// The doubling rule is a placeholder policy, not a tweening contract:
// callers that need specific target values should author keyframes on the
// element directly instead of using a group.
type AnimationGroup struct {
	ID           string
	ElementIDs   []string
	Properties   []string
	StartFrame   int
	Duration     int
	Type         GroupType
	StaggerDelay int
	Easing       string
}

// AnimationStep is one entry of a sequence: play a group, optionally wait
// for its completion frame, optionally announce completion under a distinct
// event name.
type AnimationStep struct {
	GroupID         string
	WaitForComplete bool
	OnComplete      string
}

// AnimationSequence chains groups. Repeat counts full passes over the step
// list; -1 repeats forever. AutoPlay starts the sequence as soon as it is
// registered.
type AnimationSequence struct {
	ID       string
	Steps    []AnimationStep
	Repeat   int
	AutoPlay bool
}

// sequenceRun is the per-playback runtime state. It lives in the
// orchestrator's active map, not on the declaration; a second PlaySequence
// for the same id replaces the run (last call wins).
type sequenceRun struct {
	seq         *AnimationSequence
	currentStep int
	iterations  int
}

// completionWatch fires once when the clock traverses its frame.
type completionWatch struct {
	frame int
	fired bool
	fn    func()
}

// orchestrator expands groups into keyframes on the timeline's canonical
// elements and drives sequences. Its collaborators are injected so it stays
// decoupled from the engine façade.
type orchestrator struct {
	findElement   func(id string) (*Element, *Frame)
	dispatch      func(name string, data map[string]Value)
	ensurePlaying func()

	groups    map[string]*AnimationGroup
	sequences map[string]*AnimationSequence
	active    map[string]*sequenceRun
	watchers  []*completionWatch
}

func newOrchestrator(
	findElement func(id string) (*Element, *Frame),
	dispatch func(name string, data map[string]Value),
	ensurePlaying func(),
) *orchestrator {
	return &orchestrator{
		findElement:   findElement,
		dispatch:      dispatch,
		ensurePlaying: ensurePlaying,
		groups:        make(map[string]*AnimationGroup),
		sequences:     make(map[string]*AnimationSequence),
		active:        make(map[string]*sequenceRun),
	}
}

// RegisterGroup stores a group declaration, silently replacing a previous
// registration with the same id.
func (o *orchestrator) RegisterGroup(g *AnimationGroup) {
	if g == nil || g.ID == "" {
		return
	}
	o.groups[g.ID] = g
}

// RegisterSequence stores a sequence declaration and starts it immediately
// when AutoPlay is set.
func (o *orchestrator) RegisterSequence(s *AnimationSequence) {
	if s == nil || s.ID == "" {
		return
	}
	o.sequences[s.ID] = s
	if s.AutoPlay {
		o.PlaySequence(s.ID)
	}
}

// PlayGroup re-expands a registered group into element keyframes. Playing is
// idempotent: each expansion overwrites the group's previous animation entry
// per property.
func (o *orchestrator) PlayGroup(id string) {
	g, ok := o.groups[id]
	if !ok {
		log.Printf("flipbook: animation group %q not registered", id)
		return
	}
	o.playGroup(g, nil)
	o.ensurePlaying()
}

// PlaySequence starts (or restarts) a sequence with fresh runtime state and
// executes its first step synchronously.
func (o *orchestrator) PlaySequence(id string) {
	seq, ok := o.sequences[id]
	if !ok {
		log.Printf("flipbook: animation sequence %q not registered", id)
		return
	}
	run := &sequenceRun{seq: seq}
	o.active[id] = run
	o.executeStep(run)
	o.ensurePlaying()
}

// StopSequence discards a sequence's runtime state. Pending completion
// watchers still dispatch animationComplete for already-played groups but no
// longer advance the sequence.
func (o *orchestrator) StopSequence(id string) {
	delete(o.active, id)
}

// Reset discards all runtime state: active runs and pending watchers.
func (o *orchestrator) Reset() {
	o.active = make(map[string]*sequenceRun)
	o.watchers = nil
}

// executeStep runs the current step and, for steps that do not wait, keeps
// advancing within the same tick. Reaching the end of the step list counts
// an iteration and restarts or completes per the repeat policy.
func (o *orchestrator) executeStep(run *sequenceRun) {
	seq := run.seq
	restarted := false
	for {
		if len(seq.Steps) == 0 {
			o.finishSequence(run)
			return
		}
		if run.currentStep >= len(seq.Steps) {
			run.iterations++
			if seq.Repeat != -1 && run.iterations >= seq.Repeat {
				o.finishSequence(run)
				return
			}
			if restarted {
				// Every step advanced synchronously and the sequence repeats
				// forever; spinning here would never yield the tick.
				log.Printf("flipbook: sequence %q repeats forever with no waiting step, stopping", seq.ID)
				delete(o.active, seq.ID)
				return
			}
			restarted = true
			run.currentStep = 0
			continue
		}

		stepIndex := run.currentStep
		step := seq.Steps[stepIndex]
		g, ok := o.groups[step.GroupID]
		if !ok {
			log.Printf("flipbook: sequence %q step %d references unknown group %q, skipping",
				seq.ID, stepIndex, step.GroupID)
			run.currentStep++
			continue
		}

		if step.WaitForComplete {
			o.playGroup(g, func() {
				// Only advance if this run is still current and still on this
				// step; a replay or StopSequence invalidates the callback.
				if o.active[seq.ID] != run || run.currentStep != stepIndex {
					return
				}
				if step.OnComplete != "" {
					o.dispatch(step.OnComplete, map[string]Value{
						"sequenceId": Str(seq.ID),
						"stepIndex":  Num(float64(stepIndex)),
					})
				}
				run.currentStep++
				o.executeStep(run)
			})
			return
		}

		o.playGroup(g, nil)
		run.currentStep++
	}
}

// finishSequence dispatches sequenceComplete and discards the run.
func (o *orchestrator) finishSequence(run *sequenceRun) {
	delete(o.active, run.seq.ID)
	o.dispatch(EventSequenceComplete, map[string]Value{
		"sequenceId": Str(run.seq.ID),
	})
}

// propertyCommit records a synthesized end value to write back to the
// canonical element when the group completes, so the animated result
// persists past the keyframe window.
type propertyCommit struct {
	el    *Element
	prop  string
	value Value
}

// playGroup expands the group into keyframes and registers the one-shot
// completion watcher at startFrame+duration. The watcher commits the end
// values to the canonical elements, then dispatches animationComplete.
func (o *orchestrator) playGroup(g *AnimationGroup, onComplete func()) {
	var commits []propertyCommit
	for i, elementID := range g.ElementIDs {
		el, seg := o.findElement(elementID)
		if el == nil {
			log.Printf("flipbook: group %q targets unknown element %q, skipping", g.ID, elementID)
			continue
		}
		delay := o.elementDelay(g, i)
		for _, prop := range g.Properties {
			if end, ok := o.synthesizeKeyframes(g, el, seg, prop, delay); ok {
				commits = append(commits, propertyCommit{el: el, prop: prop, value: end})
			}
		}
	}

	groupID := g.ID
	o.watchers = append(o.watchers, &completionWatch{
		frame: g.StartFrame + g.Duration,
		fn: func() {
			for _, c := range commits {
				StorePath(c.el.Properties, c.prop, c.value.Clone())
			}
			o.dispatch(EventAnimationComplete, map[string]Value{
				"groupId": Str(groupID),
			})
			if onComplete != nil {
				onComplete()
			}
		},
	})
}

// elementDelay computes the per-element start delay under the group's timing
// policy.
func (o *orchestrator) elementDelay(g *AnimationGroup, index int) int {
	switch g.Type {
	case GroupSequence:
		if n := len(g.ElementIDs); n > 0 {
			return g.Duration / n * index
		}
	case GroupStagger:
		d := g.StaggerDelay
		if d <= 0 {
			d = defaultStaggerDelay
		}
		return d * index
	}
	return 0
}

// synthesizeKeyframes writes the two-keyframe animation for one property:
// the current value at groupStart+delay and, for numbers, double it at
// groupStart+delay+duration. Keyframe frames are stored relative to the
// element's containing segment. Returns the end value for the completion
// commit.
func (o *orchestrator) synthesizeKeyframes(g *AnimationGroup, el *Element, seg *Frame, prop string, delay int) (Value, bool) {
	cur, ok := LookupPath(el.Properties, prop)
	if !ok {
		log.Printf("flipbook: group %q: element %q has no property %q, skipping", g.ID, el.ID, prop)
		return Value{}, false
	}

	segStart := 0
	if seg != nil {
		segStart = seg.StartFrame
	}
	startFrame := g.StartFrame + delay - segStart
	endValue := cur.Clone()
	if cur.Kind == ValueNumber {
		endValue = Num(cur.Num * 2)
	}

	anim := PropertyAnimation{
		Property: prop,
		Keyframes: []Keyframe{
			{Frame: startFrame, Value: cur.Clone(), Easing: g.Easing},
			{Frame: startFrame + g.Duration, Value: endValue, Easing: g.Easing},
		},
	}

	replaced := false
	for i := range el.Animations {
		if el.Animations[i].Property == prop {
			el.Animations[i] = anim
			replaced = true
			break
		}
	}
	if !replaced {
		el.Animations = append(el.Animations, anim)
	}
	return endValue, true
}

// checkWatchers fires completion watchers whose frame was traversed between
// prev and current. A looping tick covers the tail of the timeline plus the
// wrapped head; backward seeks traverse nothing.
func (o *orchestrator) checkWatchers(prev, current int, looped bool) {
	fired := false
	for _, w := range o.watchers {
		if w.fired {
			continue
		}
		crossed := false
		if looped {
			crossed = w.frame > prev || w.frame <= current
		} else if prev < current {
			crossed = prev < w.frame && w.frame <= current
		}
		if crossed {
			w.fired = true
			fired = true
			w.fn()
		}
	}
	if !fired {
		return
	}
	kept := o.watchers[:0]
	for _, w := range o.watchers {
		if !w.fired {
			kept = append(kept, w)
		}
	}
	o.watchers = kept
}
