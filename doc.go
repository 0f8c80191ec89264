// Package flipbook is a frame-indexed animation engine.
//
// Given a declarative [Timeline] (layers, frame segments, elements, and
// per-property keyframes) and a current frame number, flipbook produces the
// fully resolved state of every visible element: interpolated property
// values, path-following position and orientation, and fired timeline and
// interaction events. Rendering is not part of this package — the host
// injects a [Renderer] (or consumes [Engine.CurrentElements] directly) and
// drives the engine from its own frame callback.
//
// # Quick start
//
//	tl, err := flipbook.LoadTimeline(jsonData)
//	if err != nil {
//		log.Fatal(err)
//	}
//	engine := flipbook.NewEngine(tl)
//	engine.Play()
//
//	// In the host's per-frame callback:
//	engine.Tick(time.Now())
//	for _, el := range engine.CurrentElements() {
//		// hand the resolved elements to your renderer
//	}
//
// # Animation mechanisms
//
// Three mechanisms write element properties each frame, applied in order:
// keyframe interpolation (per-property [Keyframe] lists with named easing),
// path animation ([PathAnimation] placing an element along a registered
// [Path] by arc-length offset), and group synthesis ([AnimationGroup]
// expanding into keyframes for coordinated multi-element moves, chained by
// [AnimationSequence] with wait-for-completion and repeat semantics).
//
// The canonical timeline data is never mutated during resolution; every
// frame snapshot works on deep copies.
//
// # Events
//
// [Trigger] declarations bind frame, range, interaction, playback, and
// custom conditions to named events. Handlers are registered with
// [Engine.AddEventListener]; a handler that panics is logged and isolated so
// sibling handlers and the tick loop keep running.
package flipbook
