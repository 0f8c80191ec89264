package flipbook

import (
	"encoding/json"
	"fmt"
	"log"
)

// Timeline is the full declarative animation document. It is owned by the
// Engine for its lifetime and, apart from the orchestrator's keyframe
// synthesis, never mutated after loading: per-frame resolution works on deep
// copies of its elements.
type Timeline struct {
	Version   string   `json:"version"`
	FrameRate float64  `json:"frameRate"`
	Duration  int      `json:"duration"`
	Layers    []*Layer `json:"layers"`
}

// Layer is an ordered list of frame segments. Segments are non-overlapping
// by convention; the engine does not enforce it and resolves every segment
// whose span contains the current frame.
type Layer struct {
	Name    string   `json:"name,omitempty"`
	Visible bool     `json:"visible"`
	Locked  bool     `json:"locked"`
	Frames  []*Frame `json:"frames"`
}

// UnmarshalJSON decodes a layer, defaulting Visible to true when the field
// is absent (the zero value would otherwise hide every hand-written layer).
func (l *Layer) UnmarshalJSON(data []byte) error {
	type alias struct {
		Name    string   `json:"name"`
		Visible *bool    `json:"visible"`
		Locked  bool     `json:"locked"`
		Frames  []*Frame `json:"frames"`
	}
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	l.Name = a.Name
	l.Visible = a.Visible == nil || *a.Visible
	l.Locked = a.Locked
	l.Frames = a.Frames
	return nil
}

// Frame is a segment of the timeline: the elements active over
// [StartFrame, StartFrame+Duration).
type Frame struct {
	StartFrame int        `json:"startFrame"`
	Duration   int        `json:"duration"`
	Elements   []*Element `json:"elements"`
}

// Contains reports whether the absolute frame falls inside this segment.
func (f *Frame) Contains(frame int) bool {
	return frame >= f.StartFrame && frame < f.StartFrame+f.Duration
}

// Element is a renderable item. Properties is an open map resolved through
// dotted paths; Children are owned by the parent and rendered recursively.
type Element struct {
	ID         string              `json:"id"`
	Type       ElementType         `json:"type"`
	Properties map[string]Value    `json:"properties"`
	Children   []*Element          `json:"children,omitempty"`
	Animations []PropertyAnimation `json:"animations,omitempty"`
}

// PropertyAnimation animates one dotted property path through an ordered
// keyframe list. Keyframe frames are relative to the containing segment's
// StartFrame and should be non-decreasing; the interpolator trusts that
// ordering and uses the first bracketing pair it finds.
type PropertyAnimation struct {
	Property  string     `json:"property"`
	Keyframes []Keyframe `json:"keyframes"`
}

// Keyframe is an explicit (frame, value, easing) anchor. Easing names the
// curve applied over the segment that starts at this keyframe; unknown or
// empty names fall back to linear.
type Keyframe struct {
	Frame  int    `json:"frame"`
	Value  Value  `json:"value"`
	Easing string `json:"easing,omitempty"`
}

// MarshalJSON encodes the element type as its shape name.
func (t ElementType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a shape name. Unknown names degrade to a group
// element (no visual output) rather than failing the whole document.
func (t *ElementType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	v, ok := elementTypeNames[name]
	if !ok {
		log.Printf("flipbook: unknown element type %q, treating as group", name)
		v = ElementGroup
	}
	*t = v
	return nil
}

// Clone deep-copies the element and its children. The Animations slice is
// copied so the orchestrator's later keyframe synthesis on the canonical
// element cannot reach into an existing snapshot; keyframe values themselves
// are read-only during resolution and are shared.
func (e *Element) Clone() *Element {
	out := &Element{
		ID:         e.ID,
		Type:       e.Type,
		Properties: cloneProps(e.Properties),
	}
	if e.Properties == nil {
		out.Properties = make(map[string]Value)
	}
	if len(e.Animations) > 0 {
		out.Animations = make([]PropertyAnimation, len(e.Animations))
		copy(out.Animations, e.Animations)
	}
	if len(e.Children) > 0 {
		out.Children = make([]*Element, len(e.Children))
		for i, c := range e.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// NumProperty returns a numeric property (top-level or dotted), or (0,
// false) when absent or not a number.
func (e *Element) NumProperty(path string) (float64, bool) {
	v, ok := LookupPath(e.Properties, path)
	if !ok || v.Kind != ValueNumber {
		return 0, false
	}
	return v.Num, true
}

// StrProperty returns a string property, or ("", false) when absent or not
// a string.
func (e *Element) StrProperty(path string) (string, bool) {
	v, ok := LookupPath(e.Properties, path)
	if !ok || v.Kind != ValueString {
		return "", false
	}
	return v.Str, true
}

// LoadTimeline parses and validates a JSON timeline document. This is the
// whole of the loader contract: it produces a well-typed Timeline or fails.
func LoadTimeline(data []byte) (*Timeline, error) {
	var tl Timeline
	if err := json.Unmarshal(data, &tl); err != nil {
		return nil, fmt.Errorf("flipbook: parsing timeline: %w", err)
	}
	if tl.FrameRate <= 0 {
		return nil, fmt.Errorf("flipbook: timeline frameRate must be positive, got %v", tl.FrameRate)
	}
	if tl.Duration <= 0 {
		return nil, fmt.Errorf("flipbook: timeline duration must be positive, got %d", tl.Duration)
	}
	return &tl, nil
}
