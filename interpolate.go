package flipbook

import (
	"github.com/lucasb-eyer/go-colorful"
)

// resolveAnimations applies every PropertyAnimation on el (and recursively
// on its children) at the given absolute frame. segStart is the containing
// frame segment's start; keyframe frames are relative to it. el must be a
// private copy — the caller clones before resolution so the canonical
// timeline is never mutated.
func resolveAnimations(el *Element, segStart, frame int) {
	for _, anim := range el.Animations {
		applyAnimation(el, anim, segStart, frame)
	}
	for _, child := range el.Children {
		resolveAnimations(child, segStart, frame)
	}
}

// applyAnimation locates the bracketing keyframe pair for the frame and
// writes the eased, interpolated value at the animation's property path.
// With no bracketing pair (before the first keyframe, after the last, or a
// single keyframe) the element's declared base value stands.
func applyAnimation(el *Element, anim PropertyAnimation, segStart, frame int) {
	kfs := anim.Keyframes
	for i := 0; i+1 < len(kfs); i++ {
		start := segStart + kfs[i].Frame
		end := segStart + kfs[i+1].Frame
		// Inclusive on both ends; the first bracketing segment wins, so a
		// boundary frame belongs to the segment ending there.
		if frame < start || frame > end {
			continue
		}
		progress := 1.0
		if end > start {
			progress = float64(frame-start) / float64(end-start)
		}
		eased := EasingByName(kfs[i].Easing)(progress)
		if v, ok := interpolateValue(kfs[i].Value, kfs[i+1].Value, eased); ok {
			StorePath(el.Properties, anim.Property, v)
		}
		return
	}
}

// interpolateValue blends two keyframe values by eased progress t. Numeric
// pairs blend linearly, hex color string pairs blend per RGB channel, and
// equal-length arrays blend elementwise. Any other pairing reports false and
// the property is left untouched.
func interpolateValue(from, to Value, t float64) (Value, bool) {
	switch {
	case from.Kind == ValueNumber && to.Kind == ValueNumber:
		return Num(from.Num + (to.Num-from.Num)*t), true

	case from.Kind == ValueString && to.Kind == ValueString:
		if c, ok := blendHexColors(from.Str, to.Str, t); ok {
			return Str(c), true
		}
		return Value{}, false

	case from.Kind == ValueArray && to.Kind == ValueArray && len(from.Arr) == len(to.Arr):
		out := make([]Value, len(from.Arr))
		for i := range from.Arr {
			a, b := from.Arr[i], to.Arr[i]
			if a.Kind == ValueNumber && b.Kind == ValueNumber {
				out[i] = Num(a.Num + (b.Num-a.Num)*t)
			} else {
				// Non-numeric entries pass through using the end value.
				out[i] = b.Clone()
			}
		}
		return Value{Kind: ValueArray, Arr: out}, true
	}
	return Value{}, false
}

// blendHexColors blends two #RRGGBB / #RGB strings per channel in RGB space
// and re-encodes as lowercase zero-padded #rrggbb. Overshooting easings can
// push t outside [0, 1]; channels are clamped back into range before
// encoding. Returns false when either string is not a hex color.
func blendHexColors(from, to string, t float64) (string, bool) {
	a, ok := parseHexColor(from)
	if !ok {
		return "", false
	}
	b, ok := parseHexColor(to)
	if !ok {
		return "", false
	}
	return a.BlendRgb(b, t).Clamped().Hex(), true
}

// parseHexColor accepts exactly the #RRGGBB and #RGB forms.
func parseHexColor(s string) (colorful.Color, bool) {
	if len(s) != 7 && len(s) != 4 {
		return colorful.Color{}, false
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, false
	}
	return c, true
}
