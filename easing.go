package flipbook

import (
	"math"

	"github.com/tanema/gween/ease"
)

// EasingFunc maps normalized time in [0, 1] to normalized progress. Bounce
// and elastic curves may undershoot or overshoot strictly between 0 and 1;
// that is the intended curve shape.
type EasingFunc func(t float64) float64

// Linear is the identity easing and the fallback for unknown names.
func Linear(t float64) float64 { return t }

// fromTween adapts a gween ease.TweenFunc (Penner signature, float32) to the
// engine's normalized float64 form.
func fromTween(fn ease.TweenFunc) EasingFunc {
	return func(t float64) float64 {
		return float64(fn(float32(t), 0, 1, 1))
	}
}

// easings is the named registry. Names follow the timeline document format:
// kebab-case Penner families plus the CSS shorthand curves.
var easings = map[string]EasingFunc{
	"linear": Linear,

	"ease-in-quad":     fromTween(ease.InQuad),
	"ease-out-quad":    fromTween(ease.OutQuad),
	"ease-in-out-quad": fromTween(ease.InOutQuad),

	"ease-in-cubic":     fromTween(ease.InCubic),
	"ease-out-cubic":    fromTween(ease.OutCubic),
	"ease-in-out-cubic": fromTween(ease.InOutCubic),

	"ease-in-quart":     fromTween(ease.InQuart),
	"ease-out-quart":    fromTween(ease.OutQuart),
	"ease-in-out-quart": fromTween(ease.InOutQuart),

	"ease-in-quint":     fromTween(ease.InQuint),
	"ease-out-quint":    fromTween(ease.OutQuint),
	"ease-in-out-quint": fromTween(ease.InOutQuint),

	"ease-in-sine":     fromTween(ease.InSine),
	"ease-out-sine":    fromTween(ease.OutSine),
	"ease-in-out-sine": fromTween(ease.InOutSine),

	"ease-in-expo":     fromTween(ease.InExpo),
	"ease-out-expo":    fromTween(ease.OutExpo),
	"ease-in-out-expo": fromTween(ease.InOutExpo),

	"ease-in-circ":     fromTween(ease.InCirc),
	"ease-out-circ":    fromTween(ease.OutCirc),
	"ease-in-out-circ": fromTween(ease.InOutCirc),

	"ease-in-back":     fromTween(ease.InBack),
	"ease-out-back":    fromTween(ease.OutBack),
	"ease-in-out-back": fromTween(ease.InOutBack),

	"ease-in-elastic":     fromTween(ease.InElastic),
	"ease-out-elastic":    fromTween(ease.OutElastic),
	"ease-in-out-elastic": fromTween(ease.InOutElastic),

	"ease-in-bounce":     fromTween(ease.InBounce),
	"ease-out-bounce":    fromTween(ease.OutBounce),
	"ease-in-out-bounce": fromTween(ease.InOutBounce),

	// CSS shorthands, as cubic-bezier control points.
	"ease":        Bezier(0.25, 0.1, 0.25, 1.0),
	"ease-in":     Bezier(0.42, 0, 1, 1),
	"ease-out":    Bezier(0, 0, 0.58, 1),
	"ease-in-out": Bezier(0.42, 0, 0.58, 1),
}

// EasingByName resolves a named easing function. Unknown names and the empty
// string resolve to Linear; a bad easing name on one keyframe must not halt
// resolution, so this never errors.
func EasingByName(name string) EasingFunc {
	if name == "" {
		return Linear
	}
	if fn, ok := easings[name]; ok {
		return fn
	}
	return Linear
}

// Bezier returns an easing that evaluates the cubic Bézier curve with
// control points (x1, y1) and (x2, y2) — anchors fixed at (0,0) and (1,1) —
// parameterized by X. The X→t solve uses Newton-Raphson with a fixed 8
// iterations and falls back to bisection when the derivative degenerates.
// The endpoints return exactly 0 and 1.
func Bezier(x1, y1, x2, y2 float64) EasingFunc {
	// Polynomial coefficients in Horner form.
	cx := 3 * x1
	bx := 3*(x2-x1) - cx
	ax := 1 - cx - bx

	cy := 3 * y1
	by := 3*(y2-y1) - cy
	ay := 1 - cy - by

	sampleX := func(t float64) float64 { return ((ax*t+bx)*t + cx) * t }
	sampleY := func(t float64) float64 { return ((ay*t+by)*t + cy) * t }
	derivX := func(t float64) float64 { return (3*ax*t+2*bx)*t + cx }

	const epsilon = 1e-6

	solveX := func(x float64) float64 {
		t := x
		for i := 0; i < 8; i++ {
			err := sampleX(t) - x
			if math.Abs(err) < epsilon {
				return t
			}
			d := derivX(t)
			if math.Abs(d) < epsilon {
				break
			}
			t -= err / d
		}

		// Bisection fallback for flat spots.
		lo, hi := 0.0, 1.0
		t = x
		for hi-lo > epsilon {
			mid := (lo + hi) / 2
			if sampleX(mid) < x {
				lo = mid
			} else {
				hi = mid
			}
			t = mid
		}
		return t
	}

	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		return sampleY(solveX(t))
	}
}
