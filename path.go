package flipbook

import (
	"log"
	"math"
	"strconv"
	"strings"
)

// PathCommandType identifies a vector path command.
type PathCommandType uint8

const (
	MoveTo    PathCommandType = iota // absolute move, starts a subpath
	LineTo                           // straight line to a point
	CubicTo                          // cubic Bézier with two control points
	QuadTo                           // quadratic Bézier with one control point
	ArcTo                            // elliptical arc (approximated, see Path)
	ClosePath                        // straight line back to the subpath start
)

// PathCommand is one step of a vector path. Points holds the control and end
// points in order (MoveTo/LineTo: end; QuadTo: control, end; CubicTo:
// control1, control2, end; ArcTo: end only). The arc shape parameters are
// carried separately and are currently used only for document round-trips —
// the length model treats arcs as chords.
type PathCommand struct {
	Type   PathCommandType
	Points []Point

	// Arc parameters (ArcTo only).
	Radii    Point
	Rotation float64
	LargeArc bool
	Sweep    bool
}

// Move creates an absolute MoveTo command.
func Move(x, y float64) PathCommand {
	return PathCommand{Type: MoveTo, Points: []Point{{x, y}}}
}

// Line creates an absolute LineTo command.
func Line(x, y float64) PathCommand {
	return PathCommand{Type: LineTo, Points: []Point{{x, y}}}
}

// Cubic creates a cubic Bézier command with two control points.
func Cubic(c1x, c1y, c2x, c2y, x, y float64) PathCommand {
	return PathCommand{Type: CubicTo, Points: []Point{{c1x, c1y}, {c2x, c2y}, {x, y}}}
}

// Quad creates a quadratic Bézier command with one control point.
func Quad(cx, cy, x, y float64) PathCommand {
	return PathCommand{Type: QuadTo, Points: []Point{{cx, cy}, {x, y}}}
}

// Arc creates an elliptical arc command.
func Arc(rx, ry, rotation float64, largeArc, sweep bool, x, y float64) PathCommand {
	return PathCommand{
		Type:     ArcTo,
		Points:   []Point{{x, y}},
		Radii:    Point{rx, ry},
		Rotation: rotation,
		LargeArc: largeArc,
		Sweep:    sweep,
	}
}

// Close creates a ClosePath command.
func Close() PathCommand {
	return PathCommand{Type: ClosePath}
}

// Path is a registered vector path: built once, read many times. Arc-length
// data is computed lazily on first use and cached.
//
// Length model: lines are exact; cubic and quadratic Béziers use a 10-sample
// polyline approximation; elliptical arcs use chord length × 1.5 — a
// documented heuristic, not an exact measure. Arc segments also resolve
// position by linear chord interpolation and report no tangent, so Orient
// has no effect while an element traverses an arc.
type Path struct {
	ID       string
	Commands []PathCommand
	Closed   bool

	segments []pathSegment
	totalLen float64
	built    bool
}

// pathSegment is one measurable span of the path. p1/p2 are control points
// for Bézier kinds and unused for lines and arcs.
type pathSegment struct {
	kind           PathCommandType
	p0, p1, p2, p3 Point
	length         float64
}

// NewPath creates a path from a command list.
func NewPath(id string, closed bool, commands ...PathCommand) *Path {
	return &Path{ID: id, Commands: commands, Closed: closed}
}

const bezierLengthSamples = 10

// build reduces the command list to measurable segments and accumulates the
// total arc length.
func (p *Path) build() {
	if p.built {
		return
	}
	p.built = true
	p.segments = p.segments[:0]
	p.totalLen = 0

	var cur, start Point
	started := false
	add := func(seg pathSegment) {
		if seg.length <= 0 {
			return
		}
		p.segments = append(p.segments, seg)
		p.totalLen += seg.length
	}

	for _, cmd := range p.Commands {
		switch cmd.Type {
		case MoveTo:
			if len(cmd.Points) < 1 {
				continue
			}
			cur = cmd.Points[0]
			start = cur
			started = true

		case LineTo:
			if !started || len(cmd.Points) < 1 {
				continue
			}
			end := cmd.Points[0]
			add(pathSegment{kind: LineTo, p0: cur, p3: end, length: dist(cur, end)})
			cur = end

		case CubicTo:
			if !started || len(cmd.Points) < 3 {
				continue
			}
			seg := pathSegment{kind: CubicTo, p0: cur, p1: cmd.Points[0], p2: cmd.Points[1], p3: cmd.Points[2]}
			seg.length = sampledLength(func(t float64) Point { return cubicPoint(seg, t) })
			add(seg)
			cur = seg.p3

		case QuadTo:
			if !started || len(cmd.Points) < 2 {
				continue
			}
			seg := pathSegment{kind: QuadTo, p0: cur, p1: cmd.Points[0], p3: cmd.Points[1]}
			seg.length = sampledLength(func(t float64) Point { return quadPoint(seg, t) })
			add(seg)
			cur = seg.p3

		case ArcTo:
			if !started || len(cmd.Points) < 1 {
				continue
			}
			end := cmd.Points[0]
			add(pathSegment{kind: ArcTo, p0: cur, p3: end, length: dist(cur, end) * 1.5})
			cur = end

		case ClosePath:
			if started && cur != start {
				add(pathSegment{kind: LineTo, p0: cur, p3: start, length: dist(cur, start)})
				cur = start
			}
		}
	}

	// The closed flag closes the outline even without an explicit Z.
	if p.Closed && started && cur != start {
		add(pathSegment{kind: LineTo, p0: cur, p3: start, length: dist(cur, start)})
	}
}

// Length returns the total approximated arc length.
func (p *Path) Length() float64 {
	p.build()
	return p.totalLen
}

// PointAtOffset resolves a normalized arc-length offset in [0, 1] to a point
// on the path and the tangent angle at that point in radians. hasTangent is
// false on arc segments (chord interpolation carries no usable direction)
// and on empty or zero-length paths, for which the point is the path start
// or the origin.
func (p *Path) PointAtOffset(offset float64) (pt Point, angle float64, hasTangent bool) {
	p.build()
	if len(p.segments) == 0 || p.totalLen <= 0 {
		if len(p.Commands) > 0 && len(p.Commands[0].Points) > 0 {
			return p.Commands[0].Points[0], 0, false
		}
		return Point{}, 0, false
	}

	if offset < 0 {
		offset = 0
	}
	if offset > 1 {
		offset = 1
	}
	target := offset * p.totalLen

	walked := 0.0
	seg := p.segments[len(p.segments)-1]
	local := 1.0
	for _, s := range p.segments {
		if target <= walked+s.length {
			seg = s
			local = (target - walked) / s.length
			break
		}
		walked += s.length
	}

	switch seg.kind {
	case LineTo:
		pt = lerpPoint(seg.p0, seg.p3, local)
		return pt, math.Atan2(seg.p3.Y-seg.p0.Y, seg.p3.X-seg.p0.X), true
	case CubicTo:
		d := cubicDeriv(seg, local)
		return cubicPoint(seg, local), math.Atan2(d.Y, d.X), true
	case QuadTo:
		d := quadDeriv(seg, local)
		return quadPoint(seg, local), math.Atan2(d.Y, d.X), true
	case ArcTo:
		return lerpPoint(seg.p0, seg.p3, local), 0, false
	}
	return Point{}, 0, false
}

// --- Segment math ---

func dist(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func lerpPoint(a, b Point, t float64) Point {
	return Point{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// sampledLength approximates a curve's length by a fixed-step polyline.
func sampledLength(at func(t float64) Point) float64 {
	length := 0.0
	prev := at(0)
	for i := 1; i <= bezierLengthSamples; i++ {
		next := at(float64(i) / bezierLengthSamples)
		length += dist(prev, next)
		prev = next
	}
	return length
}

// cubicPoint evaluates the cubic Bernstein form B(t).
func cubicPoint(s pathSegment, t float64) Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Point{
		a*s.p0.X + b*s.p1.X + c*s.p2.X + d*s.p3.X,
		a*s.p0.Y + b*s.p1.Y + c*s.p2.Y + d*s.p3.Y,
	}
}

// cubicDeriv evaluates B'(t) for the cubic form.
func cubicDeriv(s pathSegment, t float64) Point {
	u := 1 - t
	a := 3 * u * u
	b := 6 * u * t
	c := 3 * t * t
	return Point{
		a*(s.p1.X-s.p0.X) + b*(s.p2.X-s.p1.X) + c*(s.p3.X-s.p2.X),
		a*(s.p1.Y-s.p0.Y) + b*(s.p2.Y-s.p1.Y) + c*(s.p3.Y-s.p2.Y),
	}
}

// quadPoint evaluates the quadratic Bernstein form. The control point is p1
// and the end point p3.
func quadPoint(s pathSegment, t float64) Point {
	u := 1 - t
	a := u * u
	b := 2 * u * t
	c := t * t
	return Point{
		a*s.p0.X + b*s.p1.X + c*s.p3.X,
		a*s.p0.Y + b*s.p1.Y + c*s.p3.Y,
	}
}

// quadDeriv evaluates B'(t) for the quadratic form.
func quadDeriv(s pathSegment, t float64) Point {
	u := 1 - t
	return Point{
		2*u*(s.p1.X-s.p0.X) + 2*t*(s.p3.X-s.p1.X),
		2*u*(s.p1.Y-s.p0.Y) + 2*t*(s.p3.Y-s.p1.Y),
	}
}

// --- SVG path parsing ---

// paramCounts is the exact numeric parameter count per supported command.
var paramCounts = map[byte]int{'M': 2, 'L': 2, 'C': 6, 'Q': 4, 'A': 7, 'Z': 0}

// ParseSVGPath parses an SVG path string containing absolute M, L, C, Q, A,
// and Z commands into a command list. Parsing never fails: malformed tokens,
// unrecognized command letters (including all lowercase relative commands,
// which are unsupported), and wrong parameter counts silently produce no
// command for that token, and an empty string yields an empty list.
func ParseSVGPath(d string) []PathCommand {
	var cmds []PathCommand

	flush := func(letter byte, params string) {
		want, ok := paramCounts[letter]
		if !ok {
			return
		}
		nums, ok := parseParams(params)
		if !ok || len(nums) != want {
			return
		}
		switch letter {
		case 'M':
			cmds = append(cmds, Move(nums[0], nums[1]))
		case 'L':
			cmds = append(cmds, Line(nums[0], nums[1]))
		case 'C':
			cmds = append(cmds, Cubic(nums[0], nums[1], nums[2], nums[3], nums[4], nums[5]))
		case 'Q':
			cmds = append(cmds, Quad(nums[0], nums[1], nums[2], nums[3]))
		case 'A':
			cmds = append(cmds, Arc(nums[0], nums[1], nums[2], nums[3] != 0, nums[4] != 0, nums[5], nums[6]))
		case 'Z':
			cmds = append(cmds, Close())
		}
	}

	var letter byte
	segStart := -1
	for i := 0; i < len(d); i++ {
		ch := d[i]
		if ch < 'A' || ch > 'Z' {
			continue
		}
		if segStart >= 0 {
			flush(letter, d[segStart:i])
		}
		letter = ch
		segStart = i + 1
	}
	if segStart >= 0 {
		flush(letter, d[segStart:])
	}
	return cmds
}

// parseParams splits a parameter list on commas and whitespace.
func parseParams(s string) ([]float64, bool) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	nums := make([]float64, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, false
		}
		nums = append(nums, n)
	}
	return nums, true
}

// --- Path animation ---

// PathAnimation binds an element to a registered path over the frame window
// [StartFrame, StartFrame+Duration). The traversed sub-range of the path is
// [StartOffset, EndOffset] in normalized arc length. AlignOrigin is the
// fractional anchor inside the element's width/height box subtracted from
// the path point (zero value anchors the top-left corner). When Orient is
// set and the path reports a tangent, the element's rotation property is set
// to the tangent angle in degrees; otherwise rotation is left untouched.
type PathAnimation struct {
	ElementID   string
	PathID      string
	StartFrame  int
	Duration    int
	StartOffset float64
	EndOffset   float64
	Orient      bool
	AlignOrigin Point
	Easing      string
}

// pathEngine owns the path and path-animation registries. Registrations are
// keyed by id and never aliased into the timeline's element graph.
type pathEngine struct {
	paths map[string]*Path
	anims []PathAnimation
}

func newPathEngine() *pathEngine {
	return &pathEngine{paths: make(map[string]*Path)}
}

// RegisterPath stores a path by id, replacing any previous registration.
func (pe *pathEngine) RegisterPath(p *Path) {
	if p == nil || p.ID == "" {
		return
	}
	pe.paths[p.ID] = p
}

// RegisterAnimation appends a path animation to the active list.
func (pe *pathEngine) RegisterAnimation(a PathAnimation) {
	pe.anims = append(pe.anims, a)
}

// apply places every element whose animation window contains the frame.
// byID indexes the already-resolved snapshot elements (children included);
// path placement overrides whatever x/y the keyframe interpolator wrote.
func (pe *pathEngine) apply(byID map[string]*Element, frame int) {
	for _, a := range pe.anims {
		if a.Duration <= 0 || frame < a.StartFrame || frame >= a.StartFrame+a.Duration {
			continue
		}
		path, ok := pe.paths[a.PathID]
		if !ok {
			log.Printf("flipbook: path %q not registered, skipping path animation for element %q", a.PathID, a.ElementID)
			continue
		}
		el, ok := byID[a.ElementID]
		if !ok {
			// The element is simply not on stage this frame.
			continue
		}

		timeProgress := float64(frame-a.StartFrame) / float64(a.Duration)
		eased := EasingByName(a.Easing)(timeProgress)
		offset := a.StartOffset + (a.EndOffset-a.StartOffset)*eased

		pt, angle, hasTangent := path.PointAtOffset(offset)

		w, _ := el.NumProperty("width")
		h, _ := el.NumProperty("height")
		StorePath(el.Properties, "x", Num(pt.X-w*a.AlignOrigin.X))
		StorePath(el.Properties, "y", Num(pt.Y-h*a.AlignOrigin.Y))
		if a.Orient && hasTangent {
			StorePath(el.Properties, "rotation", Num(angle*180/math.Pi))
		}
	}
}
