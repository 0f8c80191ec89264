package flipbook

// Point is a 2D coordinate or offset. The coordinate system has its origin
// at the top-left, with Y increasing downward.
type Point struct {
	X, Y float64
}

// ElementType distinguishes renderable shape kinds for an Element.
type ElementType uint8

const (
	ElementRectangle ElementType = iota // axis-aligned filled rectangle
	ElementCircle                       // filled circle around (x, y)
	ElementEllipse                      // filled ellipse (radiusX/radiusY properties)
	ElementText                         // text content (rendering backend decides layout)
	ElementPath                         // vector path outline
	ElementGroup                        // container with no visual output of its own
	ElementImage                        // bitmap reference (src property)
)

// elementTypeNames maps the JSON shape names to ElementType values.
var elementTypeNames = map[string]ElementType{
	"rectangle": ElementRectangle,
	"circle":    ElementCircle,
	"ellipse":   ElementEllipse,
	"text":      ElementText,
	"path":      ElementPath,
	"group":     ElementGroup,
	"image":     ElementImage,
}

// String returns the JSON shape name for the element type.
func (t ElementType) String() string {
	for name, v := range elementTypeNames {
		if v == t {
			return name
		}
	}
	return "group"
}

// PlaybackState is the frame clock's play/pause/stop state.
type PlaybackState uint8

const (
	StateStopped PlaybackState = iota // not playing, current frame reset to 0
	StatePlaying                      // advancing with wall-clock time
	StatePaused                       // holding the current frame
)

// InteractionType identifies a kind of element interaction forwarded by the
// host shell (which owns hit testing).
type InteractionType uint8

const (
	InteractionClick     InteractionType = iota // press then release over the element
	InteractionHover                            // pointer moved over the element
	InteractionDragStart                        // drag gesture began on the element
	InteractionDragEnd                          // drag gesture ended
)

// PlaybackEventType identifies a playback state change observable by
// playback triggers.
type PlaybackEventType uint8

const (
	PlaybackPlay  PlaybackEventType = iota // playback started or resumed
	PlaybackPause                          // playback paused
	PlaybackStop                           // playback stopped and rewound
	PlaybackLoop                           // the clock wrapped past the timeline end
)

// Names of the events the orchestrator dispatches on its own.
const (
	EventAnimationComplete = "animationComplete" // a group reached its completion frame
	EventSequenceComplete  = "sequenceComplete"  // a sequence exhausted its repeats
)
