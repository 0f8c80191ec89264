package flipbook

import "time"

// Clock tracks the current frame and the play/pause/stop state, converting
// host wall-clock time into whole-frame advances at a fixed frame rate.
//
// The host drives the clock by calling Tick from its own per-frame callback;
// the clock never schedules anything itself, so pausing or stopping
// trivially cancels any "pending" tick — a stale Tick after Pause or Stop is
// a no-op.
type Clock struct {
	frameRate float64
	duration  int

	state     PlaybackState
	current   int
	lastTick  time.Time
	remainder float64 // sub-frame milliseconds carried to the next tick

	// onFrame is called for every frame change, from ticking or seeking.
	// looped is true only when a tick wrapped past the timeline end.
	onFrame func(prev, current int, looped bool)
	// onLoop is called after onFrame when a tick wraps past the end.
	onLoop func()
}

// NewClock creates a stopped clock. Non-positive frame rates default to 60
// and durations shorter than one frame are clamped to 1.
func NewClock(frameRate float64, duration int) *Clock {
	if frameRate <= 0 {
		frameRate = 60
	}
	if duration < 1 {
		duration = 1
	}
	return &Clock{frameRate: frameRate, duration: duration}
}

// State returns the playback state.
func (c *Clock) State() PlaybackState { return c.state }

// CurrentFrame returns the current frame index in [0, duration-1].
func (c *Clock) CurrentFrame() int { return c.current }

// FrameRate returns the configured frames per second.
func (c *Clock) FrameRate() float64 { return c.frameRate }

// Duration returns the timeline length in frames.
func (c *Clock) Duration() int { return c.duration }

// Play starts or resumes playback. The wall-clock baseline is re-recorded on
// the next Tick so time spent paused does not fast-forward the animation.
func (c *Clock) Play() {
	if c.state == StatePlaying {
		return
	}
	c.state = StatePlaying
	c.lastTick = time.Time{}
}

// Pause holds the current frame. No-op unless playing.
func (c *Clock) Pause() {
	if c.state != StatePlaying {
		return
	}
	c.state = StatePaused
	c.lastTick = time.Time{}
}

// Stop halts playback and rewinds to frame 0. The frame change (if any) is
// reported through the frame callback so triggers evaluate against it.
func (c *Clock) Stop() {
	c.state = StateStopped
	c.lastTick = time.Time{}
	c.remainder = 0
	prev := c.current
	c.current = 0
	if prev != 0 && c.onFrame != nil {
		c.onFrame(prev, 0, false)
	}
}

// SeekToFrame jumps to frame f, clamped to [0, duration-1]. Valid in any
// state and does not change the play/pause state. Seeking is a jump, not a
// traversal: it never fires the loop callback.
func (c *Clock) SeekToFrame(f int) {
	if f < 0 {
		f = 0
	}
	if f > c.duration-1 {
		f = c.duration - 1
	}
	if f == c.current {
		return
	}
	prev := c.current
	c.current = f
	if c.onFrame != nil {
		c.onFrame(prev, f, false)
	}
}

// Tick advances the clock using the host's wall-clock time. The first Tick
// after Play only records the baseline. Elapsed time converts to whole
// frames at the configured rate; the sub-frame remainder carries forward so
// frame timing does not drift. Passing the end wraps modulo the duration and
// reports a loop.
func (c *Clock) Tick(now time.Time) {
	if c.state != StatePlaying {
		return
	}
	if c.lastTick.IsZero() {
		c.lastTick = now
		return
	}

	frameMs := 1000 / c.frameRate
	elapsed := float64(now.Sub(c.lastTick)) / float64(time.Millisecond)
	c.lastTick = now

	total := elapsed + c.remainder
	advance := int(total / frameMs)
	c.remainder = total - float64(advance)*frameMs
	if advance <= 0 {
		return
	}

	prev := c.current
	next := c.current + advance
	looped := false
	if next >= c.duration {
		next %= c.duration
		looped = true
	}
	c.current = next

	// An advance that is an exact multiple of the duration lands back on the
	// same frame; the traversal still happened and must be reported.
	if (next != prev || looped) && c.onFrame != nil {
		c.onFrame(prev, next, looped)
	}
	if looped && c.onLoop != nil {
		c.onLoop()
	}
}
