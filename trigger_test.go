package flipbook

import (
	"sort"
	"testing"
)

// countEvents registers a listener that counts dispatches of name.
func countEvents(m *TriggerManager, name string) *int {
	n := new(int)
	m.AddEventListener(name, func(Event) { *n++ })
	return n
}

func TestFrameEnterTriggerFiresOncePerTraversal(t *testing.T) {
	m := NewTriggerManager()
	m.AddTrigger(Trigger{ID: "t1", Kind: TriggerFrameEnter, Frame: 30, Action: "hit"})
	hits := countEvents(m, "hit")

	m.UpdateFrame(29)
	m.UpdateFrame(30)
	if *hits != 1 {
		t.Fatalf("hits after entering frame 30 = %d, want 1", *hits)
	}

	// Staying on the frame re-fires nothing.
	m.UpdateFrame(30)
	if *hits != 1 {
		t.Errorf("hits after no-op update = %d, want 1", *hits)
	}

	// Leaving and returning fires again.
	m.UpdateFrame(31)
	m.UpdateFrame(30)
	if *hits != 2 {
		t.Errorf("hits after re-entering = %d, want 2", *hits)
	}
}

func TestFrameExitTriggerFiresOnLeave(t *testing.T) {
	m := NewTriggerManager()
	m.AddTrigger(Trigger{ID: "t1", Kind: TriggerFrameExit, Frame: 30, Action: "left"})
	hits := countEvents(m, "left")

	m.UpdateFrame(30)
	if *hits != 0 {
		t.Fatalf("exit fired on enter, hits = %d", *hits)
	}
	m.UpdateFrame(31)
	if *hits != 1 {
		t.Errorf("hits after leaving = %d, want 1", *hits)
	}
}

func TestRangeEnterFiresOnceInsideRange(t *testing.T) {
	m := NewTriggerManager()
	m.AddTrigger(Trigger{ID: "r1", Kind: TriggerRangeEnter, StartFrame: 30, EndFrame: 50, Action: "in"})
	hits := countEvents(m, "in")

	m.UpdateFrame(29)
	if *hits != 0 {
		t.Fatalf("fired before the range, hits = %d", *hits)
	}
	m.UpdateFrame(30)
	if *hits != 1 {
		t.Fatalf("hits on entering = %d, want 1", *hits)
	}
	// Movement inside the range must not re-fire.
	m.UpdateFrame(40)
	m.UpdateFrame(50)
	if *hits != 1 {
		t.Errorf("hits while inside = %d, want 1", *hits)
	}
	// Leave silently (no exit trigger registered), re-enter fires again.
	m.UpdateFrame(51)
	m.UpdateFrame(45)
	if *hits != 2 {
		t.Errorf("hits after re-entering = %d, want 2", *hits)
	}
}

func TestRangeEnterOnSeekIntoMiddle(t *testing.T) {
	m := NewTriggerManager()
	m.AddTrigger(Trigger{ID: "r1", Kind: TriggerRangeEnter, StartFrame: 30, EndFrame: 50, Action: "in"})
	hits := countEvents(m, "in")

	// Jumping straight into the middle of the range still counts as entering.
	m.UpdateFrame(42)
	if *hits != 1 {
		t.Errorf("hits after seek into range = %d, want 1", *hits)
	}
}

func TestRangeExitFiresIndependently(t *testing.T) {
	m := NewTriggerManager()
	m.AddTrigger(Trigger{ID: "x1", Kind: TriggerRangeExit, StartFrame: 30, EndFrame: 50, Action: "out"})
	hits := countEvents(m, "out")

	// An exit trigger tracks membership on its own: entering is silent.
	m.UpdateFrame(40)
	if *hits != 0 {
		t.Fatalf("exit fired on enter, hits = %d", *hits)
	}
	m.UpdateFrame(51)
	if *hits != 1 {
		t.Errorf("hits after leaving = %d, want 1", *hits)
	}
	// Already outside: nothing more.
	m.UpdateFrame(60)
	if *hits != 1 {
		t.Errorf("hits while outside = %d, want 1", *hits)
	}
}

func TestEnterTriggersEvaluateBeforeExit(t *testing.T) {
	m := NewTriggerManager()
	// Exit registered first; enter must still dispatch first.
	m.AddTrigger(Trigger{ID: "x", Kind: TriggerFrameExit, Frame: 10, Action: "evt"})
	m.AddTrigger(Trigger{ID: "e", Kind: TriggerFrameEnter, Frame: 11, Action: "evt"})

	var order []string
	m.AddEventListener("evt", func(ev Event) {
		order = append(order, ev.Data["triggerId"].Str)
	})

	m.UpdateFrame(10)
	m.UpdateFrame(11) // enters 11, exits 10 in the same move
	if len(order) != 2 || order[0] != "e" || order[1] != "x" {
		t.Errorf("dispatch order = %v, want [e x]", order)
	}
}

func TestTriggerEventPayload(t *testing.T) {
	m := NewTriggerManager()
	m.AddTrigger(Trigger{
		ID: "t1", Kind: TriggerFrameEnter, Frame: 5, Action: "hit",
		Parameters: map[string]Value{"speed": Num(2)},
	})

	var got Event
	m.AddEventListener("hit", func(ev Event) { got = ev })
	m.UpdateFrame(5)

	if got.Name != "hit" {
		t.Fatalf("event name = %q, want hit", got.Name)
	}
	if got.Data["triggerId"].Str != "t1" {
		t.Errorf("triggerId = %+v, want t1", got.Data["triggerId"])
	}
	if got.Data["frame"].Num != 5 {
		t.Errorf("frame = %+v, want 5", got.Data["frame"])
	}
	if got.Data["speed"].Num != 2 {
		t.Errorf("parameters not merged: %+v", got.Data)
	}
}

func TestIsInRangeBounds(t *testing.T) {
	m := NewTriggerManager()
	m.UpdateFrame(40)
	if !m.IsInRange(40, 60) {
		t.Error("IsInRange(40, 60) at frame 40 = false, want true (inclusive start)")
	}
	m.UpdateFrame(60)
	if !m.IsInRange(40, 60) {
		t.Error("IsInRange(40, 60) at frame 60 = false, want true (inclusive end)")
	}
	m.UpdateFrame(61)
	if m.IsInRange(40, 60) {
		t.Error("IsInRange(40, 60) at frame 61 = true, want false")
	}
}

func TestActiveRangeTriggers(t *testing.T) {
	m := NewTriggerManager()
	m.AddTrigger(Trigger{ID: "a", Kind: TriggerRangeEnter, StartFrame: 0, EndFrame: 20, Action: "e"})
	m.AddTrigger(Trigger{ID: "b", Kind: TriggerRangeEnter, StartFrame: 10, EndFrame: 30, Action: "e"})

	m.UpdateFrame(15)
	got := m.ActiveRangeTriggers()
	sort.Strings(got)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("active ranges at 15 = %v, want [a b]", got)
	}

	m.UpdateFrame(25)
	got = m.ActiveRangeTriggers()
	if len(got) != 1 || got[0] != "b" {
		t.Errorf("active ranges at 25 = %v, want [b]", got)
	}
}

func TestHandlerPanicIsIsolated(t *testing.T) {
	m := NewTriggerManager()
	m.AddEventListener("evt", func(Event) { panic("boom") })
	ran := countEvents(m, "evt")

	// Must not panic, and the second handler still runs.
	m.DispatchEvent("evt", nil)
	if *ran != 1 {
		t.Errorf("handler after panicking sibling ran %d times, want 1", *ran)
	}
}

func TestRemoveEventListener(t *testing.T) {
	m := NewTriggerManager()
	calls := 0
	h := m.AddEventListener("evt", func(Event) { calls++ })
	keep := countEvents(m, "evt")

	m.DispatchEvent("evt", nil)
	m.RemoveEventListener(h)
	m.DispatchEvent("evt", nil)

	if calls != 1 {
		t.Errorf("removed handler ran %d times, want 1", calls)
	}
	if *keep != 2 {
		t.Errorf("remaining handler ran %d times, want 2", *keep)
	}

	// Unknown handles are a no-op.
	m.RemoveEventListener(ListenerHandle{name: "evt", id: 999})
	m.RemoveEventListener(ListenerHandle{name: "missing", id: 1})
}

func TestHandlersRunInRegistrationOrder(t *testing.T) {
	m := NewTriggerManager()
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		m.AddEventListener("evt", func(Event) { order = append(order, i) })
	}
	m.DispatchEvent("evt", nil)
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("handler order = %v, want [0 1 2]", order)
	}
}

func TestTriggerInteractionMatchesTypeAndElement(t *testing.T) {
	m := NewTriggerManager()
	m.AddTrigger(Trigger{
		ID: "click-hero", Kind: TriggerInteraction,
		Interaction: InteractionClick, ElementID: "hero", Action: "clicked",
	})
	hits := countEvents(m, "clicked")

	m.TriggerInteraction(InteractionClick, "hero", map[string]Value{"x": Num(12)})
	if *hits != 1 {
		t.Fatalf("hits = %d, want 1", *hits)
	}

	// Wrong element or wrong interaction type: no dispatch.
	m.TriggerInteraction(InteractionClick, "villain", nil)
	m.TriggerInteraction(InteractionHover, "hero", nil)
	if *hits != 1 {
		t.Errorf("hits after mismatches = %d, want 1", *hits)
	}
}

func TestTriggerInteractionPayloadIncludesElementId(t *testing.T) {
	m := NewTriggerManager()
	m.AddTrigger(Trigger{
		ID: "c", Kind: TriggerInteraction,
		Interaction: InteractionClick, ElementID: "hero", Action: "clicked",
	})
	var got Event
	m.AddEventListener("clicked", func(ev Event) { got = ev })

	m.TriggerInteraction(InteractionClick, "hero", map[string]Value{"x": Num(12)})
	if got.Data["elementId"].Str != "hero" {
		t.Errorf("elementId = %+v, want hero", got.Data["elementId"])
	}
	if got.Data["x"].Num != 12 {
		t.Errorf("interaction data not merged: %+v", got.Data)
	}
}

func TestTriggerPlaybackEvent(t *testing.T) {
	m := NewTriggerManager()
	m.AddTrigger(Trigger{ID: "p", Kind: TriggerPlayback, Playback: PlaybackPlay, Action: "started"})
	hits := countEvents(m, "started")

	m.TriggerPlaybackEvent(PlaybackPlay)
	m.TriggerPlaybackEvent(PlaybackPause) // no matching trigger
	if *hits != 1 {
		t.Errorf("hits = %d, want 1", *hits)
	}
}

func TestTriggerCustomEventDispatchesNameThenActions(t *testing.T) {
	m := NewTriggerManager()
	m.AddTrigger(Trigger{ID: "c", Kind: TriggerCustom, EventName: "signal", Action: "reaction"})

	var order []string
	m.AddEventListener("signal", func(Event) { order = append(order, "signal") })
	m.AddEventListener("reaction", func(ev Event) {
		order = append(order, "reaction")
		if ev.Data["triggerId"].Str != "c" {
			t.Errorf("reaction triggerId = %+v, want c", ev.Data["triggerId"])
		}
		if ev.Data["payload"].Num != 9 {
			t.Errorf("custom data not merged: %+v", ev.Data)
		}
	})

	m.TriggerCustomEvent("signal", map[string]Value{"payload": Num(9)})
	if len(order) != 2 || order[0] != "signal" || order[1] != "reaction" {
		t.Errorf("dispatch order = %v, want [signal reaction]", order)
	}
}

func TestSeekFromHandlerEvaluatesAgainstOriginalTransition(t *testing.T) {
	m := NewTriggerManager()
	m.AddTrigger(Trigger{ID: "hop", Kind: TriggerFrameEnter, Frame: 30, Action: "arrived"})
	m.AddTrigger(Trigger{ID: "tail", Kind: TriggerFrameEnter, Frame: 30, Action: "also"})
	m.AddTrigger(Trigger{ID: "dest", Kind: TriggerFrameEnter, Frame: 60, Action: "landed"})

	landed := countEvents(m, "landed")
	alsoFrame := -1.0
	m.AddEventListener("also", func(ev Event) { alsoFrame = ev.Data["frame"].Num })
	m.AddEventListener("arrived", func(Event) {
		m.UpdateFrame(60) // re-entrant move from inside a handler
	})

	m.UpdateFrame(30)

	// The destination's trigger fires exactly once, from the nested move; the
	// interrupted evaluation of the 0→30 move must not match it again.
	if *landed != 1 {
		t.Errorf("destination trigger fired %d times, want 1", *landed)
	}
	if m.CurrentFrame() != 60 {
		t.Errorf("current frame = %d, want 60", m.CurrentFrame())
	}
	// Triggers matched by the 0→30 move report frame 30 even though a handler
	// moved on before they dispatched.
	if alsoFrame != 30 {
		t.Errorf("frame payload = %v, want 30", alsoFrame)
	}
}

func TestRangeExitCoversTheStartingFrame(t *testing.T) {
	m := NewTriggerManager()
	m.AddTrigger(Trigger{ID: "x", Kind: TriggerRangeExit, StartFrame: 0, EndFrame: 10, Action: "out"})
	hits := countEvents(m, "out")

	// Frame 0 sits inside the range before any UpdateFrame call; jumping
	// straight out still counts as leaving.
	m.UpdateFrame(50)
	if *hits != 1 {
		t.Errorf("hits after leaving from the starting frame = %d, want 1", *hits)
	}

	// Already outside: nothing further.
	m.UpdateFrame(60)
	if *hits != 1 {
		t.Errorf("hits while outside = %d, want 1", *hits)
	}
}

func TestDuplicateTriggerIDsFireIndependently(t *testing.T) {
	m := NewTriggerManager()
	m.AddTrigger(Trigger{ID: "dup", Kind: TriggerFrameEnter, Frame: 3, Action: "hit"})
	m.AddTrigger(Trigger{ID: "dup", Kind: TriggerFrameEnter, Frame: 3, Action: "hit"})
	hits := countEvents(m, "hit")

	m.UpdateFrame(3)
	if *hits != 2 {
		t.Errorf("hits = %d, want 2 (duplicates each fire)", *hits)
	}
}
