package flipbook

// Renderer is the drawing capability the host injects. The engine never owns
// a renderer; it only walks the resolved snapshot and issues calls. Fill
// colors are CSS hex strings as stored in element properties.
//
// Creation and teardown of the underlying surface belong to the host:
// construct the Renderer before passing it in, call Destroy when the player
// shell goes away.
type Renderer interface {
	Clear()
	DrawRect(x, y, width, height float64, fill string)
	DrawCircle(x, y, radius float64, fill string)
	Resize(width, height float64)
	Destroy()
}

// defaultFill is used when an element declares no fill property.
const defaultFill = "#000000"

// Render clears the target and draws the current frame's resolved elements.
// Only rectangle and circle elements produce draw calls; group children are
// drawn recursively offset by their parent's position. Elements with a
// visible property set to false are skipped along with their children.
func (e *Engine) Render(r Renderer) {
	r.Clear()
	for _, el := range e.CurrentElements() {
		drawElement(r, el, 0, 0)
	}
}

func drawElement(r Renderer, el *Element, offsetX, offsetY float64) {
	if v, ok := LookupPath(el.Properties, "visible"); ok && v.Kind == ValueBool && !v.Bool {
		return
	}

	x, _ := el.NumProperty("x")
	y, _ := el.NumProperty("y")
	x += offsetX
	y += offsetY

	fill, ok := el.StrProperty("fill")
	if !ok {
		fill = defaultFill
	}

	switch el.Type {
	case ElementRectangle:
		w, _ := el.NumProperty("width")
		h, _ := el.NumProperty("height")
		r.DrawRect(x, y, w, h, fill)
	case ElementCircle:
		radius, _ := el.NumProperty("radius")
		r.DrawCircle(x, y, radius, fill)
	}

	for _, c := range el.Children {
		drawElement(r, c, x, y)
	}
}
