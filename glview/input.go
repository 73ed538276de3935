package glview

// maxKeys bounds the key table. Key codes outside [0,maxKeys) are ignored.
const maxKeys = 1024

// click is a pointer press position in window coordinates.
type click struct {
	X, Y float64
}

// inputState accumulates window events between frames. Callbacks write into
// it and the render loop consumes it once per frame, both on the render thread.
type inputState struct {
	keys [maxKeys]bool

	lastX, lastY float64
	dx, dy       float64
	moved        bool

	scroll float64
	clicks []click

	toggleMode      bool
	toggleWireframe bool
	captured        bool
}

// setKey records the pressed state of key.
func (in *inputState) setKey(key int, pressed bool) {
	if key < 0 || key >= maxKeys {
		return
	}
	in.keys[key] = pressed
}

func (in *inputState) pressed(key int) bool {
	return key >= 0 && key < maxKeys && in.keys[key]
}

// cursor records a new pointer position. The first position after a
// reset produces no delta so that the view does not jump.
func (in *inputState) cursor(x, y float64) {
	if in.moved {
		in.dx += x - in.lastX
		in.dy += y - in.lastY
	}
	in.lastX, in.lastY = x, y
	in.moved = true
}

// resetCursor forgets the last pointer position, used when the cursor is
// captured or released.
func (in *inputState) resetCursor() {
	in.moved = false
	in.dx, in.dy = 0, 0
}

// ConsumeXDelta returns the horizontal pointer motion since the last call.
func (in *inputState) ConsumeXDelta() float64 {
	d := in.dx
	in.dx = 0
	return d
}

// ConsumeYDelta returns the vertical pointer motion since the last call.
// Positive is down the screen.
func (in *inputState) ConsumeYDelta() float64 {
	d := in.dy
	in.dy = 0
	return d
}

func (in *inputState) addScroll(yoff float64) { in.scroll += yoff }

func (in *inputState) consumeScroll() float64 {
	s := in.scroll
	in.scroll = 0
	return s
}

func (in *inputState) addClick(x, y float64) {
	in.clicks = append(in.clicks, click{X: x, Y: y})
}

// consumeClicks returns pending clicks. The returned slice is only valid
// until the next addClick.
func (in *inputState) consumeClicks() []click {
	c := in.clicks
	in.clicks = in.clicks[:0]
	return c
}

// consumeToggles returns and clears the edge-triggered mode and wireframe toggles.
func (in *inputState) consumeToggles() (mode, wireframe bool) {
	mode, wireframe = in.toggleMode, in.toggleWireframe
	in.toggleMode, in.toggleWireframe = false, false
	return mode, wireframe
}
