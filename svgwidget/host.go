// Given a widget producing vector output, implements how to
// mount it offscreen, wait for it to be painted, and collect
// its SVG markup.
package svgwidget

import (
	"context"
	"sync"
	"time"
)

// FrameSource signals the next paint of a Host.
type FrameSource interface {
	// NextFrame blocks until the next frame or until ctx is done.
	NextFrame(ctx context.Context) error
}

// Immediate is a FrameSource for headless use: frames
// are produced as fast as they are requested.
type Immediate struct{}

func (Immediate) NextFrame(ctx context.Context) error { return ctx.Err() }

// Ticker produces one frame every Interval.
type Ticker struct {
	Interval time.Duration
}

func (t Ticker) NextFrame(ctx context.Context) error {
	timer := time.NewTimer(t.Interval)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Container is an offscreen mount point.
// Widgets register paint callbacks on it and publish their
// vector output with SetVector.
type Container struct {
	width, height int

	mu       sync.Mutex
	nextID   int
	painters map[int]func()
	vector   string
}

func newContainer(width, height int) *Container {
	return &Container{width: width, height: height, painters: make(map[int]func())}
}

// Size returns the dimensions of the container, in pixels.
func (c *Container) Size() (width, height int) { return c.width, c.height }

// OnPaint registers `fn` to be called on every paint of the host
// the container is attached to. The returned function removes it.
func (c *Container) OnPaint(fn func()) (remove func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.painters[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.painters, id)
	}
}

// SetVector publishes the SVG markup currently displayed by the container.
func (c *Container) SetVector(markup string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vector = markup
}

// Vector returns the last published markup, or an empty string.
func (c *Container) Vector() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vector
}

func (c *Container) paint() {
	c.mu.Lock()
	painters := make([]func(), 0, len(c.painters))
	for id := 1; id <= c.nextID; id++ {
		if fn, ok := c.painters[id]; ok {
			painters = append(painters, fn)
		}
	}
	c.mu.Unlock()

	// callbacks may publish or unregister
	for _, fn := range painters {
		fn()
	}
}

// Host paints the containers attached to it, one frame at a time.
type Host struct {
	frames FrameSource

	mu       sync.Mutex
	attached map[*Container]struct{}
	painted  int
}

// NewHost returns a host driven by `frames`.
// A nil source is replaced by Immediate.
func NewHost(frames FrameSource) *Host {
	if frames == nil {
		frames = Immediate{}
	}
	return &Host{frames: frames, attached: make(map[*Container]struct{})}
}

// NextPaint waits for one frame, then paints every attached container.
func (h *Host) NextPaint(ctx context.Context) error {
	if err := h.frames.NextFrame(ctx); err != nil {
		return err
	}
	h.mu.Lock()
	h.painted++
	containers := make([]*Container, 0, len(h.attached))
	for c := range h.attached {
		containers = append(containers, c)
	}
	h.mu.Unlock()

	for _, c := range containers {
		c.paint()
	}
	return nil
}

// Attached returns the number of containers currently attached.
func (h *Host) Attached() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.attached)
}

// Frames returns the number of paints performed so far.
func (h *Host) Frames() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.painted
}

func (h *Host) attach(c *Container) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attached[c] = struct{}{}
}

func (h *Host) detach(c *Container) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.attached, c)
}
