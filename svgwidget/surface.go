package svgwidget

import (
	"context"
	"errors"
)

// SurfaceSize is the width and height of the offscreen containers.
const SurfaceSize = 64

// Widget is a component which may be mounted into a container.
// Once painted, it publishes its vector output with Container.SetVector.
type Widget interface {
	// Mount renders the widget into `c`, returning a function
	// to undo it.
	Mount(c *Container) (unmount func(), err error)
}

var errReleased = errors.New("surface already released")

// Surface is an offscreen container attached to a host.
// It must be released once the output has been collected: see Host.WithSurface.
type Surface struct {
	host      *Host
	container *Container
	unmount   func()
	released  bool
}

// Acquire attaches a new offscreen container to the host.
func (h *Host) Acquire() *Surface {
	c := newContainer(SurfaceSize, SurfaceSize)
	h.attach(c)
	return &Surface{host: h, container: c}
}

// WithSurface acquires a surface, calls `fn` and releases the surface,
// even if `fn` panics.
func (h *Host) WithSurface(fn func(*Surface) error) error {
	s := h.Acquire()
	defer s.Release()
	return fn(s)
}

// Container returns the mount point of the surface.
func (s *Surface) Container() *Container { return s.container }

// Mount mounts `w` into the surface. Only one widget may be mounted.
func (s *Surface) Mount(w Widget) error {
	if s.released {
		return errReleased
	}
	if s.unmount != nil {
		return errors.New("a widget is already mounted")
	}
	unmount, err := w.Mount(s.container)
	if err != nil {
		return err
	}
	if unmount == nil {
		unmount = func() {}
	}
	s.unmount = unmount
	return nil
}

// Settle waits for two consecutive paints of the host, after which
// the mounted widget has completed its layout and paint.
func (s *Surface) Settle(ctx context.Context) error {
	if s.released {
		return errReleased
	}
	for i := 0; i < 2; i++ {
		if err := s.host.NextPaint(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Release unmounts the widget, if any, and detaches the container.
// It is safe to call Release more than once.
func (s *Surface) Release() {
	if s.released {
		return
	}
	s.released = true
	// detach even if unmounting panics
	defer s.host.detach(s.container)
	if s.unmount != nil {
		s.unmount()
	}
}
