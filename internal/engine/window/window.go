// Package window owns the connection to the game window. The handle is lazy:
// it connects on first use, verifies the cached pid is still alive on every
// use, and reconnects after the game restarts. Callers never hold a raw pid.
package window

import (
	"fmt"
	"image"
	"sync"

	"github.com/go-vgo/robotgo"
)

// Handle is a lazily-initialized, self-healing reference to the game window.
// Safe for concurrent use by the dispatcher and the detector.
type Handle struct {
	title string

	mu  sync.Mutex
	pid int

	// Injection points for tests.
	findPids  func(title string) ([]int32, error)
	pidExists func(pid int32) (bool, error)
	bounds    func(pid int) (x, y, w, h int)
}

// New creates a handle for the window with the given title. No lookup happens
// until the handle is first used.
func New(title string) *Handle {
	return &Handle{
		title: title,
		findPids: func(title string) ([]int32, error) {
			ids, err := robotgo.FindIds(title)
			out := make([]int32, 0, len(ids))
			for _, id := range ids {
				out = append(out, int32(id))
			}
			return out, err
		},
		pidExists: func(pid int32) (bool, error) { return robotgo.PidExists(int(pid)) },
		bounds:    func(pid int) (x, y, w, h int) { return robotgo.GetBounds(pid) },
	}
}

// PID returns the process id of the game window, connecting or reconnecting
// as needed.
func (h *Handle) PID() (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pid != 0 {
		if alive, err := h.pidExists(int32(h.pid)); err == nil && alive {
			return h.pid, nil
		}
		h.pid = 0
	}

	pids, err := h.findPids(h.title)
	if err != nil {
		return 0, fmt.Errorf("looking up window %q: %w", h.title, err)
	}
	if len(pids) == 0 {
		return 0, fmt.Errorf("window %q not found", h.title)
	}
	h.pid = int(pids[0])
	return h.pid, nil
}

// Bounds returns the window's on-screen rectangle. A degenerate rectangle
// invalidates the cached connection so the next call reconnects.
func (h *Handle) Bounds() (image.Rectangle, error) {
	pid, err := h.PID()
	if err != nil {
		return image.Rectangle{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	x, y, w, ht := h.bounds(pid)
	if w <= 0 || ht <= 0 {
		h.pid = 0
		return image.Rectangle{}, fmt.Errorf("window %q has no visible bounds", h.title)
	}
	return image.Rect(x, y, x+w, y+ht), nil
}

// Invalidate drops the cached connection; the next use reconnects.
func (h *Handle) Invalidate() {
	h.mu.Lock()
	h.pid = 0
	h.mu.Unlock()
}
