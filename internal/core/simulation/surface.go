package simulation

import (
	"sync"

	"github.com/zeusync/arena/internal/core/arena"
)

// Surface is the drawing area the match is laid out on. Until it reports
// ok, every controller operation is a no-op.
type Surface interface {
	Size() (width, height float64, ok bool)
	Resize(width, height float64)
}

// Renderer draws frames. Render and Clear are called from the loop
// goroutine and must not block.
type Renderer interface {
	Render(frame arena.Frame)
	Clear()
}

// Viewport is a Surface backed by a fixed size that hosts can change.
type Viewport struct {
	mu            sync.RWMutex
	width, height float64
}

// NewViewport returns a viewport of the given size. A non-positive side
// leaves it not ready.
func NewViewport(width, height float64) *Viewport {
	return &Viewport{width: width, height: height}
}

func (v *Viewport) Size() (float64, float64, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.width, v.height, v.width > 0 && v.height > 0
}

func (v *Viewport) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	v.mu.Lock()
	v.width, v.height = width, height
	v.mu.Unlock()
}

type nopRenderer struct{}

func (nopRenderer) Render(arena.Frame) {}
func (nopRenderer) Clear()             {}
