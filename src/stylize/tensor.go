package stylize

import (
	"fmt"
	"sync"
)

// Tensor holds a bottleneck produced by a StyleEncoder (or by Blend). The
// values are only valid until Release is called.
type Tensor struct {
	shape  []int64
	values []float32

	releaseOnce sync.Once
	released    bool
	onRelease   func()
}

// NewTensor creates a tensor. onRelease (may be nil) runs exactly once, the
// first time the tensor is released.
func NewTensor(shape []int64, values []float32, onRelease func()) (*Tensor, error) {
	n := int64(1)
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("invalid dimension %d in shape %v", d, shape)
		}
		n *= d
	}
	if n != int64(len(values)) {
		return nil, fmt.Errorf("shape %v needs %d values, got %d", shape, n, len(values))
	}

	s := make([]int64, len(shape))
	copy(s, shape)
	return &Tensor{shape: s, values: values, onRelease: onRelease}, nil
}

func (t *Tensor) Shape() []int64 {
	s := make([]int64, len(t.shape))
	copy(s, t.shape)
	return s
}

func (t *Tensor) Values() []float32 {
	return t.values
}

func (t *Tensor) Len() int {
	return len(t.values)
}

func (t *Tensor) Release() {
	if t == nil {
		return
	}
	t.releaseOnce.Do(func() {
		t.values = nil
		t.released = true
		if t.onRelease != nil {
			t.onRelease()
		}
	})
}

func (t *Tensor) Released() bool {
	return t.released
}

func sameShape(a []int64, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Blend interpolates linearly between a style and an identity bottleneck:
// style*ratio + identity*(1-ratio). Both inputs stay owned by the caller.
func Blend(style *Tensor, identity *Tensor, ratio float64) (*Tensor, error) {
	if !sameShape(style.shape, identity.shape) {
		return nil, fmt.Errorf("bottleneck shapes differ: %v vs %v", style.shape, identity.shape)
	}

	r := float32(ratio)
	values := make([]float32, len(style.values))
	for i := range values {
		values[i] = style.values[i]*r + identity.values[i]*(1-r)
	}
	return NewTensor(style.shape, values, nil)
}
