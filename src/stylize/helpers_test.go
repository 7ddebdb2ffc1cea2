package stylize

import (
	"errors"
	"image"
	"image/color"
	"math"
	"reflect"
	"sync"
	"testing"
)

func ok(tb testing.TB, err error) {
	tb.Helper()
	if err != nil {
		tb.Fatalf("unexpected error: %s", err.Error())
	}
}

func equals(tb testing.TB, act, exp interface{}) {
	tb.Helper()
	if !reflect.DeepEqual(exp, act) {
		tb.Fatalf("exp: %#v\n\tgot: %#v", exp, act)
	}
}

func notEquals(tb testing.TB, act, exp interface{}) {
	tb.Helper()
	if reflect.DeepEqual(exp, act) {
		tb.Fatalf("didn't expect: %#v", act)
	}
}

func solidImage(w int, h int, c color.Color) *Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return FromImage(img)
}

var errCorrupt = errors.New("corrupt image")

// meanEncoder encodes an image into its per channel mean ([1,1,1,3]) and keeps
// track of every bottleneck it hands out.
type meanEncoder struct {
	mu      sync.Mutex
	calls   []*Image
	live    int
	corrupt map[*Image]bool
	shape   []int64
}

func newMeanEncoder() *meanEncoder {
	return &meanEncoder{corrupt: make(map[*Image]bool), shape: []int64{1, 1, 1, 3}}
}

func (e *meanEncoder) Encode(img *Image) (*Tensor, error) {
	e.mu.Lock()
	e.calls = append(e.calls, img)
	if e.corrupt[img] {
		e.mu.Unlock()
		return nil, errCorrupt
	}
	e.live++
	e.mu.Unlock()

	values := make([]float32, 3)
	n := float64(img.Width * img.Height)
	var sums [3]float64
	for i, v := range img.Pix {
		sums[i%3] += float64(v)
	}
	for c := 0; c < 3; c++ {
		values[c] = float32(sums[c] / n)
	}

	shape := e.shape
	if int64(len(values)) != shape[0]*shape[1]*shape[2]*shape[3] {
		values = make([]float32, shape[0]*shape[1]*shape[2]*shape[3])
	}
	return NewTensor(shape, values, func() {
		e.mu.Lock()
		e.live--
		e.mu.Unlock()
	})
}

func (e *meanEncoder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

func (e *meanEncoder) liveCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.live
}

// echoTransformer returns the bottleneck reinterpreted as a 1x1 image.
type echoTransformer struct {
	calls int
	seen  []*Tensor
	err   error
}

func (tr *echoTransformer) Transform(content *Image, bottleneck *Tensor) (*Image, error) {
	tr.calls++
	tr.seen = append(tr.seen, bottleneck)
	if tr.err != nil {
		return nil, tr.err
	}

	values := bottleneck.Values()
	out := &Image{Width: 1, Height: len(values) / 3, Pix: make([]float32, len(values))}
	copy(out.Pix, values)
	return out, nil
}

func almostEqual(a float32, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-6
}
