// Package maxpool2d implements a 2x2 stride-2 max-pooling layer
package maxpool2d

import "github.com/neurlang/hypersweep/layer"
import "github.com/neurlang/hypersweep/parallel"

// MaxPool2D pools NHWC batches with a 2x2 window, stride 2 and same
// padding, so odd extents keep a trailing partial window.
type MaxPool2D struct {
	inShape []int
	argmax  []int32 // flat input index of each output maximum
}

// MustNew creates a new MaxPool2D layer.
func MustNew() *MaxPool2D {
	return &MaxPool2D{}
}

// New creates a new MaxPool2D layer. It never fails; the error return
// mirrors the other layer constructors.
func New() (*MaxPool2D, error) {
	return &MaxPool2D{}, nil
}

// OutputDim returns the pooled extent for an input extent.
func OutputDim(in int) int {
	return (in + 1) / 2
}

// Forward reduces each window to its maximum.
func (m *MaxPool2D) Forward(x *layer.Tensor, train bool) *layer.Tensor {
	n, h, w, c := x.Dim(0), x.Dim(1), x.Dim(2), x.Dim(3)
	oh, ow := OutputDim(h), OutputDim(w)
	y := layer.NewTensor(n, oh, ow, c)
	var argmax []int32
	if train {
		argmax = make([]int32, y.Size())
	}
	parallel.ForEach(n, parallel.Threads(), func(i int) {
		for oy := 0; oy < oh; oy++ {
			for ox := 0; ox < ow; ox++ {
				for ch := 0; ch < c; ch++ {
					best := float32(0)
					bestAt := -1
					for dy := 0; dy < 2; dy++ {
						iy := oy*2 + dy
						if iy >= h {
							continue
						}
						for dx := 0; dx < 2; dx++ {
							ix := ox*2 + dx
							if ix >= w {
								continue
							}
							at := ((i*h+iy)*w+ix)*c + ch
							if bestAt < 0 || x.Data[at] > best {
								best = x.Data[at]
								bestAt = at
							}
						}
					}
					out := ((i*oh+oy)*ow+ox)*c + ch
					y.Data[out] = best
					if argmax != nil {
						argmax[out] = int32(bestAt)
					}
				}
			}
		}
	})
	if train {
		m.inShape = x.Shape
		m.argmax = argmax
	} else {
		m.inShape = nil
		m.argmax = nil
	}
	return y
}

// Backward routes each output gradient back to the input cell that won
// the window.
func (m *MaxPool2D) Backward(grad *layer.Tensor) *layer.Tensor {
	if m.argmax == nil {
		panic("maxpool2d: Backward without train-mode Forward")
	}
	dx := layer.NewTensor(m.inShape...)
	for j, at := range m.argmax {
		dx.Data[at] += grad.Data[j]
	}
	return dx
}

// Params returns nothing; pooling has no learnable state.
func (m *MaxPool2D) Params() []*layer.Param {
	return nil
}
