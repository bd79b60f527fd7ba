// Package flatten implements the NHWC to NxD reshape layer
package flatten

import "github.com/neurlang/hypersweep/layer"

// Flatten turns [N,H,W,C] batches into [N,H*W*C] rows. It shares the
// underlying data and only rewrites the shape.
type Flatten struct {
	inShape []int
}

// New creates a new Flatten layer.
func New() *Flatten {
	return &Flatten{}
}

func (f *Flatten) Forward(x *layer.Tensor, train bool) *layer.Tensor {
	if train {
		f.inShape = x.Shape
	}
	return x.Reshape(x.Dim(0), x.Size()/x.Dim(0))
}

func (f *Flatten) Backward(grad *layer.Tensor) *layer.Tensor {
	return grad.Reshape(f.inShape...)
}

func (f *Flatten) Params() []*layer.Param {
	return nil
}
