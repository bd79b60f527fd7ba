// Package dense implements a fully connected layer
package dense

import "fmt"
import "math/rand"

import "github.com/neurlang/hypersweep/layer"
import "github.com/neurlang/hypersweep/parallel"

// Dense maps [N,in] batches to [N,out] with optional ReLU. Weights are
// laid out [in][out].
type Dense struct {
	in, out int
	relu    bool

	w *layer.Param
	b *layer.Param

	x *layer.Tensor
	y *layer.Tensor
}

// MustNew creates a new Dense layer or panics on invalid arguments.
func MustNew(in, out int, relu bool, rng *rand.Rand) *Dense {
	o, err := New(in, out, relu, rng)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new Dense layer with glorot-initialized weights.
func New(in, out int, relu bool, rng *rand.Rand) (*Dense, error) {
	if in <= 0 || out <= 0 {
		return nil, fmt.Errorf("New Dense: size %d -> %d must be positive", in, out)
	}
	o := &Dense{
		in:   in,
		out:  out,
		relu: relu,
		w:    layer.NewParam(in * out),
		b:    layer.NewParam(out),
	}
	layer.GlorotUniform(rng, in, out, o.w.Value)
	return o, nil
}

// Units returns the output width.
func (d *Dense) Units() int {
	return d.out
}

// Activated reports whether the layer applies ReLU.
func (d *Dense) Activated() bool {
	return d.relu
}

// Forward computes x*W + b, with ReLU when configured.
func (d *Dense) Forward(x *layer.Tensor, train bool) *layer.Tensor {
	n := x.Dim(0)
	y := layer.NewTensor(n, d.out)
	parallel.ForEach(n, parallel.Threads(), func(i int) {
		xrow := x.Data[i*d.in : (i+1)*d.in]
		yrow := y.Data[i*d.out : (i+1)*d.out]
		copy(yrow, d.b.Value)
		for j, xv := range xrow {
			if xv == 0 {
				continue
			}
			wrow := d.w.Value[j*d.out : (j+1)*d.out]
			for u, wv := range wrow {
				yrow[u] += xv * wv
			}
		}
		if d.relu {
			for u, v := range yrow {
				if v < 0 {
					yrow[u] = 0
				}
			}
		}
	})
	if train {
		d.x, d.y = x, y
	} else {
		d.x, d.y = nil, nil
	}
	return y
}

// Backward computes parameter gradients and the input gradient.
func (d *Dense) Backward(grad *layer.Tensor) *layer.Tensor {
	if d.x == nil {
		panic("dense: Backward without train-mode Forward")
	}
	n := d.x.Dim(0)

	gz := grad
	if d.relu {
		gz = layer.NewTensor(n, d.out)
		for j := range gz.Data {
			if d.y.Data[j] > 0 {
				gz.Data[j] = grad.Data[j]
			}
		}
	}

	for j := range d.w.Grad {
		d.w.Grad[j] = 0
	}
	for j := range d.b.Grad {
		d.b.Grad[j] = 0
	}

	// Each output unit owns column u of the weight gradient.
	parallel.ForEach(d.out, parallel.Threads(), func(u int) {
		for i := 0; i < n; i++ {
			gv := gz.Data[i*d.out+u]
			if gv == 0 {
				continue
			}
			d.b.Grad[u] += gv
			xrow := d.x.Data[i*d.in : (i+1)*d.in]
			for j, xv := range xrow {
				d.w.Grad[j*d.out+u] += xv * gv
			}
		}
	})

	dx := layer.NewTensor(n, d.in)
	parallel.ForEach(n, parallel.Threads(), func(i int) {
		grow := gz.Data[i*d.out : (i+1)*d.out]
		drow := dx.Data[i*d.in : (i+1)*d.in]
		for j := 0; j < d.in; j++ {
			wrow := d.w.Value[j*d.out : (j+1)*d.out]
			var sum float32
			for u, wv := range wrow {
				sum += wv * grow[u]
			}
			drow[j] = sum
		}
	})
	return dx
}

// Params returns the weights and biases.
func (d *Dense) Params() []*layer.Param {
	return []*layer.Param{d.w, d.b}
}
