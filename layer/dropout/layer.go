// Package dropout implements an inverted dropout layer
package dropout

import "fmt"
import "math/rand"

import "github.com/neurlang/hypersweep/layer"

// Dropout zeroes each activation with probability rate during training and
// scales survivors by 1/(1-rate), so evaluation is the identity.
type Dropout struct {
	rate float64
	rng  *rand.Rand
	mask []float32
}

// MustNew creates a new Dropout layer or panics on an invalid rate.
func MustNew(rate float64, rng *rand.Rand) *Dropout {
	o, err := New(rate, rng)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new Dropout layer with the given drop rate in [0, 1).
func New(rate float64, rng *rand.Rand) (*Dropout, error) {
	if rate < 0 || rate >= 1 {
		return nil, fmt.Errorf("New Dropout: rate %v out of [0, 1)", rate)
	}
	return &Dropout{rate: rate, rng: rng}, nil
}

// Rate returns the configured drop rate.
func (d *Dropout) Rate() float64 {
	return d.rate
}

// Forward drops activations in train mode and passes through otherwise.
func (d *Dropout) Forward(x *layer.Tensor, train bool) *layer.Tensor {
	if !train || d.rate == 0 {
		d.mask = nil
		return x
	}
	keep := float32(1 / (1 - d.rate))
	y := layer.NewTensor(x.Shape...)
	mask := make([]float32, len(x.Data))
	// The rng stream is shared with model init, keep draws sequential.
	for j, v := range x.Data {
		if d.rng.Float64() >= d.rate {
			mask[j] = keep
			y.Data[j] = v * keep
		}
	}
	d.mask = mask
	return y
}

// Backward gates the gradient by the forward mask.
func (d *Dropout) Backward(grad *layer.Tensor) *layer.Tensor {
	if d.mask == nil {
		return grad
	}
	dx := layer.NewTensor(grad.Shape...)
	for j, m := range d.mask {
		dx.Data[j] = grad.Data[j] * m
	}
	return dx
}

// Params returns nothing; dropout has no learnable state.
func (d *Dropout) Params() []*layer.Param {
	return nil
}
