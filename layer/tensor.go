package layer

import "math"
import "math/rand"

// Tensor is a dense float32 tensor in row-major layout. Image batches use
// NHWC order, flat batches use NxD.
type Tensor struct {
	Data  []float32
	Shape []int
}

// NewTensor creates a zero tensor with the given shape.
func NewTensor(shape ...int) *Tensor {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return &Tensor{Data: make([]float32, n), Shape: shape}
}

// Size returns the total number of elements.
func (t *Tensor) Size() int {
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// Dim returns the i-th dimension.
func (t *Tensor) Dim(i int) int {
	return t.Shape[i]
}

// Reshape returns a tensor sharing Data with a new shape of equal size.
func (t *Tensor) Reshape(shape ...int) *Tensor {
	o := &Tensor{Data: t.Data, Shape: shape}
	if o.Size() != t.Size() {
		panic("layer: reshape changes tensor size")
	}
	return o
}

// GlorotUniform fills w with glorot (Xavier) uniform samples for the given
// fan-in and fan-out.
func GlorotUniform(rng *rand.Rand, fanIn, fanOut int, w []float32) {
	limit := float32(math.Sqrt(6.0 / float64(fanIn+fanOut)))
	for i := range w {
		w[i] = (rng.Float32()*2 - 1) * limit
	}
}
