// Package layer defines the tensor, parameter and layer types shared by all layer kinds
package layer

// Layer is one differentiable stage of a sequential network.
type Layer interface {

	// Forward computes the layer output. When train is true the layer may
	// cache whatever Backward needs; Backward is only valid after a
	// Forward call with train set.
	Forward(x *Tensor, train bool) *Tensor

	// Backward consumes the gradient with respect to the last Forward
	// output, fills the gradients of the layer parameters, and returns
	// the gradient with respect to the Forward input.
	Backward(grad *Tensor) *Tensor

	// Params returns the learnable parameters, possibly none.
	Params() []*Param
}

// Param is one learnable tensor together with its gradient.
type Param struct {
	Value []float32
	Grad  []float32
}

// NewParam creates a parameter with n zero elements.
func NewParam(n int) *Param {
	return &Param{
		Value: make([]float32, n),
		Grad:  make([]float32, n),
	}
}
