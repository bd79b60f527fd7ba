// Package sequential implements an ordered stack of layers trained by backpropagation
package sequential

import "github.com/neurlang/hypersweep/layer"

// Network is a sequential network. The zero value is an empty network
// ready for Add.
type Network struct {
	layers []layer.Layer
	params []*layer.Param
}

// Add appends a layer to the end of the network.
func (n *Network) Add(l layer.Layer) {
	n.layers = append(n.layers, l)
	n.params = append(n.params, l.Params()...)
}

// Len returns the number of layers.
func (n *Network) Len() int {
	return len(n.layers)
}

// Layers returns the layers in forward order.
func (n *Network) Layers() []layer.Layer {
	return n.layers
}

// Params returns every learnable parameter in forward order.
func (n *Network) Params() []*layer.Param {
	return n.params
}

// Forward runs the input through all layers.
func (n *Network) Forward(x *layer.Tensor, train bool) *layer.Tensor {
	for _, l := range n.layers {
		x = l.Forward(x, train)
	}
	return x
}

// Backward propagates the output gradient back through all layers,
// filling each parameter gradient on the way.
func (n *Network) Backward(grad *layer.Tensor) {
	for i := len(n.layers) - 1; i >= 0; i-- {
		grad = n.layers[i].Backward(grad)
	}
}
