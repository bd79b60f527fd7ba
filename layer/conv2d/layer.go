// Package conv2d implements a 2D convolution layer with ReLU activation
package conv2d

import "fmt"
import "math/rand"

import "github.com/neurlang/hypersweep/layer"
import "github.com/neurlang/hypersweep/parallel"

// Conv2D is a stride-1, same-padding convolution over NHWC batches,
// followed by ReLU. Weights are laid out [ky][kx][inC][outC].
type Conv2D struct {
	inC, outC, kernel, pad int

	w *layer.Param
	b *layer.Param

	x *layer.Tensor // last train-mode input
	y *layer.Tensor // last train-mode output, post ReLU
}

// MustNew creates a new Conv2D layer or panics on invalid arguments.
func MustNew(inChannels, filters, kernel int, rng *rand.Rand) *Conv2D {
	o, err := New(inChannels, filters, kernel, rng)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new Conv2D layer with glorot-initialized weights.
func New(inChannels, filters, kernel int, rng *rand.Rand) (*Conv2D, error) {
	if inChannels <= 0 || filters <= 0 {
		return nil, fmt.Errorf("New Conv2D: channels %d -> %d must be positive", inChannels, filters)
	}
	if kernel <= 0 || kernel%2 == 0 {
		return nil, fmt.Errorf("New Conv2D: kernel size %d must be odd and positive", kernel)
	}
	o := &Conv2D{
		inC:    inChannels,
		outC:   filters,
		kernel: kernel,
		pad:    kernel / 2,
		w:      layer.NewParam(kernel * kernel * inChannels * filters),
		b:      layer.NewParam(filters),
	}
	fanIn := kernel * kernel * inChannels
	fanOut := kernel * kernel * filters
	layer.GlorotUniform(rng, fanIn, fanOut, o.w.Value)
	return o, nil
}

// Filters returns the number of output channels.
func (c *Conv2D) Filters() int {
	return c.outC
}

// KernelSize returns the square kernel side length.
func (c *Conv2D) KernelSize() int {
	return c.kernel
}

// Forward computes relu(conv(x) + b) for a [N,H,W,inC] batch.
func (c *Conv2D) Forward(x *layer.Tensor, train bool) *layer.Tensor {
	n, h, w := x.Dim(0), x.Dim(1), x.Dim(2)
	y := layer.NewTensor(n, h, w, c.outC)
	parallel.ForEach(n, parallel.Threads(), func(i int) {
		c.forwardSample(x, y, i, h, w)
	})
	if train {
		c.x, c.y = x, y
	} else {
		c.x, c.y = nil, nil
	}
	return y
}

func (c *Conv2D) forwardSample(x, y *layer.Tensor, i, h, w int) {
	k, pad := c.kernel, c.pad
	for oy := 0; oy < h; oy++ {
		for ox := 0; ox < w; ox++ {
			for oc := 0; oc < c.outC; oc++ {
				sum := c.b.Value[oc]
				for ky := 0; ky < k; ky++ {
					iy := oy + ky - pad
					if iy < 0 || iy >= h {
						continue
					}
					for kx := 0; kx < k; kx++ {
						ix := ox + kx - pad
						if ix < 0 || ix >= w {
							continue
						}
						xoff := ((i*h+iy)*w + ix) * c.inC
						woff := ((ky*k + kx) * c.inC) * c.outC
						for ic := 0; ic < c.inC; ic++ {
							sum += x.Data[xoff+ic] * c.w.Value[woff+ic*c.outC+oc]
						}
					}
				}
				if sum < 0 {
					sum = 0
				}
				y.Data[((i*h+oy)*w+ox)*c.outC+oc] = sum
			}
		}
	}
}

// Backward computes parameter gradients and the input gradient.
func (c *Conv2D) Backward(grad *layer.Tensor) *layer.Tensor {
	if c.x == nil {
		panic("conv2d: Backward without train-mode Forward")
	}
	n, h, w := c.x.Dim(0), c.x.Dim(1), c.x.Dim(2)
	k, pad := c.kernel, c.pad

	// ReLU gate: zero the gradient wherever the activation clamped.
	gz := layer.NewTensor(n, h, w, c.outC)
	for j := range gz.Data {
		if c.y.Data[j] > 0 {
			gz.Data[j] = grad.Data[j]
		}
	}

	for j := range c.w.Grad {
		c.w.Grad[j] = 0
	}
	for j := range c.b.Grad {
		c.b.Grad[j] = 0
	}

	// Weight and bias gradients: each output channel owns a disjoint
	// slice of both, so fan out over channels.
	parallel.ForEach(c.outC, parallel.Threads(), func(oc int) {
		for i := 0; i < n; i++ {
			for oy := 0; oy < h; oy++ {
				for ox := 0; ox < w; ox++ {
					gv := gz.Data[((i*h+oy)*w+ox)*c.outC+oc]
					if gv == 0 {
						continue
					}
					c.b.Grad[oc] += gv
					for ky := 0; ky < k; ky++ {
						iy := oy + ky - pad
						if iy < 0 || iy >= h {
							continue
						}
						for kx := 0; kx < k; kx++ {
							ix := ox + kx - pad
							if ix < 0 || ix >= w {
								continue
							}
							xoff := ((i*h+iy)*w + ix) * c.inC
							woff := ((ky*k + kx) * c.inC) * c.outC
							for ic := 0; ic < c.inC; ic++ {
								c.w.Grad[woff+ic*c.outC+oc] += c.x.Data[xoff+ic] * gv
							}
						}
					}
				}
			}
		}
	})

	// Input gradient: samples are disjoint, fan out over the batch.
	dx := layer.NewTensor(n, h, w, c.inC)
	parallel.ForEach(n, parallel.Threads(), func(i int) {
		for oy := 0; oy < h; oy++ {
			for ox := 0; ox < w; ox++ {
				for oc := 0; oc < c.outC; oc++ {
					gv := gz.Data[((i*h+oy)*w+ox)*c.outC+oc]
					if gv == 0 {
						continue
					}
					for ky := 0; ky < k; ky++ {
						iy := oy + ky - pad
						if iy < 0 || iy >= h {
							continue
						}
						for kx := 0; kx < k; kx++ {
							ix := ox + kx - pad
							if ix < 0 || ix >= w {
								continue
							}
							dxoff := ((i*h+iy)*w + ix) * c.inC
							woff := ((ky*k + kx) * c.inC) * c.outC
							for ic := 0; ic < c.inC; ic++ {
								dx.Data[dxoff+ic] += c.w.Value[woff+ic*c.outC+oc] * gv
							}
						}
					}
				}
			}
		}
	})
	return dx
}

// Params returns the kernel weights and biases.
func (c *Conv2D) Params() []*layer.Param {
	return []*layer.Param{c.w, c.b}
}
