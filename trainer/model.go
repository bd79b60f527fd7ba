// Package trainer runs one training session end to end
package trainer

import "hash/fnv"
import "math/rand"

import "github.com/neurlang/hypersweep/datasets/mnist"
import "github.com/neurlang/hypersweep/hparams"
import "github.com/neurlang/hypersweep/layer/conv2d"
import "github.com/neurlang/hypersweep/layer/dense"
import "github.com/neurlang/hypersweep/layer/dropout"
import "github.com/neurlang/hypersweep/layer/flatten"
import "github.com/neurlang/hypersweep/layer/maxpool2d"
import "github.com/neurlang/hypersweep/net/sequential"

// Widths double per added layer starting from these bases; everything
// else about the architecture is fixed.
const baseConvFilters = 8
const baseDenseUnits = 32

// BuildModel constructs the convnet described by the assignment: one
// conv+pool block per conv layer, flatten, dropout, one ReLU dense block
// per dense layer, and a linear output layer over the digit classes.
// The seed drives weight init and the dropout mask stream.
func BuildModel(a hparams.Assignment, seed int64) (*sequential.Network, error) {
	rng := rand.New(rand.NewSource(seed))
	var net sequential.Network

	h, w, c := mnist.ImgSize, mnist.ImgSize, 1
	filters := baseConvFilters
	for i := 0; i < a.ConvLayers; i++ {
		conv, err := conv2d.New(c, filters, a.ConvKernelSize, rng)
		if err != nil {
			return nil, err
		}
		net.Add(conv)
		net.Add(maxpool2d.MustNew())
		c = filters
		h = maxpool2d.OutputDim(h)
		w = maxpool2d.OutputDim(w)
		filters *= 2
	}

	net.Add(flatten.New())
	drop, err := dropout.New(a.Dropout, rng)
	if err != nil {
		return nil, err
	}
	net.Add(drop)

	dim := h * w * c
	units := baseDenseUnits
	for i := 0; i < a.DenseLayers; i++ {
		fc, err := dense.New(dim, units, true, rng)
		if err != nil {
			return nil, err
		}
		net.Add(fc)
		dim = units
		units *= 2
	}

	out, err := dense.New(dim, mnist.NumClasses, false, rng)
	if err != nil {
		return nil, err
	}
	net.Add(out)
	return &net, nil
}

// sessionSeed maps a session id to a model seed.
func sessionSeed(sessionID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(sessionID))
	return int64(h.Sum64())
}
