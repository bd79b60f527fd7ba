// Package learning implements the optimizers and loss used to fit networks
package learning

import "fmt"
import "math"

import "github.com/neurlang/hypersweep/layer"

// Optimizer applies one update step to a parameter set. The parameter
// slice must be the same on every call so per-parameter state lines up.
type Optimizer interface {
	Step(params []*layer.Param)
}

// ByName returns a fresh optimizer with its default learning rate.
// Recognized names are "adam" and "adagrad".
func ByName(name string) (Optimizer, error) {
	switch name {
	case "adam":
		return NewAdam(0.001), nil
	case "adagrad":
		return NewAdagrad(0.001), nil
	}
	return nil, fmt.Errorf("unknown optimizer %q", name)
}

const epsilon = 1e-7

// Adam is the Adam optimizer with the usual beta defaults.
type Adam struct {
	lr           float64
	beta1, beta2 float64
	t            int
	m, v         [][]float64
}

// NewAdam creates an Adam optimizer with the given learning rate.
func NewAdam(lr float64) *Adam {
	return &Adam{lr: lr, beta1: 0.9, beta2: 0.999}
}

func (o *Adam) Step(params []*layer.Param) {
	if o.m == nil {
		for _, p := range params {
			o.m = append(o.m, make([]float64, len(p.Value)))
			o.v = append(o.v, make([]float64, len(p.Value)))
		}
	}
	o.t++
	c1 := 1 - math.Pow(o.beta1, float64(o.t))
	c2 := 1 - math.Pow(o.beta2, float64(o.t))
	for i, p := range params {
		m, v := o.m[i], o.v[i]
		for j, g32 := range p.Grad {
			g := float64(g32)
			m[j] = o.beta1*m[j] + (1-o.beta1)*g
			v[j] = o.beta2*v[j] + (1-o.beta2)*g*g
			p.Value[j] -= float32(o.lr * (m[j] / c1) / (math.Sqrt(v[j]/c2) + epsilon))
		}
	}
}

// Adagrad is the Adagrad optimizer with per-weight accumulators.
type Adagrad struct {
	lr    float64
	accum [][]float64
}

// NewAdagrad creates an Adagrad optimizer with the given learning rate.
func NewAdagrad(lr float64) *Adagrad {
	return &Adagrad{lr: lr}
}

func (o *Adagrad) Step(params []*layer.Param) {
	if o.accum == nil {
		for _, p := range params {
			o.accum = append(o.accum, make([]float64, len(p.Value)))
		}
	}
	for i, p := range params {
		acc := o.accum[i]
		for j, g32 := range p.Grad {
			g := float64(g32)
			acc[j] += g * g
			p.Value[j] -= float32(o.lr * g / (math.Sqrt(acc[j]) + epsilon))
		}
	}
}
