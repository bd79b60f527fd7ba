package hparams

import "crypto/sha256"
import "fmt"
import "math/rand"

// Space lists every swept hyperparameter with its domain. One named field
// per hyperparameter; there is no dynamic registry.
type Space struct {
	ConvLayers     IntInterval     `json:"conv_layers" yaml:"conv_layers"`
	ConvKernelSize DiscreteInts    `json:"conv_kernel_size" yaml:"conv_kernel_size"`
	DenseLayers    IntInterval     `json:"dense_layers" yaml:"dense_layers"`
	Dropout        RealInterval    `json:"dropout" yaml:"dropout"`
	Optimizer      DiscreteStrings `json:"optimizer" yaml:"optimizer"`
}

// DefaultSpace returns the sweep domains.
func DefaultSpace() Space {
	return Space{
		ConvLayers:     IntInterval{Min: 1, Max: 3},
		ConvKernelSize: DiscreteInts{3, 5},
		DenseLayers:    IntInterval{Min: 1, Max: 3},
		Dropout:        RealInterval{Min: 0.1, Max: 0.4},
		Optimizer:      DiscreteStrings{"adam", "adagrad"},
	}
}

// Assignment is one concrete value per hyperparameter. All sessions of a
// group share one assignment.
type Assignment struct {
	ConvLayers     int     `json:"conv_layers" yaml:"conv_layers"`
	ConvKernelSize int     `json:"conv_kernel_size" yaml:"conv_kernel_size"`
	DenseLayers    int     `json:"dense_layers" yaml:"dense_layers"`
	Dropout        float64 `json:"dropout" yaml:"dropout"`
	Optimizer      string  `json:"optimizer" yaml:"optimizer"`
}

// Sample draws one assignment uniformly at random, one draw per
// hyperparameter in declaration order, so a fixed rng seed reproduces the
// same assignment sequence.
func (s Space) Sample(rng *rand.Rand) Assignment {
	return Assignment{
		ConvLayers:     s.ConvLayers.Sample(rng),
		ConvKernelSize: s.ConvKernelSize.Sample(rng),
		DenseLayers:    s.DenseLayers.Sample(rng),
		Dropout:        s.Dropout.Sample(rng),
		Optimizer:      s.Optimizer.Sample(rng),
	}
}

// Contains reports whether every value of the assignment lies in its
// declared domain.
func (s Space) Contains(a Assignment) bool {
	return s.ConvLayers.Contains(a.ConvLayers) &&
		s.ConvKernelSize.Contains(a.ConvKernelSize) &&
		s.DenseLayers.Contains(a.DenseLayers) &&
		s.Dropout.Contains(a.Dropout) &&
		s.Optimizer.Contains(a.Optimizer)
}

// Canonical returns the deterministic string form of the assignment, used
// for group identity and progress output.
func (a Assignment) Canonical() string {
	return fmt.Sprintf("conv_layers=%d,conv_kernel_size=%d,dense_layers=%d,dropout=%v,optimizer=%s",
		a.ConvLayers, a.ConvKernelSize, a.DenseLayers, a.Dropout, a.Optimizer)
}

// GroupID returns the sha256 hex digest of the canonical form. Sessions
// sharing an assignment share this id. Distinct assignments colliding is
// accepted as practically impossible and is not detected.
func (a Assignment) GroupID() string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(a.Canonical())))
}

// Declaration is one manifest row describing a hyperparameter domain.
type Declaration struct {
	Name   string `json:"name"`
	Domain string `json:"domain"` // int_interval, real_interval or discrete
	Min    any    `json:"min,omitempty"`
	Max    any    `json:"max,omitempty"`
	Values []any  `json:"values,omitempty"`
}

// Declarations returns the manifest rows for the space, in declaration
// order.
func (s Space) Declarations() []Declaration {
	kernels := make([]any, len(s.ConvKernelSize))
	for i, v := range s.ConvKernelSize {
		kernels[i] = v
	}
	optimizers := make([]any, len(s.Optimizer))
	for i, v := range s.Optimizer {
		optimizers[i] = v
	}
	return []Declaration{
		{Name: "conv_layers", Domain: "int_interval", Min: s.ConvLayers.Min, Max: s.ConvLayers.Max},
		{Name: "conv_kernel_size", Domain: "discrete", Values: kernels},
		{Name: "dense_layers", Domain: "int_interval", Min: s.DenseLayers.Min, Max: s.DenseLayers.Max},
		{Name: "dropout", Domain: "real_interval", Min: s.Dropout.Min, Max: s.Dropout.Max},
		{Name: "optimizer", Domain: "discrete", Values: optimizers},
	}
}
