// Package hparams declares the swept hyperparameters and their domains
package hparams

import "math/rand"

// IntInterval is a closed integer interval.
type IntInterval struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Sample draws uniformly from the interval, bounds included.
func (d IntInterval) Sample(rng *rand.Rand) int {
	return d.Min + rng.Intn(d.Max-d.Min+1)
}

// Contains reports interval membership, bounds included.
func (d IntInterval) Contains(v int) bool {
	return v >= d.Min && v <= d.Max
}

// RealInterval is a closed real interval.
type RealInterval struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Sample draws uniformly from the interval.
func (d RealInterval) Sample(rng *rand.Rand) float64 {
	return d.Min + rng.Float64()*(d.Max-d.Min)
}

// Contains reports interval membership, bounds included.
func (d RealInterval) Contains(v float64) bool {
	return v >= d.Min && v <= d.Max
}

// DiscreteInts is a discrete set of integer values.
type DiscreteInts []int

// Sample draws one of the values uniformly.
func (d DiscreteInts) Sample(rng *rand.Rand) int {
	return d[rng.Intn(len(d))]
}

// Contains reports set membership.
func (d DiscreteInts) Contains(v int) bool {
	for _, w := range d {
		if w == v {
			return true
		}
	}
	return false
}

// DiscreteStrings is a discrete set of string values.
type DiscreteStrings []string

// Sample draws one of the values uniformly.
func (d DiscreteStrings) Sample(rng *rand.Rand) string {
	return d[rng.Intn(len(d))]
}

// Contains reports set membership.
func (d DiscreteStrings) Contains(v string) bool {
	for _, w := range d {
		if w == v {
			return true
		}
	}
	return false
}
