package conv2d

import (
	"math"
	"math/rand"
	"testing"

	"github.com/neurlang/hypersweep/layer"
)

func TestNewRejectsBadArguments(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := New(0, 8, 3, rng); err == nil {
		t.Error("accepted zero input channels")
	}
	if _, err := New(1, 0, 3, rng); err == nil {
		t.Error("accepted zero filters")
	}
	if _, err := New(1, 8, 4, rng); err == nil {
		t.Error("accepted even kernel")
	}
	if _, err := New(1, 8, -3, rng); err == nil {
		t.Error("accepted negative kernel")
	}
}

// A 1x1 kernel with unit weight and no bias is the identity up to ReLU.
func TestForwardIdentityKernel(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	c := MustNew(1, 1, 1, rng)
	c.Params()[0].Value[0] = 1
	c.Params()[1].Value[0] = 0

	x := layer.NewTensor(1, 2, 2, 1)
	copy(x.Data, []float32{0.5, -0.25, 2, 0})
	y := c.Forward(x, false)

	want := []float32{0.5, 0, 2, 0} // negative input clamped by ReLU
	for j := range want {
		if y.Data[j] != want[j] {
			t.Errorf("y[%d] = %v, want %v", j, y.Data[j], want[j])
		}
	}
}

func TestForwardSamePaddingSum(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	c := MustNew(1, 1, 3, rng)
	w := c.Params()[0]
	for j := range w.Value {
		w.Value[j] = 1
	}
	c.Params()[1].Value[0] = 0

	// All-ones 3x3 input: the center sees all 9 cells, corners see 4.
	x := layer.NewTensor(1, 3, 3, 1)
	for j := range x.Data {
		x.Data[j] = 1
	}
	y := c.Forward(x, false)
	if got := y.Data[1*3+1]; got != 9 {
		t.Errorf("center = %v, want 9", got)
	}
	if got := y.Data[0]; got != 4 {
		t.Errorf("corner = %v, want 4", got)
	}
	if got := y.Data[1]; got != 6 {
		t.Errorf("edge = %v, want 6", got)
	}
}

func TestOutputShape(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	c := MustNew(3, 8, 5, rng)
	x := layer.NewTensor(2, 7, 7, 3)
	y := c.Forward(x, false)
	for i, want := range []int{2, 7, 7, 8} {
		if y.Dim(i) != want {
			t.Fatalf("dim %d = %d, want %d", i, y.Dim(i), want)
		}
	}
}

// Finite-difference check of the analytic gradients on a small layer.
func TestBackwardMatchesFiniteDifference(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	c := MustNew(2, 3, 3, rng)

	// Large positive biases keep every preactivation away from the ReLU
	// kink, where finite differences would disagree with the analytic
	// one-sided gradient.
	for j := range c.Params()[1].Value {
		c.Params()[1].Value[j] = 10
	}

	x := layer.NewTensor(2, 4, 4, 2)
	for j := range x.Data {
		x.Data[j] = rng.Float32()*2 - 1
	}

	// Scalar objective: sum of outputs, so the output gradient is all ones.
	loss := func() float64 {
		y := c.Forward(x, false)
		var s float64
		for _, v := range y.Data {
			s += float64(v)
		}
		return s
	}

	y := c.Forward(x, true)
	ones := layer.NewTensor(y.Shape...)
	for j := range ones.Data {
		ones.Data[j] = 1
	}
	dx := c.Backward(ones)

	const eps = 1e-2
	check := func(name string, vals []float32, grads []float32, stride int) {
		for j := 0; j < len(vals); j += stride {
			old := vals[j]
			vals[j] = old + eps
			up := loss()
			vals[j] = old - eps
			down := loss()
			vals[j] = old
			numeric := (up - down) / (2 * eps)
			if math.Abs(numeric-float64(grads[j])) > 5e-2*(1+math.Abs(numeric)) {
				t.Errorf("%s[%d]: analytic %v, numeric %v", name, j, grads[j], numeric)
			}
		}
	}
	check("w", c.Params()[0].Value, c.Params()[0].Grad, 7)
	check("b", c.Params()[1].Value, c.Params()[1].Grad, 1)
	check("x", x.Data, dx.Data, 11)
}
