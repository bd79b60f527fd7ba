package flatten

import (
	"testing"

	"github.com/neurlang/hypersweep/layer"
)

func TestForwardFlattensPerSample(t *testing.T) {
	f := New()
	x := layer.NewTensor(2, 3, 3, 4)
	y := f.Forward(x, false)
	if y.Dim(0) != 2 || y.Dim(1) != 36 {
		t.Fatalf("shape %v, want [2 36]", y.Shape)
	}
	if &y.Data[0] != &x.Data[0] {
		t.Error("flatten copied data instead of sharing it")
	}
}

func TestBackwardRestoresShape(t *testing.T) {
	f := New()
	x := layer.NewTensor(2, 4, 4, 1)
	f.Forward(x, true)
	g := layer.NewTensor(2, 16)
	dx := f.Backward(g)
	for i, want := range []int{2, 4, 4, 1} {
		if dx.Dim(i) != want {
			t.Fatalf("dim %d = %d, want %d", i, dx.Dim(i), want)
		}
	}
}
