package layer

import (
	"math"
	"math/rand"
	"testing"
)

func TestReshapeSizeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("reshape to a different size did not panic")
		}
	}()
	NewTensor(2, 3).Reshape(7)
}

func TestGlorotUniformBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	w := make([]float32, 10000)
	GlorotUniform(rng, 30, 20, w)
	limit := math.Sqrt(6.0 / 50.0)
	var sum float64
	for _, v := range w {
		if math.Abs(float64(v)) > limit {
			t.Fatalf("weight %v outside glorot limit %v", v, limit)
		}
		sum += float64(v)
	}
	if mean := sum / float64(len(w)); math.Abs(mean) > limit/10 {
		t.Errorf("weight mean %v too far from zero", mean)
	}
}
