package learning

import "math"

import "github.com/neurlang/hypersweep/layer"

// SoftmaxCrossEntropy computes the mean sparse categorical cross-entropy
// of [N,C] logits against integer labels, together with the gradient with
// respect to the logits.
func SoftmaxCrossEntropy(logits *layer.Tensor, labels []byte) (float32, *layer.Tensor) {
	n, c := logits.Dim(0), logits.Dim(1)
	grad := layer.NewTensor(n, c)
	var loss float64
	inv := 1 / float32(n)
	for i := 0; i < n; i++ {
		row := logits.Data[i*c : (i+1)*c]
		grow := grad.Data[i*c : (i+1)*c]

		// softmax, shifted by the row max for stability
		max := row[0]
		for _, v := range row[1:] {
			if v > max {
				max = v
			}
		}
		var sum float64
		for j, v := range row {
			e := math.Exp(float64(v - max))
			grow[j] = float32(e)
			sum += e
		}
		label := int(labels[i])
		for j := range grow {
			p := grow[j] / float32(sum)
			if j == label {
				loss -= math.Log(math.Max(float64(p), 1e-30))
				p -= 1
			}
			grow[j] = p * inv
		}
	}
	return float32(loss / float64(n)), grad
}

// SoftmaxCrossEntropyLoss computes the mean loss alone, without
// allocating a gradient. Evaluation passes use it.
func SoftmaxCrossEntropyLoss(logits *layer.Tensor, labels []byte) float32 {
	n, c := logits.Dim(0), logits.Dim(1)
	var loss float64
	for i := 0; i < n; i++ {
		row := logits.Data[i*c : (i+1)*c]
		max := row[0]
		for _, v := range row[1:] {
			if v > max {
				max = v
			}
		}
		var sum float64
		for _, v := range row {
			sum += math.Exp(float64(v - max))
		}
		// -log softmax(label) = log(sum) - (z_label - max)
		loss += math.Log(sum) - float64(row[labels[i]]-max)
	}
	return float32(loss / float64(n))
}

// Accuracy reports the fraction of rows whose argmax equals the label.
func Accuracy(logits *layer.Tensor, labels []byte) float32 {
	n, c := logits.Dim(0), logits.Dim(1)
	var correct int
	for i := 0; i < n; i++ {
		row := logits.Data[i*c : (i+1)*c]
		best := 0
		for j, v := range row {
			if v > row[best] {
				best = j
			}
		}
		if best == int(labels[i]) {
			correct++
		}
	}
	return float32(correct) / float32(n)
}
