package trainer

import "path/filepath"

import "github.com/neurlang/hypersweep/datasets/mnist"
import "github.com/neurlang/hypersweep/hparams"
import "github.com/neurlang/hypersweep/layer"
import "github.com/neurlang/hypersweep/learning"
import "github.com/neurlang/hypersweep/net/sequential"
import "github.com/neurlang/hypersweep/summary"

// WeightsFileName is the final model snapshot inside the session
// directory.
const WeightsFileName = "model.json.gz"

// Options are the fixed (not swept) training knobs of one session.
type Options struct {
	NumEpochs   int // training epochs, default 5
	SummaryFreq int // steps between train batch summaries, default 600
	BatchSize   int // default 32
}

func (o Options) withDefaults() Options {
	if o.NumEpochs <= 0 {
		o.NumEpochs = 5
	}
	if o.SummaryFreq <= 0 {
		o.SummaryFreq = 600
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 32
	}
	return o
}

// Run trains one session: it builds the model from the assignment, fits
// it for the configured number of epochs without shuffling, streams batch
// and validation metrics to the session log, and snapshots the final
// weights. Success is a nil return.
func Run(data *mnist.Data, logdir, sessionID, groupID string, a hparams.Assignment, opts Options) error {
	opts = opts.withDefaults()

	net, err := BuildModel(a, sessionSeed(sessionID))
	if err != nil {
		return err
	}
	opt, err := learning.ByName(a.Optimizer)
	if err != nil {
		return err
	}
	w, err := summary.NewWriter(logdir, sessionID, groupID, a)
	if err != nil {
		return err
	}

	step := 0
	for epoch := 0; epoch < opts.NumEpochs; epoch++ {
		for start := 0; start < len(data.TrainImages); start += opts.BatchSize {
			end := start + opts.BatchSize
			if end > len(data.TrainImages) {
				end = len(data.TrainImages)
			}
			x := batchTensor(data.TrainImages[start:end])
			labels := data.TrainLabels[start:end]

			logits := net.Forward(x, true)
			loss, grad := learning.SoftmaxCrossEntropy(logits, labels)
			net.Backward(grad)
			opt.Step(net.Params())

			step++
			if step%opts.SummaryFreq == 0 {
				if err := w.Scalar("batch_loss", step, float64(loss)); err != nil {
					w.Close()
					return err
				}
				acc := learning.Accuracy(logits, labels)
				if err := w.Scalar("batch_accuracy", step, float64(acc)); err != nil {
					w.Close()
					return err
				}
			}
		}

		valLoss, valAcc := evaluate(net, data.TestImages, data.TestLabels, opts.BatchSize)
		if err := w.Scalar("epoch_loss", step, valLoss); err != nil {
			w.Close()
			return err
		}
		if err := w.Scalar("epoch_accuracy", step, valAcc); err != nil {
			w.Close()
			return err
		}
	}

	if err := net.WriteCompressedWeightsToFile(filepath.Join(w.Dir(), WeightsFileName)); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// evaluate runs the validation set through the model in eval mode and
// returns mean loss and accuracy.
func evaluate(net *sequential.Network, images [][]float32, labels []byte, batchSize int) (float64, float64) {
	var lossSum, accSum float64
	var count int
	for start := 0; start < len(images); start += batchSize {
		end := start + batchSize
		if end > len(images) {
			end = len(images)
		}
		logits := net.Forward(batchTensor(images[start:end]), false)
		loss := learning.SoftmaxCrossEntropyLoss(logits, labels[start:end])
		acc := learning.Accuracy(logits, labels[start:end])
		n := end - start
		lossSum += float64(loss) * float64(n)
		accSum += float64(acc) * float64(n)
		count += n
	}
	if count == 0 {
		return 0, 0
	}
	return lossSum / float64(count), accSum / float64(count)
}

// batchTensor packs image rows into an NHWC batch with one grayscale
// channel.
func batchTensor(images [][]float32) *layer.Tensor {
	x := layer.NewTensor(len(images), mnist.ImgSize, mnist.ImgSize, 1)
	for i, img := range images {
		copy(x.Data[i*len(img):], img)
	}
	return x
}
