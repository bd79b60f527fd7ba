package trainer

import (
	"bufio"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/neurlang/hypersweep/datasets/mnist"
	"github.com/neurlang/hypersweep/hparams"
	"github.com/neurlang/hypersweep/layer/conv2d"
	"github.com/neurlang/hypersweep/layer/dense"
	"github.com/neurlang/hypersweep/layer/dropout"
	"github.com/neurlang/hypersweep/layer/maxpool2d"
	"github.com/neurlang/hypersweep/summary"
)

func TestBuildModelTwoConvBlocks(t *testing.T) {
	a := hparams.Assignment{ConvLayers: 2, ConvKernelSize: 3, DenseLayers: 1, Dropout: 0.2, Optimizer: "adam"}
	net, err := BuildModel(a, 1)
	if err != nil {
		t.Fatalf("BuildModel: %v", err)
	}

	// conv, pool, conv, pool, flatten, dropout, dense, output
	if net.Len() != 8 {
		t.Fatalf("model has %d layers, want 8", net.Len())
	}
	layers := net.Layers()

	first, ok := layers[0].(*conv2d.Conv2D)
	if !ok {
		t.Fatal("layer 0 is not a convolution")
	}
	if first.Filters() != 8 || first.KernelSize() != 3 {
		t.Errorf("first conv: %d filters kernel %d, want 8 and 3", first.Filters(), first.KernelSize())
	}
	if _, ok := layers[1].(*maxpool2d.MaxPool2D); !ok {
		t.Error("layer 1 is not a pool")
	}
	second, ok := layers[2].(*conv2d.Conv2D)
	if !ok {
		t.Fatal("layer 2 is not a convolution")
	}
	if second.Filters() != 16 {
		t.Errorf("second conv: %d filters, want 16 (doubled)", second.Filters())
	}
	if _, ok := layers[3].(*maxpool2d.MaxPool2D); !ok {
		t.Error("layer 3 is not a pool")
	}

	drop, ok := layers[5].(*dropout.Dropout)
	if !ok {
		t.Fatal("layer 5 is not dropout")
	}
	if drop.Rate() != 0.2 {
		t.Errorf("dropout rate %v, want 0.2", drop.Rate())
	}

	hidden, ok := layers[6].(*dense.Dense)
	if !ok {
		t.Fatal("layer 6 is not dense")
	}
	if hidden.Units() != 32 || !hidden.Activated() {
		t.Errorf("hidden dense: %d units relu=%v, want 32 and relu", hidden.Units(), hidden.Activated())
	}
	out, ok := layers[7].(*dense.Dense)
	if !ok {
		t.Fatal("layer 7 is not dense")
	}
	if out.Units() != mnist.NumClasses || out.Activated() {
		t.Errorf("output dense: %d units relu=%v, want 10 and linear", out.Units(), out.Activated())
	}
}

func TestBuildModelDenseWidthsDouble(t *testing.T) {
	a := hparams.Assignment{ConvLayers: 1, ConvKernelSize: 5, DenseLayers: 3, Dropout: 0.1, Optimizer: "adagrad"}
	net, err := BuildModel(a, 2)
	if err != nil {
		t.Fatalf("BuildModel: %v", err)
	}
	var widths []int
	for _, l := range net.Layers() {
		if d, ok := l.(*dense.Dense); ok {
			widths = append(widths, d.Units())
		}
	}
	want := []int{32, 64, 128, mnist.NumClasses}
	if len(widths) != len(want) {
		t.Fatalf("dense widths %v, want %v", widths, want)
	}
	for i := range want {
		if widths[i] != want[i] {
			t.Fatalf("dense widths %v, want %v", widths, want)
		}
	}
}

func TestBuildModelSameSeedSameWeights(t *testing.T) {
	a := hparams.Assignment{ConvLayers: 1, ConvKernelSize: 3, DenseLayers: 1, Dropout: 0.3, Optimizer: "adam"}
	x, _ := BuildModel(a, 42)
	y, _ := BuildModel(a, 42)
	for i, p := range x.Params() {
		for j, v := range p.Value {
			if y.Params()[i].Value[j] != v {
				t.Fatalf("weights diverge at %d/%d under the same seed", i, j)
			}
		}
	}
}

func TestBuildModelRejectsBadAssignment(t *testing.T) {
	a := hparams.Assignment{ConvLayers: 1, ConvKernelSize: 4, DenseLayers: 1, Dropout: 0.2, Optimizer: "adam"}
	if _, err := BuildModel(a, 1); err == nil {
		t.Error("even kernel accepted")
	}
	a = hparams.Assignment{ConvLayers: 1, ConvKernelSize: 3, DenseLayers: 1, Dropout: 1.5, Optimizer: "adam"}
	if _, err := BuildModel(a, 1); err == nil {
		t.Error("dropout rate 1.5 accepted")
	}
}

func syntheticData(train, test int) *mnist.Data {
	rng := rand.New(rand.NewSource(99))
	d := &mnist.Data{}
	for i := 0; i < train; i++ {
		img := make([]float32, mnist.ImgSize*mnist.ImgSize)
		for j := range img {
			img[j] = rng.Float32()
		}
		d.TrainImages = append(d.TrainImages, img)
		d.TrainLabels = append(d.TrainLabels, byte(i%mnist.NumClasses))
	}
	for i := 0; i < test; i++ {
		img := make([]float32, mnist.ImgSize*mnist.ImgSize)
		for j := range img {
			img[j] = rng.Float32()
		}
		d.TestImages = append(d.TestImages, img)
		d.TestLabels = append(d.TestLabels, byte(i%mnist.NumClasses))
	}
	return d
}

func TestRunWritesSessionArtifacts(t *testing.T) {
	logdir := t.TempDir()
	data := syntheticData(8, 4)
	a := hparams.Assignment{ConvLayers: 1, ConvKernelSize: 3, DenseLayers: 1, Dropout: 0.2, Optimizer: "adam"}
	opts := Options{NumEpochs: 1, SummaryFreq: 1, BatchSize: 4}

	if err := Run(data, logdir, "0", a.GroupID(), a, opts); err != nil {
		t.Fatalf("Run: %v", err)
	}

	dir := filepath.Join(logdir, "0")
	for _, name := range []string{summary.SessionFileName, summary.ScalarsFileName, WeightsFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	f, err := os.Open(filepath.Join(dir, summary.ScalarsFileName))
	if err != nil {
		t.Fatalf("open scalars: %v", err)
	}
	defer f.Close()
	tags := map[string]int{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var p summary.Point
		if err := json.Unmarshal(sc.Bytes(), &p); err != nil {
			t.Fatalf("scalar line not json: %v", err)
		}
		tags[p.Tag]++
	}
	// 2 train steps with freq 1, plus one validation pass
	if tags["batch_loss"] != 2 || tags["batch_accuracy"] != 2 {
		t.Errorf("batch summaries %v, want 2 each", tags)
	}
	if tags["epoch_loss"] != 1 || tags["epoch_accuracy"] != 1 {
		t.Errorf("epoch summaries %v, want 1 each", tags)
	}
}

func TestRunUnknownOptimizerFails(t *testing.T) {
	data := syntheticData(4, 2)
	a := hparams.Assignment{ConvLayers: 1, ConvKernelSize: 3, DenseLayers: 1, Dropout: 0.2, Optimizer: "sgd"}
	if err := Run(data, t.TempDir(), "0", a.GroupID(), a, Options{NumEpochs: 1, BatchSize: 4}); err == nil {
		t.Error("unknown optimizer accepted")
	}
}

func TestSessionSeedStable(t *testing.T) {
	if sessionSeed("3") != sessionSeed("3") {
		t.Error("session seed not deterministic")
	}
	if sessionSeed("3") == sessionSeed("4") {
		t.Error("distinct sessions share a seed")
	}
}
