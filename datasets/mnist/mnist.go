// Package mnist loads the MNIST handwritten digit dataset
package mnist

import "bytes"
import "compress/gzip"
import "crypto/sha256"
import "encoding/binary"
import "fmt"
import "io"
import "os"
import "strings"

import "github.com/pkg/errors"

// ImgSize is the side length of one digit image.
const ImgSize = 28

// NumClasses is the number of digit classes.
const NumClasses = 10

const trainSetImg = "train-images-idx3-ubyte.gz"
const trainSetVal = "train-labels-idx1-ubyte.gz"
const inferSetImg = "t10k-images-idx3-ubyte.gz"
const inferSetVal = "t10k-labels-idx1-ubyte.gz"

const trainDigImg = "440fcabf73cc546fa21475e81ea370265605f56be210a4024d2ca8f203523609"
const trainDigVal = "3552534a0a558bbed6aed32b30c495cca23d567ec52cac8be1a0730e8010255c"
const inferDigImg = "8d422c7b0a1c1c79245a5bcf07fe86e33eeafee792b84584aec276f5a2dbc4e6"
const inferDigVal = "f7ae60f92e00ec6debd23a6088c31dbd2371eca3ffa0defaefb259924204aec6"

const magicImages = 0x803
const magicLabels = 0x801

// Data holds the loaded dataset: pixels scaled to [0,1], one row of
// ImgSize*ImgSize floats per image.
type Data struct {
	TrainImages [][]float32
	TrainLabels []byte
	TestImages  [][]float32
	TestLabels  []byte
}

// DefaultDirs returns the directories searched for the four gz IDX files.
func DefaultDirs() []string {
	dirs := []string{"/tmp/mnist/"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home+"/.cache/mnist/")
	}
	return dirs
}

// Load reads, verifies and normalizes the dataset from the first search
// directory that holds all four files. With no arguments DefaultDirs is
// searched.
func Load(dirs ...string) (*Data, error) {
	if len(dirs) == 0 {
		dirs = DefaultDirs()
	}
	var failures []string
	for _, dir := range dirs {
		d, err := loadDir(dir)
		if err == nil {
			return d, nil
		}
		failures = append(failures, err.Error())
	}
	return nil, fmt.Errorf("no search directory holds the dataset: %s", strings.Join(failures, "; "))
}

func loadDir(dir string) (*Data, error) {
	var d Data
	var err error
	if d.TrainImages, err = readImages(dir+trainSetImg, trainDigImg); err != nil {
		return nil, err
	}
	if d.TrainLabels, err = readLabels(dir+trainSetVal, trainDigVal); err != nil {
		return nil, err
	}
	if d.TestImages, err = readImages(dir+inferSetImg, inferDigImg); err != nil {
		return nil, err
	}
	if d.TestLabels, err = readLabels(dir+inferSetVal, inferDigVal); err != nil {
		return nil, err
	}
	if len(d.TrainImages) != len(d.TrainLabels) || len(d.TestImages) != len(d.TestLabels) {
		return nil, fmt.Errorf("image and label counts disagree in '%s'", dir)
	}
	return &d, nil
}

func readFile(name, digest string) ([]byte, error) {
	raw, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrapf(err, "read '%s'", name)
	}
	if sum := fmt.Sprintf("%x", sha256.Sum256(raw)); sum != digest {
		return nil, fmt.Errorf("file hash for file '%s' is incorrect", name)
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrapf(err, "gunzip '%s'", name)
	}
	data, err := io.ReadAll(zr)
	zr.Close()
	if err != nil {
		return nil, errors.Wrapf(err, "gunzip '%s'", name)
	}
	return data, nil
}

func readImages(name, digest string) ([][]float32, error) {
	data, err := readFile(name, digest)
	if err != nil {
		return nil, err
	}
	images, err := parseImages(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse '%s'", name)
	}
	return images, nil
}

func readLabels(name, digest string) ([]byte, error) {
	data, err := readFile(name, digest)
	if err != nil {
		return nil, err
	}
	labels, err := parseLabels(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse '%s'", name)
	}
	return labels, nil
}

// parseImages decodes an IDX image file into normalized pixel rows.
func parseImages(data []byte) ([][]float32, error) {
	if len(data) < 16 {
		return nil, fmt.Errorf("image header truncated")
	}
	if magic := binary.BigEndian.Uint32(data); magic != magicImages {
		return nil, fmt.Errorf("bad image magic %#x", magic)
	}
	count := int(binary.BigEndian.Uint32(data[4:]))
	rows := int(binary.BigEndian.Uint32(data[8:]))
	cols := int(binary.BigEndian.Uint32(data[12:]))
	if rows != ImgSize || cols != ImgSize {
		return nil, fmt.Errorf("image size %dx%d, want %dx%d", rows, cols, ImgSize, ImgSize)
	}
	data = data[16:]
	if len(data) != count*ImgSize*ImgSize {
		return nil, fmt.Errorf("image payload holds %d bytes, want %d", len(data), count*ImgSize*ImgSize)
	}
	images := make([][]float32, count)
	for i := range images {
		px := make([]float32, ImgSize*ImgSize)
		off := i * ImgSize * ImgSize
		for j := range px {
			px[j] = float32(data[off+j]) / 255
		}
		images[i] = px
	}
	return images, nil
}

// parseLabels decodes an IDX label file.
func parseLabels(data []byte) ([]byte, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("label header truncated")
	}
	if magic := binary.BigEndian.Uint32(data); magic != magicLabels {
		return nil, fmt.Errorf("bad label magic %#x", magic)
	}
	count := int(binary.BigEndian.Uint32(data[4:]))
	data = data[8:]
	if len(data) != count {
		return nil, fmt.Errorf("label payload holds %d bytes, want %d", len(data), count)
	}
	for i, v := range data {
		if v >= NumClasses {
			return nil, fmt.Errorf("label %d out of range at %d", v, i)
		}
	}
	return data, nil
}
