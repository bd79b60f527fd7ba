package sequential

import "compress/gzip"
import "encoding/json"
import "io"
import "os"

import "github.com/pkg/errors"

// WriteCompressedWeightsToFile writes model weights to a gzip json file.
func (n *Network) WriteCompressedWeightsToFile(name string) error {
	file, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "create weights file")
	}
	err = n.WriteCompressedWeights(file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteCompressedWeights writes model weights to a writer.
func (n *Network) WriteCompressedWeights(w io.Writer) error {
	zw := gzip.NewWriter(w)
	weights := make([][]float32, len(n.params))
	for i, p := range n.params {
		weights[i] = p.Value
	}
	if err := json.NewEncoder(zw).Encode(weights); err != nil {
		return errors.Wrap(err, "encode weights")
	}
	return zw.Close()
}

// ReadCompressedWeightsFromFile reads model weights from a gzip json file
// written for a network of the same architecture.
func (n *Network) ReadCompressedWeightsFromFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return errors.Wrap(err, "open weights file")
	}
	err = n.ReadCompressedWeights(file)
	file.Close()
	return err
}

// ReadCompressedWeights reads model weights from a reader.
func (n *Network) ReadCompressedWeights(r io.Reader) error {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return errors.Wrap(err, "open weights stream")
	}
	var weights [][]float32
	if err := json.NewDecoder(zr).Decode(&weights); err != nil {
		return errors.Wrap(err, "decode weights")
	}
	if len(weights) != len(n.params) {
		return errors.Errorf("weights hold %d tensors, network has %d", len(weights), len(n.params))
	}
	for i, p := range n.params {
		if len(weights[i]) != len(p.Value) {
			return errors.Errorf("tensor %d holds %d weights, network wants %d", i, len(weights[i]), len(p.Value))
		}
		copy(p.Value, weights[i])
	}
	return zr.Close()
}
