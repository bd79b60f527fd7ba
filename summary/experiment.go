// Package summary writes the experiment manifest and per-session scalar logs
package summary

import "encoding/json"
import "os"
import "path/filepath"
import "time"

import "github.com/google/uuid"
import "github.com/pkg/errors"

import "github.com/neurlang/hypersweep/hparams"

// ManifestName is the manifest file written at the top of the log
// directory.
const ManifestName = "experiment.json"

// Metric declares one logged scalar series.
type Metric struct {
	Tag     string `json:"tag"`
	Dataset string `json:"dataset"` // train or validation
}

// Experiment is the sweep-level manifest: what was swept and what was
// measured.
type Experiment struct {
	ID      string                `json:"id"`
	Created time.Time             `json:"created"`
	HParams []hparams.Declaration `json:"hparams"`
	Metrics []Metric              `json:"metrics"`
}

// NewExperiment builds a manifest for the space with a fresh experiment
// id and the metric set every session logs.
func NewExperiment(space hparams.Space) Experiment {
	return Experiment{
		ID:      uuid.NewString(),
		Created: time.Now().UTC(),
		HParams: space.Declarations(),
		Metrics: []Metric{
			{Tag: "epoch_accuracy", Dataset: "validation"},
			{Tag: "epoch_loss", Dataset: "validation"},
			{Tag: "batch_accuracy", Dataset: "train"},
			{Tag: "batch_loss", Dataset: "train"},
		},
	}
}

// Save writes the manifest into logdir, creating the directory first.
func (e Experiment) Save(logdir string) error {
	if err := os.MkdirAll(logdir, 0o755); err != nil {
		return errors.Wrap(err, "create log directory")
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode experiment manifest")
	}
	err = os.WriteFile(filepath.Join(logdir, ManifestName), append(data, '\n'), 0o644)
	return errors.Wrap(err, "write experiment manifest")
}
