// Package sweep drives the random hyperparameter search
package sweep

import "fmt"
import "os"

import "github.com/pkg/errors"
import "gopkg.in/yaml.v3"

import "github.com/neurlang/hypersweep/hparams"

// Config are the explicit sweep settings. There are no package-level
// defaults to mutate; construct one with DefaultConfig or FromYAML.
type Config struct {
	NumSessionGroups int           `yaml:"num_session_groups"`
	SessionsPerGroup int           `yaml:"sessions_per_group"`
	NumEpochs        int           `yaml:"num_epochs"`
	SummaryFreq      int           `yaml:"summary_freq"`
	Seed             int64         `yaml:"seed"`
	Space            hparams.Space `yaml:"hparams"`
}

// DefaultConfig returns the stock sweep: 30 groups of 2 sessions, 5
// epochs, summaries every 600 steps, rng seeded with 0.
func DefaultConfig() Config {
	return Config{
		NumSessionGroups: 30,
		SessionsPerGroup: 2,
		NumEpochs:        5,
		SummaryFreq:      600,
		Seed:             0,
		Space:            hparams.DefaultSpace(),
	}
}

// FromYAML loads a config file over DefaultConfig, so the file only needs
// the settings it changes.
func FromYAML(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read sweep config")
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parse sweep config")
	}
	return cfg, cfg.Validate()
}

// Validate rejects configurations the driver cannot run.
func (c Config) Validate() error {
	if c.NumSessionGroups <= 0 {
		return fmt.Errorf("num_session_groups %d must be positive", c.NumSessionGroups)
	}
	if c.SessionsPerGroup <= 0 {
		return fmt.Errorf("sessions_per_group %d must be positive", c.SessionsPerGroup)
	}
	if c.NumEpochs <= 0 {
		return fmt.Errorf("num_epochs %d must be positive", c.NumEpochs)
	}
	if c.SummaryFreq <= 0 {
		return fmt.Errorf("summary_freq %d must be positive", c.SummaryFreq)
	}
	if c.Space.ConvLayers.Min > c.Space.ConvLayers.Max || c.Space.ConvLayers.Min <= 0 {
		return fmt.Errorf("conv_layers interval [%d, %d] is invalid", c.Space.ConvLayers.Min, c.Space.ConvLayers.Max)
	}
	if c.Space.DenseLayers.Min > c.Space.DenseLayers.Max || c.Space.DenseLayers.Min <= 0 {
		return fmt.Errorf("dense_layers interval [%d, %d] is invalid", c.Space.DenseLayers.Min, c.Space.DenseLayers.Max)
	}
	if c.Space.Dropout.Min > c.Space.Dropout.Max || c.Space.Dropout.Min < 0 || c.Space.Dropout.Max >= 1 {
		return fmt.Errorf("dropout interval [%v, %v] is invalid", c.Space.Dropout.Min, c.Space.Dropout.Max)
	}
	if len(c.Space.ConvKernelSize) == 0 {
		return fmt.Errorf("conv_kernel_size set is empty")
	}
	for _, k := range c.Space.ConvKernelSize {
		if k <= 0 || k%2 == 0 {
			return fmt.Errorf("conv_kernel_size %d must be odd and positive", k)
		}
	}
	if len(c.Space.Optimizer) == 0 {
		return fmt.Errorf("optimizer set is empty")
	}
	return nil
}
