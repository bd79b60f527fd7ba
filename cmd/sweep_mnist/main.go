package main

import "flag"
import "os"
import "path/filepath"

import "github.com/labstack/gommon/log"
import _ "go.uber.org/automaxprocs"

import "github.com/neurlang/hypersweep/datasets/mnist"
import "github.com/neurlang/hypersweep/sweep"

func main() {
	numGroups := flag.Int("num_session_groups", 30, "the approximate number of session groups to create")
	logdir := flag.String("logdir", filepath.Join(os.TempDir(), "hypersweep_mnist"), "the directory to write the summary information to")
	summaryFreq := flag.Int("summary_freq", 600, "summaries will be written every n training steps")
	numEpochs := flag.Int("num_epochs", 5, "number of epochs per session")
	configPath := flag.String("config", "", "optional sweep config yaml, overridden by explicit flags")
	quiet := flag.Bool("quiet", false, "suppress the per-session progress lines")
	flag.Parse()

	logger := log.New("sweep_mnist")

	cfg := sweep.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = sweep.FromYAML(*configPath); err != nil {
			logger.Fatalf("sweep config: %v", err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "num_session_groups":
			cfg.NumSessionGroups = *numGroups
		case "summary_freq":
			cfg.SummaryFreq = *summaryFreq
		case "num_epochs":
			cfg.NumEpochs = *numEpochs
		}
	})

	driver, err := sweep.New(cfg)
	if err != nil {
		logger.Fatalf("sweep config: %v", err)
	}

	data, err := mnist.Load()
	if err != nil {
		logger.Fatalf("load mnist: %v", err)
	}

	logger.Infof("saving output to %s", *logdir)
	if err := driver.RunAll(data, *logdir, !*quiet); err != nil {
		logger.Fatalf("sweep: %v", err)
	}
	logger.Infof("done, output saved to %s", *logdir)
}
