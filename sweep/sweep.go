package sweep

import "math/rand"
import "os"
import "strconv"

import "github.com/labstack/gommon/log"
import "github.com/pkg/errors"

import "github.com/neurlang/hypersweep/datasets/mnist"
import "github.com/neurlang/hypersweep/hparams"
import "github.com/neurlang/hypersweep/summary"
import "github.com/neurlang/hypersweep/trainer"

// RunFunc runs one training session. The default runs trainer.Run; tests
// swap it out.
type RunFunc func(data *mnist.Data, logdir, sessionID, groupID string, a hparams.Assignment) error

// Driver performs the random search: it samples one assignment per group
// and repeats each group for a fixed number of sessions, strictly one
// session at a time.
type Driver struct {
	cfg    Config
	run    RunFunc
	logger *log.Logger
}

// New creates a driver for a validated config.
func New(cfg Config) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Driver{cfg: cfg, logger: log.New("sweep")}
	d.run = func(data *mnist.Data, logdir, sessionID, groupID string, a hparams.Assignment) error {
		return trainer.Run(data, logdir, sessionID, groupID, a, trainer.Options{
			NumEpochs:   cfg.NumEpochs,
			SummaryFreq: cfg.SummaryFreq,
		})
	}
	return d, nil
}

// RunAll performs the whole sweep into logdir: any output of a previous
// sweep is cleared first, then the experiment manifest is written, then
// NumSessionGroups groups of SessionsPerGroup sessions run with
// sequential string session ids. The first session failure aborts the
// sweep; there are no retries.
func (d *Driver) RunAll(data *mnist.Data, logdir string, verbose bool) error {
	if err := os.RemoveAll(logdir); err != nil {
		return errors.Wrap(err, "clear log directory")
	}
	if err := summary.NewExperiment(d.cfg.Space).Save(logdir); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(d.cfg.Seed))
	numSessions := d.cfg.NumSessionGroups * d.cfg.SessionsPerGroup
	sessionIndex := 0
	for group := 0; group < d.cfg.NumSessionGroups; group++ {
		a := d.cfg.Space.Sample(rng)
		groupID := a.GroupID()
		for repeat := 0; repeat < d.cfg.SessionsPerGroup; repeat++ {
			sessionID := strconv.Itoa(sessionIndex)
			sessionIndex++
			if verbose {
				d.logger.Infof("--- running training session %d/%d", sessionIndex, numSessions)
				d.logger.Infof("%s", a.Canonical())
				d.logger.Infof("--- repeat #: %d", repeat+1)
			}
			if err := d.run(data, logdir, sessionID, groupID, a); err != nil {
				return errors.Wrapf(err, "session %s (group %s)", sessionID, groupID)
			}
		}
	}
	return nil
}
