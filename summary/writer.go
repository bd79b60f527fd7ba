package summary

import "encoding/json"
import "os"
import "path/filepath"
import "time"

import "github.com/pkg/errors"

import "github.com/neurlang/hypersweep/hparams"

// SessionFileName holds the session metadata inside the session directory.
const SessionFileName = "session.json"

// ScalarsFileName holds the scalar points, one json object per line.
const ScalarsFileName = "scalars.jsonl"

// Session is the metadata written once per session.
type Session struct {
	SessionID string             `json:"session_id"`
	GroupID   string             `json:"group_id"`
	HParams   hparams.Assignment `json:"hparams"`
	Started   time.Time          `json:"started"`
}

// Point is one logged scalar value.
type Point struct {
	Tag      string  `json:"tag"`
	Step     int     `json:"step"`
	Value    float64 `json:"value"`
	WallTime int64   `json:"wall_time"`
}

// Writer streams scalar points for one session into
// <logdir>/<session id>/.
type Writer struct {
	dir string
	f   *os.File
	enc *json.Encoder
}

// NewWriter creates the session directory, writes the session metadata
// tagged with the session and group ids, and opens the scalar log.
func NewWriter(logdir, sessionID, groupID string, a hparams.Assignment) (*Writer, error) {
	dir := filepath.Join(logdir, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create session directory")
	}
	meta, err := json.MarshalIndent(Session{
		SessionID: sessionID,
		GroupID:   groupID,
		HParams:   a,
		Started:   time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode session metadata")
	}
	if err := os.WriteFile(filepath.Join(dir, SessionFileName), append(meta, '\n'), 0o644); err != nil {
		return nil, errors.Wrap(err, "write session metadata")
	}
	f, err := os.Create(filepath.Join(dir, ScalarsFileName))
	if err != nil {
		return nil, errors.Wrap(err, "create scalar log")
	}
	return &Writer{dir: dir, f: f, enc: json.NewEncoder(f)}, nil
}

// Dir returns the session directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Scalar appends one point to the scalar log.
func (w *Writer) Scalar(tag string, step int, value float64) error {
	err := w.enc.Encode(Point{
		Tag:      tag,
		Step:     step,
		Value:    value,
		WallTime: time.Now().Unix(),
	})
	return errors.Wrapf(err, "log scalar %s", tag)
}

// Close finalizes the scalar log. The writer is unusable afterwards.
func (w *Writer) Close() error {
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return errors.Wrap(err, "close scalar log")
}
