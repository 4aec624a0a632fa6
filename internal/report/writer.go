package report

import (
	"encoding/json"
	"path/filepath"
	"time"

	agenterrors "github.com/felixgeelhaar/pmagent/internal/errors"
	"github.com/felixgeelhaar/pmagent/internal/fsutil"
	"github.com/felixgeelhaar/pmagent/internal/log"
	"github.com/felixgeelhaar/pmagent/internal/metrics"
	"github.com/felixgeelhaar/pmagent/internal/sprint"
)

// Report kinds, used as file name prefixes and metric labels
const (
	KindSprint   = "sprint"
	KindStandup  = "standup"
	KindMetrics  = "metrics"
	KindAnalysis = "analysis"
	KindParity   = "parity"
)

// Writer saves reports under a root directory, creating subdirectories on
// demand. Every file is written atomically.
type Writer struct {
	root    string
	logger  *log.Logger
	metrics *metrics.Metrics
}

// NewWriter creates a Writer rooted at dir. logger and m may be nil.
func NewWriter(dir string, logger *log.Logger, m *metrics.Metrics) *Writer {
	if logger == nil {
		logger = log.Nop()
	}
	return &Writer{root: dir, logger: logger, metrics: m}
}

// Root returns the reports directory; sprint plans live directly in it
func (w *Writer) Root() string {
	return w.root
}

// MetricsTextfilePath returns where the Prometheus textfile export goes
func (w *Writer) MetricsTextfilePath() string {
	return filepath.Join(w.root, "metrics", "pmagent.prom")
}

// WriteSprint saves plan as sprint_<n>.json
func (w *Writer) WriteSprint(plan *sprint.Plan) (string, error) {
	path := filepath.Join(w.root, sprint.FileName(plan.SprintNumber))
	return path, w.writeJSON(KindSprint, path, plan)
}

// WriteStandup saves the rendered standup as standups/standup_<YYYYMMDD>.md
func (w *Writer) WriteStandup(s *Standup) (string, error) {
	path := filepath.Join(w.root, "standups", "standup_"+s.Date.Format("20060102")+".md")
	return path, w.write(KindStandup, path, []byte(s.Render()))
}

// WriteMetrics saves snap as metrics/metrics_<YYYYMMDD>.json
func (w *Writer) WriteMetrics(snap *Snapshot, now time.Time) (string, error) {
	path := filepath.Join(w.root, "metrics", "metrics_"+now.Format("20060102")+".json")
	return path, w.writeJSON(KindMetrics, path, snap)
}

// WriteAnalysis saves a codebase analysis as analysis_<YYYYMMDD_HHMMSS>.json
func (w *Writer) WriteAnalysis(v any, now time.Time) (string, error) {
	path := filepath.Join(w.root, KindAnalysis+"_"+now.Format("20060102_150405")+".json")
	return path, w.writeJSON(KindAnalysis, path, v)
}

// WriteParity saves a parity check as parity_<YYYYMMDD_HHMMSS>.json
func (w *Writer) WriteParity(v any, now time.Time) (string, error) {
	path := filepath.Join(w.root, KindParity+"_"+now.Format("20060102_150405")+".json")
	return path, w.writeJSON(KindParity, path, v)
}

func (w *Writer) writeJSON(kind, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return agenterrors.NewFileWriteError(path, err)
	}
	return w.write(kind, path, append(data, '\n'))
}

func (w *Writer) write(kind, path string, data []byte) error {
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		w.metrics.RecordError(string(agenterrors.ErrCodeFileWriteFailed))
		return agenterrors.NewFileWriteError(path, err)
	}
	w.metrics.RecordReport(kind)
	w.logger.Info("report saved", "kind", kind, "path", path)
	return nil
}
