package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/fracsolve/internal/bratu"
)

const (
	metadataFile     = "metadata.json"
	solutionFile     = "solution.csv"
	coefficientsFile = "coefficients.csv"
)

// ErrNoCurve indicates a record without an evaluated solution curve.
var ErrNoCurve = errors.New("storage: record has no solution curve")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Dir returns the directory of a run.
func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Method    string             `json:"method"`
	Params    bratu.Params       `json:"params"`
	Status    RunStatus          `json:"status"`
	ElapsedMS float64            `json:"elapsed_ms"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// RunStatus is the stored form of bratu.Status. Non-finite residuals and
// condition estimates are written as null.
type RunStatus struct {
	Converged  bool     `json:"converged"`
	Outcome    string   `json:"outcome"`
	Iterations int      `json:"iterations"`
	Residual   *float64 `json:"residual"`
	Condition  *float64 `json:"condition"`
	Message    string   `json:"message"`
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Record is one solve prepared for persistence: the solution together with
// the curve it was sampled on and any error metrics.
type Record struct {
	Method   string
	Solution *bratu.Solution
	X, U     []float64
	Metrics  map[string]float64
}

func (r Record) metadata(id string, now time.Time) RunMetadata {
	sol := r.Solution
	var metrics map[string]float64
	for name, v := range r.Metrics {
		if finite(v) == nil {
			continue
		}
		if metrics == nil {
			metrics = make(map[string]float64, len(r.Metrics))
		}
		metrics[name] = v
	}
	return RunMetadata{
		ID:        id,
		Timestamp: now,
		Method:    r.Method,
		Params:    sol.Params,
		Status: RunStatus{
			Converged:  sol.Status.Converged,
			Outcome:    sol.Status.Code.String(),
			Iterations: sol.Status.Iterations,
			Residual:   finite(sol.Status.Residual),
			Condition:  finite(sol.Status.Condition),
			Message:    sol.Status.Message,
		},
		ElapsedMS: float64(sol.Elapsed.Microseconds()) / 1000,
		Metrics:   metrics,
	}
}

// Save writes solution.csv, coefficients.csv and finally metadata.json
// under a new run directory and returns its ID. On failure the directory is
// removed, so List never sees a partial run.
func (s *Store) Save(rec Record) (string, error) {
	if len(rec.X) == 0 || len(rec.X) != len(rec.U) {
		return "", fmt.Errorf("%w: %d x values, %d u values", ErrNoCurve, len(rec.X), len(rec.U))
	}

	now := time.Now()
	runID := fmt.Sprintf("bratu_%d", now.UnixNano())
	runDir := s.Dir(runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := rec.write(runDir, rec.metadata(runID, now)); err != nil {
		_ = os.RemoveAll(runDir)
		return "", fmt.Errorf("saving run %s: %w", runID, err)
	}
	return runID, nil
}

func (r Record) write(runDir string, meta RunMetadata) error {
	if err := writeColumns(filepath.Join(runDir, solutionFile), []string{"x", "u"}, r.X, r.U); err != nil {
		return err
	}
	sol := r.Solution
	if err := writeColumns(filepath.Join(runDir, coefficientsFile), []string{"x", "c"},
		sol.Grid.Points(), sol.Coefficients); err != nil {
		return err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return err
	}
	if err := ExportJSON(metaFile, meta); err != nil {
		metaFile.Close()
		return err
	}
	return metaFile.Close()
}

// ExportJSON writes indented metadata to w.
func ExportJSON(w io.Writer, meta RunMetadata) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// List returns all readable runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSolution returns the sampled curve of a run.
func (s *Store) LoadSolution(runID string) (x, u []float64, err error) {
	return readColumns(filepath.Join(s.Dir(runID), solutionFile))
}

// LoadCoefficients returns the collocation points and kernel coefficients of a run.
func (s *Store) LoadCoefficients(runID string) (grid, coef []float64, err error) {
	return readColumns(filepath.Join(s.Dir(runID), coefficientsFile))
}

// ExportCSV copies the solution curve of a run to w.
func (s *Store) ExportCSV(runID string, w io.Writer) error {
	f, err := os.Open(filepath.Join(s.Dir(runID), solutionFile))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

func writeColumns(path string, header []string, a, b []float64) error {
	if len(a) != len(b) {
		return fmt.Errorf("%s: %d %s values, %d %s values", filepath.Base(path), len(a), header[0], len(b), header[1])
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		file.Close()
		return err
	}
	for i := range a {
		row := []string{
			strconv.FormatFloat(a[i], 'g', -1, 64),
			strconv.FormatFloat(b[i], 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			file.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func readColumns(path string) ([]float64, []float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 2
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, []float64{}, nil
	}

	a := make([]float64, 0, len(records)-1)
	b := make([]float64, 0, len(records)-1)
	for line, record := range records[1:] {
		x, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: %w", filepath.Base(path), line+2, err)
		}
		y, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: %w", filepath.Base(path), line+2, err)
		}
		a = append(a, x)
		b = append(b, y)
	}
	return a, b, nil
}
