package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/magfield/internal/config"
	"github.com/san-kum/magfield/internal/fieldline"
	"github.com/san-kum/magfield/internal/sim"
)

const (
	KindTrace    = "trace"
	KindSimulate = "simulate"

	metadataFile   = "metadata.json"
	linesFile      = "lines.csv"
	trajectoryFile = "trajectory.csv"
)

var ErrMalformed = errors.New("storage: malformed run data")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	Preset    string             `json:"preset"`
	Timestamp time.Time          `json:"timestamp"`
	Bounds    [3]float64         `json:"bounds"`
	StepSize  float64            `json:"step_size"`
	MaxSteps  int                `json:"max_steps"`
	Adaptive  bool               `json:"adaptive"`
	Dt        float64            `json:"dt,omitempty"`
	Steps     int                `json:"steps,omitempty"`
	Speed     float64            `json:"speed,omitempty"`
	Reverse   bool               `json:"reverse,omitempty"`
	Dipoles   int                `json:"dipoles"`
	Bars      int                `json:"bars"`
	Lines     int                `json:"lines,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
}

func newMetadata(kind, preset string, cfg *config.Config) RunMetadata {
	now := time.Now()
	return RunMetadata{
		ID:        fmt.Sprintf("%s_%s_%d", kind, preset, now.UnixNano()),
		Kind:      kind,
		Preset:    preset,
		Timestamp: now,
		Bounds:    [3]float64{cfg.Bounds.Width, cfg.Bounds.Height, cfg.Bounds.Depth},
		StepSize:  cfg.Trace.StepSize,
		MaxSteps:  cfg.Trace.MaxSteps,
		Adaptive:  cfg.Trace.Adaptive,
		Dipoles:   len(cfg.Scene.Dipoles),
		Bars:      len(cfg.Scene.Bars),
		Metrics:   map[string]float64{},
	}
}

// SaveTrace writes a traced field line set as a new run.
func (s *Store) SaveTrace(preset string, cfg *config.Config, lines []fieldline.Line, metrics map[string]float64) (string, error) {
	meta := newMetadata(KindTrace, preset, cfg)
	meta.Lines = len(lines)
	for k, v := range metrics {
		meta.Metrics[k] = v
	}

	runDir, err := s.createRun(meta)
	if err != nil {
		return "", err
	}

	err = writeCSV(filepath.Join(runDir, linesFile), func(w *csv.Writer) error {
		if err := w.Write([]string{"line", "sample", "x", "y", "z", "bx", "by", "bz"}); err != nil {
			return err
		}
		for i, l := range lines {
			for j, smp := range l.Samples {
				row := []string{strconv.Itoa(i), strconv.Itoa(j)}
				row = appendVec(row, smp.Position)
				row = appendVec(row, smp.Field)
				if err := w.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return meta.ID, nil
}

// SaveRun writes a headless dynamics run.
func (s *Store) SaveRun(preset string, cfg *config.Config, result *sim.Result) (string, error) {
	meta := newMetadata(KindSimulate, preset, cfg)
	meta.Dt = cfg.Dynamics.Dt
	meta.Steps = result.StepsTaken
	meta.Speed = cfg.Dynamics.Speed
	meta.Reverse = cfg.Dynamics.Reverse
	for k, v := range result.Metrics {
		meta.Metrics[k] = v
	}
	meta.Metrics["energy_drift_total"] = result.EnergyDrift

	runDir, err := s.createRun(meta)
	if err != nil {
		return "", err
	}

	err = writeCSV(filepath.Join(runDir, trajectoryFile), func(w *csv.Writer) error {
		if len(result.Positions) == 0 {
			return nil
		}
		header := []string{"time", "energy"}
		for i := range result.Positions[0] {
			header = append(header, fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i), fmt.Sprintf("z%d", i))
		}
		if err := w.Write(header); err != nil {
			return err
		}
		for k, positions := range result.Positions {
			row := []string{formatFloat(result.Times[k]), formatFloat(result.Energy[k])}
			for _, p := range positions {
				row = appendVec(row, p)
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return meta.ID, nil
}

func (s *Store) createRun(meta RunMetadata) (string, error) {
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}
	return runDir, nil
}

// List returns every readable run, oldest first.
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadLines reads back the field lines of a trace run. Seeds are not stored,
// so only Samples is populated.
func (s *Store) LoadLines(runID string) ([]fieldline.Line, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, linesFile))
	if err != nil {
		return nil, err
	}

	var lines []fieldline.Line
	for n, record := range records {
		if len(record) != 8 {
			return nil, fmt.Errorf("%s line %d: %w", linesFile, n+2, ErrMalformed)
		}
		idx, err := strconv.Atoi(record[0])
		if err != nil || idx < 0 || idx > len(lines) {
			return nil, fmt.Errorf("%s line %d: %w", linesFile, n+2, ErrMalformed)
		}
		vals, err := parseFloats(record[2:])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", linesFile, n+2, err)
		}
		if idx == len(lines) {
			lines = append(lines, fieldline.Line{})
		}
		lines[idx].Samples = append(lines[idx].Samples, fieldline.Sample{
			Position: mgl64.Vec3{vals[0], vals[1], vals[2]},
			Field:    mgl64.Vec3{vals[3], vals[4], vals[5]},
		})
	}
	return lines, nil
}

// LoadTrajectory reads back a dynamics run: the sample times and, per
// sample, every dipole position.
func (s *Store) LoadTrajectory(runID string) ([]float64, [][]mgl64.Vec3, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, nil, err
	}

	times := make([]float64, 0, len(records))
	positions := make([][]mgl64.Vec3, 0, len(records))
	for n, record := range records {
		if len(record) < 2 || (len(record)-2)%3 != 0 {
			return nil, nil, fmt.Errorf("%s line %d: %w", trajectoryFile, n+2, ErrMalformed)
		}
		vals, err := parseFloats(record)
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: %w", trajectoryFile, n+2, err)
		}
		times = append(times, vals[0])
		row := make([]mgl64.Vec3, 0, (len(vals)-2)/3)
		for i := 2; i < len(vals); i += 3 {
			row = append(row, mgl64.Vec3{vals[i], vals[i+1], vals[i+2]})
		}
		positions = append(positions, row)
	}
	return times, positions, nil
}

func writeCSV(path string, fill func(w *csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := fill(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// readCSV returns every record after the header.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	return r.ReadAll()
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", f, ErrMalformed)
		}
		out[i] = v
	}
	return out, nil
}

func appendVec(row []string, v mgl64.Vec3) []string {
	return append(row, formatFloat(v.X()), formatFloat(v.Y()), formatFloat(v.Z()))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
