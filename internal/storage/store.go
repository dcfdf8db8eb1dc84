// Package storage keeps calibrated runs on disk: one directory per run with
// the metadata as JSON, the configuration as YAML and the response as CSV.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/dampcal/internal/config"
	"github.com/san-kum/dampcal/internal/damping"
	"github.com/san-kum/dampcal/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
	responseFile = "response.csv"
)

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
	ID           string               `json:"id"`
	Model        string               `json:"model"`
	Timestamp    time.Time            `json:"timestamp"`
	Dt           float64              `json:"dt"`
	Duration     float64              `json:"duration"`
	Scheme       string               `json:"scheme"`
	Rotational   string               `json:"rotational_scheme,omitempty"`
	Steps        int                  `json:"steps"`
	Probes       []int                `json:"probes"`
	Coefficients damping.Coefficients `json:"coefficients"`
	Metrics      map[string]float64   `json:"metrics"`
}

// Run is everything Save persists.
type Run struct {
	Config       *config.Config
	Coefficients damping.Coefficients
	Result       *dynamo.Result
}

func (s *Store) Save(run Run) (string, error) {
	cfg, result := run.Config, run.Result
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", cfg.Model, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:           runID,
		Model:        cfg.Model,
		Timestamp:    now,
		Dt:           cfg.Dt,
		Duration:     cfg.Duration,
		Scheme:       run.Coefficients.Scheme.String(),
		Rotational:   cfg.Damping.RotationalSchemeType,
		Steps:        result.StepsTaken,
		Probes:       result.Probes,
		Coefficients: run.Coefficients,
		Metrics:      result.Metrics,
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

	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}

	if err := writeResponse(filepath.Join(runDir, responseFile), result); err != nil {
		return "", err
	}
	return runID, nil
}

// writeResponse writes one row per sample: time, then the displacement and
// the velocity of every probe.
func writeResponse(path string, result *dynamo.Result) error {
	csvFile, err := os.Create(path)
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)

	header := []string{"time"}
	for _, p := range result.Probes {
		header = append(header, fmt.Sprintf("u%d", p))
	}
	for _, p := range result.Probes {
		header = append(header, fmt.Sprintf("v%d", p))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range result.Times {
		row := []string{strconv.FormatFloat(result.Times[i], 'g', -1, 64)}
		for _, val := range result.Displacements[i] {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		for _, val := range result.Velocities[i] {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns the stored runs, newest first.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
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

// LoadConfig returns the configuration the run was made with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

// LoadResponse reads the recorded response back. Metrics and step count
// come from the metadata.
func (s *Store) LoadResponse(runID string) (*dynamo.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, responseFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", runID, err)
	}

	result := &dynamo.Result{
		Probes:     meta.Probes,
		Metrics:    meta.Metrics,
		StepsTaken: meta.Steps,
	}
	if len(records) == 0 {
		return result, nil
	}

	n, err := probeCount(records[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", runID, err)
	}

	result.Times = make([]float64, 0, len(records)-1)
	result.Displacements = make([]dynamo.State, 0, len(records)-1)
	result.Velocities = make([]dynamo.State, 0, len(records)-1)

	for line, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("read %s line %d: %w", runID, line+2, err)
			}
			vals[j] = v
		}
		result.Times = append(result.Times, vals[0])
		result.Displacements = append(result.Displacements, dynamo.State(vals[1:1+n]))
		result.Velocities = append(result.Velocities, dynamo.State(vals[1+n:]))
	}

	return result, nil
}

func probeCount(header []string) (int, error) {
	if len(header) == 0 || header[0] != "time" || (len(header)-1)%2 != 0 {
		return 0, fmt.Errorf("unexpected response header %v", header)
	}
	n := (len(header) - 1) / 2
	for _, h := range header[1 : 1+n] {
		if !strings.HasPrefix(h, "u") {
			return 0, fmt.Errorf("unexpected response column %q", h)
		}
	}
	return n, nil
}
