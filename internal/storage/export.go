package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/dampcal/internal/damping"
	"github.com/san-kum/dampcal/internal/dynamo"
)

type ExportData struct {
	Model         string               `json:"model"`
	Scheme        string               `json:"scheme"`
	Dt            float64              `json:"dt"`
	Duration      float64              `json:"duration"`
	Steps         int                  `json:"steps"`
	Coefficients  damping.Coefficients `json:"coefficients"`
	Probes        []int                `json:"probes"`
	Times         []float64            `json:"times"`
	Displacements [][]float64          `json:"displacements"`
	Velocities    [][]float64          `json:"velocities"`
	Metrics       map[string]float64   `json:"metrics"`
}

func NewExportData(meta *RunMetadata, result *dynamo.Result) ExportData {
	data := ExportData{
		Model:         meta.Model,
		Scheme:        meta.Scheme,
		Dt:            meta.Dt,
		Duration:      meta.Duration,
		Steps:         result.StepsTaken,
		Coefficients:  meta.Coefficients,
		Probes:        result.Probes,
		Times:         result.Times,
		Displacements: make([][]float64, len(result.Displacements)),
		Velocities:    make([][]float64, len(result.Velocities)),
		Metrics:       result.Metrics,
	}
	for i, s := range result.Displacements {
		data.Displacements[i] = s
	}
	for i, s := range result.Velocities {
		data.Velocities[i] = s
	}
	return data
}

func ExportJSON(path string, meta *RunMetadata, result *dynamo.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, meta, result)
}

// WriteJSON is ExportJSON to an arbitrary writer, stdout for instance.
func WriteJSON(w io.Writer, meta *RunMetadata, result *dynamo.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, result))
}
