// Package store writes trace and simulation results as JSON documents.
package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/magfield/internal/fieldline"
	"github.com/san-kum/magfield/internal/sim"
)

type Point [3]float64

type LineData struct {
	Seed      Point   `json:"seed"`
	Direction string  `json:"direction"`
	Positions []Point `json:"positions"`
	Fields    []Point `json:"fields"`
}

type TraceData struct {
	Preset   string     `json:"preset"`
	Adaptive bool       `json:"adaptive"`
	Lines    []LineData `json:"lines"`
}

type RunData struct {
	Preset      string             `json:"preset"`
	Dt          float64            `json:"dt"`
	Steps       int                `json:"steps"`
	Times       []float64          `json:"times"`
	Positions   [][]Point          `json:"positions"`
	Energy      []float64          `json:"energy"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
}

func NewTraceData(preset string, adaptive bool, lines []fieldline.Line) TraceData {
	data := TraceData{Preset: preset, Adaptive: adaptive, Lines: make([]LineData, len(lines))}
	for i, l := range lines {
		ld := LineData{
			Seed:      Point(l.Seed.Position),
			Direction: l.Seed.Direction.String(),
			Positions: make([]Point, len(l.Samples)),
			Fields:    make([]Point, len(l.Samples)),
		}
		for j, s := range l.Samples {
			ld.Positions[j] = Point(s.Position)
			ld.Fields[j] = Point(s.Field)
		}
		data.Lines[i] = ld
	}
	return data
}

func NewRunData(preset string, dt float64, result *sim.Result) RunData {
	data := RunData{
		Preset:      preset,
		Dt:          dt,
		Steps:       result.StepsTaken,
		Times:       result.Times,
		Positions:   make([][]Point, len(result.Positions)),
		Energy:      result.Energy,
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
	}
	for i, row := range result.Positions {
		data.Positions[i] = make([]Point, len(row))
		for j, p := range row {
			data.Positions[i][j] = Point(p)
		}
	}
	return data
}

// Encode writes v as indented JSON.
func Encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// ExportJSON writes v to path, or to stdout when path is "-".
func ExportJSON(path string, v any) error {
	if path == "-" {
		return Encode(os.Stdout, v)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return Encode(file, v)
}
