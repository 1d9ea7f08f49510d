package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/magfield/internal/dynamo"
)

type Observer interface {
	OnStep(scene *Scene, t float64)
}

// Result is the trajectory of a headless run. Positions[k][i] is dipole i
// after k steps; index 0 is the starting pose.
type Result struct {
	Times       []float64
	Positions   [][]mgl64.Vec3
	Energy      []float64
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
}

// Runner drives a scene's dynamics without a frame loop.
type Runner struct {
	scene     *Scene
	metrics   []dynamo.Metric
	observers []Observer
}

func NewRunner(scene *Scene) *Runner {
	return &Runner{scene: scene}
}

func (r *Runner) AddMetric(m dynamo.Metric) { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer)    { r.observers = append(r.observers, o) }

// Run restarts the dynamics from rest and takes steps iterations of dt. It
// stops early on context cancellation or when a dipole state stops being
// finite; the latter is recorded in Result.Errors.
func (r *Runner) Run(ctx context.Context, steps int, dt float64) (*Result, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("steps must be positive, got %d: %w", steps, dynamo.ErrParameterBounds)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("dt must be positive, got %f: %w", dt, dynamo.ErrParameterBounds)
	}

	dyn := r.scene.Dynamics()
	result := &Result{
		Times:     make([]float64, 0, steps+1),
		Positions: make([][]mgl64.Vec3, 0, steps+1),
		Energy:    make([]float64, 0, steps+1),
		Metrics:   make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	dyn.Start()
	defer dyn.Stop()

	t0 := dyn.Time()
	r.record(result, 0)
	initialEnergy := result.Energy[0]

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		r.scene.Update(dt)
		t := dyn.Time() - t0

		if err := dyn.Validate(); err != nil {
			result.Errors = append(result.Errors, err)
			break
		}

		result.StepsTaken++
		r.record(result, t)

		for _, m := range r.metrics {
			m.Observe(dyn.Dipoles(), dyn.Bodies(), t)
		}
		for _, obs := range r.observers {
			obs.OnStep(r.scene, t)
		}
	}

	if initialEnergy != 0 {
		final := result.Energy[len(result.Energy)-1]
		result.EnergyDrift = math.Abs(final-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (r *Runner) record(result *Result, t float64) {
	dyn := r.scene.Dynamics()
	positions := make([]mgl64.Vec3, len(dyn.Dipoles()))
	for i, d := range dyn.Dipoles() {
		positions[i] = d.Position()
	}
	result.Times = append(result.Times, t)
	result.Positions = append(result.Positions, positions)
	result.Energy = append(result.Energy, dyn.KineticEnergy()+dyn.PotentialEnergy())
}
