// Package engine implements the train simulation loop that hosts the
// traction models.
//
// The simulation advances in fixed timesteps. Each step has three passes:
//
//  1. Control pass - control events due at the current time are applied to
//     the lead cab.
//
//  2. Traction pass - every powered car updates its power model with the
//     lead cab's throttle and brake, its own reverser and a view of the
//     consist valid for this step only.
//
//  3. Motion pass - the motive forces are summed and the train's kinematics
//     model advances the speed.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gonum.org/v1/gonum/floats"

	"github.com/cxd309/traction-engine/internal/traction"
	"github.com/cxd309/traction-engine/internal/train"
)

var (
	ErrTimeStep = errors.New("time step must be positive")
	ErrRunTime  = errors.New("run time must not be negative")
	ErrControl  = errors.New("invalid control event")
	ErrFinished = errors.New("simulation finished")
)

// Option customises a Simulation.
type Option func(*Simulation)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l log.Logger) Option {
	return func(s *Simulation) { s.logger = l }
}

// Simulation is the engine state of one run.
type Simulation struct {
	meta     SimulationMeta
	train    *train.Train
	controls []ControlEvent
	next     int
	state    ControlState
	speed    float64
	curTime  float64
	forces   []float64
	logger   log.Logger
}

// NewSimulation validates input and places the train at its initial speed
// with the throttle closed, the lead reverser as loaded and power on.
func NewSimulation(input SimulationInput, opts ...Option) (*Simulation, error) {
	if input.Meta.TimeStep <= 0 {
		return nil, ErrTimeStep
	}
	if input.Meta.RunTime < 0 {
		return nil, ErrRunTime
	}
	if input.Train.Len() == 0 {
		return nil, fmt.Errorf("building train: %w", train.ErrNoCars)
	}
	if input.Train.Kinem == nil {
		return nil, fmt.Errorf("train %q: missing kinematics", input.Train.ID)
	}

	controls := make([]ControlEvent, len(input.Controls))
	copy(controls, input.Controls)
	for i, c := range controls {
		if err := validateControl(c); err != nil {
			return nil, fmt.Errorf("control %d: %w", i, err)
		}
	}
	sort.SliceStable(controls, func(i, j int) bool { return controls[i].At < controls[j].At })

	tr := input.Train
	s := &Simulation{
		meta:     input.Meta,
		train:    &tr,
		controls: controls,
		state: ControlState{
			Direction: tr.Lead().Reverser,
			Powered:   true,
		},
		speed:  input.InitialSpeed,
		logger: log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.With(s.logger, "simulation", s.meta.SimulationID)
	return s, nil
}

func validateControl(c ControlEvent) error {
	if c.At < 0 {
		return fmt.Errorf("%w: negative time %.2f", ErrControl, c.At)
	}
	if c.Throttle != nil && (*c.Throttle < 0 || *c.Throttle > 100) {
		return fmt.Errorf("%w: throttle %.1f%% out of range", ErrControl, *c.Throttle)
	}
	if c.DynamicBrake != nil && (*c.DynamicBrake < 0 || *c.DynamicBrake > 100) {
		return fmt.Errorf("%w: dynamic brake %.1f%% out of range", ErrControl, *c.DynamicBrake)
	}
	return nil
}

// Done reports whether the run time has elapsed.
func (s *Simulation) Done() bool { return s.curTime > s.meta.RunTime }

// Time returns the current simulated time, seconds.
func (s *Simulation) Time() float64 { return s.curTime }

// Meta returns the run's meta data.
func (s *Simulation) Meta() SimulationMeta { return s.meta }

// Run executes the full simulation and returns the log.
func (s *Simulation) Run() (SimulationLog, error) {
	level.Info(s.logger).Log("msg", "simulation started", "run_time", s.meta.RunTime,
		"time_step", s.meta.TimeStep, "cars", s.train.Len())

	simLog := SimulationLog{Meta: s.meta}
	for !s.Done() {
		row, err := s.Step()
		if err != nil {
			return SimulationLog{}, fmt.Errorf("at t=%.2f: %w", s.curTime, err)
		}
		simLog.Output = append(simLog.Output, row)
	}
	simLog.Status = s.Status()

	level.Info(s.logger).Log("msg", "simulation finished", "steps", len(simLog.Output), "speed", s.speed)
	return simLog, nil
}

// Step advances the simulation by one timestep and returns the resulting log row.
// It returns ErrFinished once the run time has elapsed.
func (s *Simulation) Step() (SimulationLogRow, error) {
	if s.Done() {
		return SimulationLogRow{}, ErrFinished
	}
	dt := s.meta.TimeStep
	s.applyControls()

	// Traction pass: every powered car sees the same consist snapshot.
	lead := s.train.Lead()
	s.forces = s.forces[:0]
	units := make([]UnitLog, 0, s.train.Len())
	for _, car := range s.train.Cars {
		if !car.Powered() {
			continue
		}
		tel := car.Power.Update(dt, traction.Inputs{
			Powered:             s.state.Powered,
			ThrottlePercent:     s.state.Throttle,
			Direction:           car.Reverser,
			DynamicBrakePercent: s.state.DynamicBrake,
			Speed:               s.speed,
			Lead:                car == lead,
			Consist:             s.train,
		})
		s.forces = append(s.forces, tel.MotiveForce)
		units = append(units, UnitLog{CarID: car.ID, Kind: car.Power.Kind(), Telemetry: tel})
	}

	// Motion pass.
	total := 0.0
	if len(s.forces) > 0 {
		total = floats.Sum(s.forces)
	}
	s.speed = s.train.Kinem.Step(s.speed, total, s.train.Mass(), dt)

	row := SimulationLogRow{
		Timestamp:  s.curTime,
		Speed:      s.speed,
		TotalForce: total,
		Controls:   s.state,
		Units:      units,
	}
	s.curTime += dt
	return row, nil
}

// applyControls applies every control event due at the current time.
func (s *Simulation) applyControls() {
	for s.next < len(s.controls) && s.controls[s.next].At <= s.curTime {
		s.apply(s.controls[s.next])
		s.next++
	}
}

// Apply validates c and applies it before the next step, whatever its At.
// It lets a live driver take over from the control schedule.
func (s *Simulation) Apply(c ControlEvent) error {
	c.At = s.curTime
	if err := validateControl(c); err != nil {
		return err
	}
	s.apply(c)
	return nil
}

func (s *Simulation) apply(c ControlEvent) {
	if c.Throttle != nil {
		s.state.Throttle = *c.Throttle
	}
	if c.DynamicBrake != nil {
		s.state.DynamicBrake = *c.DynamicBrake
	}
	if c.Powered != nil {
		s.state.Powered = *c.Powered
	}
	if c.Direction != nil {
		s.state.Direction = *c.Direction
		s.train.Lead().Reverser = *c.Direction
	}
	level.Debug(s.logger).Log("msg", "controls changed", "t", s.curTime,
		"throttle", s.state.Throttle, "dynamic_brake", s.state.DynamicBrake,
		"direction", s.state.Direction, "powered", s.state.Powered)
}

// Controls returns the control setting currently in force.
func (s *Simulation) Controls() ControlState { return s.state }

// Status returns the cab status report of every powered car.
func (s *Simulation) Status() map[train.CarID]string {
	out := make(map[train.CarID]string)
	for _, car := range s.train.Cars {
		if car.Powered() {
			out[car.ID] = car.Power.Status()
		}
	}
	return out
}

// RunJSON is the primary entry point for the CLI and WASM targets.
// It accepts a JSON-encoded SimulationInput, runs the simulation, and returns a
// JSON-encoded SimulationLog.
func RunJSON(jsonInput string, opts ...Option) (string, error) {
	var input SimulationInput
	if err := json.Unmarshal([]byte(jsonInput), &input); err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}

	sim, err := NewSimulation(input, opts...)
	if err != nil {
		return "", err
	}

	simLog, err := sim.Run()
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(simLog)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}
