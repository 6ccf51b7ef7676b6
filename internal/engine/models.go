package engine

import (
	"github.com/cxd309/traction-engine/internal/consist"
	"github.com/cxd309/traction-engine/internal/traction"
	"github.com/cxd309/traction-engine/internal/train"
)

// SimulationMeta holds the identity and timing parameters for a simulation run.
type SimulationMeta struct {
	SimulationID string  `json:"simulation_id"`
	RunTime      float64 `json:"run_time"`  // seconds
	TimeStep     float64 `json:"time_step"` // seconds
}

// ControlEvent changes the lead cab's controls at a point in simulated time.
// Nil fields leave the control as it was.
type ControlEvent struct {
	At           float64            `json:"at"`                      // seconds
	Throttle     *float64           `json:"throttle,omitempty"`      // percent
	Direction    *consist.Direction `json:"direction,omitempty"`     // lead reverser
	DynamicBrake *float64           `json:"dynamic_brake,omitempty"` // percent
	Powered      *bool              `json:"powered,omitempty"`
}

// SimulationInput is the JSON-serialisable input to the engine.
type SimulationInput struct {
	Meta         SimulationMeta `json:"simulation_meta"`
	Train        train.Train    `json:"train"`
	InitialSpeed float64        `json:"initial_speed"` // m/s, signed
	Controls     []ControlEvent `json:"controls"`
}

// ControlState is the lead cab's control setting in force during a tick.
type ControlState struct {
	Throttle     float64           `json:"throttle"`      // percent
	DynamicBrake float64           `json:"dynamic_brake"` // percent
	Direction    consist.Direction `json:"direction"`
	Powered      bool              `json:"powered"`
}

// UnitLog is the telemetry of one powered car at a single timestep.
type UnitLog struct {
	CarID train.CarID `json:"car_id"`
	Kind  string      `json:"kind"`
	traction.Telemetry
}

// SimulationLogRow is the state of the train at a single simulation timestep.
type SimulationLogRow struct {
	Timestamp  float64      `json:"timestamp"`   // seconds
	Speed      float64      `json:"speed"`       // m/s, signed
	TotalForce float64      `json:"total_force"` // N, signed
	Controls   ControlState `json:"controls"`
	Units      []UnitLog    `json:"units"`
}

// SimulationLog is the complete output of a simulation run.
type SimulationLog struct {
	Meta   SimulationMeta         `json:"simulation_meta"`
	Output []SimulationLogRow     `json:"output"`
	Status map[train.CarID]string `json:"status"` // cab status of each powered car at the end
}
