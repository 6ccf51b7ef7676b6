// Package train defines the cars and consists used in the simulation. A Car
// is a generic vehicle; traction behavior lives in the traction.PowerModel it
// carries, so a diesel, an electric and an unpowered coach are all Cars.
package train

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cxd309/traction-engine/internal/config"
	"github.com/cxd309/traction-engine/internal/consist"
	"github.com/cxd309/traction-engine/internal/traction"
)

// CarID is a unique string identifier for a car.
type CarID = string

var (
	ErrNoCars      = errors.New("train has no cars")
	ErrLeadInvalid = errors.New("lead car must be a drivable car of the train")
	ErrCarMass     = errors.New("car mass must be positive")
	ErrNilCar      = errors.New("train has a missing car")
)

// Car is a single vehicle of a train.
type Car struct {
	ID       CarID
	Mass     float64 // kg
	Reverser consist.Direction
	// Power is nil for unpowered cars.
	Power traction.PowerModel

	drivable    bool
	controlling bool
}

var _ consist.Car = (*Car)(nil)

// Drivable implements consist.Car.
func (c *Car) Drivable() bool { return c.drivable }

// Direction implements consist.Car.
func (c *Car) Direction() consist.Direction { return c.Reverser }

// Controlling implements consist.Car.
func (c *Car) Controlling() bool { return c.controlling }

// Powered reports whether the car carries a power model.
func (c *Car) Powered() bool { return c.Power != nil }

// powerJSON is the raw "power" object: either an inline parameter set or a
// reference to a parameter file.
type powerJSON struct {
	ConfigFile string `json:"config_file"`
}

// carJSON is the raw JSON shape of a Car, before the power model is resolved.
type carJSON struct {
	ID        CarID             `json:"id"`
	Mass      float64           `json:"mass"`
	Direction consist.Direction `json:"direction"`
	Drivable  *bool             `json:"drivable"`
	Power     json.RawMessage   `json:"power"`
}

// UnmarshalJSON implements json.Unmarshaler for Car.
// The optional "power" object either names a parameter file with
// "config_file" or carries the parameters inline, selected by its "model"
// discriminator.
//
// Supported models:
//   - "diesel": diesel-electric with RPM ramp and exhaust.
//   - "electric": line-fed electric.
func (c *Car) UnmarshalJSON(data []byte) error {
	var aux carJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Mass <= 0 {
		return fmt.Errorf("car %q: %w", aux.ID, ErrCarMass)
	}
	c.ID = aux.ID
	c.Mass = aux.Mass
	c.Reverser = aux.Direction
	c.Power = nil

	if len(aux.Power) > 0 && string(aux.Power) != "null" {
		spec, err := decodePower(aux.Power)
		if err != nil {
			return fmt.Errorf("car %q: %w", c.ID, err)
		}
		model, err := spec.Build(c.Mass)
		if err != nil {
			return fmt.Errorf("car %q: %w", c.ID, err)
		}
		c.Power = model
	}

	c.drivable = c.Power != nil
	if aux.Drivable != nil {
		c.drivable = *aux.Drivable
	}
	return nil
}

func decodePower(raw json.RawMessage) (config.PowerSpec, error) {
	var ref powerJSON
	if err := json.Unmarshal(raw, &ref); err != nil {
		return config.PowerSpec{}, fmt.Errorf("reading power: %w", err)
	}
	if ref.ConfigFile != "" {
		return config.LoadPower(ref.ConfigFile)
	}

	spec := config.DefaultPowerSpec()
	if err := json.Unmarshal(raw, &spec); err != nil {
		return config.PowerSpec{}, fmt.Errorf("reading power parameters: %w", err)
	}
	return spec, nil
}

// NewCar returns a car carrying model, which may be nil.
func NewCar(id CarID, mass float64, reverser consist.Direction, model traction.PowerModel) *Car {
	return &Car{ID: id, Mass: mass, Reverser: reverser, Power: model, drivable: model != nil}
}
