package train

import (
	"encoding/json"
	"fmt"

	"github.com/cxd309/traction-engine/internal/consist"
	"github.com/cxd309/traction-engine/internal/kinematics"
)

// TrainID is a unique string identifier for a train.
type TrainID = string

// Train is an ordered consist of cars, one of which holds the controls.
// Train implements consist.View.
type Train struct {
	ID    TrainID
	Cars  []*Car
	Kinem kinematics.MotionModel
	lead  int
}

var _ consist.View = (*Train)(nil)

// New returns a train whose controls are held by cars[lead].
func New(id TrainID, cars []*Car, lead int, kinem kinematics.MotionModel) (*Train, error) {
	for i, c := range cars {
		if c == nil {
			return nil, fmt.Errorf("train %q car %d: %w", id, i, ErrNilCar)
		}
	}
	t := &Train{ID: id, Cars: cars, Kinem: kinem}
	if err := t.SetLead(lead); err != nil {
		return nil, err
	}
	return t, nil
}

// Len implements consist.View.
func (t *Train) Len() int { return len(t.Cars) }

// At implements consist.View.
func (t *Train) At(i int) consist.Car { return t.Cars[i] }

// Lead returns the car holding the controls.
func (t *Train) Lead() *Car { return t.Cars[t.lead] }

// LeadIndex returns the position of the lead car.
func (t *Train) LeadIndex() int { return t.lead }

// SetLead hands the controls to cars[i].
func (t *Train) SetLead(i int) error {
	if len(t.Cars) == 0 {
		return fmt.Errorf("train %q: %w", t.ID, ErrNoCars)
	}
	if i < 0 || i >= len(t.Cars) || t.Cars[i] == nil || !t.Cars[i].Drivable() {
		return fmt.Errorf("train %q lead %d: %w", t.ID, i, ErrLeadInvalid)
	}
	for j, c := range t.Cars {
		if c == nil {
			return fmt.Errorf("train %q car %d: %w", t.ID, j, ErrNilCar)
		}
	}
	for j, c := range t.Cars {
		c.controlling = j == i
	}
	t.lead = i
	return nil
}

// Mass returns the total mass of the train, kg.
func (t *Train) Mass() float64 {
	m := 0.0
	for _, c := range t.Cars {
		m += c.Mass
	}
	return m
}

// kinematicsDisc is the minimum JSON structure needed to read the model discriminator.
type kinematicsDisc struct {
	Model string `json:"model"`
}

// trainJSON is the raw JSON shape of a Train, before the kinematics model is resolved.
type trainJSON struct {
	ID    TrainID         `json:"id"`
	Lead  int             `json:"lead"`
	Kinem json.RawMessage `json:"kinematics"`
	Cars  []*Car          `json:"cars"`
}

// UnmarshalJSON implements json.Unmarshaler for Train.
// The "kinematics" field must contain a "model" discriminator key that selects
// the concrete implementation; the rest of the kinematics object is forwarded to
// that implementation's own unmarshaler.
//
// Supported models:
//   - "constant": fixed rolling resistance.
//   - "davis": A + B·v + C·v² running resistance.
func (t *Train) UnmarshalJSON(data []byte) error {
	var aux trainJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	kinem, err := decodeKinematics(aux.ID, aux.Kinem)
	if err != nil {
		return err
	}
	built, err := New(aux.ID, aux.Cars, aux.Lead, kinem)
	if err != nil {
		return err
	}
	*t = *built
	return nil
}

func decodeKinematics(id TrainID, raw json.RawMessage) (kinematics.MotionModel, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("train %q: missing \"kinematics\" field", id)
	}

	var disc kinematicsDisc
	if err := json.Unmarshal(raw, &disc); err != nil {
		return nil, fmt.Errorf("train %q: reading kinematics model discriminator: %w", id, err)
	}

	switch disc.Model {
	case kinematics.ConstantModelName:
		var k kinematics.ConstantResistance
		if err := json.Unmarshal(raw, &k); err != nil {
			return nil, fmt.Errorf("train %q: parsing constant kinematics: %w", id, err)
		}
		return k, nil
	case kinematics.DavisModelName:
		var k kinematics.Davis
		if err := json.Unmarshal(raw, &k); err != nil {
			return nil, fmt.Errorf("train %q: parsing davis kinematics: %w", id, err)
		}
		return k, nil
	}
	return nil, fmt.Errorf("train %q: unknown kinematics model %q", id, disc.Model)
}
