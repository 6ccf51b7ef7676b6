package kinematics

// ConstantModelName is the JSON discriminator string for the Constant model.
const ConstantModelName = "constant"

// ConstantResistance implements MotionModel with a fixed rolling resistance.
// This is the default and simplest kinematics model.
//
// JSON discriminator: "model": "constant"
type ConstantResistance struct {
	Force   float64 `json:"resistance"` // N
	VMaxVal float64 `json:"v_max"`      // maximum speed, m/s
}

func (c ConstantResistance) VMax() float64 { return c.VMaxVal }

func (c ConstantResistance) Resistance(float64) float64 { return c.Force }

func (c ConstantResistance) Step(v, force, mass, dt float64) float64 {
	return integrate(c, v, force, mass, dt)
}
