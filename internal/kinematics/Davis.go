package kinematics

// DavisModelName is the JSON discriminator string for the Davis model.
const DavisModelName = "davis"

// Davis implements MotionModel with the Davis running-resistance formula
// R(v) = A + B·|v| + C·v².
//
// JSON discriminator: "model": "davis"
type Davis struct {
	A       float64 `json:"a"` // N
	B       float64 `json:"b"` // N/(m/s)
	C       float64 `json:"c"` // N/(m/s)²
	VMaxVal float64 `json:"v_max"`
}

func (d Davis) VMax() float64 { return d.VMaxVal }

func (d Davis) Resistance(v float64) float64 {
	if v < 0 {
		v = -v
	}
	return d.A + d.B*v + d.C*v*v
}

func (d Davis) Step(v, force, mass, dt float64) float64 {
	return integrate(d, v, force, mass, dt)
}
