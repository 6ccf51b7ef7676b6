// Package config loads and validates the parameter sets of powered units
// and the settings of the commands.
//
// Parameter files are read with viper, so TOML, YAML and JSON all work; the
// format follows the file extension. Everything is validated here, once, so
// the per-tick traction code can assume sane denominators.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/cxd309/traction-engine/internal/adhesion"
	"github.com/cxd309/traction-engine/internal/consist"
	"github.com/cxd309/traction-engine/internal/curve"
	"github.com/cxd309/traction-engine/internal/traction"
)

// Power model discriminators.
const (
	ModelDiesel   = "diesel"
	ModelElectric = "electric"
)

// Consist scan names.
const (
	ScanFirstDrivable = "first_drivable"
	ScanControlling   = "controlling"
)

var (
	ErrUnknownModel      = errors.New("unknown power model")
	ErrInvalidRPMRange   = errors.New("max rpm must exceed idle rpm")
	ErrIncompleteRPM     = errors.New("idle rpm, max rpm and max rpm change rate must be set together")
	ErrInvalidTimeFactor = errors.New("continuous force time factor must be positive when derating")
	ErrInvalidRating     = errors.New("invalid force rating")
	ErrMissingRating     = errors.New("analytic traction needs max power and max speed")
	ErrUnknownScan       = errors.New("unknown consist scan mode")
)

// EngineSpec holds the prime-mover figures of a diesel unit.
type EngineSpec struct {
	IdleRPM          float64 `json:"idle_rpm" mapstructure:"idle_rpm"`
	MaxRPM           float64 `json:"max_rpm" mapstructure:"max_rpm"`
	MaxRPMChangeRate float64 `json:"max_rpm_change_rate" mapstructure:"max_rpm_change_rate"`
	IdleExhaust      float64 `json:"idle_exhaust" mapstructure:"idle_exhaust"`
	MaxExhaust       float64 `json:"max_exhaust" mapstructure:"max_exhaust"`
	ExhaustDynamics  float64 `json:"exhaust_dynamics" mapstructure:"exhaust_dynamics"`
}

// ForceSpec holds the traction ratings.
type ForceSpec struct {
	MaxForce                  float64 `json:"max_force" mapstructure:"max_force"`
	MaxContinuousForce        float64 `json:"max_continuous_force" mapstructure:"max_continuous_force"`
	ContinuousForceTimeFactor float64 `json:"continuous_force_time_factor" mapstructure:"continuous_force_time_factor"`
	MaxPower                  float64 `json:"max_power" mapstructure:"max_power"`
	MaxSpeed                  float64 `json:"max_speed" mapstructure:"max_speed"`
}

// PowerSpec is the loadable description of a powered unit.
type PowerSpec struct {
	Model             string        `json:"model" mapstructure:"model"`
	Engine            EngineSpec    `json:"engine" mapstructure:"engine"`
	Force             ForceSpec     `json:"force" mapstructure:"force"`
	TractionCurve     []curve.Notch `json:"traction_curve,omitempty" mapstructure:"traction_curve"`
	DynamicBrakeCurve []curve.Notch `json:"dynamic_brake_curve,omitempty" mapstructure:"dynamic_brake_curve"`
	// FilterTau is the time constant of the force filter, s.
	FilterTau float64 `json:"filter_tau" mapstructure:"filter_tau"`
	// Adhesion is the wheel/rail friction coefficient; 0 disables limiting.
	Adhesion float64 `json:"adhesion" mapstructure:"adhesion"`
	Scan     string  `json:"scan,omitempty" mapstructure:"scan"`
}

// DefaultPowerSpec returns a diesel spec carrying the default exhaust figures.
func DefaultPowerSpec() PowerSpec {
	e := traction.DefaultEngineParameters()
	return PowerSpec{
		Model: ModelDiesel,
		Engine: EngineSpec{
			IdleExhaust:     e.IdleExhaust,
			MaxExhaust:      e.MaxExhaust,
			ExhaustDynamics: e.ExhaustDynamics,
		},
		Scan: ScanFirstDrivable,
	}
}

func setPowerDefaults(v *viper.Viper) {
	d := DefaultPowerSpec()
	v.SetDefault("model", d.Model)
	v.SetDefault("engine.idle_exhaust", d.Engine.IdleExhaust)
	v.SetDefault("engine.max_exhaust", d.Engine.MaxExhaust)
	v.SetDefault("engine.exhaust_dynamics", d.Engine.ExhaustDynamics)
	v.SetDefault("scan", d.Scan)
}

// LoadPower reads and validates a unit parameter file.
func LoadPower(path string) (PowerSpec, error) {
	v := viper.New()
	setPowerDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return PowerSpec{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var spec PowerSpec
	if err := v.Unmarshal(&spec); err != nil {
		return PowerSpec{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	if err := spec.Validate(); err != nil {
		return PowerSpec{}, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

// Validate rejects parameter sets the traction code cannot run with.
func (s PowerSpec) Validate() error {
	switch s.Model {
	case ModelDiesel:
		if err := s.Engine.validate(); err != nil {
			return err
		}
	case ModelElectric:
	default:
		return fmt.Errorf("%w %q", ErrUnknownModel, s.Model)
	}
	if err := s.Force.validate(len(s.TractionCurve) == 0); err != nil {
		return err
	}
	if s.FilterTau < 0 {
		return fmt.Errorf("filter tau %f: must not be negative", s.FilterTau)
	}
	if s.Adhesion < 0 {
		return fmt.Errorf("adhesion %f: must not be negative", s.Adhesion)
	}
	if _, err := parseScan(s.Scan); err != nil {
		return err
	}
	if _, err := buildCurve(s.TractionCurve); err != nil {
		return fmt.Errorf("traction curve: %w", err)
	}
	if _, err := buildCurve(s.DynamicBrakeCurve); err != nil {
		return fmt.Errorf("dynamic brake curve: %w", err)
	}
	return nil
}

func (e EngineSpec) validate() error {
	set := 0
	for _, x := range []float64{e.IdleRPM, e.MaxRPM, e.MaxRPMChangeRate} {
		if x != 0 {
			set++
		}
	}
	if set != 0 && set != 3 {
		return ErrIncompleteRPM
	}
	if set == 3 {
		if e.MaxRPM <= e.IdleRPM {
			return fmt.Errorf("%w (idle %.0f, max %.0f)", ErrInvalidRPMRange, e.IdleRPM, e.MaxRPM)
		}
		if e.IdleRPM < 0 || e.MaxRPMChangeRate < 0 {
			return fmt.Errorf("%w (negative rpm data)", ErrInvalidRPMRange)
		}
	}
	if e.ExhaustDynamics < 0 {
		return fmt.Errorf("exhaust dynamics %f: must not be negative", e.ExhaustDynamics)
	}
	return nil
}

func (f ForceSpec) validate(analytic bool) error {
	if f.MaxForce < 0 || f.MaxContinuousForce < 0 || f.MaxPower < 0 || f.MaxSpeed < 0 {
		return fmt.Errorf("%w: ratings must not be negative", ErrInvalidRating)
	}
	if f.MaxForce > 0 && f.MaxContinuousForce > 0 {
		if f.ContinuousForceTimeFactor <= 0 {
			return ErrInvalidTimeFactor
		}
		if f.MaxContinuousForce > f.MaxForce {
			return fmt.Errorf("%w: continuous force %.0f exceeds peak force %.0f", ErrInvalidRating, f.MaxContinuousForce, f.MaxForce)
		}
	}
	if analytic && (f.MaxPower <= 0 || f.MaxSpeed <= 0) {
		return ErrMissingRating
	}
	return nil
}

func parseScan(s string) (consist.ScanMode, error) {
	switch strings.ToLower(s) {
	case "", ScanFirstDrivable:
		return consist.ScanFirstDrivable, nil
	case ScanControlling:
		return consist.ScanControlling, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownScan, s)
}

// buildCurve returns a nil Lookup for an empty notch list so that the
// traction code falls back to the analytic path.
func buildCurve(notches []curve.Notch) (curve.Lookup, error) {
	if len(notches) == 0 {
		return nil, nil
	}
	t, err := curve.NewTable(notches)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Build validates the spec and returns the power model it describes.
// driverMass is the mass on driven axles, used for adhesion limiting.
func (s PowerSpec) Build(driverMass float64) (traction.PowerModel, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	tc, err := buildCurve(s.TractionCurve)
	if err != nil {
		return nil, err
	}
	bc, err := buildCurve(s.DynamicBrakeCurve)
	if err != nil {
		return nil, err
	}
	scan, err := parseScan(s.Scan)
	if err != nil {
		return nil, err
	}

	opts := []traction.Option{
		traction.WithScanMode(scan),
		traction.WithFilterTau(s.FilterTau),
	}
	if s.Adhesion > 0 && driverMass > 0 {
		opts = append(opts, traction.WithLimiter(adhesion.Adhesion{Coefficient: s.Adhesion, DriverMass: driverMass}))
	}

	ratings := traction.ForceRatings(s.Force)
	curves := traction.Curves{Traction: tc, DynamicBrake: bc}
	switch s.Model {
	case ModelDiesel:
		return traction.NewDiesel(traction.DieselParameters{
			Engine: traction.EngineParameters(s.Engine),
			Force:  ratings,
			Curves: curves,
		}, opts...), nil
	case ModelElectric:
		return traction.NewElectric(traction.ElectricParameters{Force: ratings, Curves: curves}, opts...), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownModel, s.Model)
}
