// Package profile loads and saves remapper profiles: the axis
// bindings and a flat, order-preserving record of each response curve
// that round-trips through curve.Parameters without any editor state.
package profile

import (
	"fmt"
	"log"

	"github.com/spf13/viper"

	"github.com/soar/axisremap/internal/curve"
)

// PointConfig is one stored control point.
type PointConfig struct {
	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
}

// CurveConfig is the stored form of curve.Parameters: a shape tag,
// the scalar gate fields and the ordered point list.
type CurveConfig struct {
	Shape      string        `mapstructure:"shape"`
	Curvature  float64       `mapstructure:"curvature"`
	Deadzone   float64       `mapstructure:"deadzone"`
	Saturation float64       `mapstructure:"saturation"`
	Points     []PointConfig `mapstructure:"points"`
}

// AxisConfig is one stored axis binding.
type AxisConfig struct {
	Name   string      `mapstructure:"name"`
	Index  int32       `mapstructure:"index"`
	Target string      `mapstructure:"target"`
	Invert bool        `mapstructure:"invert"`
	Curve  CurveConfig `mapstructure:"curve"`
}

// Profile is a complete stored remapper configuration.
type Profile struct {
	Name string       `mapstructure:"name"`
	Axes []AxisConfig `mapstructure:"axes"`
}

// Default returns a starter profile for a two-axis stick with
// identity curves.
func Default() *Profile {
	return &Profile{
		Name: "default",
		Axes: []AxisConfig{
			{Name: "roll", Index: 0, Target: "vjoy_x", Curve: FromParameters(curve.Default())},
			{Name: "pitch", Index: 1, Target: "vjoy_y", Curve: FromParameters(curve.Default())},
		},
	}
}

// Load reads a profile file. The format follows the file extension
// (yaml, json, toml).
func Load(path string) (*Profile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	var p Profile
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if len(p.Axes) == 0 {
		return nil, fmt.Errorf("profile %s binds no axes", path)
	}
	return &p, nil
}

// Save writes the profile to path, format following the extension.
func (p *Profile) Save(path string) error {
	v := viper.New()
	v.Set("name", p.Name)
	v.Set("axes", p.Axes)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write profile %s: %w", path, err)
	}
	return nil
}

// Parameters converts the stored curve record, validating it. A curve
// that no longer satisfies the structural invariants (hand-edited
// file, older format) is rejected; callers fall back to the default.
func (c CurveConfig) Parameters() (curve.Parameters, error) {
	shape, err := curve.ParseShape(c.Shape)
	if err != nil {
		return curve.Parameters{}, err
	}
	p := curve.Parameters{
		Shape:      shape,
		Curvature:  c.Curvature,
		Deadzone:   c.Deadzone,
		Saturation: c.Saturation,
		Points:     make([]curve.Point, len(c.Points)),
	}
	for i, pt := range c.Points {
		p.Points[i] = curve.Point{X: pt.X, Y: pt.Y}
	}
	if err := p.Validate(); err != nil {
		return curve.Parameters{}, fmt.Errorf("stored curve: %w", err)
	}
	return p, nil
}

// CurveOrDefault converts the stored curve, logging and substituting
// the default identity curve when the record is unusable.
func (a AxisConfig) CurveOrDefault() curve.Parameters {
	p, err := a.Curve.Parameters()
	if err != nil {
		log.Printf("Axis %s: %v; using default curve", a.Name, err)
		return curve.Default()
	}
	return p
}

// FromParameters converts live curve parameters to their stored form.
func FromParameters(p curve.Parameters) CurveConfig {
	c := CurveConfig{
		Shape:      p.Shape.String(),
		Curvature:  p.Curvature,
		Deadzone:   p.Deadzone,
		Saturation: p.Saturation,
		Points:     make([]PointConfig, len(p.Points)),
	}
	for i, pt := range p.Points {
		c.Points[i] = PointConfig{X: pt.X, Y: pt.Y}
	}
	return c
}
