package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/couchcryptid/neo-impact-service/internal/domain"
	"gopkg.in/yaml.v3"
)

// ID is a catalog identifier. Sources emit both numeric and string IDs, so
// it decodes either and always encodes as a string.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("asteroid id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id *ID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("asteroid id: expected scalar, got kind %d", node.Kind)
	}
	*id = ID(node.Value)
	return nil
}

// Asteroid is one entry of the orbit visualization catalog. R, Theta and Y
// place the body in the front end's scene; Size is a scene radius that
// doubles as a diameter hint when DiameterM is absent.
type Asteroid struct {
	ID            ID       `json:"id" yaml:"id"`
	Label         string   `json:"label,omitempty" yaml:"label,omitempty"`
	Name          string   `json:"name,omitempty" yaml:"name,omitempty"`
	R             float64  `json:"r" yaml:"r"`
	Theta         float64  `json:"theta" yaml:"theta"`
	Y             float64  `json:"y" yaml:"y"`
	Size          *float64 `json:"size" yaml:"size"`
	DiameterM     *float64 `json:"diameter_m,omitempty" yaml:"diameter_m,omitempty"`
	MassKg        *float64 `json:"mass,omitempty" yaml:"mass,omitempty"`
	VelocityKms   *float64 `json:"velocity_kms" yaml:"velocity_kms"`
	Velocity      *float64 `json:"velocity,omitempty" yaml:"velocity,omitempty"` // legacy alias of velocity_kms
	CloseApproach bool     `json:"close_approach" yaml:"close_approach"`
}

// DisplayName returns the label, falling back to the name and then the ID.
func (a Asteroid) DisplayName() string {
	switch {
	case a.Label != "":
		return a.Label
	case a.Name != "":
		return a.Name
	default:
		return string(a.ID)
	}
}

// diameterMeters prefers diameter_m and falls back to size. Values below 1
// are scene fractions and are scaled by 100.
func (a Asteroid) diameterMeters() *float64 {
	d := firstPositive(a.DiameterM, a.Size)
	if d == nil {
		return nil
	}
	v := *d
	if v < 1 {
		v *= 100
	}
	return &v
}

// Record converts the catalog entry into the core's lookup record.
func (a Asteroid) Record() domain.AsteroidRecord {
	return domain.AsteroidRecord{
		ID:          string(a.ID),
		Label:       a.Label,
		Name:        a.Name,
		MassKg:      firstPositive(a.MassKg),
		VelocityKms: firstPositive(a.VelocityKms, a.Velocity),
		DiameterM:   a.diameterMeters(),
	}
}

// Records converts a catalog into lookup records.
func Records(asteroids []Asteroid) []domain.AsteroidRecord {
	out := make([]domain.AsteroidRecord, len(asteroids))
	for i, a := range asteroids {
		out[i] = a.Record()
	}
	return out
}

// ListEntry is the simplified dropdown row.
type ListEntry struct {
	Name     string   `json:"name"`
	Mass     *float64 `json:"mass"`
	Velocity *float64 `json:"velocity"`
	Diameter *float64 `json:"diameter"`
}

// Simplify builds the dropdown list. Mass is the record mass or a sphere
// estimate at the default density.
func Simplify(asteroids []Asteroid) []ListEntry {
	out := make([]ListEntry, 0, len(asteroids))
	for _, a := range asteroids {
		rec := a.Record()
		entry := ListEntry{
			Name:     a.DisplayName(),
			Mass:     rec.MassKg,
			Velocity: rec.VelocityKms,
			Diameter: rec.DiameterM,
		}
		if entry.Mass == nil && entry.Diameter != nil {
			m := domain.EstimateMassFromDiameter(*entry.Diameter, domain.DefaultDensityKgM3)
			entry.Mass = &m
		}
		out = append(out, entry)
	}
	return out
}

func firstPositive(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil && *v > 0 {
			return v
		}
	}
	return nil
}

func float(v float64) *float64 { return &v }

func itoa(i int) string { return strconv.Itoa(i) }
