package domain

import (
	"math"
	"strings"
)

// Demo fallbacks used only when neither the caller nor the catalog supplies
// a value. They keep the dashboard usable and carry no physical meaning.
const (
	FallbackVelocityKms = 20.0
	FallbackMassKg      = 1e9
)

// AsteroidRecord is the core's view of a catalog entry. Optional quantities
// are nil when the source did not provide them.
type AsteroidRecord struct {
	ID          string
	Label       string
	Name        string
	MassKg      *float64
	VelocityKms *float64
	DiameterM   *float64
}

// DisplayName returns the label, falling back to the name and then the ID.
func (r AsteroidRecord) DisplayName() string {
	switch {
	case r.Label != "":
		return r.Label
	case r.Name != "":
		return r.Name
	default:
		return r.ID
	}
}

// Overrides carries caller-supplied values that take precedence over
// catalog data.
type Overrides struct {
	VelocityKms *float64
	MassKg      *float64
	DiameterM   *float64
}

// Complete reports whether every field is supplied, in which case no catalog
// lookup is needed.
func (o Overrides) Complete() bool {
	return o.VelocityKms != nil && o.MassKg != nil && o.DiameterM != nil
}

// EstimateMassFromDiameter returns the mass of a sphere of the given diameter
// and density. A non-positive density selects DefaultDensityKgM3. The caller
// must reject non-positive diameters.
func EstimateMassFromDiameter(diameterM, densityKgM3 float64) float64 {
	if densityKgM3 <= 0 {
		densityKgM3 = DefaultDensityKgM3
	}
	r := diameterM / 2.0
	return (4.0 / 3.0) * math.Pi * math.Pow(r, 3) * densityKgM3
}

// FindAsteroid matches name case-insensitively against each record's label
// and name. The first match wins.
func FindAsteroid(records []AsteroidRecord, name string) (AsteroidRecord, bool) {
	for _, r := range records {
		if (r.Label != "" && strings.EqualFold(r.Label, name)) ||
			(r.Name != "" && strings.EqualFold(r.Name, name)) {
			return r, true
		}
	}
	return AsteroidRecord{}, false
}

// ResolveInput builds an ImpactInput from overrides and, when name is set and
// the overrides are incomplete, the matching catalog record.
//
// Per field: override, then record value, then (mass only) a sphere estimate
// from the resolved diameter, then the demo fallback. Diameter has no
// fallback; an unresolved diameter stays zero and fails validation later.
//
// The result is not validated. An *AsteroidNotFoundError is returned only
// when name matches nothing and the overrides cannot stand on their own.
func ResolveInput(records []AsteroidRecord, name string, o Overrides, densityKgM3 float64, target Target) (ImpactInput, error) {
	in := ImpactInput{
		VelocityKms: deref(o.VelocityKms),
		MassKg:      deref(o.MassKg),
		DiameterM:   deref(o.DiameterM),
		DensityKgM3: densityKgM3,
		Target:      target,
	}

	name = strings.TrimSpace(name)
	if name == "" || o.Complete() {
		return in, nil
	}

	rec, ok := FindAsteroid(records, name)
	if !ok {
		return in, &AsteroidNotFoundError{Name: name}
	}

	if o.VelocityKms == nil {
		in.VelocityKms = positiveOr(rec.VelocityKms, FallbackVelocityKms)
	}
	if o.DiameterM == nil {
		in.DiameterM = positiveOr(rec.DiameterM, 0)
	}
	if o.MassKg == nil {
		switch {
		case positive(rec.MassKg):
			in.MassKg = *rec.MassKg
		case in.DiameterM > 0:
			in.MassKg = EstimateMassFromDiameter(in.DiameterM, densityKgM3)
		default:
			in.MassKg = FallbackMassKg
		}
	}
	return in, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func positive(v *float64) bool { return v != nil && *v > 0 }

func positiveOr(v *float64, fallback float64) float64 {
	if positive(v) {
		return *v
	}
	return fallback
}
