package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

const (
	// DefaultDensityKgM3 is a typical rocky asteroid density.
	DefaultDensityKgM3 = 3000.0

	// JoulesPerMegaton is the TNT-equivalent conversion (1 Mt TNT).
	JoulesPerMegaton = 4.184e15

	// HiroshimaMegatons is the ~15 kt reference yield.
	HiroshimaMegatons = 0.015
)

// Target is the surface the impactor strikes. It is echoed, never branched on.
type Target string

const (
	TargetGround Target = "ground"
	TargetAir    Target = "air"
	TargetWater  Target = "water"
)

// ImpactInput holds the physical parameters of one impactor.
type ImpactInput struct {
	VelocityKms float64 `json:"velocity_kms" yaml:"velocity_kms" validate:"finite,gt=0"`
	MassKg      float64 `json:"mass_kg" yaml:"mass_kg" validate:"finite,gt=0"`
	DiameterM   float64 `json:"diameter_m" yaml:"diameter_m" validate:"finite,gt=0"`
	DensityKgM3 float64 `json:"density_kg_m3" yaml:"density_kg_m3" validate:"finite,gt=0"`
	Target      Target  `json:"target" yaml:"target" validate:"oneof=ground air water"`
}

// withDefaults fills the optional fields. A zero density means "not supplied".
func (in ImpactInput) withDefaults() ImpactInput {
	if in.DensityKgM3 == 0 {
		in.DensityKgM3 = DefaultDensityKgM3
	}
	in.Target = Target(strings.ToLower(strings.TrimSpace(string(in.Target))))
	if in.Target == "" {
		in.Target = TargetGround
	}
	return in
}

// ImpactResult is the metrics bundle for one evaluation. The basic variant
// leaves the detailed-only fields zero and the detailed variant leaves
// HiroshimaEquivalent zero. Encoding goes through BasicReport or
// DetailedReport so each variant carries exactly its own fields.
type ImpactResult struct {
	Variant Variant     `json:"-" yaml:"-"`
	Input   ImpactInput `json:"input" yaml:"input"`

	Momentum            float64 `json:"momentum" yaml:"momentum"`
	EnergyJ             float64 `json:"impact_energy_j" yaml:"impact_energy_j"`
	EnergyMt            float64 `json:"impact_energy_mt" yaml:"impact_energy_mt"`
	HiroshimaEquivalent float64 `json:"hiroshima_equivalent" yaml:"hiroshima_equivalent"`
	CraterDepthM        float64 `json:"crater_depth_m" yaml:"crater_depth_m"`
	CraterDiameterKm    float64 `json:"crater_diameter_km" yaml:"crater_diameter_km"`
	DisplacementM       float64 `json:"displacement_m" yaml:"displacement_m"`
	SeismicMagnitudeMw  float64 `json:"seismic_magnitude_mw" yaml:"seismic_magnitude_mw"`
	BlastRadiusKm       float64 `json:"blast_radius_km" yaml:"blast_radius_km"`
	SummaryText         string  `json:"summary_text" yaml:"summary_text"`
}

// BasicInput is the part of ImpactInput the basic variant consumes.
type BasicInput struct {
	VelocityKms float64 `json:"velocity_kms" yaml:"velocity_kms"`
	MassKg      float64 `json:"mass_kg" yaml:"mass_kg"`
	DiameterM   float64 `json:"diameter_m" yaml:"diameter_m"`
}

// BasicReport is the wire shape of a basic result.
type BasicReport struct {
	Input               BasicInput `json:"input" yaml:"input"`
	Momentum            float64    `json:"momentum" yaml:"momentum"`
	EnergyJ             float64    `json:"impact_energy_j" yaml:"impact_energy_j"`
	EnergyMt            float64    `json:"impact_energy_mt" yaml:"impact_energy_mt"`
	HiroshimaEquivalent float64    `json:"hiroshima_equivalent" yaml:"hiroshima_equivalent"`
	CraterDepthM        float64    `json:"crater_depth_m" yaml:"crater_depth_m"`
}

// DetailedReport is the wire shape of a detailed result. Floored metrics are
// always present, zero included.
type DetailedReport struct {
	Input              ImpactInput `json:"input" yaml:"input"`
	Momentum           float64     `json:"momentum" yaml:"momentum"`
	EnergyJ            float64     `json:"impact_energy_j" yaml:"impact_energy_j"`
	EnergyMt           float64     `json:"impact_energy_mt" yaml:"impact_energy_mt"`
	CraterDepthM       float64     `json:"crater_depth_m" yaml:"crater_depth_m"`
	CraterDiameterKm   float64     `json:"crater_diameter_km" yaml:"crater_diameter_km"`
	DisplacementM      float64     `json:"displacement_m" yaml:"displacement_m"`
	SeismicMagnitudeMw float64     `json:"seismic_magnitude_mw" yaml:"seismic_magnitude_mw"`
	BlastRadiusKm      float64     `json:"blast_radius_km" yaml:"blast_radius_km"`
	SummaryText        string      `json:"summary_text" yaml:"summary_text"`
}

// BasicReport projects r onto the basic wire shape.
func (r ImpactResult) BasicReport() BasicReport {
	return BasicReport{
		Input: BasicInput{
			VelocityKms: r.Input.VelocityKms,
			MassKg:      r.Input.MassKg,
			DiameterM:   r.Input.DiameterM,
		},
		Momentum:            r.Momentum,
		EnergyJ:             r.EnergyJ,
		EnergyMt:            r.EnergyMt,
		HiroshimaEquivalent: r.HiroshimaEquivalent,
		CraterDepthM:        r.CraterDepthM,
	}
}

// DetailedReport projects r onto the detailed wire shape.
func (r ImpactResult) DetailedReport() DetailedReport {
	return DetailedReport{
		Input:              r.Input,
		Momentum:           r.Momentum,
		EnergyJ:            r.EnergyJ,
		EnergyMt:           r.EnergyMt,
		CraterDepthM:       r.CraterDepthM,
		CraterDiameterKm:   r.CraterDiameterKm,
		DisplacementM:      r.DisplacementM,
		SeismicMagnitudeMw: r.SeismicMagnitudeMw,
		BlastRadiusKm:      r.BlastRadiusKm,
		SummaryText:        r.SummaryText,
	}
}

// report picks the wire shape for r. Results without a variant encode as
// detailed.
func (r ImpactResult) report() any {
	if r.Variant == VariantBasic {
		return r.BasicReport()
	}
	return r.DetailedReport()
}

func (r ImpactResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.report())
}

func (r ImpactResult) MarshalYAML() (any, error) {
	return r.report(), nil
}

// kinetics holds the terms shared by both variants.
type kinetics struct {
	momentum float64
	energyJ  float64
	energyMt float64
}

func computeKinetics(in ImpactInput) kinetics {
	vms := in.VelocityKms * 1000.0
	energy := 0.5 * in.MassKg * vms * vms
	return kinetics{
		momentum: in.MassKg * vms,
		energyJ:  energy,
		energyMt: energy / JoulesPerMegaton,
	}
}

// ComputeBasicImpact evaluates momentum, energy, Hiroshima equivalents and the
// basic crater-depth law.
func ComputeBasicImpact(in ImpactInput) (ImpactResult, error) {
	in, err := Validate(in)
	if err != nil {
		return ImpactResult{}, err
	}

	k := computeKinetics(in)
	result := ImpactResult{
		Variant:             VariantBasic,
		Input:               in,
		Momentum:            k.momentum,
		EnergyJ:             k.energyJ,
		EnergyMt:            k.energyMt,
		HiroshimaEquivalent: k.energyMt / HiroshimaMegatons,
		CraterDepthM:        0.1 * math.Pow(in.DiameterM, 0.3) * math.Pow(k.energyJ/1e15, 0.1) * 10,
	}
	if err := checkFinite(result); err != nil {
		return ImpactResult{}, err
	}
	return result, nil
}

// ComputeDetailedImpact evaluates the full metrics bundle using the detailed
// crater-depth law.
func ComputeDetailedImpact(in ImpactInput) (ImpactResult, error) {
	in, err := Validate(in)
	if err != nil {
		return ImpactResult{}, err
	}

	k := computeKinetics(in)
	depth := 0.2 * math.Pow(in.DiameterM, 0.33) * math.Pow(k.energyJ/1e15, 0.12) * 10
	craterKm := math.Max(0.001, depth*3/1000)

	// Guard the divisor for sub-meter footprints.
	footprint := math.Pi * (in.DiameterM * in.DiameterM)
	displacement := (k.energyJ / 1e9) / math.Max(1.0, math.Sqrt(footprint))

	result := ImpactResult{
		Variant:            VariantDetailed,
		Input:              in,
		Momentum:           k.momentum,
		EnergyJ:            k.energyJ,
		EnergyMt:           k.energyMt,
		CraterDepthM:       depth,
		CraterDiameterKm:   craterKm,
		DisplacementM:      displacement,
		SeismicMagnitudeMw: math.Max(0.0, 0.5+math.Log10(k.energyJ)*0.166),
		BlastRadiusKm:      math.Max(0.1, math.Pow(k.energyJ/1e15, 0.33)*10),
		SummaryText:        Summary(k.energyJ, k.energyMt, craterKm),
	}
	if err := checkFinite(result); err != nil {
		return ImpactResult{}, err
	}
	return result, nil
}

// checkFinite rejects results whose metrics overflowed float64. Inputs that
// pass validation can still be large enough to do that.
func checkFinite(r ImpactResult) error {
	for _, m := range []struct {
		field string
		value float64
	}{
		{"momentum", r.Momentum},
		{"impact_energy_j", r.EnergyJ},
		{"impact_energy_mt", r.EnergyMt},
		{"hiroshima_equivalent", r.HiroshimaEquivalent},
		{"crater_depth_m", r.CraterDepthM},
		{"crater_diameter_km", r.CraterDiameterKm},
		{"displacement_m", r.DisplacementM},
		{"seismic_magnitude_mw", r.SeismicMagnitudeMw},
		{"blast_radius_km", r.BlastRadiusKm},
	} {
		if math.IsNaN(m.value) || math.IsInf(m.value, 0) {
			return &InvalidInputError{Field: m.field, Reason: "result overflows; reduce velocity_kms or mass_kg"}
		}
	}
	return nil
}

// Summary renders the one-line digest shown next to the dashboard metrics.
func Summary(energyJ, energyMt, craterDiameterKm float64) string {
	return fmt.Sprintf("Estimated impact energy: %.3e J (%.3f Mt). Approx. crater diameter %.3f km.",
		energyJ, energyMt, craterDiameterKm)
}
