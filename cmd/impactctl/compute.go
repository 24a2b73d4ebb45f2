package main

import (
	"context"
	"fmt"
	"io"

	"github.com/couchcryptid/neo-impact-service/internal/catalog"
	"github.com/couchcryptid/neo-impact-service/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newBasicCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "basic",
		Short: "Compute momentum, energy, Hiroshima equivalents and crater depth",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bindFlags(v, cmd)
			result, err := domain.ComputeBasicImpact(domain.ImpactInput{
				VelocityKms: v.GetFloat64("velocity"),
				MassKg:      v.GetFloat64("mass"),
				DiameterM:   v.GetFloat64("diameter"),
			})
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), v.GetString("output"), result, func(w io.Writer) error {
				return printResult(w, result)
			})
		},
	}
	cmd.Flags().Float64("velocity", domain.FallbackVelocityKms, "impact velocity in km/s")
	cmd.Flags().Float64("mass", domain.FallbackMassKg, "impactor mass in kg")
	cmd.Flags().Float64("diameter", 100, "impactor diameter in m")
	return cmd
}

func newDetailedCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detailed",
		Short: "Compute the full dashboard metrics, optionally for a catalog asteroid",
		Long: "Compute the full dashboard metrics. With --asteroid the missing values are\n" +
			"taken from the catalog file (or the built-in samples when --catalog is empty).\n" +
			"Zero-valued physical flags count as not supplied.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bindFlags(v, cmd)

			overrides := domain.Overrides{
				VelocityKms: nonZero(v.GetFloat64("velocity")),
				MassKg:      nonZero(v.GetFloat64("mass")),
				DiameterM:   nonZero(v.GetFloat64("diameter")),
			}
			name := v.GetString("asteroid")

			var records []domain.AsteroidRecord
			if name != "" && !overrides.Complete() {
				list, err := loadCatalog(cmd.Context(), v.GetString("catalog"))
				if err != nil {
					return err
				}
				records = catalog.Records(list)
			}

			in, err := domain.ResolveInput(records, name, overrides, v.GetFloat64("density"), domain.Target(v.GetString("target")))
			if err != nil {
				return err
			}
			result, err := domain.ComputeDetailedImpact(in)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), v.GetString("output"), result, func(w io.Writer) error {
				return printResult(w, result)
			})
		},
	}
	cmd.Flags().Float64("velocity", 0, "impact velocity in km/s")
	cmd.Flags().Float64("mass", 0, "impactor mass in kg")
	cmd.Flags().Float64("diameter", 0, "impactor diameter in m")
	cmd.Flags().Float64("density", domain.DefaultDensityKgM3, "impactor density in kg/m³")
	cmd.Flags().String("target", string(domain.TargetGround), "ground, air or water")
	cmd.Flags().String("asteroid", "", "catalog label or name to take missing values from")
	cmd.Flags().String("catalog", "", "catalog file (.json, .yaml); built-in samples when empty")
	return cmd
}

func newMassCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mass",
		Short: "Estimate the mass of a spherical impactor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bindFlags(v, cmd)
			d := v.GetFloat64("diameter")
			if d <= 0 {
				return &domain.InvalidInputError{Field: "diameter_m", Reason: "must be greater than 0"}
			}
			rho := v.GetFloat64("density")
			out := struct {
				DiameterM   float64 `json:"diameter_m" yaml:"diameter_m"`
				DensityKgM3 float64 `json:"density_kg_m3" yaml:"density_kg_m3"`
				MassKg      float64 `json:"mass_kg" yaml:"mass_kg"`
			}{d, rho, domain.EstimateMassFromDiameter(d, rho)}

			return render(cmd.OutOrStdout(), v.GetString("output"), out, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "mass: %.6g kg\n", out.MassKg)
				return err
			})
		},
	}
	cmd.Flags().Float64("diameter", 100, "impactor diameter in m")
	cmd.Flags().Float64("density", domain.DefaultDensityKgM3, "impactor density in kg/m³")
	return cmd
}

func loadCatalog(ctx context.Context, path string) ([]catalog.Asteroid, error) {
	if path == "" {
		return catalog.Samples(), nil
	}
	return catalog.FileSource{Path: path}.Asteroids(ctx)
}

func nonZero(f float64) *float64 {
	if f == 0 {
		return nil
	}
	return &f
}

func printResult(w io.Writer, r domain.ImpactResult) error {
	lines := []struct {
		label string
		value float64
		unit  string
		show  bool
	}{
		{"momentum", r.Momentum, "kg·m/s", true},
		{"energy", r.EnergyJ, "J", true},
		{"energy", r.EnergyMt, "Mt TNT", true},
		{"hiroshima equivalent", r.HiroshimaEquivalent, "×", r.HiroshimaEquivalent != 0},
		{"crater depth", r.CraterDepthM, "m", true},
		{"crater diameter", r.CraterDiameterKm, "km", r.CraterDiameterKm != 0},
		{"displacement", r.DisplacementM, "m", r.DisplacementM != 0},
		{"seismic magnitude", r.SeismicMagnitudeMw, "Mw", r.SeismicMagnitudeMw != 0},
		{"blast radius", r.BlastRadiusKm, "km", r.BlastRadiusKm != 0},
	}
	for _, l := range lines {
		if !l.show {
			continue
		}
		if _, err := fmt.Fprintf(w, "%-22s %.6g %s\n", l.label+":", l.value, l.unit); err != nil {
			return err
		}
	}
	if r.SummaryText != "" {
		_, err := fmt.Fprintln(w, r.SummaryText)
		return err
	}
	return nil
}
