package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func encodeMap(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestImpactResult_BasicEncoding(t *testing.T) {
	result, err := ComputeBasicImpact(refInput())
	require.NoError(t, err)
	assert.Equal(t, VariantBasic, result.Variant)

	m := encodeMap(t, result)
	for _, key := range []string{"momentum", "impact_energy_j", "impact_energy_mt", "hiroshima_equivalent", "crater_depth_m"} {
		assert.Contains(t, m, key)
	}
	for _, key := range []string{"crater_diameter_km", "displacement_m", "seismic_magnitude_mw", "blast_radius_km", "summary_text"} {
		assert.NotContains(t, m, key)
	}

	input := m["input"].(map[string]any)
	assert.Len(t, input, 3)
	assert.NotContains(t, input, "density_kg_m3")
	assert.NotContains(t, input, "target")
}

func TestImpactResult_DetailedEncodingKeepsFlooredFields(t *testing.T) {
	result, err := ComputeDetailedImpact(ImpactInput{VelocityKms: 0.001, MassKg: 1e-6, DiameterM: 0.01})
	require.NoError(t, err)
	require.Zero(t, result.SeismicMagnitudeMw)
	assert.Equal(t, VariantDetailed, result.Variant)

	m := encodeMap(t, result)
	assert.Contains(t, m, "seismic_magnitude_mw")
	assert.InDelta(t, 0.0, m["seismic_magnitude_mw"], 0)
	assert.InDelta(t, 0.1, m["blast_radius_km"], 0)
	assert.InDelta(t, 0.001, m["crater_diameter_km"], 0)
	assert.Contains(t, m, "summary_text")
	assert.NotContains(t, m, "hiroshima_equivalent")

	input := m["input"].(map[string]any)
	assert.Equal(t, "ground", input["target"])
}

func TestImpactResult_NoVariantEncodesDetailed(t *testing.T) {
	m := encodeMap(t, ImpactResult{EnergyJ: 1})
	assert.Contains(t, m, "seismic_magnitude_mw")
	assert.NotContains(t, m, "hiroshima_equivalent")
}

func TestImpactResult_YAMLFollowsVariant(t *testing.T) {
	result, err := ComputeBasicImpact(refInput())
	require.NoError(t, err)

	data, err := yaml.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hiroshima_equivalent:")
	assert.NotContains(t, string(data), "blast_radius_km:")
	assert.NotContains(t, string(data), "target:")
}

func TestCompute_OverflowIsInvalidInput(t *testing.T) {
	in := ImpactInput{VelocityKms: 1e200, MassKg: 1e200, DiameterM: 100}
	for name, compute := range map[string]func(ImpactInput) (ImpactResult, error){
		"basic":    ComputeBasicImpact,
		"detailed": ComputeDetailedImpact,
	} {
		result, err := compute(in)
		require.Error(t, err, name)
		assert.ErrorIs(t, err, ErrInvalidInput, name)
		assert.Equal(t, ImpactResult{}, result, name)

		var inv *InvalidInputError
		require.ErrorAs(t, err, &inv)
		assert.Equal(t, "momentum", inv.Field, name)
		assert.Contains(t, inv.Reason, "overflows", name)
	}
}

func TestInputValidate_FiniteRegistered(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Error(t, inputValidate.Var(math.Inf(1), "finite"))
		assert.Error(t, inputValidate.Var(math.NaN(), "finite"))
		assert.NoError(t, inputValidate.Var(1.5, "finite"))
	})
}
