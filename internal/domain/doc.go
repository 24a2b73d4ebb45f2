// Package domain computes simplified asteroid impact metrics.
//
// # Units
//
// Inputs use the units the front end speaks: velocity in km/s, mass in kg,
// diameter in m, density in kg/m³. Velocity is converted to m/s before any
// energy term is evaluated. Outputs are joules, megatons TNT (1 Mt =
// 4.184e15 J), meters for crater depth and displacement, kilometers for
// crater diameter and blast radius, and moment magnitude (Mw) for the
// seismic estimate.
//
// # Scaling laws
//
// The crater, displacement, seismic and blast terms are illustrative
// heuristics, not physical derivations. Their constants and exponents are
// reproduced exactly because clients compare outputs numerically:
//
//	basic crater depth:    0.1 · d^0.3  · (E/1e15)^0.1  · 10
//	detailed crater depth: 0.2 · d^0.33 · (E/1e15)^0.12 · 10
//	crater diameter:       max(0.001, depth · 3 / 1000) km
//	displacement:          (E/1e9) / max(1, sqrt(π·d²)) m
//	seismic magnitude:     max(0, 0.5 + log10(E) · 0.166) Mw
//	blast radius:          max(0.1, (E/1e15)^0.33 · 10) km
//
// The basic and detailed crater laws disagree for the same physical
// quantity. Both are exposed as separate operations.
//
// # Target medium
//
// Target (ground, air, water) is validated and echoed back but never
// changes the arithmetic.
//
// # Asteroid resolution
//
// When a caller names an asteroid instead of supplying raw numbers,
// [ResolveInput] merges overrides over the matching catalog record. Mass
// falls back to a sphere estimate from diameter ([EstimateMassFromDiameter]),
// and velocity and mass have demo fallbacks of 20 km/s and 1e9 kg.
//
// Every exported compute function is pure and safe for concurrent use.
package domain
