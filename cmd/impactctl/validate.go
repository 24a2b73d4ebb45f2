package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/couchcryptid/neo-impact-service/internal/catalog"
	"github.com/couchcryptid/neo-impact-service/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// phase tracks pass/fail for a validation phase. Warnings never fail it.
type phase struct {
	Name     string   `json:"name" yaml:"name"`
	Errors   []string `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func (p *phase) errorf(format string, args ...any) {
	p.Errors = append(p.Errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.Warnings = append(p.Warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.Errors) == 0 }

type report struct {
	File    string   `json:"file" yaml:"file"`
	Records int      `json:"records" yaml:"records"`
	Phases  []*phase `json:"phases" yaml:"phases"`
}

func (r report) passed() bool {
	for _, p := range r.Phases {
		if !p.passed() {
			return false
		}
	}
	return true
}

func newValidateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <catalog-file>",
		Short: "Check a catalog file before using it as the fallback catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := validateFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := render(cmd.OutOrStdout(), v.GetString("output"), rep, rep.print); err != nil {
				return err
			}
			if !rep.passed() {
				return fmt.Errorf("catalog %s failed validation", args[0])
			}
			return nil
		},
	}
}

func validateFile(ctx context.Context, path string) (report, error) {
	list, err := catalog.FileSource{Path: path}.Asteroids(ctx)
	if err != nil {
		return report{}, err
	}
	return report{
		File:    path,
		Records: len(list),
		Phases: []*phase{
			validateFields(list),
			validateUniqueness(list),
			validateResolution(list),
		},
	}, nil
}

// validateFields checks each record on its own.
func validateFields(list []catalog.Asteroid) *phase {
	p := &phase{Name: "record fields"}
	if len(list) == 0 {
		p.errorf("catalog is empty")
	}
	for i, a := range list {
		ref := fmt.Sprintf("record %d (%s)", i, a.DisplayName())
		if a.ID == "" {
			p.errorf("%s: missing id", ref)
		}
		if a.Label == "" && a.Name == "" {
			p.warnf("%s: no label or name, lookups by name cannot match it", ref)
		}
		checkQuantity(p, ref, "size", a.Size)
		checkQuantity(p, ref, "diameter_m", a.DiameterM)
		checkQuantity(p, ref, "mass", a.MassKg)
		checkQuantity(p, ref, "velocity_kms", a.VelocityKms)
		checkQuantity(p, ref, "velocity", a.Velocity)
		if math.IsNaN(a.R) || math.IsNaN(a.Theta) || math.IsNaN(a.Y) {
			p.errorf("%s: scene position is not a number", ref)
		}
	}
	return p
}

func checkQuantity(p *phase, ref, field string, v *float64) {
	if v == nil {
		return
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		p.errorf("%s: %s must be a non-negative finite number, got %v", ref, field, *v)
	}
}

// validateUniqueness checks that IDs and lookup names are not shared.
func validateUniqueness(list []catalog.Asteroid) *phase {
	p := &phase{Name: "uniqueness"}
	ids := make(map[catalog.ID]int, len(list))
	names := make(map[string]int, len(list))
	for i, a := range list {
		if a.ID != "" {
			if first, ok := ids[a.ID]; ok {
				p.errorf("record %d: id %q already used by record %d", i, a.ID, first)
			} else {
				ids[a.ID] = i
			}
		}
		for _, n := range []string{a.Label, a.Name} {
			key := strings.ToLower(strings.TrimSpace(n))
			if key == "" {
				continue
			}
			if first, ok := names[key]; ok && first != i {
				p.warnf("record %d: name %q shadowed by record %d", i, n, first)
			} else if !ok {
				names[key] = i
			}
		}
	}
	return p
}

// validateResolution checks that every named record yields a computable input
// without caller overrides.
func validateResolution(list []catalog.Asteroid) *phase {
	p := &phase{Name: "impact resolution"}
	records := catalog.Records(list)
	for i, rec := range records {
		name := rec.DisplayName()
		if rec.Label == "" && rec.Name == "" {
			continue
		}
		in, err := domain.ResolveInput(records, name, domain.Overrides{}, 0, "")
		if err != nil {
			p.errorf("record %d (%s): %v", i, name, err)
			continue
		}
		_, err = domain.ComputeDetailedImpact(in)
		var ie *domain.InvalidInputError
		switch {
		case err == nil:
		case errors.As(err, &ie) && ie.Field == "diameter_m" && in.DiameterM == 0:
			p.warnf("record %d (%s): no diameter, callers must supply diameter_m", i, name)
		default:
			p.errorf("record %d (%s): %v", i, name, err)
		}
	}
	return p
}

func (r report) print(w io.Writer) error {
	fmt.Fprintf(w, "catalog %s: %d records\n\n", r.File, r.Records)
	for _, p := range r.Phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.Errors))
		}
		fmt.Fprintf(w, "  %-20s %s\n", p.Name, status)
	}
	for _, p := range r.Phases {
		if len(p.Errors) == 0 && len(p.Warnings) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.Name)
		for i, e := range p.Errors {
			fmt.Fprintf(w, "  [E%d] %s\n", i+1, e)
		}
		for i, e := range p.Warnings {
			fmt.Fprintf(w, "  [W%d] %s\n", i+1, e)
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
