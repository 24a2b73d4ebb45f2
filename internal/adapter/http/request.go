package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 64 << 10

var errNotNumeric = errors.New("not a number")

// Number is a request field that accepts a JSON number or a numeric string.
// Absent and null leave it unset.
type Number struct {
	Value float64
	Set   bool
}

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*n = Number{}
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return errNotNumeric
		}
		*n = Number{Value: v, Set: true}
		return nil
	default:
		var v float64
		if err := json.Unmarshal(b, &v); err != nil {
			return errNotNumeric
		}
		*n = Number{Value: v, Set: true}
		return nil
	}
}

// Or returns the value when set and def otherwise.
func (n Number) Or(def float64) float64 {
	if n.Set {
		return n.Value
	}
	return def
}

// Ptr returns the value as a pointer, nil when unset.
func (n Number) Ptr() *float64 {
	if !n.Set {
		return nil
	}
	v := n.Value
	return &v
}

type impactRequest struct {
	VelocityKms Number `json:"velocity_kms"`
	MassKg      Number `json:"mass_kg"`
	DiameterM   Number `json:"diameter_m"`
}

type impactDetailsRequest struct {
	impactRequest
	DensityKgM3  Number `json:"density_kg_m3"`
	Target       string `json:"target" validate:"max=16"`
	AsteroidName string `json:"asteroid_name" validate:"max=200"`
	Name         string `json:"name" validate:"max=200"`
}

// asteroid returns the requested asteroid, preferring asteroid_name.
func (r impactDetailsRequest) asteroid() string {
	if name := strings.TrimSpace(r.AsteroidName); name != "" {
		return name
	}
	return strings.TrimSpace(r.Name)
}

type explainRequest struct {
	Term string `json:"term" validate:"max=128"`
}

type askRequest struct {
	Query    string `json:"query" validate:"max=4000"`
	Language string `json:"language" validate:"max=16"`
}

var requestValidate = validator.New(validator.WithRequiredStructEnabled())

// decodeBody reads an optional JSON object body. An empty body decodes to the
// zero value so every field falls back to its default.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if err := requestValidate.Struct(dst); err != nil {
		return fmt.Errorf("validate body: %w", err)
	}
	return nil
}
