package http

import (
	"errors"
	"net/http"

	"github.com/couchcryptid/neo-impact-service/internal/assistant"
	"github.com/couchcryptid/neo-impact-service/internal/catalog"
	"github.com/couchcryptid/neo-impact-service/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/couchcryptid/neo-impact-service/internal/adapter/http"

// Fallbacks for the basic route only. They keep the demo usable when the
// caller omits a field and carry no physical meaning.
const (
	fallbackVelocityKms = domain.FallbackVelocityKms
	fallbackMassKg      = domain.FallbackMassKg
	fallbackDiameterM   = 100.0
)

const (
	msgInvalidNumeric  = "Invalid numeric input"
	msgInvalidDetailed = "Invalid numeric input or missing asteroid data"
)

type asteroidsResponse struct {
	Status string              `json:"status"`
	Data   []catalog.Asteroid  `json:"data"`
	List   []catalog.ListEntry `json:"list"`
}

type impactResponse struct {
	Status string `json:"status"`
	domain.BasicReport
}

type impactDetailsResponse struct {
	Status       string `json:"status"`
	AsteroidName string `json:"asteroid_name,omitempty"`
	domain.DetailedReport
}

type explainResponse struct {
	Status      string `json:"status"`
	Term        string `json:"term"`
	Explanation string `json:"explanation"`
}

type askResponse struct {
	Response string `json:"response"`
}

func (s *Server) handleAsteroids(w http.ResponseWriter, r *http.Request) {
	list, err := s.catalog.Asteroids(r.Context())
	if err != nil {
		s.logger.Error("load asteroid catalog", "error", err)
		writeError(w, http.StatusInternalServerError, errorBody{Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, asteroidsResponse{
		Status: "ok",
		Data:   list,
		List:   catalog.Simplify(list),
	})
}

func (s *Server) handleImpact(w http.ResponseWriter, r *http.Request) {
	var req impactRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.metrics.Computations.WithLabelValues(string(domain.VariantBasic), "invalid").Inc()
		writeError(w, http.StatusBadRequest, errorBody{Message: msgInvalidNumeric, Detail: err.Error()})
		return
	}

	in := domain.ImpactInput{
		VelocityKms: req.VelocityKms.Or(fallbackVelocityKms),
		MassKg:      req.MassKg.Or(fallbackMassKg),
		DiameterM:   req.DiameterM.Or(fallbackDiameterM),
	}
	result, err := domain.ComputeBasicImpact(in)
	if err != nil {
		s.metrics.Computations.WithLabelValues(string(domain.VariantBasic), "invalid").Inc()
		writeError(w, http.StatusBadRequest, invalidBody(msgInvalidNumeric, err))
		return
	}

	s.metrics.Computations.WithLabelValues(string(domain.VariantBasic), "success").Inc()
	s.publish(domain.NewAssessment(domain.VariantBasic, "", result))
	writeJSON(w, http.StatusOK, impactResponse{Status: "ok", BasicReport: result.BasicReport()})
}

func (s *Server) handleImpactDetails(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer(tracerName).Start(r.Context(), "impact.detailed")
	defer span.End()

	var req impactDetailsRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.metrics.Computations.WithLabelValues(string(domain.VariantDetailed), "invalid").Inc()
		writeError(w, http.StatusBadRequest, errorBody{Message: msgInvalidDetailed, Detail: err.Error()})
		return
	}

	name := req.asteroid()
	overrides := domain.Overrides{
		VelocityKms: req.VelocityKms.Ptr(),
		MassKg:      req.MassKg.Ptr(),
		DiameterM:   req.DiameterM.Ptr(),
	}
	span.SetAttributes(attribute.String("asteroid.name", name))

	var records []domain.AsteroidRecord
	if name != "" && !overrides.Complete() {
		list, err := s.catalog.Asteroids(ctx)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			s.logger.Error("load asteroid catalog", "error", err)
			writeError(w, http.StatusBadGateway, errorBody{Message: "Asteroid catalog unavailable", Detail: err.Error()})
			return
		}
		records = catalog.Records(list)
	}

	in, err := domain.ResolveInput(records, name, overrides, req.DensityKgM3.Value, domain.Target(req.Target))
	if err != nil {
		if errors.Is(err, domain.ErrAsteroidNotFound) {
			s.metrics.Computations.WithLabelValues(string(domain.VariantDetailed), "not_found").Inc()
			writeError(w, http.StatusNotFound, errorBody{Message: err.Error()})
			return
		}
		s.metrics.Computations.WithLabelValues(string(domain.VariantDetailed), "invalid").Inc()
		writeError(w, http.StatusBadRequest, invalidBody(msgInvalidDetailed, err))
		return
	}

	result, err := domain.ComputeDetailedImpact(in)
	if err != nil {
		s.metrics.Computations.WithLabelValues(string(domain.VariantDetailed), "invalid").Inc()
		writeError(w, http.StatusBadRequest, invalidBody(msgInvalidDetailed, err))
		return
	}

	span.SetAttributes(attribute.Float64("impact.energy_mt", result.EnergyMt))
	s.metrics.Computations.WithLabelValues(string(domain.VariantDetailed), "success").Inc()
	s.publish(domain.NewAssessment(domain.VariantDetailed, name, result))
	writeJSON(w, http.StatusOK, impactDetailsResponse{Status: "ok", AsteroidName: name, DetailedReport: result.DetailedReport()})
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errorBody{Message: "Invalid request body", Detail: err.Error()})
		return
	}

	exp, err := s.assistant.Explain(r.Context(), req.Term)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errorBody{Message: "External LLM call failed", Detail: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, explainResponse{Status: "ok", Term: exp.Term, Explanation: exp.Text})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errorBody{Message: "Invalid request body", Detail: err.Error()})
		return
	}

	answer, err := s.assistant.Ask(r.Context(), req.Query, req.Language)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, errorBody{Message: err.Error()})
			return
		}
		s.logger.Error("ask failed", "error", err)
		answer = assistant.FallbackAnswer
	}
	writeJSON(w, http.StatusOK, askResponse{Response: answer})
}

func (s *Server) publish(a domain.Assessment) {
	if s.sink != nil {
		s.sink.Enqueue(a)
	}
}

func invalidBody(message string, err error) errorBody {
	body := errorBody{Message: message, Detail: err.Error()}
	var inv *domain.InvalidInputError
	if errors.As(err, &inv) {
		body.Field = inv.Field
	}
	return body
}
