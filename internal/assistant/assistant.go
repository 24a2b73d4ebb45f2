// Package assistant answers astronomy questions for the front end, using an
// LLM when one is configured and fixed answers otherwise.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/neo-impact-service/internal/observability"
)

// FallbackAnswer is returned by Ask whenever no model answer is available.
const FallbackAnswer = "I’m here and listening. I couldn’t reach the server just now, but here’s a quick answer based on general space knowledge. Ask about asteroids, impact energy, NASA missions, or planetary defense, and I’ll guide you with concise explanations and next steps."

const defaultTerm = "asteroid"

var canned = map[string]string{
	"asteroid": "Asteroids are small rocky bodies orbiting the Sun. Many are found in the main asteroid belt between Mars and Jupiter.",
	"impact":   "An impact occurs when an object collides with a planet. Key metrics include kinetic energy, momentum, and crater size.",
	"neocp":    "NEO (Near-Earth Object) is an asteroid or comet whose orbit brings it close to Earth's orbit.",
}

var (
	// ErrUpstream wraps failures of the LLM backend.
	ErrUpstream = errors.New("external LLM call failed")
	// ErrEmptyQuery is returned by Ask for a blank question.
	ErrEmptyQuery = errors.New("query must not be empty")
)

// Completer produces a model answer for a system and user prompt.
type Completer interface {
	Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error)
}

// Assistant serves term explanations and free-form questions.
type Assistant struct {
	llm       Completer
	maxTokens int
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// New creates an Assistant. A nil llm serves canned answers only.
func New(llm Completer, maxTokens int, metrics *observability.Metrics, logger *slog.Logger) *Assistant {
	a := &Assistant{llm: llm, maxTokens: maxTokens, metrics: metrics, logger: logger}
	if a.Enabled() {
		metrics.LLMEnabled.Set(1)
	} else {
		metrics.LLMEnabled.Set(0)
	}
	return a
}

// Enabled reports whether requests reach an LLM.
func (a *Assistant) Enabled() bool { return a.llm != nil }

// Explanation is the answer for one term.
type Explanation struct {
	Term string
	Text string
}

// Explain describes an astronomy term. A blank term means "asteroid".
// Without an LLM unknown terms get the asteroid answer.
func (a *Assistant) Explain(ctx context.Context, term string) (Explanation, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		term = defaultTerm
	}

	if !a.Enabled() {
		a.metrics.LLMRequests.WithLabelValues("explain", "fallback").Inc()
		text, ok := canned[strings.ToLower(term)]
		if !ok {
			text = canned[defaultTerm]
		}
		return Explanation{Term: term, Text: text}, nil
	}

	text, err := a.llm.Complete(ctx, explainSystemPrompt, "Explain the astronomy term: "+term, a.maxTokens)
	if err != nil {
		a.metrics.LLMRequests.WithLabelValues("explain", "error").Inc()
		a.logger.Error("explain request failed", "term", term, "error", err)
		return Explanation{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	a.metrics.LLMRequests.WithLabelValues("explain", "success").Inc()
	return Explanation{Term: term, Text: text}, nil
}

// Ask answers a free-form question in the requested language. It only fails
// for a blank query; backend problems yield FallbackAnswer.
func (a *Assistant) Ask(ctx context.Context, query, language string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}

	if !a.Enabled() {
		a.metrics.LLMRequests.WithLabelValues("ask", "fallback").Inc()
		return FallbackAnswer, nil
	}

	answer, err := a.llm.Complete(ctx, askSystemPrompt(language), query, a.maxTokens)
	if err != nil || strings.TrimSpace(answer) == "" {
		a.metrics.LLMRequests.WithLabelValues("ask", "fallback").Inc()
		a.logger.Warn("ask request failed, serving fallback", "error", err)
		return FallbackAnswer, nil
	}
	a.metrics.LLMRequests.WithLabelValues("ask", "success").Inc()
	return answer, nil
}

const explainSystemPrompt = "You explain astronomy terms to a general audience in two or three sentences."

func askSystemPrompt(language string) string {
	language = strings.TrimSpace(language)
	if language == "" {
		language = "en"
	}
	return "You are Space AI, a concise guide to asteroids, impact energy, NASA missions and planetary defense. " +
		"Answer in the language with code " + language + "."
}
