// Package judge scores generated code with a judge model under a fixed
// three-metric rubric shared by every provider being compared.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// MetricScore is one rubric metric with its judge-provided reasoning.
type MetricScore struct {
	Score  float64 `json:"score"`  // always within [0, 10]
	Reason string  `json:"reason"`
}

// Evaluation is the full rubric result for one generated snippet.
type Evaluation struct {
	Correctness   MetricScore `json:"correctness"`
	Readability   MetricScore `json:"readability"`
	BestPractices MetricScore `json:"best_practices"`
	Overall       float64     `json:"overall_score"` // weighted average of the three metrics
}

// Completer is the slice of the provider client the judge needs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Judge evaluates code via a judge model.
type Judge struct {
	client Completer
	logger *zap.Logger
}

// Option configures a Judge.
type Option func(*Judge)

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(j *Judge) {
		j.logger = logger
	}
}

// New returns a Judge backed by the given completion client.
func New(client Completer, options ...Option) *Judge {
	j := &Judge{
		client: client,
		logger: zap.NewNop(),
	}
	for _, o := range options {
		o(j)
	}
	return j
}

const rubricTemplate = `You are a strict code reviewer. Evaluate the following generated code on three metrics, each scored 0-10:
- correctness: does the code do what it claims, free of bugs?
- readability: naming, structure, clarity.
- best_practices: idiomatic usage, error handling, conventions.
%s
Generated code:
%s

Respond with exactly one JSON object and nothing else, in this shape:
{"correctness": {"score": 0, "reason": ""}, "readability": {"score": 0, "reason": ""}, "best_practices": {"score": 0, "reason": ""}}`

// Evaluate scores the given code. When reference is non-empty it is
// included in the judge prompt as ground truth to compare against.
// Metric scores are clamped to [0, 10] and the overall score is their
// weighted average (equal weights).
func (j *Judge) Evaluate(ctx context.Context, code, reference string) (*Evaluation, error) {
	refSection := ""
	if reference != "" {
		refSection = fmt.Sprintf("\nReference code (ground truth) to compare against:\n%s\n", reference)
	}
	prompt := fmt.Sprintf(rubricTemplate, refSection, code)

	raw, err := j.client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("judge request failed: %w", err)
	}

	ev, err := parseEvaluation(raw)
	if err != nil {
		return nil, err
	}

	j.logger.Sugar().With(
		"correctness", ev.Correctness.Score,
		"readability", ev.Readability.Score,
		"best_practices", ev.BestPractices.Score,
		"overall", ev.Overall,
	).Info("evaluation complete")

	return ev, nil
}

// parseEvaluation extracts the JSON rubric object from a judge response,
// tolerating code fences and surrounding prose.
func parseEvaluation(raw string) (*Evaluation, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("judge response contains no JSON object: %q", preview(raw))
	}

	var ev Evaluation
	if err := json.Unmarshal([]byte(raw[start:end+1]), &ev); err != nil {
		return nil, fmt.Errorf("could not parse judge response: %w", err)
	}

	ev.Correctness.Score = clamp(ev.Correctness.Score)
	ev.Readability.Score = clamp(ev.Readability.Score)
	ev.BestPractices.Score = clamp(ev.BestPractices.Score)
	ev.Overall = (ev.Correctness.Score + ev.Readability.Score + ev.BestPractices.Score) / 3
	return &ev, nil
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

func preview(s string) string {
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
