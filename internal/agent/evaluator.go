// Package agent drives the opencode coding-agent CLI across models and
// prompts and scrapes its transcripts for tool-usage statistics.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultBinary       = "opencode"
	defaultQueryTimeout = 120 * time.Second
	defaultRunPause     = 2 * time.Second
	exportTimeout       = 30 * time.Second
)

// Evaluator runs opencode queries inside a target repository and analyzes
// the results. Runs are sequential; there is no shared state between
// queries beyond the appended result slice.
type Evaluator struct {
	repoPath string
	binary   string
	timeout  time.Duration
	pause    time.Duration
	logger   *zap.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithBinary overrides the opencode binary path.
func WithBinary(path string) Option {
	return func(e *Evaluator) {
		e.binary = path
	}
}

// WithTimeout sets the per-query timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Evaluator) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithPause sets the delay between consecutive queries.
func WithPause(d time.Duration) Option {
	return func(e *Evaluator) {
		e.pause = d
	}
}

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// New returns an Evaluator that runs queries with the given repository as
// the working directory.
func New(repoPath string, options ...Option) *Evaluator {
	e := &Evaluator{
		repoPath: repoPath,
		binary:   defaultBinary,
		timeout:  defaultQueryTimeout,
		pause:    defaultRunPause,
		logger:   zap.NewNop(),
	}
	for _, o := range options {
		o(e)
	}
	return e
}

// RunQuery invokes `opencode run <prompt> -m <model>` in the target repo
// and returns the captured result. Subprocess failure and timeout are
// recorded on the result rather than returned, so a suite keeps going.
func (e *Evaluator) RunQuery(ctx context.Context, model, prompt string) QueryResult {
	log := e.logger.Sugar().With("model", model)
	log.Infof("running opencode query: %.100s", prompt)

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.binary, "run", prompt, "-m", model)
	cmd.Dir = e.repoPath
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start).Seconds()

	res := QueryResult{
		Model:       model,
		Prompt:      prompt,
		Stdout:      stdout.String(),
		Stderr:      stderr.String(),
		ElapsedSecs: elapsed,
	}

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		res.Stdout = ""
		res.Stderr = fmt.Sprintf("Timeout after %.0fs", e.timeout.Seconds())
		res.ReturnCode = -1
		res.ElapsedSecs = e.timeout.Seconds()
		res.Error = "timeout"
		log.Errorf("query timed out after %s", e.timeout)

	case err != nil:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ReturnCode = exitErr.ExitCode()
		} else {
			// Start failure, e.g. binary not found.
			res.ReturnCode = -1
			res.Stderr = err.Error()
			res.Error = err.Error()
		}
		log.Errorf("query failed: %v", err)

	default:
		res.Success = true
	}

	log.Infof("query completed in %.2fs (returncode %d)", res.ElapsedSecs, res.ReturnCode)
	return res
}

// ExtractSessionID scans run output for something that looks like an
// opencode session identifier: a token longer than ten characters
// containing a dash, on a line mentioning "session" or "id".
func ExtractSessionID(output string) string {
	for _, line := range strings.Split(output, "\n") {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "session") && !strings.Contains(lower, "id") {
			continue
		}
		for _, part := range strings.Fields(line) {
			if len(part) > 10 && strings.Contains(part, "-") {
				return part
			}
		}
	}
	return ""
}

// ExportSession runs `opencode export <id>` and parses its JSON output.
func (e *Evaluator) ExportSession(ctx context.Context, sessionID string) (map[string]any, error) {
	e.logger.Sugar().Infof("exporting session %s", sessionID)

	exportCtx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()

	cmd := exec.CommandContext(exportCtx, e.binary, "export", sessionID)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("could not export session %s: %w (stderr: %s)", sessionID, err, strings.TrimSpace(stderr.String()))
	}

	var session map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &session); err != nil {
		return nil, fmt.Errorf("could not parse session export: %w", err)
	}
	return session, nil
}

// CompareModels runs every model against every prompt sequentially and
// returns the full suite artifact. A failing query is recorded and the
// comparison continues; only context cancellation aborts the suite.
func (e *Evaluator) CompareModels(ctx context.Context, scenario string, models, prompts []string) (*SuiteResult, error) {
	suite := &SuiteResult{
		RunID:     uuid.NewString(),
		Scenario:  scenario,
		StartedAt: time.Now(),
	}

	for _, prompt := range prompts {
		e.logger.Sugar().Infof("testing prompt: %.100s", prompt)

		pr := PromptResult{Prompt: prompt}
		for _, model := range models {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			raw := e.RunQuery(ctx, model, prompt)
			pr.ModelResults = append(pr.ModelResults, ModelResult{
				Model:    model,
				Raw:      raw,
				Analysis: Analyze(raw),
			})

			if e.pause > 0 {
				select {
				case <-time.After(e.pause):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
		}
		suite.Results = append(suite.Results, pr)
	}

	return suite, nil
}
