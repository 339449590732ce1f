package agent

import (
	"reflect"
	"testing"
)

func TestAnalyzeDetectsTools(t *testing.T) {
	result := QueryResult{
		Model:       "openrouter/openai/gpt-oss-120b",
		Prompt:      "List all Go files",
		Stdout:      "I will use read_file on main.go, then grep_search for TODO, then list_dir.",
		Success:     true,
		ElapsedSecs: 3.5,
	}

	a := Analyze(result)

	want := []string{"read_file", "grep_search", "list_dir"}
	if !reflect.DeepEqual(a.Metrics.ToolsUsed, want) {
		t.Errorf("ToolsUsed = %v, want %v", a.Metrics.ToolsUsed, want)
	}
	if a.Metrics.ToolCount != 3 {
		t.Errorf("ToolCount = %d, want 3", a.Metrics.ToolCount)
	}
	if a.Metrics.HasErrors {
		t.Error("HasErrors should be false for a successful run")
	}
	if a.ElapsedSecs != 3.5 {
		t.Errorf("ElapsedSecs = %f, want 3.5", a.ElapsedSecs)
	}
}

func TestAnalyzeNoToolKeywords(t *testing.T) {
	a := Analyze(QueryResult{Stdout: "The repository has three packages.", Success: true})
	if len(a.Metrics.ToolsUsed) != 0 {
		t.Errorf("expected empty tool list, got %v", a.Metrics.ToolsUsed)
	}
	if a.Metrics.ToolCount != 0 {
		t.Errorf("ToolCount = %d, want 0", a.Metrics.ToolCount)
	}
}

func TestAnalyzeFailureIsError(t *testing.T) {
	a := Analyze(QueryResult{Stdout: "", Stderr: "model not found", Success: false, ReturnCode: 1})
	if !a.Metrics.HasErrors {
		t.Error("HasErrors should be true when the run failed")
	}
}

func TestAnalyzeStderrAloneIsNotError(t *testing.T) {
	// Tools routinely emit warnings on stderr,  and the word "error" shows
	// up in code output; neither should flag the run.
	a := Analyze(QueryResult{
		Stdout:  "func handleError(err error) {}",
		Stderr:  "warning: deprecated flag",
		Success: true,
	})
	if a.Metrics.HasErrors {
		t.Error("HasErrors should track process failure only")
	}
}

func TestAnalyzeCodeDetection(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		want   bool
	}{
		{"fenced block", "Here you go:\n```go\nfunc main() {}\n```", true},
		{"python def", "def evaluate(x):\n    return x", true},
		{"class keyword", "class Evaluator:", true},
		{"prose only", "There are five files in this repository.", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Analyze(QueryResult{Stdout: tt.stdout, Success: true})
			if a.Metrics.HasCode != tt.want {
				t.Errorf("HasCode = %t, want %t", a.Metrics.HasCode, tt.want)
			}
		})
	}
}

func TestAnalyzeOperations(t *testing.T) {
	a := Analyze(QueryResult{
		Stdout:  "Reading config.go, then editing it. I will grep for usages and find callers, then create a test.",
		Success: true,
	})

	wantFile := []string{"read", "edit", "create"}
	if !reflect.DeepEqual(a.Metrics.FileOperations, wantFile) {
		t.Errorf("FileOperations = %v, want %v", a.Metrics.FileOperations, wantFile)
	}
	wantSearch := []string{"search", "find"}
	if !reflect.DeepEqual(a.Metrics.SearchOperations, wantSearch) {
		t.Errorf("SearchOperations = %v, want %v", a.Metrics.SearchOperations, wantSearch)
	}
}

func TestExtractSessionID(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"labeled session", "session ses-0a1b2c3d4e5f started", "ses-0a1b2c3d4e5f"},
		{"id line", "run id: run-2024-0142-aa17", "run-2024-0142-aa17"},
		{"no candidates", "all done, nothing to report", ""},
		{"short tokens only", "session a-b done", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractSessionID(tt.output); got != tt.want {
				t.Errorf("ExtractSessionID() = %q, want %q", got, tt.want)
			}
		})
	}
}
