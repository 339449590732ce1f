package agent

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// fakeBinary writes an executable shell script standing in for opencode.
func fakeBinary(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "opencode")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunQuerySuccess(t *testing.T) {
	bin := fakeBinary(t, `echo "session ses-1234567890ab"
echo "read_file main.go"
`)
	e := New(t.TempDir(), WithBinary(bin), WithPause(0))

	res := e.RunQuery(context.Background(), "openrouter/openai/gpt-oss-120b", "list files")
	if !res.Success {
		t.Fatalf("expected success, got stderr %q", res.Stderr)
	}
	if res.ReturnCode != 0 {
		t.Errorf("ReturnCode = %d, want 0", res.ReturnCode)
	}
	if res.ElapsedSecs <= 0 {
		t.Errorf("ElapsedSecs should be positive, got %f", res.ElapsedSecs)
	}
	if got := ExtractSessionID(res.Stdout); got != "ses-1234567890ab" {
		t.Errorf("ExtractSessionID = %q", got)
	}
}

func TestRunQueryNonZeroExit(t *testing.T) {
	bin := fakeBinary(t, `echo "fatal: no such model" >&2
exit 3
`)
	e := New(t.TempDir(), WithBinary(bin))

	res := e.RunQuery(context.Background(), "bad/model", "prompt")
	if res.Success {
		t.Error("expected failure")
	}
	if res.ReturnCode != 3 {
		t.Errorf("ReturnCode = %d, want 3", res.ReturnCode)
	}
	if res.Stderr == "" {
		t.Error("stderr should be captured")
	}
}

func TestRunQueryTimeout(t *testing.T) {
	bin := fakeBinary(t, "sleep 5\n")
	e := New(t.TempDir(), WithBinary(bin), WithTimeout(100*time.Millisecond))

	res := e.RunQuery(context.Background(), "m", "p")
	if res.Success {
		t.Error("expected timeout failure")
	}
	if res.Error != "timeout" {
		t.Errorf("Error = %q, want \"timeout\"", res.Error)
	}
	if res.ReturnCode != -1 {
		t.Errorf("ReturnCode = %d, want -1", res.ReturnCode)
	}
}

func TestRunQueryMissingBinary(t *testing.T) {
	e := New(t.TempDir(), WithBinary(filepath.Join(t.TempDir(), "nope")))

	res := e.RunQuery(context.Background(), "m", "p")
	if res.Success {
		t.Error("expected failure for missing binary")
	}
	if res.Error == "" {
		t.Error("Error should record the start failure")
	}
}

func TestExportSession(t *testing.T) {
	bin := fakeBinary(t, `if [ "$1" = "export" ]; then
  echo '{"session_id": "'$2'", "messages": []}'
  exit 0
fi
exit 1
`)
	e := New(t.TempDir(), WithBinary(bin))

	session, err := e.ExportSession(context.Background(), "ses-1234567890ab")
	if err != nil {
		t.Fatalf("ExportSession() failed: %v", err)
	}
	if session["session_id"] != "ses-1234567890ab" {
		t.Errorf("session_id = %v", session["session_id"])
	}
}

func TestExportSessionBadJSON(t *testing.T) {
	bin := fakeBinary(t, "echo 'not json'\n")
	e := New(t.TempDir(), WithBinary(bin))

	if _, err := e.ExportSession(context.Background(), "ses-1234567890ab"); err == nil {
		t.Error("expected parse error")
	}
}

func TestCompareModels(t *testing.T) {
	bin := fakeBinary(t, `case "$4" in
  good/*) echo "read_file done";;
  *) echo "boom" >&2; exit 1;;
esac
`)
	e := New(t.TempDir(), WithBinary(bin), WithPause(0))

	suite, err := e.CompareModels(context.Background(), "Smoke", []string{"good/model", "bad/model"}, []string{"p1", "p2"})
	if err != nil {
		t.Fatalf("CompareModels() failed: %v", err)
	}
	if suite.RunID == "" {
		t.Error("RunID should be set")
	}
	if suite.Scenario != "Smoke" {
		t.Errorf("Scenario = %q", suite.Scenario)
	}
	if len(suite.Results) != 2 {
		t.Fatalf("expected 2 prompt results, got %d", len(suite.Results))
	}
	for _, pr := range suite.Results {
		if len(pr.ModelResults) != 2 {
			t.Fatalf("expected 2 model results per prompt, got %d", len(pr.ModelResults))
		}
		if !pr.ModelResults[0].Analysis.Success {
			t.Error("good/model run should succeed")
		}
		if pr.ModelResults[1].Analysis.Success {
			t.Error("bad/model run should fail without aborting the suite")
		}
	}
}

func TestCompareModelsCancelled(t *testing.T) {
	bin := fakeBinary(t, "echo ok\n")
	e := New(t.TempDir(), WithBinary(bin), WithPause(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.CompareModels(ctx, "", []string{"m"}, []string{"p"}); err == nil {
		t.Error("expected cancellation error")
	}
}
