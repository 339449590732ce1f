package providers

import (
	"strings"
	"testing"
)

func TestCodeGenPrompt(t *testing.T) {
	prompt := CodeGenPrompt("file: main.go\npackage main", "add a version flag")
	if !strings.Contains(prompt, "package main") {
		t.Error("prompt should embed the repository content")
	}
	if !strings.Contains(prompt, "add a version flag") {
		t.Error("prompt should embed the user query")
	}
	if !strings.Contains(prompt, "Output only the code implementation") {
		t.Error("prompt should carry the output instruction")
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"python fence", "```python\nprint('hi')\n```", "print('hi')"},
		{"bare fence", "```\nprint('hi')\n```", "print('hi')"},
		{"go fence", "```go\nfunc main() {}\n```", "func main() {}"},
		{"no fence", "print('hi')", "print('hi')"},
		{"surrounding whitespace", "  \n```python\nx = 1\n```\n  ", "x = 1"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
