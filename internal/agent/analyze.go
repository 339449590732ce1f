package agent

import "strings"

// toolKeywords are the agent tool names looked for in a transcript.
var toolKeywords = []string{
	"read_file", "edit", "grep_search", "file_search",
	"run_in_terminal", "list_dir", "semantic_search",
	"fetch_url", "web_search", "mkdir", "delete_file",
}

// Analyze derives quality metrics from one query result. It is a flat
// single-pass scan of the transcript text; order of detected keywords is
// not significant.
func Analyze(result QueryResult) Analysis {
	output := result.Stdout

	tools := detectTools(output)
	return Analysis{
		Model:       result.Model,
		Prompt:      result.Prompt,
		ElapsedSecs: result.ElapsedSecs,
		Success:     result.Success,
		Metrics: Metrics{
			ToolsUsed: tools,
			ToolCount: len(tools),
			// Only count actual process failures. Stderr alone is not an
			// error signal, and the word "error" shows up in ordinary code
			// and docs.
			HasErrors:        !result.Success,
			ResponseLength:   len(output),
			HasCode:          hasCode(output),
			FileOperations:   detectFileOperations(output),
			SearchOperations: detectSearchOperations(output),
		},
	}
}

// detectTools returns the tool keywords mentioned in the output. A
// transcript with no recognized keyword yields an empty list.
func detectTools(output string) []string {
	lower := strings.ToLower(output)
	var tools []string
	for _, tool := range toolKeywords {
		if strings.Contains(lower, tool) {
			tools = append(tools, tool)
		}
	}
	return tools
}

func detectFileOperations(output string) []string {
	lower := strings.ToLower(output)
	var ops []string
	if strings.Contains(lower, "read") || strings.Contains(lower, "reading") {
		ops = append(ops, "read")
	}
	if strings.Contains(lower, "edit") || strings.Contains(lower, "editing") || strings.Contains(lower, "modif") {
		ops = append(ops, "edit")
	}
	if strings.Contains(lower, "creat") {
		ops = append(ops, "create")
	}
	if strings.Contains(lower, "delet") {
		ops = append(ops, "delete")
	}
	return ops
}

func detectSearchOperations(output string) []string {
	lower := strings.ToLower(output)
	var ops []string
	if strings.Contains(lower, "grep") || strings.Contains(lower, "search") {
		ops = append(ops, "search")
	}
	if strings.Contains(lower, "find") {
		ops = append(ops, "find")
	}
	return ops
}

func hasCode(output string) bool {
	return strings.Contains(output, "```") ||
		strings.Contains(output, "def ") ||
		strings.Contains(output, "class ")
}
