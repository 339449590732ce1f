package providers

import (
	"fmt"
	"strings"
)

// codeGenTemplate frames the ingested repository context around the user
// query so both backends receive an identical prompt.
const codeGenTemplate = `You are an expert code generator. Your task is to generate code based on the following repository context:

Repository Context:
%s

Instructions:
1. Generate code that strictly follows the repository's existing patterns and conventions
2. Use the same coding style, naming conventions, and structure as the codebase
3. Include clear, concise docstrings and comments explaining key functionality
4. Ensure the code integrates seamlessly with existing components
5. Focus on maintainability and readability

User query:
%s

Output only the code implementation without explanations or additional text.`

// CodeGenPrompt builds the shared code-generation prompt from repository
// content and a user query.
func CodeGenPrompt(repoContent, query string) string {
	return fmt.Sprintf(codeGenTemplate, repoContent, query)
}

// StripFences removes a leading markdown code fence (with or without a
// language tag) and a trailing fence from a model response, so raw code is
// what gets displayed and judged.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// Drop the language tag on the opening fence, if any.
		if idx := strings.IndexByte(s, '\n'); idx >= 0 {
			first := strings.TrimSpace(s[:idx])
			if first != "" && !strings.ContainsAny(first, " \t") {
				s = s[idx+1:]
			}
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
