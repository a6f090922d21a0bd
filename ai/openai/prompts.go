package openai

import "strings"

// promptPrefix precedes the tool descriptions in the agent prompt.
// {{.today}} and {{.tool_descriptions}} are filled in by langchaingo.
const promptPrefix = `Today is {{.today}}.
You help a data protection officer locate personal data. You can only see the
databases through the tools below. Search for the person's name as it is given,
without inventing spelling variants; the search already ignores case and accents.
Do not guess at records: report only what the tool returned. If the tool returns
an empty list, say that no rows were found.

You have access to the following tools:

{{.tool_descriptions}}`

// trimAnswer strips surrounding whitespace and markdown code fences from a
// final answer.
func trimAnswer(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
