package ai

import (
	"fmt"

	"github.com/poiesic/namescan/core"
)

// Answer is the outcome of one agent run.
type Answer struct {
	// Output is the model's final answer text.
	Output string
	// Records holds the matches from the last successful tool call.
	Records []core.AggregatedRecord
	// ToolCalls counts tool invocations made during the run.
	ToolCalls int
	// SessionID identifies the tool session in logs.
	SessionID string
}

// FindNameRequest phrases a name lookup the way the agent is prompted for it.
func FindNameRequest(name string) string {
	return fmt.Sprintf("Find all rows in the known relevant tables where a column like name matches '%s'", name)
}
