package tool

import (
	"context"

	"github.com/tmc/langchaingo/tools"
)

// LangchainTool adapts a Tool to langchaingo's tools.Tool. Results are
// returned to the agent as JSON text.
type LangchainTool struct {
	tool    Tool
	session *Session
}

var _ tools.Tool = (*LangchainTool)(nil)

// NewLangchainTool wraps t. When session is non-nil every call goes through
// it and counts against its limit.
func NewLangchainTool(t Tool, session *Session) *LangchainTool {
	return &LangchainTool{tool: t, session: session}
}

// LangchainTools wraps every tool of registry, all sharing session.
func LangchainTools(registry *Registry, session *Session) []tools.Tool {
	out := make([]tools.Tool, 0)
	for _, t := range registry.Tools() {
		out = append(out, NewLangchainTool(t, session))
	}
	return out
}

func (l *LangchainTool) Name() string { return l.tool.Name() }

func (l *LangchainTool) Description() string { return l.tool.Description() }

func (l *LangchainTool) Call(ctx context.Context, input string) (string, error) {
	var (
		result any
		err    error
	)
	if l.session != nil {
		result, err = l.session.Invoke(ctx, l.tool.Name(), input)
	} else {
		result, err = l.tool.Invoke(ctx, input)
	}
	if err != nil {
		return "", err
	}
	return Encode(result)
}
