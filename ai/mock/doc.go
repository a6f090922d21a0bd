// Package mock provides a scripted language model for agent tests.
//
// MockModel implements langchaingo's llms.Model. It replies with a fixed
// sequence of completions, so an agent's tool calls and final answer can be
// driven deterministically without a model server.
//
// # Usage in Tests
//
//	model := mock.NewMockModel(
//	    "Thought: search\nAction: query_name_matches\nAction Input: Paula Erickson",
//	    "Thought: done\nFinal Answer: one match",
//	)
//
//	// Check what the agent sent
//	count := model.CallCount()
//	prompt := model.Prompts()[0]
//
// # Default Behavior
//
// Once the script is exhausted the model keeps returning its last reply.
// An empty script replies with an empty string.
package mock
