// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import (
	"context"
	"fmt"
	"log/slog"

	jsoniter "github.com/json-iterator/go"
	"github.com/poiesic/namescan/ai"
	"github.com/poiesic/namescan/core"
	"github.com/poiesic/namescan/tool"
	"github.com/tmc/langchaingo/agents"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Agent implements ai.Agent with a langchaingo zero-shot ReAct agent whose
// only tools are those of a tool.Registry.
type Agent struct {
	model       llms.Model
	registry    *tool.Registry
	maxSteps    int
	temperature float64
	logger      *slog.Logger
}

var _ ai.Agent = (*Agent)(nil)

// newAgent is an internal constructor that returns the concrete type.
// Tests use it to inject a scripted model.
func newAgent(model llms.Model, config *ai.Config, registry *tool.Registry) (*Agent, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		return nil, tool.ErrRegistryRequired
	}

	return &Agent{
		model:       model,
		registry:    registry,
		maxSteps:    config.MaxSteps,
		temperature: config.Temperature,
		logger:      slog.Default().With("component", "openai-agent"),
	}, nil
}

// NewAgent creates an agent talking to the chat API described by config.
// The config is validated and normalized before use.
//
// Returns ai.Agent interface (not *Agent) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewAgent(config *ai.Config, registry *tool.Registry) (ai.Agent, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.Token),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	return newAgent(client, config, registry)
}

// Run answers request within a fresh tool session of MaxSteps invocations.
// The executor gets one iteration more than the session so the model can
// still answer after its last tool call.
func (a *Agent) Run(ctx context.Context, request string) (*ai.Answer, error) {
	session, err := tool.NewSession(a.registry,
		tool.WithLimit(a.maxSteps),
		tool.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}
	logger := a.logger.With("session", session.ID())

	agent := agents.NewOneShotAgent(a.model,
		tool.LangchainTools(a.registry, session),
		agents.WithPromptPrefix(promptPrefix),
	)
	executor := agents.NewExecutor(agent,
		agents.WithMaxIterations(a.maxSteps+1),
		agents.WithReturnIntermediateSteps(),
	)

	logger.Debug("running agent", "request", request, "max_steps", a.maxSteps)
	outputs, err := chains.Call(ctx, executor, map[string]any{"input": request},
		chains.WithTemperature(a.temperature),
	)
	calls := a.maxSteps - session.Remaining()
	if err != nil {
		logger.Error("agent run failed", "tool_calls", calls, "err", err)
		return nil, fmt.Errorf("agent session %s: %w", session.ID(), err)
	}

	answer := &ai.Answer{
		Output:    finalOutput(outputs),
		Records:   lastRecords(outputs, logger),
		ToolCalls: calls,
		SessionID: session.ID(),
	}
	logger.Info("agent finished", "tool_calls", calls, "records", len(answer.Records))
	return answer, nil
}

func finalOutput(outputs map[string]any) string {
	s, _ := outputs["output"].(string)
	return trimAnswer(s)
}

// lastRecords decodes the observation of the most recent tool call that
// returned a record list. Observations are the JSON the tool adapter produced.
func lastRecords(outputs map[string]any, logger *slog.Logger) []core.AggregatedRecord {
	steps, _ := outputs["intermediateSteps"].([]schema.AgentStep)
	for i := len(steps) - 1; i >= 0; i-- {
		var records []core.AggregatedRecord
		if err := json.Unmarshal([]byte(steps[i].Observation), &records); err != nil {
			logger.Debug("skipping non-record observation", "tool", steps[i].Action.Tool, "err", err)
			continue
		}
		return records
	}
	return []core.AggregatedRecord{}
}
