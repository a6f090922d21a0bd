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

// Package ai runs a language-model agent that answers compliance requests
// ("find every row that mentions Paula Erickson") by calling namescan's tools.
//
// The package defines the Agent interface and its configuration. The agent
// itself never touches a data source: every lookup goes through a
// tool.Session, which bounds how many tool calls one request may make.
//
// # Implementation Packages
//
//   - ai/openai: agent backed by an OpenAI-compatible chat API via langchaingo
//   - ai/mock: scripted language model for tests without a model server
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewAgent) return INTERFACE types. Test doubles
// (mock.NewMockModel) return CONCRETE types so tests can inspect the prompts the
// model received.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithModel("gpt-4o"), ai.WithToken(token))
//	agent, err := openai.NewAgent(cfg, scanner.Tools())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	answer, err := agent.Run(ctx, ai.FindNameRequest("Paula Erickson"))
//	for _, r := range answer.Records {
//	    fmt.Println(r.Source, r.Name)
//	}
package ai
