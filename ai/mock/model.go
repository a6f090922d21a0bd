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

package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// MockModel is a test double for llms.Model.
type MockModel struct {
	// GenerateFunc is called by GenerateContent if set, replacing the script.
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	mu      sync.Mutex
	replies []string
	prompts []string
}

var _ llms.Model = (*MockModel)(nil)

// NewMockModel creates a model that answers with replies in order.
// Note: Returns concrete type to allow test assertions.
func NewMockModel(replies ...string) *MockModel {
	return &MockModel{replies: replies}
}

// GenerateContent records the prompt text and returns the next reply.
func (m *MockModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	var b strings.Builder
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				b.WriteString(text.Text)
			}
		}
	}
	prompt := b.String()

	m.mu.Lock()
	call := len(m.prompts)
	m.prompts = append(m.prompts, prompt)
	fn := m.GenerateFunc
	var reply string
	if len(m.replies) > 0 {
		reply = m.replies[min(call, len(m.replies)-1)]
	}
	m.mu.Unlock()

	if fn != nil {
		var err error
		if reply, err = fn(ctx, prompt); err != nil {
			return nil, err
		}
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: reply}},
	}, nil
}

// Call is the single-prompt form of GenerateContent.
func (m *MockModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

// CallCount returns the number of completions requested.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts returns the prompt text of every completion, in order.
func (m *MockModel) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Reset clears the recorded prompts and custom functions.
func (m *MockModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = nil
	m.GenerateFunc = nil
}
