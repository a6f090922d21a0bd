package tool

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/poiesic/namescan/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (f *fakeSearcher) Search(_ context.Context, name string) ([]core.AggregatedRecord, error) {
	f.mu.Lock()
	f.names = append(f.names, name)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if name == "" {
		return []core.AggregatedRecord{}, nil
	}
	return []core.AggregatedRecord{{
		Key:         "DB1_t1_c1",
		Name:        "Paula " + name,
		Source:      "DB1.s.t1",
		Probability: 0.95,
	}}, nil
}

func (f *fakeSearcher) SearchDetailed(ctx context.Context, name string) (*core.SearchResponse, error) {
	records, err := f.Search(ctx, name)
	if err != nil {
		return nil, err
	}
	return &core.SearchResponse{Records: records, Summary: core.Summary{Succeeded: 1, Matches: len(records)}}, nil
}

type namedTool struct {
	name string
}

func (n namedTool) Name() string         { return n.name }
func (n namedTool) Description() string  { return "test tool" }
func (n namedTool) InputSchema() Schema  { return Schema{} }
func (n namedTool) OutputSchema() Schema { return Schema{} }

func (n namedTool) Invoke(_ context.Context, in string) (any, error) {
	return in, nil
}

func newSearchRegistry(t *testing.T, searcher Searcher) *Registry {
	t.Helper()
	st, err := NewSearchTool(searcher)
	require.NoError(t, err)
	r, err := NewRegistry(st)
	require.NoError(t, err)
	return r
}

func TestRegistry(t *testing.T) {
	r, err := NewRegistry(namedTool{"b"}, namedTool{"a"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, r.Names())

	found, err := r.Lookup("a")
	require.NoError(t, err)
	assert.Equal(t, "a", found.Name())

	_, err = r.Lookup("c")
	assert.Equal(t, ErrToolNotFound, err)

	assert.Equal(t, ErrDuplicateTool, r.Register(namedTool{"a"}))
	assert.Equal(t, ErrEmptyToolName, r.Register(namedTool{"  "}))

	_, err = NewRegistry(namedTool{"x"}, namedTool{"x"})
	assert.Equal(t, ErrDuplicateTool, err)

	tools := r.Tools()
	require.Len(t, tools, 2)
	assert.Equal(t, "a", tools[0].Name())
}

func TestSearchTool(t *testing.T) {
	_, err := NewSearchTool(nil)
	assert.Equal(t, ErrSearcherRequired, err)

	searcher := &fakeSearcher{}
	st, err := NewSearchTool(searcher)
	require.NoError(t, err)

	assert.Equal(t, "query_name_matches", st.Name())
	assert.NotEmpty(t, st.Description())
	assert.Equal(t, "object", st.InputSchema()["type"])
	assert.Equal(t, "array", st.OutputSchema()["type"])

	result, err := st.Invoke(context.Background(), "Erickson")
	require.NoError(t, err)
	records, ok := result.([]core.AggregatedRecord)
	require.True(t, ok)
	assert.Equal(t, "Paula Erickson", records[0].Name)

	resp, err := st.InvokeDetailed(context.Background(), `{"name": "Erickson"}`)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Summary.Matches)
	assert.Equal(t, []string{"Erickson", "Erickson"}, searcher.names)
}

func TestParseName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "Paula Erickson", want: "Paula Erickson"},
		{input: "  Erickson\n", want: "Erickson"},
		{input: `"Paula Erickson"`, want: "Paula Erickson"},
		{input: `{"name": "José Álvarez"}`, want: "José Álvarez"},
		{input: `{"other": 1}`, want: ""},
		{input: `{not json`, want: "{not json"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseName(tt.input))
		})
	}
}

func TestSession(t *testing.T) {
	ctx := context.Background()

	t.Run("default limit", func(t *testing.T) {
		s, err := NewSession(newSearchRegistry(t, &fakeSearcher{}))
		require.NoError(t, err)
		assert.NotEmpty(t, s.ID())
		assert.Equal(t, DefaultInvocationLimit, s.Remaining())

		for range DefaultInvocationLimit {
			_, err := s.Invoke(ctx, SearchToolName, "Erickson")
			require.NoError(t, err)
		}
		assert.Zero(t, s.Remaining())

		_, err = s.Invoke(ctx, SearchToolName, "Erickson")
		var tie *core.ToolInvocationError
		require.ErrorAs(t, err, &tie)
		assert.Equal(t, SearchToolName, tie.Tool)
		assert.ErrorIs(t, err, ErrInvocationLimit)
	})

	t.Run("limit is shared across goroutines", func(t *testing.T) {
		searcher := &fakeSearcher{}
		s, err := NewSession(newSearchRegistry(t, searcher), WithLimit(5))
		require.NoError(t, err)

		var wg sync.WaitGroup
		var mu sync.Mutex
		failures := 0
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.Invoke(ctx, SearchToolName, "x"); err != nil {
					mu.Lock()
					failures++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 15, failures)
		assert.Len(t, searcher.names, 5)
	})

	t.Run("unknown tool", func(t *testing.T) {
		s, err := NewSession(newSearchRegistry(t, &fakeSearcher{}))
		require.NoError(t, err)

		_, err = s.Invoke(ctx, "drop_tables", "x")
		assert.ErrorIs(t, err, ErrToolNotFound)
		assert.Equal(t, DefaultInvocationLimit, s.Remaining())
	})

	t.Run("tool failure is propagated", func(t *testing.T) {
		boom := errors.New("dispatch unavailable")
		s, err := NewSession(newSearchRegistry(t, &fakeSearcher{err: boom}))
		require.NoError(t, err)

		_, err = s.Invoke(ctx, SearchToolName, "x")
		var tie *core.ToolInvocationError
		require.ErrorAs(t, err, &tie)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := NewSession(nil)
		assert.Equal(t, ErrRegistryRequired, err)

		_, err = NewSession(newSearchRegistry(t, &fakeSearcher{}), WithLimit(0))
		assert.Equal(t, ErrInvalidLimit, err)

		s, err := NewSession(newSearchRegistry(t, &fakeSearcher{}), WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, s.logger)
	})
}

func TestLangchainTool(t *testing.T) {
	ctx := context.Background()
	registry := newSearchRegistry(t, &fakeSearcher{})

	t.Run("direct", func(t *testing.T) {
		tool, err := registry.Lookup(SearchToolName)
		require.NoError(t, err)
		lt := NewLangchainTool(tool, nil)

		assert.Equal(t, SearchToolName, lt.Name())
		assert.NotEmpty(t, lt.Description())

		out, err := lt.Call(ctx, "Erickson")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"key":"DB1_t1_c1","name":"Paula Erickson","source":"DB1.s.t1","probability":0.95}]`, out)

		out, err = lt.Call(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, "[]", out)
	})

	t.Run("through session", func(t *testing.T) {
		session, err := NewSession(registry, WithLimit(1))
		require.NoError(t, err)

		lts := LangchainTools(registry, session)
		require.Len(t, lts, 1)

		_, err = lts[0].Call(ctx, "Erickson")
		require.NoError(t, err)
		_, err = lts[0].Call(ctx, "Erickson")
		assert.ErrorIs(t, err, ErrInvocationLimit)
	})
}

func TestMCPServer(t *testing.T) {
	ctx := context.Background()

	_, err := NewMCPServer(nil, "test", nil)
	assert.Equal(t, ErrRegistryRequired, err)

	srv, err := NewMCPServer(newSearchRegistry(t, &fakeSearcher{}), "test", nil)
	require.NoError(t, err)

	c, err := client.NewInProcessClient(srv)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Start(ctx))
	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "test", Version: "1.0"}
	_, err = c.Initialize(ctx, initReq)
	require.NoError(t, err)

	list, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)
	require.Len(t, list.Tools, 1)
	assert.Equal(t, SearchToolName, list.Tools[0].Name)
	assert.Contains(t, list.Tools[0].InputSchema.Required, MCPArgument)

	req := mcp.CallToolRequest{}
	req.Params.Name = SearchToolName
	req.Params.Arguments = map[string]any{MCPArgument: "Erickson"}
	res, err := c.CallTool(ctx, req)
	require.NoError(t, err)
	assert.False(t, res.IsError)
	require.Len(t, res.Content, 1)

	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	assert.JSONEq(t, `[{"key":"DB1_t1_c1","name":"Paula Erickson","source":"DB1.s.t1","probability":0.95}]`, text.Text)
}

func TestMCPHandler_Error(t *testing.T) {
	st, err := NewSearchTool(&fakeSearcher{err: errors.New("boom")})
	require.NoError(t, err)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{MCPArgument: "x"}
	res, err := mcpHandler(st, slog.Default())(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
