package tool

import (
	"context"
	"strings"

	"github.com/poiesic/namescan/core"
	"github.com/spf13/cast"
)

// SearchToolName is the name the search capability is published under.
const SearchToolName = "query_name_matches"

const searchDescription = "Searches every registered data source for rows containing a person's name, " +
	"ignoring case and accents. Input is the name as free text, e.g. \"Paula Erickson\". " +
	"Returns a JSON array of {key, name, source, probability} records; an empty array means no matches."

// Searcher runs a full name search.
type Searcher interface {
	Search(ctx context.Context, name string) ([]core.AggregatedRecord, error)
	SearchDetailed(ctx context.Context, name string) (*core.SearchResponse, error)
}

// SearchTool publishes a Searcher as a Tool.
type SearchTool struct {
	searcher Searcher
}

var _ Tool = (*SearchTool)(nil)

// NewSearchTool creates the search tool.
func NewSearchTool(searcher Searcher) (*SearchTool, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	return &SearchTool{searcher: searcher}, nil
}

func (t *SearchTool) Name() string { return SearchToolName }

func (t *SearchTool) Description() string { return searchDescription }

func (t *SearchTool) InputSchema() Schema {
	return Schema{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{
				"type":        "string",
				"description": "Full or partial name of the person to look for",
			},
		},
		"required": []string{"name"},
	}
}

func (t *SearchTool) OutputSchema() Schema {
	return Schema{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"key":         map[string]any{"type": "string"},
				"name":        map[string]any{"type": "string"},
				"source":      map[string]any{"type": "string"},
				"probability": map[string]any{"type": "number"},
			},
			"required": []string{"key", "name", "source", "probability"},
		},
	}
}

// Invoke searches for the name in input and returns []core.AggregatedRecord.
func (t *SearchTool) Invoke(ctx context.Context, input string) (any, error) {
	return t.searcher.Search(ctx, ParseName(input))
}

// InvokeDetailed searches for the name in input and returns the records with
// their per-target status summary.
func (t *SearchTool) InvokeDetailed(ctx context.Context, input string) (*core.SearchResponse, error) {
	return t.searcher.SearchDetailed(ctx, ParseName(input))
}

// ParseName extracts the name from tool input. Agents send either bare text,
// a quoted string or a JSON object with a "name" field.
func ParseName(input string) string {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "{") {
		var args map[string]any
		if err := json.Unmarshal([]byte(input), &args); err == nil {
			return strings.TrimSpace(cast.ToString(args["name"]))
		}
	}
	if len(input) >= 2 && strings.HasPrefix(input, `"`) && strings.HasSuffix(input, `"`) {
		var s string
		if err := json.Unmarshal([]byte(input), &s); err == nil {
			return strings.TrimSpace(s)
		}
	}
	return input
}
