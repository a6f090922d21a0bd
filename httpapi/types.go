package httpapi

import (
	"strings"

	"github.com/poiesic/namescan/action"
	"github.com/poiesic/namescan/core"
	"github.com/spf13/cast"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// searchRequest accepts the split form used by the web frontend as well as a
// single free-text name.
type searchRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Name      string `json:"name"`
}

func (r searchRequest) fullName() string {
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	return strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
}

type detailResponse struct {
	Records []core.AggregatedRecord `json:"records"`
	Summary summaryResponse         `json:"summary"`
}

type summaryResponse struct {
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Matches   int              `json:"matches"`
	AllFailed bool             `json:"all_failed"`
	Targets   []targetResponse `json:"targets"`
}

type targetResponse struct {
	Target    string `json:"target"`
	Status    string `json:"status"`
	Matches   int    `json:"matches"`
	ElapsedMS int64  `json:"elapsed_ms"`
	Error     string `json:"error,omitempty"`
}

func toDetailResponse(resp *core.SearchResponse) detailResponse {
	out := detailResponse{
		Records: nonNil(resp.Records),
		Summary: summaryResponse{
			Succeeded: resp.Summary.Succeeded,
			Failed:    resp.Summary.Failed,
			Matches:   resp.Summary.Matches,
			AllFailed: resp.Summary.AllFailed(),
			Targets:   make([]targetResponse, len(resp.Summary.Targets)),
		},
	}
	for i, o := range resp.Summary.Targets {
		t := targetResponse{
			Target:    o.Target.Qualified(),
			Status:    string(o.Status),
			Matches:   o.Matches,
			ElapsedMS: o.Elapsed.Milliseconds(),
		}
		if o.Err != nil {
			t.Error = o.Err.Error()
		}
		out.Summary.Targets[i] = t
	}
	return out
}

func nonNil(records []core.AggregatedRecord) []core.AggregatedRecord {
	if records == nil {
		return []core.AggregatedRecord{}
	}
	return records
}

// processRequest mirrors the decision payload. id may arrive as a string or a
// number, and sourceRecordId is accepted as an alias.
type processRequest struct {
	SourceRecordID any    `json:"sourceRecordId"`
	ID             any    `json:"id"`
	Name           string `json:"name"`
	Source         string `json:"source"`
	Probability    any    `json:"probability"`
	Action         string `json:"action"`
}

func (r processRequest) decision() (*core.Decision, error) {
	id := r.SourceRecordID
	if id == nil {
		id = r.ID
	}
	key, err := cast.ToStringE(id)
	if err != nil {
		return nil, err
	}
	var probability float64
	if r.Probability != nil {
		if probability, err = cast.ToFloat64E(r.Probability); err != nil {
			return nil, err
		}
	}
	return &core.Decision{
		SourceRecordID: key,
		Name:           r.Name,
		Source:         r.Source,
		Probability:    probability,
		Action:         core.Action(strings.ToLower(strings.TrimSpace(r.Action))),
	}, nil
}

type processResponse struct {
	Success       bool    `json:"success"`
	Message       string  `json:"message"`
	EntityID      string  `json:"entity_id"`
	OriginalName  string  `json:"original_name"`
	ProcessedName *string `json:"processed_name"`
	EncryptionKey *string `json:"encryption_key"`
	Source        string  `json:"source"`
	Probability   float64 `json:"probability"`
}

func toProcessResponse(result *action.Result) processResponse {
	resp := processResponse{
		Success:      true,
		EntityID:     result.Entry.Key,
		OriginalName: result.OriginalName,
		Source:       result.Entry.Source,
		Probability:  result.Entry.Probability,
	}
	switch result.Entry.Action {
	case core.ActionMask:
		resp.Message = "name masked"
		resp.ProcessedName = &result.MaskedName
		resp.EncryptionKey = &result.EncryptionKey
	case core.ActionDelete:
		resp.Message = "name deleted"
	}
	return resp
}
