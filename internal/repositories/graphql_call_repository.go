package repositories

import (
	"context"
	"math"
	"time"

	"phonecalls/internal/domain"
	"phonecalls/internal/domain/models"
	"phonecalls/internal/graphql"
)

const callFieldsFragment = `
fragment CallFields on Call {
  id
  direction
  from
  to
  duration
  is_archived
  call_type
  via
  created_at
  notes {
    id
    content
  }
}`

const paginatedCallsQuery = `
query paginatedCalls($offset: Float = 0, $limit: Float = 10) {
  paginatedCalls(offset: $offset, limit: $limit) {
    totalCount
    hasNextPage
    nodes {
      ...CallFields
    }
  }
}
` + callFieldsFragment

const callQuery = `
query call($id: ID!) {
  call(id: $id) {
    ...CallFields
  }
}
` + callFieldsFragment

// callNode mirrors the GraphQL Call type; duration arrives as Float.
type callNode struct {
	ID         string        `json:"id"`
	Direction  string        `json:"direction"`
	From       string        `json:"from"`
	To         string        `json:"to"`
	Duration   float64       `json:"duration"`
	IsArchived bool          `json:"is_archived"`
	CallType   string        `json:"call_type"`
	Via        string        `json:"via"`
	CreatedAt  time.Time     `json:"created_at"`
	Notes      []models.Note `json:"notes"`
}

func (n callNode) toModel() models.Call {
	return models.Call{
		ID:         n.ID,
		Direction:  models.Direction(n.Direction),
		CallType:   models.CallType(n.CallType),
		From:       n.From,
		To:         n.To,
		Duration:   int64(math.Round(n.Duration)),
		Via:        n.Via,
		IsArchived: n.IsArchived,
		CreatedAt:  n.CreatedAt,
		Notes:      n.Notes,
	}
}

// GraphQLCallRepository reads calls from the upstream GraphQL API.
type GraphQLCallRepository struct {
	Client *graphql.Client
}

// ListPage fetches one offset/limit window. A null paginatedCalls yields (nil, nil).
func (r GraphQLCallRepository) ListPage(ctx context.Context, req domain.PageRequest) (*models.CallPage, error) {
	var out struct {
		PaginatedCalls *struct {
			TotalCount  int        `json:"totalCount"`
			HasNextPage bool       `json:"hasNextPage"`
			Nodes       []callNode `json:"nodes"`
		} `json:"paginatedCalls"`
	}
	err := r.Client.Do(ctx, graphql.Request{
		Query:         paginatedCallsQuery,
		OperationName: "paginatedCalls",
		Variables: map[string]any{
			"offset": req.Offset,
			"limit":  req.Limit,
		},
	}, &out)
	if err != nil {
		return nil, domain.UpstreamError{Op: "paginatedCalls", Err: err}
	}
	if out.PaginatedCalls == nil {
		return nil, nil
	}

	page := &models.CallPage{
		TotalCount:  out.PaginatedCalls.TotalCount,
		HasNextPage: out.PaginatedCalls.HasNextPage,
		Nodes:       make([]models.Call, 0, len(out.PaginatedCalls.Nodes)),
	}
	for _, n := range out.PaginatedCalls.Nodes {
		page.Nodes = append(page.Nodes, n.toModel())
	}
	return page, nil
}

// GetByID fetches a single call. A null call yields (nil, nil).
func (r GraphQLCallRepository) GetByID(ctx context.Context, id string) (*models.Call, error) {
	var out struct {
		Call *callNode `json:"call"`
	}
	err := r.Client.Do(ctx, graphql.Request{
		Query:         callQuery,
		OperationName: "call",
		Variables:     map[string]any{"id": id},
	}, &out)
	if err != nil {
		return nil, domain.UpstreamError{Op: "call", Err: err}
	}
	if out.Call == nil {
		return nil, nil
	}
	call := out.Call.toModel()
	return &call, nil
}
