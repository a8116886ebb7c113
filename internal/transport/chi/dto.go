package chi

import (
	"errors"

	"github.com/kailas-cloud/homedex/internal/domain"
	"github.com/kailas-cloud/homedex/internal/usecase/browse"
)

// errorCode is the machine-readable error discriminator in error bodies.
type errorCode string

const (
	codeBadRequest          errorCode = "bad_request"
	codeUnauthorized        errorCode = "unauthorized"
	codeInvalidQuery        errorCode = "invalid_query"
	codeInvalidFilter       errorCode = "invalid_filter"
	codePageOutOfRange      errorCode = "page_out_of_range"
	codeNoActiveSearch      errorCode = "no_active_search"
	codeNothingToRetry      errorCode = "nothing_to_retry"
	codeSessionNotFound     errorCode = "session_not_found"
	codeUpstreamUnavailable errorCode = "upstream_unavailable"
	codeInternalError       errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type createSessionRequest struct {
	PageSize int `json:"page_size,omitempty"`
}

type sessionResponse struct {
	SessionID string       `json:"session_id"`
	View      viewResponse `json:"view"`
}

type searchRequest struct {
	Text    string            `json:"text"`
	Filters map[string]string `json:"filters,omitempty"`
}

// Page actions.
const (
	actionGoTo     = "goto"
	actionNext     = "next"
	actionPrevious = "previous"
)

type pageRequest struct {
	Action string `json:"action"`
	Page   int    `json:"page,omitempty"`
}

type refineRequest struct {
	Location   string `json:"location"`
	Agent      string `json:"agent"`
	Bedrooms   string `json:"bedrooms"`
	ExactMatch bool   `json:"exact_match"`
}

type queryResponse struct {
	Text    string            `json:"text"`
	Filters map[string]string `json:"filters,omitempty"`
}

type refineResponse struct {
	Location   string `json:"location,omitempty"`
	Agent      string `json:"agent,omitempty"`
	Bedrooms   string `json:"bedrooms,omitempty"`
	ExactMatch bool   `json:"exact_match"`
}

type listingResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Location    string `json:"location,omitempty"`
	Agent       string `json:"agent,omitempty"`
	Bedrooms    int    `json:"bedrooms,omitempty"`
	Price       int64  `json:"price,omitempty"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
}

// viewResponse is the wire form of a controller snapshot. Total is nil
// until the backend has revealed it.
type viewResponse struct {
	State         string            `json:"state"`
	Query         queryResponse     `json:"query"`
	Refine        refineResponse    `json:"refine"`
	Records       []listingResponse `json:"records"`
	Page          int               `json:"page"`
	PageSize      int               `json:"page_size"`
	StartIndex    int               `json:"start_index"`
	EndIndex      int               `json:"end_index"`
	FilteredCount int               `json:"filtered_count"`
	TotalPages    int               `json:"total_pages"`
	Total         *int              `json:"total,omitempty"`
	HasNext       bool              `json:"has_next"`
	HasPrevious   bool              `json:"has_previous"`
	IsLoading     bool              `json:"is_loading"`
	Error         *errorResponse    `json:"error,omitempty"`
}

type suggestResponse struct {
	Field       string   `json:"field"`
	Input       string   `json:"input"`
	Suggestions []string `json:"suggestions"`
}

type filterOptionsResponse struct {
	Locations      []string `json:"locations"`
	Agents         []string `json:"agents"`
	BedroomBuckets []string `json:"bedroom_buckets"`
}

type healthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

func viewToWire(v browse.View) viewResponse {
	resp := viewResponse{
		State: string(v.State),
		Query: queryResponse{
			Text:    v.Query.Text(),
			Filters: v.Query.Structured(),
		},
		Refine: refineResponse{
			Location:   v.Filters.Location(),
			Agent:      v.Filters.Agent(),
			Bedrooms:   v.Filters.BedroomsLabel(),
			ExactMatch: v.Filters.ExactMatch(),
		},
		Records:       make([]listingResponse, len(v.Records)),
		Page:          v.PageNumber,
		PageSize:      v.PageSize,
		StartIndex:    v.StartIndex,
		EndIndex:      v.EndIndex,
		FilteredCount: v.FilteredCount,
		TotalPages:    v.TotalPages,
		HasNext:       v.HasNext,
		HasPrevious:   v.HasPrevious,
		IsLoading:     v.IsLoading,
	}
	for i := range v.Records {
		l := &v.Records[i]
		resp.Records[i] = listingResponse{
			ID:          l.ID(),
			Title:       l.Title(),
			Location:    l.Location(),
			Agent:       l.Agent(),
			Bedrooms:    l.Bedrooms(),
			Price:       l.Price(),
			URL:         l.URL(),
			Description: l.Description(),
		}
	}
	if v.TotalKnown {
		t := v.Total
		resp.Total = &t
	}
	if v.Err != nil {
		resp.Error = &errorResponse{
			Code:    viewErrorCode(v.Err),
			Message: safeDomainMessage(v.Err),
		}
	}
	return resp
}

func viewErrorCode(err error) errorCode {
	if errors.Is(err, domain.ErrUpstream) {
		return codeUpstreamUnavailable
	}
	return codeInternalError
}
