// Package analytics loads the per-user usage summary and shapes it into
// the panel the client shows.
package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	ErrBadStatus = errors.New("analytics request failed")
	ErrMalformed = errors.New("analytics response is malformed")
)

// Report mirrors GET /api/analytics. IntentDistribution keeps the order the
// server sent.
type Report struct {
	TotalConversations int64
	TotalMessages      int64
	AverageConfidence  float64
	IntentDistribution *orderedmap.OrderedMap[string, int64]
}

type reportBody struct {
	TotalConversations *int64                                `json:"total_conversations"`
	TotalMessages      *int64                                `json:"total_messages"`
	AverageConfidence  *float64                              `json:"average_confidence"`
	IntentDistribution *orderedmap.OrderedMap[string, int64] `json:"intent_distribution"`
}

// Fetcher issues one GET per call. There is no retry and no client timeout.
type Fetcher struct {
	client *resty.Client
}

func NewFetcher(baseURL string) *Fetcher {
	return NewFetcherWithClient(resty.New().SetBaseURL(baseURL))
}

func NewFetcherWithClient(client *resty.Client) *Fetcher {
	return &Fetcher{client: client}
}

func (f *Fetcher) Fetch(ctx context.Context, userID uint) (*Report, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParam("user_id", strconv.FormatUint(uint64(userID), 10)).
		Get("/api/analytics")
	if err != nil {
		return nil, fmt.Errorf("fetch analytics failed: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: HTTP %d", ErrBadStatus, resp.StatusCode())
	}
	return Decode(resp.Body())
}

// Decode parses an analytics body, requiring every summary field.
func Decode(raw []byte) (*Report, error) {
	var body reportBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if body.TotalConversations == nil || body.TotalMessages == nil ||
		body.AverageConfidence == nil || body.IntentDistribution == nil {
		return nil, fmt.Errorf("%w: missing field", ErrMalformed)
	}
	return &Report{
		TotalConversations: *body.TotalConversations,
		TotalMessages:      *body.TotalMessages,
		AverageConfidence:  *body.AverageConfidence,
		IntentDistribution: body.IntentDistribution,
	}, nil
}
