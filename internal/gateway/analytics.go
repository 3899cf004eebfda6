package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rtb-ict/devicehub/internal/model"
)

// Analytics fetches the backend's aggregate counts and breakdowns.
func (c *Client) Analytics(ctx context.Context) (*model.Analytics, error) {
	var out model.Analytics
	if err := c.do(ctx, http.MethodGet, "/analytics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchResult groups cross-entity matches for a free-text query.
type SearchResult struct {
	Devices []model.Device `json:"devices"`
	Schools []model.School `json:"schools"`
	Users   []model.User   `json:"users"`
}

// Search runs a cross-entity search. entityType narrows the search to
// "devices", "schools" or "users"; empty searches everything.
func (c *Client) Search(ctx context.Context, query, entityType string, limit int) (*SearchResult, error) {
	v := url.Values{}
	v.Set("q", query)
	if entityType != "" {
		v.Set("type", entityType)
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}

	var out SearchResult
	if err := c.do(ctx, http.MethodGet, "/search?"+v.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
