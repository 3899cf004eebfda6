package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rtb-ict/devicehub/internal/model"
)

type SchoolListParams struct {
	Page     int
	Limit    int
	Type     string
	Status   string
	District string
	Search   string
}

func (p SchoolListParams) values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Type != "" {
		v.Set("type", p.Type)
	}
	if p.Status != "" {
		v.Set("status", p.Status)
	}
	if p.District != "" {
		v.Set("district", p.District)
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	return v
}

type SchoolList struct {
	Schools []model.School `json:"schools"`
	Total   int            `json:"total"`
	Pages   int            `json:"pages"`
}

func (c *Client) ListSchools(ctx context.Context, params SchoolListParams) (*SchoolList, error) {
	var out SchoolList
	if err := c.do(ctx, http.MethodGet, "/schools?"+params.values().Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSchool(ctx context.Context, id int64) (*model.School, error) {
	var out model.School
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/schools/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateSchool(ctx context.Context, school map[string]any) (*model.School, error) {
	var out model.School
	if err := c.do(ctx, http.MethodPost, "/schools", school, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSchool(ctx context.Context, id int64, school map[string]any) (*model.School, error) {
	var out model.School
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/schools/%d", id), school, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSchool(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/schools/%d", id), nil, nil)
}
