package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rtb-ict/devicehub/internal/model"
)

type UserListParams struct {
	Page   int
	Limit  int
	Role   string
	Status string
	Search string
}

func (p UserListParams) values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Role != "" {
		v.Set("role", p.Role)
	}
	if p.Status != "" {
		v.Set("status", p.Status)
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	return v
}

type UserList struct {
	Users []model.User `json:"users"`
	Total int          `json:"total"`
	Pages int          `json:"pages"`
}

func (c *Client) ListUsers(ctx context.Context, params UserListParams) (*UserList, error) {
	var out UserList
	if err := c.do(ctx, http.MethodGet, "/users?"+params.values().Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateUser(ctx context.Context, user map[string]any) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, http.MethodPost, "/users", user, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int64, user map[string]any) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), user, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil)
}
