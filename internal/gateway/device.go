package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rtb-ict/devicehub/internal/model"
)

// DeviceListParams filters and pages a device listing. Zero values are omitted
// from the query string.
type DeviceListParams struct {
	Page      int
	Limit     int
	Status    string
	Condition string
	Category  string
	SchoolID  int64
	Search    string
}

func (p DeviceListParams) values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Status != "" {
		v.Set("status", p.Status)
	}
	if p.Condition != "" {
		v.Set("condition", p.Condition)
	}
	if p.Category != "" {
		v.Set("category", p.Category)
	}
	if p.SchoolID > 0 {
		v.Set("schoolId", strconv.FormatInt(p.SchoolID, 10))
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	return v
}

// DeviceList is a paginated device listing.
type DeviceList struct {
	Devices []model.Device `json:"devices"`
	Total   int            `json:"total"`
	Pages   int            `json:"pages"`
}

func (c *Client) ListDevices(ctx context.Context, params DeviceListParams) (*DeviceList, error) {
	var out DeviceList
	if err := c.do(ctx, http.MethodGet, "/devices?"+params.values().Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetDevice(ctx context.Context, id int64) (*model.Device, error) {
	var out model.Device
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/devices/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateDevice posts a partial device entity; backend-managed fields are
// ignored server-side.
func (c *Client) CreateDevice(ctx context.Context, device map[string]any) (*model.Device, error) {
	var out model.Device
	if err := c.do(ctx, http.MethodPost, "/devices", device, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateDevice(ctx context.Context, id int64, device map[string]any) (*model.Device, error) {
	var out model.Device
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/devices/%d", id), device, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteDevice(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/devices/%d", id), nil, nil)
}

// BulkImportResult reports how many rows of an import file were accepted.
type BulkImportResult struct {
	Imported int `json:"imported"`
	Failed   int `json:"failed"`
}

// BulkImportDevices uploads a spreadsheet of devices as multipart form data.
func (c *Client) BulkImportDevices(ctx context.Context, filename string, file io.Reader) (*BulkImportResult, error) {
	var out BulkImportResult
	if err := c.upload(ctx, "/devices/bulk-import", "file", filename, file, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
