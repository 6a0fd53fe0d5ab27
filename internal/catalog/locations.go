package catalog

import (
	"context"
	"net/http"
)

func (c *Client) SearchLocations(ctx context.Context, query LocationQuery) (LocationResult, error) {
	c.tel.ReportDebug(report_client_search_locations, query.City, query.Size, query.From)

	var result LocationResult
	err := c.do(ctx, report_client_search_locations, http.MethodPost, "/locations/search", nil, query, &result)
	if err != nil {
		return LocationResult{}, err
	}
	return result, nil
}
