package bcapi

import (
	"context"
	"net/http"
)

// Company is one record of the standard companies API.
type Company struct {
	ID                string `json:"id"`
	SystemVersion     string `json:"systemVersion"`
	Name              string `json:"name"`
	DisplayName       string `json:"displayName"`
	BusinessProfileID string `json:"businessProfileId"`
}

// Companies lists the companies of the environment.
func (c *Client) Companies(ctx context.Context) ([]Company, error) {
	const op = "list companies"
	_, body, err := c.send(ctx, request{
		op:     op,
		method: http.MethodGet,
		url:    c.environmentURL("api/v2.0/companies", nil),
	})
	if err != nil {
		return nil, err
	}
	return decodeEntities[Company](op, body)
}
