// Package bcapi is a small client for the Business Central REST endpoints
// the pipeline tasks use: companies, installed extensions, the automation
// extension-upload flow, and symbol package downloads.
package bcapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bctools/bctools/internal/messages"
)

// Doer sends HTTP requests. *http.Client satisfies it; production callers
// pass the bearer-token client from the auth package.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

const (
	contentTypeJSON   = "application/json"
	contentTypeBinary = "application/octet-stream"
)

// Client calls the API of one tenant environment.
type Client struct {
	doer    Doer
	baseURL string
}

// New returns a client for {apiBaseURL}/v2.0/{tenantID}/{environment}.
func New(doer Doer, apiBaseURL, tenantID, environment string) *Client {
	return &Client{
		doer: doer,
		baseURL: strings.TrimRight(apiBaseURL, "/") + "/v2.0/" +
			url.PathEscape(tenantID) + "/" + url.PathEscape(environment),
	}
}

// BaseURL returns the environment root every endpoint hangs off.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) environmentURL(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// automationURL addresses a resource under the automation API of a company.
func (c *Client) automationURL(companyID, resource string) string {
	return c.baseURL + "/api/microsoft/automation/v2.0/companies(" + companyID + ")/" + resource
}

type request struct {
	op          string
	method      string
	url         string
	body        []byte
	contentType string
	accept      string
	ifMatch     string
}

// send performs r and returns the response with its body fully read. Non-2xx
// responses are returned as *RequestError.
func (c *Client) send(ctx context.Context, r request) (*http.Response, []byte, error) {
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, nil, fmt.Errorf(messages.APIBuildRequestFmt, r.op, err)
	}
	accept := r.accept
	if accept == "" {
		accept = contentTypeJSON
	}
	req.Header.Set("Accept", accept)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.ifMatch != "" {
		req.Header.Set("If-Match", r.ifMatch)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf(messages.APISendRequestFmt, r.op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf(messages.APIReadBodyFmt, r.op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, data, newRequestError(r.op, resp, data)
	}
	return resp, data, nil
}

// ifMatch returns the precondition header value for etag, or "*" when the
// server did not supply one.
func ifMatch(etag string) string {
	if strings.TrimSpace(etag) == "" {
		return "*"
	}
	return etag
}
