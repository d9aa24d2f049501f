package bcapi

import (
	"context"
	"net/http"
	"net/url"
)

// PackageRef identifies a symbol package by the fields of an app.json
// dependency entry.
type PackageRef struct {
	ID        string
	Name      string
	Publisher string
	Version   string
}

// DownloadPackage fetches the .app symbol package described by ref from the
// environment's dev endpoint.
func (c *Client) DownloadPackage(ctx context.Context, ref PackageRef) ([]byte, error) {
	query := url.Values{
		"publisher":   {ref.Publisher},
		"appName":     {ref.Name},
		"versionText": {ref.Version},
		"appId":       {ref.ID},
	}
	_, body, err := c.send(ctx, request{
		op:     "download package " + ref.Name,
		method: http.MethodGet,
		url:    c.environmentURL("dev/packages", query),
		accept: contentTypeBinary,
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
