package bcapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bctools/bctools/internal/messages"
)

// Extension is one record of the automation extensions API.
type Extension struct {
	ID           string `json:"id"`
	PackageID    string `json:"packageId"`
	DisplayName  string `json:"displayName"`
	Publisher    string `json:"publisher"`
	VersionMajor int    `json:"versionMajor"`
	VersionMinor int    `json:"versionMinor"`
	VersionBuild int    `json:"versionBuild"`
	VersionRev   int    `json:"versionRevision"`
	Scope        int    `json:"scope"`
	IsInstalled  bool   `json:"isInstalled"`
	PublishedAs  string `json:"publishedAs"`
}

// Version formats the four version parts as major.minor.build.revision.
func (e Extension) Version() string {
	return fmt.Sprintf("%d.%d.%d.%d", e.VersionMajor, e.VersionMinor, e.VersionBuild, e.VersionRev)
}

// ExtensionFilter narrows an extension listing. The zero value lists all.
type ExtensionFilter struct {
	ID               string
	ExcludeMicrosoft bool
}

// Expression renders the OData $filter clause, or "" when nothing filters.
func (f ExtensionFilter) Expression() string {
	var clauses []string
	if id := strings.TrimSpace(f.ID); id != "" {
		clauses = append(clauses, fmt.Sprintf(messages.APIFilterIDFmt, id))
	}
	if f.ExcludeMicrosoft {
		clauses = append(clauses, messages.APIFilterExcludeMicrosoft)
	}
	return strings.Join(clauses, " and ")
}

// Extensions lists the extensions visible to the company.
func (c *Client) Extensions(ctx context.Context, companyID string, filter ExtensionFilter) ([]Extension, error) {
	const op = "list extensions"
	target := c.automationURL(companyID, "extensions")
	if expr := filter.Expression(); expr != "" {
		target += "?" + url.Values{"$filter": {expr}}.Encode()
	}
	_, body, err := c.send(ctx, request{
		op:     op,
		method: http.MethodGet,
		url:    target,
	})
	if err != nil {
		return nil, err
	}
	return decodeEntities[Extension](op, body)
}

// ConfirmExtension reports whether the extension with the given id is
// present for the company.
func (c *Client) ConfirmExtension(ctx context.Context, companyID, id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, fmt.Errorf(messages.APIBlankExtensionIDFmt, ErrInvalidArgument, id)
	}
	extensions, err := c.Extensions(ctx, companyID, ExtensionFilter{ID: id})
	if err != nil {
		return false, err
	}
	for _, ext := range extensions {
		if strings.EqualFold(ext.ID, strings.TrimSpace(id)) {
			return true, nil
		}
	}
	return false, nil
}
