package bcapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/bctools/bctools/internal/messages"
)

// Schedule controls when an uploaded extension version takes effect.
type Schedule string

// Schedules accepted by the extensionUpload endpoint.
const (
	ScheduleCurrentVersion   Schedule = "Current version"
	ScheduleNextMinorVersion Schedule = "Next minor version"
	ScheduleNextMajorVersion Schedule = "Next major version"
)

// Schedules lists the accepted schedules in display order.
var Schedules = []Schedule{ScheduleCurrentVersion, ScheduleNextMinorVersion, ScheduleNextMajorVersion}

// SyncMode controls how schema changes are applied during installation.
type SyncMode string

// Sync modes accepted by the extensionUpload endpoint.
const (
	SyncModeAdd       SyncMode = "Add"
	SyncModeForceSync SyncMode = "Force Sync"
)

// SyncModes lists the accepted sync modes in display order.
var SyncModes = []SyncMode{SyncModeAdd, SyncModeForceSync}

// ParseSchedule maps raw to a Schedule, ignoring case and surrounding space.
// An empty value selects ScheduleCurrentVersion.
func ParseSchedule(raw string) (Schedule, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ScheduleCurrentVersion, nil
	}
	for _, s := range Schedules {
		if strings.EqualFold(raw, string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf(messages.APIInvalidScheduleFmt, ErrInvalidArgument, raw, quoteAll(Schedules))
}

// ParseSyncMode maps raw to a SyncMode, ignoring case and surrounding space.
// An empty value selects SyncModeAdd.
func ParseSyncMode(raw string) (SyncMode, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SyncModeAdd, nil
	}
	for _, m := range SyncModes {
		if strings.EqualFold(raw, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf(messages.APIInvalidSyncModeFmt, ErrInvalidArgument, raw, quoteAll(SyncModes))
}

func quoteAll[T ~string](values []T) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", string(v))
	}
	return strings.Join(quoted, ", ")
}

// Bookmark is an extensionUpload record: the server-side slot a package is
// uploaded into before installation.
type Bookmark struct {
	SystemID       string   `json:"systemId"`
	ETag           string   `json:"@odata.etag"`
	Schedule       Schedule `json:"schedule"`
	SchemaSyncMode SyncMode `json:"schemaSyncMode"`
}

// StatusInProgress is the deployment status reported while installation runs.
const StatusInProgress = "InProgress"

// DeploymentStatus is one extensionDeploymentStatus record.
type DeploymentStatus struct {
	Name          string `json:"name"`
	Publisher     string `json:"publisher"`
	AppVersion    string `json:"appVersion"`
	OperationType string `json:"operationType"`
	Status        string `json:"status"`
	Schedule      string `json:"schedule"`
	StartedOn     string `json:"startedOn"`
}

// CreateBookmark creates the extensionUpload record for the company. When
// one already exists the server answers 400 with
// CodeEntityWithSameKeyExists; see IsEntityExists.
func (c *Client) CreateBookmark(ctx context.Context, companyID string, schedule Schedule, mode SyncMode) (Bookmark, error) {
	const op = "create extension upload"
	payload, err := json.Marshal(struct {
		Schedule       Schedule `json:"schedule"`
		SchemaSyncMode SyncMode `json:"schemaSyncMode"`
	}{schedule, mode})
	if err != nil {
		return Bookmark{}, fmt.Errorf(messages.APIEncodeBodyFmt, op, err)
	}

	_, body, err := c.send(ctx, request{
		op:          op,
		method:      http.MethodPost,
		url:         c.automationURL(companyID, "extensionUpload"),
		body:        payload,
		contentType: contentTypeJSON,
	})
	if err != nil {
		return Bookmark{}, err
	}
	return firstBookmark(op, body)
}

// Bookmarks reads the extensionUpload records of the company.
func (c *Client) Bookmarks(ctx context.Context, companyID string) ([]Bookmark, error) {
	body, err := c.readBookmarks(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return decodeEntities[Bookmark](opReadBookmark, body)
}

// Bookmark reads the first extensionUpload record of the company.
func (c *Client) Bookmark(ctx context.Context, companyID string) (Bookmark, error) {
	body, err := c.readBookmarks(ctx, companyID)
	if err != nil {
		return Bookmark{}, err
	}
	return firstBookmark(opReadBookmark, body)
}

const opReadBookmark = "read extension upload"

func (c *Client) readBookmarks(ctx context.Context, companyID string) ([]byte, error) {
	_, body, err := c.send(ctx, request{
		op:     opReadBookmark,
		method: http.MethodGet,
		url:    c.automationURL(companyID, "extensionUpload"),
	})
	return body, err
}

func firstBookmark(op string, body []byte) (Bookmark, error) {
	bookmarks, err := decodeEntities[Bookmark](op, body)
	if err != nil {
		return Bookmark{}, err
	}
	if len(bookmarks) == 0 || bookmarks[0].SystemID == "" {
		return Bookmark{}, fmt.Errorf(messages.APIEmptyResponseFmt, ErrRemoteRequestFailed, op)
	}
	return bookmarks[0], nil
}

// UploadContent sends the package bytes into the bookmark, guarded by its
// etag. It returns true on 204 No Content and false on any other 2xx, which
// the server uses when it accepted the body without confirming it.
func (c *Client) UploadContent(ctx context.Context, companyID string, bookmark Bookmark, content []byte) (bool, error) {
	resp, _, err := c.send(ctx, request{
		op:          "upload extension content",
		method:      http.MethodPatch,
		url:         c.automationURL(companyID, "extensionUpload("+bookmark.SystemID+")/extensionContent"),
		body:        content,
		contentType: contentTypeBinary,
		ifMatch:     ifMatch(bookmark.ETag),
	})
	if err != nil {
		return false, err
	}
	return resp.StatusCode == http.StatusNoContent, nil
}

// TriggerInstall asks the server to install the uploaded package. A stale
// etag yields an error matching ErrStaleConcurrencyToken.
func (c *Client) TriggerInstall(ctx context.Context, companyID string, bookmark Bookmark) error {
	_, _, err := c.send(ctx, request{
		op:      "trigger extension install",
		method:  http.MethodPost,
		url:     c.automationURL(companyID, "extensionUpload("+bookmark.SystemID+")/Microsoft.NAV.upload"),
		ifMatch: ifMatch(bookmark.ETag),
	})
	return err
}

// DeploymentStatuses reads the deployment status records, most recent first.
func (c *Client) DeploymentStatuses(ctx context.Context, companyID string) ([]DeploymentStatus, error) {
	const op = "read deployment status"
	_, body, err := c.send(ctx, request{
		op:     op,
		method: http.MethodGet,
		url:    c.automationURL(companyID, "extensionDeploymentStatus"),
	})
	if err != nil {
		return nil, err
	}
	return decodeEntities[DeploymentStatus](op, body)
}
