package bcapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchedule(t *testing.T) {
	got, err := ParseSchedule("")
	require.NoError(t, err)
	assert.Equal(t, ScheduleCurrentVersion, got)

	got, err = ParseSchedule("  next MAJOR version ")
	require.NoError(t, err)
	assert.Equal(t, ScheduleNextMajorVersion, got)

	_, err = ParseSchedule("Tomorrow")
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), `"Next minor version"`)
}

func TestParseSyncMode(t *testing.T) {
	got, err := ParseSyncMode("")
	require.NoError(t, err)
	assert.Equal(t, SyncModeAdd, got)

	got, err = ParseSyncMode("force sync")
	require.NoError(t, err)
	assert.Equal(t, SyncModeForceSync, got)

	_, err = ParseSyncMode("Clean")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCreateBookmark(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, automation+"extensionUpload", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, map[string]string{"schedule": "Next minor version", "schemaSyncMode": "Force Sync"}, payload)

		writeJSON(w, http.StatusCreated, `{"@odata.etag":"W/\"JzE5OzEn\"","systemId":"b1","schedule":"Next minor version","schemaSyncMode":"Force Sync"}`)
	})

	bookmark, err := client.CreateBookmark(context.Background(), testCompany, ScheduleNextMinorVersion, SyncModeForceSync)
	require.NoError(t, err)
	assert.Equal(t, Bookmark{
		SystemID:       "b1",
		ETag:           `W/"JzE5OzEn"`,
		Schedule:       ScheduleNextMinorVersion,
		SchemaSyncMode: SyncModeForceSync,
	}, bookmark)
}

func TestCreateBookmarkExisting(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"error":{"code":"Internal_EntityWithSameKeyExists","message":"The record already exists."}}`)
	})

	_, err := client.CreateBookmark(context.Background(), testCompany, ScheduleCurrentVersion, SyncModeAdd)
	require.ErrorIs(t, err, ErrRemoteRequestFailed)
	assert.True(t, IsEntityExists(err))
}

func TestIsEntityExistsRequiresCode(t *testing.T) {
	assert.False(t, IsEntityExists(&RequestError{StatusCode: http.StatusBadRequest, Code: "BadRequest"}))
	assert.False(t, IsEntityExists(&RequestError{StatusCode: http.StatusConflict, Code: CodeEntityWithSameKeyExists}))
	assert.False(t, IsEntityExists(io.EOF))
}

func TestBookmarkReadsFirstRecord(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		writeJSON(w, http.StatusOK, `{"value":[{"systemId":"b1","@odata.etag":"W/1"},{"systemId":"b2"}]}`)
	})
	bookmark, err := client.Bookmark(context.Background(), testCompany)
	require.NoError(t, err)
	assert.Equal(t, "b1", bookmark.SystemID)
	assert.Equal(t, "W/1", bookmark.ETag)
}

func TestBookmarkEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"value":[]}`)
	})
	_, err := client.Bookmark(context.Background(), testCompany)
	require.ErrorIs(t, err, ErrRemoteRequestFailed)
}

func TestUploadContent(t *testing.T) {
	cases := []struct {
		name   string
		etag   string
		status int
		want   bool
	}{
		{"no content is definitive", `W/"1"`, http.StatusNoContent, true},
		{"ok is uncertain", `W/"1"`, http.StatusOK, false},
		{"missing etag matches any", "", http.StatusNoContent, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPatch, r.Method)
				assert.Equal(t, automation+"extensionUpload(b1)/extensionContent", r.URL.Path)
				assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
				want := tc.etag
				if want == "" {
					want = "*"
				}
				assert.Equal(t, want, r.Header.Get("If-Match"))
				data, err := io.ReadAll(r.Body)
				assert.NoError(t, err)
				assert.Equal(t, []byte("package"), data)
				w.WriteHeader(tc.status)
			})
			ok, err := client.UploadContent(context.Background(), testCompany, Bookmark{SystemID: "b1", ETag: tc.etag}, []byte("package"))
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestUploadContentFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusRequestEntityTooLarge, `{"error":{"code":"RequestEntityTooLarge","message":"too big"}}`)
	})
	_, err := client.UploadContent(context.Background(), testCompany, Bookmark{SystemID: "b1"}, []byte("x"))
	require.ErrorIs(t, err, ErrRemoteRequestFailed)
	assert.Contains(t, err.Error(), "413")
}

func TestTriggerInstall(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusNoContent)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, automation+"extensionUpload(b1)/Microsoft.NAV.upload", r.URL.Path)
		assert.Equal(t, `W/"2"`, r.Header.Get("If-Match"))
		w.WriteHeader(int(status.Load()))
	})

	require.NoError(t, client.TriggerInstall(context.Background(), testCompany, Bookmark{SystemID: "b1", ETag: `W/"2"`}))

	status.Store(http.StatusConflict)
	err := client.TriggerInstall(context.Background(), testCompany, Bookmark{SystemID: "b1", ETag: `W/"2"`})
	require.ErrorIs(t, err, ErrStaleConcurrencyToken)
	require.ErrorIs(t, err, ErrRemoteRequestFailed)
}

func TestDeploymentStatuses(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, automation+"extensionDeploymentStatus", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"value":[{"name":"My App","appVersion":"1.0.0.1","status":"InProgress"},{"name":"My App","status":"Completed"}]}`)
	})
	statuses, err := client.DeploymentStatuses(context.Background(), testCompany)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, StatusInProgress, statuses[0].Status)
	assert.Equal(t, "1.0.0.1", statuses[0].AppVersion)
}
