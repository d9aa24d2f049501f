package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bctools/bctools/internal/auth"
	"github.com/bctools/bctools/internal/bcapi"
	"github.com/bctools/bctools/internal/clock"
	"github.com/bctools/bctools/internal/config"
	"github.com/bctools/bctools/internal/testutil"
)

const (
	testCompany = "6a9c3b1e-1f2d-4c5b-9a8e-0d1c2b3a4f5e"
	testModule  = "8d1f2a3b-4c5d-4e6f-8a9b-0c1d2e3f4a5b"
)

// fakeTenant serves the token endpoint and the environment API of the
// "contoso" tenant from one server.
type fakeTenant struct {
	mu         sync.Mutex
	requests   []string
	tokenFails bool
	companies  string
	extensions string
	status     string
	uploaded   []byte
}

func (f *fakeTenant) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	env := "/v2.0/contoso/sandbox/"
	automation := env + "api/microsoft/automation/v2.0/companies(" + testCompany + ")/"
	path := r.URL.Path
	switch {
	case path == "/contoso/oauth2/v2.0/token":
		f.requests = append(f.requests, "token")
		w.Header().Set("Content-Type", "application/json")
		if f.tokenFails {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"invalid_client","error_description":"bad secret"}`)
			return
		}
		_, _ = io.WriteString(w, `{"access_token":"tok","token_type":"Bearer","expires_in":3600}`)
		return
	case r.Header.Get("Authorization") != "Bearer tok":
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	resource := strings.TrimPrefix(strings.TrimPrefix(path, automation), env)
	f.requests = append(f.requests, r.Method+" "+resource)
	switch {
	case r.Method == http.MethodGet && resource == "api/v2.0/companies":
		_, _ = io.WriteString(w, f.companies)
	case r.Method == http.MethodGet && resource == "extensions":
		f.requests = append(f.requests, "filter "+r.URL.Query().Get("$filter"))
		_, _ = io.WriteString(w, f.extensions)
	case r.Method == http.MethodPost && resource == "extensionUpload":
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"@odata.etag":"W/\"1\"","systemId":"0f3c1d2e-0000-4000-8000-000000000001"}`)
	case r.Method == http.MethodPatch && strings.HasSuffix(resource, "/extensionContent"):
		f.uploaded, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodPost && strings.HasSuffix(resource, "/Microsoft.NAV.upload"):
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodGet && resource == "extensionDeploymentStatus":
		_, _ = io.WriteString(w, `{"value":[{"name":"My App","appVersion":"1.0.0.0","status":"`+f.status+`"}]}`)
	case r.Method == http.MethodGet && resource == "dev/packages":
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.WriteString(w, "NAVX:"+r.URL.Query().Get("appName"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeTenant) log() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// startTenant serves f and points the loaded inputs at it. extra adds or
// overrides INPUT_* variables; an empty value unsets one.
func startTenant(t *testing.T, f *fakeTenant, extra map[string]string) {
	t.Helper()
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)

	vars := map[string]string{
		"INPUT_TENANTID":        "contoso",
		"INPUT_CLIENTID":        "pipeline-app",
		"INPUT_CLIENTSECRET":    "s3cret",
		"INPUT_ENVIRONMENTNAME": "sandbox",
		"INPUT_COMPANYID":       testCompany,
		"INPUT_AUTHORITYURL":    server.URL,
		"INPUT_APIBASEURL":      server.URL,
	}
	for key, value := range extra {
		if value == "" {
			delete(vars, key)
			continue
		}
		vars[key] = value
	}
	withEnviron(t, vars)
}

func withEnviron(t *testing.T, vars map[string]string) {
	t.Helper()
	origEnviron, origGetenv, origClock := environ, getenv, newClock
	t.Cleanup(func() {
		environ, getenv, newClock = origEnviron, origGetenv, origClock
	})
	environ = func() []string {
		list := make([]string, 0, len(vars))
		for key, value := range vars {
			list = append(list, key+"="+value)
		}
		return list
	}
	getenv = func(key string) string { return vars[key] }
	newClock = func() clock.Clock { return clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) }
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := execute(append([]string{"bctools"}, args...), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestCompaniesListsEntries(t *testing.T) {
	tenant := &fakeTenant{companies: `{"value":[
		{"id":"11111111-0000-0000-0000-000000000001","name":"CRONUS"},
		{"id":"11111111-0000-0000-0000-000000000002","name":"Fabrikam"}]}`}
	startTenant(t, tenant, nil)

	stdout, stderr, err := run(t, "companies")
	require.NoError(t, err)
	assert.Equal(t, "Companies:\n"+
		"1. CRONUS (ID: 11111111-0000-0000-0000-000000000001)\n"+
		"2. Fabrikam (ID: 11111111-0000-0000-0000-000000000002)\n", stdout)
	assert.Contains(t, stderr, "Invoking companies with the following parameters:")
	assert.Contains(t, stderr, "##[section]Acquiring token")
	assert.Contains(t, stderr, "[REDACTED]")
	assert.NotContains(t, stderr, "s3cret")
	assert.Equal(t, []string{"token", "GET api/v2.0/companies"}, tenant.log())
}

func TestCompaniesEmpty(t *testing.T) {
	startTenant(t, &fakeTenant{companies: `{"value":[]}`}, nil)

	stdout, _, err := run(t, "companies")
	require.NoError(t, err)
	assert.Equal(t, "No entries returned\n", stdout)
}

func TestCompaniesMissingInputs(t *testing.T) {
	tenant := &fakeTenant{}
	startTenant(t, tenant, map[string]string{"INPUT_CLIENTSECRET": "", "INPUT_TENANTID": ""})

	_, _, err := run(t, "companies")
	require.ErrorIs(t, err, config.ErrMissingConfiguration)
	assert.Contains(t, err.Error(), "INPUT_TENANTID")
	assert.Contains(t, err.Error(), "INPUT_CLIENTSECRET")
	assert.Empty(t, tenant.log())
}

func TestTokenFailureStopsCommand(t *testing.T) {
	tenant := &fakeTenant{tokenFails: true}
	startTenant(t, tenant, nil)

	_, _, err := run(t, "companies")
	require.ErrorIs(t, err, auth.ErrAuthenticationFailed)
	assert.Equal(t, []string{"token"}, tenant.log())
}

func TestEnvFileSuppliesInputs(t *testing.T) {
	tenant := &fakeTenant{companies: `{"value":[{"id":"1","name":"CRONUS"}]}`}
	startTenant(t, tenant, map[string]string{"INPUT_CLIENTSECRET": ""})
	dir := t.TempDir()
	testutil.WriteFile(t, dir, ".env", "INPUT_CLIENTSECRET=from-file\n")

	testutil.WithWorkingDir(t, dir, func() {
		stdout, _, err := run(t, "companies", "--env-file", ".env")
		require.NoError(t, err)
		assert.Contains(t, stdout, "1. CRONUS (ID: 1)")
	})
}

func TestPublishSucceeds(t *testing.T) {
	tenant := &fakeTenant{status: "Completed"}
	appFile := testutil.WriteFile(t, t.TempDir(), "My App.app", "NAVX-package")
	startTenant(t, tenant, map[string]string{"INPUT_APPFILEPATH": appFile})

	_, stderr, err := run(t, "publish")
	require.NoError(t, err)
	assert.Contains(t, stderr, "##[section]Publishing extension")
	assert.Contains(t, stderr, "Publish finished with outcome Succeeded")
	assert.NotContains(t, stderr, "##[warning]")
	assert.Equal(t, "NAVX-package", string(tenant.uploaded))

	systemID := "extensionUpload(0f3c1d2e-0000-4000-8000-000000000001)"
	assert.Equal(t, []string{
		"token",
		"POST extensionUpload",
		"PATCH " + systemID + "/extensionContent",
		"POST " + systemID + "/Microsoft.NAV.upload",
		"GET extensionDeploymentStatus",
	}, tenant.log())
}

func TestPublishFailedOutcomeStillExitsZero(t *testing.T) {
	tenant := &fakeTenant{status: "Failed"}
	appFile := testutil.WriteFile(t, t.TempDir(), "app.app", "NAVX")
	startTenant(t, tenant, map[string]string{"INPUT_APPFILEPATH": appFile})

	_, stderr, err := run(t, "publish")
	require.NoError(t, err)
	assert.Contains(t, stderr, "##[warning]Publish finished with outcome Failed")
}

func TestPublishSkipPolling(t *testing.T) {
	tenant := &fakeTenant{}
	appFile := testutil.WriteFile(t, t.TempDir(), "app.app", "NAVX")
	startTenant(t, tenant, map[string]string{"INPUT_APPFILEPATH": appFile, "INPUT_SKIPPOLLING": "true"})

	_, stderr, err := run(t, "publish")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Publish finished with outcome NotPolled")
	assert.NotContains(t, tenant.log(), "GET extensionDeploymentStatus")
}

func TestPublishInvalidScheduleFailsBeforeConnecting(t *testing.T) {
	tenant := &fakeTenant{}
	appFile := testutil.WriteFile(t, t.TempDir(), "app.app", "NAVX")
	startTenant(t, tenant, map[string]string{"INPUT_APPFILEPATH": appFile, "INPUT_SCHEDULE": "Tomorrow"})

	_, _, err := run(t, "publish")
	require.ErrorIs(t, err, bcapi.ErrInvalidArgument)
	assert.Empty(t, tenant.log())
}

func TestPublishMissingPackage(t *testing.T) {
	tenant := &fakeTenant{}
	startTenant(t, tenant, map[string]string{"INPUT_APPFILEPATH": filepath.Join(t.TempDir(), "missing.app")})

	_, _, err := run(t, "publish")
	require.ErrorIs(t, err, bcapi.ErrFileNotFound)
	assert.Equal(t, []string{"token"}, tenant.log())
}

func TestPublishRejectsMalformedCompany(t *testing.T) {
	tenant := &fakeTenant{}
	startTenant(t, tenant, map[string]string{"INPUT_APPFILEPATH": "app.app", "INPUT_COMPANYID": "not-a-guid"})

	_, _, err := run(t, "publish")
	require.ErrorIs(t, err, config.ErrInvalidInput)
	assert.Empty(t, tenant.log())
}

func TestModulesListsWithFilter(t *testing.T) {
	tenant := &fakeTenant{extensions: `{"value":[{"id":"` + testModule + `","displayName":"My App","publisher":"Contoso"}]}`}
	startTenant(t, tenant, map[string]string{"INPUT_MODULEID": strings.ToUpper(testModule), "INPUT_EXCLUDEMICROSOFT": "true"})

	stdout, _, err := run(t, "modules")
	require.NoError(t, err)
	assert.Equal(t, "Modules:\n1. My App (ID: "+testModule+")\n", stdout)

	requests := tenant.log()
	require.NotEmpty(t, requests)
	assert.Contains(t, requests, "filter id eq "+testModule+" and publisher ne 'Microsoft'")
}

func TestModulesMissingModuleFails(t *testing.T) {
	startTenant(t, &fakeTenant{extensions: `{"value":[]}`}, map[string]string{"INPUT_MODULEID": testModule})

	stdout, _, err := run(t, "modules")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requested module was not returned by the environment")
	assert.Contains(t, err.Error(), testModule)
	assert.Equal(t, "No entries returned\n", stdout)
}

func TestDependenciesDownloadsDeclaredAndDefaults(t *testing.T) {
	project := t.TempDir()
	testutil.WriteManifest(t, project, "aaaaaaaa-0000-0000-0000-000000000001|Library|Contoso")
	packages := filepath.Join(t.TempDir(), ".alpackages")
	startTenant(t, &fakeTenant{}, map[string]string{
		"INPUT_PATHTOAPPJSON":           project,
		"INPUT_PATHTOPACKAGESDIRECTORY": packages,
	})

	_, stderr, err := run(t, "dependencies")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Adding default dependency")
	assert.Contains(t, stderr, "Files now in "+packages)

	entries, err := os.ReadDir(packages)
	require.NoError(t, err)
	assert.Len(t, entries, 7)
	data, err := os.ReadFile(filepath.Join(packages, "Library.app"))
	require.NoError(t, err)
	assert.Equal(t, "NAVX:Library", string(data))
}

func TestDependenciesSkipDefaults(t *testing.T) {
	project := t.TempDir()
	testutil.WriteManifest(t, project, "aaaaaaaa-0000-0000-0000-000000000001|Library|Contoso")
	packages := filepath.Join(t.TempDir(), ".alpackages")
	startTenant(t, &fakeTenant{}, map[string]string{
		"INPUT_PATHTOAPPJSON":           project,
		"INPUT_PATHTOPACKAGESDIRECTORY": packages,
		"INPUT_SKIPDEFAULTDEPENDENCIES": "true",
	})

	_, stderr, err := run(t, "dependencies")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Skipping default dependency additions")

	entries, err := os.ReadDir(packages)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Library.app", entries[0].Name())
}

func TestDependenciesTestLoginOnly(t *testing.T) {
	tenant := &fakeTenant{}
	packages := filepath.Join(t.TempDir(), ".alpackages")
	startTenant(t, tenant, map[string]string{
		"INPUT_PATHTOAPPJSON":           filepath.Join(t.TempDir(), "missing"),
		"INPUT_PATHTOPACKAGESDIRECTORY": packages,
		"INPUT_TESTLOGINONLY":           "yes",
	})

	_, stderr, err := run(t, "dependencies")
	require.NoError(t, err)
	assert.Contains(t, stderr, "TestLoginOnly")
	assert.Equal(t, []string{"token"}, tenant.log())
	_, statErr := os.Stat(packages)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDependenciesMissingManifest(t *testing.T) {
	startTenant(t, &fakeTenant{}, map[string]string{
		"INPUT_PATHTOAPPJSON":           t.TempDir(),
		"INPUT_PATHTOPACKAGESDIRECTORY": t.TempDir(),
	})

	_, _, err := run(t, "dependencies")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.json not found")
}

func TestProfileSuppliesInputs(t *testing.T) {
	tenant := &fakeTenant{companies: `{"value":[{"id":"1","name":"CRONUS"}]}`}
	startTenant(t, tenant, map[string]string{"INPUT_CLIENTID": ""})
	profile := testutil.WriteFile(t, t.TempDir(), "bctools.toml", "client_id = \"from-profile\"\n")

	_, stderr, err := run(t, "companies", "--config", profile)
	require.NoError(t, err)
	assert.Contains(t, stderr, "from-profile")
}

func TestProfileUnknownKeyFails(t *testing.T) {
	tenant := &fakeTenant{}
	startTenant(t, tenant, nil)
	profile := testutil.WriteFile(t, t.TempDir(), "bctools.toml", "client = \"typo\"\n")

	_, _, err := run(t, "companies", "--config", profile)
	require.ErrorIs(t, err, config.ErrInvalidInput)
	assert.Empty(t, tenant.log())
}
