package config

import (
	"log/slog"
	"strings"

	"github.com/bctools/bctools/internal/messages"
)

// Endpoint defaults.
const (
	DefaultAuthorityURL = "https://login.microsoftonline.com"
	DefaultAPIBaseURL   = "https://api.businesscentral.dynamics.com"
)

// Input defaults applied when neither the environment nor the profile sets a value.
const (
	DefaultEnvironmentName   = "sandbox"
	DefaultPollingFrequency  = 10
	DefaultMaxPollingTimeout = 600
)

// Inputs holds every pipeline task input. Each field maps to the
// INPUT_<NAME> variable the Azure DevOps agent exports for a task input,
// and to a snake_case key in a TOML profile.
type Inputs struct {
	TenantID        string `env:"INPUT_TENANTID" toml:"tenant_id"`
	ClientID        string `env:"INPUT_CLIENTID" toml:"client_id"`
	ClientSecret    string `env:"INPUT_CLIENTSECRET" toml:"client_secret"`
	EnvironmentName string `env:"INPUT_ENVIRONMENTNAME" toml:"environment_name"`
	CompanyID       string `env:"INPUT_COMPANYID" toml:"company_id"`

	AppFilePath       string `env:"INPUT_APPFILEPATH" toml:"app_file_path"`
	SkipPolling       Switch `env:"INPUT_SKIPPOLLING" toml:"skip_polling"`
	PollingFrequency  int    `env:"INPUT_POLLINGFREQUENCY" toml:"polling_frequency"`
	MaxPollingTimeout int    `env:"INPUT_MAXPOLLINGTIMEOUT" toml:"max_polling_timeout"`
	Schedule          string `env:"INPUT_SCHEDULE" toml:"schedule"`
	SchemaSyncMode    string `env:"INPUT_SCHEMASYNCMODE" toml:"schema_sync_mode"`

	ModuleID         string `env:"INPUT_MODULEID" toml:"module_id"`
	ExcludeMicrosoft Switch `env:"INPUT_EXCLUDEMICROSOFT" toml:"exclude_microsoft"`

	PathToAppJSON           string `env:"INPUT_PATHTOAPPJSON" toml:"path_to_app_json"`
	PathToPackagesDirectory string `env:"INPUT_PATHTOPACKAGESDIRECTORY" toml:"path_to_packages_directory"`
	TestLoginOnly           Switch `env:"INPUT_TESTLOGINONLY" toml:"test_login_only"`
	SkipDefaultDependencies Switch `env:"INPUT_SKIPDEFAULTDEPENDENCIES" toml:"skip_default_dependencies"`

	AuthorityURL string `env:"INPUT_AUTHORITYURL" toml:"authority_url"`
	APIBaseURL   string `env:"INPUT_APIBASEURL" toml:"api_base_url"`
}

// applyDefaults fills unset fields. pollingSet and timeoutSet report whether
// the numeric inputs were supplied, so an explicit zero survives to validation.
func (in *Inputs) applyDefaults(pollingSet, timeoutSet bool) {
	if !pollingSet && in.PollingFrequency == 0 {
		in.PollingFrequency = DefaultPollingFrequency
	}
	if !timeoutSet && in.MaxPollingTimeout == 0 {
		in.MaxPollingTimeout = DefaultMaxPollingTimeout
	}
	if strings.TrimSpace(in.AuthorityURL) == "" {
		in.AuthorityURL = DefaultAuthorityURL
	}
	if strings.TrimSpace(in.APIBaseURL) == "" {
		in.APIBaseURL = DefaultAPIBaseURL
	}
	in.AuthorityURL = strings.TrimRight(in.AuthorityURL, "/")
	in.APIBaseURL = strings.TrimRight(in.APIBaseURL, "/")
}

// RedactedSecret is the display form of the client secret.
func (in Inputs) RedactedSecret() string {
	if in.ClientSecret == "" {
		return messages.ConfigNotProvided
	}
	return messages.ConfigRedacted
}

// LogValue renders the inputs for logging with the client secret redacted.
func (in Inputs) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("TenantId", in.TenantID),
		slog.String("EnvironmentName", in.EnvironmentName),
		slog.String("ClientId", in.ClientID),
		slog.String("ClientSecret", in.RedactedSecret()),
		slog.String("CompanyId", in.CompanyID),
	)
}
