package config

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bctools/bctools/internal/messages"
)

type requirement struct {
	name  string
	value string
}

// requireInputs reports every blank requirement at once.
func requireInputs(reqs ...requirement) error {
	var missing []string
	for _, req := range reqs {
		if strings.TrimSpace(req.value) == "" {
			missing = append(missing, req.name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: "+messages.ConfigMissingInputsFmt, ErrMissingConfiguration, strings.Join(missing, ", "))
}

func (in *Inputs) connection() []requirement {
	return []requirement{
		{"INPUT_TENANTID", in.TenantID},
		{"INPUT_CLIENTID", in.ClientID},
		{"INPUT_CLIENTSECRET", in.ClientSecret},
		{"INPUT_ENVIRONMENTNAME", in.EnvironmentName},
	}
}

// ValidateConnection checks the inputs every API command needs.
func (in *Inputs) ValidateConnection() error {
	return requireInputs(in.connection()...)
}

// ValidateCompany checks the connection inputs plus a GUID company id,
// normalizing the id to its canonical lowercase form.
func (in *Inputs) ValidateCompany() error {
	if err := requireInputs(append(in.connection(), requirement{"INPUT_COMPANYID", in.CompanyID})...); err != nil {
		return err
	}
	normalized, err := normalizeGUID("INPUT_COMPANYID", in.CompanyID)
	if err != nil {
		return err
	}
	in.CompanyID = normalized
	return nil
}

// ValidatePublish checks the inputs of the publish command.
func (in *Inputs) ValidatePublish() error {
	if err := requireInputs(append(in.connection(),
		requirement{"INPUT_COMPANYID", in.CompanyID},
		requirement{"INPUT_APPFILEPATH", in.AppFilePath},
	)...); err != nil {
		return err
	}
	if err := in.ValidateCompany(); err != nil {
		return err
	}
	if in.SkipPolling {
		return nil
	}
	if in.PollingFrequency <= 0 {
		return fmt.Errorf("%w: "+messages.ConfigPositiveSecondsFmt, ErrInvalidInput, envPollingFrequency, in.PollingFrequency)
	}
	if in.MaxPollingTimeout < 0 {
		return fmt.Errorf("%w: "+messages.ConfigNegativeSecondsFmt, ErrInvalidInput, envMaxPollingTimeout, in.MaxPollingTimeout)
	}
	return nil
}

// ValidateModules checks the inputs of the modules command. A module id,
// when given, must be a GUID.
func (in *Inputs) ValidateModules() error {
	if err := in.ValidateCompany(); err != nil {
		return err
	}
	if strings.TrimSpace(in.ModuleID) == "" {
		in.ModuleID = ""
		return nil
	}
	normalized, err := normalizeGUID("INPUT_MODULEID", in.ModuleID)
	if err != nil {
		return err
	}
	in.ModuleID = normalized
	return nil
}

// ValidateDependencies checks the inputs of the dependencies command.
// The environment name falls back to DefaultEnvironmentName.
func (in *Inputs) ValidateDependencies() error {
	if strings.TrimSpace(in.EnvironmentName) == "" {
		in.EnvironmentName = DefaultEnvironmentName
	}
	return requireInputs(append(in.connection(),
		requirement{"INPUT_PATHTOAPPJSON", in.PathToAppJSON},
		requirement{"INPUT_PATHTOPACKAGESDIRECTORY", in.PathToPackagesDirectory},
	)...)
}

func normalizeGUID(name, value string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return "", fmt.Errorf("%w: "+messages.ConfigInvalidGUIDFmt, ErrInvalidInput, name, value)
	}
	return parsed.String(), nil
}
