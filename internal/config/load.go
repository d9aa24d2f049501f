package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/bctools/bctools/internal/envfile"
	"github.com/bctools/bctools/internal/messages"
)

// ErrMissingConfiguration wraps failures caused by a required input that
// was not supplied.
var ErrMissingConfiguration = errors.New("missing configuration")

// ErrInvalidInput wraps failures caused by an input that is present but
// malformed.
var ErrInvalidInput = errors.New("invalid input")

const (
	envPollingFrequency  = "INPUT_POLLINGFREQUENCY"
	envMaxPollingTimeout = "INPUT_MAXPOLLINGTIMEOUT"
)

// LoadOptions selects the sources Load reads from.
type LoadOptions struct {
	// ProfilePath is an optional TOML profile with base values.
	ProfilePath string
	// EnvFilePath is an optional dotenv file merged beneath Environ.
	EnvFilePath string
	// Environ is the process environment in KEY=VALUE form.
	Environ []string
}

// Load assembles Inputs from, in increasing precedence: the TOML profile,
// the dotenv file, and the process environment. Defaults fill whatever is
// still unset and paths are expanded. Load does not check required inputs;
// each command validates the subset it needs.
func Load(opts LoadOptions) (*Inputs, error) {
	var (
		in     Inputs
		timers profileTimers
	)

	if opts.ProfilePath != "" {
		path, err := expandPath(opts.ProfilePath)
		if err != nil {
			return nil, err
		}
		timers, err = loadProfile(path, &in)
		if err != nil {
			return nil, err
		}
	}

	environment := make(map[string]string)
	if opts.EnvFilePath != "" {
		path, err := expandPath(opts.EnvFilePath)
		if err != nil {
			return nil, err
		}
		values, err := envfile.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: "+messages.ConfigMissingEnvFileFmt, ErrMissingConfiguration, path, err)
			}
			return nil, fmt.Errorf("%w: "+messages.ConfigInvalidEnvFileFmt, ErrInvalidInput, path, err)
		}
		for key, value := range values {
			environment[key] = value
		}
	}
	for _, kv := range opts.Environ {
		if key, value, ok := strings.Cut(kv, "="); ok {
			environment[key] = value
		}
	}

	if err := env.ParseWithOptions(&in, env.Options{Environment: environment}); err != nil {
		return nil, fmt.Errorf("%w: "+messages.ConfigParseEnvFmt, ErrInvalidInput, err)
	}

	in.applyDefaults(
		timers.PollingFrequency != nil || isSet(environment, envPollingFrequency),
		timers.MaxPollingTimeout != nil || isSet(environment, envMaxPollingTimeout),
	)

	for _, field := range []*string{&in.AppFilePath, &in.PathToAppJSON, &in.PathToPackagesDirectory} {
		if strings.TrimSpace(*field) == "" {
			continue
		}
		expanded, err := expandPath(*field)
		if err != nil {
			return nil, err
		}
		*field = expanded
	}

	return &in, nil
}

func isSet(environment map[string]string, key string) bool {
	return strings.TrimSpace(environment[key]) != ""
}

// profileTimers records which numeric timers a profile sets, so an explicit
// zero is kept for validation instead of being replaced by a default.
type profileTimers struct {
	PollingFrequency  *int `toml:"polling_frequency"`
	MaxPollingTimeout *int `toml:"max_polling_timeout"`
}

// loadProfile decodes a TOML profile into in, rejecting unknown keys.
func loadProfile(path string, in *Inputs) (profileTimers, error) {
	var timers profileTimers
	data, err := os.ReadFile(path)
	if err != nil {
		return timers, fmt.Errorf("%w: "+messages.ConfigMissingProfileFmt, ErrMissingConfiguration, path, err)
	}
	if err := toml.Unmarshal(data, in); err != nil {
		return timers, fmt.Errorf("%w: "+messages.ConfigInvalidProfileFmt, ErrInvalidInput, path, err)
	}
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	var strict Inputs
	if err := decoder.Decode(&strict); err != nil {
		return timers, fmt.Errorf("%w: "+messages.ConfigUnknownKeysFmt, ErrInvalidInput, path, err)
	}
	if err := toml.Unmarshal(data, &timers); err != nil {
		return timers, fmt.Errorf("%w: "+messages.ConfigInvalidProfileFmt, ErrInvalidInput, path, err)
	}
	return timers, nil
}

// expandPath resolves a leading ~ and cleans the result.
func expandPath(path string) (string, error) {
	expanded, err := homedir.Expand(strings.TrimSpace(path))
	if err != nil {
		return "", fmt.Errorf("%w: "+messages.ConfigExpandPathFmt, ErrInvalidInput, path, err)
	}
	return filepath.Clean(expanded), nil
}
