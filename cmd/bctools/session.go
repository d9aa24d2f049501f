package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/bctools/bctools/internal/auth"
	"github.com/bctools/bctools/internal/bcapi"
	"github.com/bctools/bctools/internal/clock"
	"github.com/bctools/bctools/internal/config"
	"github.com/bctools/bctools/internal/logging"
	"github.com/bctools/bctools/internal/messages"
	"github.com/bctools/bctools/internal/terminal"
)

var (
	environ  = os.Environ
	getenv   = os.Getenv
	newClock = clock.Real
)

// newLogger returns the pipeline logger writing to w. Colors are used only
// when w is an interactive terminal outside a pipeline agent.
func newLogger(w io.Writer) *slog.Logger {
	color := false
	if f, ok := w.(*os.File); ok {
		color = terminal.ColorEnabled(f, getenv)
	}
	return logging.New(w, &logging.Options{
		Level: logging.LevelFromEnv(getenv),
		Color: color,
	})
}

func loadInputs(opts *rootOptions) (*config.Inputs, error) {
	in, err := config.Load(config.LoadOptions{
		ProfilePath: opts.configPath,
		EnvFilePath: opts.envFilePath,
		Environ:     environ(),
	})
	if err != nil {
		return nil, fmt.Errorf(messages.CommandLoadInputsFmt, err)
	}
	return in, nil
}

type parameter struct {
	name  string
	value any
}

// logParameters echoes the effective inputs in an aligned two-column list.
func logParameters(logger *slog.Logger, command string, params []parameter) {
	logger.Info(fmt.Sprintf(messages.ParametersHeaderFmt, command))
	for _, p := range params {
		logger.Info(fmt.Sprintf("  %-*s%v", messages.ParameterColumn-2, p.name, p.value))
	}
}

func connectionParameters(in *config.Inputs) []parameter {
	return []parameter{
		{"TenantId", in.TenantID},
		{"EnvironmentName", in.EnvironmentName},
		{"ClientId", in.ClientID},
		{"ClientSecret", in.RedactedSecret()},
	}
}

// connect acquires a token and returns an API client bound to it. A token
// failure is fatal for every command.
func connect(ctx context.Context, in *config.Inputs, logger *slog.Logger) (*bcapi.Client, error) {
	logging.Section(logger, messages.StepToken)
	ts, err := auth.NewTokenSource(ctx, auth.Config{
		AuthorityURL: in.AuthorityURL,
		TenantID:     in.TenantID,
		ClientID:     in.ClientID,
		ClientSecret: in.ClientSecret,
	})
	if err != nil {
		return nil, fmt.Errorf(messages.CommandCreateTokenFmt, err)
	}
	token, err := auth.Fetch(ts)
	if err != nil {
		return nil, err
	}
	logger.Debug(messages.StepTokenOK, "expiry", token.Expiry.Format(time.RFC3339))
	return bcapi.New(auth.HTTPClient(ctx, token, ts), in.APIBaseURL, in.TenantID, in.EnvironmentName), nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
