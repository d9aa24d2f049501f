package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/bctools/bctools/internal/dependencies"
	"github.com/bctools/bctools/internal/logging"
	"github.com/bctools/bctools/internal/messages"
)

func newDependenciesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.DependenciesUse,
		Short: messages.DependenciesShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDependencies(cmd, opts)
		},
	}
}

func runDependencies(cmd *cobra.Command, opts *rootOptions) error {
	logger := newLogger(cmd.ErrOrStderr())
	in, err := loadInputs(opts)
	if err != nil {
		return err
	}
	if err := in.ValidateDependencies(); err != nil {
		return err
	}
	logParameters(logger, messages.DependenciesUse, append(connectionParameters(in),
		parameter{"PathToAppJson", in.PathToAppJSON},
		parameter{"PathToPackagesDirectory", in.PathToPackagesDirectory},
		parameter{"TestLoginOnly", in.TestLoginOnly.Bool()},
		parameter{"SkipDefaultDependencies", in.SkipDefaultDependencies.Bool()},
	))

	ctx := cmd.Context()
	client, err := connect(ctx, in, logger)
	if err != nil {
		return err
	}
	if in.TestLoginOnly.Bool() {
		logger.Info(messages.StepLoginOnly)
		return nil
	}

	logging.Section(logger, messages.StepManifest)
	manifest, path, err := dependencies.LoadManifest(in.PathToAppJSON)
	if err != nil {
		return err
	}
	logger.Info(messages.DepsManifestLoaded, "path", path)
	logManifest(logger, manifest)

	if in.SkipDefaultDependencies.Bool() {
		logger.Info(messages.DepsSkipDefaults)
	} else {
		added, skipped := dependencies.AddBaseDependencies(&manifest)
		for _, dep := range added {
			logger.Info(messages.DepsAdding, "name", dep.Name, "id", dep.ID)
		}
		for _, dep := range skipped {
			logger.Info(messages.DepsSkipping, "name", dep.Name, "id", dep.ID)
		}
	}

	logging.Section(logger, messages.StepDownloading)
	names, err := dependencies.NewDownloader(client, logger).Download(ctx, manifest.Dependencies, in.PathToPackagesDirectory)
	if err != nil {
		return err
	}
	logger.Info(fmt.Sprintf(messages.DepsListingFmt, in.PathToPackagesDirectory))
	for _, name := range names {
		logger.Info("  " + name)
	}
	return nil
}

func logManifest(logger *slog.Logger, manifest dependencies.Manifest) {
	for _, field := range [][2]string{
		{"Id", manifest.ID},
		{"Name", manifest.Name},
		{"Publisher", manifest.Publisher},
		{"Version", manifest.Version},
	} {
		logger.Info(fmt.Sprintf(messages.ManifestSummaryFmt, field[0], field[1]))
	}
	for _, dep := range manifest.Dependencies {
		logger.Info(fmt.Sprintf(messages.ManifestSummaryFmt, "Dependency", dep.Name), "id", dep.ID, "version", dep.Version)
	}
}
