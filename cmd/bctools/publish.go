package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bctools/bctools/internal/bcapi"
	"github.com/bctools/bctools/internal/logging"
	"github.com/bctools/bctools/internal/messages"
	"github.com/bctools/bctools/internal/publish"
)

func newPublishCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.PublishUse,
		Short: messages.PublishShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPublish(cmd, opts)
		},
	}
}

// runPublish uploads the package and reports the outcome. A reported
// failure, a timeout, or a missing status record is logged as a warning and
// still exits 0; only hard failures return an error.
func runPublish(cmd *cobra.Command, opts *rootOptions) error {
	logger := newLogger(cmd.ErrOrStderr())
	in, err := loadInputs(opts)
	if err != nil {
		return err
	}
	if err := in.ValidatePublish(); err != nil {
		return err
	}
	schedule, err := bcapi.ParseSchedule(in.Schedule)
	if err != nil {
		return err
	}
	syncMode, err := bcapi.ParseSyncMode(in.SchemaSyncMode)
	if err != nil {
		return err
	}

	logParameters(logger, messages.PublishUse, append(connectionParameters(in),
		parameter{"CompanyId", in.CompanyID},
		parameter{"AppFilePath", in.AppFilePath},
		parameter{"SkipPolling", in.SkipPolling.Bool()},
		parameter{"PollingFrequency", in.PollingFrequency},
		parameter{"MaxPollingTimeout", in.MaxPollingTimeout},
		parameter{"Schedule", schedule},
		parameter{"SchemaSyncMode", syncMode},
	))

	ctx := cmd.Context()
	client, err := connect(ctx, in, logger)
	if err != nil {
		return err
	}

	logging.Section(logger, messages.StepPublish)
	publisher := publish.New(publish.Config{
		API:       client,
		CompanyID: in.CompanyID,
		Clock:     newClock(),
		Logger:    logger,
	})
	result, err := publisher.Publish(ctx, publish.Request{
		AppFilePath: in.AppFilePath,
		Schedule:    string(schedule),
		SyncMode:    string(syncMode),
		SkipPolling: in.SkipPolling.Bool(),
		Poll: publish.PollOptions{
			Interval: seconds(in.PollingFrequency),
			MaxWait:  seconds(in.MaxPollingTimeout),
		},
	})
	if err != nil {
		return err
	}

	summary := fmt.Sprintf(messages.PublishOutcomeFmt, result.Outcome)
	switch result.Outcome {
	case publish.OutcomeSucceeded, publish.OutcomeNotPolled:
		logger.Info(summary, "status", result.Status, "attempts", result.Attempts)
	default:
		logger.Warn(summary, "status", result.Status, "attempts", result.Attempts)
	}
	return nil
}
